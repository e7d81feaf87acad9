package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailings/internal/api/request"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/model"
)

type Message struct {
	svc *core.MessageService
}

func NewMessage(svc *core.MessageService) *Message {
	return &Message{svc: svc}
}

func (h *Message) List(w http.ResponseWriter, r *http.Request) {
	_, scope := actorScope(r)
	p := request.ParsePagination(r)

	messages, hasMore, err := h.svc.List(r.Context(), scope, p.Limit, p.Cursor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cursor := lastID(messages, func(m model.Message) string { return m.ID }, hasMore)
	response.WritePaginated(w, http.StatusOK, messages, cursor, hasMore)
}

func (h *Message) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMessage
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	message := &model.Message{
		Subject: req.Subject,
		Body:    req.Body,
	}

	if err := h.svc.Create(r.Context(), scope, message); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, message)
}

func (h *Message) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	message, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, message)
}

func (h *Message) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMessage
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	message, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Subject != nil {
		message.Subject = *req.Subject
	}
	if req.Body != nil {
		message.Body = *req.Body
	}

	if err := h.svc.Update(r.Context(), scope, message); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, message)
}

func (h *Message) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	if err := h.svc.Delete(r.Context(), scope, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
