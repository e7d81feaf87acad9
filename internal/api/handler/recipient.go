package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailings/internal/api/request"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/model"
)

type Recipient struct {
	svc *core.RecipientService
}

func NewRecipient(svc *core.RecipientService) *Recipient {
	return &Recipient{svc: svc}
}

func (h *Recipient) List(w http.ResponseWriter, r *http.Request) {
	_, scope := actorScope(r)
	p := request.ParsePagination(r)

	recipients, hasMore, err := h.svc.List(r.Context(), scope, p.Limit, p.Cursor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cursor := lastID(recipients, func(rec model.Recipient) string { return rec.ID }, hasMore)
	response.WritePaginated(w, http.StatusOK, recipients, cursor, hasMore)
}

func (h *Recipient) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRecipient
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	recipient := &model.Recipient{
		Email:    req.Email,
		FullName: req.FullName,
		Comment:  req.Comment,
	}

	if err := h.svc.Create(r.Context(), scope, recipient); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, recipient)
}

func (h *Recipient) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	recipient, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, recipient)
}

func (h *Recipient) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateRecipient
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	recipient, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Email != nil {
		recipient.Email = *req.Email
	}
	if req.FullName != nil {
		recipient.FullName = *req.FullName
	}
	if req.Comment != nil {
		recipient.Comment = *req.Comment
	}

	if err := h.svc.Update(r.Context(), scope, recipient); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, recipient)
}

func (h *Recipient) Delete(w http.ResponseWriter, r *http.Request) {
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
