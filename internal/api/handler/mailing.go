package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailings/internal/api/request"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/model"
)

type Mailing struct {
	svc      *core.MailingService
	dispatch *core.DispatchService
}

func NewMailing(svc *core.MailingService, dispatch *core.DispatchService) *Mailing {
	return &Mailing{svc: svc, dispatch: dispatch}
}

func (h *Mailing) List(w http.ResponseWriter, r *http.Request) {
	_, scope := actorScope(r)
	p := request.ParsePagination(r)

	mailings, hasMore, err := h.svc.List(r.Context(), scope, p.Limit, p.Cursor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cursor := lastID(mailings, func(m model.Mailing) string { return m.ID }, hasMore)
	response.WritePaginated(w, http.StatusOK, mailings, cursor, hasMore)
}

func (h *Mailing) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMailing
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	mailing := &model.Mailing{
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		MessageID:    req.MessageID,
		RecipientIDs: req.RecipientIDs,
	}

	if err := h.svc.Create(r.Context(), scope, mailing); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, mailing)
}

func (h *Mailing) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	mailing, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, mailing)
}

func (h *Mailing) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMailing
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	mailing, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.StartAt != nil {
		mailing.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		mailing.EndAt = *req.EndAt
	}
	if req.MessageID != nil {
		mailing.MessageID = *req.MessageID
	}
	if req.RecipientIDs != nil {
		mailing.RecipientIDs = req.RecipientIDs
	}

	if err := h.svc.Update(r.Context(), scope, mailing); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, mailing)
}

func (h *Mailing) Delete(w http.ResponseWriter, r *http.Request) {
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

// Send triggers a dispatch of the mailing. Individual recipient failures do
// not fail the request; the result lists every attempt.
func (h *Mailing) Send(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	result, err := h.dispatch.Send(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}
