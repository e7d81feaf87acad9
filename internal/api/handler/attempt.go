package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailings/internal/api/request"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/model"
)

// Attempt exposes the read-only mail attempt log.
type Attempt struct {
	svc *core.AttemptService
}

func NewAttempt(svc *core.AttemptService) *Attempt {
	return &Attempt{svc: svc}
}

func (h *Attempt) List(w http.ResponseWriter, r *http.Request) {
	_, scope := actorScope(r)
	p := request.ParsePagination(r)
	mailingID := r.URL.Query().Get("mailing_id")

	attempts, hasMore, err := h.svc.List(r.Context(), scope, mailingID, p.Limit, p.Cursor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cursor := lastID(attempts, func(a model.MailAttempt) string { return a.ID }, hasMore)
	response.WritePaginated(w, http.StatusOK, attempts, cursor, hasMore)
}

func (h *Attempt) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, scope := actorScope(r)
	attempt, err := h.svc.GetByID(r.Context(), scope, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, attempt)
}
