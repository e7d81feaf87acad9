package handler

import (
	"errors"
	"net/http"

	mw "github.com/edvin/mailings/internal/api/middleware"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/policy"
)

// writeServiceError maps the service error taxonomy to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidation(err):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrForbidden):
		response.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, core.ErrMailingFinished), errors.Is(err, core.ErrDispatchInProgress):
		response.WriteError(w, http.StatusConflict, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// actorScope resolves the acting identity and its visibility scope.
func actorScope(r *http.Request) (*policy.Identity, core.Scope) {
	identity := mw.GetIdentity(r.Context())
	return identity, core.ScopeFor(identity)
}

// lastID returns the cursor for the next page, the id of the last item.
func lastID[T any](items []T, id func(T) string, hasMore bool) string {
	if !hasMore || len(items) == 0 {
		return ""
	}
	return id(items[len(items)-1])
}
