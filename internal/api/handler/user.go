package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailings/internal/api/request"
	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/model"
)

// User exposes the caller's own profile and tokens.
type User struct {
	users  *core.UserService
	tokens *core.TokenService
}

func NewUser(users *core.UserService, tokens *core.TokenService) *User {
	return &User{users: users, tokens: tokens}
}

func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := actorScope(r)
	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}

func (h *User) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProfile
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, _ := actorScope(r)
	user, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Country != nil {
		user.Country = *req.Country
	}

	if err := h.users.UpdateProfile(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}

func (h *User) ListTokens(w http.ResponseWriter, r *http.Request) {
	identity, _ := actorScope(r)
	p := request.ParsePagination(r)

	tokens, hasMore, err := h.tokens.ListByUser(r.Context(), identity.UserID, p.Limit, p.Cursor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cursor := lastID(tokens, func(t model.APIToken) string { return t.ID }, hasMore)
	response.WritePaginated(w, http.StatusOK, tokens, cursor, hasMore)
}

func (h *User) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req request.CreateToken
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, _ := actorScope(r)
	token, raw, err := h.tokens.Create(r.Context(), identity.UserID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The raw token is returned exactly once.
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"raw_token": raw,
	})
}

func (h *User) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, _ := actorScope(r)
	if err := h.tokens.Revoke(r.Context(), identity.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
