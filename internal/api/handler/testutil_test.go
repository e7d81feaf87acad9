package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/mailings/internal/api/middleware"
	"github.com/edvin/mailings/internal/policy"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withIdentity injects an identity into the request context.
func withIdentity(r *http.Request, identity *policy.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), mw.IdentityKey, identity)
	ctx = context.WithValue(ctx, mw.UserIDKey, identity.UserID)
	return r.WithContext(ctx)
}

// withMember injects a regular member identity owned by testUserID.
func withMember(r *http.Request) *http.Request {
	return withIdentity(r, &policy.Identity{
		UserID:      testUserID,
		Email:       "member@example.com",
		Permissions: policy.MemberPermissions(),
	})
}

// withStaff injects a staff identity with the wildcard grant.
func withStaff(r *http.Request) *http.Request {
	return withIdentity(r, &policy.Identity{
		UserID:      "test-staff-1",
		Email:       "staff@example.com",
		IsStaff:     true,
		Permissions: []string{policy.Wildcard},
	})
}

const testUserID = "test-user-1"
const validID = "test-id-1"
