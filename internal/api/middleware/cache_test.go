package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func cacheTestHandler(hits *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[],"has_more":false,"n":` + strconv.Itoa(*hits) + `}`))
	})
}

func requestAsUser(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestListCache_ServesCachedResponse(t *testing.T) {
	hits := 0
	handler := NewListCache(time.Minute).Middleware(cacheTestHandler(&hits))

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, requestAsUser("GET", "/api/v1/recipients?limit=10", "user-1"))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, requestAsUser("GET", "/api/v1/recipients?limit=10", "user-1"))

	assert.Equal(t, 1, hits)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	assert.Equal(t, "HIT", rec2.Header().Get("X-Cache"))
}

func TestListCache_KeyedPerUser(t *testing.T) {
	hits := 0
	handler := NewListCache(time.Minute).Middleware(cacheTestHandler(&hits))

	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients", "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients", "user-2"))

	assert.Equal(t, 2, hits)
}

func TestListCache_KeyedPerQuery(t *testing.T) {
	hits := 0
	handler := NewListCache(time.Minute).Middleware(cacheTestHandler(&hits))

	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients?cursor=a", "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients?cursor=b", "user-1"))

	assert.Equal(t, 2, hits)
}

func TestListCache_ZeroTTLDisablesCaching(t *testing.T) {
	hits := 0
	handler := NewListCache(0).Middleware(cacheTestHandler(&hits))

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, requestAsUser("GET", "/api/v1/recipients", "user-1"))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, requestAsUser("GET", "/api/v1/recipients", "user-1"))

	assert.Equal(t, 2, hits)
	assert.Empty(t, rec2.Header().Get("X-Cache"))
}

func TestListCache_SkipsMutations(t *testing.T) {
	hits := 0
	handler := NewListCache(time.Minute).Middleware(cacheTestHandler(&hits))

	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("POST", "/api/v1/recipients", "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("POST", "/api/v1/recipients", "user-1"))

	assert.Equal(t, 2, hits)
}

func TestListCache_SkipsErrors(t *testing.T) {
	hits := 0
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := NewListCache(time.Minute).Middleware(failing)

	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients", "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), requestAsUser("GET", "/api/v1/recipients", "user-1"))

	assert.Equal(t, 2, hits)
}
