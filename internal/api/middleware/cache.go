package middleware

import (
	"bytes"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ListCache is a TTL response cache for GET list endpoints. Entries are
// keyed per identity so one caller's visibility never leaks to another.
// Mutations are not invalidated eagerly; the TTL bounds staleness.
// A non-positive TTL disables caching entirely.
type ListCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

func NewListCache(ttl time.Duration) *ListCache {
	c := &ListCache{ttl: ttl}
	if ttl > 0 {
		c.store = gocache.New(ttl, 2*ttl)
	}
	return c
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// Middleware serves cached GET responses and records fresh 200s.
func (c *ListCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.ttl <= 0 || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		userID, _ := r.Context().Value(UserIDKey).(string)
		key := userID + " " + r.URL.RequestURI()

		if v, ok := c.store.Get(key); ok {
			cached := v.(cachedResponse)
			w.Header().Set("Content-Type", cached.contentType)
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(cached.status)
			w.Write(cached.body)
			return
		}

		rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		if rw.status == http.StatusOK {
			c.store.SetDefault(key, cachedResponse{
				status:      rw.status,
				contentType: rw.Header().Get("Content-Type"),
				body:        rw.buf.Bytes(),
			})
		}
	})
}

type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
