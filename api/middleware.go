package api

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger tags every request with a short id and logs method, path,
// status, and duration on completion.
func RequestLogger() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.NewString()[:8]
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Request-ID", reqID)

			start := time.Now()
			next.ServeHTTP(rec, r)
			log.Printf("[http] %s %s %s status=%d duration=%s",
				reqID, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		})
	}
}
