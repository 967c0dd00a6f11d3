package observability

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"goa.design/clue/log"
)

const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestLogging hands every request the service log context tagged with a
// request id. An incoming X-Request-Id is kept, otherwise a UUID is minted.
func RequestLogging(logCtx context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			ctx := log.WithContext(r.Context(), logCtx)
			ctx = log.With(ctx, log.KV{K: "request_id", V: id})
			ctx = context.WithValue(ctx, requestIDKey{}, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))
			log.Print(ctx,
				log.KV{K: "method", V: r.Method},
				log.KV{K: "path", V: r.URL.Path},
				log.KV{K: "status", V: rec.status},
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
