package httpx

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const logCtxKey ctxKey = iota

// logContext accumulates request-scoped fields for the access log line.
// The middleware owns it; the guard and envelope helpers fill it in as the
// request progresses.
type logContext struct {
	requestID string
	uid       string
	errorCode string
}

// RequestID returns the request id assigned by the logging middleware.
func RequestID(ctx context.Context) string {
	if lc, ok := ctx.Value(logCtxKey).(*logContext); ok {
		return lc.requestID
	}
	return ""
}

// SetCaller records the authenticated caller for the access log line.
func SetCaller(ctx context.Context, uid string) {
	if lc, ok := ctx.Value(logCtxKey).(*logContext); ok {
		lc.uid = uid
	}
}

// SetError records the error code for the access log line.
func SetError(ctx context.Context, code string) {
	if lc, ok := ctx.Value(logCtxKey).(*logContext); ok {
		lc.errorCode = code
	}
}

// RequestLogger assigns a request id and emits one structured line per
// request after the handler completes. Logging never alters the response.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lc := &logContext{requestID: uuid.NewString()}
			ctx := context.WithValue(r.Context(), logCtxKey, lc)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("requestId", lc.requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			}
			if lc.uid != "" {
				fields = append(fields, zap.String("uid", lc.uid))
			}
			if lc.errorCode != "" {
				fields = append(fields, zap.String("code", lc.errorCode))
			}
			logger.Info("request", fields...)
		})
	}
}

// Recoverer converts panics into a 500 envelope so a broken handler still
// returns exactly one response.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("requestId", RequestID(r.Context())),
						zap.String("path", r.URL.Path),
						zap.Any("panic", rec),
					)
					Err(w, r, http.StatusInternalServerError, "internal/error", "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
