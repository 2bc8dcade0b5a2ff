package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

)

// responseRecorder captures the status code and body size.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the websocket upgrade needs.
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

type userSlotKey struct{}

// withUserSlot gives inner middleware a place to report the authenticated
// user back to the request logger.
func withUserSlot(ctx context.Context, user *string) context.Context {
	return context.WithValue(ctx, userSlotKey{}, user)
}

func recordUser(ctx context.Context, name string) {
	if p, ok := ctx.Value(userSlotKey{}).(*string); ok {
		*p = name
	}
}

// RequestLogger returns middleware that logs each HTTP request with method,
// path, status code, response size, duration, remote IP and admin user.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

			var user string
			next.ServeHTTP(rec, r.WithContext(withUserSlot(r.Context(), &user)))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", RealIP(r)),
			}
			if user != "" {
				attrs = append(attrs, slog.String("user", user))
			}

			switch {
			case rec.status >= 500:
				logger.LogAttrs(r.Context(), slog.LevelError, "request", attrs...)
			case rec.status >= 400:
				logger.LogAttrs(r.Context(), slog.LevelWarn, "request", attrs...)
			default:
				logger.LogAttrs(r.Context(), slog.LevelInfo, "request", attrs...)
			}
		})
	}
}
