package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDMiddleware adds a unique request ID to each request context
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs method, path, status, duration and request ID of
// every request.
func LoggingMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     wrapped.statusCode,
				"duration":   time.Since(start).String(),
				"request_id": GetRequestID(r.Context()),
			}).Info("request")
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SessionMiddleware loads the session of the request and stores its handle
// in the request context.
func SessionMiddleware(m *session.Manager, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h, err := m.Load(w, r)
			if err != nil {
				log.WithError(err).WithField("request_id", GetRequestID(r.Context())).Error("load session")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithHandle(r.Context(), h)))
		})
	}
}

// MsgSessionInvalid is shown after a session failed the role/token check.
const MsgSessionInvalid = "Session expired or invalid login. Please log in again."

const MsgLoginRequired = "Please log in to continue."

// HeaderGuard runs the session integrity check that precedes every header
// render. A role that needs a token but has none is cleared and the browser
// is sent back to the index page.
func HeaderGuard(rec audit.Recorder, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := handleFrom(r)
			role := h.Role()

			err := h.Check(r.Context())
			switch {
			case errors.Is(err, session.ErrInvalidSession):
				log.WithFields(logrus.Fields{
					"role":       role.String(),
					"request_id": GetRequestID(r.Context()),
				}).Warn("invalid session cleared")
				record(r.Context(), rec, log, audit.Event{Type: audit.EventSessionInvalid, ActorRole: string(role)})
				redirectWithNotice(w, r, "/", MsgSessionInvalid, true)
				return
			case err != nil:
				log.WithError(err).Error("check session")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets the request through only when the session role is one of
// roles. Anyone else is sent to their own home page, anonymous visitors to
// the index page.
func RequireRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := handleFrom(r).Role()
			for _, role := range roles {
				if current == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			redirectWithNotice(w, r, view.CapabilityFor(current).Home, MsgLoginRequired, true)
		})
	}
}

func handleFrom(r *http.Request) *session.Handle {
	h, ok := session.FromContext(r.Context())
	if !ok {
		panic("web: session middleware not installed")
	}
	return h
}

// redirectWithNotice sends a 303 to path carrying a notice for the next page.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string, isError bool) {
	target := path
	if notice != "" {
		q := url.Values{"notice": {notice}}
		if isError {
			q.Set("kind", "error")
		}
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func record(ctx context.Context, rec audit.Recorder, log logrus.FieldLogger, ev audit.Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	if err := rec.Record(ctx, ev); err != nil {
		log.WithError(err).WithField("event", ev.Type).Warn("record audit event")
	}
}
