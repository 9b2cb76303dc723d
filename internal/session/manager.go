package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Manager binds stored sessions to browsers through a cookie carrying the
// session id.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "clinic_session"
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// Handle is the session of one request.
type Handle struct {
	m       *Manager
	w       http.ResponseWriter
	id      string
	fresh   bool
	current Session
}

// Load resolves the session of r. A request without a cookie, or whose id is
// unknown to the store, gets an anonymous session that is only persisted once
// it is written.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Handle, error) {
	h := &Handle{m: m, w: w}

	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		h.id = uuid.NewString()
		h.fresh = true
		return h, nil
	}
	h.id = c.Value

	s, err := m.store.Load(r.Context(), h.id)
	switch {
	case errors.Is(err, ErrNotFound):
		return h, nil
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}
	h.current = s
	return h, nil
}

// ID is the opaque session id carried by the cookie.
func (h *Handle) ID() string {
	return h.id
}

func (h *Handle) Role() Role {
	return h.current.Role
}

func (h *Handle) Token() string {
	return h.current.Token
}

func (h *Handle) Session() Session {
	return h.current
}

// Set persists role and token, replacing whatever the session held.
func (h *Handle) Set(ctx context.Context, role Role, token string) error {
	s := Session{Role: role, Token: token, UpdatedAt: h.m.now()}
	if err := h.m.store.Save(ctx, h.id, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.current = s
	if h.fresh {
		h.writeCookie()
		h.fresh = false
	}
	return nil
}

// Rotate stores role and token under a new session id, drops the record of
// the old id and reissues the cookie. Logins go through Rotate so an id the
// browser held before authenticating never carries the new role.
func (h *Handle) Rotate(ctx context.Context, role Role, token string) error {
	oldID, hadRecord := h.id, !h.fresh

	s := Session{Role: role, Token: token, UpdatedAt: h.m.now()}
	newID := uuid.NewString()
	if err := h.m.store.Save(ctx, newID, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.id, h.current, h.fresh = newID, s, false
	h.writeCookie()

	if hadRecord {
		if err := h.m.store.Delete(ctx, oldID); err != nil {
			return fmt.Errorf("delete old session: %w", err)
		}
	}
	return nil
}

// Clear resets the session to anonymous and drops the stored record.
func (h *Handle) Clear(ctx context.Context) error {
	h.current = Session{}
	if h.fresh {
		return nil
	}
	if err := h.m.store.Delete(ctx, h.id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Check enforces the role/token invariant. An invalid session is cleared and
// ErrInvalidSession is returned.
func (h *Handle) Check(ctx context.Context) error {
	if h.current.Valid(h.m.now()) {
		return nil
	}
	if err := h.Clear(ctx); err != nil {
		return err
	}
	return ErrInvalidSession
}

func (h *Handle) writeCookie() {
	http.SetCookie(h.w, &http.Cookie{
		Name:     h.m.opts.CookieName,
		Value:    h.id,
		Path:     "/",
		MaxAge:   int(h.m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// WithHandle stores h in ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, ctxKey{}, h)
}

// FromContext returns the session handle installed by the web middleware.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(ctxKey{}).(*Handle)
	return h, ok
}
