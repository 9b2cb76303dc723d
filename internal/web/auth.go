package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"golang.org/x/net/html"

	"github.com/hackgods/clinic-portal/internal/apiclient"
	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

const (
	MsgInvalidCredentials = "Invalid credentials!"
	MsgLoginError         = "Error logging in. Please try again."
	MsgSignupError        = "Error signing up. Please try again."
)

var loginRoles = map[view.LoginKind]session.Role{
	view.LoginAdmin:   session.RoleAdmin,
	view.LoginDoctor:  session.RoleDoctor,
	view.LoginPatient: session.RoleLoggedPatient,
}

// Home resets the session and offers the role selection.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if err := handleFrom(r).Clear(r.Context()); err != nil {
		h.serverError(w, r, err, "clear session")
		return
	}
	h.renderPage(w, r, http.StatusOK, page{body: []*html.Node{view.RoleSelection()}})
}

// dropInvalid clears a session failing the role/token check without
// redirecting, for handlers that run outside the header guard.
func (h *Handler) dropInvalid(r *http.Request) error {
	err := handleFrom(r).Check(r.Context())
	if errors.Is(err, session.ErrInvalidSession) {
		return nil
	}
	return err
}

func loginKind(r *http.Request) (view.LoginKind, bool) {
	return view.ParseLoginKind(chi.URLParam(r, "kind"))
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	kind, ok := loginKind(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.renderPage(w, r, http.StatusOK, page{
		title: "Login",
		body:  []*html.Node{view.LoginForm(kind, csrf.Token(r))},
	})
}

// Login exchanges credentials for a token and stores it with the role the
// login form stands for.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	kind, ok := loginKind(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := h.dropInvalid(r); err != nil {
		h.serverError(w, r, err, "check session")
		return
	}

	ctx := r.Context()
	role := loginRoles[kind]
	password := r.PostForm.Get("password")

	var (
		subject string
		token   string
		err     error
	)
	switch kind {
	case view.LoginAdmin:
		subject = r.PostForm.Get("username")
		token, err = h.backend.AdminLogin(ctx, subject, password)
	case view.LoginDoctor:
		subject = r.PostForm.Get("email")
		token, err = h.backend.DoctorLogin(ctx, subject, password)
	case view.LoginPatient:
		subject = r.PostForm.Get("email")
		token, err = h.backend.PatientLogin(ctx, subject, password)
	}

	if err != nil {
		record(ctx, h.recorder, h.log, audit.Event{
			Type:      audit.EventLoginFailed,
			ActorRole: string(role),
			Subject:   subject,
			Payload:   map[string]any{"status": apiclient.StatusOf(err)},
		})

		msg := apiclient.MessageOf(err, MsgInvalidCredentials)
		status := http.StatusUnauthorized
		if errors.Is(err, apiclient.ErrTransport) {
			h.logFor(r).WithError(err).Error("login request failed")
			msg = MsgLoginError
			status = http.StatusBadGateway
		}
		h.renderPage(w, r, status, page{
			title:  "Login",
			notice: view.Notice{Kind: view.NoticeError, Text: msg},
			body:   []*html.Node{view.LoginForm(kind, csrf.Token(r))},
		})
		return
	}

	if err := handleFrom(r).Rotate(ctx, role, token); err != nil {
		h.serverError(w, r, err, "store session")
		return
	}
	record(ctx, h.recorder, h.log, audit.Event{Type: audit.EventLoginSucceeded, ActorRole: string(role), Subject: subject})

	http.Redirect(w, r, h.landing(role), http.StatusSeeOther)
}

// landing is the dashboard a freshly logged in role is sent to.
func (h *Handler) landing(role session.Role) string {
	switch role {
	case session.RoleLoggedPatient:
		return h.dashboard
	default:
		return view.CapabilityFor(role).Home
	}
}

func (h *Handler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, page{
		title: "Sign Up",
		body:  []*html.Node{view.SignupForm(csrf.Token(r))},
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if err := h.dropInvalid(r); err != nil {
		h.serverError(w, r, err, "check session")
		return
	}

	p := clinic.Patient{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Phone:    r.PostForm.Get("phone"),
		Address:  r.PostForm.Get("address"),
	}

	res, err := h.backend.PatientSignup(r.Context(), p)
	if err != nil {
		h.logFor(r).WithError(err).Error("signup request failed")
		res.Message = MsgSignupError
	}
	if !res.Success {
		h.renderPage(w, r, http.StatusOK, page{
			title:  "Sign Up",
			notice: view.Notice{Kind: view.NoticeError, Text: res.Message},
			body:   []*html.Node{view.SignupForm(csrf.Token(r))},
		})
		return
	}

	record(r.Context(), h.recorder, h.log, audit.Event{Type: audit.EventPatientSignedUp, ActorRole: string(session.RolePatient), Subject: p.Email})
	redirectWithNotice(w, r, "/patient", res.Message, false)
}

// Logout ends the session. A logged in patient drops back to the public
// patient view instead of the index page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := handleFrom(r)
	ctx := r.Context()

	if sess.Role() == session.RoleLoggedPatient {
		if err := sess.Set(ctx, session.RolePatient, ""); err != nil {
			h.serverError(w, r, err, "reset patient session")
			return
		}
		http.Redirect(w, r, "/patient", http.StatusSeeOther)
		return
	}

	if err := sess.Clear(ctx); err != nil {
		h.serverError(w, r, err, "clear session")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
