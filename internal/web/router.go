package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/apiclient"
	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
)

// Backend is the clinic REST API as used by the controllers.
type Backend interface {
	Doctors(ctx context.Context) ([]clinic.Doctor, error)
	FilterDoctors(ctx context.Context, f clinic.DoctorFilter) ([]clinic.Doctor, error)
	SaveDoctor(ctx context.Context, d clinic.Doctor, token string) (apiclient.Result, error)
	DeleteDoctor(ctx context.Context, id int64, token string) (apiclient.Result, error)

	AdminLogin(ctx context.Context, username, password string) (string, error)
	DoctorLogin(ctx context.Context, email, password string) (string, error)
	PatientLogin(ctx context.Context, email, password string) (string, error)
	PatientSignup(ctx context.Context, p clinic.Patient) (apiclient.Result, error)

	CurrentPatient(ctx context.Context, token string) (clinic.Patient, error)
	PatientAppointments(ctx context.Context, id int64, role, token string) ([]clinic.Appointment, error)
	FilterAppointments(ctx context.Context, f clinic.AppointmentFilter, token string) ([]clinic.Appointment, error)
	DoctorAppointments(ctx context.Context, f clinic.DoctorAppointmentFilter, token string) ([]clinic.Appointment, error)
	BookAppointment(ctx context.Context, a clinic.Appointment, token string) (apiclient.Result, error)
}

type RouterConfig struct {
	Backend  Backend
	Sessions *session.Manager
	Recorder audit.Recorder
	Logger   logrus.FieldLogger
	Health   *HealthHandler

	// DashboardRoute is where a patient lands after logging in.
	DashboardRoute string
	// CSRFKey enables CSRF protection of every form when set.
	CSRFKey       []byte
	SecureCookies bool

	Now func() time.Time
}

// Handler holds the page controllers.
type Handler struct {
	backend   Backend
	recorder  audit.Recorder
	log       logrus.FieldLogger
	seq       *Sequencer
	dashboard string
	now       func() time.Time
}

func NewHandler(cfg RouterConfig) *Handler {
	h := &Handler{
		backend:   cfg.Backend,
		recorder:  cfg.Recorder,
		log:       cfg.Logger,
		seq:       NewSequencer(),
		dashboard: cfg.DashboardRoute,
		now:       cfg.Now,
	}
	if h.recorder == nil {
		h.recorder = audit.NopRecorder{}
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}
	if h.dashboard == "" {
		h.dashboard = "/patient/dashboard"
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.log))

	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.Liveness)
		r.Get("/health/ready", cfg.Health.Readiness)
	}
	r.Get(staticScriptPath, serveScript)

	r.Group(func(r chi.Router) {
		if len(cfg.CSRFKey) > 0 {
			r.Use(csrf.Protect(cfg.CSRFKey,
				csrf.Secure(cfg.SecureCookies),
				csrf.Path("/"),
				csrf.SameSite(csrf.SameSiteLaxMode),
				csrf.ErrorHandler(http.HandlerFunc(h.csrfFailure)),
			))
		}
		r.Use(SessionMiddleware(cfg.Sessions, h.log))

		// The index page resets the session, so it is the one page that
		// skips the header check.
		r.Get("/", h.Home)
		// Credential posts replace whatever session the browser holds, so a
		// stale one must not bounce them.
		r.Post("/login/{kind}", h.Login)
		r.Post("/signup", h.Signup)

		r.Group(func(r chi.Router) {
			r.Use(HeaderGuard(h.recorder, h.log))

			r.Get("/login/{kind}", h.LoginForm)
			r.Get("/signup", h.SignupForm)
			r.Post("/logout", h.Logout)

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(session.RoleAdmin))
				r.Get("/", h.AdminDashboard)
				r.Get("/doctors", h.AddDoctorForm)
				r.Post("/doctors", h.AddDoctor)
				r.Get("/doctors/fragment", h.AdminDoctorsFragment)
				r.Post("/doctors/{id}/delete", h.DeleteDoctor)
			})

			r.Route("/doctor", func(r chi.Router) {
				r.Use(RequireRole(session.RoleDoctor))
				r.Get("/", h.DoctorDashboard)
				r.Get("/appointments/fragment", h.DoctorAppointmentsFragment)
			})

			r.Route("/patient", func(r chi.Router) {
				r.Get("/", h.PatientHome)
				r.Get("/doctors/fragment", h.PatientDoctorsFragment)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(session.RoleLoggedPatient))
					r.Get("/dashboard", h.PatientDashboard)
					r.Get("/book/{id}", h.BookingOverlay)
					r.Post("/book/{id}", h.BookingOverlay)
					r.Post("/book/{id}/confirm", h.ConfirmBooking)
					r.Get("/appointments", h.PatientAppointments)
				})
			})
		})
	})

	return r
}

func (h *Handler) csrfFailure(w http.ResponseWriter, r *http.Request) {
	h.logFor(r).WithError(csrf.FailureReason(r)).Warn("csrf check failed")
	http.Error(w, "Your form has expired. Please reload the page and try again.", http.StatusForbidden)
}
