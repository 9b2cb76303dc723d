package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-portal/internal/apiclient"
	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
)

type fakeBackend struct {
	mu sync.Mutex

	doctors      []clinic.Doctor
	doctorsErr   error
	doctorsCalls int
	filters      []clinic.DoctorFilter
	filterHook   func(ctx context.Context, f clinic.DoctorFilter) ([]clinic.Doctor, error)

	saveResult apiclient.Result
	saveErr    error
	saved      []clinic.Doctor

	deleteResult apiclient.Result
	deleteErr    error
	deleted      []int64

	token    string
	loginErr error
	logins   []string

	signupResult apiclient.Result
	signupErr    error

	patient      clinic.Patient
	appts        []clinic.Appointment
	apptsErr     error
	dayFilters   []clinic.DoctorAppointmentFilter
	apptFilters  []clinic.AppointmentFilter
	historyCalls []int64

	bookResult apiclient.Result
	booked     []clinic.Appointment
}

func (f *fakeBackend) Doctors(context.Context) ([]clinic.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctorsCalls++
	return f.doctors, f.doctorsErr
}

func (f *fakeBackend) FilterDoctors(ctx context.Context, filter clinic.DoctorFilter) ([]clinic.Doctor, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	hook := f.filterHook
	f.mu.Unlock()
	if hook != nil {
		return hook(ctx, filter)
	}
	return f.doctors, f.doctorsErr
}

func (f *fakeBackend) SaveDoctor(_ context.Context, d clinic.Doctor, _ string) (apiclient.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, d)
	return f.saveResult, f.saveErr
}

func (f *fakeBackend) DeleteDoctor(_ context.Context, id int64, _ string) (apiclient.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteResult, f.deleteErr
}

func (f *fakeBackend) login(kind, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, kind+":"+user)
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeBackend) AdminLogin(_ context.Context, username, _ string) (string, error) {
	return f.login("admin", username)
}

func (f *fakeBackend) DoctorLogin(_ context.Context, email, _ string) (string, error) {
	return f.login("doctor", email)
}

func (f *fakeBackend) PatientLogin(_ context.Context, email, _ string) (string, error) {
	return f.login("patient", email)
}

func (f *fakeBackend) PatientSignup(context.Context, clinic.Patient) (apiclient.Result, error) {
	return f.signupResult, f.signupErr
}

func (f *fakeBackend) CurrentPatient(context.Context, string) (clinic.Patient, error) {
	return f.patient, nil
}

func (f *fakeBackend) PatientAppointments(_ context.Context, id int64, _, _ string) ([]clinic.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, id)
	return f.appts, f.apptsErr
}

func (f *fakeBackend) FilterAppointments(_ context.Context, filter clinic.AppointmentFilter, _ string) ([]clinic.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apptFilters = append(f.apptFilters, filter)
	return f.appts, f.apptsErr
}

func (f *fakeBackend) DoctorAppointments(_ context.Context, filter clinic.DoctorAppointmentFilter, _ string) ([]clinic.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dayFilters = append(f.dayFilters, filter)
	return f.appts, f.apptsErr
}

func (f *fakeBackend) BookAppointment(_ context.Context, a clinic.Appointment, _ string) (apiclient.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booked = append(f.booked, a)
	return f.bookResult, nil
}

type memRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memRecorder) Record(_ context.Context, ev audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memRecorder) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}

var testNow = time.Date(2026, 10, 18, 10, 0, 0, 0, time.Local)

const testSessionID = "sid-test"

type harness struct {
	t        *testing.T
	backend  *fakeBackend
	store    *session.MemoryStore
	recorder *memRecorder
	router   http.Handler
}

func newHarness(t *testing.T, opts ...func(*RouterConfig)) *harness {
	t.Helper()

	logger, _ := test.NewNullLogger()
	h := &harness{
		t:        t,
		backend:  &fakeBackend{doctors: []clinic.Doctor{}},
		store:    session.NewMemoryStore(time.Hour),
		recorder: &memRecorder{},
	}
	cfg := RouterConfig{
		Backend:        h.backend,
		Sessions:       session.NewManager(h.store, session.Options{CookieName: "sid", TTL: time.Hour}),
		Recorder:       h.recorder,
		Logger:         logger,
		DashboardRoute: "/patient/dashboard",
		Now:            func() time.Time { return testNow },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.router = NewRouter(cfg)
	return h
}

// as stores a session with role and token and returns its cookie.
func (h *harness) as(role session.Role, token string) *http.Cookie {
	h.t.Helper()
	err := h.store.Save(context.Background(), testSessionID, session.Session{Role: role, Token: token})
	require.NoError(h.t, err)
	return &http.Cookie{Name: "sid", Value: testSessionID}
}

func (h *harness) stored() (session.Session, error) {
	return h.store.Load(context.Background(), testSessionID)
}

// issued returns the session cookie set by rec and the record stored under it.
func (h *harness) issued(rec *httptest.ResponseRecorder) (*http.Cookie, session.Session) {
	h.t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			s, err := h.store.Load(context.Background(), c.Value)
			require.NoError(h.t, err)
			return c, s
		}
	}
	h.t.Fatal("no session cookie in response")
	return nil, session.Session{}
}

type reqOpt func(*http.Request)

func withCookie(c *http.Cookie) reqOpt {
	return func(r *http.Request) {
		if c != nil {
			r.AddCookie(c)
		}
	}
}

func asFragment() reqOpt {
	return func(r *http.Request) { r.Header.Set(fragmentHeader, "portal") }
}

func (h *harness) get(target string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) post(target string, form url.Values, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func noticeOf(t *testing.T, rec *httptest.ResponseRecorder) (string, url.Values) {
	t.Helper()
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Path, loc.Query()
}
