package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-portal/internal/apiclient"
	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

func TestHeaderGuard_InvalidSessionIsCleared(t *testing.T) {
	pages := map[session.Role]string{
		session.RoleAdmin:         "/admin",
		session.RoleDoctor:        "/doctor",
		session.RoleLoggedPatient: "/patient/dashboard",
	}
	for role, path := range pages {
		t.Run(role.String(), func(t *testing.T) {
			h := newHarness(t)
			rec := h.get(path, withCookie(h.as(role, "")))

			require.Equal(t, http.StatusSeeOther, rec.Code)
			loc, q := noticeOf(t, rec)
			assert.Equal(t, "/", loc)
			assert.Equal(t, MsgSessionInvalid, q.Get("notice"))

			_, err := h.stored()
			assert.ErrorIs(t, err, session.ErrNotFound)
			assert.Equal(t, []string{audit.EventSessionInvalid}, h.recorder.types())
		})
	}
}

func TestHome_ClearsSession(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/?notice=Hello", withCookie(h.as(session.RoleAdmin, "tok")))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Select Your Role:")
	assert.Contains(t, body, ">Hello</div>")
	assert.NotContains(t, body, "Logout")

	_, err := h.stored()
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestHeader_NoLogoutForPublicRoles(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/patient", withCookie(h.as(session.RolePatient, "")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Logout")
	assert.NotContains(t, rec.Body.String(), `id="homeBtn"`)
}

func TestAdminDashboard_EmptyList(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/admin", withCookie(h.as(session.RoleAdmin, "tok")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`<div id="content" class="content"><p class="placeholder">No doctors found</p></div>`)
}

func TestAdminDashboard_BackendError(t *testing.T) {
	h := newHarness(t)
	h.backend.doctorsErr = fmt.Errorf("fetch doctors: %w", apiclient.ErrTransport)

	rec := h.get("/admin", withCookie(h.as(session.RoleAdmin, "tok")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), view.MsgDoctorsError)
}

func TestAdminRoutes_RejectOtherRoles(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/admin", withCookie(h.as(session.RoleDoctor, "tok")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, q := noticeOf(t, rec)
	assert.Equal(t, "/doctor", loc)
	assert.Equal(t, MsgLoginRequired, q.Get("notice"))

	s, err := h.stored()
	require.NoError(t, err)
	assert.Equal(t, session.RoleDoctor, s.Role)
	assert.Equal(t, "tok", s.Token)

	rec = h.get("/admin")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, _ = noticeOf(t, rec)
	assert.Equal(t, "/", loc)
}

func TestAddDoctor_SuccessReloadsList(t *testing.T) {
	h := newHarness(t)
	h.backend.saveResult = apiclient.Result{Success: true, Message: "Doctor added successfully"}
	cookie := h.as(session.RoleAdmin, "tok")

	form := url.Values{
		"name":         {"Grey"},
		"email":        {"grey@x.io"},
		"password":     {"pw"},
		"specialty":    {"Cardiology"},
		"availability": {"09:00-10:00", "10:00-11:00"},
	}
	rec := h.post("/admin/doctors", form, withCookie(cookie))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, q := noticeOf(t, rec)
	assert.Equal(t, "/admin", loc)
	assert.Equal(t, MsgDoctorAdded, q.Get("notice"))

	require.Len(t, h.backend.saved, 1)
	assert.Equal(t, []string{"09:00-10:00", "10:00-11:00"}, h.backend.saved[0].Availability)
	assert.Equal(t, []string{audit.EventDoctorAdded}, h.recorder.types())

	h.backend.doctors = []clinic.Doctor{{ID: 1, Name: "Grey"}}
	before := h.backend.doctorsCalls
	page := h.get(rec.Header().Get("Location"), withCookie(cookie))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Equal(t, before+1, h.backend.doctorsCalls)
	assert.Contains(t, page.Body.String(), MsgDoctorAdded)
	assert.Contains(t, page.Body.String(), `id="doctor-1"`)
}

func TestAddDoctor_Rejected(t *testing.T) {
	h := newHarness(t)
	h.backend.saveResult = apiclient.Result{Success: false, Message: "Doctor already exists"}

	rec := h.post("/admin/doctors", url.Values{"name": {"Grey"}}, withCookie(h.as(session.RoleAdmin, "tok")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to add doctor: Doctor already exists")
	assert.Contains(t, rec.Body.String(), `id="addDoctorForm"`)
	assert.Empty(t, h.recorder.types())
}

func TestDeleteDoctor_Fragment(t *testing.T) {
	cases := []struct {
		name   string
		result apiclient.Result
		err    error
		status int
		body   string
	}{
		{"rejected", apiclient.Result{Message: "Failed to delete doctor."}, nil, http.StatusConflict, "Failed to delete doctor.\n"},
		{"transport", apiclient.Result{}, apiclient.ErrTransport, http.StatusBadGateway, "Error deleting doctor.\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.backend.deleteResult = tc.result
			h.backend.deleteErr = tc.err

			rec := h.post("/admin/doctors/7/delete", nil, withCookie(h.as(session.RoleAdmin, "tok")), asFragment())
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.body, rec.Body.String())
			assert.Equal(t, []int64{7}, h.backend.deleted)
		})
	}
}

func TestDeleteDoctor_FragmentReturnsList(t *testing.T) {
	h := newHarness(t)
	h.backend.deleteResult = apiclient.Result{Success: true}
	h.backend.doctors = []clinic.Doctor{{ID: 3, Name: "Dr. Ada", Specialty: "Neurology"}}
	cookie := h.as(session.RoleAdmin, "tok")

	rec := h.post("/admin/doctors/7/delete?specialty=Neurology", nil, withCookie(cookie), asFragment())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="doctor-3"`)
	assert.NotContains(t, rec.Body.String(), `id="doctor-7"`)
	assert.Equal(t, []clinic.DoctorFilter{{Specialty: "Neurology"}}, h.backend.filters)
	assert.Equal(t, []string{audit.EventDoctorDeleted}, h.recorder.types())
}

func TestDeleteDoctor_LastCardLeavesPlaceholder(t *testing.T) {
	h := newHarness(t)
	h.backend.deleteResult = apiclient.Result{Success: true}

	rec := h.post("/admin/doctors/7/delete", nil, withCookie(h.as(session.RoleAdmin, "tok")), asFragment())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), view.MsgNoDoctors)
	assert.Equal(t, 1, h.backend.doctorsCalls)
}

func TestDeleteDoctor_FormPostRedirects(t *testing.T) {
	h := newHarness(t)
	h.backend.deleteResult = apiclient.Result{Success: false, Message: "Failed to delete doctor."}

	rec := h.post("/admin/doctors/7/delete", nil, withCookie(h.as(session.RoleAdmin, "tok")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, q := noticeOf(t, rec)
	assert.Equal(t, "/admin", loc)
	assert.Equal(t, "Failed to delete doctor.", q.Get("notice"))
	assert.Equal(t, "error", q.Get("kind"))
}

func TestPatientDoctorsFragment_OmitsEmptyFilterFields(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/patient/doctors/fragment?name=&time=10:00&specialty=",
		withCookie(h.as(session.RolePatient, "")), asFragment())

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.backend.filters, 1)
	assert.Equal(t, "time=10%3A00", h.backend.filters[0].Query().Encode())
	assert.Equal(t, `<p class="placeholder">No doctors found with the given filters.</p>`, rec.Body.String())
}

func TestPatientDoctorsFragment_SupersededRequestIsDropped(t *testing.T) {
	h := newHarness(t)
	cookie := h.as(session.RolePatient, "")

	entered := make(chan struct{})
	h.backend.filterHook = func(ctx context.Context, f clinic.DoctorFilter) ([]clinic.Doctor, error) {
		if f.Name == "slow" {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []clinic.Doctor{{ID: 2, Name: "Fast"}}, nil
	}

	var wg sync.WaitGroup
	var slow int
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow = h.get("/patient/doctors/fragment?name=slow", withCookie(cookie), asFragment()).Code
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first filter request never reached the backend")
	}

	fast := h.get("/patient/doctors/fragment?name=fast", withCookie(cookie), asFragment())
	wg.Wait()

	assert.Equal(t, http.StatusOK, fast.Code)
	assert.Contains(t, fast.Body.String(), `id="doctor-2"`)
	assert.Equal(t, http.StatusNoContent, slow)
}

func TestLogin_StoresRoleAndRedirects(t *testing.T) {
	cases := []struct {
		kind string
		form url.Values
		role session.Role
		to   string
	}{
		{"admin", url.Values{"username": {"admin"}, "password": {"pw"}}, session.RoleAdmin, "/admin"},
		{"doctor", url.Values{"email": {"d@x.io"}, "password": {"pw"}}, session.RoleDoctor, "/doctor"},
		{"patient", url.Values{"email": {"p@x.io"}, "password": {"pw"}}, session.RoleLoggedPatient, "/patient/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			h := newHarness(t)
			h.backend.token = "tok-" + tc.kind

			rec := h.post("/login/"+tc.kind, tc.form, withCookie(h.as(session.RoleAnonymous, "")))
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tc.to, rec.Header().Get("Location"))

			_, s := h.issued(rec)
			assert.Equal(t, tc.role, s.Role)
			assert.Equal(t, "tok-"+tc.kind, s.Token)
			assert.Equal(t, []string{audit.EventLoginSucceeded}, h.recorder.types())
		})
	}
}

func TestLogin_RotatesSessionID(t *testing.T) {
	h := newHarness(t)
	h.backend.token = "admin-token"
	before := h.as(session.RolePatient, "")

	rec := h.post("/login/admin", url.Values{"username": {"admin"}, "password": {"pw"}}, withCookie(before))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	after, s := h.issued(rec)
	assert.NotEqual(t, before.Value, after.Value)
	assert.Equal(t, session.RoleAdmin, s.Role)
	assert.Equal(t, "admin-token", s.Token)

	_, err := h.stored()
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogin_StaleSessionIsReplaced(t *testing.T) {
	h := newHarness(t)
	h.backend.token = "tok"
	stale := h.as(session.RoleAdmin, "")

	rec := h.post("/login/admin", url.Values{"username": {"admin"}, "password": {"pw"}}, withCookie(stale))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, []string{"admin:admin"}, h.backend.logins)

	_, s := h.issued(rec)
	assert.Equal(t, session.RoleAdmin, s.Role)
	assert.Equal(t, "tok", s.Token)
}

func TestLogin_FailureWithStaleSessionShowsPublicHeader(t *testing.T) {
	h := newHarness(t)
	h.backend.loginErr = &apiclient.StatusError{Status: 401}

	rec := h.post("/login/doctor", url.Values{"email": {"d@x.io"}, "password": {"bad"}}, withCookie(h.as(session.RoleDoctor, "")))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="logoutBtn"`)
	assert.Contains(t, rec.Body.String(), MsgInvalidCredentials)

	_, err := h.stored()
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestLogin_NewVisitorGetsCookie(t *testing.T) {
	h := newHarness(t)
	h.backend.token = "tok"

	rec := h.post("/login/admin", url.Values{"username": {"admin"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
}

func TestLogin_Failures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		notice string
	}{
		{"server message", &apiclient.StatusError{Status: 401, Message: "Wrong password"}, http.StatusUnauthorized, "Wrong password"},
		{"fallback", &apiclient.StatusError{Status: 401}, http.StatusUnauthorized, MsgInvalidCredentials},
		{"transport", fmt.Errorf("admin login: %w", apiclient.ErrTransport), http.StatusBadGateway, MsgLoginError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.backend.loginErr = tc.err

			rec := h.post("/login/admin", url.Values{"username": {"admin"}, "password": {"bad"}})
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.notice)
			assert.Equal(t, []string{audit.EventLoginFailed}, h.recorder.types())
		})
	}
}

func TestLogin_UnknownKind(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNotFound, h.get("/login/root").Code)
}

func TestSignup(t *testing.T) {
	h := newHarness(t)
	h.backend.signupResult = apiclient.Result{Success: true, Message: "Signup successful"}

	rec := h.post("/signup", url.Values{"name": {"Sam"}, "email": {"s@x.io"}, "password": {"pw"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, q := noticeOf(t, rec)
	assert.Equal(t, "/patient", loc)
	assert.Equal(t, "Signup successful", q.Get("notice"))

	h.backend.signupResult = apiclient.Result{Success: false, Message: "Signup failed"}
	rec = h.post("/signup", url.Values{"name": {"Sam"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signup failed")

	h.backend.signupErr = errors.New("dial tcp: refused")
	rec = h.post("/signup", url.Values{"name": {"Sam"}})
	assert.Contains(t, rec.Body.String(), MsgSignupError)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/logout", nil, withCookie(h.as(session.RoleLoggedPatient, "tok")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/patient", rec.Header().Get("Location"))
	s, err := h.stored()
	require.NoError(t, err)
	assert.Equal(t, session.RolePatient, s.Role)
	assert.Empty(t, s.Token)

	rec = h.post("/logout", nil, withCookie(h.as(session.RoleAdmin, "tok")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	_, err = h.stored()
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestPatientHome_AnonymousBecomesPatient(t *testing.T) {
	h := newHarness(t)
	h.backend.doctors = []clinic.Doctor{{ID: 3, Name: "Grey"}}

	rec := h.get("/patient")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-action="login-required"`)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestBooking(t *testing.T) {
	h := newHarness(t)
	h.backend.doctors = []clinic.Doctor{{ID: 3, Name: "Grey", Availability: []string{"09:00-10:00"}}}
	h.backend.patient = clinic.Patient{ID: 11, Name: "Sam"}
	h.backend.bookResult = apiclient.Result{Success: true, Message: "Appointment booked successfully"}
	cookie := h.as(session.RoleLoggedPatient, "tok")

	overlay := h.post("/patient/book/3", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, overlay.Code)
	assert.Contains(t, overlay.Body.String(), `action="/patient/book/3/confirm"`)

	rec := h.post("/patient/book/3/confirm", url.Values{"date": {"2026-10-20"}, "time": {"09:00-10:00"}}, withCookie(cookie))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, q := noticeOf(t, rec)
	assert.Equal(t, "/patient/dashboard", loc)
	assert.Equal(t, "Appointment booked successfully", q.Get("notice"))

	require.Len(t, h.backend.booked, 1)
	b := h.backend.booked[0]
	assert.Equal(t, int64(3), b.Doctor.ID)
	assert.Equal(t, int64(11), b.Patient.ID)
	assert.Equal(t, "2026-10-20 09:00", b.AppointmentTime.Format("2006-01-02 15:04"))
	assert.Equal(t, []string{audit.EventAppointmentBooked}, h.recorder.types())
}

func TestBooking_UnknownDoctor(t *testing.T) {
	h := newHarness(t)
	rec := h.post("/patient/book/99", nil, withCookie(h.as(session.RoleLoggedPatient, "tok")))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	_, q := noticeOf(t, rec)
	assert.Equal(t, MsgDoctorNotFound, q.Get("notice"))
}

func TestDoctorDashboard_DefaultsToToday(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/doctor?date=garbage", withCookie(h.as(session.RoleDoctor, "tok")))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.backend.dayFilters, 1)
	assert.Equal(t, "2026-10-18", h.backend.dayFilters[0].Date)
	assert.Contains(t, rec.Body.String(), `<td colspan="5" class="text-center text-muted">No Appointments found for the selected date.</td>`)
}

func TestDoctorAppointmentsFragment(t *testing.T) {
	h := newHarness(t)
	h.backend.appts = []clinic.Appointment{{ID: 5, Patient: &clinic.Patient{ID: 1, Name: "Sam"}}}

	rec := h.get("/doctor/appointments/fragment?date=2026-10-19&patientName=Sa",
		withCookie(h.as(session.RoleDoctor, "tok")), asFragment())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, clinic.DoctorAppointmentFilter{Date: "2026-10-19", PatientName: "Sa"}, h.backend.dayFilters[0])
	assert.Contains(t, rec.Body.String(), `<tr id="appointment-5">`)
}

func TestPatientAppointments(t *testing.T) {
	h := newHarness(t)
	h.backend.patient = clinic.Patient{ID: 11}
	cookie := h.as(session.RoleLoggedPatient, "tok")

	rec := h.get("/patient/appointments", withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{11}, h.backend.historyCalls)
	assert.Contains(t, rec.Body.String(), view.MsgNoAppointments)

	rec = h.get("/patient/appointments?condition=pending", withCookie(cookie), asFragment())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []clinic.AppointmentFilter{{Condition: "pending"}}, h.backend.apptFilters)
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestCSRF_ProtectsForms(t *testing.T) {
	h := newHarness(t, func(cfg *RouterConfig) {
		cfg.CSRFKey = []byte("0123456789abcdef0123456789abcdef")
	})

	form := h.get("/login/admin")
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `name="gorilla.csrf.Token"`)

	rec := h.post("/logout", nil, withCookie(h.as(session.RoleAdmin, "tok")))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStaticScript(t *testing.T) {
	h := newHarness(t)
	rec := h.get("/static/portal.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-action")
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
}
