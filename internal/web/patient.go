package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"golang.org/x/net/html"

	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

const (
	MsgDoctorNotFound   = "Doctor not found."
	MsgPatientLoadError = "Error loading patient details. Please try again."
	MsgBookingInvalid   = "Please choose a date and time slot."
	MsgBookingError     = "Error booking appointment. Please try again."
)

// PatientHome is the public doctor list. Landing here without a role makes
// the visitor a patient, which enables the login prompt on cards.
func (h *Handler) PatientHome(w http.ResponseWriter, r *http.Request) {
	sess := handleFrom(r)
	if sess.Role() == session.RoleAnonymous {
		if err := sess.Set(r.Context(), session.RolePatient, ""); err != nil {
			h.serverError(w, r, err, "store session")
			return
		}
	}
	h.doctorListPage(w, r, "Patient Dashboard")
}

func (h *Handler) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	h.doctorListPage(w, r, "Patient Dashboard")
}

func (h *Handler) doctorListPage(w http.ResponseWriter, r *http.Request, title string) {
	f := doctorFilterFrom(r)
	cards, err := h.doctorCards(r.Context(), f, handleFrom(r).Role(), csrf.Token(r), patientEmptyText(f))
	if err != nil {
		h.logFor(r).WithError(err).Error("load doctors")
	}

	h.renderPage(w, r, http.StatusOK, page{
		title: title,
		body: []*html.Node{
			view.DoctorFilterForm("/patient/doctors/fragment", f),
			view.Container("content", cards),
		},
	})
}

func patientEmptyText(f clinic.DoctorFilter) string {
	if f.IsZero() {
		return view.MsgNoDoctors
	}
	return view.MsgNoFilteredDoctors
}

func (h *Handler) PatientDoctorsFragment(w http.ResponseWriter, r *http.Request) {
	f := doctorFilterFrom(r)
	role := handleFrom(r).Role()
	token := csrf.Token(r)
	h.sequenced(w, r, listPatientDoctors, func(ctx context.Context) (view.Fragment, error) {
		return h.doctorCards(ctx, f, role, token, patientEmptyText(f))
	})
}

// findDoctor looks a doctor up in the full list; the backend has no single
// doctor endpoint.
func (h *Handler) findDoctor(ctx context.Context, id int64) (clinic.Doctor, bool, error) {
	doctors, err := h.backend.Doctors(ctx)
	if err != nil {
		return clinic.Doctor{}, false, err
	}
	for _, d := range doctors {
		if d.ID == id {
			return d, true, nil
		}
	}
	return clinic.Doctor{}, false, nil
}

// BookingOverlay shows the booking dialog for a doctor, prefilled with the
// logged in patient's details.
func (h *Handler) BookingOverlay(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	d, ok, err := h.findDoctor(ctx, id)
	if err != nil {
		h.logFor(r).WithError(err).Error("load doctors")
		redirectWithNotice(w, r, h.dashboard, view.MsgDoctorsError, true)
		return
	}
	if !ok {
		redirectWithNotice(w, r, h.dashboard, MsgDoctorNotFound, true)
		return
	}

	p, err := h.backend.CurrentPatient(ctx, handleFrom(r).Token())
	if err != nil {
		h.logFor(r).WithError(err).Error("load patient")
		redirectWithNotice(w, r, h.dashboard, MsgPatientLoadError, true)
		return
	}

	today := h.now().Format(clinic.DateLayout)
	h.renderPage(w, r, http.StatusOK, page{
		title: "Book Appointment",
		body:  []*html.Node{view.BookingOverlay(d, p, today, csrf.Token(r))},
	})
}

// slotStart turns a date and an availability slot such as "09:00-10:00" into
// the start time of the appointment.
func slotStart(date, slot string) (time.Time, error) {
	start, _, _ := strings.Cut(strings.TrimSpace(slot), "-")
	return time.ParseInLocation(clinic.DateLayout+" 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(start), time.Local)
}

func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	at, err := slotStart(r.PostForm.Get("date"), r.PostForm.Get("time"))
	if err != nil {
		redirectWithNotice(w, r, h.dashboard, MsgBookingInvalid, true)
		return
	}

	ctx := r.Context()
	sess := handleFrom(r)
	p, err := h.backend.CurrentPatient(ctx, sess.Token())
	if err != nil {
		h.logFor(r).WithError(err).Error("load patient")
		redirectWithNotice(w, r, h.dashboard, MsgPatientLoadError, true)
		return
	}

	appt := clinic.Appointment{
		Doctor:          &clinic.Doctor{ID: id},
		Patient:         &clinic.Patient{ID: p.ID},
		AppointmentTime: clinic.LocalTime{Time: at},
		Status:          clinic.StatusScheduled,
	}
	res, err := h.backend.BookAppointment(ctx, appt, sess.Token())
	if err != nil {
		h.logFor(r).WithError(err).Error("book appointment request failed")
		redirectWithNotice(w, r, h.dashboard, MsgBookingError, true)
		return
	}
	if !res.Success {
		redirectWithNotice(w, r, h.dashboard, res.Message, true)
		return
	}

	record(ctx, h.recorder, h.log, audit.Event{
		Type:      audit.EventAppointmentBooked,
		ActorRole: string(sess.Role()),
		Subject:   strconv.FormatInt(p.ID, 10),
		Payload:   map[string]any{"doctor_id": id, "at": at.Format(time.RFC3339)},
	})
	redirectWithNotice(w, r, h.dashboard, res.Message, false)
}

func (h *Handler) patientRows(ctx context.Context, f clinic.AppointmentFilter, token string) (view.Fragment, error) {
	var (
		appts []clinic.Appointment
		err   error
	)
	if f.IsZero() {
		var p clinic.Patient
		p, err = h.backend.CurrentPatient(ctx, token)
		if err == nil {
			appts, err = h.backend.PatientAppointments(ctx, p.ID, string(session.RolePatient), token)
		}
	} else {
		appts, err = h.backend.FilterAppointments(ctx, f, token)
	}
	if err != nil {
		return view.Fragment{view.PatientTableError()}, err
	}
	return view.AppointmentRows(appts), nil
}

// PatientAppointments lists the patient's own appointments. The delegated
// script asks for rows only; a normal navigation gets the full page.
func (h *Handler) PatientAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := clinic.AppointmentFilter{Condition: q.Get("condition"), Name: q.Get("name")}
	token := handleFrom(r).Token()

	if isFragment(r) {
		h.sequenced(w, r, listPatientAppointment, func(ctx context.Context) (view.Fragment, error) {
			return h.patientRows(ctx, f, token)
		})
		return
	}

	rows, err := h.patientRows(r.Context(), f, token)
	if err != nil {
		h.logFor(r).WithError(err).Error("load appointments")
	}
	h.renderPage(w, r, http.StatusOK, page{
		title: "Appointments",
		body: []*html.Node{
			view.AppointmentFilterForm(f),
			view.AppointmentTable(rows),
		},
	})
}
