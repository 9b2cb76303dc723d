package web

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/html"

	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/view"
)

// doctorDayFilter reads the day and patient name of the doctor dashboard.
// A missing or malformed date means today.
func (h *Handler) doctorDayFilter(r *http.Request) clinic.DoctorAppointmentFilter {
	q := r.URL.Query()
	date := q.Get("date")
	if _, err := time.Parse(clinic.DateLayout, date); err != nil {
		date = h.now().Format(clinic.DateLayout)
	}
	return clinic.DoctorAppointmentFilter{Date: date, PatientName: q.Get("patientName")}
}

func (h *Handler) doctorRows(ctx context.Context, f clinic.DoctorAppointmentFilter, token string) (view.Fragment, error) {
	appts, err := h.backend.DoctorAppointments(ctx, f, token)
	if err != nil {
		return view.Fragment{view.DoctorTableError()}, err
	}
	return view.PatientRows(appts), nil
}

func (h *Handler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	f := h.doctorDayFilter(r)
	rows, err := h.doctorRows(r.Context(), f, handleFrom(r).Token())
	if err != nil {
		h.logFor(r).WithError(err).Error("load appointments")
	}

	h.renderPage(w, r, http.StatusOK, page{
		title: "Doctor Dashboard",
		body: []*html.Node{
			view.DoctorDateFilterForm(f),
			view.PatientTable(rows),
		},
	})
}

func (h *Handler) DoctorAppointmentsFragment(w http.ResponseWriter, r *http.Request) {
	f := h.doctorDayFilter(r)
	token := handleFrom(r).Token()
	h.sequenced(w, r, listDoctorAppointments, func(ctx context.Context) (view.Fragment, error) {
		return h.doctorRows(ctx, f, token)
	})
}
