package web

import (
	"context"
	"net/http"

	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

// Keys of the lists whose filter requests are sequenced per session.
const (
	listAdminDoctors       = "admin-doctors"
	listPatientDoctors     = "patient-doctors"
	listDoctorAppointments = "doctor-appointments"
	listPatientAppointment = "patient-appointments"
)

type buildFunc func(ctx context.Context) (view.Fragment, error)

// sequenced renders a list fragment unless a newer request for the same list
// started meanwhile, in which case it answers 204 and the script keeps the
// newer content.
func (h *Handler) sequenced(w http.ResponseWriter, r *http.Request, list string, build buildFunc) {
	ctx, done := h.seq.Begin(r.Context(), handleFrom(r).ID()+":"+list)
	frag, err := build(ctx)
	if !done() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logFor(r).WithError(err).WithField("list", list).Error("load list")
	}
	h.renderFragment(w, r, frag)
}

func doctorFilterFrom(r *http.Request) clinic.DoctorFilter {
	q := r.URL.Query()
	return clinic.DoctorFilter{
		Name:      q.Get("name"),
		Time:      q.Get("time"),
		Specialty: q.Get("specialty"),
	}
}

// doctorCards fetches the doctors matching f and renders them for role. An
// empty filter lists everyone. On failure the error placeholder is returned
// along with the error.
func (h *Handler) doctorCards(ctx context.Context, f clinic.DoctorFilter, role session.Role, csrfToken, emptyText string) (view.Fragment, error) {
	var (
		doctors []clinic.Doctor
		err     error
	)
	if f.IsZero() {
		doctors, err = h.backend.Doctors(ctx)
	} else {
		doctors, err = h.backend.FilterDoctors(ctx, f)
	}
	if err != nil {
		return view.Fragment{view.Placeholder(view.MsgDoctorsError, true)}, err
	}
	return view.DoctorList(doctors, role, csrfToken, emptyText), nil
}
