package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"golang.org/x/net/html"

	"github.com/hackgods/clinic-portal/internal/audit"
	"github.com/hackgods/clinic-portal/internal/clinic"
	"github.com/hackgods/clinic-portal/internal/session"
	"github.com/hackgods/clinic-portal/internal/view"
)

const (
	MsgDoctorAdded   = "Doctor added successfully!"
	MsgDoctorSaveErr = "Error saving doctor. Please try again."
	MsgDoctorDeleted = "Doctor deleted successfully."
	MsgDeleteError   = "Error deleting doctor."
)

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	f := doctorFilterFrom(r)
	cards, err := h.doctorCards(r.Context(), f, session.RoleAdmin, csrf.Token(r), view.MsgNoDoctors)
	if err != nil {
		h.logFor(r).WithError(err).Error("load doctors")
	}

	h.renderPage(w, r, http.StatusOK, page{
		title: "Admin Dashboard",
		body: []*html.Node{
			view.DoctorFilterForm("/admin/doctors/fragment", f),
			view.Container("content", cards),
		},
	})
}

func (h *Handler) AdminDoctorsFragment(w http.ResponseWriter, r *http.Request) {
	f := doctorFilterFrom(r)
	token := csrf.Token(r)
	h.sequenced(w, r, listAdminDoctors, func(ctx context.Context) (view.Fragment, error) {
		return h.doctorCards(ctx, f, session.RoleAdmin, token, view.MsgNoDoctors)
	})
}

func (h *Handler) AddDoctorForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, page{
		title: "Add Doctor",
		body:  []*html.Node{view.AddDoctorForm(csrf.Token(r))},
	})
}

// AddDoctor creates a doctor and, on success, sends the admin back to the
// dashboard, which reloads the list from the backend.
func (h *Handler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	d := clinic.Doctor{
		Name:         r.PostForm.Get("name"),
		Email:        r.PostForm.Get("email"),
		Password:     r.PostForm.Get("password"),
		Mobile:       r.PostForm.Get("mobile"),
		Specialty:    r.PostForm.Get("specialty"),
		Availability: r.PostForm["availability"],
	}

	sess := handleFrom(r)
	res, err := h.backend.SaveDoctor(r.Context(), d, sess.Token())
	if err != nil {
		h.logFor(r).WithError(err).Error("save doctor request failed")
		res.Message = MsgDoctorSaveErr
	} else if !res.Success {
		res.Message = "Failed to add doctor: " + res.Message
	}
	if !res.Success {
		h.renderPage(w, r, http.StatusOK, page{
			title:  "Add Doctor",
			notice: view.Notice{Kind: view.NoticeError, Text: res.Message},
			body:   []*html.Node{view.AddDoctorForm(csrf.Token(r))},
		})
		return
	}

	record(r.Context(), h.recorder, h.log, audit.Event{
		Type:      audit.EventDoctorAdded,
		ActorRole: string(sess.Role()),
		Subject:   d.Email,
		Payload:   map[string]any{"name": d.Name, "specialty": d.Specialty},
	})
	redirectWithNotice(w, r, "/admin", MsgDoctorAdded, false)
}

// DeleteDoctor removes a doctor. Requests from the script get the list
// re-rendered with the filter in the query string, so the last deletion leaves
// the empty placeholder instead of a bare container; plain form posts are
// redirected.
func (h *Handler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sess := handleFrom(r)
	res, err := h.backend.DeleteDoctor(r.Context(), id, sess.Token())
	switch {
	case err != nil:
		h.logFor(r).WithError(err).WithField("doctor_id", id).Error("delete doctor request failed")
		h.deleteFailed(w, r, http.StatusBadGateway, MsgDeleteError)
	case !res.Success:
		h.deleteFailed(w, r, http.StatusConflict, res.Message)
	default:
		record(r.Context(), h.recorder, h.log, audit.Event{
			Type:      audit.EventDoctorDeleted,
			ActorRole: string(sess.Role()),
			Subject:   strconv.FormatInt(id, 10),
		})
		if isFragment(r) {
			cards, err := h.doctorCards(r.Context(), doctorFilterFrom(r), session.RoleAdmin, csrf.Token(r), view.MsgNoDoctors)
			if err != nil {
				h.logFor(r).WithError(err).Error("reload doctors")
			}
			h.renderFragment(w, r, cards)
			return
		}
		redirectWithNotice(w, r, "/admin", MsgDoctorDeleted, false)
	}
}

func (h *Handler) deleteFailed(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isFragment(r) {
		http.Error(w, msg, status)
		return
	}
	redirectWithNotice(w, r, "/admin", msg, true)
}
