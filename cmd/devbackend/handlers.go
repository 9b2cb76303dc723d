package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

type server struct {
	store  *store
	tokens tokens
	admin  credentials
	log    logrus.FieldLogger
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "could not parse JSON")
		return false
	}
	return true
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/admin", s.adminLogin)

	r.Route("/doctor", func(r chi.Router) {
		r.Get("/", s.listDoctors)
		r.Get("/filter", s.listDoctors)
		r.Post("/login", s.doctorLogin)
		r.With(s.tokens.requireRole("admin")).Post("/", s.addDoctor)
		r.With(s.tokens.requireRole("admin")).Delete("/{id}", s.deleteDoctor)
	})

	r.Route("/patient", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.patientLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.tokens.requireRole("patient"))
			r.Get("/me", s.me)
			r.Get("/{id}/appointments", s.patientAppointments)
			r.Get("/appointments/filter", s.filterPatientAppointments)
		})
	})

	r.Route("/appointments", func(r chi.Router) {
		r.With(s.tokens.requireRole("doctor")).Get("/", s.doctorAppointments)
		r.With(s.tokens.requireRole("patient")).Post("/", s.book)
	})

	return r
}

func (s *server) login(w http.ResponseWriter, subject, role string) {
	tok, err := s.tokens.issue(subject, role)
	if err != nil {
		s.log.WithError(err).Error("sign token")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *server) adminLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decode(w, r, &c) {
		return
	}
	if c.Username != s.admin.Username || c.Password != s.admin.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}
	s.login(w, c.Username, "admin")
}

func (s *server) doctorLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decode(w, r, &c) {
		return
	}
	d, ok := s.store.doctorByEmail(c.Email)
	if !ok || d.Password != c.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.login(w, d.Email, "doctor")
}

func (s *server) patientLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decode(w, r, &c) {
		return
	}
	p, ok := s.store.patientByEmail(c.Email)
	if !ok || p.Password != c.Password {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.login(w, p.Email, "patient")
}

func (s *server) listDoctors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctors := s.store.listDoctors(clinic.DoctorFilter{
		Name:      q.Get("name"),
		Time:      q.Get("time"),
		Specialty: q.Get("specialty"),
	})
	writeJSON(w, http.StatusOK, map[string]any{"doctors": doctors})
}

func (s *server) addDoctor(w http.ResponseWriter, r *http.Request) {
	var d clinic.Doctor
	if !decode(w, r, &d) {
		return
	}
	if d.Name == "" || d.Email == "" || d.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	if _, ok := s.store.addDoctor(d); !ok {
		writeMessage(w, http.StatusConflict, "Doctor already exists")
		return
	}
	writeMessage(w, http.StatusCreated, "Doctor added to db")
}

func (s *server) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || !s.store.deleteDoctor(id) {
		writeMessage(w, http.StatusNotFound, "Doctor not found with id")
		return
	}
	writeMessage(w, http.StatusOK, "Doctor deleted successfully")
}

func (s *server) signup(w http.ResponseWriter, r *http.Request) {
	var p clinic.Patient
	if !decode(w, r, &p) {
		return
	}
	if p.Email == "" || p.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if _, ok := s.store.addPatient(p); !ok {
		writeMessage(w, http.StatusConflict, "Patient with email id or phone no already exist")
		return
	}
	writeMessage(w, http.StatusCreated, "Signup successful")
}

func (s *server) currentPatient(r *http.Request) (clinic.Patient, bool) {
	c := claimsFrom(r.Context())
	if c == nil {
		return clinic.Patient{}, false
	}
	p, ok := s.store.patientByEmail(c.Subject)
	p.Password = ""
	return p, ok
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	p, ok := s.currentPatient(r)
	if !ok {
		writeMessage(w, http.StatusNotFound, "Patient not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (s *server) patientAppointments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.currentPatient(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if !ok || err != nil || id != p.ID {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	appts := s.store.appointmentsWhere(func(a clinic.Appointment) bool {
		return a.Patient != nil && a.Patient.ID == p.ID
	})
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *server) filterPatientAppointments(w http.ResponseWriter, r *http.Request) {
	p, ok := s.currentPatient(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	q := r.URL.Query()
	condition, name := q.Get("condition"), q.Get("name")

	appts := s.store.appointmentsWhere(func(a clinic.Appointment) bool {
		if a.Patient == nil || a.Patient.ID != p.ID {
			return false
		}
		switch strings.ToLower(condition) {
		case "pending":
			if a.Status != clinic.StatusScheduled {
				return false
			}
		case "consulted":
			if a.Status != clinic.StatusCompleted {
				return false
			}
		}
		return name == "" || containsFold(a.DoctorName(), name)
	})
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *server) doctorAppointments(w http.ResponseWriter, r *http.Request) {
	d, ok := s.store.doctorByEmail(claimsFrom(r.Context()).Subject)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	q := r.URL.Query()
	date, patientName := q.Get("date"), q.Get("patientName")

	appts := s.store.appointmentsWhere(func(a clinic.Appointment) bool {
		if a.Doctor == nil || a.Doctor.ID != d.ID {
			return false
		}
		if date != "" && a.Date() != date {
			return false
		}
		return patientName == "" || containsFold(a.PatientName(), patientName)
	})
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

func (s *server) book(w http.ResponseWriter, r *http.Request) {
	var a clinic.Appointment
	if !decode(w, r, &a) {
		return
	}
	p, ok := s.currentPatient(r)
	if !ok || a.Patient == nil || a.Patient.ID != p.ID || a.Doctor == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid appointment")
		return
	}
	if a.AppointmentTime.Before(time.Now()) {
		writeMessage(w, http.StatusBadRequest, "Appointment time must be in the future")
		return
	}
	if _, msg := s.store.book(a.Doctor.ID, p.ID, a.AppointmentTime.Time); msg != "" {
		writeMessage(w, http.StatusConflict, msg)
		return
	}
	writeMessage(w, http.StatusCreated, "Appointment booked successfully")
}
