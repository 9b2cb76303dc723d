package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General",
	"Orthopedics",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var slots = []string{
	"09:00-10:00",
	"10:00-11:00",
	"11:00-12:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
}

// store is the in-memory clinic the dev backend serves.
type store struct {
	mu           sync.Mutex
	nextID       int64
	doctors      map[int64]clinic.Doctor
	patients     map[int64]clinic.Patient
	appointments map[int64]clinic.Appointment
}

func newStore() *store {
	return &store{
		doctors:      make(map[int64]clinic.Doctor),
		patients:     make(map[int64]clinic.Patient),
		appointments: make(map[int64]clinic.Appointment),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// seed fills the store with fake doctors and patients plus a few
// appointments spread over the coming days.
func (s *store) seed(doctors, patients int, demo clinic.Patient, demoDoctor clinic.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	demoDoctor.ID = s.id()
	s.doctors[demoDoctor.ID] = demoDoctor
	for i := 0; i < doctors; i++ {
		d := clinic.Doctor{
			ID:        s.id(),
			Name:      "Dr. " + gofakeit.LastName(),
			Email:     gofakeit.Email(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
			Password:  gofakeit.Password(true, true, true, false, false, 12),
			Mobile:    gofakeit.Phone(),
		}
		for _, slot := range slots {
			if gofakeit.Bool() {
				d.Availability = append(d.Availability, slot)
			}
		}
		s.doctors[d.ID] = d
	}

	demo.ID = s.id()
	s.patients[demo.ID] = demo
	for i := 0; i < patients; i++ {
		p := clinic.Patient{
			ID:       s.id(),
			Name:     gofakeit.Name(),
			Email:    gofakeit.Email(),
			Phone:    gofakeit.Phone(),
			Address:  gofakeit.Street() + ", " + gofakeit.City(),
			Password: gofakeit.Password(true, true, true, false, false, 12),
		}
		s.patients[p.ID] = p
	}

	ids := make([]int64, 0, len(s.patients))
	for id := range s.patients {
		ids = append(ids, id)
	}
	today := time.Now().Truncate(24 * time.Hour)
	for _, d := range s.doctors {
		for _, slot := range d.Availability {
			if !gofakeit.Bool() {
				continue
			}
			p := s.patients[ids[gofakeit.Number(0, len(ids)-1)]]
			start, _ := time.Parse("15:04", slot[:5])
			day := today.AddDate(0, 0, gofakeit.Number(-3, 5))
			at := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)

			status := clinic.StatusScheduled
			if at.Before(time.Now()) {
				status = clinic.StatusCompleted
			}
			s.addAppointmentLocked(d, p, at, status)
		}
	}
}

func (s *store) addAppointmentLocked(d clinic.Doctor, p clinic.Patient, at time.Time, status clinic.AppointmentStatus) clinic.Appointment {
	d.Password, p.Password = "", ""
	a := clinic.Appointment{
		ID:              s.id(),
		Doctor:          &d,
		Patient:         &p,
		AppointmentTime: clinic.LocalTime{Time: at},
		Status:          status,
	}
	s.appointments[a.ID] = a
	return a
}

func public(d clinic.Doctor) clinic.Doctor {
	d.Password, d.Mobile = "", ""
	if d.Availability == nil {
		d.Availability = []string{}
	}
	return d
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

// inPeriod reports whether any slot starts in the morning (AM) or afternoon (PM).
func inPeriod(availability []string, period string) bool {
	for _, slot := range availability {
		morning := slot < "12:00"
		if (strings.EqualFold(period, "AM") && morning) || (strings.EqualFold(period, "PM") && !morning) {
			return true
		}
	}
	return false
}

func (s *store) listDoctors(f clinic.DoctorFilter) []clinic.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []clinic.Doctor{}
	for _, d := range s.doctors {
		if f.Name != "" && !containsFold(d.Name, f.Name) {
			continue
		}
		if f.Specialty != "" && !strings.EqualFold(d.Specialty, f.Specialty) {
			continue
		}
		if f.Time != "" && !inPeriod(d.Availability, f.Time) {
			continue
		}
		out = append(out, public(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) addDoctor(d clinic.Doctor) (clinic.Doctor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doctors {
		if strings.EqualFold(existing.Email, d.Email) {
			return clinic.Doctor{}, false
		}
	}
	d.ID = s.id()
	s.doctors[d.ID] = d
	return d, true
}

func (s *store) deleteDoctor(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[id]; !ok {
		return false
	}
	delete(s.doctors, id)
	for aid, a := range s.appointments {
		if a.Doctor != nil && a.Doctor.ID == id {
			delete(s.appointments, aid)
		}
	}
	return true
}

func (s *store) doctorByEmail(email string) (clinic.Doctor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if strings.EqualFold(d.Email, email) {
			return d, true
		}
	}
	return clinic.Doctor{}, false
}

func (s *store) patientByEmail(email string) (clinic.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.patients {
		if strings.EqualFold(p.Email, email) {
			return p, true
		}
	}
	return clinic.Patient{}, false
}

func (s *store) addPatient(p clinic.Patient) (clinic.Patient, bool) {
	if _, exists := s.patientByEmail(p.Email); exists {
		return clinic.Patient{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.patients[p.ID] = p
	return p, true
}

// appointmentsWhere returns the appointments matching keep, oldest first.
func (s *store) appointmentsWhere(keep func(clinic.Appointment) bool) []clinic.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []clinic.Appointment{}
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentTime.Before(out[j].AppointmentTime.Time) })
	return out
}

func (s *store) book(doctorID, patientID int64, at time.Time) (clinic.Appointment, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.doctors[doctorID]
	if !ok {
		return clinic.Appointment{}, "Doctor not found"
	}
	p, ok := s.patients[patientID]
	if !ok {
		return clinic.Appointment{}, "Patient not found"
	}
	for _, a := range s.appointments {
		if a.Doctor.ID == doctorID && a.AppointmentTime.Equal(at) {
			return clinic.Appointment{}, "Appointment already booked"
		}
	}
	return s.addAppointmentLocked(d, p, at, clinic.StatusScheduled), ""
}
