package clinic

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type AppointmentStatus int

const (
	StatusScheduled AppointmentStatus = 0
	StatusCompleted AppointmentStatus = 1
)

func (s AppointmentStatus) String() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Doctor as served by the backend. Password and Mobile are only sent when an
// admin creates a doctor and are never echoed back. Empty fields are omitted
// so a bare {"id": n} can reference a doctor.
type Doctor struct {
	ID           int64    `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Email        string   `json:"email,omitempty"`
	Specialty    string   `json:"specialty,omitempty"`
	Availability []string `json:"availability,omitempty"`
	Password     string   `json:"password,omitempty"`
	Mobile       string   `json:"mobile,omitempty"`
}

// AvailabilityText joins the time slots for display.
func (d Doctor) AvailabilityText() string {
	return strings.Join(d.Availability, ", ")
}

type Patient struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Password string `json:"password,omitempty"`
}

type Appointment struct {
	ID              int64             `json:"id,omitempty"`
	Doctor          *Doctor           `json:"doctor,omitempty"`
	Patient         *Patient          `json:"patient,omitempty"`
	AppointmentTime LocalTime         `json:"appointmentTime"`
	Status          AppointmentStatus `json:"status"`
}

func (a Appointment) PatientName() string {
	if a.Patient == nil {
		return ""
	}
	return a.Patient.Name
}

func (a Appointment) DoctorName() string {
	if a.Doctor == nil {
		return ""
	}
	return a.Doctor.Name
}

// Date returns the appointment day as YYYY-MM-DD.
func (a Appointment) Date() string {
	if a.AppointmentTime.IsZero() {
		return ""
	}
	return a.AppointmentTime.Format(DateLayout)
}

const DateLayout = "2006-01-02"

// localLayouts are the encodings the backend uses for timestamps without a zone.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// LocalTime is a wall clock timestamp without a zone, as produced by the backend.
type LocalTime struct {
	time.Time
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised appointment time %q", s)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(localLayouts[0]) + `"`), nil
}

// DoctorFilter holds the doctor search criteria. Empty fields are left out of
// the query entirely.
type DoctorFilter struct {
	Name      string
	Time      string
	Specialty string
}

func (f DoctorFilter) Query() url.Values {
	q := url.Values{}
	addNonEmpty(q, "name", f.Name)
	addNonEmpty(q, "time", f.Time)
	addNonEmpty(q, "specialty", f.Specialty)
	return q
}

func (f DoctorFilter) IsZero() bool {
	return len(f.Query()) == 0
}

// AppointmentFilter narrows a patient's appointments by condition
// (pending, consulted) and doctor name.
type AppointmentFilter struct {
	Condition string
	Name      string
}

func (f AppointmentFilter) Query() url.Values {
	q := url.Values{}
	addNonEmpty(q, "condition", f.Condition)
	addNonEmpty(q, "name", f.Name)
	return q
}

func (f AppointmentFilter) IsZero() bool {
	return len(f.Query()) == 0
}

// DoctorAppointmentFilter selects a doctor's appointments for one day.
type DoctorAppointmentFilter struct {
	Date        string
	PatientName string
}

func (f DoctorAppointmentFilter) Query() url.Values {
	q := url.Values{}
	addNonEmpty(q, "date", f.Date)
	addNonEmpty(q, "patientName", f.PatientName)
	return q
}

func addNonEmpty(q url.Values, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		q.Set(key, v)
	}
}
