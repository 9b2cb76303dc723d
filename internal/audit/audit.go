package audit

import (
	"context"
	"time"
)

const (
	EventLoginSucceeded    = "LOGIN_SUCCEEDED"
	EventLoginFailed       = "LOGIN_FAILED"
	EventDoctorAdded       = "DOCTOR_ADDED"
	EventDoctorDeleted     = "DOCTOR_DELETED"
	EventPatientSignedUp   = "PATIENT_SIGNED_UP"
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
	EventSessionInvalid    = "SESSION_INVALIDATED"
)

// Event is one portal action worth keeping. Subject identifies what the
// action was about (a doctor id, an email); it is never a credential.
type Event struct {
	Type      string
	ActorRole string
	Subject   string
	Payload   map[string]any
	CreatedAt time.Time
}

// Recorder stores events. Callers log failures and carry on; auditing never
// changes the outcome of a request.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// NopRecorder discards events. Used when no Postgres DSN is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }
