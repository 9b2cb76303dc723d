package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

const patientPath = "/patient"

// PatientSignup registers a patient.
func (c *Client) PatientSignup(ctx context.Context, p clinic.Patient) (Result, error) {
	return c.mutate(ctx, request{
		method: http.MethodPost,
		path:   patientPath + "/signup",
		body:   p,
	}, "Signup successful", "Signup failed")
}

// PatientLogin exchanges patient credentials for a bearer token.
func (c *Client) PatientLogin(ctx context.Context, email, password string) (string, error) {
	data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   patientPath + "/login",
		body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return "", fmt.Errorf("patient login: %w", err)
	}
	return decodeToken(data)
}

// CurrentPatient fetches the record of the patient owning token.
func (c *Client) CurrentPatient(ctx context.Context, token string) (clinic.Patient, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   patientPath + "/me",
		token:  token,
	})
	if err != nil {
		return clinic.Patient{}, fmt.Errorf("fetch patient: %w", err)
	}

	var wrapped struct {
		Patient *clinic.Patient `json:"patient"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Patient != nil {
		return *wrapped.Patient, nil
	}

	var p clinic.Patient
	if err := json.Unmarshal(data, &p); err != nil {
		return clinic.Patient{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return p, nil
}

// PatientAppointments lists the appointments of patient id as seen by role
// ("patient" or "doctor").
func (c *Client) PatientAppointments(ctx context.Context, id int64, role, token string) ([]clinic.Appointment, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   patientPath + "/" + strconv.FormatInt(id, 10) + "/appointments",
		query:  url.Values{"role": {role}},
		token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	return decodeList[clinic.Appointment](data, "appointments")
}

// FilterAppointments narrows the caller's appointments by condition and name.
func (c *Client) FilterAppointments(ctx context.Context, f clinic.AppointmentFilter, token string) ([]clinic.Appointment, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   patientPath + "/appointments/filter",
		query:  f.Query(),
		token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("filter appointments: %w", err)
	}
	return decodeList[clinic.Appointment](data, "appointments")
}
