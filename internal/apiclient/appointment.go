package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

const appointmentPath = "/appointments"

// DoctorAppointments lists the calling doctor's appointments for a day.
func (c *Client) DoctorAppointments(ctx context.Context, f clinic.DoctorAppointmentFilter, token string) ([]clinic.Appointment, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   appointmentPath,
		query:  f.Query(),
		token:  token,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch doctor appointments: %w", err)
	}
	return decodeList[clinic.Appointment](data, "appointments")
}

// BookAppointment books a slot with a doctor for the calling patient.
func (c *Client) BookAppointment(ctx context.Context, a clinic.Appointment, token string) (Result, error) {
	return c.mutate(ctx, request{
		method: http.MethodPost,
		path:   appointmentPath,
		token:  token,
		body:   a,
	}, "Appointment booked successfully", "Error booking appointment")
}
