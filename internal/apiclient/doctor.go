package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hackgods/clinic-portal/internal/clinic"
)

const doctorPath = "/doctor"

// Doctors lists every doctor.
func (c *Client) Doctors(ctx context.Context) ([]clinic.Doctor, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: doctorPath})
	if err != nil {
		return nil, fmt.Errorf("fetch doctors: %w", err)
	}
	return decodeList[clinic.Doctor](data, "doctors")
}

// FilterDoctors queries the backend with the non-empty fields of f.
func (c *Client) FilterDoctors(ctx context.Context, f clinic.DoctorFilter) ([]clinic.Doctor, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   doctorPath + "/filter",
		query:  f.Query(),
	})
	if err != nil {
		return nil, fmt.Errorf("filter doctors: %w", err)
	}
	return decodeList[clinic.Doctor](data, "doctors")
}

// SaveDoctor creates a doctor. Admin only.
func (c *Client) SaveDoctor(ctx context.Context, d clinic.Doctor, token string) (Result, error) {
	return c.mutate(ctx, request{
		method: http.MethodPost,
		path:   doctorPath,
		token:  token,
		body:   d,
	}, "Doctor added successfully", "Failed to add doctor")
}

// DeleteDoctor removes a doctor by id. Admin only.
func (c *Client) DeleteDoctor(ctx context.Context, id int64, token string) (Result, error) {
	return c.mutate(ctx, request{
		method: http.MethodDelete,
		path:   doctorPath + "/" + strconv.FormatInt(id, 10),
		token:  token,
	}, "Doctor deleted", "Failed to delete doctor.")
}

type credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// DoctorLogin exchanges doctor credentials for a bearer token.
func (c *Client) DoctorLogin(ctx context.Context, email, password string) (string, error) {
	data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   doctorPath + "/login",
		body:   credentials{Email: email, Password: password},
	})
	if err != nil {
		return "", fmt.Errorf("doctor login: %w", err)
	}
	return decodeToken(data)
}
