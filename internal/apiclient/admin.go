package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

// AdminLogin exchanges admin credentials for a bearer token.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (string, error) {
	data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/admin",
		body:   credentials{Username: username, Password: password},
	})
	if err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}
	return decodeToken(data)
}
