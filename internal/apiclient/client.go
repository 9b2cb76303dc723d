package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrTransport = errors.New("backend unreachable")
	ErrDecode    = errors.New("unexpected backend response")
)

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// MessageOf returns the backend message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// Result is the outcome of a mutating call: whether the backend accepted it
// and the message to show.
type Result struct {
	Success bool
	Message string
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do sends req and returns the raw body of a 2xx response. Non-2xx responses
// become *StatusError, network failures wrap ErrTransport.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Message: messageFrom(data)}
	}
	return data, nil
}

// mutate runs a call whose outcome is shown to the user as a message.
// Transport failures are returned as errors; backend rejections are not.
func (c *Client) mutate(ctx context.Context, req request, okMsg, failMsg string) (Result, error) {
	data, err := c.do(ctx, req)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return Result{Success: false, Message: MessageOf(err, failMsg)}, nil
		}
		return Result{Success: false, Message: failMsg}, err
	}
	msg := messageFrom(data)
	if msg == "" {
		msg = okMsg
	}
	return Result{Success: true, Message: msg}, nil
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func messageFrom(data []byte) string {
	var mb messageBody
	if err := json.Unmarshal(data, &mb); err != nil {
		return ""
	}
	if mb.Message != "" {
		return mb.Message
	}
	return mb.Error
}

type tokenBody struct {
	Token string `json:"token"`
}

func decodeToken(data []byte) (string, error) {
	var tb tokenBody
	if err := json.Unmarshal(data, &tb); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if tb.Token == "" {
		return "", fmt.Errorf("%w: no token in response", ErrDecode)
	}
	return tb.Token, nil
}

// decodeList accepts either a bare JSON array or an object wrapping the array
// under key. An empty body or null decodes to an empty list.
func decodeList[T any](data []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return []T{}, nil
	}
	return decodeList[T](inner, key)
}
