package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything with a connectivity check: the Redis session store or
// the audit Postgres pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	deps    map[string]Pinger
	env     string
	version string
}

// NewHealthHandler checks deps on readiness. Nil entries are reported as
// disabled rather than down.
func NewHealthHandler(deps map[string]Pinger, env, version string) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.deps))
	status := "ok"

	for name, p := range h.deps {
		if p == nil {
			deps[name] = "disabled"
			continue
		}
		depCtx, depCancel := context.WithTimeout(ctx, time.Second)
		err := p.Ping(depCtx)
		depCancel()
		if err != nil {
			deps[name] = "down"
			status = "error"
			continue
		}
		deps[name] = "ok"
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
