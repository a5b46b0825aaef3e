// Package health exposes liveness and readiness endpoints. Liveness only
// reports that the process is serving; readiness runs the registered
// dependency checks. A failed critical check makes the service not ready;
// a failed non-critical check only degrades it.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds a whole readiness pass, not each check.
const checkTimeout = 5 * time.Second

// Checker probes a single dependency.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult reports one dependency's state.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler holds the registered checkers and serves the endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
}

func NewHandler() *Handler {
	return &Handler{checkers: make(map[string]registration)}
}

// Register adds a critical dependency check. Registering the same name
// twice replaces the earlier checker.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

// RegisterCritical adds a check whose failure makes readiness fail.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a check whose failure only marks the service
// degraded. Readiness still answers 200.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{check: checker, critical: critical}
}

// LivenessHandler answers 200 unconditionally.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check. It answers 503 when a
// critical dependency is down and 200 otherwise, reporting "degraded"
// in the body when only non-critical dependencies failed.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		resp := h.evaluate(ctx)
		code := http.StatusOK
		if resp.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeHealth(w, code, resp)
	}
}

func (h *Handler) evaluate(ctx context.Context) Response {
	h.mu.RLock()
	snapshot := make(map[string]registration, len(h.checkers))
	for name, reg := range h.checkers {
		snapshot[name] = reg
	}
	h.mu.RUnlock()

	resp := Response{
		Status:    StatusUp,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(snapshot)),
	}
	for name, reg := range snapshot {
		result := CheckResult{Status: StatusUp, Critical: reg.critical}
		if err := reg.check(ctx); err != nil {
			result.Status = StatusDown
			result.Error = err.Error()
			if reg.critical {
				resp.Status = StatusDown
			} else if resp.Status == StatusUp {
				resp.Status = StatusDegraded
			}
		}
		resp.Checks[name] = result
	}
	return resp
}

func writeHealth(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
