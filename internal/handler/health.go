package handler

import (
	"net/http"
	"time"

	"etaboard/internal/store"
)

// ReadinessChecker is implemented by every background component that needs a
// first successful cycle before the server can answer.
type ReadinessChecker interface {
	IsReady() bool
}

type HealthHandler struct {
	checks   map[string]ReadinessChecker
	arrivals *store.ArrivalStore
}

func NewHealthHandler(checks map[string]ReadinessChecker, arrivals *store.ArrivalStore) *HealthHandler {
	return &HealthHandler{
		checks:   checks,
		arrivals: arrivals,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready       bool            `json:"ready"`
	Components  map[string]bool `json:"components"`
	WatchedKeys int             `json:"watchedKeys"`
	ServerTime  time.Time       `json:"serverTime"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{
		Ready:       true,
		Components:  make(map[string]bool, len(h.checks)),
		WatchedKeys: h.arrivals.Count(),
		ServerTime:  time.Now(),
	}
	for name, c := range h.checks {
		ok := c.IsReady()
		resp.Components[name] = ok
		resp.Ready = resp.Ready && ok
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
