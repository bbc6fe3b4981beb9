package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"etaboard/internal/domain"
	"etaboard/internal/eta"
	"etaboard/internal/report"
	"etaboard/internal/store"
)

type RouteHandler struct {
	service *report.Service
	routes  *store.RouteStore
	options *OptionParser
	logger  *slog.Logger
}

func NewRouteHandler(service *report.Service, routes *store.RouteStore, options *OptionParser, logger *slog.Logger) *RouteHandler {
	return &RouteHandler{
		service: service,
		routes:  routes,
		options: options,
		logger:  logger.With("handler", "routes"),
	}
}

type RoutesResponse struct {
	Routes     []string  `json:"routes"`
	Count      int       `json:"count"`
	ServerTime time.Time `json:"serverTime"`
}

// ListRoutes returns route ids, optionally narrowed to a route number prefix.
func (h *RouteHandler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	prefix := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("q")))

	ids := h.routes.RouteIDs()
	if prefix != "" {
		filtered := ids[:0:0]
		for _, id := range ids {
			if strings.HasPrefix(strings.ToUpper(id), prefix) {
				filtered = append(filtered, id)
			}
		}
		ids = filtered
	}

	respondJSON(w, http.StatusOK, RoutesResponse{
		Routes:     ids,
		Count:      len(ids),
		ServerTime: time.Now(),
	})
}

func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options.Parse(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.Route(r.PathValue("route"), opts.Language)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type ETAResponse struct {
	Report     *eta.TimeReport       `json:"report"`
	Options    domain.DisplayOptions `json:"options"`
	ServerTime time.Time             `json:"serverTime"`
}

func (h *RouteHandler) GetStopETA(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	routeID := r.PathValue("route")

	seq, err := strconv.Atoi(r.PathValue("seq"))
	if err != nil || seq < 0 {
		respondError(w, http.StatusBadRequest, "invalid stop sequence")
		return
	}
	opts, err := h.options.Parse(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.service.Report(domain.RouteStopKey(routeID, seq), opts)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	ServerStats.IncReports()

	h.logger.Debug("eta report served",
		"route", routeID,
		"seq", seq,
		"state", rep.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, ETAResponse{
		Report:     rep,
		Options:    opts,
		ServerTime: time.Now(),
	})
}

func (h *RouteHandler) respondLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrUnknownRoute):
		respondError(w, http.StatusNotFound, "route not found")
	case errors.Is(err, report.ErrUnknownStop):
		respondError(w, http.StatusNotFound, "stop not found")
	default:
		h.logger.Error("lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
