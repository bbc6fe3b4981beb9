package handler

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"etaboard/internal/middleware"
	"etaboard/internal/store"
)

// Stats tracks server-wide counters.
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	reportsServed    atomic.Int64
	wsConnections    atomic.Int64
	wsMessagesIn     atomic.Int64
	wsMessagesOut    atomic.Int64
	rateLimitBlocked atomic.Int64
}

var ServerStats = &Stats{
	startTime: time.Now(),
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncReports()          { s.reportsServed.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncWSMessagesIn()     { s.wsMessagesIn.Add(1) }
func (s *Stats) IncWSMessagesOut()    { s.wsMessagesOut.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }

type HubCounter interface {
	ClientCount() int
	SubscribedKeyCount() int
}

type StatsHandler struct {
	routes   *store.RouteStore
	arrivals *store.ArrivalStore
	hub      HubCounter
	limiter  *middleware.RateLimiter
}

// NewStatsHandler creates the handler. limiter may be nil.
func NewStatsHandler(routes *store.RouteStore, arrivals *store.ArrivalStore, hub HubCounter, limiter *middleware.RateLimiter) *StatsHandler {
	return &StatsHandler{
		routes:   routes,
		arrivals: arrivals,
		hub:      hub,
		limiter:  limiter,
	}
}

type StatsResponse struct {
	Server    ServerStatsResponse      `json:"server"`
	Catalogue store.RouteStats         `json:"catalogue"`
	Arrivals  ArrivalStatsResponse     `json:"arrivals"`
	WebSocket WebSocketStatsResponse   `json:"websocket"`
	RateLimit *middleware.LimiterStats `json:"rate_limit,omitempty"`
	Go        GoStatsResponse          `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	RequestCount  int64     `json:"request_count"`
	ReportsServed int64     `json:"reports_served"`
	RateLimited   int64     `json:"rate_limited"`
	Version       string    `json:"version"`
}

type ArrivalStatsResponse struct {
	WatchedKeys    int `json:"watched_keys"`
	SubscribedKeys int `json:"subscribed_keys"`
}

type WebSocketStatsResponse struct {
	Clients     int   `json:"clients"`
	Connections int64 `json:"connections"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(ServerStats.startTime)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			StartTime:     ServerStats.startTime,
			RequestCount:  ServerStats.requestCount.Load(),
			ReportsServed: ServerStats.reportsServed.Load(),
			RateLimited:   ServerStats.rateLimitBlocked.Load(),
			Version:       "1.0.0",
		},
		Catalogue: h.routes.GetStats(),
		Arrivals: ArrivalStatsResponse{
			WatchedKeys:    h.arrivals.Count(),
			SubscribedKeys: h.hub.SubscribedKeyCount(),
		},
		WebSocket: WebSocketStatsResponse{
			Clients:     h.hub.ClientCount(),
			Connections: ServerStats.wsConnections.Load(),
			MessagesIn:  ServerStats.wsMessagesIn.Load(),
			MessagesOut: ServerStats.wsMessagesOut.Load(),
		},
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}
	if h.limiter != nil {
		ls := h.limiter.Stats()
		response.RateLimit = &ls
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, response)
}
