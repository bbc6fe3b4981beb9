package handler

import "net/http"

type Handlers struct {
	Routes *RouteHandler
	WS     *WSHandler
	Health *HealthHandler
	Stats  *StatsHandler
}

// Mount registers every endpoint on mux. JSON endpoints are gzip-compressed;
// the websocket upgrade is left untouched.
func (h Handlers) Mount(mux *http.ServeMux) {
	gz := func(fn http.HandlerFunc) http.Handler { return GzipMiddleware(fn) }

	mux.Handle("GET /v1/routes", gz(h.Routes.ListRoutes))
	mux.Handle("GET /v1/routes/{route}", gz(h.Routes.GetRoute))
	mux.Handle("GET /v1/routes/{route}/stops/{seq}/eta", gz(h.Routes.GetStopETA))
	mux.HandleFunc("/v1/ws", h.WS.ServeWS)

	mux.Handle("GET /v1/stats", gz(h.Stats.GetStats))
	mux.HandleFunc("GET /healthz", h.Health.Healthz)
	mux.HandleFunc("GET /readyz", h.Health.Readyz)
}
