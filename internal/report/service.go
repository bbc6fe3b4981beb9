// Package report turns stored catalogue and arrival data into display reports.
package report

import (
	"errors"
	"time"

	"etaboard/internal/domain"
	"etaboard/internal/eta"
	"etaboard/internal/i18n"
	"etaboard/internal/store"
)

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrUnknownStop  = errors.New("unknown stop")
)

// Watcher is told every time a route/stop key is asked for.
type Watcher interface {
	Watch(key string)
}

type Service struct {
	routes    *store.RouteStore
	arrivals  *store.ArrivalStore
	catalogue *i18n.Catalogue
	watcher   Watcher
	now       func() time.Time
}

func NewService(routes *store.RouteStore, arrivals *store.ArrivalStore, catalogue *i18n.Catalogue, watcher Watcher) *Service {
	return &Service{
		routes:    routes,
		arrivals:  arrivals,
		catalogue: catalogue,
		watcher:   watcher,
		now:       time.Now,
	}
}

// SetWatcher replaces the watcher. The arrival ingestor depends on the hub,
// which renders through this service, so it is attached after construction.
func (s *Service) SetWatcher(w Watcher) {
	s.watcher = w
}

// Resolve checks that key names an existing stop of an existing route.
func (s *Service) Resolve(key string) (*domain.RouteContext, int, error) {
	routeID, seq, ok := domain.ParseRouteStopKey(key)
	if !ok {
		return nil, 0, ErrUnknownStop
	}
	route, ok := s.routes.Route(routeID)
	if !ok {
		return nil, 0, ErrUnknownRoute
	}
	if _, ok := route.StopAt(seq); !ok {
		return nil, 0, ErrUnknownStop
	}
	return route, seq, nil
}

// Report builds the time report for key and marks the key as watched.
func (s *Service) Report(key string, opts domain.DisplayOptions) (*eta.TimeReport, error) {
	route, seq, err := s.Resolve(key)
	if err != nil {
		return nil, err
	}
	if s.watcher != nil {
		s.watcher.Watch(key)
	}
	return s.render(route, seq, key, opts), nil
}

// Render builds the report for a key already known to be valid, without
// touching its watch state. Keys that stopped resolving yield nil.
func (s *Service) Render(key string, opts domain.DisplayOptions) *eta.TimeReport {
	route, seq, err := s.Resolve(key)
	if err != nil {
		return nil
	}
	return s.render(route, seq, key, opts)
}

func (s *Service) render(route *domain.RouteContext, seq int, key string, opts domain.DisplayOptions) *eta.TimeReport {
	batch, _ := s.arrivals.Get(key)
	report := eta.BuildTimeReport(eta.ReportInput{
		Route:     route,
		Seq:       seq,
		Batch:     batch,
		Stops:     s.routes,
		Now:       s.now(),
		Options:   opts,
		Catalogue: s.catalogue,
	})
	return &report
}

type StopView struct {
	Seq      int    `json:"seq"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Terminal bool   `json:"terminal"`
}

type RouteView struct {
	ID          string         `json:"id"`
	Badge       eta.RouteBadge `json:"badge"`
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Stops       []StopView     `json:"stops"`
}

// Route describes a route in lang: its badge and its primary stop sequence.
func (s *Service) Route(routeID string, lang domain.Language) (*RouteView, error) {
	route, ok := s.routes.Route(routeID)
	if !ok {
		return nil, ErrUnknownRoute
	}

	view := &RouteView{
		ID:          route.ID,
		Badge:       eta.BuildRouteBadge(route.ID, route.Companies, lang, s.catalogue),
		Origin:      route.Origin.In(lang),
		Destination: route.Destination.In(lang),
	}
	stops := route.PrimaryStops()
	view.Stops = make([]StopView, 0, len(stops))
	for seq, id := range stops {
		sv := StopView{Seq: seq, ID: id, Terminal: eta.IsTerminalStop(route, id)}
		if stop, ok := s.routes.Stop(id); ok {
			sv.Name = stop.Name.In(lang)
		}
		view.Stops = append(view.Stops, sv)
	}
	return view, nil
}
