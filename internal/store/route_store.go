package store

import (
	"sort"
	"sync"
	"time"

	"etaboard/internal/domain"
)

// RouteStore holds the route and stop catalogue. Entries are never mutated after
// UpdateAll; a refresh swaps the whole catalogue, so returned pointers stay valid
// and consistent for the caller's session.
type RouteStore struct {
	mu     sync.RWMutex
	routes map[string]*domain.RouteContext
	stops  map[string]*domain.Stop

	version    string
	lastUpdate time.Time
}

func NewRouteStore() *RouteStore {
	return &RouteStore{
		routes: make(map[string]*domain.RouteContext),
		stops:  make(map[string]*domain.Stop),
	}
}

func (s *RouteStore) UpdateAll(routes map[string]*domain.RouteContext, stops map[string]*domain.Stop, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routes = routes
	s.stops = stops
	s.version = version
	s.lastUpdate = time.Now()
}

func (s *RouteStore) Route(id string) (*domain.RouteContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	route, ok := s.routes[id]
	return route, ok
}

func (s *RouteStore) Stop(id string) (*domain.Stop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stop, ok := s.stops[id]
	return stop, ok
}

// RouteIDs returns every route id, sorted.
func (s *RouteStore) RouteIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.routes))
	for id := range s.routes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type RouteStats struct {
	RoutesCount int       `json:"routes_count"`
	StopsCount  int       `json:"stops_count"`
	Version     string    `json:"version"`
	LastUpdate  time.Time `json:"last_update"`
	IsLoaded    bool      `json:"is_loaded"`
}

func (s *RouteStore) GetStats() RouteStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return RouteStats{
		RoutesCount: len(s.routes),
		StopsCount:  len(s.stops),
		Version:     s.version,
		LastUpdate:  s.lastUpdate,
		IsLoaded:    !s.lastUpdate.IsZero(),
	}
}
