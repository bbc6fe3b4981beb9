// Package routedb loads the static route and stop catalogue.
//
// The source is a single JSON document with a "routeList" keyed by route id and a
// "stopList" keyed by stop id, in the layout published by the open Hong Kong
// route database.
package routedb

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"etaboard/internal/domain"
)

type ParseResult struct {
	Routes map[string]*domain.RouteContext
	Stops  map[string]*domain.Stop
}

// Validate checks that the result can back the route store: both tables are
// present, every route is filed under its own id, and every company of a route
// has a stop sequence.
func (r *ParseResult) Validate() error {
	if r.Routes == nil || r.Stops == nil {
		return errors.New("routedb: incomplete catalogue")
	}
	for id, route := range r.Routes {
		if route == nil || route.ID != id {
			return fmt.Errorf("routedb: route %q filed under the wrong id", id)
		}
		if len(route.Companies) == 0 {
			return fmt.Errorf("routedb: route %q has no company", id)
		}
		for _, co := range route.Companies {
			if len(route.StopsByCompany[co]) == 0 {
				return fmt.Errorf("routedb: route %q has no stops for %s", id, co)
			}
		}
	}
	return nil
}

type rawDB struct {
	RouteList map[string]rawRoute `json:"routeList"`
	StopList  map[string]rawStop  `json:"stopList"`
}

type rawRoute struct {
	Route       string              `json:"route"`
	Co          []string            `json:"co"`
	Stops       map[string][]string `json:"stops"`
	Dest        domain.TerminalName `json:"dest"`
	Orig        domain.TerminalName `json:"orig"`
	ServiceType json.RawMessage     `json:"serviceType"`
}

type rawStop struct {
	Name     domain.TerminalName `json:"name"`
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
}

type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger.With("component", "routedb_parser")}
}

// Parse decodes the database. Routes whose companies have no stop sequence are
// dropped, since no stop of theirs can be addressed.
func (p *Parser) Parse(data []byte) (*ParseResult, error) {
	var db rawDB
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("decode routedb: %w", err)
	}
	if db.RouteList == nil || db.StopList == nil {
		return nil, fmt.Errorf("routedb: missing routeList or stopList")
	}

	result := &ParseResult{
		Routes: make(map[string]*domain.RouteContext, len(db.RouteList)),
		Stops:  make(map[string]*domain.Stop, len(db.StopList)),
	}

	for id, s := range db.StopList {
		result.Stops[id] = &domain.Stop{
			ID:   id,
			Name: s.Name,
			Lat:  s.Location.Lat,
			Lon:  s.Location.Lng,
		}
	}

	skipped := 0
	for id, r := range db.RouteList {
		companies := make([]string, 0, len(r.Co))
		for _, co := range r.Co {
			if len(r.Stops[co]) > 0 {
				companies = append(companies, co)
			}
		}
		if len(companies) == 0 {
			skipped++
			continue
		}

		stops := make(map[string][]string, len(companies))
		for _, co := range companies {
			stops[co] = r.Stops[co]
		}
		result.Routes[id] = &domain.RouteContext{
			ID:             id,
			RouteNumber:    r.Route,
			Companies:      companies,
			StopsByCompany: stops,
			Destination:    r.Dest,
			Origin:         r.Orig,
			ServiceType:    serviceType(r.ServiceType),
		}
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	p.logger.Info("parsed route database",
		"routes", len(result.Routes),
		"stops", len(result.Stops),
		"skipped_routes", skipped,
	)
	return result, nil
}

// serviceType accepts both the string and the numeric form.
func serviceType(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
