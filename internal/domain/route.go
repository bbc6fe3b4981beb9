package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Stop is a stop in the route catalogue.
type Stop struct {
	ID   string       `json:"id"`
	Name TerminalName `json:"name"`
	Lat  float64      `json:"lat"`
	Lon  float64      `json:"lon"`
}

// RouteContext is the static metadata of one route, immutable for a display session.
type RouteContext struct {
	ID             string              `json:"id"`
	RouteNumber    string              `json:"route"`
	Companies      []string            `json:"co"`
	StopsByCompany map[string][]string `json:"stops"`
	Destination    TerminalName        `json:"dest"`
	Origin         TerminalName        `json:"orig"`
	ServiceType    string              `json:"serviceType"`
}

// HasCompany reports whether co is one of the route's operators.
func (r *RouteContext) HasCompany(co string) bool {
	for _, c := range r.Companies {
		if c == co {
			return true
		}
	}
	return false
}

// PrimaryStops is the stop sequence of the highest-priority company.
func (r *RouteContext) PrimaryStops() []string {
	if len(r.Companies) == 0 {
		return nil
	}
	return r.StopsByCompany[r.Companies[0]]
}

// StopAt resolves the stop id at seq in the primary sequence.
func (r *RouteContext) StopAt(seq int) (string, bool) {
	stops := r.PrimaryStops()
	if seq < 0 || seq >= len(stops) {
		return "", false
	}
	return stops[seq], true
}

// RouteStopKey identifies an ETA feed for one stop of one route.
func RouteStopKey(routeID string, seq int) string {
	return fmt.Sprintf("%s/%d", routeID, seq)
}

// ParseRouteStopKey splits a key produced by RouteStopKey.
func ParseRouteStopKey(key string) (routeID string, seq int, ok bool) {
	idx := strings.LastIndex(key, "/")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, false
	}
	seq, err := strconv.Atoi(key[idx+1:])
	if err != nil || seq < 0 {
		return "", 0, false
	}
	return key[:idx], seq, true
}
