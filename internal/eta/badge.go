package eta

import (
	"strconv"
	"strings"

	"etaboard/internal/domain"
	"etaboard/internal/i18n"
)

// RouteBadge is the heading of a route: its number and operators.
type RouteBadge struct {
	RouteNo      string `json:"routeNo"`
	ServiceType  int    `json:"serviceType"`
	SpecialTrip  bool   `json:"specialTrip"`
	SpecialLabel string `json:"specialLabel,omitempty"`
	Companies    string `json:"companies"`
}

// BuildRouteBadge reads the route number and service type from a catalogue key
// of the form "<routeNo>-<serviceType>-...". Service types from 2 up are special
// trips. Route numbers are translated in Chinese only.
func BuildRouteBadge(routeKey string, companies []string, lang domain.Language, cat *i18n.Catalogue) RouteBadge {
	parts := strings.SplitN(routeKey, "-", 3)
	badge := RouteBadge{RouteNo: parts[0]}
	if lang == domain.LangZH {
		badge.RouteNo = cat.RouteName(lang, parts[0])
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			badge.ServiceType = n
		}
	}
	if badge.ServiceType >= 2 {
		badge.SpecialTrip = true
		badge.SpecialLabel = cat.Phrases(lang).SpecialTrip
	}

	names := make([]string, 0, len(companies))
	for _, co := range companies {
		names = append(names, cat.Company(lang, co))
	}
	badge.Companies = strings.Join(names, "+")
	return badge
}
