package eta

import (
	"golang.org/x/text/cases"

	"etaboard/internal/domain"
)

// SameTerminal is the destination matching rule. English names match ignoring
// case, Chinese names must match exactly, and either match is enough. The two
// comparisons stay different: "Central" and "central" are one terminal, while
// "中環" and "中環 " are two.
func SameTerminal(a, b domain.TerminalName) bool {
	if a.EN != "" && b.EN != "" && foldCase(a.EN) == foldCase(b.EN) {
		return true
	}
	return a.ZH != "" && a.ZH == b.ZH
}

func foldCase(s string) string {
	// A Caser keeps state, so one is built per call.
	return cases.Fold().String(s)
}

// StopIndex resolves catalogue stops by id.
type StopIndex interface {
	Stop(id string) (*domain.Stop, bool)
}

// RouteDestinations lists the terminals a rider expects for the route: the last
// stop of every company's sequence followed by the listed destination.
func RouteDestinations(route *domain.RouteContext, stops StopIndex) []domain.TerminalName {
	dests := make([]domain.TerminalName, 0, len(route.Companies)+1)
	for _, co := range route.Companies {
		seq := route.StopsByCompany[co]
		if len(seq) == 0 {
			continue
		}
		if stop, ok := stops.Stop(seq[len(seq)-1]); ok {
			dests = append(dests, stop.Name)
		}
	}
	return append(dests, route.Destination)
}

// IsBranch reports whether dest must be shown next to the route number. Metro
// runs always are; other runs only when dest matches none of the candidates.
func IsBranch(dest domain.TerminalName, co string, candidates []domain.TerminalName) bool {
	if co == domain.CompanyMTR {
		return true
	}
	for _, c := range candidates {
		if SameTerminal(c, dest) {
			return false
		}
	}
	return true
}
