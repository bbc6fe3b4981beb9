package eta

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"etaboard/internal/domain"
)

func TestSameTerminal(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.TerminalName
		want bool
	}{
		{
			name: "english ignores case",
			a:    domain.TerminalName{EN: "Central", ZH: "中環"},
			b:    domain.TerminalName{EN: "central", ZH: "中環站"},
			want: true,
		},
		{
			name: "chinese exact match",
			a:    domain.TerminalName{EN: "Central (Macao Ferry)", ZH: "中環"},
			b:    domain.TerminalName{EN: "Central", ZH: "中環"},
			want: true,
		},
		{
			name: "chinese trailing space differs",
			a:    domain.TerminalName{EN: "Central", ZH: "中環"},
			b:    domain.TerminalName{EN: "Central Pier", ZH: "中環 "},
			want: false,
		},
		{
			name: "english whitespace is not trimmed",
			a:    domain.TerminalName{EN: "Central"},
			b:    domain.TerminalName{EN: "Central "},
			want: false,
		},
		{
			name: "empty names never match",
			a:    domain.TerminalName{},
			b:    domain.TerminalName{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameTerminal(tt.a, tt.b))
			assert.Equal(t, tt.want, SameTerminal(tt.b, tt.a))
		})
	}
}

func TestRouteDestinations(t *testing.T) {
	route := busRoute()
	route.Destination = domain.TerminalName{ZH: "尖沙咀", EN: "Tsim Sha Tsui"}

	got := RouteDestinations(route, testStops())

	assert.Equal(t, []domain.TerminalName{tsimShaTsui, route.Destination}, got)
}

func TestRouteDestinationsSkipsUnknownStops(t *testing.T) {
	route := busRoute()
	route.StopsByCompany["kmb"] = []string{"S1", "MISSING"}

	got := RouteDestinations(route, testStops())

	assert.Equal(t, []domain.TerminalName{route.Destination}, got)
}

func TestIsBranch(t *testing.T) {
	candidates := RouteDestinations(busRoute(), testStops())

	tests := []struct {
		name string
		dest domain.TerminalName
		co   string
		want bool
	}{
		{name: "usual terminal is hidden", dest: tsimShaTsui, co: "kmb", want: false},
		{name: "case differs in english", dest: domain.TerminalName{EN: "STAR FERRY"}, co: "kmb", want: false},
		{name: "short working is shown", dest: mongKok, co: "kmb", want: true},
		{name: "metro is always shown", dest: tsimShaTsui, co: domain.CompanyMTR, want: true},
		{name: "light rail follows matching", dest: tsimShaTsui, co: domain.CompanyLightRail, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBranch(tt.dest, tt.co, candidates))
			assert.Equal(t, tt.want, IsBranch(tt.dest, tt.co, candidates), "repeat call")
		})
	}
}
