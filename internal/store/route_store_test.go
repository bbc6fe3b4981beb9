package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etaboard/internal/domain"
)

func TestRouteStoreUpdateAll(t *testing.T) {
	s := NewRouteStore()
	assert.False(t, s.GetStats().IsLoaded)

	routes := map[string]*domain.RouteContext{
		"b": {ID: "b", Companies: []string{"kmb"}},
		"a": {ID: "a", Companies: []string{"ctb"}},
	}
	stops := map[string]*domain.Stop{"S1": {ID: "S1", Name: domain.TerminalName{ZH: "中環", EN: "Central"}}}
	s.UpdateAll(routes, stops, "abc123")

	r, ok := s.Route("a")
	require.True(t, ok)
	assert.Equal(t, []string{"ctb"}, r.Companies)

	_, ok = s.Route("missing")
	assert.False(t, ok)

	stop, ok := s.Stop("S1")
	require.True(t, ok)
	assert.Equal(t, "Central", stop.Name.EN)

	assert.Equal(t, []string{"a", "b"}, s.RouteIDs())

	stats := s.GetStats()
	assert.True(t, stats.IsLoaded)
	assert.Equal(t, 2, stats.RoutesCount)
	assert.Equal(t, 1, stats.StopsCount)
	assert.Equal(t, "abc123", stats.Version)
}
