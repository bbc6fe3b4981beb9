package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etaboard/internal/domain"
)

func newTestArrivalStore(ttl time.Duration, now *time.Time) *ArrivalStore {
	s := NewArrivalStore(ttl)
	s.now = func() time.Time { return *now }
	return s
}

func TestArrivalStorePendingVersusEmpty(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestArrivalStore(time.Minute, &now)

	assert.True(t, s.Watch("1A-1-X/3"))
	assert.False(t, s.Watch("1A-1-X/3"))

	_, ok := s.Get("1A-1-X/3")
	assert.False(t, ok, "watched key without a batch is pending")

	require.True(t, s.Update(domain.ArrivalBatch{Key: "1A-1-X/3", FetchedAt: now}))

	b, ok := s.Get("1A-1-X/3")
	require.True(t, ok)
	assert.NotNil(t, b.Records)
	assert.Empty(t, b.Records)
}

func TestArrivalStoreRejectsUnwatchedAndStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestArrivalStore(time.Minute, &now)

	assert.False(t, s.Update(domain.ArrivalBatch{Key: "nobody/0", FetchedAt: now}))

	s.Watch("r/0")
	fresh := domain.ArrivalBatch{
		Key:       "r/0",
		FetchedAt: now,
		Records:   []domain.ArrivalRecord{{ETA: "2024-05-01T10:05:00+08:00", CompanyCode: "kmb"}},
	}
	require.True(t, s.Update(fresh))

	stale := domain.ArrivalBatch{Key: "r/0", FetchedAt: now.Add(-time.Second)}
	assert.False(t, s.Update(stale))

	b, _ := s.Get("r/0")
	assert.Len(t, b.Records, 1)
}

func TestArrivalStoreGetReturnsCopy(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestArrivalStore(time.Minute, &now)
	s.Watch("r/0")
	s.Update(domain.ArrivalBatch{Key: "r/0", FetchedAt: now, Records: []domain.ArrivalRecord{{CompanyCode: "kmb"}}})

	b, _ := s.Get("r/0")
	b.Records[0].CompanyCode = "changed"

	again, _ := s.Get("r/0")
	assert.Equal(t, "kmb", again.Records[0].CompanyCode)
}

func TestArrivalStorePruneIdle(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestArrivalStore(time.Minute, &now)

	s.Watch("old/0")
	s.Update(domain.ArrivalBatch{Key: "old/0", FetchedAt: now})
	now = now.Add(45 * time.Second)
	s.Watch("new/0")
	now = now.Add(30 * time.Second)

	pruned := s.PruneIdle()

	assert.Equal(t, []string{"old/0"}, pruned)
	assert.Equal(t, []string{"new/0"}, s.WatchedKeys())
	_, ok := s.Get("old/0")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Count())
}
