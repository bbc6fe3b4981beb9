// Package ingestor keeps the stores fed from upstream sources.
package ingestor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"etaboard/internal/domain"
	"etaboard/internal/store"
)

type Fetcher interface {
	Fetch(ctx context.Context, routeID string, seq int) ([]domain.ArrivalRecord, error)
}

// Broadcaster is told which route/stop keys received a new batch. The keys it
// still has subscribers for are kept watched across prunes.
type Broadcaster interface {
	Broadcast(keys []string)
	SubscribedKeys() []string
}

type ArrivalOptions struct {
	PollInterval  time.Duration
	PruneInterval time.Duration
	MaxConcurrent int
}

// ArrivalIngestor polls every watched route/stop key and stores the batches.
type ArrivalIngestor struct {
	fetcher     Fetcher
	store       *store.ArrivalStore
	broadcaster Broadcaster
	opts        ArrivalOptions
	logger      *slog.Logger
	now         func() time.Time

	trigger chan string

	ready   bool
	readyMu sync.RWMutex
}

func NewArrivalIngestor(fetcher Fetcher, arrivals *store.ArrivalStore, broadcaster Broadcaster, opts ArrivalOptions, logger *slog.Logger) *ArrivalIngestor {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = opts.PollInterval * 3
	}
	return &ArrivalIngestor{
		fetcher:     fetcher,
		store:       arrivals,
		broadcaster: broadcaster,
		opts:        opts,
		logger:      logger.With("component", "arrival_ingestor"),
		now:         time.Now,
		trigger:     make(chan string, 64),
	}
}

func (i *ArrivalIngestor) Run(ctx context.Context) {
	ticker := time.NewTicker(i.opts.PollInterval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(i.opts.PruneInterval)
	defer pruneTicker.Stop()

	i.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.poll(ctx)
		case key := <-i.trigger:
			i.fetchKeys(ctx, []string{key})
		case <-pruneTicker.C:
			i.prune()
		}
	}
}

// Watch registers interest in key. A key seen for the first time is fetched
// right away instead of waiting for the next tick.
func (i *ArrivalIngestor) Watch(key string) {
	if !i.store.Watch(key) {
		return
	}
	select {
	case i.trigger <- key:
	default:
		i.logger.Debug("trigger queue full, key waits for next poll", "key", key)
	}
}

func (i *ArrivalIngestor) poll(ctx context.Context) {
	start := time.Now()
	keys := i.store.WatchedKeys()
	updated, failed := i.fetchKeys(ctx, keys)

	if !i.IsReady() && (failed == 0 || len(updated) > 0) {
		i.setReady(true)
		i.logger.Info("arrival ingestor ready", "keys", len(keys))
	}

	i.logger.Debug("poll completed",
		"keys", len(keys),
		"updated", len(updated),
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// fetchKeys fetches keys in parallel, at most MaxConcurrent at a time. A failed
// fetch leaves the previous batch in place.
func (i *ArrivalIngestor) fetchKeys(ctx context.Context, keys []string) (updated []string, failed int) {
	if len(keys) == 0 {
		return nil, 0
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, i.opts.MaxConcurrent)
	)

	for _, key := range keys {
		routeID, seq, ok := domain.ParseRouteStopKey(key)
		if !ok {
			i.logger.Warn("skipping malformed key", "key", key)
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return updated, failed
		}

		wg.Add(1)
		go func(key, routeID string, seq int) {
			defer wg.Done()
			defer func() { <-sem }()

			records, err := i.fetcher.Fetch(ctx, routeID, seq)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				i.logger.Error("failed to fetch arrivals", "key", key, "error", err)
				return
			}
			batch := domain.ArrivalBatch{Key: key, Records: records, FetchedAt: i.now()}
			if i.store.Update(batch) {
				updated = append(updated, key)
			}
		}(key, routeID, seq)
	}
	wg.Wait()

	if len(updated) > 0 && i.broadcaster != nil {
		i.broadcaster.Broadcast(updated)
	}
	return updated, failed
}

// prune renews every key with live subscribers, then forgets the rest once
// their watch TTL has passed.
func (i *ArrivalIngestor) prune() {
	if i.broadcaster != nil {
		for _, key := range i.broadcaster.SubscribedKeys() {
			i.Watch(key)
		}
	}
	pruned := i.store.PruneIdle()
	if len(pruned) > 0 {
		i.logger.Info("pruned idle keys", "count", len(pruned))
	}
}

func (i *ArrivalIngestor) IsReady() bool {
	i.readyMu.RLock()
	defer i.readyMu.RUnlock()
	return i.ready
}

func (i *ArrivalIngestor) setReady(ready bool) {
	i.readyMu.Lock()
	defer i.readyMu.Unlock()
	i.ready = ready
}
