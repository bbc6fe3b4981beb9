package ingestor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"etaboard/internal/cache"
	"etaboard/internal/store"
	"etaboard/pkg/routedb"
)

type Downloader interface {
	Download(ctx context.Context) ([]byte, error)
}

// RawCache holds the last downloaded route database between restarts.
type RawCache interface {
	LoadRouteDB(ctx context.Context) ([]byte, *cache.RouteDBMeta, error)
	StoreRouteDB(ctx context.Context, data []byte, meta cache.RouteDBMeta, ttl time.Duration) error
}

type RouteOptions struct {
	UpdateInterval time.Duration
	CacheDir       string
	CacheTTL       time.Duration
}

// RouteIngestor keeps the route catalogue current.
type RouteIngestor struct {
	downloader Downloader
	parser     *routedb.Parser
	snapshots  *routedb.SnapshotCache
	rawCache   RawCache
	store      *store.RouteStore
	opts       RouteOptions
	logger     *slog.Logger
	onUpdate   func(context.Context)

	ready   bool
	readyMu sync.RWMutex
}

// NewRouteIngestor creates the ingestor. rawCache may be nil.
func NewRouteIngestor(downloader Downloader, rawCache RawCache, routes *store.RouteStore, opts RouteOptions, logger *slog.Logger) *RouteIngestor {
	return &RouteIngestor{
		downloader: downloader,
		parser:     routedb.NewParser(logger),
		snapshots:  routedb.NewSnapshotCache(opts.CacheDir, logger),
		rawCache:   rawCache,
		store:      routes,
		opts:       opts,
		logger:     logger.With("component", "route_ingestor"),
	}
}

func (i *RouteIngestor) Start(ctx context.Context) {
	if err := i.warmStart(ctx); err != nil {
		i.logger.Info("no cached route database, downloading", "reason", err)
		i.update(ctx)
	}

	ticker := time.NewTicker(i.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.update(ctx)
		}
	}
}

// warmStart loads the catalogue from the redis copy of the raw database.
func (i *RouteIngestor) warmStart(ctx context.Context) error {
	if i.rawCache == nil {
		return fmt.Errorf("cache disabled")
	}
	data, meta, err := i.rawCache.LoadRouteDB(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("cache miss")
	}
	if err := i.apply(data); err != nil {
		return err
	}
	i.logger.Info("route catalogue loaded from cache",
		"fingerprint", meta.Fingerprint,
		"fetched_at", meta.FetchedAt,
	)
	return nil
}

func (i *RouteIngestor) update(ctx context.Context) {
	i.logger.Info("starting route database update")
	start := time.Now()

	data, err := i.downloader.Download(ctx)
	if err != nil {
		i.logger.Error("failed to download route database", "error", err)
		return
	}
	downloadDuration := time.Since(start)

	if err := i.apply(data); err != nil {
		i.logger.Error("failed to apply route database", "error", err)
		return
	}

	if i.rawCache != nil {
		meta := cache.RouteDBMeta{
			Fingerprint: routedb.Version(data),
			SizeBytes:   len(data),
			FetchedAt:   time.Now(),
		}
		if err := i.rawCache.StoreRouteDB(ctx, data, meta, i.opts.CacheTTL); err != nil {
			i.logger.Warn("failed to cache route database", "error", err)
		}
	}

	if i.onUpdate != nil {
		i.onUpdate(ctx)
	}

	stats := i.store.GetStats()
	i.logger.Info("route database update completed",
		"download_duration_ms", downloadDuration.Milliseconds(),
		"total_duration_ms", time.Since(start).Milliseconds(),
		"routes", stats.RoutesCount,
		"stops", stats.StopsCount,
	)
}

// apply swaps in the catalogue of data, read from the snapshot of its version
// when one exists.
func (i *RouteIngestor) apply(data []byte) error {
	version := routedb.Version(data)
	if version == i.store.GetStats().Version {
		i.logger.Debug("route database unchanged", "version", version)
		return nil
	}

	result, err := i.snapshots.Load(version)
	if err == nil {
		i.logger.Info("loaded route snapshot", "version", version)
	} else {
		i.logger.Debug("route snapshot miss", "version", version, "error", err)
		result, err = i.parser.Parse(data)
		if err != nil {
			return fmt.Errorf("parse routedb: %w", err)
		}
		if err := i.snapshots.Save(version, result); err != nil {
			i.logger.Warn("failed to save route snapshot", "version", version, "error", err)
		}
	}

	i.store.UpdateAll(result.Routes, result.Stops, version)
	if !i.IsReady() {
		i.setReady(true)
	}
	return nil
}

func (i *RouteIngestor) IsReady() bool {
	i.readyMu.RLock()
	defer i.readyMu.RUnlock()
	return i.ready
}

func (i *RouteIngestor) setReady(ready bool) {
	i.readyMu.Lock()
	defer i.readyMu.Unlock()
	i.ready = ready
}

func (i *RouteIngestor) SetOnUpdate(fn func(context.Context)) {
	i.onUpdate = fn
}
