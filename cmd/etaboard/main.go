package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"etaboard/internal/cache"
	"etaboard/internal/config"
	"etaboard/internal/handler"
	"etaboard/internal/hub"
	"etaboard/internal/i18n"
	"etaboard/internal/ingestor"
	"etaboard/internal/middleware"
	"etaboard/internal/report"
	"etaboard/internal/store"
	"etaboard/pkg/etaapi"
	"etaboard/pkg/routedb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting etaboard server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"redis_enabled", cfg.RedisEnabled,
		"default_language", cfg.Display.Language,
	)

	catalogue := i18n.Default()
	if cfg.PhrasesFile != "" {
		catalogue, err = i18n.LoadWithOverrides(cfg.PhrasesFile)
		if err != nil {
			logger.Error("failed to load phrases", "path", cfg.PhrasesFile, "error", err)
			os.Exit(1)
		}
	}

	var rawCache ingestor.RawCache
	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without route cache", "error", err)
		} else {
			defer redisCache.Close()
			rawCache = redisCache
		}
	}

	routeStore := store.NewRouteStore()
	arrivalStore := store.NewArrivalStore(cfg.WatchTTL)

	etaClient := etaapi.New(cfg.ETAAPIURL, etaapi.Options{
		Timeout:         cfg.ETAFetchTimeout,
		MaxRetries:      uint64(cfg.ETAFetchRetries),
		InitialInterval: etaapi.DefaultOptions().InitialInterval,
	}, logger)

	reportService := report.NewService(routeStore, arrivalStore, catalogue, nil)
	wsHub := hub.NewHub(reportService, logger)

	arrivalIng := ingestor.NewArrivalIngestor(etaClient, arrivalStore, wsHub, ingestor.ArrivalOptions{
		PollInterval:  cfg.PollInterval,
		MaxConcurrent: cfg.MaxConcurrentFetch,
	}, logger)
	reportService.SetWatcher(arrivalIng)

	routeIng := ingestor.NewRouteIngestor(
		routedb.NewDownloader(cfg.RouteDBURL, logger),
		rawCache,
		routeStore,
		ingestor.RouteOptions{
			UpdateInterval: cfg.RouteDBUpdateInterval,
			CacheDir:       cfg.RouteDBCacheDir,
			CacheTTL:       cfg.CacheTTL,
		},
		logger,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)
	limiter.OnBlocked(handler.ServerStats.IncRateLimitBlocked)

	options := handler.NewOptionParser(cfg.Display)
	mux := http.NewServeMux()
	handler.Handlers{
		Routes: handler.NewRouteHandler(reportService, routeStore, options, logger),
		WS:     handler.NewWSHandler(wsHub, reportService, options, logger),
		Health: handler.NewHealthHandler(map[string]handler.ReadinessChecker{
			"routes":   routeIng,
			"arrivals": arrivalIng,
		}, arrivalStore),
		Stats: handler.NewStatsHandler(routeStore, arrivalStore, wsHub, limiter),
	}.Mount(mux)

	var h http.Handler = mux
	h = limiter.Middleware(h)
	h = handler.CORSMiddleware(cfg.CORSOrigins)(h)
	h = handler.RequestLogMiddleware(logger)(h)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go wsHub.Run(ctx)
	go routeIng.Start(ctx)
	go arrivalIng.Run(ctx)
	go limiter.Run(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
