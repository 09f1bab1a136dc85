package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-scanner/config"
	"market-scanner/internal/api"
	"market-scanner/internal/events"
	"market-scanner/internal/gateset"
	"market-scanner/internal/history"
	"market-scanner/internal/logging"
	"market-scanner/internal/market"
	"market-scanner/internal/metrics"
	"market-scanner/internal/rules"
	"market-scanner/internal/scan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config load failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})
	log := logging.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := buildProvider(cfg)

	registry := rules.NewRegistry()
	sets := gateset.NewStore()
	bus := events.NewEventBus()
	m := metrics.NewMetrics()

	eval := scan.NewEvaluator(provider, registry, sets, cfg.ScannerConfig.LookbackDays)
	orch := scan.NewOrchestrator(eval, sets, bus, m, scan.NewPacer(cfg.ScannerConfig.Pace), cfg.ScannerConfig.Watchlist)

	var repo *history.Repository
	if dsn := cfg.DatabaseConfig.DSN; dsn != "" {
		repo, err = history.Open(ctx, dsn)
		if err != nil {
			log.Error().Err(err).Msg("scan history unavailable, continuing without it")
		} else {
			defer repo.Close()
			orch.SetRecorder(repo)
		}
	}

	server := api.NewServer(api.ServerConfig{
		Host:           cfg.ServerConfig.Host,
		Port:           cfg.ServerConfig.Port,
		ProductionMode: cfg.ServerConfig.ProductionMode,
	}, registry, sets, eval, orch, repo, bus)

	if cfg.ScannerConfig.LoopEnabled {
		loop := scan.NewLoop(orch, cfg.ScannerConfig.DefaultGateSet, cfg.ScannerConfig.LoopInterval)
		go loop.Run(ctx)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}

// buildProvider picks the market data source and wraps it in the candle
// cache so concurrent scans of the same symbol share one fetch.
func buildProvider(cfg *config.Config) market.Provider {
	log := logging.Component("main")

	var provider market.Provider
	if cfg.BinanceConfig.MockMode {
		log.Warn().Msg("mock mode enabled, serving synthetic market data")
		provider = market.NewMockProvider()
	} else {
		provider = market.NewBinanceProvider(cfg.BinanceConfig.APIKey, cfg.BinanceConfig.SecretKey, cfg.BinanceConfig.BaseURL)
	}

	var cache market.CandleCache
	if cfg.RedisConfig.Enabled {
		cache = market.NewRedisCache(cfg.RedisConfig.Addr, cfg.RedisConfig.Password, cfg.RedisConfig.DB, cfg.RedisConfig.TTL)
	} else {
		cache = market.NewMemoryCache(cfg.RedisConfig.TTL)
	}
	return market.NewCachedProvider(provider, cache)
}
