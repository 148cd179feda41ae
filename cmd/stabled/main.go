package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stablecore/config"
	"stablecore/core/events"
	"stablecore/core/state"
	"stablecore/crypto"
	"stablecore/native/stable"
	"stablecore/native/token"
	"stablecore/observability"
	"stablecore/observability/logging"
	"stablecore/oracle"
	"stablecore/rpc"
	"stablecore/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	env := flag.String("env", "dev", "deployment environment tag attached to every log line")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("stabled", *env, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "positions"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store, err := state.NewPositionStore(db)
	if err != nil {
		return err
	}

	engineAddr := crypto.ModuleAddress("stable")
	emitter := observability.NewMetricsEmitter(events.NoopEmitter{})

	stableUnit := token.NewStableUnit(cfg.StableSymbol, emitter)
	if err := stableUnit.TransferOwnership(engineAddr); err != nil {
		return fmt.Errorf("establish mint authority: %w", err)
	}

	symbols, tokens, feeds, err := buildCollateral(cfg, logger)
	if err != nil {
		return err
	}

	engine, err := stable.NewEngine(engineAddr, stableUnit, symbols, tokens, feeds)
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}
	engine.SetState(store)
	engine.SetEmitter(emitter)

	server := rpc.NewServer(engine, stableUnit, logger, cfg.RateLimitPerSecond)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("query api listening", slog.String("address", cfg.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildCollateral turns the configured collateral list into the parallel
// symbol/token/feed slices the engine consumes.
func buildCollateral(cfg *config.Config, logger *slog.Logger) ([]string, []stable.Asset, []oracle.Feed, error) {
	maxAge := time.Duration(cfg.OracleMaxAgeSeconds) * time.Second
	cacheTTL := time.Duration(cfg.OracleCacheTTLSeconds) * time.Second

	symbols := make([]string, 0, len(cfg.Collateral))
	tokens := make([]stable.Asset, 0, len(cfg.Collateral))
	feeds := make([]oracle.Feed, 0, len(cfg.Collateral))
	for _, asset := range cfg.Collateral {
		var feed oracle.Feed
		switch {
		case asset.FeedURL != "":
			httpFeed, err := oracle.NewHTTPFeed(nil, asset.FeedURL, asset.Symbol, maxAge, cacheTTL)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("collateral %s: %w", asset.Symbol, err)
			}
			feed = httpFeed
		default:
			manual := oracle.NewManualFeed("config", maxAge)
			if err := manual.SetPriceString(asset.Price, time.Now()); err != nil {
				return nil, nil, nil, fmt.Errorf("collateral %s: %w", asset.Symbol, err)
			}
			logger.Warn("using fixed configured price", slog.String("asset", asset.Symbol), slog.String("price", asset.Price))
			feed = manual
		}
		symbols = append(symbols, asset.Symbol)
		tokens = append(tokens, token.NewLedger(asset.Symbol))
		feeds = append(feeds, feed)
	}
	return symbols, tokens, feeds, nil
}
