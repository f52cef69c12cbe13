// Command simulator wires the order book, matching engine, virtual
// mempool, command log, event bus, and network shim into a runnable
// process. It follows a flag-plus-viper bootstrap, then drives a periodic
// mempool tick loop instead of serving any external transport; this
// process has no API surface of its own.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abdoElHodaky/clobsim/internal/commandlog"
	"github.com/abdoElHodaky/clobsim/internal/config"
	"github.com/abdoElHodaky/clobsim/internal/eventbus"
	"github.com/abdoElHodaky/clobsim/internal/logging"
	"github.com/abdoElHodaky/clobsim/internal/matching"
	"github.com/abdoElHodaky/clobsim/internal/mempool"
	"github.com/abdoElHodaky/clobsim/internal/netshim"
	"github.com/abdoElHodaky/clobsim/internal/prng"
	"github.com/abdoElHodaky/clobsim/internal/snapshotcache"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML/JSON/TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("simulator exited with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdLog, err := commandlog.Open(cfg.CommandLogPath, logger)
	if err != nil {
		return err
	}
	defer cmdLog.Close()

	bus, err := eventbus.New(logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	cache := snapshotcache.New(2 * time.Second)

	engine := matching.New(cfg.Books, matching.Deps{
		CommandLog: cmdLog,
		Bus:        bus,
		Cache:      cache,
		Logger:     logger,
		Seed:       cfg.Seed,
	})

	rootRNG := prng.New(cfg.Seed)
	mempoolRNG := rootRNG.Derive(1 << 40)
	shimRNG := rootRNG.Derive(1 << 41)

	shim := netshim.New(cfg.NetShim, shimRNG, logger)

	pool, err := mempool.New(cfg.Mempool, engine, mempoolRNG, bus, shim, logger)
	if err != nil {
		return err
	}

	logger.Info("simulator started",
		zap.Strings("symbols", engine.SupportedSymbols()),
		zap.Int64("block_interval_ms", cfg.Mempool.BlockIntervalMs))

	interval := time.Duration(cfg.Mempool.BlockIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("simulator shutting down")
			return nil
		case <-ticker.C:
			summary, err := pool.Tick()
			if err != nil {
				logger.Debug("tick skipped", zap.Error(err))
				continue
			}
			logger.Debug("block tick",
				zap.Uint64("block_number", summary.BlockNumber),
				zap.Int("included", summary.Included),
				zap.Int("confirmed", summary.Confirmed),
				zap.Int("failed", summary.Failed))
		}
	}
}
