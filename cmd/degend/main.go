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
	"strings"
	"syscall"
	"time"

	"degenerus/config"
	"degenerus/core"
	"degenerus/observability/logging"
	"degenerus/oracle"
	"degenerus/rpc"
	"degenerus/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logger := logging.Setup("degend", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	worldCfg, err := buildWorldConfig(cfg)
	if err != nil {
		logger.Error("failed to resolve parameters", slog.Any("error", err))
		os.Exit(1)
	}

	provider := oracle.New(cfg.Gate.OracleEndpoint, logger)
	world, err := core.NewWorld(db, worldCfg, provider, time.Now().Unix())
	if err != nil {
		logger.Error("failed to start world", slog.Any("error", err))
		os.Exit(1)
	}
	defer world.Close()

	server := rpc.New(rpc.Config{World: world, Log: logger})
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rpc listening", slog.String("address", cfg.RPCAddress))
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("rpc server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "leveldb":
		return storage.NewLevelDB(cfg.DataDir)
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "degenerus.db"))
	case "memory":
		return storage.NewMemDB(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func buildWorldConfig(cfg *config.Config) (core.Config, error) {
	coinParams, err := cfg.CoinParams()
	if err != nil {
		return core.Config{}, err
	}
	gameParams, err := cfg.GameParams()
	if err != nil {
		return core.Config{}, err
	}
	gateCfg, err := cfg.GateConfig()
	if err != nil {
		return core.Config{}, err
	}
	return core.Config{Coin: coinParams, Game: gameParams, Gate: gateCfg}, nil
}
