// Package main - Entry point for the catering-finance API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	rulesloader "catering-finance/adapters/rules"
	"catering-finance/adapters/storage"
	"catering-finance/api"
	corerules "catering-finance/core/rules"
	"catering-finance/internal/config"
	"catering-finance/internal/logging"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Config file (JSON, YAML or TOML)")
	addr := flag.String("addr", "", "Server address (overrides config)")
	memory := flag.Bool("memory", false, "Keep snapshots in memory")
	flag.Parse()

	if err := run(*configPath, *addr, *memory); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string, memory bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	rules, err := loadRules(cfg.Rules)
	if err != nil {
		return err
	}

	var store storage.Store
	if memory {
		store = storage.NewMemoryStore()
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
			return err
		}
		store, err = storage.NewSQLiteStore(cfg.Storage.Path)
		if err != nil {
			return err
		}
	}
	defer store.Close()

	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger := logging.Named("api")
	logger.Info("catering-finance server",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("rules", cfg.Rules.Path))

	srv := api.NewServer(version,
		api.WithRules(rules),
		api.WithStore(store),
		api.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, cfg.Server)
}

func loadRules(cfg config.RulesConfig) (*corerules.Configuration, error) {
	switch {
	case cfg.Path == "":
		return corerules.Default(), nil
	case cfg.MergeDefaults:
		return rulesloader.LoadWithDefaults(cfg.Path)
	default:
		return rulesloader.Load(cfg.Path)
	}
}
