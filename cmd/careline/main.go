package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"careline/internal/app"
	"careline/pkg/config"
	"careline/pkg/logger"
	"careline/pkg/shutdown"
)

// build metadata - set via ldflags during release
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	flags := config.ParseFlags()

	cfgPath := config.ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, sources, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// flags win over config/env when provided by the user
	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
	} else if cfg.Server.Address == "" && cfg.Server.Port == 0 {
		addr = flags.Addr
	}
	dbPath := cfg.Storage.DBPath
	if flags.Set["db"] || dbPath == "" {
		dbPath = flags.DB
	}
	if flags.Set["addr"] || flags.Set["db"] {
		if sources != "" {
			sources += "+flags"
		} else {
			sources = "flags"
		}
	}

	logger.Init(cfg.Logging.Level)

	a, err := app.New(cfg, addr, dbPath, sources, version)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	ctx, cancel := shutdown.NotifyContext(context.Background())
	defer cancel()
	if err := a.Run(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	logger.Info("server_stopped")
}
