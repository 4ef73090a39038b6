package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fintrack/fintrack/infra/initializer"
	"github.com/fintrack/fintrack/pkg/config"
	"github.com/fintrack/fintrack/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	app := webapi.NewApp(*deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	deps.Logger.Info("Starting server", "env", cfg.Env, "address", addr)
	return app.Listen(addr)
}
