// Package main runs the fittrack MCP server over stdio.
// The same tools are mounted on the main service at /mcp when mcp_enabled is set.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/fittrack/internal"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/workouts"
	workoutsmcp "github.com/2beens/fittrack/internal/workouts/mcp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	closeLogging := logging.Setup(logging.LoggerSetupParams{
		LogFileName: cfg.LogsPath,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})
	defer closeLogging()
	if cfg.LogsPath == "" {
		// stdout carries the protocol
		log.SetOutput(os.Stderr)
	}

	location, err := cfg.Location()
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backends, err := internal.OpenBackends(ctx, cfg)
	if err != nil {
		log.Fatalf("open backends: %v", err)
	}
	defer backends.Close()

	templates, overrides, err := backends.Stores(nil)
	if err != nil {
		log.Fatalf("stores: %v", err)
	}
	if cfg.TemplateBackend == config.BackendMemory {
		log.Warnln("template backend is memory, the plan starts empty")
	}

	tracker := workouts.NewTracker(workouts.NewTrackerParams{
		Templates: templates,
		Overrides: overrides,
		StreakCap: cfg.StreakCap,
	})

	server := workoutsmcp.NewServer(tracker, location)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Errorf("mcp server: %v", err)
	}
}
