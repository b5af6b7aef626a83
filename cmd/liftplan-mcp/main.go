package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/liftplan/internal/backend"
	"github.com/claude/liftplan/internal/config"
	lpmcp "github.com/claude/liftplan/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// liftplan-mcp speaks MCP over stdio for desktop assistants. It either opens
// the database directly or forwards to a running server's REST API.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "LiftPlan server URL; tools call its REST API")
	apiKey := flag.String("api-key", os.Getenv("LIFTPLAN_API_KEY"), "API key for -remote")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds lpmcp.DataSource
	var opts []server.StdioOption

	if *remote != "" {
		ds = lpmcp.NewHTTPClient(strings.TrimRight(*remote, "/"), *apiKey)
		log.Info("forwarding MCP tools", "server", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		ctx := context.Background()
		store, closeStore, err := backend.Open(ctx, cfg.Database, "migrations", log)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer closeStore()

		uid, err := backend.DevUser(ctx, store)
		if err != nil {
			log.Error("failed to create dev user", "error", err)
			os.Exit(1)
		}
		ds = lpmcp.NewLocal(backend.NewService(store, nil, log))
		opts = append(opts, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return lpmcp.WithUserID(ctx, uid)
		}))
	}

	if err := server.ServeStdio(lpmcp.New(ds, Version, log), opts...); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server: %v\n", err)
		os.Exit(1)
	}
}
