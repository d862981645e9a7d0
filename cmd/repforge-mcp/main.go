package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/repforge/repforge/internal/catalog"
	"github.com/repforge/repforge/internal/config"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/kvstore"
	repmcp "github.com/repforge/repforge/internal/mcp"
	"github.com/repforge/repforge/internal/workspace"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "Repforge server URL; when set, tools go through the REST API")
	apiKey := flag.String("api-key", os.Getenv("REPFORGE_AUTH_API_KEY"), "API key for edits in remote mode")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repforge-mcp", Version)
		return
	}

	// stdout carries the protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds repmcp.DataSource
	if *serverURL != "" {
		ds = repmcp.NewHTTPClient(*serverURL, *apiKey)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		ctx := context.Background()
		kv, closeStore, err := kvstore.Open(ctx, cfg.Storage, log)
		if err != nil {
			log.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		defer closeStore()

		cat := catalog.Default()
		if cfg.Catalog.Path != "" {
			if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
				log.Error("failed to load catalog", "error", err)
				os.Exit(1)
			}
		}

		ws, err := workspace.Open(ctx, kv, cat, ids.UUID, log)
		if err != nil {
			log.Error("failed to open workspace", "error", err)
			os.Exit(1)
		}
		ds = repmcp.NewLocal(ws)
		log.Info("local mode", "driver", cfg.Storage.Driver)
	}

	s := repmcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
