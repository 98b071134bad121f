package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fitforge/internal/catalog"
	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/mcp"
	"github.com/meltforce/fitforge/internal/overload"
	"github.com/meltforce/fitforge/internal/progress"
	"github.com/meltforce/fitforge/internal/server"
	"github.com/meltforce/fitforge/internal/storage"
	"github.com/meltforce/fitforge/internal/workout"
	"tailscale.com/client/local"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpRemote := flag.String("mcp-remote", "", "serve MCP over stdio against a remote FitForge server URL and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Remote MCP mode needs no config or database: the remote server owns
	// the data and this process is just a stdio transport.
	if *mcpRemote != "" {
		ds := mcp.NewHTTPClient(*mcpRemote)
		mcpSrv := mcp.New(ds, Version, log)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			log.Error("mcp stdio server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	log.Info("FitForge starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Warm the exercise catalog; a misconfigured catalog fails startup
	// rather than the first request.
	cat := catalog.New(db)
	if err := cat.Warm(ctx); err != nil {
		log.Error("exercise catalog validation failed", "error", err)
		os.Exit(1)
	}

	manager := workout.NewManager(db, cat)
	aggregator := progress.New(db, cfg.Recovery)
	engine := overload.New(db, cfg.Overload)

	// Start listener first: tsnet identity is only available after the
	// node is up, and the server needs it to resolve users.
	var listener net.Listener
	var lc *local.Client

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err = tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	srv := server.New(db, manager, cat, aggregator, engine, cfg.Auth.APIKey, lc, log)

	// Mount MCP on the same listener, behind the same identity middleware
	mcpSrv := mcp.New(&mcp.Local{DB: db, Aggregator: aggregator, Engine: engine}, Version, log)
	srv.MountMCP(mcpSrv)

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
