// Command landserve serves land mask previews over a WebSocket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lawnchairsociety/landforge/internal/catalog"
	"github.com/lawnchairsociety/landforge/internal/config"
	"github.com/lawnchairsociety/landforge/internal/logger"
	"github.com/lawnchairsociety/landforge/internal/params"
	"github.com/lawnchairsociety/landforge/internal/server"
)

func main() {
	serverConfigFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	paramsFile := flag.String("params", "", "Path to landmasses YAML (overrides generation.params_path)")
	listen := flag.String("listen", "", "Listen address (overrides listen in the server config)")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, err := logger.LoadConfig(*loggingConfig)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting landforge preview server")

	serverCfg, err := config.LoadConfig(*serverConfigFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *serverConfigFile, "error", err)
	}
	if *listen != "" {
		serverCfg.Listen = *listen
	}
	if len(serverCfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(serverCfg.WebSocket.AllowedOrigins) == 1 && serverCfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", serverCfg.WebSocket.AllowedOrigins)
	}

	path := *paramsFile
	if path == "" {
		path = serverCfg.Generation.ParamsPath
	}
	path = params.ResolvePath(path)
	p, err := params.Load(path)
	if err != nil {
		log.Fatalf("Failed to load landmass params: %v", err)
	}
	logger.Info("Landmass params loaded", "path", path)

	srv := server.NewServer(serverCfg, p)

	if serverCfg.Catalog.Enabled {
		cat, err := catalog.OpenWithConfig(catalogConfig(serverCfg.Catalog))
		if err != nil {
			log.Fatalf("Failed to open run catalog: %v", err)
		}
		defer cat.Close()
		srv.SetRecorder(cat)
		logger.Info("Run catalog enabled", "driver", serverCfg.Catalog.Driver)
	}

	go func() {
		if err := srv.Start(serverCfg.Listen); err != nil {
			log.Fatalf("Preview server error: %v", err)
		}
	}()

	logger.Info("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not complete cleanly", "error", err)
	}
	logger.Info("Server stopped")
}

// catalogConfig maps the server.yaml catalog section onto catalog.Config.
func catalogConfig(c config.CatalogConfig) catalog.Config {
	if c.Driver != string(catalog.DialectPostgres) {
		return catalog.DefaultConfig(c.SQLitePath)
	}
	pg := catalog.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.Database = c.PostgresDatabase
	pg.SSLMode = c.PostgresSSLMode
	return catalog.Config{Driver: c.Driver, Postgres: pg}
}
