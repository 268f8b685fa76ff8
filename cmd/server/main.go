package main

import (
	"flag"
	"fmt"
	"os"

	"courtlookup/internal/cache"
	"courtlookup/internal/config"
	"courtlookup/internal/database"
	"courtlookup/internal/server"
	"courtlookup/pkg/logger"
)

func main() {
	var migrate bool
	flag.BoolVar(&migrate, "migrate", false, "Run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer store.Close()

	if migrate {
		// Open already ran the migrations; this mode just confirms and exits.
		log.Info("Database migrations completed successfully")
		return
	}

	cacheService := cache.NewCache(cfg.CacheSize, cfg.CacheTTL)

	srv, err := server.New(cfg, store, cacheService, log)
	if err != nil {
		log.Fatal("Failed to initialize server", "error", err)
	}

	log.Info("Starting court case lookup service",
		"host", cfg.Host,
		"port", cfg.Port,
		"court", cfg.CourtName,
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server failed to start", "error", err)
	}
}
