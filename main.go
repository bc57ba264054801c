package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/civicmesh/opinionmap/cliparse"
	"github.com/civicmesh/opinionmap/db"
	"github.com/civicmesh/opinionmap/engine"
	"github.com/civicmesh/opinionmap/router"
	"github.com/civicmesh/opinionmap/store"
	"github.com/civicmesh/opinionmap/votematrix"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Wire the store, vote matrix and math engine
	st := store.New(dbConn)
	matrix := votematrix.New(st)
	eng := engine.New(engine.Config{
		MinVotes:      cfg.MinVotes,
		KMin:          cfg.KMin,
		KMax:          cfg.KMax,
		KMeansMaxIter: cfg.KMeansMaxIter,
	}, matrix, st)

	// Create router
	mux := router.NewRouter(st, matrix, eng)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
