package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/api"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/config"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/database"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/server"
	"github.com/mahmouddattiaa/Focus-Ritual-App-sub003/internal/stats"
)

const defaultSigningKey = "5QZz1oTBfhU2kXo5Nn1cKKkC8K0CQUDzTMljuYsVrdo="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[focus-ritual] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgFocusRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	if err := dbConn.Migrate(cfg.MigrationsDir); err != nil {
		logger.Fatal("migrate:", err)
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	liveServer, err := server.NewLiveServer(logger, dbConn, statsUpdater)
	if err != nil {
		logger.Fatal("new live server:", err)
	}

	srv := api.NewFocusApp(mux, logger, liveServer, dbConn, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go liveServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down live server...")
	if err := liveServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("live server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
