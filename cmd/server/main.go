package main

import (
	"context"
	"database/sql"
	"delivery-insertion-planner/internal/adapters/cache"
	"delivery-insertion-planner/internal/adapters/events"
	"delivery-insertion-planner/internal/adapters/ptv"
	"delivery-insertion-planner/internal/api"
	"delivery-insertion-planner/internal/config"
	"delivery-insertion-planner/internal/platform/db"
	"delivery-insertion-planner/internal/platform/metrics"
	"delivery-insertion-planner/internal/ports"
	"delivery-insertion-planner/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (PTV, SQL/Redis caches, event brokers) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	port := config.Get("PORT", "8080")
	apiKey := config.Get("PTV_API_KEY", "")
	if apiKey == "" {
		return errors.New("PTV_API_KEY is required")
	}

	pollInterval, err := config.Duration("POLL_INTERVAL", services.DefaultPollInterval)
	if err != nil {
		return err
	}
	maxWait, err := config.Duration("POLL_MAX_WAIT", 0)
	if err != nil {
		return err
	}
	rateLimit, err := config.Float("PTV_RATE_LIMIT", 10)
	if err != nil {
		return err
	}

	fleet, err := config.LoadFleet(config.Get("FLEET_CONFIG", ""), time.Now())
	if err != nil {
		return err
	}

	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := config.Get("DB_DRIVER", db.DriverSQLite)
	conn, err := openDB(driver)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.InitSchema(ctx, conn, driver); err != nil {
		return err
	}

	var (
		addresses ports.AddressCache
		feed      ports.ProgressFeed
	)
	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		// Redis shares both addresses and progress across instances.
		broker, err := events.NewRedisBrokerFromURL(redisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer broker.Client().Close()

		addresses = cache.NewRedisAddressCache(broker.Client(), 30*24*time.Hour)
		feed = broker
	} else {
		addresses = sqlAddressCache(driver, conn)
		feed = events.NewBroker()
	}

	client, err := ptv.NewClient(apiKey, config.Get("PTV_BASE_URL", ptv.DefaultBaseURL), ptv.WithRateLimit(rateLimit, 5))
	if err != nil {
		return err
	}

	orchestrator := services.NewOrchestrator(ptv.NewOptimizationService(client), services.OrchestratorOptions{
		PollInterval: pollInterval,
		MaxWait:      maxWait,
		Progress:     feed,
	})
	planner, err := services.NewPlanner(fleet, ptv.NewReverseGeocoder(client, addresses), orchestrator)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Planner:    planner,
		Feed:       feed,
		JobContext: ctx,
		DB:         conn,
	})

	// WriteTimeout stays off so the websocket event stream is not cut.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server listening addr=:%s driver=%s vehicles_per_depot=%d", port, driver, fleet.VehiclesPerDepot)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDB(driver string) (*sql.DB, error) {
	switch driver {
	case db.DriverPostgres:
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for DB_DRIVER=pgx")
		}
		return db.Open(driver, databaseURL)
	default:
		return db.Open(driver, config.Get("DB_PATH", "data/app.db"))
	}
}

func sqlAddressCache(driver string, conn *sql.DB) ports.AddressCache {
	if driver == db.DriverPostgres {
		return cache.NewSQLAddressCache(conn)
	}
	return cache.NewSqliteAddressCache(conn)
}
