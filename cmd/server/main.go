package main

import (
	"ambulance-route-service/internal/adapters/cache"
	"ambulance-route-service/internal/adapters/repositories"
	"ambulance-route-service/internal/adapters/roadnet"
	"ambulance-route-service/internal/api"
	"ambulance-route-service/internal/config"
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/db"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/ports"
	"ambulance-route-service/internal/services"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var version = "dev"

// main is the application composition root.
// It wires concrete adapters (SQL, Overpass, Redis) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := config.Get("DB_DRIVER", db.DriverSQLite)
	seedPath := config.Get("SEED_PATH", "data/seeds/problems.json")
	port := config.Get("PORT", "8080")

	dsn := config.Get("DB_PATH", "data/app.db")
	if driver == db.DriverPostgres {
		dsn = os.Getenv("DATABASE_URL")
		if strings.TrimSpace(dsn) == "" {
			log.Fatal("DATABASE_URL is required when DB_DRIVER=pgx")
		}
	}

	cfg, err := config.LoadPlanner(config.Get("PLANNER_CONFIG", ""))
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	problems := repositories.NewSQLProblemRepository(conn, driver)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, problems, seedPath); err != nil {
		log.Fatal(err)
	}

	provider, err := newProvider(conn, driver, cfg)
	if err != nil {
		log.Fatal(err)
	}

	planner, err := services.NewPlanner(provider, services.PlannerConfig{
		Vehicle:         domain.NewVehicle(cfg.Capacity, cfg.MinTrips),
		MarginsMeters:   cfg.MarginsMeters,
		MinRadiusMeters: cfg.MinRadiusMeters,
		MatrixWorkers:   cfg.MatrixWorkers,
	})
	if err != nil {
		log.Fatal(err)
	}

	metrics.RegisterDefault()
	router := api.NewRouter(api.Deps{
		Problems: problems,
		Store:    repositories.NewSQLSolutionStore(conn, driver),
		Planner:  planner,
		Version:  version,
		SpeedKph: cfg.ReportSpeedKph,
	})

	// Timeouts are tuned for cold-cache planning (Overpass latency across several radii).
	log.Printf("Server listening addr=:%s driver=%s version=%s", port, driver, version)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newProvider prefers a local NETWORK_FILE. Otherwise Overpass payloads are
// cached in Redis when REDIS_URL is set, or in the service database.
func newProvider(conn *sql.DB, driver string, cfg config.Planner) (ports.NetworkProvider, error) {
	if path := config.Get("NETWORK_FILE", ""); path != "" {
		return roadnet.NewFileProvider(path)
	}

	var payloadCache roadnet.PayloadCache = cache.NewSQLNetworkCache(conn, driver, cfg.NetworkCacheTTL)
	if url := config.Get("REDIS_URL", ""); url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rdb, err := cache.NewRedisClient(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("new provider: %w", err)
		}
		payloadCache = cache.NewRedisNetworkCache(rdb, cfg.NetworkCacheTTL)
	}

	return roadnet.NewOverpassProvider(cfg.OverpassURL, cfg.OverpassRPS, roadnet.WithPayloadCache(payloadCache))
}

func initAndSeed(conn *sql.DB, problems *repositories.SQLProblemRepository, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(context.Background(), problems, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
