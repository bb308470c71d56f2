package main

import (
	"ambulance-route-service/internal/adapters/cache"
	"ambulance-route-service/internal/adapters/problemfile"
	"ambulance-route-service/internal/adapters/roadnet"
	"ambulance-route-service/internal/config"
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"ambulance-route-service/internal/report"
	"ambulance-route-service/internal/services"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// solve plans the trips for one OptimizationProblemData.json file and prints
// the report. Exit status is 1 when no plan could be produced.
func main() {
	jsonPath := flag.String("json", "", "path to OptimizationProblemData.json (required)")
	networkPath := flag.String("network", "", "road network JSON file; empty queries Overpass")
	configPath := flag.String("config", config.Get("PLANNER_CONFIG", ""), "planner YAML config")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithRequestID(ctx, "")

	if err := run(ctx, *jsonPath, *networkPath, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Could not plan trips: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, jsonPath, networkPath, configPath string) error {
	cfg, err := config.LoadPlanner(configPath)
	if err != nil {
		return err
	}

	problem, err := problemfile.Load(jsonPath)
	if err != nil {
		return err
	}
	if err := report.WriteLoadedPoints(os.Stdout, problem.Locations()); err != nil {
		return err
	}

	provider, closeProvider, err := newProvider(ctx, cfg, networkPath)
	if err != nil {
		return err
	}
	defer closeProvider()

	planner, err := services.NewPlanner(provider, services.PlannerConfig{
		Vehicle:         domain.NewVehicle(cfg.Capacity, cfg.MinTrips),
		MarginsMeters:   cfg.MarginsMeters,
		MinRadiusMeters: cfg.MinRadiusMeters,
		MatrixWorkers:   cfg.MatrixWorkers,
	})
	if err != nil {
		return err
	}

	res, err := planner.Plan(ctx, problem)
	if err != nil {
		if errors.Is(err, domain.ErrRetryBudgetExhausted) {
			return fmt.Errorf("no connected road network even with the largest radius: %w", err)
		}
		return err
	}

	fmt.Println()
	return report.WriteSolution(os.Stdout, problem.Labels(), res.Solution, cfg.ReportSpeedKph)
}

// newProvider returns a file provider when networkPath is set, otherwise an
// Overpass provider with a Redis payload cache when REDIS_URL is set.
func newProvider(ctx context.Context, cfg config.Planner, networkPath string) (ports.NetworkProvider, func(), error) {
	noop := func() {}

	if networkPath != "" {
		p, err := roadnet.NewFileProvider(networkPath)
		return p, noop, err
	}

	var opts []roadnet.OverpassOption
	closer := noop
	if url := config.Get("REDIS_URL", ""); url != "" {
		rdb, err := cache.NewRedisClient(ctx, url)
		if err != nil {
			log.Printf("redis unavailable, continuing without network cache: %v", err)
		} else {
			opts = append(opts, roadnet.WithPayloadCache(cache.NewRedisNetworkCache(rdb, cfg.NetworkCacheTTL)))
			closer = func() { _ = rdb.Close() }
		}
	}

	p, err := roadnet.NewOverpassProvider(cfg.OverpassURL, cfg.OverpassRPS, opts...)
	if err != nil {
		closer()
		return nil, noop, err
	}
	return p, closer, nil
}
