package repositories

import (
	"ambulance-route-service/internal/adapters/problemfile"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// InitSchema creates the tables used by the repositories and the network
// cache. The DDL is valid on both sqlite and postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createProblemsQuery := `
	CREATE TABLE IF NOT EXISTS problems (
		problem_id TEXT PRIMARY KEY,
		depot_label TEXT NOT NULL,
		depot_lat DOUBLE PRECISION NOT NULL,
		depot_lon DOUBLE PRECISION NOT NULL
	);
	`

	createDemandsQuery := `
	CREATE TABLE IF NOT EXISTS problem_demands (
		problem_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		label TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (problem_id, seq)
	);
	`

	createPlansQuery := `
	CREATE TABLE IF NOT EXISTS plans (
		plan_id TEXT PRIMARY KEY,
		problem_id TEXT NOT NULL,
		labels TEXT NOT NULL,
		total_km DOUBLE PRECISION NOT NULL,
		candidates INTEGER NOT NULL,
		radius_m DOUBLE PRECISION NOT NULL,
		attempts INTEGER NOT NULL,
		created_at BIGINT NOT NULL
	);
	`

	createPlanTripsQuery := `
	CREATE TABLE IF NOT EXISTS plan_trips (
		plan_id TEXT NOT NULL,
		trip_no INTEGER NOT NULL,
		stops TEXT NOT NULL,
		cost_km DOUBLE PRECISION NOT NULL,
		method TEXT NOT NULL,
		PRIMARY KEY (plan_id, trip_no)
	);
	`

	createNetworkCacheQuery := `
	CREATE TABLE IF NOT EXISTS network_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at BIGINT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_plans_problem_id
	ON plans(problem_id);
	`

	statements := []string{
		createProblemsQuery,
		createDemandsQuery,
		createPlansQuery,
		createPlanTripsQuery,
		createNetworkCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedFromJSON stores every problem of the JSON array at jsonPath. Each entry
// uses the problemfile layout and must carry a non-empty "id".
func SeedFromJSON(ctx context.Context, repo *SQLProblemRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed problems: read %q: %w", jsonPath, err)
	}

	var records []problemfile.Record
	if err := json.Unmarshal(bytes, &records); err != nil {
		return fmt.Errorf("seed problems: parse json: %w", err)
	}

	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return fmt.Errorf("seed problems: item at index %d: id cannot be empty", i+1)
		}

		p, err := rec.ToProblem()
		if err != nil {
			return fmt.Errorf("seed problems: item %q: %w", rec.ID, err)
		}

		if err := repo.SaveProblem(ctx, p); err != nil {
			return fmt.Errorf("seed problems: %w", err)
		}
	}

	return nil
}
