package repositories

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/db"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ ports.SolutionStore = (*SQLSolutionStore)(nil)

// SQL-backed implementation of the SolutionStore port.
type SQLSolutionStore struct {
	DB     *sql.DB
	Driver string

	now func() time.Time
}

func NewSQLSolutionStore(conn *sql.DB, driver string) *SQLSolutionStore {
	return &SQLSolutionStore{DB: conn, Driver: driver, now: time.Now}
}

// SavePlan stores plan under a new UUID (plan.ID is ignored) and returns it.
func (s *SQLSolutionStore) SavePlan(ctx context.Context, plan ports.StoredPlan) (_ string, err error) {
	defer obs.Time(ctx, "plans.Save")(&err)

	if s.DB == nil {
		return "", errors.New("sql solution store: DB is nil")
	}

	labels, err := json.Marshal(plan.Labels)
	if err != nil {
		return "", fmt.Errorf("save plan: encode labels: %w", err)
	}

	id := uuid.NewString()
	createdAt := plan.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("save plan: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO plans (
		plan_id,
		problem_id,
		labels,
		total_km,
		candidates,
		radius_m,
		attempts,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`),
		id, plan.ProblemID, string(labels), plan.Solution.TotalKm, plan.Solution.Candidates,
		plan.RadiusMeters, plan.Attempts, createdAt.UnixMilli(),
	); err != nil {
		return "", fmt.Errorf("save plan: insert plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO plan_trips (plan_id, trip_no, stops, cost_km, method)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return "", fmt.Errorf("save plan: prepare trip insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range plan.Solution.Trips {
		stops, err := json.Marshal(orderOrEmpty(t.Order))
		if err != nil {
			return "", fmt.Errorf("save plan: encode trip %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, string(stops), t.CostKm, t.Method); err != nil {
			return "", fmt.Errorf("save plan: insert trip %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("save plan: commit tx: %w", err)
	}
	return id, nil
}

// GetPlan loads the plan stored under id, or ports.ErrNotFound.
func (s *SQLSolutionStore) GetPlan(ctx context.Context, id string) (_ ports.StoredPlan, err error) {
	defer obs.Time(ctx, "plans.Get")(&err)

	if s.DB == nil {
		return ports.StoredPlan{}, errors.New("sql solution store: DB is nil")
	}

	plan := ports.StoredPlan{ID: id}
	var labels string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, `
	SELECT
		problem_id,
		labels,
		total_km,
		candidates,
		radius_m,
		attempts,
		created_at
	FROM plans
	WHERE plan_id = ?;
	`), id).Scan(
		&plan.ProblemID, &labels, &plan.Solution.TotalKm, &plan.Solution.Candidates,
		&plan.RadiusMeters, &plan.Attempts, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: query plans table: %w", id, err)
	}
	if err := json.Unmarshal([]byte(labels), &plan.Labels); err != nil {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: decode labels: %w", id, err)
	}
	plan.CreatedAt = time.UnixMilli(createdAt).UTC()

	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, `
	SELECT
		stops,
		cost_km,
		method
	FROM plan_trips
	WHERE plan_id = ?
	ORDER BY trip_no;
	`), id)
	if err != nil {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: query plan_trips table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var stops string
		var t domain.Trip
		if err := rows.Scan(&stops, &t.CostKm, &t.Method); err != nil {
			return ports.StoredPlan{}, fmt.Errorf("get plan %q: scan trip: %w", id, err)
		}
		if err := json.Unmarshal([]byte(stops), &t.Order); err != nil {
			return ports.StoredPlan{}, fmt.Errorf("get plan %q: decode trip: %w", id, err)
		}
		plan.Solution.Trips = append(plan.Solution.Trips, t)
	}
	if err := rows.Err(); err != nil {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: row iteration: %w", id, err)
	}

	return plan, nil
}

func orderOrEmpty(order []int) []int {
	if order == nil {
		return []int{}
	}
	return order
}
