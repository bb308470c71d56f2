package repositories

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/db"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var _ ports.ProblemRepository = (*SQLProblemRepository)(nil)

// SQL-backed implementation of the ProblemRepository port.
type SQLProblemRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLProblemRepository(conn *sql.DB, driver string) *SQLProblemRepository {
	return &SQLProblemRepository{DB: conn, Driver: driver}
}

// Return all stored problems ordered by id, demands in their stored order.
func (s *SQLProblemRepository) ListProblems(ctx context.Context) (_ []*domain.Problem, err error) {
	defer obs.Time(ctx, "problems.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql problem repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		problem_id,
		depot_label,
		depot_lat,
		depot_lon
	FROM problems
	ORDER BY problem_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list problems: query problems table: %w", err)
	}
	defer rows.Close()

	problems := make([]*domain.Problem, 0, 16)
	byID := make(map[string]*domain.Problem)
	for rows.Next() {
		p := &domain.Problem{}
		if err := rows.Scan(&p.ID, &p.Depot.Label, &p.Depot.Coordinates.Lat, &p.Depot.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list problems: scan row: %w", err)
		}
		problems = append(problems, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list problems: row iteration: %w", err)
	}
	// Release the connection before the second query; sqlite runs with one.
	rows.Close()

	demands, err := s.DB.QueryContext(ctx, `
	SELECT
		problem_id,
		label,
		lat,
		lon
	FROM problem_demands
	ORDER BY problem_id, seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("list problems: query problem_demands table: %w", err)
	}
	defer demands.Close()

	for demands.Next() {
		var id string
		var d domain.Location
		if err := demands.Scan(&id, &d.Label, &d.Coordinates.Lat, &d.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list problems: scan demand row: %w", err)
		}
		if p, ok := byID[id]; ok {
			p.Demands = append(p.Demands, d)
		}
	}
	if err := demands.Err(); err != nil {
		return nil, fmt.Errorf("list problems: demand row iteration: %w", err)
	}

	return problems, nil
}

// Return the problem stored under id, or ports.ErrNotFound.
func (s *SQLProblemRepository) GetProblem(ctx context.Context, id string) (_ *domain.Problem, err error) {
	defer obs.Time(ctx, "problems.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("sql problem repository: DB is nil")
	}

	p := &domain.Problem{ID: id}
	err = s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, `
	SELECT
		depot_label,
		depot_lat,
		depot_lon
	FROM problems
	WHERE problem_id = ?;
	`), id).Scan(&p.Depot.Label, &p.Depot.Coordinates.Lat, &p.Depot.Coordinates.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get problem %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %q: query problems table: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, db.Rebind(s.Driver, `
	SELECT
		label,
		lat,
		lon
	FROM problem_demands
	WHERE problem_id = ?
	ORDER BY seq;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get problem %q: query problem_demands table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.Location
		if err := rows.Scan(&d.Label, &d.Coordinates.Lat, &d.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("get problem %q: scan row: %w", id, err)
		}
		p.Demands = append(p.Demands, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get problem %q: row iteration: %w", id, err)
	}

	return p, nil
}

// SaveProblem validates p and inserts or replaces it with its demands.
func (s *SQLProblemRepository) SaveProblem(ctx context.Context, p *domain.Problem) error {
	if s.DB == nil {
		return errors.New("sql problem repository: DB is nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save problem: %w", err)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("save problem: %w: id must not be empty", domain.ErrInvalidInput)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save problem %q: begin tx: %w", p.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO problems (problem_id, depot_label, depot_lat, depot_lon)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (problem_id) DO UPDATE
	SET depot_label = excluded.depot_label,
		depot_lat = excluded.depot_lat,
		depot_lon = excluded.depot_lon;
	`), p.ID, p.Depot.Label, p.Depot.Coordinates.Lat, p.Depot.Coordinates.Lon); err != nil {
		return fmt.Errorf("save problem %q: upsert: %w", p.ID, err)
	}

	if _, err := tx.ExecContext(ctx, db.Rebind(s.Driver, `
	DELETE FROM problem_demands WHERE problem_id = ?;
	`), p.ID); err != nil {
		return fmt.Errorf("save problem %q: clear demands: %w", p.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, db.Rebind(s.Driver, `
	INSERT INTO problem_demands (problem_id, seq, label, lat, lon)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save problem %q: prepare insert: %w", p.ID, err)
	}
	defer stmt.Close()

	for i, d := range p.Demands {
		if _, err := stmt.ExecContext(ctx, p.ID, i+1, d.Label, d.Coordinates.Lat, d.Coordinates.Lon); err != nil {
			return fmt.Errorf("save problem %q: insert demand %q: %w", p.ID, d.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save problem %q: commit tx: %w", p.ID, err)
	}
	return nil
}
