package repositories

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/db"
	"ambulance-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	// Idempotent.
	if err := InitSchema(conn); err != nil {
		t.Fatalf("InitSchema twice: %v", err)
	}
	return conn
}

func sampleProblem(id string) *domain.Problem {
	return &domain.Problem{
		ID:    id,
		Depot: domain.Location{Label: "H", Coordinates: domain.Coordinates{Lat: 45.50, Lon: -73.57}},
		Demands: []domain.Location{
			{Label: "P2", Coordinates: domain.Coordinates{Lat: 45.51, Lon: -73.56}},
			{Label: "P1", Coordinates: domain.Coordinates{Lat: 45.49, Lon: -73.58}},
		},
	}
}

func TestProblemRepositorySaveGetList(t *testing.T) {
	conn := openTestDB(t)
	repo := NewSQLProblemRepository(conn, db.DriverSQLite)
	ctx := context.Background()

	if err := repo.SaveProblem(ctx, sampleProblem("b")); err != nil {
		t.Fatalf("SaveProblem: %v", err)
	}
	if err := repo.SaveProblem(ctx, sampleProblem("a")); err != nil {
		t.Fatalf("SaveProblem: %v", err)
	}

	got, err := repo.GetProblem(ctx, "b")
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	// Demand order is preserved, not sorted by label.
	if len(got.Demands) != 2 || got.Demands[0].Label != "P2" || got.Demands[1].Label != "P1" {
		t.Fatalf("demands = %+v", got.Demands)
	}
	if got.Depot.Coordinates.Lon != -73.57 {
		t.Fatalf("depot = %+v", got.Depot)
	}

	// Replacing drops stale demands.
	smaller := sampleProblem("b")
	smaller.Demands = smaller.Demands[:1]
	if err := repo.SaveProblem(ctx, smaller); err != nil {
		t.Fatalf("SaveProblem replace: %v", err)
	}

	all, err := repo.ListProblems(ctx)
	if err != nil {
		t.Fatalf("ListProblems: %v", err)
	}
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("list = %+v", all)
	}
	if len(all[0].Demands) != 2 || len(all[1].Demands) != 1 {
		t.Fatalf("demand counts = %d, %d", len(all[0].Demands), len(all[1].Demands))
	}

	if _, err := repo.GetProblem(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProblemRepositoryRejectsInvalid(t *testing.T) {
	repo := NewSQLProblemRepository(openTestDB(t), db.DriverSQLite)

	noID := sampleProblem("")
	if err := repo.SaveProblem(context.Background(), noID); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	dup := sampleProblem("x")
	dup.Demands[1].Label = "P2"
	if err := repo.SaveProblem(context.Background(), dup); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSeedFromJSON(t *testing.T) {
	repo := NewSQLProblemRepository(openTestDB(t), db.DriverSQLite)

	path := filepath.Join(t.TempDir(), "problems.json")
	body := `[
	  {"id": "downtown", "locations": {
	    "hospital": {"coordinates": {"latitude": 45.50, "longitude": -73.57}},
	    "patients": [
	      {"id": "P1", "coordinates": {"latitude": 45.51, "longitude": -73.56}},
	      {"id": "P2", "coordinates": {"latitude": 45.49, "longitude": -73.58}}
	    ]}}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SeedFromJSON(context.Background(), repo, path); err != nil {
		t.Fatalf("SeedFromJSON: %v", err)
	}

	p, err := repo.GetProblem(context.Background(), "downtown")
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	if p.Depot.Label != domain.DepotLabel || len(p.Demands) != 2 {
		t.Fatalf("problem = %+v", p)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"locations": {}}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := SeedFromJSON(context.Background(), repo, bad); err == nil {
		t.Fatal("expected error for entry without id")
	}
}

func TestSolutionStoreRoundTrip(t *testing.T) {
	store := NewSQLSolutionStore(openTestDB(t), db.DriverSQLite)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := ports.StoredPlan{
		ProblemID: "downtown",
		Labels:    []string{"H", "P1", "P2", "P3"},
		Solution: domain.Solution{
			Trips: []domain.Trip{
				{Order: []int{1, 3}, CostKm: 4.2, Method: "permutation"},
				{Order: nil, CostKm: 0, Method: "permutation"},
				{Order: []int{2}, CostKm: 3.1, Method: "permutation"},
			},
			TotalKm:    7.3,
			Candidates: 10,
		},
		RadiusMeters: 4500,
		Attempts:     2,
		CreatedAt:    created,
	}

	id, err := store.SavePlan(ctx, in)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if id == "" {
		t.Fatal("empty plan id")
	}

	out, err := store.GetPlan(ctx, id)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if out.ID != id || out.ProblemID != "downtown" || out.Attempts != 2 || out.RadiusMeters != 4500 {
		t.Fatalf("plan = %+v", out)
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", out.CreatedAt, created)
	}
	if len(out.Labels) != 4 || out.Labels[3] != "P3" {
		t.Fatalf("labels = %v", out.Labels)
	}
	if len(out.Solution.Trips) != 3 {
		t.Fatalf("trips = %+v", out.Solution.Trips)
	}
	if got := out.Solution.Trips[0].Order; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("trip 1 order = %v", got)
	}
	if !out.Solution.Trips[1].Empty() {
		t.Fatalf("trip 2 should be empty: %+v", out.Solution.Trips[1])
	}
	if out.Solution.TotalKm != 7.3 || out.Solution.Candidates != 10 {
		t.Fatalf("solution = %+v", out.Solution)
	}

	if _, err := store.GetPlan(ctx, "nope"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
