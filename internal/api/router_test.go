package api

import (
	"ambulance-route-service/internal/api/dto"
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/ports"
	"ambulance-route-service/internal/services"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeProblems struct {
	problems map[string]*domain.Problem
}

func (f *fakeProblems) ListProblems(context.Context) ([]*domain.Problem, error) {
	out := make([]*domain.Problem, 0, len(f.problems))
	for _, id := range []string{"a", "b"} {
		if p, ok := f.problems[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProblems) GetProblem(_ context.Context, id string) (*domain.Problem, error) {
	p, ok := f.problems[id]
	if !ok {
		return nil, fmt.Errorf("get problem %q: %w", id, ports.ErrNotFound)
	}
	return p, nil
}

type fakeStore struct {
	mu    sync.Mutex
	plans map[string]ports.StoredPlan
}

func (f *fakeStore) SavePlan(_ context.Context, p ports.StoredPlan) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("plan-%d", len(f.plans)+1)
	p.ID = id
	f.plans[id] = p
	return id, nil
}

func (f *fakeStore) GetPlan(_ context.Context, id string) (ports.StoredPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok {
		return ports.StoredPlan{}, fmt.Errorf("get plan %q: %w", id, ports.ErrNotFound)
	}
	return p, nil
}

type fakePlanner struct {
	err  error
	seen []*domain.Problem
}

func (f *fakePlanner) Plan(_ context.Context, p *domain.Problem) (*services.PlanResult, error) {
	f.seen = append(f.seen, p)
	if f.err != nil {
		return nil, f.err
	}
	return &services.PlanResult{
		Solution: domain.Solution{
			Trips: []domain.Trip{
				{Order: []int{1, 2}, CostKm: 4.2, Method: "permutation"},
				{Order: []int{}, CostKm: 0, Method: "permutation"},
			},
			TotalKm:    4.2,
			Candidates: 2,
		},
		Area:     ports.SearchArea{RadiusMeters: 4000},
		Attempts: []services.Attempt{{}, {}},
	}, nil
}

func testProblem(id string) *domain.Problem {
	return &domain.Problem{
		ID:    id,
		Depot: domain.Location{Label: "H", Coordinates: domain.Coordinates{Lat: 45.5, Lon: -73.57}},
		Demands: []domain.Location{
			{Label: "P1", Coordinates: domain.Coordinates{Lat: 45.51, Lon: -73.56}},
			{Label: "P2", Coordinates: domain.Coordinates{Lat: 45.49, Lon: -73.58}},
		},
	}
}

func newTestServer(t *testing.T, planner *fakePlanner) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(NewRouter(Deps{
		Problems: &fakeProblems{problems: map[string]*domain.Problem{"a": testProblem("a")}},
		Store:    &fakeStore{plans: map[string]ports.StoredPlan{}},
		Planner:  planner,
		Version:  "test",
		SpeedKph: 80,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakePlanner{})

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
	body := decode[map[string]string](t, res)
	if body["status"] != "ok" || body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}

	res = post(t, srv.URL+"/health", "{}")
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health status = %d", res.StatusCode)
	}
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, &fakePlanner{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if got := res.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}
}

func TestListProblems(t *testing.T) {
	srv := newTestServer(t, &fakePlanner{})

	res, err := http.Get(srv.URL + "/problems")
	if err != nil {
		t.Fatal(err)
	}
	body := decode[dto.ListProblemsResponse](t, res)
	if len(body.Problems) != 1 || body.Problems[0].ID != "a" || len(body.Problems[0].Demands) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Problems[0].Depot.Label != "H" {
		t.Fatalf("depot = %+v", body.Problems[0].Depot)
	}
}

func TestCreateAndGetPlan(t *testing.T) {
	planner := &fakePlanner{}
	srv := newTestServer(t, planner)

	res := post(t, srv.URL+"/plans", `{"problem_id": "a"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", res.StatusCode)
	}
	created := decode[dto.PlanResponse](t, res)

	if created.PlanID == "" || created.ProblemID != "a" || created.Attempts != 2 || created.RadiusMeters != 4000 {
		t.Fatalf("created = %+v", created)
	}
	if len(created.Trips) != 2 {
		t.Fatalf("trips = %+v", created.Trips)
	}
	if created.Trips[0].Path != "H → P1 → P2 → H" || created.Trips[1].Path != "H → H" {
		t.Fatalf("paths = %q, %q", created.Trips[0].Path, created.Trips[1].Path)
	}
	if got := created.Trips[0].Stops; len(got) != 2 || got[0] != "P1" || got[1] != "P2" {
		t.Fatalf("stops = %v", got)
	}
	if created.DriveTime != "3m9s" {
		t.Fatalf("drive_time = %q", created.DriveTime)
	}

	res, err := http.Get(srv.URL + "/plans/" + created.PlanID)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", res.StatusCode)
	}
	got := decode[dto.PlanResponse](t, res)
	if got.PlanID != created.PlanID || got.TotalKm != 4.2 {
		t.Fatalf("got = %+v", got)
	}

	res, err = http.Get(srv.URL + "/plans/missing")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing plan status = %d", res.StatusCode)
	}
}

func TestCreatePlanInline(t *testing.T) {
	planner := &fakePlanner{}
	srv := newTestServer(t, planner)

	body := `{"problem": {"locations": {
		"hospital": {"coordinates": {"latitude": 45.5, "longitude": -73.57}},
		"patients": [{"id": "X", "coordinates": {"latitude": 45.51, "longitude": -73.56}}]
	}}}`
	res := post(t, srv.URL+"/plans", body)
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if len(planner.seen) != 1 || planner.seen[0].Demands[0].Label != "X" {
		t.Fatalf("planner saw %+v", planner.seen)
	}
}

func TestCreatePlanRequestErrors(t *testing.T) {
	srv := newTestServer(t, &fakePlanner{})

	tests := map[string]struct {
		body string
		want int
	}{
		"malformed":       {`{`, http.StatusBadRequest},
		"unknown field":   {`{"hub": "x"}`, http.StatusBadRequest},
		"two objects":     {`{"problem_id": "a"}{}`, http.StatusBadRequest},
		"neither":         {`{}`, http.StatusBadRequest},
		"both":            {`{"problem_id": "a", "problem": {}}`, http.StatusBadRequest},
		"unknown problem": {`{"problem_id": "zzz"}`, http.StatusNotFound},
		"invalid inline":  {`{"problem": {"locations": {}}}`, http.StatusBadRequest},
		"inline without latitude": {`{"problem": {"locations": {
			"hospital": {"coordinates": {"longitude": -73.57}},
			"patients": [{"id": "X", "coordinates": {"latitude": 45.51, "longitude": -73.56}}]
		}}}`, http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res := post(t, srv.URL+"/plans", tc.body)
			_, _ = io.Copy(io.Discard, res.Body)
			res.Body.Close()
			if res.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.want)
			}
		})
	}
}

func TestCreatePlanMapsPlannerErrors(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"invalid input": {fmt.Errorf("plan: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		"no feasible":   {fmt.Errorf("plan: %w", domain.ErrNoFeasibleSolution), http.StatusUnprocessableEntity},
		"exhausted":     {fmt.Errorf("plan: %w", domain.ErrRetryBudgetExhausted), http.StatusBadGateway},
		"other":         {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, &fakePlanner{err: tc.err})
			res := post(t, srv.URL+"/plans", `{"problem_id": "a"}`)
			res.Body.Close()
			if res.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RegisterDefault()
	srv := newTestServer(t, &fakePlanner{})

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `http_requests_total{method="GET",path="/health",status="200"}`) {
		t.Fatalf("metrics output missing request counter:\n%s", b)
	}
}
