package services

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/platform/obs"
	"ambulance-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// PlannerConfig controls the retry schedule and the solver.
type PlannerConfig struct {
	Vehicle         domain.Vehicle
	MarginsMeters   []float64
	MinRadiusMeters float64
	MatrixWorkers   int
}

// Attempt records one {acquire → build → check → solve} pass.
type Attempt struct {
	MarginMeters float64
	Area         ports.SearchArea
	Duration     time.Duration
	Err          error
}

// PlanResult is the outcome of a successful Plan call.
type PlanResult struct {
	Solution domain.Solution
	Matrix   *domain.DistanceMatrix
	Area     ports.SearchArea
	Attempts []Attempt
}

// AttemptState is the retry state machine's state: the margin to try next and
// why the previous attempt failed.
type AttemptState struct {
	RadiusIndex int
	LastFailure error
}

// Planner repeats the whole attempt with increasing search radii until the
// distance matrix is complete, then solves it.
type Planner struct {
	provider ports.NetworkProvider
	cfg      PlannerConfig
}

func NewPlanner(provider ports.NetworkProvider, cfg PlannerConfig) (*Planner, error) {
	if provider == nil {
		return nil, errors.New("new planner: provider must be non-nil")
	}
	if len(cfg.MarginsMeters) == 0 {
		return nil, errors.New("new planner: at least one margin is required")
	}
	if err := cfg.Vehicle.Validate(); err != nil {
		return nil, fmt.Errorf("new planner: %w", err)
	}
	return &Planner{provider: provider, cfg: cfg}, nil
}

// Plan runs the retry state machine for problem.
//
// Transitions: an attempt that fails with ErrMatrixIncomplete or
// ErrNetworkAcquisition advances to the next margin; success or any other
// error is terminal. Running out of margins returns ErrRetryBudgetExhausted
// wrapping the last failure.
func (p *Planner) Plan(ctx context.Context, problem *domain.Problem) (_ *PlanResult, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	if err := problem.Validate(); err != nil {
		metrics.PlanAttempts.WithLabelValues("invalid_input").Inc()
		return nil, fmt.Errorf("plan: %w", err)
	}

	var (
		state    AttemptState
		attempts []Attempt
	)
	for state.RadiusIndex < len(p.cfg.MarginsMeters) {
		margin := p.cfg.MarginsMeters[state.RadiusIndex]
		start := time.Now()

		res, err := p.attempt(ctx, problem, margin)
		attempts = append(attempts, Attempt{
			MarginMeters: margin,
			Area:         res.Area,
			Duration:     time.Since(start),
			Err:          err,
		})

		switch {
		case err == nil:
			metrics.PlanAttempts.WithLabelValues("solved").Inc()
			log.Printf("plan: attempt=%d margin_m=%.0f radius_m=%.0f outcome=solved total_km=%.2f",
				state.RadiusIndex+1, margin, res.Area.RadiusMeters, res.Solution.TotalKm)
			res.Attempts = attempts
			return res, nil

		case retryable(ctx, err):
			outcome := "acquisition_failed"
			if errors.Is(err, domain.ErrMatrixIncomplete) {
				outcome = "unreachable"
			}
			metrics.PlanAttempts.WithLabelValues(outcome).Inc()
			log.Printf("plan: attempt=%d margin_m=%.0f radius_m=%.0f outcome=%s err=%v",
				state.RadiusIndex+1, margin, res.Area.RadiusMeters, outcome, err)

			state = AttemptState{RadiusIndex: state.RadiusIndex + 1, LastFailure: err}

		default:
			outcome := "error"
			if errors.Is(err, domain.ErrInvalidInput) {
				outcome = "invalid_input"
			}
			metrics.PlanAttempts.WithLabelValues(outcome).Inc()
			return nil, fmt.Errorf("plan: attempt %d (margin %.0fm): %w", state.RadiusIndex+1, margin, err)
		}
	}

	return nil, fmt.Errorf("plan: %w after %d attempt(s): %w", domain.ErrRetryBudgetExhausted, len(attempts), state.LastFailure)
}

// retryable reports whether a larger network could fix err.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return errors.Is(err, domain.ErrMatrixIncomplete) || errors.Is(err, domain.ErrNetworkAcquisition)
}

// attempt acquires a network for margin, builds the matrix, checks it and solves.
// The returned result always carries the search area, even on failure.
func (p *Planner) attempt(ctx context.Context, problem *domain.Problem, margin float64) (*PlanResult, error) {
	locations := problem.Locations()
	area := SearchAreaFor(locations, margin, p.cfg.MinRadiusMeters)
	res := &PlanResult{Area: area}

	network, err := p.provider.Fetch(ctx, area)
	if err != nil {
		if errors.Is(err, domain.ErrNetworkAcquisition) || ctx.Err() != nil {
			return res, fmt.Errorf("fetch network: %w", err)
		}
		return res, fmt.Errorf("fetch network: %w: %w", domain.ErrNetworkAcquisition, err)
	}

	buildStart := time.Now()
	m, err := BuildDistanceMatrix(ctx, network, locations, MatrixOptions{Workers: p.cfg.MatrixWorkers})
	metrics.MatrixBuildSeconds.Observe(time.Since(buildStart).Seconds())
	if err != nil {
		return res, err
	}
	res.Matrix = m

	solveStart := time.Now()
	sol, err := SelectPartition(problem.DemandIndices(), p.cfg.Vehicle, m)
	metrics.SolveSeconds.Observe(time.Since(solveStart).Seconds())
	if err != nil {
		return res, err
	}
	res.Solution = sol

	return res, nil
}
