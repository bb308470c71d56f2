package ports

import (
	"ambulance-route-service/internal/domain"
	"context"
	"time"
)

// A solved plan as persisted: the solution plus the labels needed to render it.
type StoredPlan struct {
	ID           string
	ProblemID    string
	Labels       []string
	Solution     domain.Solution
	RadiusMeters float64
	Attempts     int
	CreatedAt    time.Time
}

// Port: persistence for solved plans.
type SolutionStore interface {
	SavePlan(ctx context.Context, plan StoredPlan) (string, error)
	GetPlan(ctx context.Context, id string) (StoredPlan, error)
}
