package ports

import (
	"ambulance-route-service/internal/domain"
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// Port: a boundary for retrieving stored routing problems.
type ProblemRepository interface {
	ListProblems(ctx context.Context) ([]*domain.Problem, error)
	GetProblem(ctx context.Context, id string) (*domain.Problem, error)
}
