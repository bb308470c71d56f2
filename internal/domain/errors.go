package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by services, adapters and the HTTP layer. Match with errors.Is.
var (
	// Malformed or missing coordinate/label data. Never retried.
	ErrInvalidInput = errors.New("invalid input")
	// A required pairwise path is absent in the current network snapshot.
	ErrUnreachableLocation = errors.New("unreachable location")
	// The built matrix holds at least one unreachable entry.
	ErrMatrixIncomplete = errors.New("distance matrix incomplete")
	// The network provider failed to return a usable graph.
	ErrNetworkAcquisition = errors.New("network acquisition failure")
	// Every candidate partition has an infinite cost.
	ErrNoFeasibleSolution = errors.New("no feasible solution")
	// Every search radius was tried without producing a complete matrix.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)

// UnreachableError names the location pairs with no path between them.
type UnreachableError struct {
	Pairs [][2]string
}

func (e *UnreachableError) Error() string {
	parts := make([]string, 0, len(e.Pairs))
	for _, p := range e.Pairs {
		parts = append(parts, fmt.Sprintf("%s->%s", p[0], p[1]))
	}
	return fmt.Sprintf("%d unreachable pair(s): %s", len(e.Pairs), strings.Join(parts, ", "))
}

func (e *UnreachableError) Unwrap() []error {
	return []error{ErrUnreachableLocation, ErrMatrixIncomplete}
}
