package services

import (
	"ambulance-route-service/internal/domain"
	"math"
	"math/rand/v2"
	"testing"
)

// lineMatrix places location i at x=i, so distance(i, j) = |i-j|.
func lineMatrix(t *testing.T, n int) *domain.DistanceMatrix {
	t.Helper()
	return matrixOf(t, n, func(i, j int) float64 { return math.Abs(float64(i - j)) })
}

// randomMatrix returns a seeded asymmetric matrix with integer-valued entries.
func randomMatrix(t *testing.T, n int, seed uint64) *domain.DistanceMatrix {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return matrixOf(t, n, func(i, j int) float64 { return float64(1 + r.IntN(20)) })
}

func matrixOf(t *testing.T, n int, dist func(i, j int) float64) *domain.DistanceMatrix {
	t.Helper()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			if i != j {
				rows[i][j] = dist(i, j)
			}
		}
	}
	m, err := domain.DistanceMatrixFromRows(rows)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func demandsUpTo(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func equalOrders(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustBestOrder(t *testing.T, set []int, m *domain.DistanceMatrix) domain.Trip {
	t.Helper()
	trip, err := BestTripOrder(set, m)
	if err != nil {
		t.Fatalf("BestTripOrder(%v): %v", set, err)
	}
	return trip
}
