package domain

import (
	"fmt"
	"math"
)

// IsUnreachable reports whether d is the unreachable sentinel (+Inf).
func IsUnreachable(d float64) bool { return math.IsInf(d, 1) }

// Unreachable returns the sentinel stored for pairs with no path.
func Unreachable() float64 { return math.Inf(1) }

// DistanceMatrix holds travel distances in kilometers between locations
// indexed depot-first. It is not assumed symmetric; the diagonal is zero.
type DistanceMatrix struct {
	km [][]float64
}

// NewDistanceMatrix returns an n×n matrix with a zero diagonal and every
// other entry unreachable.
func NewDistanceMatrix(n int) *DistanceMatrix {
	km := make([][]float64, n)
	for i := range km {
		km[i] = make([]float64, n)
		for j := range km[i] {
			if i != j {
				km[i][j] = Unreachable()
			}
		}
	}
	return &DistanceMatrix{km: km}
}

// DistanceMatrixFromRows copies rows into a matrix after checking shape,
// diagonal and sign. +Inf entries are accepted as unreachable.
func DistanceMatrixFromRows(rows [][]float64) (*DistanceMatrix, error) {
	n := len(rows)
	m := NewDistanceMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: matrix row %d has length %d, want %d", ErrInvalidInput, i, len(row), n)
		}
		for j, d := range row {
			if i == j && d != 0 {
				return nil, fmt.Errorf("%w: matrix diagonal [%d][%d]=%v must be 0", ErrInvalidInput, i, j, d)
			}
			if math.IsNaN(d) || d < 0 {
				return nil, fmt.Errorf("%w: matrix entry [%d][%d]=%v must be non-negative", ErrInvalidInput, i, j, d)
			}
			m.km[i][j] = d
		}
	}
	return m, nil
}

func (m *DistanceMatrix) Size() int { return len(m.km) }

// At returns the distance from i to j in kilometers.
func (m *DistanceMatrix) At(i, j int) float64 { return m.km[i][j] }

// Set stores the distance from i to j. Diagonal writes are ignored.
func (m *DistanceMatrix) Set(i, j int, km float64) {
	if i == j {
		return
	}
	m.km[i][j] = km
}

// MissingPairs lists every ordered (i, j) pair holding the unreachable sentinel,
// in row-major order.
func (m *DistanceMatrix) MissingPairs() [][2]int {
	var out [][2]int
	for i, row := range m.km {
		for j, d := range row {
			if IsUnreachable(d) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Complete reports whether every pair is reachable.
func (m *DistanceMatrix) Complete() bool {
	for _, row := range m.km {
		for _, d := range row {
			if IsUnreachable(d) {
				return false
			}
		}
	}
	return true
}
