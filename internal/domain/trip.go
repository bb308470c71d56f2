package domain

// Trip is a visiting order of demand indices, starting and ending at the depot.
// CostKm is always derived from the matrix the trip was planned on.
type Trip struct {
	Order  []int
	CostKm float64
	// Search used to order the trip: "permutation" or "held-karp".
	Method string
}

// Empty reports whether the trip visits no demand.
func (t Trip) Empty() bool { return len(t.Order) == 0 }

// Solution is the minimum-total-cost partition found for one matrix build.
// It is immutable planning data.
type Solution struct {
	Trips   []Trip
	TotalKm float64
	// Number of candidate partitions evaluated.
	Candidates int
}

// Covers reports whether the trips visit each of 1..n exactly once.
func (s Solution) Covers(n int) bool {
	seen := make([]bool, n+1)
	count := 0
	for _, t := range s.Trips {
		for _, idx := range t.Order {
			if idx < 1 || idx > n || seen[idx] {
				return false
			}
			seen[idx] = true
			count++
		}
	}
	return count == n
}
