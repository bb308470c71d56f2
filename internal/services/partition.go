package services

import (
	"ambulance-route-service/internal/domain"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MaxPartitionCandidates caps the number of partitions a single search may evaluate.
const MaxPartitionCandidates = 1_000_000

// SelectPartition splits demands into capacity-bounded trips and returns the
// split with the minimum total cost, each trip in its optimal visiting order.
//
// The vehicle runs max(MinTrips, ceil(|D|/Capacity)) trips. Candidates are
// generated per non-increasing size profile (s1 ≥ s2 ≥ …): trip 1 takes every
// lexicographic combination of size s1 of the sorted demands, trip 2 every
// combination of size s2 of the rest, and so on. Among equal-sized trips the
// smallest demands increase from trip to trip, so each partition is produced once. For 5 demands and
// capacity 3 this is exactly the C(5,3) = 10 splits of sizes 3 and 2.
//
// The first candidate reaching the minimum wins. If every candidate has an
// unreachable leg, ErrNoFeasibleSolution is returned.
func SelectPartition(demands []int, v domain.Vehicle, m *domain.DistanceMatrix) (domain.Solution, error) {
	if err := v.Validate(); err != nil {
		return domain.Solution{}, fmt.Errorf("select partition: %w", err)
	}
	if m == nil {
		return domain.Solution{}, fmt.Errorf("select partition: %w: matrix is nil", domain.ErrInvalidInput)
	}

	sorted := slices.Clone(demands)
	slices.Sort(sorted)
	for i, d := range sorted {
		if d <= domain.DepotIndex || d >= m.Size() {
			return domain.Solution{}, fmt.Errorf("select partition: %w: demand index %d outside matrix of size %d", domain.ErrInvalidInput, d, m.Size())
		}
		if i > 0 && sorted[i-1] == d {
			return domain.Solution{}, fmt.Errorf("select partition: %w: duplicate demand index %d", domain.ErrInvalidInput, d)
		}
	}

	trips := v.TripCount(len(sorted))
	if len(sorted) == 0 {
		empty := make([]domain.Trip, trips)
		for i := range empty {
			empty[i] = domain.Trip{Order: []int{}, Method: MethodPermutation}
		}
		return domain.Solution{Trips: empty, TotalKm: 0, Candidates: 1}, nil
	}
	profiles := sizeProfiles(len(sorted), trips, v.Capacity)

	total := 0
	for _, p := range profiles {
		total += countCandidates(len(sorted), p)
		if total > MaxPartitionCandidates {
			return domain.Solution{}, fmt.Errorf(
				"select partition: %w: more than %d candidate partitions (demands=%d capacity=%d)",
				domain.ErrInvalidInput, MaxPartitionCandidates, len(sorted), v.Capacity,
			)
		}
	}

	s := &partitionSearch{
		matrix:  m,
		memo:    make(map[string]domain.Trip),
		best:    math.Inf(1),
		current: make([][]int, trips),
	}
	for _, p := range profiles {
		s.sizes = p
		s.assign(0, sorted)
		if s.err != nil {
			return domain.Solution{}, fmt.Errorf("select partition: %w", s.err)
		}
	}

	if s.bestTrips == nil || math.IsInf(s.best, 1) {
		return domain.Solution{}, fmt.Errorf(
			"select partition: %w: all %d candidate partitions contain an unreachable leg",
			domain.ErrNoFeasibleSolution, s.candidates,
		)
	}

	return domain.Solution{Trips: s.bestTrips, TotalKm: s.best, Candidates: s.candidates}, nil
}

// partitionSearch holds the state of one SelectPartition call. The memo is
// scoped to that call so trip costs never outlive the matrix they came from.
type partitionSearch struct {
	matrix     *domain.DistanceMatrix
	memo       map[string]domain.Trip
	sizes      []int
	current    [][]int
	best       float64
	bestTrips  []domain.Trip
	candidates int
	err        error
}

// assign fills trip i from remaining, recursing until every trip is chosen.
func (s *partitionSearch) assign(i int, remaining []int) {
	if s.err != nil {
		return
	}
	if i == len(s.sizes)-1 {
		if s.canonical(i, remaining) {
			s.current[i] = remaining
			s.evaluate()
		}
		return
	}

	forEachCombination(remaining, s.sizes[i], func(chosen, rest []int) {
		if !s.canonical(i, chosen) {
			return
		}
		s.current[i] = chosen
		s.assign(i+1, rest)
	})
}

// canonical reports whether chosen may follow trip i-1. Within a run of
// equal-sized trips the smallest demands must increase, so every partition is
// produced once.
func (s *partitionSearch) canonical(i int, chosen []int) bool {
	if i == 0 || s.sizes[i] == 0 || s.sizes[i] != s.sizes[i-1] {
		return true
	}
	return chosen[0] > s.current[i-1][0]
}

func (s *partitionSearch) evaluate() {
	s.candidates++

	trips := make([]domain.Trip, len(s.current))
	total := 0.0
	for i, set := range s.current {
		t, err := s.bestOrder(set)
		if err != nil {
			s.err = err
			return
		}
		trips[i] = t
		total += t.CostKm
	}

	if total < s.best {
		s.best = total
		s.bestTrips = trips
	}
}

func (s *partitionSearch) bestOrder(set []int) (domain.Trip, error) {
	key := setKey(set)
	if t, ok := s.memo[key]; ok {
		return t, nil
	}
	t, err := BestTripOrder(set, s.matrix)
	if err != nil {
		return domain.Trip{}, err
	}
	s.memo[key] = t
	return t, nil
}

func setKey(set []int) string {
	var b strings.Builder
	for i, v := range set {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// forEachCombination calls fn for every size-k combination of items in
// lexicographic order, passing the chosen items and the complement. Both keep
// the order of items.
func forEachCombination(items []int, k int, fn func(chosen, rest []int)) {
	n := len(items)
	if k > n {
		return
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	for {
		chosen := make([]int, 0, k)
		rest := make([]int, 0, n-k)
		c := 0
		for j, v := range items {
			if c < k && idx[c] == j {
				chosen = append(chosen, v)
				c++
			} else {
				rest = append(rest, v)
			}
		}
		fn(chosen, rest)

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// sizeProfiles lists the non-increasing trip-size vectors of length trips with
// every entry in [0, capacity] summing to n, in descending lexicographic order.
func sizeProfiles(n, trips, capacity int) [][]int {
	var out [][]int
	cur := make([]int, trips)

	var walk func(pos, left, max int)
	walk = func(pos, left, max int) {
		if pos == trips {
			if left == 0 {
				out = append(out, slices.Clone(cur))
			}
			return
		}
		slots := trips - pos
		for s := min(max, left); s >= 0; s-- {
			// The remaining slots cannot exceed s each.
			if s*slots < left {
				break
			}
			cur[pos] = s
			walk(pos+1, left-s, s)
		}
	}
	walk(0, n, capacity)

	return out
}

// countCandidates returns how many partitions one size profile produces:
// n! / (s1!·s2!·…) divided by r! for every run of r equal non-zero sizes.
// Counts above MaxPartitionCandidates are reported as MaxPartitionCandidates+1.
func countCandidates(n int, sizes []int) int {
	count := 1.0
	left := n
	run := 1
	for i, s := range sizes {
		count *= binomial(left, s)
		left -= s

		if i > 0 && s > 0 && s == sizes[i-1] {
			run++
			count /= float64(run)
		} else {
			run = 1
		}
	}

	if count > MaxPartitionCandidates {
		return MaxPartitionCandidates + 1
	}
	return int(math.Round(count))
}

// binomial returns C(n, k) as a float64; it is exact well past the candidate cap.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
