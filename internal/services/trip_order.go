package services

import (
	"ambulance-route-service/internal/domain"
	"fmt"
	"log"
	"math"
	"slices"
)

const (
	// MethodPermutation enumerates every visiting order.
	MethodPermutation = "permutation"
	// MethodHeldKarp runs the O(k²·2^k) subset dynamic program.
	MethodHeldKarp = "held-karp"
)

// PermutationLimit is the largest set ordered by full enumeration (8! = 40320 orders).
// Larger sets switch to Held-Karp.
const PermutationLimit = 8

// BestTripOrder returns a minimum-cost visiting order for the demand set.
//
// Sets of up to PermutationLimit demands enumerate permutations in lexicographic
// order of the sorted input; the first permutation reaching the minimum wins.
// Larger sets use Held-Karp, which is exact but breaks ties by its own fixed
// DP order rather than lexicographically. Empty input returns (0, empty order).
//
// When every order contains an unreachable leg the returned cost is +Inf and the
// order is the sorted set. Sets larger than domain.MaxTripSize are rejected
// with domain.ErrInvalidInput.
func BestTripOrder(set []int, m *domain.DistanceMatrix) (domain.Trip, error) {
	if len(set) > domain.MaxTripSize {
		return domain.Trip{}, fmt.Errorf("best trip order: %w: set of %d demands exceeds max trip size %d",
			domain.ErrInvalidInput, len(set), domain.MaxTripSize)
	}

	perm := slices.Clone(set)
	slices.Sort(perm)

	if len(perm) == 0 {
		return domain.Trip{Order: []int{}, CostKm: 0, Method: MethodPermutation}, nil
	}

	if len(perm) > PermutationLimit {
		log.Printf("trip order: set_size=%d exceeds permutation limit=%d method=%s", len(perm), PermutationLimit, MethodHeldKarp)
		return heldKarpOrder(perm, m), nil
	}

	bestCost := math.Inf(1)
	bestOrder := slices.Clone(perm)

	for {
		// Strict comparison keeps the first permutation that reaches the minimum.
		if c := TripCost(perm, m); c < bestCost {
			bestCost = c
			copy(bestOrder, perm)
		}
		if !nextPermutation(perm) {
			break
		}
	}

	return domain.Trip{Order: bestOrder, CostKm: bestCost, Method: MethodPermutation}, nil
}

// nextPermutation rearranges p into its lexicographic successor.
// It returns false once p is the last permutation.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}

	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])

	return true
}

// heldKarpOrder solves the depot-anchored tour over nodes exactly.
// dp[mask][j] is the cheapest path from the depot covering mask and ending at nodes[j].
func heldKarpOrder(nodes []int, m *domain.DistanceMatrix) domain.Trip {
	k := len(nodes)
	full := 1<<k - 1

	dp := make([][]float64, full+1)
	parent := make([][]int, full+1)
	for mask := range dp {
		dp[mask] = make([]float64, k)
		parent[mask] = make([]int, k)
		for j := range dp[mask] {
			dp[mask][j] = math.Inf(1)
			parent[mask][j] = -1
		}
	}
	for j, n := range nodes {
		dp[1<<j][j] = m.At(domain.DepotIndex, n)
	}

	for mask := 1; mask <= full; mask++ {
		for j := 0; j < k; j++ {
			if mask&(1<<j) == 0 || math.IsInf(dp[mask][j], 1) {
				continue
			}
			for next := 0; next < k; next++ {
				if mask&(1<<next) != 0 {
					continue
				}
				nm := mask | 1<<next
				cand := dp[mask][j] + m.At(nodes[j], nodes[next])
				if cand < dp[nm][next] {
					dp[nm][next] = cand
					parent[nm][next] = j
				}
			}
		}
	}

	bestCost := math.Inf(1)
	last := -1
	for j := 0; j < k; j++ {
		if c := dp[full][j] + m.At(nodes[j], domain.DepotIndex); c < bestCost {
			bestCost = c
			last = j
		}
	}
	if last < 0 {
		return domain.Trip{Order: slices.Clone(nodes), CostKm: math.Inf(1), Method: MethodHeldKarp}
	}

	order := make([]int, k)
	mask := full
	for pos := k - 1; pos >= 0; pos-- {
		order[pos] = nodes[last]
		prev := parent[mask][last]
		mask ^= 1 << last
		last = prev
	}

	return domain.Trip{Order: order, CostKm: bestCost, Method: MethodHeldKarp}
}
