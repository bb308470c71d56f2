package services

import "ambulance-route-service/internal/domain"

// TripCost returns the round-trip distance of visiting order from the depot and back:
// depot→order[0] + Σ order[i]→order[i+1] + order[last]→depot.
//
// An empty order costs exactly 0. If any leg is unreachable the result is +Inf,
// which callers must never select as an optimum.
func TripCost(order []int, m *domain.DistanceMatrix) float64 {
	if len(order) == 0 {
		return 0
	}

	total := m.At(domain.DepotIndex, order[0])
	for i := 1; i < len(order); i++ {
		total += m.At(order[i-1], order[i])
	}
	total += m.At(order[len(order)-1], domain.DepotIndex)

	return total
}
