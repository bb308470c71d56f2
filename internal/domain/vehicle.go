package domain

import "fmt"

// Capacity-limited vehicle that serves every trip from the depot.
type Vehicle struct {
	Capacity int
	// Fewest trips to plan; extra trips stay empty when demands fit in fewer.
	MinTrips int
}

// MaxTripSize bounds the exact trip-order search (Held-Karp beyond this is too large).
const MaxTripSize = 16

func NewVehicle(capacity, minTrips int) Vehicle {
	return Vehicle{Capacity: capacity, MinTrips: minTrips}
}

// TripCount returns max(MinTrips, ceil(demands/Capacity)).
func (v Vehicle) TripCount(demands int) int {
	if v.Capacity <= 0 {
		return 0
	}
	n := (demands + v.Capacity - 1) / v.Capacity
	if n < v.MinTrips {
		n = v.MinTrips
	}
	return n
}

func (v Vehicle) Validate() error {
	if v.Capacity < 1 || v.Capacity > MaxTripSize {
		return fmt.Errorf("%w: capacity must be between 1 and %d, got %d", ErrInvalidInput, MaxTripSize, v.Capacity)
	}
	if v.MinTrips < 0 {
		return fmt.Errorf("%w: min trips must be non-negative, got %d", ErrInvalidInput, v.MinTrips)
	}
	return nil
}
