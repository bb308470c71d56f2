package domain

import (
	"fmt"
	"strings"
)

// DepotIndex is the fixed position of the depot in every location list and matrix.
const DepotIndex = 0

// DepotLabel is the label given to the depot when the input does not name it.
const DepotLabel = "H"

// A named point on the map. Demands carry unit load.
type Location struct {
	Label       string
	Coordinates Coordinates
}

// Problem is the input record: one depot and an ordered list of demands.
// Demand i of the list occupies matrix index i+1.
type Problem struct {
	ID      string
	Depot   Location
	Demands []Location
}

// Locations returns the depot followed by the demands, in matrix index order.
func (p *Problem) Locations() []Location {
	out := make([]Location, 0, 1+len(p.Demands))
	out = append(out, p.Depot)
	out = append(out, p.Demands...)
	return out
}

// Labels returns the location labels in matrix index order.
func (p *Problem) Labels() []string {
	locs := p.Locations()
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Label
	}
	return out
}

// DemandIndices returns 1..N.
func (p *Problem) DemandIndices() []int {
	out := make([]int, len(p.Demands))
	for i := range p.Demands {
		out[i] = i + 1
	}
	return out
}

// Validate checks labels and coordinates. All failures wrap ErrInvalidInput.
func (p *Problem) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: problem is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(p.Depot.Label) == "" {
		return fmt.Errorf("%w: depot label must be non-empty", ErrInvalidInput)
	}
	if err := p.Depot.Coordinates.Validate(); err != nil {
		return fmt.Errorf("depot: %w", err)
	}
	if len(p.Demands) == 0 {
		return fmt.Errorf("%w: at least one demand is required", ErrInvalidInput)
	}

	seen := map[string]struct{}{strings.TrimSpace(p.Depot.Label): {}}
	for i, d := range p.Demands {
		label := strings.TrimSpace(d.Label)
		if label == "" {
			return fmt.Errorf("%w: demand at index %d has empty label", ErrInvalidInput, i+1)
		}
		if _, ok := seen[label]; ok {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidInput, label)
		}
		seen[label] = struct{}{}

		if err := d.Coordinates.Validate(); err != nil {
			return fmt.Errorf("demand %q: %w", label, err)
		}
	}
	return nil
}
