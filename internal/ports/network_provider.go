package ports

import (
	"ambulance-route-service/internal/domain"
	"context"
)

// Circular area around an anchor point used to acquire a network.
type SearchArea struct {
	Anchor       domain.Coordinates
	RadiusMeters float64
}

// Contract for acquiring a road network covering an area.
type NetworkProvider interface {
	// Return the drivable network around area.Anchor, already reduced to its
	// largest strongly connected component.
	Fetch(ctx context.Context, area SearchArea) (RoadNetwork, error)
}
