package ports

import "ambulance-route-service/internal/domain"

// NodeID identifies a node of a road network snapshot.
type NodeID int64

// Contract for a road network snapshot reduced to one usable component.
// Implementations must be safe for concurrent reads.
type RoadNetwork interface {
	// Return the network node closest to c.
	NearestNode(c domain.Coordinates) (NodeID, error)
	// Return the minimal path length in meters from one node to another.
	// ok is false when no path exists.
	ShortestPathLength(from, to NodeID) (meters float64, ok bool)
}

// Optional extension of RoadNetwork that answers one origin to many targets
// with a single search. Missing paths are reported as +Inf.
type OneToManyNetwork interface {
	RoadNetwork
	ShortestPathLengths(from NodeID, targets []NodeID) []float64
}
