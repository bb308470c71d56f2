// Package roadnet holds an in-memory directed road graph and the providers
// that acquire one (Overpass API, local files).
//
// A *Graph implements ports.RoadNetwork and ports.OneToManyNetwork. It is
// immutable once built and safe for concurrent reads.
package roadnet

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/ports"
	"errors"
	"fmt"
	"math"
)

// ErrEmptyGraph is returned by lookups on a graph without nodes.
var ErrEmptyGraph = errors.New("roadnet: graph has no nodes")

var _ ports.OneToManyNetwork = (*Graph)(nil)

type arc struct {
	to     int
	meters float64
}

// Graph is a directed graph of road segments weighted by length in meters.
// Nodes keep their insertion order, which fixes every tie-break.
type Graph struct {
	ids    []ports.NodeID
	index  map[ports.NodeID]int
	coords []domain.Coordinates
	adj    [][]arc
	edges  int
}

func NewGraph() *Graph {
	return &Graph{index: make(map[ports.NodeID]int)}
}

// AddNode inserts a node. Re-adding an existing id updates its coordinates.
func (g *Graph) AddNode(id ports.NodeID, c domain.Coordinates) {
	if i, ok := g.index[id]; ok {
		g.coords[i] = c
		return
	}
	g.index[id] = len(g.ids)
	g.ids = append(g.ids, id)
	g.coords = append(g.coords, c)
	g.adj = append(g.adj, nil)
}

// AddEdge inserts a one-way segment. Both endpoints must exist.
func (g *Graph) AddEdge(from, to ports.NodeID, meters float64) error {
	fi, ok := g.index[from]
	if !ok {
		return fmt.Errorf("roadnet: add edge: unknown node %d", from)
	}
	ti, ok := g.index[to]
	if !ok {
		return fmt.Errorf("roadnet: add edge: unknown node %d", to)
	}
	if math.IsNaN(meters) || math.IsInf(meters, 0) || meters < 0 {
		return fmt.Errorf("roadnet: add edge %d->%d: invalid length %v", from, to, meters)
	}

	g.adj[fi] = append(g.adj[fi], arc{to: ti, meters: meters})
	g.edges++
	return nil
}

func (g *Graph) NodeCount() int { return len(g.ids) }

func (g *Graph) EdgeCount() int { return g.edges }

// HasNode reports whether id is part of the graph.
func (g *Graph) HasNode(id ports.NodeID) bool {
	_, ok := g.index[id]
	return ok
}

// Coordinates returns the position of id.
func (g *Graph) Coordinates(id ports.NodeID) (domain.Coordinates, bool) {
	i, ok := g.index[id]
	if !ok {
		return domain.Coordinates{}, false
	}
	return g.coords[i], true
}

// NearestNode returns the node with the smallest great-circle distance to c.
// Ties go to the node inserted first.
func (g *Graph) NearestNode(c domain.Coordinates) (ports.NodeID, error) {
	if len(g.ids) == 0 {
		return 0, ErrEmptyGraph
	}

	best := 0
	bestDist := math.Inf(1)
	for i, nc := range g.coords {
		if d := c.DistanceTo(nc); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return g.ids[best], nil
}
