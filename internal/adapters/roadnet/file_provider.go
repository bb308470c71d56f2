package roadnet

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/platform/metrics"
	"ambulance-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FileProvider implements ports.NetworkProvider from a JSON file on disk.
//
// The file is either a saved Overpass response ({"elements": [...]}) or a
// plain network:
//
//	{"nodes": [{"id": 1, "lat": 45.5, "lon": -73.6}],
//	 "edges": [{"from": 1, "to": 2, "length_m": 120.5, "oneway": false}]}
//
// Edges without a positive length_m get the great-circle length. Only nodes
// inside the search area are kept.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		return nil, errors.New("network file path is empty")
	}
	return &FileProvider{path: path}, nil
}

type fileNetwork struct {
	Elements []overpassElement `json:"elements"`
	Nodes    []fileNode        `json:"nodes"`
	Edges    []fileEdge        `json:"edges"`
}

type fileNode struct {
	ID  int64   `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type fileEdge struct {
	From    int64   `json:"from"`
	To      int64   `json:"to"`
	LengthM float64 `json:"length_m"`
	Oneway  bool    `json:"oneway"`
}

func (f *FileProvider) Fetch(ctx context.Context, area ports.SearchArea) (ports.RoadNetwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		metrics.NetworkFetches.WithLabelValues("file", "error").Inc()
		return nil, fmt.Errorf("file network: %w: read %q: %w", domain.ErrNetworkAcquisition, f.path, err)
	}

	g, err := LoadNetwork(data)
	if err != nil {
		metrics.NetworkFetches.WithLabelValues("file", "error").Inc()
		return nil, fmt.Errorf("file network: %w: %q: %w", domain.ErrNetworkAcquisition, f.path, err)
	}
	metrics.NetworkFetches.WithLabelValues("file", "ok").Inc()

	reduced := Crop(g, area).LargestStronglyConnected()
	if reduced.NodeCount() == 0 {
		return nil, fmt.Errorf("file network: %w: no nodes within %.0fm", domain.ErrNetworkAcquisition, area.RadiusMeters)
	}
	return reduced, nil
}

// LoadNetwork decodes either supported file layout into a graph.
func LoadNetwork(data []byte) (*Graph, error) {
	var fn fileNetwork
	if err := json.Unmarshal(data, &fn); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}

	if len(fn.Elements) > 0 {
		return graphFromElements(fn.Elements), nil
	}

	g := NewGraph()
	for _, n := range fn.Nodes {
		c := domain.Coordinates{Lat: n.Lat, Lon: n.Lon}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		g.AddNode(ports.NodeID(n.ID), c)
	}

	for i, e := range fn.Edges {
		from, to := ports.NodeID(e.From), ports.NodeID(e.To)
		length := e.LengthM
		if length <= 0 {
			cf, okF := g.Coordinates(from)
			ct, okT := g.Coordinates(to)
			if !okF || !okT {
				return nil, fmt.Errorf("edge #%d: unknown endpoint %d->%d", i, e.From, e.To)
			}
			length = cf.DistanceTo(ct)
		}
		if err := g.AddEdge(from, to, length); err != nil {
			return nil, fmt.Errorf("edge #%d: %w", i, err)
		}
		if !e.Oneway {
			if err := g.AddEdge(to, from, length); err != nil {
				return nil, fmt.Errorf("edge #%d: %w", i, err)
			}
		}
	}
	return g, nil
}

// Crop keeps the nodes within area and the arcs between them.
func Crop(g *Graph, area ports.SearchArea) *Graph {
	nodes := make([]int, 0, len(g.ids))
	for i, c := range g.coords {
		if area.Anchor.DistanceTo(c) <= area.RadiusMeters {
			nodes = append(nodes, i)
		}
	}
	return g.subgraph(nodes)
}
