package roadnet

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/ports"
	"encoding/json"
	"fmt"
	"strings"
)

// drivableHighways mirrors the usual "drive" network: public roads a car may use.
var drivableHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true, "living_street": true,
	"road": true, "service": true,
}

// Service roads that are not part of the through network.
var excludedService = map[string]bool{
	"parking": true, "parking_aisle": true, "driveway": true,
	"private": true, "emergency_access": true,
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Nodes []int64           `json:"nodes"`
	Tags  map[string]string `json:"tags"`
}

// ParseOverpass builds a directed graph from an Overpass JSON payload.
// Segment lengths are great-circle distances between consecutive way nodes.
// Ways referencing nodes absent from the payload lose only those segments.
func ParseOverpass(data []byte) (*Graph, error) {
	var resp overpassResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse overpass: decode: %w", err)
	}
	return graphFromElements(resp.Elements), nil
}

func graphFromElements(elements []overpassElement) *Graph {
	g := NewGraph()
	for _, el := range elements {
		if el.Type == "node" {
			g.AddNode(ports.NodeID(el.ID), domain.Coordinates{Lat: el.Lat, Lon: el.Lon})
		}
	}

	for _, el := range elements {
		if el.Type != "way" || !drivable(el.Tags) {
			continue
		}
		forward, backward := wayDirections(el.Tags)

		for i := 1; i < len(el.Nodes); i++ {
			a, b := ports.NodeID(el.Nodes[i-1]), ports.NodeID(el.Nodes[i])
			ca, okA := g.Coordinates(a)
			cb, okB := g.Coordinates(b)
			if !okA || !okB || a == b {
				continue
			}
			length := ca.DistanceTo(cb)
			if forward {
				_ = g.AddEdge(a, b, length)
			}
			if backward {
				_ = g.AddEdge(b, a, length)
			}
		}
	}
	return g
}

func drivable(tags map[string]string) bool {
	if !drivableHighways[tags["highway"]] {
		return false
	}
	if tags["area"] == "yes" {
		return false
	}
	switch tags["access"] {
	case "private", "no":
		return false
	}
	if tags["motor_vehicle"] == "no" || tags["motorcar"] == "no" {
		return false
	}
	if tags["highway"] == "service" && excludedService[tags["service"]] {
		return false
	}
	return true
}

// wayDirections reports which directions a way may be driven in.
func wayDirections(tags map[string]string) (forward, backward bool) {
	switch strings.ToLower(tags["oneway"]) {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	case "no", "false", "0":
		return true, true
	}

	switch tags["junction"] {
	case "roundabout", "circular":
		return true, false
	}
	if tags["highway"] == "motorway" {
		return true, false
	}
	return true, true
}
