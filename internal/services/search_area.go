package services

import (
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/ports"
	"math"
)

// Rough meters per degree of latitude, used only to size the search area.
const metersPerDegreeLat = 111_320.0

// SearchAreaFor returns the circle used to acquire a network for locations:
// centred on their mean coordinate, with radius half the larger of the
// north-south and east-west spans plus margin, never below minRadius.
func SearchAreaFor(locations []domain.Location, marginMeters, minRadiusMeters float64) ports.SearchArea {
	if len(locations) == 0 {
		return ports.SearchArea{RadiusMeters: math.Max(marginMeters, minRadiusMeters)}
	}

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	var sumLat, sumLon float64
	for _, l := range locations {
		c := l.Coordinates
		sumLat += c.Lat
		sumLon += c.Lon
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
		minLon = math.Min(minLon, c.Lon)
		maxLon = math.Max(maxLon, c.Lon)
	}

	n := float64(len(locations))
	anchor := domain.Coordinates{Lat: sumLat / n, Lon: sumLon / n}

	metersPerDegreeLon := metersPerDegreeLat * math.Cos(anchor.Lat*math.Pi/180)
	span := math.Max((maxLat-minLat)*metersPerDegreeLat, (maxLon-minLon)*metersPerDegreeLon)

	radius := span/2 + marginMeters
	if radius < minRadiusMeters {
		radius = minRadiusMeters
	}

	return ports.SearchArea{Anchor: anchor, RadiusMeters: radius}
}
