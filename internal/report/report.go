// Package report renders solved plans as plain text.
package report

import (
	"ambulance-route-service/internal/domain"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

const Header = "=== CLASSICAL OPTIMUM (distance km) ==="

// TripPath renders t as "H → P1 → P3 → H" using labels in matrix index order.
// An empty trip renders as "H → H".
func TripPath(labels []string, t domain.Trip) string {
	depot := label(labels, domain.DepotIndex)

	parts := make([]string, 0, len(t.Order)+2)
	parts = append(parts, depot)
	for _, idx := range t.Order {
		parts = append(parts, label(labels, idx))
	}
	parts = append(parts, depot)
	return strings.Join(parts, " → ")
}

// DriveTime converts km to a duration at a uniform speed. It is informational
// only; plans are optimized on distance.
func DriveTime(km, speedKph float64) time.Duration {
	if speedKph <= 0 || math.IsInf(km, 0) || math.IsNaN(km) {
		return 0
	}
	return time.Duration(km / speedKph * float64(time.Hour)).Round(time.Second)
}

// WriteSolution prints the header, one line per trip, the total and, when
// speedKph is positive, the drive time at that speed.
func WriteSolution(w io.Writer, labels []string, sol domain.Solution, speedKph float64) error {
	var b strings.Builder

	b.WriteString(Header + "\n")
	for i, t := range sol.Trips {
		fmt.Fprintf(&b, "Trip %d: %s | %.2f km\n", i+1, TripPath(labels, t), t.CostKm)
	}
	fmt.Fprintf(&b, "TOTAL = %.2f km\n", sol.TotalKm)
	if speedKph > 0 {
		fmt.Fprintf(&b, "Drive time at %.0f km/h: %s\n", speedKph, DriveTime(sol.TotalKm, speedKph))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLoadedPoints lists every location with its matrix index.
func WriteLoadedPoints(w io.Writer, locations []domain.Location) error {
	var b strings.Builder

	b.WriteString("Loaded points:\n")
	for i, l := range locations {
		fmt.Fprintf(&b, " %d: %s lat=%.6f, lon=%.6f\n", i, l.Label, l.Coordinates.Lat, l.Coordinates.Lon)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func label(labels []string, idx int) string {
	if idx >= 0 && idx < len(labels) {
		return labels[idx]
	}
	return fmt.Sprintf("#%d", idx)
}
