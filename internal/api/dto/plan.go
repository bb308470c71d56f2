package dto

import (
	"encoding/json"
	"time"
)

// PlanRequest names a stored problem or carries one inline in the
// OptimizationProblemData layout. Exactly one must be set.
type PlanRequest struct {
	ProblemID string          `json:"problem_id"`
	Problem   json.RawMessage `json:"problem"`
}

type TripResponse struct {
	Stops      []string `json:"stops"`
	Path       string   `json:"path"`
	DistanceKm float64  `json:"distance_km"`
	Method     string   `json:"method"`
}

type PlanResponse struct {
	PlanID       string         `json:"plan_id"`
	ProblemID    string         `json:"problem_id,omitempty"`
	Labels       []string       `json:"labels"`
	Trips        []TripResponse `json:"trips"`
	TotalKm      float64        `json:"total_km"`
	DriveTime    string         `json:"drive_time"`
	Candidates   int            `json:"candidates"`
	RadiusMeters float64        `json:"radius_m"`
	Attempts     int            `json:"attempts"`
	CreatedAt    time.Time      `json:"created_at"`
}
