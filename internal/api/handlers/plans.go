package handlers

import (
	"ambulance-route-service/internal/adapters/problemfile"
	"ambulance-route-service/internal/api/dto"
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/ports"
	"ambulance-route-service/internal/report"
	"ambulance-route-service/internal/services"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// Planner is the solving dependency of PlanHandler; *services.Planner
// satisfies it.
type Planner interface {
	Plan(ctx context.Context, problem *domain.Problem) (*services.PlanResult, error)
}

type PlanHandler struct {
	Problems ports.ProblemRepository
	Store    ports.SolutionStore
	Planner  Planner
	// Speed used for the informational drive time.
	SpeedKph float64
}

// Create solves a stored or inline problem, persists the solution and
// returns it.
func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	problemID := strings.TrimSpace(req.ProblemID)
	inline := len(req.Problem) > 0 && string(req.Problem) != "null"
	if (problemID == "") == !inline {
		writeError(w, r, http.StatusBadRequest, "exactly one of problem_id or problem is required")
		return
	}

	var (
		problem *domain.Problem
		err     error
	)
	if inline {
		problem, err = problemfile.Parse(req.Problem)
	} else {
		problem, err = h.Problems.GetProblem(r.Context(), problemID)
	}
	if err != nil {
		writeDomainError(w, r, "load problem", err)
		return
	}

	result, err := h.Planner.Plan(r.Context(), problem)
	if err != nil {
		writeDomainError(w, r, "plan", err)
		return
	}

	plan := ports.StoredPlan{
		ProblemID:    problem.ID,
		Labels:       problem.Labels(),
		Solution:     result.Solution,
		RadiusMeters: result.Area.RadiusMeters,
		Attempts:     len(result.Attempts),
		CreatedAt:    time.Now().UTC(),
	}

	id, err := h.Store.SavePlan(r.Context(), plan)
	if err != nil {
		writeDomainError(w, r, "save plan", err)
		return
	}
	plan.ID = id

	w.Header().Set("Location", "/plans/"+id)
	writeJSON(w, r, http.StatusCreated, h.planResponse(plan))
}

// Get returns a stored plan by id.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "plan id is required")
		return
	}

	plan, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "get plan", err)
		return
	}

	writeJSON(w, r, http.StatusOK, h.planResponse(plan))
}

func (h *PlanHandler) planResponse(p ports.StoredPlan) dto.PlanResponse {
	res := dto.PlanResponse{
		PlanID:       p.ID,
		ProblemID:    p.ProblemID,
		Labels:       p.Labels,
		Trips:        make([]dto.TripResponse, 0, len(p.Solution.Trips)),
		TotalKm:      p.Solution.TotalKm,
		DriveTime:    report.DriveTime(p.Solution.TotalKm, h.SpeedKph).String(),
		Candidates:   p.Solution.Candidates,
		RadiusMeters: p.RadiusMeters,
		Attempts:     p.Attempts,
		CreatedAt:    p.CreatedAt,
	}

	for _, t := range p.Solution.Trips {
		stops := make([]string, 0, len(t.Order))
		for _, idx := range t.Order {
			if idx >= 0 && idx < len(p.Labels) {
				stops = append(stops, p.Labels[idx])
			}
		}
		res.Trips = append(res.Trips, dto.TripResponse{
			Stops:      stops,
			Path:       report.TripPath(p.Labels, t),
			DistanceKm: t.CostKm,
			Method:     t.Method,
		})
	}
	return res
}
