package handlers

import (
	"ambulance-route-service/internal/api/dto"
	"ambulance-route-service/internal/domain"
	"ambulance-route-service/internal/ports"
	"net/http"
)

// ProblemHandler exposes read-only problem retrieval endpoints.
type ProblemHandler struct {
	Repo ports.ProblemRepository
}

func (h *ProblemHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	problems, err := h.Repo.ListProblems(r.Context())
	if err != nil {
		writeDomainError(w, r, "list problems", err)
		return
	}

	res := dto.ListProblemsResponse{
		Problems: make([]dto.ProblemResponse, 0, len(problems)),
	}
	for _, p := range problems {
		pr := dto.ProblemResponse{
			ID:      p.ID,
			Depot:   locationResponse(p.Depot),
			Demands: make([]dto.LocationResponse, 0, len(p.Demands)),
		}
		for _, d := range p.Demands {
			pr.Demands = append(pr.Demands, locationResponse(d))
		}
		res.Problems = append(res.Problems, pr)
	}

	writeJSON(w, r, http.StatusOK, res)
}

func locationResponse(l domain.Location) dto.LocationResponse {
	return dto.LocationResponse{
		Label:     l.Label,
		Latitude:  l.Coordinates.Lat,
		Longitude: l.Coordinates.Lon,
	}
}
