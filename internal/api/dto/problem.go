package dto

type LocationResponse struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ProblemResponse struct {
	ID      string             `json:"id"`
	Depot   LocationResponse   `json:"depot"`
	Demands []LocationResponse `json:"demands"`
}

type ListProblemsResponse struct {
	Problems []ProblemResponse `json:"problems"`
}
