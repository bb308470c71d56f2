// Package problemfile reads routing problems in the OptimizationProblemData
// JSON layout:
//
//	{
//	  "id": "downtown",
//	  "locations": {
//	    "hospital": {"coordinates": {"latitude": 45.50, "longitude": -73.57}},
//	    "patients": [
//	      {"id": "P1", "coordinates": {"latitude": 45.51, "longitude": -73.56}}
//	    ]
//	  }
//	}
//
// The hospital becomes the depot (label "H"); patients become demands in
// file order. "id" is optional at the top level.
package problemfile

import (
	"ambulance-route-service/internal/domain"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Record struct {
	ID        string    `json:"id,omitempty"`
	Locations Locations `json:"locations"`
}

type Locations struct {
	Hospital *Site     `json:"hospital"`
	Patients []Patient `json:"patients"`
}

type Site struct {
	Coordinates *Point `json:"coordinates"`
}

type Patient struct {
	ID          Label  `json:"id"`
	Coordinates *Point `json:"coordinates"`
}

// Point keeps latitude and longitude as pointers so an omitted field is
// rejected instead of decoding to 0.
type Point struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Label accepts both "P1" and 1 in JSON.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Label(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("patient id must be a string or number: %w", err)
	}
	*l = Label(n.String())
	return nil
}

// Load reads and converts the file at path.
func Load(path string) (*domain.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load problem: read %q: %w", path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load problem %q: %w", path, err)
	}
	return p, nil
}

// Parse decodes one record and converts it with ToProblem.
func Parse(data []byte) (*domain.Problem, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode problem: %v", domain.ErrInvalidInput, err)
	}
	return rec.ToProblem()
}

// ToProblem converts the record and validates it. Failures wrap
// domain.ErrInvalidInput.
func (r Record) ToProblem() (*domain.Problem, error) {
	h := r.Locations.Hospital
	if h == nil || h.Coordinates == nil {
		return nil, fmt.Errorf("%w: locations.hospital.coordinates is required", domain.ErrInvalidInput)
	}
	depot, err := h.Coordinates.coordinates("locations.hospital.coordinates")
	if err != nil {
		return nil, err
	}

	p := &domain.Problem{
		ID: strings.TrimSpace(r.ID),
		Depot: domain.Location{
			Label:       domain.DepotLabel,
			Coordinates: depot,
		},
		Demands: make([]domain.Location, 0, len(r.Locations.Patients)),
	}

	for i, pt := range r.Locations.Patients {
		if pt.Coordinates == nil {
			return nil, fmt.Errorf("%w: patient #%d has no coordinates", domain.ErrInvalidInput, i+1)
		}
		c, err := pt.Coordinates.coordinates(fmt.Sprintf("patient #%d coordinates", i+1))
		if err != nil {
			return nil, err
		}
		p.Demands = append(p.Demands, domain.Location{
			Label:       strings.TrimSpace(string(pt.ID)),
			Coordinates: c,
		})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// FromProblem is the inverse of ToProblem.
func FromProblem(p *domain.Problem) Record {
	rec := Record{
		ID: p.ID,
		Locations: Locations{
			Hospital: &Site{Coordinates: point(p.Depot.Coordinates)},
			Patients: make([]Patient, 0, len(p.Demands)),
		},
	}
	for _, d := range p.Demands {
		rec.Locations.Patients = append(rec.Locations.Patients, Patient{
			ID:          Label(d.Label),
			Coordinates: point(d.Coordinates),
		})
	}
	return rec
}

func (pt *Point) coordinates(field string) (domain.Coordinates, error) {
	if pt.Latitude == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %s: latitude is required", domain.ErrInvalidInput, field)
	}
	if pt.Longitude == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %s: longitude is required", domain.ErrInvalidInput, field)
	}
	return domain.Coordinates{Lat: *pt.Latitude, Lon: *pt.Longitude}, nil
}

func point(c domain.Coordinates) *Point {
	lat, lon := c.Lat, c.Lon
	return &Point{Latitude: &lat, Longitude: &lon}
}
