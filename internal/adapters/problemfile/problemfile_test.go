package problemfile

import (
	"ambulance-route-service/internal/domain"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `{
  "locations": {
    "hospital": {"coordinates": {"latitude": 45.5017, "longitude": -73.5673}},
    "patients": [
      {"id": "P1", "coordinates": {"latitude": 45.5088, "longitude": -73.5540}},
      {"id": "P2", "coordinates": {"latitude": 45.4950, "longitude": -73.5800}},
      {"id": 3, "coordinates": {"latitude": 45.5200, "longitude": -73.6000}}
    ]
  }
}`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Depot.Label != domain.DepotLabel {
		t.Fatalf("depot label = %q, want %q", p.Depot.Label, domain.DepotLabel)
	}
	if got := p.Labels(); len(got) != 4 || got[1] != "P1" || got[3] != "3" {
		t.Fatalf("labels = %v", got)
	}
	if p.Demands[1].Coordinates.Lon != -73.58 {
		t.Fatalf("P2 lon = %v", p.Demands[1].Coordinates.Lon)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":                 `{"locations":`,
		"missing hospital":          `{"locations":{"patients":[{"id":"P1","coordinates":{"latitude":1,"longitude":1}}]}}`,
		"no patients":               `{"locations":{"hospital":{"coordinates":{"latitude":1,"longitude":1}},"patients":[]}}`,
		"empty id":                  `{"locations":{"hospital":{"coordinates":{"latitude":1,"longitude":1}},"patients":[{"id":"","coordinates":{"latitude":1,"longitude":1}}]}}`,
		"duplicate id":              `{"locations":{"hospital":{"coordinates":{"latitude":1,"longitude":1}},"patients":[{"id":"A","coordinates":{"latitude":1,"longitude":1}},{"id":"A","coordinates":{"latitude":2,"longitude":2}}]}}`,
		"bad latitude":              `{"locations":{"hospital":{"coordinates":{"latitude":91,"longitude":1}},"patients":[{"id":"A","coordinates":{"latitude":1,"longitude":1}}]}}`,
		"bad longitude":             `{"locations":{"hospital":{"coordinates":{"latitude":1,"longitude":1}},"patients":[{"id":"A","coordinates":{"latitude":1,"longitude":-181}}]}}`,
		"no coordinates":            `{"locations":{"hospital":{"coordinates":{"latitude":1,"longitude":1}},"patients":[{"id":"A"}]}}`,
		"hospital without latitude": `{"locations":{"hospital":{"coordinates":{"longitude":-73.57}},"patients":[{"id":"A","coordinates":{"latitude":45.51,"longitude":-73.56}}]}}`,
		"patient without longitude": `{"locations":{"hospital":{"coordinates":{"latitude":45.5,"longitude":-73.57}},"patients":[{"id":"A","coordinates":{"latitude":45.51}}]}}`,
		"null latitude":             `{"locations":{"hospital":{"coordinates":{"latitude":null,"longitude":-73.57}},"patients":[{"id":"A","coordinates":{"latitude":45.51,"longitude":-73.56}}]}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestParseNamesMissingCoordinate(t *testing.T) {
	body := `{"locations":{"hospital":{"coordinates":{"latitude":45.5,"longitude":-73.57}},` +
		`"patients":[{"id":"P1","coordinates":{"latitude":45.51,"longitude":-73.56}},{"id":"P2","coordinates":{"latitude":45.52}}]}}`

	_, err := Parse([]byte(body))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !strings.Contains(err.Error(), "patient #2 coordinates: longitude is required") {
		t.Fatalf("err = %q, want it to name patient #2 longitude", err)
	}
}

func TestLoadAndFromProblem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OptimizationProblemData.json")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p.ID = "demo"

	back, err := FromProblem(p).ToProblem()
	if err != nil {
		t.Fatalf("ToProblem: %v", err)
	}
	if back.ID != "demo" || len(back.Demands) != 3 || back.Demands[2].Label != "3" {
		t.Fatalf("round trip mismatch: %+v", back)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
