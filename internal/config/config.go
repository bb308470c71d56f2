package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Planner holds solver and acquisition tuning.
type Planner struct {
	Capacity        int           `yaml:"capacity"`
	MinTrips        int           `yaml:"min_trips"`
	MarginsMeters   []float64     `yaml:"margins_m"`
	MinRadiusMeters float64       `yaml:"min_radius_m"`
	MatrixWorkers   int           `yaml:"matrix_workers"`
	ReportSpeedKph  float64       `yaml:"report_speed_kph"`
	OverpassURL     string        `yaml:"overpass_url"`
	OverpassRPS     float64       `yaml:"overpass_rps"`
	NetworkCacheTTL time.Duration `yaml:"network_cache_ttl"`
}

// DefaultPlanner matches the single-ambulance setup: capacity 3, two trips,
// margins of 3, 5, 8 and 12 km around a 1.5 km minimum radius.
func DefaultPlanner() Planner {
	return Planner{
		Capacity:        3,
		MinTrips:        2,
		MarginsMeters:   []float64{3000, 5000, 8000, 12000},
		MinRadiusMeters: 1500,
		MatrixWorkers:   1,
		ReportSpeedKph:  80,
		OverpassURL:     "https://overpass-api.de/api/interpreter",
		OverpassRPS:     1,
		NetworkCacheTTL: 24 * time.Hour,
	}
}

// LoadPlanner starts from DefaultPlanner, overlays the YAML file at path (if
// path is non-empty) and then PLANNER_* environment overrides.
func LoadPlanner(path string) (Planner, error) {
	cfg := DefaultPlanner()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Planner{}, fmt.Errorf("load planner config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Planner{}, fmt.Errorf("load planner config: parse %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Planner{}, fmt.Errorf("load planner config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Planner{}, fmt.Errorf("load planner config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Planner) error {
	if v := Get("PLANNER_CAPACITY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_CAPACITY: %w", err)
		}
		cfg.Capacity = n
	}
	if v := Get("PLANNER_MIN_TRIPS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_MIN_TRIPS: %w", err)
		}
		cfg.MinTrips = n
	}
	if v := Get("PLANNER_MARGINS_M", ""); v != "" {
		var margins []float64
		for _, part := range strings.Split(v, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return fmt.Errorf("PLANNER_MARGINS_M: %w", err)
			}
			margins = append(margins, f)
		}
		cfg.MarginsMeters = margins
	}
	if v := Get("PLANNER_MATRIX_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_MATRIX_WORKERS: %w", err)
		}
		cfg.MatrixWorkers = n
	}
	if v := Get("OVERPASS_URL", ""); v != "" {
		cfg.OverpassURL = v
	}
	return nil
}

func (p Planner) Validate() error {
	if p.Capacity < 1 {
		return fmt.Errorf("capacity must be positive, got %d", p.Capacity)
	}
	if p.MinTrips < 0 {
		return fmt.Errorf("min_trips must be non-negative, got %d", p.MinTrips)
	}
	if len(p.MarginsMeters) == 0 {
		return errors.New("margins_m must list at least one margin")
	}
	for i, m := range p.MarginsMeters {
		if m < 0 {
			return fmt.Errorf("margins_m[%d] must be non-negative, got %v", i, m)
		}
		if i > 0 && m <= p.MarginsMeters[i-1] {
			return fmt.Errorf("margins_m must be strictly increasing, got %v after %v", m, p.MarginsMeters[i-1])
		}
	}
	if p.ReportSpeedKph <= 0 {
		return fmt.Errorf("report_speed_kph must be positive, got %v", p.ReportSpeedKph)
	}
	if p.OverpassRPS <= 0 {
		return fmt.Errorf("overpass_rps must be positive, got %v", p.OverpassRPS)
	}
	return nil
}
