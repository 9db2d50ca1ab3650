package profile

import "fmt"

// Config describes a built-in profile.
type Config struct {
	// Kind is "shortest" or "fastest".
	Kind    string `yaml:"kind"`
	Vehicle string `yaml:"vehicle"`
	// MaxSpeed overrides the vehicle top speed in km/h.
	MaxSpeed          float64 `yaml:"max_speed"`
	CostLimitDistance float64 `yaml:"cost_limit_distance"`
	CostLimitFactor   float64 `yaml:"cost_limit_factor"`
}

// DefaultConfig returns a shortest path profile for cars.
func DefaultConfig() Config {
	return Config{
		Kind:              "shortest",
		Vehicle:           "car",
		CostLimitDistance: DefaultCostLimitDistance,
		CostLimitFactor:   DefaultCostLimitFactor,
	}
}

// New builds the profile described by cfg.
func New(cfg Config) (Profile, error) {
	v, err := ParseVehicle(cfg.Vehicle)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithCostLimit(cfg.CostLimitDistance, cfg.CostLimitFactor)}
	if cfg.MaxSpeed > 0 {
		opts = append(opts, WithMaxSpeed(cfg.MaxSpeed))
	}

	switch cfg.Kind {
	case "", "shortest":
		return NewShortestPath(v, opts...), nil
	case "fastest":
		return NewFastestPath(v, opts...), nil
	default:
		return nil, fmt.Errorf("profile: unknown kind %q", cfg.Kind)
	}
}
