package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/georoute/internal/geocell"
	"github.com/hupe1980/georoute/routedb"
)

// Parameter configures an import run.
type Parameter struct {
	// MinMag is the coarsest index level considered.
	MinMag uint8 `yaml:"min_mag"`
	// MaxLevel is the finest index level considered.
	MaxLevel uint8 `yaml:"max_level"`
	// MMap memory-maps the route node data while reading it.
	MMap bool `yaml:"mmap"`
	// RouteTypeIDBytes is the width of the type id field of index entries.
	RouteTypeIDBytes uint8 `yaml:"route_type_id_bytes"`
	// MaxCellFill is the number of entries per cell at which a finer level
	// is tried.
	MaxCellFill int `yaml:"max_cell_fill"`
}

// DefaultParameter returns the default import parameters.
func DefaultParameter() Parameter {
	return Parameter{
		MinMag:           8,
		MaxLevel:         14,
		RouteTypeIDBytes: 2,
		MaxCellFill:      256,
	}
}

// ErrInvalidParameter is returned for inconsistent parameters.
var ErrInvalidParameter = errors.New("importer: invalid parameter")

// Validate checks p.
func (p Parameter) Validate() error {
	if p.MaxLevel > geocell.MaxLevel {
		return fmt.Errorf("%w: max level %d exceeds %d", ErrInvalidParameter, p.MaxLevel, geocell.MaxLevel)
	}
	if p.MinMag > p.MaxLevel {
		return fmt.Errorf("%w: min mag %d above max level %d", ErrInvalidParameter, p.MinMag, p.MaxLevel)
	}
	if p.RouteTypeIDBytes != 1 && p.RouteTypeIDBytes != 2 {
		return fmt.Errorf("%w: route type id bytes must be 1 or 2, got %d", ErrInvalidParameter, p.RouteTypeIDBytes)
	}
	if p.MaxCellFill <= 0 {
		return fmt.Errorf("%w: max cell fill must be positive", ErrInvalidParameter)
	}
	return nil
}

// Description documents a generator.
type Description struct {
	Name        string
	Description string
	Required    []string
	Provided    []string
}

// Generator derives files from a database.
type Generator interface {
	Describe() Description
	Import(ctx context.Context, db routedb.Database, p Parameter) error
}
