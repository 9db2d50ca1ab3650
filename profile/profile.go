package profile

import (
	"github.com/hupe1980/georoute/model"
)

// Default cost limit parameters.
const (
	DefaultCostLimitDistance = 10.0
	DefaultCostLimitFactor   = 5.0
)

// VariantLookup resolves the object variants of a database.
type VariantLookup interface {
	Get(i uint16) (model.ObjectVariant, bool)
}

// Profile computes usability and traversal costs of graph edges for one
// vehicle.
//
// CostsForDistance must be admissible: for every distance d it may not
// exceed the cost of any usable path whose great-circle length is d.
// Route search uses it as its remaining-cost estimate and relies on this
// bound for optimal results. The built-in profiles are admissible as long
// as stored path distances are not shorter than the great-circle distance
// between their end points.
type Profile interface {
	// CanUse reports whether path pathIndex of node may be traversed.
	CanUse(node *model.RouteNode, variants VariantLookup, pathIndex int) bool
	// CanUseForward reports whether objects of v may be used in their direction.
	CanUseForward(v model.ObjectVariant) bool
	// CanUseBackward reports whether objects of v may be used against their direction.
	CanUseBackward(v model.ObjectVariant) bool
	// Costs returns the cost of traversing path pathIndex of node.
	Costs(node *model.RouteNode, variants VariantLookup, pathIndex int) float64
	// CostsForDistance returns a lower bound of the cost to cover distance km.
	CostsForDistance(distance float64) float64
	// CostLimitDistance is the distance in km whose cost every search may spend
	// in addition to the target dependent share.
	CostLimitDistance() float64
	// CostLimitFactor scales the target distance into the cost limit.
	CostLimitFactor() float64
}

// CostLimit returns the cost bound of a search whose target lies
// targetDistance km away: the cost of the limit distance plus the target
// distance scaled by the limit factor.
func CostLimit(p Profile, targetDistance float64) float64 {
	return p.CostsForDistance(p.CostLimitDistance()) + targetDistance*p.CostLimitFactor()
}

// Option configures the built-in profiles.
type Option func(*base)

// WithCostLimit sets the cost limit distance and factor.
func WithCostLimit(distance, factor float64) Option {
	return func(b *base) {
		if distance >= 0 {
			b.limitDistance = distance
		}
		if factor >= 0 {
			b.limitFactor = factor
		}
	}
}

// WithMaxSpeed overrides the vehicle top speed in km/h.
func WithMaxSpeed(kmh float64) Option {
	return func(b *base) {
		if kmh > 0 {
			b.maxSpeed = kmh
		}
	}
}

// WithTypeSpeed sets the speed of objects of typeID without an explicit
// speed limit.
func WithTypeSpeed(typeID uint16, kmh float64) Option {
	return func(b *base) {
		if kmh > 0 {
			b.typeSpeeds[typeID] = kmh
		}
	}
}

// base holds the vehicle rules shared by the built-in profiles.
type base struct {
	vehicle       Vehicle
	forward       model.AccessFlags
	backward      model.AccessFlags
	maxSpeed      float64
	typeSpeeds    map[uint16]float64
	limitDistance float64
	limitFactor   float64
}

func newBase(v Vehicle, opts []Option) base {
	fwd, bwd := v.access()
	b := base{
		vehicle:       v,
		forward:       fwd,
		backward:      bwd,
		maxSpeed:      v.MaxSpeed(),
		typeSpeeds:    make(map[uint16]float64),
		limitDistance: DefaultCostLimitDistance,
		limitFactor:   DefaultCostLimitFactor,
	}
	for _, fn := range opts {
		fn(&b)
	}
	return b
}

// Vehicle returns the vehicle of the profile.
func (b *base) Vehicle() Vehicle { return b.vehicle }

func (b *base) CanUseForward(v model.ObjectVariant) bool  { return v.Access.Has(b.forward) }
func (b *base) CanUseBackward(v model.ObjectVariant) bool { return v.Access.Has(b.backward) }

func (b *base) CanUse(node *model.RouteNode, variants VariantLookup, pathIndex int) bool {
	v, ok := pathVariant(node, variants, pathIndex)
	if !ok {
		return false
	}
	if node.Paths[pathIndex].Backward() {
		return b.CanUseBackward(v)
	}
	return b.CanUseForward(v)
}

func (b *base) CostLimitDistance() float64 { return b.limitDistance }
func (b *base) CostLimitFactor() float64   { return b.limitFactor }

// speed returns the travel speed on objects of v, clamped to the vehicle maximum.
func (b *base) speed(v model.ObjectVariant) float64 {
	s := b.maxSpeed
	if v.MaxSpeed > 0 {
		s = float64(v.MaxSpeed)
	} else if ts, ok := b.typeSpeeds[v.TypeID]; ok {
		s = ts
	}
	return min(s, b.maxSpeed)
}

func pathVariant(node *model.RouteNode, variants VariantLookup, pathIndex int) (model.ObjectVariant, bool) {
	idx, ok := node.Variant(pathIndex)
	if !ok || variants == nil {
		return model.ObjectVariant{}, false
	}
	return variants.Get(idx)
}

// ShortestPath minimizes distance. Costs are kilometers.
type ShortestPath struct {
	base
}

// NewShortestPath creates a distance profile for vehicle v.
func NewShortestPath(v Vehicle, opts ...Option) *ShortestPath {
	return &ShortestPath{base: newBase(v, opts)}
}

// Costs returns the path distance.
func (p *ShortestPath) Costs(node *model.RouteNode, _ VariantLookup, pathIndex int) float64 {
	return node.Paths[pathIndex].Distance
}

// CostsForDistance returns distance.
func (p *ShortestPath) CostsForDistance(distance float64) float64 { return distance }

// FastestPath minimizes travel time. Costs are hours.
type FastestPath struct {
	base
}

// NewFastestPath creates a travel time profile for vehicle v.
func NewFastestPath(v Vehicle, opts ...Option) *FastestPath {
	return &FastestPath{base: newBase(v, opts)}
}

// Costs returns the travel time of the path.
func (p *FastestPath) Costs(node *model.RouteNode, variants VariantLookup, pathIndex int) float64 {
	speed := p.maxSpeed
	if v, ok := pathVariant(node, variants, pathIndex); ok {
		speed = p.speed(v)
	}
	return node.Paths[pathIndex].Distance / speed
}

// CostsForDistance returns the travel time at the vehicle top speed.
func (p *FastestPath) CostsForDistance(distance float64) float64 {
	return distance / p.maxSpeed
}

var (
	_ Profile = (*ShortestPath)(nil)
	_ Profile = (*FastestPath)(nil)
)
