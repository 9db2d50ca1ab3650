package search

import (
	"context"

	"github.com/hupe1980/georoute/model"
)

// State is the view of the route graphs a search runs on.
//
// Every method that takes a database id answers with the rules of that
// database's cost profile.
type State interface {
	// RouteNode loads the route node at loc.
	RouteNode(ctx context.Context, loc model.DBFileOffset) (*model.RouteNode, error)
	// RouteNodeOffset resolves node id of database db.
	RouteNodeOffset(ctx context.Context, db model.DatabaseID, id model.ID) (model.FileOffset, bool, error)
	// Variant returns the object variant of path pathIndex of node.
	Variant(db model.DatabaseID, node *model.RouteNode, pathIndex int) (model.ObjectVariant, bool)
	// CanUseForward reports whether objects of v may be used in their direction.
	CanUseForward(db model.DatabaseID, v model.ObjectVariant) bool
	// CanUseBackward reports whether objects of v may be used against their direction.
	CanUseBackward(db model.DatabaseID, v model.ObjectVariant) bool
	// Costs returns the cost of path pathIndex of node.
	Costs(db model.DatabaseID, node *model.RouteNode, pathIndex int) float64
	// EstimateCosts returns an admissible estimate of the cost to cover distance km.
	EstimateCosts(db model.DatabaseID, distance float64) float64
	// CostLimit returns the cost bound for a target targetDistance km away.
	CostLimit(db model.DatabaseID, targetDistance float64) float64
	// Transitions returns the zero-cost moves from loc into other databases.
	Transitions(loc model.DBFileOffset) []model.DBFileOffset
}

// Engine computes routes on a State.
type Engine interface {
	// CalculateRoute returns the cheapest route from start to target. An
	// unreachable target yields a result without route and a nil error;
	// errors are reserved for I/O failures and cancellation.
	CalculateRoute(ctx context.Context, st State, start, target model.RoutePosition, param model.RoutingParameter) (model.RoutingResult, error)
}
