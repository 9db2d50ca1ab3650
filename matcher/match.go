package matcher

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/georoute/model"
)

// NodeSource is a Source whose route nodes can be reloaded by id.
type NodeSource interface {
	Source
	// LoadRouteNodes returns the route nodes with the given ids. Unknown ids
	// are absent from the result.
	LoadRouteNodes(ctx context.Context, ids *roaring64.Bitmap) (map[model.ID]model.RouteNode, error)
}

// Result is the outcome of Match.
type Result struct {
	Candidates Candidates
	Crossings  []Crossing
}

// Match finds the candidates of first and second with m, reloads them from
// both databases and keeps the pairs that Verify confirms.
func Match(ctx context.Context, m Matcher, first, second NodeSource) (Result, error) {
	cands, err := m.FindCandidates(ctx, first, second)
	if err != nil {
		return Result{}, err
	}
	res := Result{Candidates: cands}

	firstNodes, err := first.LoadRouteNodes(ctx, cands.First)
	if err != nil {
		return Result{}, err
	}
	secondNodes, err := second.LoadRouteNodes(ctx, cands.Second)
	if err != nil {
		return Result{}, err
	}
	res.Crossings = Verify(firstNodes, secondNodes)
	return res, nil
}
