package search

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/hupe1980/georoute/internal/queue"
	"github.com/hupe1980/georoute/model"
)

// transition marks a zero-cost move between databases in the predecessor map.
const transition = -1

// AStar is an A* Engine with cost limit pruning.
type AStar struct {
	logger *slog.Logger
}

var _ Engine = (*AStar)(nil)

// AStarOption configures an AStar engine.
type AStarOption func(*AStar)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) AStarOption {
	return func(a *AStar) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAStar creates an A* engine.
func NewAStar(opts ...AStarOption) *AStar {
	a := &AStar{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(a)
	}
	return a
}

type step struct {
	from model.DBFileOffset
	path int
}

type run struct {
	ctx    context.Context
	st     State
	nodes  map[model.DBFileOffset]*model.RouteNode
	best   map[model.DBFileOffset]float64
	prev   map[model.DBFileOffset]step
	closed map[model.DBFileOffset]struct{}
	open   *queue.PriorityQueue

	target     model.GeoCoord
	costLimit  float64
	expansions int
	pruned     int
}

func (r *run) node(loc model.DBFileOffset) (*model.RouteNode, error) {
	if n, ok := r.nodes[loc]; ok {
		return n, nil
	}
	n, err := r.st.RouteNode(r.ctx, loc)
	if err != nil {
		return nil, err
	}
	r.nodes[loc] = n
	return n, nil
}

// relax records cost as the best known cost of next if it improves on it
// and survives the cost limit.
func (r *run) relax(next model.DBFileOffset, cost float64, via step) error {
	if _, done := r.closed[next]; done {
		return nil
	}
	if b, ok := r.best[next]; ok && b <= cost {
		return nil
	}
	n, err := r.node(next)
	if err != nil {
		return err
	}
	estimate := r.st.EstimateCosts(next.Database, n.Coord.Distance(r.target))
	if cost+estimate > r.costLimit {
		r.pruned++
		return nil
	}
	r.best[next] = cost
	r.prev[next] = via
	r.open.Push(queue.Item{Node: next, Cost: cost, Priority: cost + estimate})
	return nil
}

func (r *run) usable(db model.DatabaseID, n *model.RouteNode, pathIndex int) bool {
	v, ok := r.st.Variant(db, n, pathIndex)
	if !ok {
		return false
	}
	if n.Paths[pathIndex].Backward() {
		return r.st.CanUseBackward(db, v)
	}
	return r.st.CanUseForward(db, v)
}

// CalculateRoute runs A* from start to target. The context is checked every
// param.CancelCheckInterval node expansions.
func (a *AStar) CalculateRoute(ctx context.Context, st State, start, target model.RoutePosition, param model.RoutingParameter) (model.RoutingResult, error) {
	if !start.Valid() || !target.Valid() {
		return model.RoutingResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return model.RoutingResult{}, err
	}

	interval := param.CancelCheckInterval
	if interval <= 0 {
		interval = model.DefaultCancelCheckInterval
	}

	r := &run{
		ctx:    ctx,
		st:     st,
		nodes:  make(map[model.DBFileOffset]*model.RouteNode),
		best:   make(map[model.DBFileOffset]float64),
		prev:   make(map[model.DBFileOffset]step),
		closed: make(map[model.DBFileOffset]struct{}),
		open:   queue.New(64),
	}

	startLoc, targetLoc := start.Locator(), target.Locator()
	startNode, err := r.node(startLoc)
	if err != nil {
		return model.RoutingResult{}, err
	}
	targetNode, err := r.node(targetLoc)
	if err != nil {
		return model.RoutingResult{}, err
	}

	r.target = targetNode.Coord
	distance := startNode.Coord.Distance(r.target)
	r.costLimit = st.CostLimit(startLoc.Database, distance)

	r.best[startLoc] = 0
	r.open.Push(queue.Item{Node: startLoc, Priority: st.EstimateCosts(startLoc.Database, distance)})

	for {
		it, ok := r.open.Pop()
		if !ok {
			break
		}
		if _, done := r.closed[it.Node]; done {
			continue
		}
		r.closed[it.Node] = struct{}{}

		if it.Node == targetLoc {
			a.logger.Debug("route found",
				slog.Int("expansions", r.expansions),
				slog.Int("pruned", r.pruned),
				slog.Float64("cost", it.Cost),
			)
			return model.RoutingResult{Route: r.route(startLoc, targetLoc), Cost: it.Cost}, nil
		}

		r.expansions++
		if r.expansions%interval == 0 {
			if err := ctx.Err(); err != nil {
				return model.RoutingResult{}, err
			}
		}

		db := it.Node.Database
		n, err := r.node(it.Node)
		if err != nil {
			return model.RoutingResult{}, err
		}

		for i := range n.Paths {
			if !r.usable(db, n, i) {
				continue
			}
			off, ok, err := st.RouteNodeOffset(ctx, db, n.Paths[i].Target)
			if err != nil {
				return model.RoutingResult{}, err
			}
			if !ok {
				continue
			}
			next := model.DBFileOffset{Database: db, Offset: off}
			if err := r.relax(next, it.Cost+st.Costs(db, n, i), step{from: it.Node, path: i}); err != nil {
				return model.RoutingResult{}, err
			}
		}

		for _, next := range st.Transitions(it.Node) {
			if err := r.relax(next, it.Cost, step{from: it.Node, path: transition}); err != nil {
				return model.RoutingResult{}, err
			}
		}
	}

	a.logger.Debug("route not found",
		slog.Int("expansions", r.expansions),
		slog.Int("pruned", r.pruned),
		slog.Float64("cost_limit", r.costLimit),
	)
	return model.RoutingResult{}, nil
}

// route rebuilds the traversed nodes from the predecessor map. A node left
// through a transition is dropped so every crossing point appears once,
// tagged with the database the route continues in.
func (r *run) route(start, target model.DBFileOffset) *model.RouteData {
	locs := []model.DBFileOffset{target}
	var links []int
	for cur := target; cur != start; {
		s := r.prev[cur]
		links = append(links, s.path)
		locs = append(locs, s.from)
		cur = s.from
	}
	slices.Reverse(locs)
	slices.Reverse(links)

	route := model.NewRouteData(len(locs))
	for i, loc := range locs {
		if i < len(links) && links[i] == transition {
			continue
		}
		n := r.nodes[loc]
		e := model.RouteEntry{
			Database: loc.Database,
			NodeID:   n.ID,
			Coord:    n.Coord,
			Cost:     r.best[loc],
		}
		if i < len(links) {
			e.PathObject = n.PathObject(links[i])
		}
		route.Append(e)
	}
	return route
}
