package georoute

import (
	"context"
	"math"

	"github.com/hupe1980/georoute/matcher"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/router"
	"github.com/hupe1980/georoute/search"
)

// multiState is the search state of a cross-database route. Every node
// belongs to exactly one database and is answered by that database's
// profile; the verified crossings are the only moves between databases.
type multiState struct {
	states      map[model.DatabaseID]*router.State
	transitions map[model.DBFileOffset][]model.DBFileOffset
}

var _ search.State = (*multiState)(nil)

func newMultiState(first, second *router.State, crossings []matcher.Crossing) *multiState {
	st := &multiState{
		states: map[model.DatabaseID]*router.State{
			first.Database():  first,
			second.Database(): second,
		},
		transitions: make(map[model.DBFileOffset][]model.DBFileOffset, 2*len(crossings)),
	}
	for _, c := range crossings {
		a := model.DBFileOffset{Database: first.Database(), Offset: c.First.FileOffset}
		b := model.DBFileOffset{Database: second.Database(), Offset: c.Second.FileOffset}
		st.transitions[a] = append(st.transitions[a], b)
		st.transitions[b] = append(st.transitions[b], a)
	}
	return st
}

func (m *multiState) state(db model.DatabaseID) (*router.State, error) {
	s, ok := m.states[db]
	if !ok {
		return nil, &ErrUnknownDatabase{ID: db}
	}
	return s, nil
}

func (m *multiState) RouteNode(ctx context.Context, loc model.DBFileOffset) (*model.RouteNode, error) {
	s, err := m.state(loc.Database)
	if err != nil {
		return nil, err
	}
	return s.RouteNode(ctx, loc)
}

func (m *multiState) RouteNodeOffset(ctx context.Context, db model.DatabaseID, id model.ID) (model.FileOffset, bool, error) {
	s, err := m.state(db)
	if err != nil {
		return 0, false, err
	}
	return s.RouteNodeOffset(ctx, db, id)
}

func (m *multiState) Variant(db model.DatabaseID, n *model.RouteNode, pathIndex int) (model.ObjectVariant, bool) {
	s, ok := m.states[db]
	if !ok {
		return model.ObjectVariant{}, false
	}
	return s.Variant(db, n, pathIndex)
}

func (m *multiState) CanUseForward(db model.DatabaseID, v model.ObjectVariant) bool {
	s, ok := m.states[db]
	return ok && s.CanUseForward(db, v)
}

func (m *multiState) CanUseBackward(db model.DatabaseID, v model.ObjectVariant) bool {
	s, ok := m.states[db]
	return ok && s.CanUseBackward(db, v)
}

func (m *multiState) Costs(db model.DatabaseID, n *model.RouteNode, pathIndex int) float64 {
	s, ok := m.states[db]
	if !ok {
		return math.Inf(1)
	}
	return s.Costs(db, n, pathIndex)
}

// EstimateCosts returns the smallest estimate of all profiles. The rest of
// a route may continue in any database, so only the minimum stays a lower
// bound.
func (m *multiState) EstimateCosts(_ model.DatabaseID, distance float64) float64 {
	est := math.Inf(1)
	for db, s := range m.states {
		est = min(est, s.EstimateCosts(db, distance))
	}
	return est
}

func (m *multiState) CostLimit(db model.DatabaseID, targetDistance float64) float64 {
	s, ok := m.states[db]
	if !ok {
		return 0
	}
	return s.CostLimit(db, targetDistance)
}

func (m *multiState) Transitions(loc model.DBFileOffset) []model.DBFileOffset {
	return m.transitions[loc]
}
