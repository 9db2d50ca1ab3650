package router

import (
	"context"
	"fmt"

	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/search"
)

// State is the search.State of one database under one profile.
type State struct {
	id       model.DatabaseID
	files    *routedb.Files
	profile  profile.Profile
	variants *routedb.VariantTable
}

var _ search.State = (*State)(nil)

// NewState binds files, tagged as database id, to profile p.
func NewState(id model.DatabaseID, files *routedb.Files, p profile.Profile) *State {
	return &State{id: id, files: files, profile: p, variants: files.Variants()}
}

// Database returns the database id of the state.
func (s *State) Database() model.DatabaseID { return s.id }

// Profile returns the profile of the state.
func (s *State) Profile() profile.Profile { return s.profile }

func (s *State) check(db model.DatabaseID) error {
	if db != s.id {
		return fmt.Errorf("router: database %d is not %d", db, s.id)
	}
	return nil
}

func (s *State) RouteNode(ctx context.Context, loc model.DBFileOffset) (*model.RouteNode, error) {
	if err := s.check(loc.Database); err != nil {
		return nil, err
	}
	n, err := s.files.RouteNodes().GetByOffset(ctx, loc.Offset)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *State) RouteNodeOffset(ctx context.Context, db model.DatabaseID, id model.ID) (model.FileOffset, bool, error) {
	if err := s.check(db); err != nil {
		return 0, false, err
	}
	return s.files.RouteNodes().GetOffset(ctx, id)
}

func (s *State) Variant(_ model.DatabaseID, n *model.RouteNode, pathIndex int) (model.ObjectVariant, bool) {
	idx, ok := n.Variant(pathIndex)
	if !ok {
		return model.ObjectVariant{}, false
	}
	return s.variants.Get(idx)
}

func (s *State) CanUseForward(_ model.DatabaseID, v model.ObjectVariant) bool {
	return s.profile.CanUseForward(v)
}

func (s *State) CanUseBackward(_ model.DatabaseID, v model.ObjectVariant) bool {
	return s.profile.CanUseBackward(v)
}

func (s *State) Costs(_ model.DatabaseID, n *model.RouteNode, pathIndex int) float64 {
	return s.profile.Costs(n, s.variants, pathIndex)
}

func (s *State) EstimateCosts(_ model.DatabaseID, distance float64) float64 {
	return s.profile.CostsForDistance(distance)
}

func (s *State) CostLimit(_ model.DatabaseID, targetDistance float64) float64 {
	return profile.CostLimit(s.profile, targetDistance)
}

func (s *State) Transitions(model.DBFileOffset) []model.DBFileOffset { return nil }
