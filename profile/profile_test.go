package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/georoute/model"
)

type variantSlice []model.ObjectVariant

func (s variantSlice) Get(i uint16) (model.ObjectVariant, bool) {
	if int(i) >= len(s) {
		return model.ObjectVariant{}, false
	}
	return s[i], true
}

var testVariants = variantSlice{
	{TypeID: 1, MaxSpeed: 50, Access: model.AccessAll},
	{TypeID: 2, Access: model.AccessFootForward | model.AccessFootBackward | model.AccessCarForward},
	{TypeID: 3, MaxSpeed: 250, Access: model.AccessAll},
}

func testNode() *model.RouteNode {
	return &model.RouteNode{
		ID: 1,
		Objects: []model.ObjectVariantRef{
			{Object: model.ObjectFileRef{Type: model.RefWay, Offset: 10}, VariantIndex: 0},
			{Object: model.ObjectFileRef{Type: model.RefWay, Offset: 20}, VariantIndex: 1},
			{Object: model.ObjectFileRef{Type: model.RefWay, Offset: 30}, VariantIndex: 2},
			{Object: model.ObjectFileRef{Type: model.RefWay, Offset: 40}, VariantIndex: 9},
		},
		Paths: []model.Path{
			{Target: 2, ObjectIndex: 0, Distance: 10},
			{Target: 3, ObjectIndex: 1, Distance: 10},
			{Target: 4, ObjectIndex: 1, Distance: 10, Flags: model.PathBackward},
			{Target: 5, ObjectIndex: 2, Distance: 10},
			{Target: 6, ObjectIndex: 3, Distance: 10},
		},
	}
}

func TestCanUse(t *testing.T) {
	n := testNode()

	tests := []struct {
		vehicle Vehicle
		want    []bool
	}{
		{VehicleFoot, []bool{true, true, true, true, false}},
		{VehicleBicycle, []bool{true, false, false, true, false}},
		{VehicleCar, []bool{true, true, false, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.vehicle.String(), func(t *testing.T) {
			p := NewShortestPath(tt.vehicle)
			for i, want := range tt.want {
				assert.Equal(t, want, p.CanUse(n, testVariants, i), "path %d", i)
			}
			assert.False(t, p.CanUse(n, testVariants, 99))
			assert.False(t, p.CanUse(n, nil, 0))
		})
	}
}

func TestCosts(t *testing.T) {
	n := testNode()

	short := NewShortestPath(VehicleCar)
	assert.Equal(t, 10.0, short.Costs(n, testVariants, 0))
	assert.Equal(t, 3.0, short.CostsForDistance(3))

	fast := NewFastestPath(VehicleCar, WithTypeSpeed(2, 20))
	assert.InDelta(t, 10.0/50, fast.Costs(n, testVariants, 0), 1e-12)
	assert.InDelta(t, 10.0/20, fast.Costs(n, testVariants, 1), 1e-12)
	// Clamped to the vehicle maximum.
	assert.InDelta(t, 10.0/130, fast.Costs(n, testVariants, 3), 1e-12)
	assert.InDelta(t, 1.0/130, fast.CostsForDistance(1), 1e-12)
}

func TestCostLimitMonotonic(t *testing.T) {
	profiles := []Profile{
		NewShortestPath(VehicleCar),
		NewFastestPath(VehicleBicycle, WithCostLimit(20, 2)),
		NewShortestPath(VehicleFoot, WithCostLimit(0, 0)),
	}
	for _, p := range profiles {
		prev := CostLimit(p, 0)
		for d := 0.5; d < 500; d *= 1.7 {
			cur := CostLimit(p, d)
			assert.GreaterOrEqual(t, cur, prev)
			prev = cur
		}
	}

	p := NewShortestPath(VehicleCar)
	assert.Equal(t, DefaultCostLimitDistance+4*DefaultCostLimitFactor, CostLimit(p, 4))
}

func TestEstimateAdmissible(t *testing.T) {
	n := testNode()
	for _, p := range []Profile{
		NewShortestPath(VehicleCar),
		NewFastestPath(VehicleCar),
		NewFastestPath(VehicleBicycle, WithTypeSpeed(2, 400)),
		NewFastestPath(VehicleFoot, WithMaxSpeed(6)),
	} {
		for i, path := range n.Paths {
			if !p.CanUse(n, testVariants, i) {
				continue
			}
			assert.LessOrEqual(t, p.CostsForDistance(path.Distance), p.Costs(n, testVariants, i)+1e-12)
		}
	}
}

func TestNew(t *testing.T) {
	p, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &ShortestPath{}, p)

	p, err = New(Config{Kind: "fastest", Vehicle: "bike", MaxSpeed: 25, CostLimitDistance: 1, CostLimitFactor: 2})
	require.NoError(t, err)
	require.IsType(t, &FastestPath{}, p)
	assert.Equal(t, VehicleBicycle, p.(*FastestPath).Vehicle())
	assert.Equal(t, 1.0/25, p.CostsForDistance(1))
	assert.Equal(t, 2.0, p.CostLimitFactor())

	_, err = New(Config{Kind: "scenic", Vehicle: "car"})
	assert.Error(t, err)
	_, err = New(Config{Vehicle: "boat"})
	assert.Error(t, err)
}
