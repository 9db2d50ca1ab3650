package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/georoute/model"
)

func sampleResult() model.RoutingResult {
	route := model.NewRouteData(2)
	route.Append(model.RouteEntry{
		Database:   0,
		NodeID:     7,
		Coord:      model.GeoCoord{Lat: 50.1, Lon: 8.2},
		PathObject: model.ObjectFileRef{Type: model.RefWay, Offset: 1001},
		Objects: []model.ObjectFileRef{
			{Type: model.RefWay, Offset: 1001},
			{Type: model.RefWay, Offset: 5003},
		},
	})
	route.Append(model.RouteEntry{Database: 1, NodeID: 103, Coord: model.GeoCoord{Lat: 50.11, Lon: 8.2}, Cost: 1.25})
	return model.RoutingResult{Route: route, Cost: 1.25}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestRoute_Codecs(t *testing.T) {
	want := NewRoute(sampleResult())
	require.True(t, want.Found)
	require.Len(t, want.Entries, 2)
	assert.Equal(t, "way:1001", want.Entries[0].PathObject)
	assert.Equal(t, []string{"way:1001", "way:5003"}, want.Entries[0].Objects)
	assert.Empty(t, want.Entries[1].PathObject)

	codecs := []Codec{JSON{}, GoJSON{}, JSON{Indent: "  "}, GoJSON{Indent: "  "}}
	for _, enc := range codecs {
		for _, dec := range codecs {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				var got Route
				require.NoError(t, dec.Unmarshal(MustMarshal(enc, want), &got))
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestRoute_NotFound(t *testing.T) {
	r := NewRoute(model.RoutingResult{})
	assert.False(t, r.Found)
	assert.Nil(t, r.Entries)
	assert.JSONEq(t, `{"found":false,"cost":0}`, string(MustMarshal(GoJSON{}, r)))

	r = NewRoute(model.RoutingResult{Err: errors.New("disk gone")})
	assert.Equal(t, "disk gone", r.Error)
}

func TestPositionAndNode(t *testing.T) {
	assert.Equal(t, Position{}, NewPosition(model.InvalidRoutePosition))

	p := NewPosition(model.RoutePosition{
		Object:    model.ObjectFileRef{Type: model.RefRouteNode, Offset: 12},
		NodeIndex: 1,
		Database:  2,
	})
	assert.Equal(t, Position{Valid: true, Database: 2, Object: "routenode:12", NodeIndex: 1}, p)

	n := NewNode(model.RouteNode{
		FileOffset: 12,
		ID:         4,
		Coord:      model.GeoCoord{Lat: 1, Lon: 2},
		Objects:    []model.ObjectVariantRef{{Object: model.ObjectFileRef{Type: model.RefWay, Offset: 9}}},
		Paths:      []model.Path{{Target: 5, ObjectIndex: 0, Distance: 0.5, Flags: model.PathBackward}},
	})
	assert.Equal(t, []string{"way:9"}, n.Objects)
	require.Len(t, n.Paths, 1)
	assert.Equal(t, Path{Target: 5, Object: "way:9", Distance: 0.5, Backward: true}, n.Paths[0])

	b, err := GoJSON{}.Append([]byte("node="), n)
	require.NoError(t, err)
	assert.Contains(t, string(b), `node={"id":4`)
}
