package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// square spans lon 144.0..145.0, lat -38.0..-37.0 with a hole in the middle.
var square = Polygon{
	{
		{Latitude: -38.0, Longitude: 144.0},
		{Latitude: -38.0, Longitude: 145.0},
		{Latitude: -37.0, Longitude: 145.0},
		{Latitude: -37.0, Longitude: 144.0},
		{Latitude: -38.0, Longitude: 144.0},
	},
	{
		{Latitude: -37.6, Longitude: 144.4},
		{Latitude: -37.6, Longitude: 144.6},
		{Latitude: -37.4, Longitude: 144.6},
		{Latitude: -37.4, Longitude: 144.4},
	},
}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		name string
		p    Coordinate
		want bool
	}{
		{"inside outer ring", Coordinate{Latitude: -37.8, Longitude: 144.2}, true},
		{"inside hole", Coordinate{Latitude: -37.5, Longitude: 144.5}, false},
		{"north of polygon", Coordinate{Latitude: -36.5, Longitude: 144.5}, false},
		{"east of polygon", Coordinate{Latitude: -37.5, Longitude: 145.5}, false},
		{"west edge", Coordinate{Latitude: -37.8, Longitude: 144.0}, true},
		{"east edge", Coordinate{Latitude: -37.8, Longitude: 145.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(tt.p, square))
		})
	}
}

func TestPointInPolygonDeterministic(t *testing.T) {
	points := []Coordinate{
		{Latitude: -37.0, Longitude: 144.5},
		{Latitude: -38.0, Longitude: 144.5},
		{Latitude: -37.6, Longitude: 144.5},
		{Latitude: -37.5, Longitude: 144.4},
		{Latitude: -38.0, Longitude: 144.0},
	}
	for _, p := range points {
		first := PointInPolygon(p, square)
		for i := 0; i < 50; i++ {
			assert.Equal(t, first, PointInPolygon(p, square), "point %s", p)
		}
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	p := Coordinate{Latitude: 0, Longitude: 0}
	assert.False(t, PointInPolygon(p, nil))
	assert.False(t, PointInPolygon(p, Polygon{{{Latitude: 0, Longitude: 0}, {Latitude: 1, Longitude: 1}}}))
}

func TestMultiPolygonContains(t *testing.T) {
	far := Polygon{{
		{Latitude: 10, Longitude: 10},
		{Latitude: 10, Longitude: 11},
		{Latitude: 11, Longitude: 11},
		{Latitude: 11, Longitude: 10},
	}}
	m := MultiPolygon{far, square}

	assert.True(t, m.Contains(Coordinate{Latitude: 10.5, Longitude: 10.5}))
	assert.True(t, m.Contains(Coordinate{Latitude: -37.8, Longitude: 144.8}))
	assert.False(t, m.Contains(Coordinate{Latitude: 0, Longitude: 0}))
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf(MultiPolygon{square})
	assert.Equal(t, Bounds{MinLat: -38.0, MinLon: 144.0, MaxLat: -37.0, MaxLon: 145.0}, b)
	assert.True(t, b.Contains(Coordinate{Latitude: -37.5, Longitude: 144.5}))
	assert.False(t, b.Contains(Coordinate{Latitude: -36.9, Longitude: 144.5}))
	assert.True(t, BoundsOf(nil).Empty())
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Latitude: -37.8183, Longitude: 144.9671}.Valid())
	assert.False(t, Coordinate{Latitude: -91, Longitude: 0}.Valid())
	assert.False(t, Coordinate{Latitude: 0, Longitude: 181}.Valid())
}
