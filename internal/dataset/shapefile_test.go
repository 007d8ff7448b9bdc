package dataset

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelworks/frontage-api/internal/geomops"
)

func TestMultiPolygon(t *testing.T) {
	p := &shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 0},
		},
	}

	mp := multiPolygon(p)
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.InDelta(t, 10000.0, geomops.Area(mp), 1e-9)
}

func TestMultiPolygon_UnclosedRingIsClosed(t *testing.T) {
	p := &shp.Polygon{
		NumParts:  1,
		NumPoints: 4,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0},
		},
	}

	mp := multiPolygon(p)
	require.NotNil(t, mp)
	assert.InDelta(t, 100.0, geomops.Area(mp), 1e-9)
	assert.InDelta(t, 40.0, geomops.Length(geomops.Boundary(mp)), 1e-9)
}

func TestMultiPolygon_MultiPart(t *testing.T) {
	p := &shp.Polygon{
		NumParts:  2,
		NumPoints: 10,
		Parts:     []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0},
			{X: 20, Y: 0}, {X: 20, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 0}, {X: 20, Y: 0},
		},
	}

	mp := multiPolygon(p)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.InDelta(t, 200.0, geomops.Area(mp), 1e-9)
}

func TestMultiPolygon_Degenerate(t *testing.T) {
	assert.Nil(t, multiPolygon(nil))
	assert.Nil(t, multiPolygon(&shp.Polygon{}))
	assert.Nil(t, multiPolygon(&shp.Polygon{
		NumParts:  1,
		NumPoints: 2,
		Parts:     []int32{0},
		Points:    []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}))
}

func TestMultiLineString(t *testing.T) {
	pl := &shp.PolyLine{
		NumParts:  2,
		NumPoints: 5,
		Parts:     []int32{0, 3},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
			{X: 50, Y: 0}, {X: 60, Y: 0},
		},
	}

	mls := multiLineString(pl)
	require.NotNil(t, mls)
	assert.Equal(t, 2, mls.NumLineStrings())
	assert.InDelta(t, 30.0, geomops.Length(mls), 1e-9)
}

func TestMultiLineString_Degenerate(t *testing.T) {
	assert.Nil(t, multiLineString(nil))
	assert.Nil(t, multiLineString(&shp.PolyLine{}))
	assert.Nil(t, multiLineString(&shp.PolyLine{
		NumParts:  1,
		NumPoints: 1,
		Parts:     []int32{0},
		Points:    []shp.Point{{X: 0, Y: 0}},
	}))
}

func TestCloseRing(t *testing.T) {
	closed := []float64{0, 0, 1, 0, 1, 1, 0, 0}
	assert.Equal(t, closed, closeRing(closed))

	open := []float64{0, 0, 1, 0, 1, 1}
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1, 0, 0}, closeRing(open))
}
