package fastener

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// flatPlate returns a 200x200x10 plate lying on z=0..10.
func flatPlate() *model.PlateGeometry {
	pg := &model.PlateGeometry{
		SourceID:  "P1",
		Thickness: 10,
		Basis: model.PlaneBasis{
			Origin: r3.Vec{Z: 5},
			U:      r3.Vec{X: 1},
			V:      r3.Vec{Y: 1},
			Normal: r3.Vec{Z: 1},
		},
		Exterior: model.Ring{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 200}, {X: 0, Y: 200}},
	}
	pg.Recompute()
	return pg
}

func bolt(id string, x, y, z, diameter float64) model.Fastener {
	return model.Fastener{
		SourceID:   id,
		Name:       "Bolt",
		Position:   r3.Vec{X: x, Y: y, Z: z},
		Properties: model.Properties{"NominalDiameter": diameter},
	}
}

func TestMatch_FastenerOutsideThicknessWithinTolerance(t *testing.T) {
	plate := flatPlate()
	// 30 mm above the top face of the plate.
	index := NewIndex([]model.Fastener{bolt("B1", 100, 100, 40, 16)})
	m := NewMatcher(model.DefaultSettings(), zerolog.Nop())

	report := m.Match(context.Background(), plate, index)

	require.Len(t, report.Added, 1)
	assert.Equal(t, 9.0, report.Added[0].Radius)
	assert.Equal(t, SourceProperty, report.Added[0].Source)
	require.Len(t, plate.Holes, 1)

	hole := plate.Holes[0]
	assert.Equal(t, "B1", hole.FastenerID)
	assert.Len(t, hole.Ring, 16)
	assert.False(t, hole.Ring.IsCCW(), "holes wind clockwise")
	for _, p := range hole.Ring {
		assert.InDelta(t, 9.0, math.Hypot(p.X-100, p.Y-100), 1e-9)
	}
	assert.InDelta(t, 40000-math.Abs(hole.Ring.Area()), plate.Area, 1e-9)
}

func TestMatch_HoleOnlyFastenerStillCutsAHole(t *testing.T) {
	plate := flatPlate()
	f := bolt("A1", 50, 50, 5, 20)
	f.Properties["Bolt count"] = 0.0
	index := NewIndex([]model.Fastener{f, bolt("B2", 150, 150, 5, 16)})

	report := NewMatcher(model.DefaultSettings(), zerolog.Nop()).Match(context.Background(), plate, index)

	require.Len(t, report.Added, 2)
	assert.Equal(t, "A1", report.Added[0].FastenerID)
	assert.True(t, report.Added[0].HoleOnly)
	assert.Equal(t, 11.0, report.Added[0].Radius)
	assert.False(t, report.Added[1].HoleOnly)
}

func TestMatch_Idempotent(t *testing.T) {
	plate := flatPlate()
	index := NewIndex([]model.Fastener{bolt("B1", 100, 100, 5, 16)})
	m := NewMatcher(model.DefaultSettings(), zerolog.Nop())

	m.Match(context.Background(), plate, index)
	area := plate.Area
	report := m.Match(context.Background(), plate, index)

	assert.Empty(t, report.Added)
	assert.Equal(t, []string{"B1"}, report.Skipped)
	assert.Len(t, plate.Holes, 1)
	assert.Equal(t, area, plate.Area)
}

func TestMatch_IgnoresDistantFasteners(t *testing.T) {
	plate := flatPlate()
	index := NewIndex([]model.Fastener{
		bolt("far-x", 400, 100, 5, 16),
		bolt("far-z", 100, 100, 100, 16),
	})
	m := NewMatcher(model.DefaultSettings(), zerolog.Nop())

	report := m.Match(context.Background(), plate, index)

	assert.Empty(t, report.Added)
	assert.Empty(t, report.Rejected)
	assert.Empty(t, plate.Holes)
	assert.Equal(t, 40000.0, plate.Area)
}

func TestMatch_RejectsHolesCrossingTheOutline(t *testing.T) {
	plate := flatPlate()
	var buf bytes.Buffer
	index := NewIndex([]model.Fastener{
		bolt("edge", 5, 100, 5, 16),
		bolt("outside", 230, 100, 5, 16),
	})
	m := NewMatcher(model.DefaultSettings(), zerolog.New(&buf))

	report := m.Match(context.Background(), plate, index)

	require.Len(t, report.Rejected, 2)
	for _, r := range report.Rejected {
		assert.True(t, errors.Is(r.Err, model.ErrInvalidHole))
	}
	assert.Empty(t, plate.Holes)
	assert.Contains(t, buf.String(), "fastener hole rejected")
	assert.Contains(t, buf.String(), `"fastener":"edge"`)
}

func TestMatch_RejectsOverlappingHoles(t *testing.T) {
	plate := flatPlate()
	index := NewIndex([]model.Fastener{
		bolt("B1", 100, 100, 5, 16),
		bolt("B2", 105, 100, 5, 16),
		bolt("B3", 150, 100, 5, 16),
	})
	m := NewMatcher(model.DefaultSettings(), zerolog.Nop())

	report := m.Match(context.Background(), plate, index)

	require.Len(t, report.Added, 2)
	assert.Equal(t, "B1", report.Added[0].FastenerID)
	assert.Equal(t, "B3", report.Added[1].FastenerID)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "B2", report.Rejected[0].FastenerID)

	for i, a := range plate.Holes {
		assert.True(t, geometry.RingInsideRing(a.Ring, plate.Exterior, 0))
		for _, b := range plate.Holes[i+1:] {
			assert.False(t, geometry.RingsOverlap(a.Ring, b.Ring, 0.05))
		}
	}
}

func TestMatch_SkipsApproximatePlates(t *testing.T) {
	plate := flatPlate()
	plate.Approximate = true
	index := NewIndex([]model.Fastener{bolt("B1", 100, 100, 5, 16)})

	report := NewMatcher(model.DefaultSettings(), zerolog.Nop()).Match(context.Background(), plate, index)

	assert.Empty(t, report.Added)
	assert.Empty(t, plate.Holes)
}

func TestIndex_QuerySortedByID(t *testing.T) {
	index := NewIndex([]model.Fastener{
		bolt("c", 10, 10, 0, 16),
		bolt("a", 20, 20, 0, 16),
		bolt("b", 500, 500, 0, 16),
	})
	assert.Equal(t, 3, index.Len())

	hits := index.Query(r3.Vec{X: 0, Y: 0, Z: -1}, r3.Vec{X: 100, Y: 100, Z: 1})
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].SourceID)
	assert.Equal(t, "c", hits[1].SourceID)

	var empty *Index
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Query(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}))
}
