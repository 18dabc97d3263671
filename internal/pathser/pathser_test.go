package pathser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

func plateWithHoles() *model.PlateGeometry {
	pg := &model.PlateGeometry{
		SourceID:  "PL-1",
		Thickness: 12,
		Exterior: model.Ring{
			{X: 0, Y: 0}, {X: 300.5, Y: 0}, {X: 300.5, Y: 200}, {X: 0, Y: 200},
		},
		Holes: []model.Hole{
			{Ring: geometry.Circle(model.Point2D{X: 50, Y: 50}, 10, 16).Reverse(), FastenerID: "B1"},
			{Ring: model.Ring{{X: 200, Y: 100}, {X: 200, Y: 150}, {X: 1.0 / 3 * 750, Y: 150}, {X: 250, Y: 100}}},
		},
	}
	pg.Recompute()
	return pg
}

func TestSerialize_Layout(t *testing.T) {
	pg := plateWithHoles()

	cmds := Serialize(pg)

	require.Len(t, cmds, (4+1)+(16+1)+(4+1))
	assert.Equal(t, Command{Op: MoveTo, X: 0, Y: 0}, cmds[0])
	assert.Equal(t, LineTo, cmds[1].Op)
	assert.Equal(t, Close, cmds[4].Op)
	assert.Equal(t, MoveTo, cmds[5].Op)
	assert.Equal(t, Close, cmds[len(cmds)-1].Op)
}

func TestRings_RoundTrip(t *testing.T) {
	pg := plateWithHoles()

	rings, err := Rings(Serialize(pg))

	require.NoError(t, err)
	require.Len(t, rings, 3)
	assert.Equal(t, pg.Exterior, rings[0])
	assert.Equal(t, pg.Holes[0].Ring, rings[1])
	assert.Equal(t, pg.Holes[1].Ring, rings[2])
	assert.True(t, rings[0].IsCCW())
	assert.False(t, rings[1].IsCCW())
	assert.False(t, rings[2].IsCCW())
}

func TestSVG_RoundTripIsLossless(t *testing.T) {
	pg := plateWithHoles()
	cmds := Serialize(pg)

	parsed, err := ParseSVG(SVG(cmds))

	require.NoError(t, err)
	assert.Equal(t, cmds, parsed)

	rebuilt, err := Plate(parsed, *pg)
	require.NoError(t, err)
	assert.Equal(t, pg.Exterior, rebuilt.Exterior)
	assert.Equal(t, pg.Holes, rebuilt.Holes)
	assert.Equal(t, pg.Area, rebuilt.Area)
	assert.Equal(t, pg.BoundingBox, rebuilt.BoundingBox)
}

func TestSVG_Format(t *testing.T) {
	cmds := SerializeRings(model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 2.5}}, nil)

	assert.Equal(t, "M0 0 L10 0 L10 2.5 Z", SVG(cmds))
	assert.Equal(t, `<path d="M0 0 L10 0 L10 2.5 Z" fill="#ccc" fill-rule="evenodd"/>`, PathElement(cmds, "#ccc"))
}

func TestSerializePlacement_Translates(t *testing.T) {
	pg := plateWithHoles()
	p := model.Placement{Plate: pg, X: 100, Y: 40}

	rings, err := Rings(SerializePlacement(p))

	require.NoError(t, err)
	require.Len(t, rings, 3)
	assert.Equal(t, model.Point2D{X: 100, Y: 40}, rings[0][0])
	assert.InDelta(t, pg.Holes[0].Ring[0].X+100, rings[1][0].X, 1e-9)
}

func TestSerializeRings_SkipsDegenerate(t *testing.T) {
	cmds := SerializeRings(model.Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, []model.Ring{{{X: 0, Y: 0}}})

	assert.Len(t, cmds, 4)
}

func TestParseSVG_ImplicitLineTo(t *testing.T) {
	cmds, err := ParseSVG("M 0,0 10,0 10,10 z M1 1 L2 1 2 2")

	require.NoError(t, err)
	rings, err := Rings(cmds)
	require.NoError(t, err)
	require.Len(t, rings, 2)
	assert.Len(t, rings[0], 3)
	assert.Equal(t, model.Point2D{X: 10, Y: 10}, rings[0][2])
	assert.Equal(t, model.Ring{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}}, rings[1])
}

func TestParseSVG_Errors(t *testing.T) {
	for _, d := range []string{
		"m0 0 l1 0 l1 1 z",
		"0 0 L1 1",
		"M0 0 L1",
		"M0 0 C1 1 2 2 3 3",
	} {
		_, err := ParseSVG(d)
		assert.Error(t, err, d)
	}
}

func TestRings_Errors(t *testing.T) {
	_, err := Rings([]Command{{Op: LineTo, X: 1, Y: 1}})
	assert.Error(t, err)

	_, err = Rings([]Command{{Op: MoveTo}, {Op: LineTo, X: 1}, {Op: Close}})
	assert.ErrorIs(t, err, model.ErrDegenerateInput)

	_, err = Rings([]Command{{Op: Close}})
	assert.Error(t, err)
}
