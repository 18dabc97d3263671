// Package pathser converts plate outlines into drawing paths and back.
package pathser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/platenest/internal/model"
)

// FillRule is the SVG fill rule that renders holes as gaps regardless of
// winding.
const FillRule = "evenodd"

// Op is a path drawing operation.
type Op int

const (
	MoveTo Op = iota // start a new ring
	LineTo           // straight segment to X, Y
	Close            // segment back to the ring's first point
)

func (o Op) String() string {
	switch o {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case Close:
		return "Z"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command is one path step. X and Y are unused for Close.
type Command struct {
	Op Op
	X  float64
	Y  float64
}

// Serialize returns the path of a plate: the exterior ring first, then each
// hole in order. Ring winding is kept as stored.
func Serialize(pg *model.PlateGeometry) []Command {
	return SerializeRings(pg.Exterior, pg.HoleRings())
}

// SerializePlacement returns the path of a placed plate in sheet coordinates.
func SerializePlacement(p model.Placement) []Command {
	return SerializeRings(p.Exterior(), p.Holes())
}

// SerializeRings emits MoveTo, one LineTo per further point and Close for the
// exterior and then every hole. Rings with fewer than 3 points are skipped.
func SerializeRings(exterior model.Ring, holes []model.Ring) []Command {
	n := len(exterior) + 1
	for _, h := range holes {
		n += len(h) + 1
	}
	cmds := make([]Command, 0, n)
	cmds = appendRing(cmds, exterior)
	for _, h := range holes {
		cmds = appendRing(cmds, h)
	}
	return cmds
}

func appendRing(cmds []Command, r model.Ring) []Command {
	if len(r) < 3 {
		return cmds
	}
	cmds = append(cmds, Command{Op: MoveTo, X: r[0].X, Y: r[0].Y})
	for _, p := range r[1:] {
		cmds = append(cmds, Command{Op: LineTo, X: p.X, Y: p.Y})
	}
	return append(cmds, Command{Op: Close})
}

// Rings rebuilds the rings from a command sequence. The first ring is the
// exterior, the rest are holes. A ring left open at the end of the sequence
// is closed implicitly.
func Rings(cmds []Command) ([]model.Ring, error) {
	var rings []model.Ring
	var cur model.Ring
	open := false

	flush := func() error {
		if len(cur) < 3 {
			return fmt.Errorf("ring %d has %d points: %w", len(rings), len(cur), model.ErrDegenerateInput)
		}
		rings = append(rings, cur)
		cur = nil
		open = false
		return nil
	}

	for i, c := range cmds {
		switch c.Op {
		case MoveTo:
			if open {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			cur = model.Ring{{X: c.X, Y: c.Y}}
			open = true
		case LineTo:
			if !open {
				return nil, fmt.Errorf("command %d: line-to without move-to", i)
			}
			cur = append(cur, model.Point2D{X: c.X, Y: c.Y})
		case Close:
			if !open {
				return nil, fmt.Errorf("command %d: close without move-to", i)
			}
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("command %d: unknown op %d", i, int(c.Op))
		}
	}
	if open {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	return rings, nil
}

// Plate rebuilds exterior and holes from commands into a copy of template's
// metadata, recomputing area and bounds.
func Plate(cmds []Command, template model.PlateGeometry) (*model.PlateGeometry, error) {
	rings, err := Rings(cmds)
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("empty path: %w", model.ErrDegenerateInput)
	}
	pg := template
	pg.Exterior = rings[0]
	pg.Holes = nil
	for i, r := range rings[1:] {
		h := model.Hole{Ring: r}
		if i < len(template.Holes) {
			h.FastenerID = template.Holes[i].FastenerID
		}
		pg.Holes = append(pg.Holes, h)
	}
	pg.Recompute()
	return &pg, nil
}

// SVG formats commands as SVG path data. Coordinates use the shortest
// representation that parses back to the same float64.
func SVG(cmds []Command) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.Op.String())
		if c.Op == Close {
			continue
		}
		b.WriteString(format(c.X))
		b.WriteByte(' ')
		b.WriteString(format(c.Y))
	}
	return b.String()
}

func format(v float64) string {
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PathElement returns a complete SVG <path> element with the even-odd fill
// rule.
func PathElement(cmds []Command, fill string) string {
	return fmt.Sprintf(`<path d="%s" fill="%s" fill-rule="%s"/>`, SVG(cmds), fill, FillRule)
}
