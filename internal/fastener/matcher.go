package fastener

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// AddedHole describes a hole synthesized for a fastener.
type AddedHole struct {
	FastenerID string
	Center     model.Point2D
	Radius     float64
	Source     DiameterSource
	HoleOnly   bool // no bolt fills the hole
}

// Rejection records a fastener whose hole could not be inserted.
type Rejection struct {
	FastenerID string
	Err        error
}

// MatchReport summarises one Match call.
type MatchReport struct {
	Added    []AddedHole
	Rejected []Rejection
	Skipped  []string // fasteners that already had a hole
}

// Matcher turns nearby fasteners into plate holes.
type Matcher struct {
	settings model.Settings
	logger   zerolog.Logger
}

// NewMatcher creates a Matcher. Rejected holes are logged as warnings on logger.
func NewMatcher(settings model.Settings, logger zerolog.Logger) *Matcher {
	return &Matcher{settings: settings, logger: logger}
}

// Match adds a hole to plate for every fastener in index that sits on it.
// A fastener counts as on the plate when its projected position is within
// the bounding box grown by MatchTolerance and its distance from the
// mid-plane is at most half the thickness plus MatchTolerance.
//
// Match is idempotent: fasteners that already own a hole are skipped.
// Approximate plates are left untouched.
func (m *Matcher) Match(ctx context.Context, plate *model.PlateGeometry, index *Index) MatchReport {
	var report MatchReport
	if plate == nil || plate.Approximate || index.Len() == 0 {
		return report
	}

	s := m.settings
	search := plate.BoundingBox.Expand(s.MatchTolerance)
	reach := plate.Thickness/2 + s.MatchTolerance
	min, max := searchBox(plate.Basis, search, reach)

	changed := false
	for _, f := range index.Query(min, max) {
		if ctx.Err() != nil {
			break
		}
		if plate.HasFastenerHole(f.SourceID) {
			report.Skipped = append(report.Skipped, f.SourceID)
			continue
		}

		center := plate.Basis.Project(f.Position)
		if !search.Contains(center) || math.Abs(plate.Basis.Distance(f.Position)) > reach {
			continue
		}

		d, src := ResolveDiameter(*f, s)
		radius := (d + s.HoleClearance) / 2
		ring := geometry.Circle(center, radius, s.CircleSegments).Reverse()

		if err := m.validate(plate, ring); err != nil {
			report.Rejected = append(report.Rejected, Rejection{FastenerID: f.SourceID, Err: err})
			m.logger.Warn().
				Str("plate", plate.SourceID).
				Str("fastener", f.SourceID).
				Float64("radius", radius).
				Err(err).
				Msg("fastener hole rejected")
			continue
		}

		plate.Holes = append(plate.Holes, model.Hole{Ring: ring, FastenerID: f.SourceID})
		report.Added = append(report.Added, AddedHole{
			FastenerID: f.SourceID,
			Center:     center,
			Radius:     radius,
			Source:     src,
			HoleOnly:   f.HoleOnly(),
		})
		changed = true
	}

	if changed {
		plate.Recompute()
	}
	return report
}

// validate checks that ring fits inside the plate without overlapping an
// existing hole.
func (m *Matcher) validate(plate *model.PlateGeometry, ring model.Ring) error {
	if !geometry.RingInsideRing(ring, plate.Exterior, 0) {
		return fmt.Errorf("hole not inside plate outline: %w", model.ErrInvalidHole)
	}
	for _, h := range plate.Holes {
		if geometry.RingsOverlap(ring, h.Ring, m.settings.HoleOverlapTolerance) {
			if h.FastenerID != "" {
				return fmt.Errorf("hole overlaps hole of fastener %s: %w", h.FastenerID, model.ErrInvalidHole)
			}
			return fmt.Errorf("hole overlaps existing plate hole: %w", model.ErrInvalidHole)
		}
	}
	return nil
}

// searchBox returns the world-space box around a plate-plane rectangle
// extruded reach along the normal on both sides.
func searchBox(basis model.PlaneBasis, bb model.BoundingBox, reach float64) (r3.Vec, r3.Vec) {
	corners := []model.Point2D{
		bb.Min,
		{X: bb.Max.X, Y: bb.Min.Y},
		bb.Max,
		{X: bb.Min.X, Y: bb.Max.Y},
	}
	off := r3.Scale(reach, basis.Normal)
	pts := make([]r3.Vec, 0, 8)
	for _, c := range corners {
		w := basis.Lift(c)
		pts = append(pts, r3.Add(w, off), r3.Sub(w, off))
	}
	return geometry.AxisAlignedBounds(pts)
}
