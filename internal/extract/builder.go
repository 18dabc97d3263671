package extract

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/fastener"
	"github.com/piwi3910/platenest/internal/geometry"
	"github.com/piwi3910/platenest/internal/model"
)

// Request carries everything one extraction run needs. Nothing in it is
// shared with other runs except the read-only fastener index.
type Request struct {
	Settings  model.Settings
	Fasteners *fastener.Index
	Logger    zerolog.Logger
	Cache     *Cache // optional
}

// Builder extracts plate geometry from elements.
type Builder struct {
	req     Request
	matcher *fastener.Matcher
}

// NewBuilder creates a Builder for req.
func NewBuilder(req Request) *Builder {
	return &Builder{
		req:     req,
		matcher: fastener.NewMatcher(req.Settings, req.Logger),
	}
}

// Extract builds the geometry of one element. It never fails: when the plane
// fit or projection fails, an approximate bounding rectangle is returned with
// Approximate set and the cause recorded.
func (b *Builder) Extract(ctx context.Context, el Element) *model.PlateGeometry {
	if pg, ok := b.req.Cache.Get(el.SourceID); ok {
		return pg
	}

	pg, err := b.exact(el)
	if err != nil {
		b.req.Logger.Warn().
			Str("plate", el.SourceID).
			Err(err).
			Msg("using approximate plate geometry")
		pg = b.approximate(el, err)
	} else {
		report := b.matcher.Match(ctx, pg, b.req.Fasteners)
		b.req.Logger.Debug().
			Str("plate", el.SourceID).
			Int("holes", len(pg.Holes)).
			Int("fastener_holes", len(report.Added)).
			Int("rejected", len(report.Rejected)).
			Float64("area", pg.Area).
			Msg("plate extracted")
	}

	// A match cut short by cancellation may lack holes; keep it out of the cache.
	if ctx.Err() == nil {
		b.req.Cache.Put(pg)
	}
	return pg
}

// ExtractAll extracts elements concurrently, at most Settings.Concurrency at
// a time. Results are in input order. The only error is cancellation: the
// plates finished before ctx ended are still returned, and the slots of
// elements that were not finished are nil. Pending lists those elements.
func (b *Builder) ExtractAll(ctx context.Context, elements []Element) ([]*model.PlateGeometry, error) {
	out := make([]*model.PlateGeometry, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.req.Settings.Concurrency, 1))
	for i, el := range elements {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pg := b.Extract(gctx, el)
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = pg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("extraction cancelled: %w", err)
	}
	return out, nil
}

// Pending returns an unplaced entry for every element whose slot in plates
// is nil. Each entry carries the element id, name and property thickness
// with cause as the reason.
func Pending(elements []Element, plates []*model.PlateGeometry, cause error) []model.UnplacedPlate {
	var out []model.UnplacedPlate
	for i, el := range elements {
		if i < len(plates) && plates[i] != nil {
			continue
		}
		t, _ := propertyThickness(el)
		out = append(out, model.UnplacedPlate{
			Plate:  &model.PlateGeometry{SourceID: el.SourceID, Name: el.Name, Thickness: t},
			Reason: fmt.Errorf("not extracted: %w", cause),
		})
	}
	return out
}

// Finished returns the non-nil plates of an ExtractAll result.
func Finished(plates []*model.PlateGeometry) []*model.PlateGeometry {
	out := make([]*model.PlateGeometry, 0, len(plates))
	for _, pg := range plates {
		if pg != nil {
			out = append(out, pg)
		}
	}
	return out
}

// exact runs plane fit and projection.
func (b *Builder) exact(el Element) (*model.PlateGeometry, error) {
	s := b.req.Settings
	for i, v := range el.Vertices {
		if !finite(v) {
			return nil, fmt.Errorf("vertex %d is not finite: %w", i, model.ErrDegenerateInput)
		}
	}
	basis, err := geometry.FitPlane(el.Vertices, geometry.DefaultPlaneEpsilon)
	if err != nil {
		return nil, err
	}
	proj, err := geometry.Project(el.Vertices, el.Faces, basis, geometry.DefaultProjectOptions(s))
	if err != nil {
		return nil, err
	}

	// Put the origin on the mid-plane so the fastener reach is symmetric.
	lo, hi := geometry.NormalExtent(el.Vertices, proj.Basis)
	proj.Basis.Origin = r3.Add(proj.Basis.Origin, r3.Scale((lo+hi)/2, proj.Basis.Normal))

	thickness, ok := propertyThickness(el)
	if !ok {
		thickness = model.NormalizeThickness(hi - lo)
	}

	pg := &model.PlateGeometry{
		SourceID:  el.SourceID,
		Name:      el.Name,
		Thickness: thickness,
		Basis:     proj.Basis,
		Exterior:  proj.Exterior,
	}
	for _, h := range proj.Holes {
		pg.Holes = append(pg.Holes, model.Hole{Ring: h})
	}
	pg.Recompute()
	if !(pg.Area > 0) {
		return nil, fmt.Errorf("net area %g: %w", pg.Area, model.ErrZeroArea)
	}
	return pg, nil
}

// approximate builds the bounding-rectangle substitute for el. The smallest
// world extent is taken as the thickness direction and the rectangle spans
// the other two axes, long side along U. Non-finite vertices are ignored;
// with none left the Width and Length properties size the rectangle.
func (b *Builder) approximate(el Element, cause error) *model.PlateGeometry {
	s := b.req.Settings
	minExt := s.MinFallbackExtent
	if minExt <= 0 {
		minExt = 1
	}

	pg := &model.PlateGeometry{
		SourceID:          el.SourceID,
		Name:              el.Name,
		Approximate:       true,
		ApproximateReason: cause.Error(),
	}

	var verts []r3.Vec
	for _, vx := range el.Vertices {
		if finite(vx) {
			verts = append(verts, vx)
		}
	}

	var center, u, v, n r3.Vec
	var w, h, depth float64
	if len(verts) == 0 {
		w, _ = el.Properties.Float("Width")
		h, _ = el.Properties.Float("Length")
		u, v, n = r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
	} else {
		lo, hi := geometry.AxisAlignedBounds(verts)
		center = r3.Scale(0.5, r3.Add(lo, hi))
		ext := r3.Sub(hi, lo)
		switch {
		case ext.X <= ext.Y && ext.X <= ext.Z:
			u, v, n = r3.Vec{Y: 1}, r3.Vec{Z: 1}, r3.Vec{X: 1}
			w, h, depth = ext.Y, ext.Z, ext.X
		case ext.Y <= ext.Z:
			u, v, n = r3.Vec{Z: 1}, r3.Vec{X: 1}, r3.Vec{Y: 1}
			w, h, depth = ext.Z, ext.X, ext.Y
		default:
			u, v, n = r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}
			w, h, depth = ext.X, ext.Y, ext.Z
		}
	}
	w, h = math.Max(w, minExt), math.Max(h, minExt)
	if h > w {
		// Quarter turn in-plane keeps U x V = N.
		u, v = v, r3.Scale(-1, u)
		w, h = h, w
	}

	thickness, ok := propertyThickness(el)
	if !ok {
		thickness = model.NormalizeThickness(depth)
	}

	pg.Thickness = thickness
	pg.Basis = model.PlaneBasis{
		Origin: r3.Sub(center, r3.Add(r3.Scale(w/2, u), r3.Scale(h/2, v))),
		U:      u,
		V:      v,
		Normal: n,
	}
	pg.Exterior = model.Ring{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	pg.Recompute()
	return pg
}

func finite(v r3.Vec) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func propertyThickness(el Element) (float64, bool) {
	t, _, ok := model.FirstFloat(el.Properties, model.ThicknessAccessors...)
	return t, ok
}
