package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/model"
)

// faceAlignment is the minimum |cos| between a face normal and the plate
// normal for the face to count as part of a plate surface.
const faceAlignment = 0.9

// errTraceFailed means the face list did not produce a usable boundary.
var errTraceFailed = errors.New("boundary trace failed")

// ProjectOptions controls Project.
type ProjectOptions struct {
	MergeTolerance float64
	// Align rotates the in-plane axes onto the minimum-area bounding rectangle
	// (long side along U) and moves the bounding-box minimum to (0,0).
	Align bool
}

// DefaultProjectOptions returns the options used by extraction.
func DefaultProjectOptions(s model.Settings) ProjectOptions {
	return ProjectOptions{MergeTolerance: s.MergeTolerance, Align: true}
}

// Projection is the 2D outline of a plate in its plane.
type Projection struct {
	Basis    model.PlaneBasis
	Exterior model.Ring   // counter-clockwise
	Holes    []model.Ring // clockwise, traced from the mesh
	Traced   bool         // false when the convex hull was used
}

// Project maps vertices into the plane of basis and computes the outline.
// With faces, the boundary edges of the faces lying in the plate plane are
// traced so concave outlines and through-holes survive. Without faces, or
// when tracing does not yield a simple ring, the convex hull is used.
func Project(vertices []r3.Vec, faces [][3]int, basis model.PlaneBasis, opts ProjectOptions) (Projection, error) {
	pts := make([]model.Point2D, len(vertices))
	for i, v := range vertices {
		pts[i] = basis.Project(v)
	}

	proj := Projection{Basis: basis}
	if len(faces) > 0 {
		ext, holes, err := traceBoundary(vertices, pts, faces, basis, opts.MergeTolerance)
		if err == nil {
			proj.Exterior, proj.Holes, proj.Traced = ext, holes, true
		}
	}
	if !proj.Traced {
		hull := ConvexHull(MergePoints(pts, opts.MergeTolerance))
		if len(hull) < 3 {
			return Projection{}, fmt.Errorf("project: %d distinct points: %w", len(hull), model.ErrZeroArea)
		}
		proj.Exterior = hull
	}

	if a := math.Abs(proj.Exterior.Area()); a <= areaEpsilon {
		return Projection{}, fmt.Errorf("project: area %g: %w", a, model.ErrZeroArea)
	}
	proj.Exterior = Orient(proj.Exterior, true)
	for i, h := range proj.Holes {
		proj.Holes[i] = Orient(h, false)
	}

	if opts.Align {
		proj = align(proj)
	}
	return proj, nil
}

// align rotates the projection onto its minimum-area rectangle and translates
// the bounding-box minimum to the origin, updating the basis to match.
func align(p Projection) Projection {
	theta, w, h := MinAreaRectAngle(ConvexHull(p.Exterior))
	if h > w+1e-9 {
		theta += math.Pi / 2
	}

	ext := RotateRing(p.Exterior, -theta)
	holes := make([]model.Ring, len(p.Holes))
	for i, hole := range p.Holes {
		holes[i] = RotateRing(hole, -theta)
	}

	sin, cos := math.Sincos(theta)
	b := p.Basis
	u := r3.Add(r3.Scale(cos, b.U), r3.Scale(sin, b.V))
	v := r3.Add(r3.Scale(-sin, b.U), r3.Scale(cos, b.V))
	basis := model.PlaneBasis{Origin: b.Origin, U: u, V: v, Normal: b.Normal}

	bb := ext.BoundingBox()
	basis.Origin = basis.Lift(bb.Min)
	ext = ext.Translate(-bb.Min.X, -bb.Min.Y)
	for i := range holes {
		holes[i] = holes[i].Translate(-bb.Min.X, -bb.Min.Y)
	}

	return Projection{Basis: basis, Exterior: ext, Holes: holes, Traced: p.Traced}
}

type directedEdge struct{ from, to int }

// traceBoundary chains the edges used by exactly one plate-surface face into
// loops. The largest loop is the exterior, loops inside it are holes.
func traceBoundary(vertices []r3.Vec, pts []model.Point2D, faces [][3]int, basis model.PlaneBasis, tol float64) (model.Ring, []model.Ring, error) {
	surface := surfaceFaces(vertices, faces, basis.Normal, 1)
	if len(surface) == 0 {
		surface = surfaceFaces(vertices, faces, basis.Normal, -1)
	}
	if len(surface) == 0 {
		return nil, nil, fmt.Errorf("no faces parallel to the plane: %w", errTraceFailed)
	}

	// Weld vertices by projected position so split meshes share indices.
	if tol <= 0 {
		tol = 1e-9
	}
	type key struct{ x, y int64 }
	welded := make(map[key]int)
	var coords []model.Point2D
	weld := func(i int) int {
		p := pts[i]
		k := key{int64(math.Round(p.X / tol)), int64(math.Round(p.Y / tol))}
		if id, ok := welded[k]; ok {
			return id
		}
		id := len(coords)
		welded[k] = id
		coords = append(coords, p)
		return id
	}

	type undirected struct{ a, b int }
	counts := make(map[undirected]int)
	var edges []directedEdge
	for _, f := range surface {
		ids := [3]int{weld(f[0]), weld(f[1]), weld(f[2])}
		for k := 0; k < 3; k++ {
			a, b := ids[k], ids[(k+1)%3]
			if a == b {
				continue
			}
			u := undirected{a, b}
			if a > b {
				u = undirected{b, a}
			}
			counts[u]++
			edges = append(edges, directedEdge{a, b})
		}
	}

	var boundary []directedEdge
	for _, e := range edges {
		u := undirected{e.from, e.to}
		if e.from > e.to {
			u = undirected{e.to, e.from}
		}
		if counts[u] == 1 {
			boundary = append(boundary, e)
		}
	}
	if len(boundary) < 3 {
		return nil, nil, fmt.Errorf("%d boundary edges: %w", len(boundary), errTraceFailed)
	}

	loops, err := chainLoops(boundary, coords)
	if err != nil {
		return nil, nil, err
	}

	var rings []model.Ring
	for _, l := range loops {
		l = RemoveCollinear(l, 1e-9)
		if len(l) >= 3 && math.Abs(l.Area()) > areaEpsilon {
			rings = append(rings, l)
		}
	}
	if len(rings) == 0 {
		return nil, nil, fmt.Errorf("no closed loop with area: %w", errTraceFailed)
	}

	outer := 0
	for i, r := range rings {
		if math.Abs(r.Area()) > math.Abs(rings[outer].Area()) {
			outer = i
		}
	}
	exterior := Orient(rings[outer], true)
	if !IsSimple(exterior) {
		return nil, nil, fmt.Errorf("exterior is not simple: %w", errTraceFailed)
	}

	var holes []model.Ring
	for i, r := range rings {
		if i == outer {
			continue
		}
		h := Orient(r, false)
		if IsSimple(h) && RingInsideRing(h, exterior, 0) {
			holes = append(holes, h)
		}
	}
	return exterior, holes, nil
}

// surfaceFaces returns the faces whose normal points along side*normal.
func surfaceFaces(vertices []r3.Vec, faces [][3]int, normal r3.Vec, side float64) [][3]int {
	var out [][3]int
	for _, f := range faces {
		if f[0] < 0 || f[1] < 0 || f[2] < 0 || f[0] >= len(vertices) || f[1] >= len(vertices) || f[2] >= len(vertices) {
			continue
		}
		a, b, c := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		l := r3.Norm(n)
		if l == 0 {
			continue
		}
		if side*r3.Dot(r3.Scale(1/l, n), normal) > faceAlignment {
			out = append(out, f)
		}
	}
	return out
}

// chainLoops links directed boundary edges head to tail into closed loops.
func chainLoops(edges []directedEdge, coords []model.Point2D) ([]model.Ring, error) {
	outgoing := make(map[int][]int)
	for i, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], i)
	}
	used := make([]bool, len(edges))

	next := func(v int) (int, bool) {
		for _, i := range outgoing[v] {
			if !used[i] {
				return i, true
			}
		}
		return 0, false
	}

	var loops []model.Ring
	for i, e := range edges {
		if used[i] {
			continue
		}
		used[i] = true
		loop := model.Ring{coords[e.from]}
		cur := e.to
		for steps := 0; cur != e.from; steps++ {
			if steps > len(edges) {
				return nil, fmt.Errorf("runaway loop: %w", errTraceFailed)
			}
			j, ok := next(cur)
			if !ok {
				return nil, fmt.Errorf("open boundary at vertex %d: %w", cur, errTraceFailed)
			}
			used[j] = true
			loop = append(loop, coords[cur])
			cur = edges[j].to
		}
		loops = append(loops, loop)
	}
	return loops, nil
}
