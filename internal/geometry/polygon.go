// Package geometry implements the 2D and 3D geometry behind plate extraction:
// plane fitting, projection to an outline, and the polygon predicates used
// by hole validation and nesting.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/platenest/internal/model"
)

// areaEpsilon is the smallest ring area (mm²) treated as non-degenerate.
const areaEpsilon = 1e-6

// crossProduct returns the z component of (a-o) x (b-o).
func crossProduct(o, a, b model.Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func distSq(a, b model.Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// ConvexHull computes the convex hull with Andrew's monotone chain.
// The result winds counter-clockwise and omits collinear points.
// Fewer than three distinct non-collinear points yield a ring of length < 3.
func ConvexHull(points []model.Point2D) model.Ring {
	pts := make([]model.Point2D, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Drop exact duplicates.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return model.Ring(pts)
	}

	hull := make(model.Ring, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MergePoints removes points that fall within tol of an earlier point,
// keeping first occurrences in order. Points are bucketed on a grid of size tol.
func MergePoints(points []model.Point2D, tol float64) []model.Point2D {
	if tol <= 0 {
		tol = 1e-9
	}
	type key struct{ x, y int64 }
	seen := make(map[key]bool, len(points))
	out := make([]model.Point2D, 0, len(points))
	for _, p := range points {
		k := key{int64(math.Round(p.X / tol)), int64(math.Round(p.Y / tol))}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

// RemoveCollinear drops vertices that lie on the line through their neighbours
// and consecutive duplicates.
func RemoveCollinear(r model.Ring, eps float64) model.Ring {
	out := make(model.Ring, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	changed := true
	for changed && len(out) >= 3 {
		changed = false
		for i := 0; i < len(out); i++ {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			seg := math.Sqrt(distSq(prev, next))
			if seg == 0 || math.Abs(crossProduct(prev, out[i], next))/seg <= eps {
				out = append(out[:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}

func onSegment(p, a, b model.Point2D) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SegmentsIntersect reports whether segments ab and cd share at least one point.
func SegmentsIntersect(a, b, c, d model.Point2D) bool {
	d1 := sign(crossProduct(c, d, a))
	d2 := sign(crossProduct(c, d, b))
	d3 := sign(crossProduct(a, b, c))
	d4 := sign(crossProduct(a, b, d))

	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	switch {
	case d1 == 0 && onSegment(a, c, d):
		return true
	case d2 == 0 && onSegment(b, c, d):
		return true
	case d3 == 0 && onSegment(c, a, b):
		return true
	case d4 == 0 && onSegment(d, a, b):
		return true
	}
	return false
}

// IsSimple reports whether the ring has at least three vertices, non-zero
// length edges and no two non-adjacent edges touching.
func IsSimple(r model.Ring) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		if r[i] == r[(i+1)%n] {
			return false
		}
	}
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if SegmentsIntersect(a, b, r[j], r[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

// PointInRing reports whether p is inside r. Points on the boundary count as inside.
func PointInRing(p model.Point2D, r model.Ring) bool {
	if len(r) < 3 {
		return false
	}
	return planar.RingContains(r.Orb(), orb.Point{p.X, p.Y})
}

// DistanceToSegment returns the shortest distance from p to segment ab.
func DistanceToSegment(p, a, b model.Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Sqrt(distSq(p, a))
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	proj := model.Point2D{X: a.X + t*dx, Y: a.Y + t*dy}
	return math.Sqrt(distSq(p, proj))
}

// DistanceToRing returns the shortest distance from p to the ring boundary.
func DistanceToRing(p model.Point2D, r model.Ring) float64 {
	best := math.Inf(1)
	n := len(r)
	for i := 0; i < n; i++ {
		best = math.Min(best, DistanceToSegment(p, r[i], r[(i+1)%n]))
	}
	return best
}

func edgesCross(a, b model.Ring) bool {
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if SegmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

// RingDistance returns the shortest distance between the boundaries of a and b,
// or zero when they touch or cross.
func RingDistance(a, b model.Ring) float64 {
	if edgesCross(a, b) {
		return 0
	}
	best := math.Inf(1)
	for _, p := range a {
		best = math.Min(best, DistanceToRing(p, b))
	}
	for _, p := range b {
		best = math.Min(best, DistanceToRing(p, a))
	}
	return best
}

// RingInsideRing reports whether inner lies strictly inside outer with every
// vertex more than tol from the outer boundary.
func RingInsideRing(inner, outer model.Ring, tol float64) bool {
	if len(inner) < 3 || len(outer) < 3 {
		return false
	}
	if edgesCross(inner, outer) {
		return false
	}
	for _, p := range inner {
		if !PointInRing(p, outer) || DistanceToRing(p, outer) <= tol {
			return false
		}
	}
	return true
}

// penetration returns how deep the vertices of a reach into b, or zero.
func penetration(a, b model.Ring) float64 {
	var depth float64
	for _, p := range a {
		if PointInRing(p, b) {
			depth = math.Max(depth, DistanceToRing(p, b))
		}
	}
	return depth
}

// RingsOverlap reports whether a and b overlap by more than tol. Depth is
// measured at vertices; with tol zero any crossing or containment counts.
func RingsOverlap(a, b model.Ring, tol float64) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if tol <= 0 && edgesCross(a, b) {
		return true
	}
	return penetration(a, b) > tol || penetration(b, a) > tol
}

// RingsWithin reports whether a and b are closer than gap, including when
// they cross or one contains the other.
func RingsWithin(a, b model.Ring, gap float64) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if edgesCross(a, b) {
		return true
	}
	if PointInRing(a[0], b) || PointInRing(b[0], a) {
		return true
	}
	return RingDistance(a, b) < gap-1e-9
}

// Circle returns a counter-clockwise regular polygon with n vertices on a
// circle of radius r around center.
func Circle(center model.Point2D, r float64, n int) model.Ring {
	ring := make(model.Ring, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		ring[i] = model.Point2D{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return ring
}

// RotateRing rotates every point by angle radians around the origin.
func RotateRing(r model.Ring, angle float64) model.Ring {
	if angle == 0 {
		return r.Clone()
	}
	sin, cos := math.Sincos(angle)
	out := make(model.Ring, len(r))
	for i, p := range r {
		out[i] = model.Point2D{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	}
	return out
}

// MinAreaRectAngle returns the direction, in [0, π/2), of the minimum-area
// rectangle enclosing the convex hull, with the rectangle's width along that
// direction and its height across it. Ties keep the earliest hull edge.
func MinAreaRectAngle(hull model.Ring) (angle, width, height float64) {
	n := len(hull)
	if n < 3 {
		bb := hull.BoundingBox()
		return 0, bb.Width(), bb.Height()
	}
	bestArea := math.Inf(1)
	for i := 0; i < n; i++ {
		a, b := hull[i], hull[(i+1)%n]
		theta := math.Atan2(b.Y-a.Y, b.X-a.X)
		theta = math.Mod(theta, math.Pi/2)
		if theta < 0 {
			theta += math.Pi / 2
		}
		if theta > math.Pi/2-1e-12 {
			theta = 0
		}
		sin, cos := math.Sincos(theta)
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := p.X*cos + p.Y*sin
			v := -p.X*sin + p.Y*cos
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		w, h := maxU-minU, maxV-minV
		if area := w * h; area < bestArea-areaEpsilon {
			bestArea = area
			angle, width, height = theta, w, h
		}
	}
	return angle, width, height
}

// Orient returns r wound counter-clockwise when ccw is true, clockwise otherwise.
func Orient(r model.Ring, ccw bool) model.Ring {
	if r.IsCCW() != ccw {
		return r.Reverse()
	}
	return r
}
