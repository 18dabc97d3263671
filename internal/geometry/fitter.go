package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/platenest/internal/model"
)

// DefaultPlaneEpsilon is the relative variance below which an in-plane axis
// is considered missing.
const DefaultPlaneEpsilon = 1e-9

// FitPlane fits a plane through points by principal component analysis.
// The largest-variance axis becomes U, the second V and the smallest the
// normal. Signs are fixed so the largest component of U and of the normal is
// positive, and V completes a right-handed basis. The origin is the centroid.
//
// Fewer than three points, or a point cloud without two independent
// directions, fails with model.ErrDegenerateInput.
func FitPlane(points []r3.Vec, eps float64) (model.PlaneBasis, error) {
	if len(points) < 3 {
		return model.PlaneBasis{}, fmt.Errorf("fit plane: %d points: %w", len(points), model.ErrDegenerateInput)
	}
	if eps <= 0 {
		eps = DefaultPlaneEpsilon
	}

	var centroid r3.Vec
	data := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
		data.Set(i, 2, p.Z)
		centroid = r3.Add(centroid, p)
	}
	centroid = r3.Scale(1/float64(len(points)), centroid)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)

	var es mat.EigenSym
	if ok := es.Factorize(&cov, true); !ok {
		return model.PlaneBasis{}, fmt.Errorf("fit plane: eigen decomposition failed: %w", model.ErrDegenerateInput)
	}
	vals := es.Values(nil) // ascending
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	largest := vals[2]
	if largest <= 0 || vals[1] <= eps*math.Max(largest, 1) {
		return model.PlaneBasis{}, fmt.Errorf("fit plane: variance %g/%g: %w", vals[1], largest, model.ErrDegenerateInput)
	}

	column := func(j int) r3.Vec {
		return r3.Unit(r3.Vec{X: vecs.At(0, j), Y: vecs.At(1, j), Z: vecs.At(2, j)})
	}
	u := positiveDominant(column(2))
	n := positiveDominant(column(0))
	v := r3.Unit(r3.Cross(n, u))

	return model.PlaneBasis{Origin: centroid, U: u, V: v, Normal: n}, nil
}

// positiveDominant flips v so its largest-magnitude component is positive.
func positiveDominant(v r3.Vec) r3.Vec {
	c := v.X
	if math.Abs(v.Y) > math.Abs(c) {
		c = v.Y
	}
	if math.Abs(v.Z) > math.Abs(c) {
		c = v.Z
	}
	if c < 0 {
		return r3.Scale(-1, v)
	}
	return v
}

// NormalExtent returns the range of signed distances of points from the plane.
func NormalExtent(points []r3.Vec, basis model.PlaneBasis) (min, max float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		d := basis.Distance(p)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

// AxisAlignedBounds returns the world bounding box of points.
func AxisAlignedBounds(points []r3.Vec) (min, max r3.Vec) {
	if len(points) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max
}
