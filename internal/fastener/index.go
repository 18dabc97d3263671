// Package fastener matches bolts and other fasteners to the plates they pass
// through and turns them into circular holes.
package fastener

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/piwi3910/platenest/internal/model"
)

// pointTolerance is the half-size of the box stored for a fastener position.
const pointTolerance = 1e-6

type spatialFastener struct {
	fastener *model.Fastener
	rect     rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface.
func (s *spatialFastener) Bounds() rtreego.Rect {
	return s.rect
}

// Index is a 3D R-tree over fastener positions. It is built once and only
// read afterwards, so it can be shared between concurrent extractions.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over fasteners. The slice must not be modified
// while the index is in use.
func NewIndex(fasteners []model.Fastener) *Index {
	tree := rtreego.NewTree(3, 8, 32)
	for i := range fasteners {
		f := &fasteners[i]
		p := rtreego.Point{f.Position.X, f.Position.Y, f.Position.Z}
		tree.Insert(&spatialFastener{fastener: f, rect: p.ToRect(pointTolerance)})
	}
	return &Index{tree: tree, size: len(fasteners)}
}

// Len returns the number of indexed fasteners. A nil index is empty.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}

// Query returns the fasteners whose position lies in the box [min, max],
// ordered by SourceID.
func (ix *Index) Query(min, max r3.Vec) []*model.Fastener {
	if ix.Len() == 0 {
		return nil
	}
	lengths := []float64{
		math.Max(max.X-min.X, pointTolerance),
		math.Max(max.Y-min.Y, pointTolerance),
		math.Max(max.Z-min.Z, pointTolerance),
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y, min.Z}, lengths)
	if err != nil {
		return nil
	}

	hits := ix.tree.SearchIntersect(rect)
	out := make([]*model.Fastener, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*spatialFastener).fastener)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SourceID < out[j].SourceID
	})
	return out
}
