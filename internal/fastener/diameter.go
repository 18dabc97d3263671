package fastener

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/piwi3910/platenest/internal/model"
)

// DiameterSource names the step of the fallback chain that produced a diameter.
type DiameterSource string

const (
	SourceProperty DiameterSource = "property"
	SourceName     DiameterSource = "name"
	SourceBounds   DiameterSource = "bounds"
	SourceDefault  DiameterSource = "default"
)

// sizePattern matches metric size designators such as M16 or M20x60.
var sizePattern = regexp.MustCompile(`(?i)\bM(\d+(?:\.\d+)?)`)

// ParseSizeDesignator extracts the nominal diameter from a label like "M20x60".
func ParseSizeDesignator(text string) (float64, bool) {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(m[1], 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// ResolveDiameter returns the nominal diameter of f in mm using, in order:
// a diameter property, a size designator in the name or label fields, the
// fastener's own bounding geometry, and finally the configured default.
func ResolveDiameter(f model.Fastener, s model.Settings) (float64, DiameterSource) {
	if d, _, ok := model.FirstFloat(f.Properties, model.DiameterAccessors...); ok {
		return d, SourceProperty
	}

	if d, ok := ParseSizeDesignator(f.Name); ok {
		return d, SourceName
	}
	for _, key := range model.LabelKeys {
		if text, ok := f.Properties.String(key); ok {
			if d, ok := ParseSizeDesignator(text); ok {
				return d, SourceName
			}
		}
	}

	if f.HasBounds() {
		if d, ok := diameterFromBounds(f, s); ok {
			return d, SourceBounds
		}
	}

	return s.DefaultHoleDiameter, SourceDefault
}

// diameterFromBounds reads a diameter from the fastener's bounding box.
// A thin disc (a hole marker) gives its face size, a long bolt gives its
// head width scaled down to the shank, anything else its smallest side.
func diameterFromBounds(f model.Fastener, s model.Settings) (float64, bool) {
	dims := []float64{
		f.BoundsMax.X - f.BoundsMin.X,
		f.BoundsMax.Y - f.BoundsMin.Y,
		f.BoundsMax.Z - f.BoundsMin.Z,
	}
	for i, d := range dims {
		if d < 0 {
			dims[i] = -d
		}
	}
	sort.Float64s(dims)
	a, b, c := dims[0], dims[1], dims[2]
	if b <= 0 {
		return 0, false
	}

	switch {
	case a/b < s.StubThicknessRatio:
		return b, true
	case c/b >= s.BoltAspectRatio:
		return b * s.BoltShankRatio, true
	case a > 0:
		return a, true
	}
	return 0, false
}
