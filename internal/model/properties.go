package model

import (
	"math"
	"strconv"
	"strings"
)

// Properties is the property bag attached to a model element, flattened
// across property sets. Values are numbers or strings as delivered by the
// model parser; unit strings are resolved upstream.
type Properties map[string]any

// Float returns the value under key as a number. Numeric strings are
// accepted; anything else (including "16mm") is reported as missing.
func (p Properties) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String returns the value under key as a trimmed string.
func (p Properties) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

// Accessor reads one named numeric value from a property bag.
type Accessor struct {
	Name string
	Read func(Properties) (float64, bool)
}

// Key returns an accessor for a single positive numeric property.
func Key(name string) Accessor {
	return Accessor{
		Name: name,
		Read: func(p Properties) (float64, bool) {
			v, ok := p.Float(name)
			if !ok || v <= 0 {
				return 0, false
			}
			return v, true
		},
	}
}

// FirstFloat walks the accessors in order and returns the first value found
// together with the name of the accessor that produced it.
func FirstFloat(p Properties, accessors ...Accessor) (float64, string, bool) {
	for _, a := range accessors {
		if v, ok := a.Read(p); ok {
			return v, a.Name, true
		}
	}
	return 0, "", false
}

// thicknessScale is the inverse of the 0.01 mm grid measured thicknesses
// snap to.
const thicknessScale = 100

// NormalizeThickness snaps a measured thickness to 0.01 mm so that float
// noise from plane fitting does not split a thickness group.
func NormalizeThickness(t float64) float64 {
	return math.Round(t*thicknessScale) / thicknessScale
}

// ThicknessAccessors is the ordered fallback chain for plate thickness.
var ThicknessAccessors = []Accessor{
	Key("Thickness"),
	Key("NominalThickness"),
	Key("Depth"),
}

// DiameterAccessors is the ordered fallback chain for a fastener's
// nominal diameter.
var DiameterAccessors = []Accessor{
	Key("NominalDiameter"),
	Key("Diameter"),
	Key("Bolt size"),
	Key("Size"),
}

// LabelKeys lists the text fields searched for a size designator, in order.
var LabelKeys = []string{"Bolt Name", "Description"}
