package model

import "fmt"

// Mode selects how the packer tests plates for overlap.
type Mode string

const (
	// ModeExact compares real polygons, so concave plates may interlock.
	ModeExact Mode = "exact"
	// ModeBoundingBox compares bounding rectangles only.
	ModeBoundingBox Mode = "bbox"
)

// ParseMode accepts the CLI spellings of a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "exact", "polygon":
		return ModeExact, nil
	case "bbox", "bounding-box", "rect":
		return ModeBoundingBox, nil
	}
	return "", &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s)}
}

// Settings holds every tunable used by extraction and nesting. Lengths are mm.
type Settings struct {
	// Fastener matching
	MatchTolerance       float64 `json:"match_tolerance"`
	HoleClearance        float64 `json:"hole_clearance"`
	CircleSegments       int     `json:"circle_segments"`
	DefaultHoleDiameter  float64 `json:"default_hole_diameter"`
	HoleOverlapTolerance float64 `json:"hole_overlap_tolerance"`
	StubThicknessRatio   float64 `json:"stub_thickness_ratio"`
	BoltShankRatio       float64 `json:"bolt_shank_ratio"`
	BoltAspectRatio      float64 `json:"bolt_aspect_ratio"`

	// Extraction
	MergeTolerance    float64 `json:"merge_tolerance"`
	MinFallbackExtent float64 `json:"min_fallback_extent"`
	Concurrency       int     `json:"concurrency"`

	// Packing
	Spacing    float64 `json:"spacing"`
	EdgeMargin float64 `json:"edge_margin"`
	Mode       Mode    `json:"mode"`
	ScanStep   float64 `json:"scan_step"`

	// Reporting
	SteelDensity        float64 `json:"steel_density"` // kg/mm³
	MinRemnantDimension float64 `json:"min_remnant_dimension"`
	MinRemnantArea      float64 `json:"min_remnant_area"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MatchTolerance:       50,
		HoleClearance:        2,
		CircleSegments:       16,
		DefaultHoleDiameter:  18,
		HoleOverlapTolerance: 0.05,
		StubThicknessRatio:   0.5,
		BoltShankRatio:       0.6,
		BoltAspectRatio:      1.5,
		MergeTolerance:       0.01,
		MinFallbackExtent:    1,
		Concurrency:          4,
		Spacing:              5,
		EdgeMargin:           0,
		Mode:                 ModeExact,
		ScanStep:             10,
		SteelDensity:         7.85e-6,
		MinRemnantDimension:  50,
		MinRemnantArea:       10000,
	}
}

// Validate reports the first setting that breaks the caller contract.
func (s Settings) Validate() error {
	switch {
	case s.MatchTolerance < 0:
		return &ConfigError{Field: "match_tolerance", Reason: "must not be negative"}
	case s.HoleClearance < 0:
		return &ConfigError{Field: "hole_clearance", Reason: "must not be negative"}
	case s.CircleSegments < 3:
		return &ConfigError{Field: "circle_segments", Reason: "need at least 3 segments"}
	case s.DefaultHoleDiameter <= 0:
		return &ConfigError{Field: "default_hole_diameter", Reason: "must be positive"}
	case s.HoleOverlapTolerance < 0:
		return &ConfigError{Field: "hole_overlap_tolerance", Reason: "must not be negative"}
	case s.MergeTolerance < 0:
		return &ConfigError{Field: "merge_tolerance", Reason: "must not be negative"}
	case s.MinFallbackExtent <= 0:
		return &ConfigError{Field: "min_fallback_extent", Reason: "must be positive"}
	case s.Concurrency < 1:
		return &ConfigError{Field: "concurrency", Reason: "must be at least 1"}
	case s.Spacing < 0:
		return &ConfigError{Field: "spacing", Reason: "must not be negative"}
	case s.EdgeMargin < 0:
		return &ConfigError{Field: "edge_margin", Reason: "must not be negative"}
	case s.Mode != ModeExact && s.Mode != ModeBoundingBox:
		return &ConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", s.Mode)}
	case s.ScanStep <= 0:
		return &ConfigError{Field: "scan_step", Reason: "must be positive"}
	case s.SteelDensity < 0:
		return &ConfigError{Field: "steel_density", Reason: "must not be negative"}
	}
	return nil
}
