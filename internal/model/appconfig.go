package model

// AppConfig holds user preferences persisted between runs.
type AppConfig struct {
	// Defaults applied to every request
	DefaultSpacing        float64 `json:"default_spacing"`
	DefaultEdgeMargin     float64 `json:"default_edge_margin"`
	DefaultMode           Mode    `json:"default_mode"`
	DefaultMatchTolerance float64 `json:"default_match_tolerance"`
	DefaultHoleClearance  float64 `json:"default_hole_clearance"`
	DefaultHoleDiameter   float64 `json:"default_hole_diameter"`
	DefaultConcurrency    int     `json:"default_concurrency"`

	// Application preferences
	RecentInputs []string `json:"recent_inputs"`
	LogLevel     string   `json:"log_level"` // zerolog level name
}

// DefaultAppConfig returns an AppConfig matching DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultSpacing:        defaults.Spacing,
		DefaultEdgeMargin:     defaults.EdgeMargin,
		DefaultMode:           defaults.Mode,
		DefaultMatchTolerance: defaults.MatchTolerance,
		DefaultHoleClearance:  defaults.HoleClearance,
		DefaultHoleDiameter:   defaults.DefaultHoleDiameter,
		DefaultConcurrency:    defaults.Concurrency,
		RecentInputs:          []string{},
		LogLevel:              "info",
	}
}

// ApplyToSettings copies the saved defaults into s. Zero values leave the
// corresponding setting untouched so older config files keep working.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if c.DefaultSpacing > 0 {
		s.Spacing = c.DefaultSpacing
	}
	if c.DefaultEdgeMargin > 0 {
		s.EdgeMargin = c.DefaultEdgeMargin
	}
	if c.DefaultMode != "" {
		s.Mode = c.DefaultMode
	}
	if c.DefaultMatchTolerance > 0 {
		s.MatchTolerance = c.DefaultMatchTolerance
	}
	if c.DefaultHoleClearance > 0 {
		s.HoleClearance = c.DefaultHoleClearance
	}
	if c.DefaultHoleDiameter > 0 {
		s.DefaultHoleDiameter = c.DefaultHoleDiameter
	}
	if c.DefaultConcurrency > 0 {
		s.Concurrency = c.DefaultConcurrency
	}
}

// AddRecentInput records path at the front of the recent list, keeping at most max entries.
func (c *AppConfig) AddRecentInput(path string, max int) {
	out := []string{path}
	for _, p := range c.RecentInputs {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > max {
		out = out[:max]
	}
	c.RecentInputs = out
}
