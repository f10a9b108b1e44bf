package config

import "grimm.is/confirmd/internal/brand"

// CurrentSchemaVersion defines the current schema version of the configuration.
const CurrentSchemaVersion = "1.0"

// Defaults for the acceptance block.
const (
	DefaultEnabled  = true
	DefaultDuration = 120
	BackendFile     = "file"
	BackendState    = "state"
)

// Config is the top-level configuration.
type Config struct {
	SchemaVersion string            `hcl:"schema_version,optional" json:"schema_version,omitempty"`
	Acceptance    *AcceptanceConfig `hcl:"acceptance,block" json:"acceptance,omitempty"`
	Logging       *LoggingConfig    `hcl:"logging,block" json:"logging,omitempty"`
	State         *StateConfig      `hcl:"state,block" json:"state,omitempty"`
	Metrics       *MetricsConfig    `hcl:"metrics,block" json:"metrics,omitempty"`
}

// AcceptanceConfig configures the commit-confirmed window.
type AcceptanceConfig struct {
	// Enabled toggles the whole mechanism. Nil means DefaultEnabled.
	Enabled *bool `hcl:"enabled,optional" json:"enabled,omitempty"`

	// Duration is the confirmation window in whole seconds. Nil means DefaultDuration.
	Duration *int `hcl:"duration,optional" json:"duration,omitempty"`

	// Backend selects where the marker lives: "file" or "state".
	Backend string `hcl:"backend,optional" json:"backend,omitempty"`

	// MarkerPath is the marker file for the file backend, or the marker
	// name (its base name) for the state backend.
	MarkerPath string `hcl:"marker_path,optional" json:"marker_path,omitempty"`

	// EarlyAccept ends the window as soon as the marker reads as accepted.
	EarlyAccept bool `hcl:"early_accept,optional" json:"early_accept,omitempty"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level string `hcl:"level,optional" json:"level,omitempty"`
	JSON  bool   `hcl:"json,optional" json:"json,omitempty"`
}

// StateConfig configures the SQLite state store.
type StateConfig struct {
	Path string `hcl:"path,optional" json:"path,omitempty"`

	// History records every finished cycle. Nil means true.
	History *bool `hcl:"history,optional" json:"history,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address for /metrics; empty disables the endpoint.
	Listen string `hcl:"listen,optional" json:"listen,omitempty"`
}

// DefaultConfig returns a fully populated default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset block and attribute.
func (c *Config) ApplyDefaults() {
	if c.SchemaVersion == "" {
		c.SchemaVersion = CurrentSchemaVersion
	}

	if c.Acceptance == nil {
		c.Acceptance = &AcceptanceConfig{}
	}
	if c.Acceptance.Enabled == nil {
		c.Acceptance.Enabled = boolPtr(DefaultEnabled)
	}
	if c.Acceptance.Duration == nil {
		c.Acceptance.Duration = intPtr(DefaultDuration)
	}
	if c.Acceptance.Backend == "" {
		c.Acceptance.Backend = BackendFile
	}
	if c.Acceptance.MarkerPath == "" {
		c.Acceptance.MarkerPath = brand.DefaultMarkerPath()
	}

	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if c.State == nil {
		c.State = &StateConfig{}
	}
	if c.State.Path == "" {
		c.State.Path = brand.DefaultStatePath()
	}
	if c.State.History == nil {
		c.State.History = boolPtr(true)
	}

	if c.Metrics == nil {
		c.Metrics = &MetricsConfig{}
	}
}

// IsEnabled reports whether confirmation is required.
func (a *AcceptanceConfig) IsEnabled() bool {
	if a == nil || a.Enabled == nil {
		return DefaultEnabled
	}
	return *a.Enabled
}

// DurationSeconds returns the confirmation window length.
func (a *AcceptanceConfig) DurationSeconds() int {
	if a == nil || a.Duration == nil {
		return DefaultDuration
	}
	return *a.Duration
}

// HistoryEnabled reports whether finished cycles are recorded.
func (s *StateConfig) HistoryEnabled() bool {
	if s == nil || s.History == nil {
		return true
	}
	return *s.History
}

// NeedsStore reports whether the configuration requires the state store.
func (c *Config) NeedsStore() bool {
	if !c.Acceptance.IsEnabled() {
		return false
	}
	return c.Acceptance.Backend == BackendState || c.State.HistoryEnabled()
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
