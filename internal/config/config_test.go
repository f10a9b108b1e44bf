package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/confirmd/internal/brand"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentSchemaVersion, cfg.SchemaVersion)
	assert.True(t, cfg.Acceptance.IsEnabled())
	assert.Equal(t, DefaultDuration, cfg.Acceptance.DurationSeconds())
	assert.Equal(t, BackendFile, cfg.Acceptance.Backend)
	assert.Equal(t, brand.DefaultMarkerPath(), cfg.Acceptance.MarkerPath)
	assert.False(t, cfg.Acceptance.EarlyAccept)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.State.HistoryEnabled())
	assert.Empty(t, cfg.Metrics.Listen)
	assert.NoError(t, cfg.Validate())
}

func TestLoadHCL(t *testing.T) {
	src := `
schema_version = "1.0"

acceptance {
  enabled      = true
  duration     = 2
  marker_path  = "/tmp/confirmd/.acceptance"
  early_accept = true
}

logging {
  level = "debug"
  json  = true
}

metrics {
  listen = "127.0.0.1:9187"
}
`
	cfg, err := LoadHCL([]byte(src), "test.hcl")
	require.NoError(t, err)

	assert.True(t, cfg.Acceptance.IsEnabled())
	assert.Equal(t, 2, cfg.Acceptance.DurationSeconds())
	assert.Equal(t, "/tmp/confirmd/.acceptance", cfg.Acceptance.MarkerPath)
	assert.True(t, cfg.Acceptance.EarlyAccept)
	assert.Equal(t, BackendFile, cfg.Acceptance.Backend, "backend defaults to file")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "127.0.0.1:9187", cfg.Metrics.Listen)
	assert.NotNil(t, cfg.State, "missing block is defaulted")
}

func TestLoadHCL_Disabled(t *testing.T) {
	cfg, err := LoadHCL([]byte("acceptance {\n  enabled = false\n}\n"), "test.hcl")
	require.NoError(t, err)

	assert.False(t, cfg.Acceptance.IsEnabled())
	assert.Equal(t, DefaultDuration, cfg.Acceptance.DurationSeconds())
	assert.False(t, cfg.NeedsStore())
}

func TestLoadHCL_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "acceptance {"},
		{"unknown attribute", "acceptance {\n  wat = 1\n}\n"},
		{"wrong type", "acceptance {\n  duration = \"soon\"\n}\n"},
		{"future schema", "schema_version = \"2.0\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHCL([]byte(tt.src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadJSON(t *testing.T) {
	cfg, err := LoadJSON([]byte(`{"acceptance": {"enabled": true, "duration": 0, "backend": "state"}}`))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Acceptance.DurationSeconds(), "explicit zero must not be replaced by the default")
	assert.Equal(t, BackendState, cfg.Acceptance.Backend)
	assert.True(t, cfg.NeedsStore())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative duration", func(c *Config) { c.Acceptance.Duration = intPtr(-1) }, "acceptance.duration"},
		{"unknown backend", func(c *Config) { c.Acceptance.Backend = "etcd" }, "acceptance.backend"},
		{"empty marker", func(c *Config) { c.Acceptance.MarkerPath = " " }, "acceptance.marker_path"},
		{"state without path", func(c *Config) {
			c.Acceptance.Backend = BackendState
			c.State.Path = ""
		}, "state.path"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"marker traversal", func(c *Config) { c.Acceptance.MarkerPath = "/var/lib/../../etc/passwd" }, "acceptance.marker_path"},
		{"bad state marker name", func(c *Config) {
			c.Acceptance.Backend = BackendState
			c.Acceptance.MarkerPath = "/var/lib/confirmd/gate;1"
		}, "acceptance.marker_path"},
		{"bad metrics address", func(c *Config) { c.Metrics.Listen = "9187" }, "metrics.listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidate_DisabledSkipsMarkerChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Acceptance.Enabled = boolPtr(false)
	cfg.Acceptance.MarkerPath = ""

	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	hclPath := filepath.Join(dir, "confirmd.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte("acceptance {\n  duration = 5\n}\n"), 0o644))
	cfg, err := LoadFile(hclPath)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Acceptance.DurationSeconds())

	jsonPath := filepath.Join(dir, "confirmd.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"acceptance": {"duration": 7}}`), 0o644))
	cfg, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Acceptance.DurationSeconds())

	badPath := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(badPath, []byte("acceptance {\n  duration = -3\n}\n"), 0o644))
	_, err = LoadFile(badPath)
	assert.Error(t, err, "negative duration must be rejected, not clamped")

	_, err = LoadFile(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "confirmd.hcl")

	cfg := DefaultConfig()
	cfg.Acceptance.Duration = intPtr(45)
	cfg.Acceptance.EarlyAccept = true
	cfg.Metrics.Listen = "127.0.0.1:9187"
	require.NoError(t, cfg.WriteFile(path, false))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 45, loaded.Acceptance.DurationSeconds())
	assert.True(t, loaded.Acceptance.EarlyAccept)
	assert.Equal(t, cfg.Acceptance.MarkerPath, loaded.Acceptance.MarkerPath)
	assert.Equal(t, "127.0.0.1:9187", loaded.Metrics.Listen)

	err = cfg.WriteFile(path, false)
	assert.ErrorIs(t, err, ErrConfigExists)
	assert.NoError(t, cfg.WriteFile(path, true))
}

func TestMarshalHCL_Readable(t *testing.T) {
	data, err := DefaultConfig().MarshalHCL()
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "acceptance {")
	assert.Contains(t, out, "duration")
	assert.Contains(t, out, `schema_version = "1.0"`)
}
