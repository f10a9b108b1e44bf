package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ErrConfigExists is returned by WriteFile when the target exists and force is false.
var ErrConfigExists = errors.New("config file already exists")

// MarshalHCL renders the config as HCL. Unset blocks are omitted.
func (c *Config) MarshalHCL() ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	if c.SchemaVersion != "" {
		root.SetAttributeValue("schema_version", cty.StringVal(c.SchemaVersion))
	}

	if a := c.Acceptance; a != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("acceptance", nil).Body()
		if a.Enabled != nil {
			body.SetAttributeValue("enabled", cty.BoolVal(*a.Enabled))
		}
		if a.Duration != nil {
			body.SetAttributeValue("duration", cty.NumberIntVal(int64(*a.Duration)))
		}
		setString(body, "backend", a.Backend)
		setString(body, "marker_path", a.MarkerPath)
		body.SetAttributeValue("early_accept", cty.BoolVal(a.EarlyAccept))
	}

	if l := c.Logging; l != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("logging", nil).Body()
		setString(body, "level", l.Level)
		body.SetAttributeValue("json", cty.BoolVal(l.JSON))
	}

	if s := c.State; s != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("state", nil).Body()
		setString(body, "path", s.Path)
		if s.History != nil {
			body.SetAttributeValue("history", cty.BoolVal(*s.History))
		}
	}

	if m := c.Metrics; m != nil {
		root.AppendNewline()
		body := root.AppendNewBlock("metrics", nil).Body()
		body.SetAttributeValue("listen", cty.StringVal(m.Listen))
	}

	return hclwrite.Format(f.Bytes()), nil
}

// WriteFile renders the config to path, creating parent directories.
// An existing file is only replaced when force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := c.MarshalHCL()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install config: %w", err)
	}
	return nil
}

func setString(body *hclwrite.Body, name, value string) {
	if value == "" {
		return
	}
	body.SetAttributeValue(name, cty.StringVal(value))
}

// WriteDefault writes DefaultConfig to path.
func WriteDefault(path string, force bool) error {
	return DefaultConfig().WriteFile(path, force)
}
