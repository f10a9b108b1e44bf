package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"grimm.is/confirmd/internal/logging"
	"grimm.is/confirmd/internal/validation"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks a defaulted config. It returns ValidationErrors or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if a := c.Acceptance; a != nil {
		if a.Duration != nil && *a.Duration < 0 {
			errs = append(errs, ValidationError{
				Field:   "acceptance.duration",
				Message: fmt.Sprintf("must be >= 0 seconds, got %d", *a.Duration),
			})
		}
		if a.Backend != "" {
			if err := validation.ValidateAllowlist(a.Backend, []string{BackendFile, BackendState}); err != nil {
				errs = append(errs, ValidationError{Field: "acceptance.backend", Message: err.Error()})
			}
		}
		if a.IsEnabled() {
			if err := validation.ValidateMarkerPath(a.MarkerPath); err != nil {
				errs = append(errs, ValidationError{Field: "acceptance.marker_path", Message: err.Error()})
			} else if a.Backend == BackendState {
				if err := validation.ValidateIdentifier(filepath.Base(a.MarkerPath)); err != nil {
					errs = append(errs, ValidationError{Field: "acceptance.marker_path", Message: "marker name: " + err.Error()})
				}
			}
		}
		if a.IsEnabled() && a.Backend == BackendState && (c.State == nil || c.State.Path == "") {
			errs = append(errs, ValidationError{
				Field:   "state.path",
				Message: "required when acceptance.backend is \"state\"",
			})
		}
	}

	if c.Metrics != nil && c.Metrics.Listen != "" {
		if err := validation.ValidateListenAddr(c.Metrics.Listen); err != nil {
			errs = append(errs, ValidationError{Field: "metrics.listen", Message: err.Error()})
		}
	}

	if c.Logging != nil {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
