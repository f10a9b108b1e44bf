// Package validation holds the input checks shared by config validation.
package validation

import (
	"fmt"
	"net"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Valid identifier: alphanumeric, dash, underscore, dot
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateIdentifier validates a name used as a store key.
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(id) > 128 {
		return fmt.Errorf("identifier too long (max 128 characters)")
	}
	if id == "." || id == ".." {
		return fmt.Errorf("invalid identifier: %s", id)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("invalid identifier: %s (must be alphanumeric, dash, underscore or dot)", id)
	}
	return nil
}

// ValidateMarkerPath validates a marker file path. It must name a file,
// not a directory, and must not traverse upwards.
func ValidateMarkerPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("null byte in path")
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("path traversal not allowed: %s", path)
		}
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("path names a directory: %s", path)
	}
	return nil
}

// ValidateAllowlist checks that value is one of allowed.
func ValidateAllowlist(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("value %q not allowed (allowed: %s)", value, strings.Join(allowed, ", "))
}

// ValidatePortNumber validates a TCP port number.
func ValidatePortNumber(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("port number out of range: %d", port)
	}
	return nil
}

// ValidateListenAddr validates a host:port listen address. The host may be
// empty (all interfaces) but must be an IP or a plain hostname otherwise.
func ValidateListenAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in %q", addr)
	}
	if err := ValidatePortNumber(port); err != nil {
		return err
	}
	if host != "" && net.ParseIP(host) == nil {
		if err := ValidateIdentifier(host); err != nil {
			return fmt.Errorf("invalid host in %q", addr)
		}
	}
	return nil
}
