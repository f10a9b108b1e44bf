package validation

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{".acceptance", false},
		{"gate-1", false},
		{"gate_1.v2", false},
		{"", true},
		{".", true},
		{"..", true},
		{"gate;rm", true},
		{"a b", true},
		{strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		err := ValidateIdentifier(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
	}
}

func TestValidateMarkerPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"/var/lib/confirmd/.acceptance", false},
		{"run/.acceptance", false},
		{"/var/lib/..hidden/marker", false},
		{"", true},
		{"   ", true},
		{"/var/lib/../../etc/passwd", true},
		{"/var/lib/confirmd/", true},
		{"/tmp/a\x00b", true},
	}

	for _, tt := range tests {
		err := ValidateMarkerPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMarkerPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestValidateAllowlist(t *testing.T) {
	allowed := []string{"file", "state"}
	if err := ValidateAllowlist("file", allowed); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAllowlist("etcd", allowed); err == nil {
		t.Error("expected error for value outside the allowlist")
	}
}

func TestValidateListenAddr(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:9187", false},
		{":9187", false},
		{"[::1]:9187", false},
		{"localhost:9187", false},
		{"9187", true},
		{"127.0.0.1:http", true},
		{"127.0.0.1:70000", true},
		{"bad host:9187", true},
	}

	for _, tt := range tests {
		err := ValidateListenAddr(tt.addr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateListenAddr(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}
