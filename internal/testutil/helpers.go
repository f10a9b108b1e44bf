// Package testutil holds helpers shared by package tests.
package testutil

import (
	"net"
	"os"
	"testing"
)

// RequireRealTime skips tests that sleep on the wall clock when running
// with -short or when CONFIRMD_FAST_TESTS is set.
func RequireRealTime(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("CONFIRMD_FAST_TESTS") != "" {
		t.Skip("Skipping test: waits on the real clock")
	}
}

// FreeAddr returns a loopback address with a port that was free a moment ago.
func FreeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
