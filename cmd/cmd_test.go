package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"grimm.is/confirmd/internal/i18n"
)

// captureStdout redirects command output for the duration of the test.
// Output is pinned to English regardless of the host locale.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old, oldPrinter := Stdout, Printer
	Stdout = &buf
	Printer = i18n.NewPrinter(language.English)
	t.Cleanup(func() {
		Stdout = old
		Printer = oldPrinter
	})
	return &buf
}

type testEnv struct {
	dir    string
	config string
	marker string
	state  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "confirmd.hcl"),
		marker: filepath.Join(dir, "run", ".acceptance"),
		state:  filepath.Join(dir, "state.db"),
	}
}

// writeConfig writes an acceptance config; extra is appended to the acceptance block.
func (e *testEnv) writeConfig(t *testing.T, enabled bool, duration int, extra string) {
	t.Helper()
	src := fmt.Sprintf(`
acceptance {
  enabled     = %t
  duration    = %d
  marker_path = %q
%s
}

logging {
  level = "error"
}

state {
  path = %q
}
`, enabled, duration, e.marker, extra, e.state)
	require.NoError(t, os.WriteFile(e.config, []byte(src), 0o644))
}
