package cmd

import (
	"io"
	"os"

	"grimm.is/confirmd/internal/i18n"
)

// Printer formats user-facing CLI output for the current locale.
var Printer = i18n.NewCLIPrinter()

// Stdout is where commands write their output. Tests replace it.
var Stdout io.Writer = os.Stdout
