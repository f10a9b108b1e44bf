package cmd

import "grimm.is/confirmd/internal/brand"

// RunVersion prints build information.
func RunVersion() {
	Printer.Fprintf(Stdout, "%s %s (commit %s)\n", brand.Name, brand.Version, brand.GitCommit)
}
