package cmd

import (
	"fmt"
	"text/tabwriter"

	"grimm.is/confirmd/internal/brand"
	"grimm.is/confirmd/internal/config"
)

// RunCheck validates the configuration file syntax and semantics.
func RunCheck(configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] [-c config-file]\nExample: %s check -v -c %s", brand.BinaryName, brand.BinaryName, brand.DefaultConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Fprintf(Stdout, "Configuration valid!\n")
	Printer.Fprintf(Stdout, "Schema Version: %s\n", cfg.SchemaVersion)

	if verbose {
		Printer.Fprintln(Stdout)
		printSummary(cfg)
	}
	return nil
}

func printSummary(cfg *config.Config) {
	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	a := cfg.Acceptance
	fmt.Fprintf(w, "Enabled:\t%t\n", a.IsEnabled())
	fmt.Fprintf(w, "Duration:\t%ds\n", a.DurationSeconds())
	fmt.Fprintf(w, "Backend:\t%s\n", a.Backend)
	fmt.Fprintf(w, "Marker:\t%s\n", a.MarkerPath)
	fmt.Fprintf(w, "Early Accept:\t%t\n", a.EarlyAccept)
	fmt.Fprintf(w, "Log Level:\t%s\n", cfg.Logging.Level)
	if cfg.NeedsStore() {
		fmt.Fprintf(w, "State:\t%s\n", cfg.State.Path)
		fmt.Fprintf(w, "History:\t%t\n", cfg.State.HistoryEnabled())
	}
	if cfg.Metrics.Listen != "" {
		fmt.Fprintf(w, "Metrics:\t%s\n", cfg.Metrics.Listen)
	}
}
