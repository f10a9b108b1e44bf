package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"grimm.is/confirmd/internal/state"
)

// RunHistory prints the most recent acceptance cycles.
func RunHistory(configFile string, limit int) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	// Do not create an empty database just to report that it is empty.
	if _, err := os.Stat(cfg.State.Path); os.IsNotExist(err) {
		Printer.Fprintf(Stdout, "No acceptance cycles recorded.\n")
		return nil
	}

	store, err := openStore(cfg.State.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	history, err := state.NewHistoryBucket(store)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	records, err := history.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(records) == 0 {
		Printer.Fprintf(Stdout, "No acceptance cycles recorded.\n")
		return nil
	}

	w := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "STARTED\tRESULT\tWINDOW\tEARLY\tMARKER\tID")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%ds\t%t\t%s\t%s\n",
			rec.StartedAt.Local().Format(time.RFC3339),
			rec.Result,
			rec.Duration,
			rec.Early,
			rec.Marker,
			rec.ID,
		)
	}
	return nil
}
