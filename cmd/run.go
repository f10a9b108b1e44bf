package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"grimm.is/confirmd/internal/acceptance"
	"grimm.is/confirmd/internal/brand"
	"grimm.is/confirmd/internal/config"
	"grimm.is/confirmd/internal/events"
	"grimm.is/confirmd/internal/health"
	"grimm.is/confirmd/internal/logging"
	"grimm.is/confirmd/internal/metrics"
	"grimm.is/confirmd/internal/state"
)

// Exit codes for the run command.
const (
	ExitAccepted    = 0
	ExitError       = 1
	ExitNotAccepted = 3
)

// RunOptions configures a single acceptance cycle.
type RunOptions struct {
	ConfigFile  string
	MetricsAddr string // overrides metrics.listen when set
}

// ExitCode maps the outcome of RunAcceptance onto a process exit code.
func ExitCode(verdict acceptance.State, err error) int {
	if err != nil {
		return ExitError
	}
	switch verdict {
	case acceptance.StateAccepted, acceptance.StateDisabled:
		return ExitAccepted
	default:
		return ExitNotAccepted
	}
}

// RunAcceptance runs one full cycle: start, wait, status. SIGINT and SIGTERM
// abort the window without a verdict.
func RunAcceptance(opts RunOptions) (acceptance.State, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runAcceptance(ctx, opts)
}

func runAcceptance(ctx context.Context, opts RunOptions) (acceptance.State, error) {
	cfg, err := loadConfig(opts.ConfigFile)
	if err != nil {
		return "", err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return "", err
	}
	logging.SetDefault(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := firstNonEmpty(opts.MetricsAddr, cfg.Metrics.Listen)
	var reg *metrics.Registry
	if addr != "" {
		reg = metrics.New()
	}

	var store *state.SQLiteStore
	if cfg.NeedsStore() {
		store, err = openStore(cfg.State.Path)
		if err != nil {
			return "", err
		}
		defer store.Close()
	}

	monOpts := []acceptance.Option{
		acceptance.WithLogger(logger),
		acceptance.WithMetrics(reg),
	}

	if cfg.Acceptance.IsEnabled() {
		marker, err := newMarker(cfg.Acceptance, store)
		if err != nil {
			return "", err
		}
		monOpts = append(monOpts, acceptance.WithMarker(marker))

		if cfg.State.HistoryEnabled() {
			history, err := state.NewHistoryBucket(store)
			if err != nil {
				return "", fmt.Errorf("failed to open history: %w", err)
			}
			monOpts = append(monOpts, acceptance.WithHistory(history))
		}
	}

	hub := events.NewHub()
	monOpts = append(monOpts, acceptance.WithEvents(hub))
	stopProgress := printProgress(hub)
	defer stopProgress()

	mon, err := acceptance.New(acceptance.Config{
		Enabled:     cfg.Acceptance.IsEnabled(),
		Duration:    cfg.Acceptance.DurationSeconds(),
		EarlyAccept: cfg.Acceptance.EarlyAccept,
	}, monOpts...)
	if err != nil {
		return "", err
	}

	if addr != "" {
		mux := http.NewServeMux()
		newChecker(cfg, store, mon).Mount(mux)
		go func() {
			if err := reg.Serve(ctx, addr, mux); err != nil {
				logger.Error("metrics endpoint failed", "addr", addr, "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", addr)
	}

	if err := mon.Start(ctx); err != nil {
		return "", err
	}
	if err := mon.Wait(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("confirmation window aborted: %w", err)
		}
		return "", err
	}

	verdict := mon.Status(ctx)
	stopProgress()

	switch verdict {
	case acceptance.StateAccepted:
		Printer.Fprintf(Stdout, "Change accepted.\n")
	case acceptance.StateDisabled:
		Printer.Fprintf(Stdout, "Acceptance disabled, nothing to confirm.\n")
	default:
		Printer.Fprintf(Stdout, "Change NOT accepted, revert it.\n")
	}
	return verdict, nil
}

// printProgress tells the operator where to confirm once the window opens.
// The returned func drains the subscription and may be called more than once.
func printProgress(hub *events.Hub) func() {
	sub := hub.Subscribe(16, events.EventAcceptanceWaiting)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case e := <-sub:
				data, ok := e.Data.(events.AcceptanceData)
				if !ok {
					continue
				}
				Printer.Fprintf(Stdout, "Write \"true\" to %s within %v to accept the change.\n", data.Marker, data.Duration)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			hub.Unsubscribe(sub)
			close(done)
			wg.Wait()
		})
	}
}

// newChecker registers the checks that matter for the configured backend.
func newChecker(cfg *config.Config, store *state.SQLiteStore, mon *acceptance.Monitor) *health.Checker {
	checker := health.NewChecker()
	checker.Register("acceptance", health.StateCheck(mon.State))
	if cfg.Acceptance.IsEnabled() && cfg.Acceptance.Backend == config.BackendFile {
		checker.Register("marker", health.MarkerDirCheck(cfg.Acceptance.MarkerPath))
	}
	if store != nil {
		checker.Register("state", health.StoreCheck(store))
	}
	return checker
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = brand.DefaultConfigPath()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (create one with '%s init -c %s')", err, brand.BinaryName, path)
		}
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.JSON = cfg.Logging.JSON
	return logging.New(lc), nil
}

func openStore(path string) (*state.SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	store, err := state.NewSQLiteStore(state.DefaultOptions(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}

func newMarker(ac *config.AcceptanceConfig, store state.Store) (acceptance.Marker, error) {
	switch ac.Backend {
	case config.BackendState:
		return acceptance.NewStoreMarker(store, filepath.Base(ac.MarkerPath))
	default:
		return acceptance.NewFileMarker(ac.MarkerPath), nil
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
