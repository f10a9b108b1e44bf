package acceptance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"grimm.is/confirmd/internal/brand"
	"grimm.is/confirmd/internal/clock"
	"grimm.is/confirmd/internal/events"
	"grimm.is/confirmd/internal/logging"
	"grimm.is/confirmd/internal/metrics"
	"grimm.is/confirmd/internal/state"
)

// Config holds the monitor settings. They are fixed for its lifetime.
type Config struct {
	// Enabled turns the gate on. A disabled monitor never leaves StateDisabled.
	Enabled bool

	// Duration is the confirmation window in whole seconds.
	Duration int

	// EarlyAccept ends the window as soon as the marker reads as accepted.
	// Rejections are still only reached after the full window.
	EarlyAccept bool
}

// History receives every finished cycle.
type History interface {
	Record(rec state.CycleRecord) error
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithMarker sets the marker backend.
func WithMarker(marker Marker) Option {
	return func(m *Monitor) { m.marker = marker }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Monitor) { m.logger = logger.WithComponent("acceptance") }
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithEvents publishes lifecycle events to hub.
func WithEvents(hub *events.Hub) Option {
	return func(m *Monitor) { m.events = hub }
}

// WithMetrics records cycle metrics in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Monitor) { m.metrics = reg }
}

// WithHistory records finished cycles in h.
func WithHistory(h History) Option {
	return func(m *Monitor) { m.history = h }
}

// cycle tracks the in-flight acceptance cycle.
type cycle struct {
	id        string
	startedAt time.Time
	early     bool
}

// Monitor is the acceptance state machine.
//
// Callers are expected to serialize Start, Wait and Status. Status may still
// be polled from another goroutine while Wait blocks; the state lock is never
// held across the window.
type Monitor struct {
	mu    sync.Mutex
	state State
	cycle cycle

	cfg     Config
	marker  Marker
	logger  *logging.Logger
	clock   clock.Clock
	events  *events.Hub
	metrics *metrics.Registry
	history History
}

// New builds a monitor. A negative duration is rejected, not clamped.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if cfg.Duration < 0 {
		return nil, fmt.Errorf("%w: duration must be >= 0 seconds, got %d", ErrInvalidConfig, cfg.Duration)
	}

	m := &Monitor{
		cfg:    cfg,
		logger: logging.WithComponent("acceptance"),
		clock:  &clock.RealClock{},
	}
	for _, opt := range opts {
		opt(m)
	}

	if !cfg.Enabled {
		m.setState(StateDisabled)
		m.logger.Info("acceptance disabled")
		return m, nil
	}

	if m.marker == nil {
		m.marker = NewFileMarker(brand.DefaultMarkerPath())
	}
	m.setState(StateReady)
	m.logger.Debug("acceptance ready", "duration", cfg.Duration, "marker", m.marker.String(), "early_accept", cfg.EarlyAccept)
	return m, nil
}

// Duration returns the confirmation window.
func (m *Monitor) Duration() time.Duration {
	return time.Duration(m.cfg.Duration) * time.Second
}

// Marker returns the marker backend, or nil when disabled without one.
func (m *Monitor) Marker() Marker {
	return m.marker
}

// State returns the current state without settling a verdict.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CycleID returns the id of the current or last cycle.
func (m *Monitor) CycleID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycle.id
}

// Start opens a new cycle by resetting the marker to MarkerPending.
// It is a no-op while a cycle is in flight or when disabled. If the marker
// cannot be reset the error wraps ErrMarker and the state is unchanged.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.state == StateDisabled:
		m.logger.Debug("acceptance disabled, start ignored")
		return nil
	case m.state.inCycle():
		m.logger.Info("acceptance cycle already in progress", "state", m.state.String(), "cycle_id", m.cycle.id)
		return nil
	}

	if err := m.marker.Reset(ctx); err != nil {
		m.metrics.RecordMarkerError("reset")
		m.logger.Error("failed to reset marker", "marker", m.marker.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrMarker, err)
	}

	m.cycle = cycle{id: uuid.NewString(), startedAt: m.clock.Now()}
	m.setState(StateStarted)
	m.metrics.RecordStart()
	m.logger.Info("acceptance cycle started", "cycle_id", m.cycle.id, "marker", m.marker.String())
	m.emit(events.EventAcceptanceStarted)
	return nil
}

// Wait blocks for the confirmation window. It only acts in StateStarted.
//
// The window always lasts the full duration unless EarlyAccept is set and
// the marker reads as accepted first. If ctx is done before that, Wait
// returns ctx.Err() and the monitor goes back to StateStarted without a
// verdict, leaving the marker in place.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateStarted {
		m.logger.Debug("wait ignored", "state", m.state.String())
		m.mu.Unlock()
		return nil
	}
	m.setState(StateWaiting)
	m.emit(events.EventAcceptanceWaiting)
	m.mu.Unlock()

	m.logger.Info("waiting for acceptance", "duration", m.Duration().String(), "marker", m.marker.String())

	began := m.clock.Now()
	early, err := m.window(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.setState(StateStarted)
		m.logger.Warn("acceptance wait interrupted", "cycle_id", m.cycle.id, "error", err)
		return err
	}

	m.cycle.early = early
	m.setState(StateWaited)
	m.metrics.ObserveWait(m.clock.Since(began))
	m.emit(events.EventAcceptanceWaited)
	return nil
}

// window blocks until the timer fires, ctx is done, or an early accept.
func (m *Monitor) window(ctx context.Context) (bool, error) {
	var changes <-chan struct{}

	if m.cfg.EarlyAccept {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		changes = m.watch(watchCtx)
		if changes != nil && m.acceptedNow(ctx) {
			m.logger.Info("marker already accepted, ending window early")
			return true, nil
		}
	}

	timer := m.clock.After(m.Duration())
	for {
		select {
		case <-timer:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			if m.acceptedNow(ctx) {
				m.logger.Info("marker accepted, ending window early")
				return true, nil
			}
		}
	}
}

func (m *Monitor) watch(ctx context.Context) <-chan struct{} {
	w, ok := m.marker.(Watcher)
	if !ok {
		m.logger.Warn("marker backend cannot be watched, early accept off", "marker", m.marker.String())
		return nil
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		m.metrics.RecordMarkerError("watch")
		m.logger.Warn("failed to watch marker, early accept off", "marker", m.marker.String(), "error", err)
		return nil
	}
	return ch
}

// acceptedNow peeks at the marker. Failed reads never end the window.
func (m *Monitor) acceptedNow(ctx context.Context) bool {
	content, err := m.marker.Read(ctx)
	return err == nil && IsAccepted(content)
}

// Status returns the current state. In StateWaited it reads the marker,
// settles the verdict and removes the marker; otherwise it has no side
// effects. A missing or unreadable marker means StateNotAccepted.
func (m *Monitor) Status(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateWaited {
		return m.state
	}

	content, err := m.marker.Read(ctx)
	verdict := StateNotAccepted
	switch {
	case err == nil && IsAccepted(content):
		verdict = StateAccepted
	case err == nil:
	case IsMissing(err):
		m.logger.Info("marker missing, not accepted", "marker", m.marker.String())
	default:
		m.metrics.RecordMarkerError("read")
		m.logger.Warn("marker unreadable, not accepted", "marker", m.marker.String(), "error", err)
	}

	if err := m.marker.Remove(ctx); err != nil {
		m.metrics.RecordMarkerError("remove")
		m.logger.Error("failed to remove marker", "marker", m.marker.String(), "error", err)
	}

	m.setState(verdict)
	m.finish(content)
	return verdict
}

// finish must be called with m.mu held.
func (m *Monitor) finish(content string) {
	now := m.clock.Now()
	m.metrics.RecordResult(m.state.String())
	m.emit(events.EventAcceptanceResult)
	m.logger.Audit("acceptance.result", m.marker.String(), map[string]any{
		"cycle_id": m.cycle.id,
		"result":   m.state.String(),
		"early":    m.cycle.early,
	})

	if m.history == nil {
		return
	}
	rec := state.CycleRecord{
		ID:            m.cycle.id,
		StartedAt:     m.cycle.startedAt,
		FinishedAt:    now,
		Duration:      m.cfg.Duration,
		Result:        m.state.String(),
		MarkerContent: content,
		Early:         m.cycle.early,
		Marker:        m.marker.String(),
	}
	if err := m.history.Record(rec); err != nil {
		m.logger.Error("failed to record acceptance cycle", "cycle_id", rec.ID, "error", err)
	}
}

// setState must be called with m.mu held (or before m is shared).
func (m *Monitor) setState(s State) {
	m.state = s
	m.metrics.SetState(s.String())
}

func (m *Monitor) emit(t events.EventType) {
	if m.events == nil {
		return
	}
	data := events.AcceptanceData{
		CycleID: m.cycle.id,
		State:   m.state.String(),
		Early:   m.cycle.early,
	}
	if m.marker != nil {
		data.Marker = m.marker.String()
	}
	if t == events.EventAcceptanceWaiting {
		data.Duration = m.Duration()
	}
	m.events.EmitAcceptance(t, data)
}
