// Package acceptance implements the commit-confirmed gate: after a risky
// change is applied, a confirmation window is opened and an external actor
// has to flip the acceptance marker to "true" before it elapses.
//
// A Monitor walks through Start, Wait and Status. Out-of-order calls are
// no-ops that leave the current state alone, so callers can retry freely.
package acceptance

import "errors"

// State is the monitor state. The string values are the labels reported to
// callers and used in metrics and history.
type State string

const (
	StateDisabled    State = "disabled"
	StateReady       State = "ready"
	StateStarted     State = "started"
	StateWaiting     State = "waiting"
	StateWaited      State = "waited"
	StateAccepted    State = "accepted"
	StateNotAccepted State = "not accepted"
)

// States lists every state in lifecycle order.
var States = []State{
	StateDisabled,
	StateReady,
	StateStarted,
	StateWaiting,
	StateWaited,
	StateAccepted,
	StateNotAccepted,
}

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether s is a verdict.
func (s State) IsTerminal() bool {
	return s == StateAccepted || s == StateNotAccepted
}

// inCycle reports whether a cycle is in flight and Start must not reset it.
func (s State) inCycle() bool {
	return s == StateStarted || s == StateWaiting || s == StateWaited
}

var (
	// ErrInvalidConfig is returned by New for unusable settings.
	ErrInvalidConfig = errors.New("invalid acceptance config")

	// ErrMarker is returned when the marker cannot be established.
	ErrMarker = errors.New("acceptance marker error")
)
