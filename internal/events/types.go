// Package events provides the in-process pub/sub bus for confirmd.
// The acceptance monitor publishes every lifecycle transition here so that
// status surfaces (CLI, metrics, audit) do not have to poll the monitor.
package events

import "time"

// EventType identifies the category of event.
type EventType string

const (
	EventAcceptanceStarted EventType = "acceptance.started"
	EventAcceptanceWaiting EventType = "acceptance.waiting"
	EventAcceptanceWaited  EventType = "acceptance.waited"
	EventAcceptanceResult  EventType = "acceptance.result"
)

// Event is the core message passed through the event bus.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data"`
}

// AcceptanceData is the payload for all acceptance events.
type AcceptanceData struct {
	CycleID  string        `json:"cycle_id"`
	State    string        `json:"state"`
	Marker   string        `json:"marker,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Early    bool          `json:"early,omitempty"`
}
