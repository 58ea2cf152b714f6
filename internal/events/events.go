// Package events carries structured lifecycle events from the executor
// and providers to whatever the caller wires up: a logger, a renderer, or
// nothing at all. The core never touches a global logger.
package events

import "time"

// EventType is a string constant identifying the event category
type EventType string

// Lifecycle phase events
const (
	PhaseStarted   EventType = "phase.started"
	PhaseCompleted EventType = "phase.completed"
	PhaseSkipped   EventType = "phase.skipped"
	PhaseFailed    EventType = "phase.failed"
)

// Hook command events
const (
	HookCommandStarted   EventType = "hook.command.started"
	HookCommandCompleted EventType = "hook.command.completed"
)

// Engine resource reconciliation events
const (
	NetworkExists    EventType = "network.exists"
	NetworkCreated   EventType = "network.created"
	NetworkRemoved   EventType = "network.removed"
	VolumeExists     EventType = "volume.exists"
	VolumeCreated    EventType = "volume.created"
	VolumeRemoved    EventType = "volume.removed"
	ImageFound       EventType = "image.found"
	ImagePulled      EventType = "image.pulled"
	ImageBuilt       EventType = "image.built"
	ContainerCreated EventType = "container.created"
	ContainerStarted EventType = "container.started"
	ContainerStopped EventType = "container.stopped"
	ContainerRemoved EventType = "container.removed"
)

// Warning is emitted for accepted-but-unsupported options
const Warning EventType = "warning"

// Event represents a single occurrence in a lifecycle run
type Event struct {
	// Time is when the event occurred (set by the bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Phase is the lifecycle phase this event relates to, if any
	Phase string `json:"phase,omitempty"`

	// Name identifies the resource or hook command involved, if any
	Name string `json:"name,omitempty"`

	// Detail is a free-form human-readable description
	Detail string `json:"detail,omitempty"`
}

// Sink receives events. Implementations must tolerate concurrent Emit
// calls from provider internals.
type Sink interface {
	Emit(event Event)
}

// Discard is a Sink that drops everything.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Emit(Event) {}
