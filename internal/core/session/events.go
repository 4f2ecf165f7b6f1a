package session

import (
	"time"

	"breathkeeper/internal/audio"
)

// Phase is the mutually exclusive stage a session occupies.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseBreathing Phase = "breathing"
	PhaseRetention Phase = "retention"
	PhaseRecovery  Phase = "recovery"
	PhaseComplete  Phase = "complete"
)

// EventType defines the type of Scheduler event.
type EventType string

const (
	EventPhaseChange EventType = "phase_change"
	EventProgress    EventType = "progress"
	EventCue         EventType = "cue"
	EventCueSkipped  EventType = "cue_skipped"
)

// Event represents a Scheduler update for observers.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Cue      audio.CueKind
	Message  string
	At       time.Time
}
