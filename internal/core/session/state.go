package session

import (
	"fmt"

	"breathkeeper/internal/core/model"
)

// State is the authoritative record of a session. Only the Scheduler
// mutates it; observers get copies through Snapshot.
type State struct {
	Phase                    Phase
	CurrentRound             int
	CurrentBreathIndex       int
	RetentionElapsedSeconds  int
	RecoveryRemainingSeconds int
	RetentionDurations       []int
}

func newState(recoverySeconds int) State {
	return State{
		Phase:                    PhaseSetup,
		CurrentRound:             1,
		RecoveryRemainingSeconds: recoverySeconds,
	}
}

// Snapshot is a read-only view of the session for presentation layers.
type Snapshot struct {
	State
	SessionID       string
	BreathsPerRound int
	TotalRounds     int
	// Starting is set while a pre-breathing delay is pending.
	Starting bool
}

func (state State) snapshot(id string, config model.SessionConfig, starting bool) Snapshot {
	copied := state
	copied.RetentionDurations = append([]int(nil), state.RetentionDurations...)
	return Snapshot{
		State:           copied,
		SessionID:       id,
		BreathsPerRound: config.BreathsPerRound,
		TotalRounds:     config.TotalRounds,
		Starting:        starting,
	}
}

// RetentionClock formats the running retention time as MM:SS.
func (snapshot Snapshot) RetentionClock() string {
	return FormatClock(snapshot.RetentionElapsedSeconds)
}

// Results formats every recorded retention as MM:SS in round order.
func (snapshot Snapshot) Results() []string {
	results := make([]string, len(snapshot.RetentionDurations))
	for i, seconds := range snapshot.RetentionDurations {
		results[i] = FormatClock(seconds)
	}
	return results
}

// FormatClock renders whole seconds as zero-padded MM:SS. Minutes are not
// wrapped at an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
