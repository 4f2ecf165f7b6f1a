package view

import (
	"fmt"

	"breathkeeper/internal/core/session"
)

// Screen is the presentation-agnostic rendering of a Snapshot. The fyne
// window and the terminal renderer both draw from it.
type Screen struct {
	Phase    session.Phase
	Title    string
	Headline string
	Detail   string
	// Tappable marks the screen where a tap ends the breath hold.
	Tappable bool
	Results  []string
	// CanRestart is false only while the session has not begun.
	CanRestart bool
}

// Describe maps a snapshot to the text shown for its phase.
func Describe(snapshot session.Snapshot) Screen {
	screen := Screen{
		Phase:      snapshot.Phase,
		Title:      roundTitle(snapshot),
		CanRestart: snapshot.Phase != session.PhaseSetup || snapshot.Starting,
	}

	switch snapshot.Phase {
	case session.PhaseSetup:
		if snapshot.Starting {
			screen.Headline = "Get ready"
			screen.Detail = fmt.Sprintf("%d breaths, %d rounds", snapshot.BreathsPerRound, snapshot.TotalRounds)
			return screen
		}
		screen.Title = "Breathing session"
		screen.Headline = "Choose breaths and rounds"
	case session.PhaseBreathing:
		screen.Headline = fmt.Sprintf("%d", snapshot.CurrentBreathIndex)
		screen.Detail = fmt.Sprintf("of %d", snapshot.BreathsPerRound)
	case session.PhaseRetention:
		screen.Headline = snapshot.RetentionClock()
		screen.Detail = "Tap when you breathe in"
		screen.Tappable = true
	case session.PhaseRecovery:
		if snapshot.Starting {
			screen.Headline = "Get ready"
			screen.Detail = "Next round starting"
			return screen
		}
		screen.Headline = fmt.Sprintf("%ds", snapshot.RecoveryRemainingSeconds)
		screen.Detail = "Recovery"
	case session.PhaseComplete:
		screen.Title = "Session complete"
		screen.Headline = "Retention times"
		screen.Results = ResultLines(snapshot)
	}
	return screen
}

// ResultLines formats one "Round i: MM:SS" line per recorded retention.
func ResultLines(snapshot session.Snapshot) []string {
	results := snapshot.Results()
	lines := make([]string, len(results))
	for i, clock := range results {
		lines[i] = fmt.Sprintf("Round %d: %s", i+1, clock)
	}
	return lines
}

// Status is the one-line summary shown in the tray menu.
func Status(snapshot session.Snapshot) string {
	switch snapshot.Phase {
	case session.PhaseSetup:
		if snapshot.Starting {
			return "starting"
		}
		return "idle"
	case session.PhaseBreathing:
		return fmt.Sprintf("round %d/%d, breath %d/%d", snapshot.CurrentRound, snapshot.TotalRounds, snapshot.CurrentBreathIndex, snapshot.BreathsPerRound)
	case session.PhaseRetention:
		return fmt.Sprintf("round %d/%d, holding %s", snapshot.CurrentRound, snapshot.TotalRounds, snapshot.RetentionClock())
	case session.PhaseRecovery:
		if snapshot.Starting {
			return fmt.Sprintf("round %d/%d starting", snapshot.CurrentRound, snapshot.TotalRounds)
		}
		return fmt.Sprintf("round %d/%d, recovery %ds", snapshot.CurrentRound, snapshot.TotalRounds, snapshot.RecoveryRemainingSeconds)
	case session.PhaseComplete:
		return "complete"
	default:
		return string(snapshot.Phase)
	}
}

func roundTitle(snapshot session.Snapshot) string {
	return fmt.Sprintf("Round %d of %d", snapshot.CurrentRound, snapshot.TotalRounds)
}
