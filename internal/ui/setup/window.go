package setup

import (
	"strconv"

	"breathkeeper/internal/storage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the setup UI.
type Window struct {
	window   fyne.Window
	settings storage.Settings
	onStart  func(storage.Settings)
	onQuit   func()
	breaths  *widget.Select
	rounds   *widget.Select
	status   *widget.Label
}

// BreathPresets are the breath counts offered on the setup screen.
var BreathPresets = []int{30, 40, 50}

// RoundPresets are the round counts offered on the setup screen.
var RoundPresets = []int{3, 4, 5}

// New creates a setup window.
func New(app fyne.App, settings storage.Settings, onStart func(storage.Settings)) *Window {
	window := app.NewWindow("Breathing Session")

	breaths := widget.NewSelect(presetOptions(BreathPresets, settings.BreathsPerRound), nil)
	breaths.SetSelected(strconv.Itoa(settings.BreathsPerRound))

	rounds := widget.NewSelect(presetOptions(RoundPresets, settings.TotalRounds), nil)
	rounds.SetSelected(strconv.Itoa(settings.TotalRounds))

	status := widget.NewLabel("")

	form := container.NewVBox(
		widget.NewLabelWithStyle("Breathing Session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Breaths per round"), layout.NewSpacer(), breaths),
		container.NewHBox(widget.NewLabel("Rounds"), layout.NewSpacer(), rounds),
		status,
	)

	startButton := widget.NewButton("Start Session", nil)
	startButton.Importance = widget.HighImportance
	quitButton := widget.NewButton("Quit", nil)
	buttons := container.NewHBox(startButton, layout.NewSpacer(), quitButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(360, 220))

	setupWindow := &Window{
		window:   window,
		settings: settings,
		onStart:  onStart,
		breaths:  breaths,
		rounds:   rounds,
		status:   status,
	}

	startButton.OnTapped = setupWindow.handleStart
	quitButton.OnTapped = func() {
		if setupWindow.onQuit != nil {
			setupWindow.onQuit()
		}
	}
	window.SetCloseIntercept(quitButton.OnTapped)

	return setupWindow
}

// SetOnQuit sets the handler for the Quit button and window close.
func (setupWindow *Window) SetOnQuit(handler func()) {
	setupWindow.onQuit = handler
}

// Show displays the setup window.
func (setupWindow *Window) Show() {
	setupWindow.window.Show()
	setupWindow.window.RequestFocus()
}

// Hide hides the setup window.
func (setupWindow *Window) Hide() {
	setupWindow.window.Hide()
}

// SetStatus shows a short message under the selectors.
func (setupWindow *Window) SetStatus(message string) {
	fyne.Do(func() {
		setupWindow.status.SetText(message)
	})
}

// Settings returns the last settings passed to onStart.
func (setupWindow *Window) Settings() storage.Settings {
	return setupWindow.settings
}

func (setupWindow *Window) handleStart() {
	settings := setupWindow.settings

	if count, ok := parsePositiveInt(setupWindow.breaths.Selected); ok {
		settings.BreathsPerRound = count
	}
	if count, ok := parsePositiveInt(setupWindow.rounds.Selected); ok {
		settings.TotalRounds = count
	}

	setupWindow.settings = settings
	if setupWindow.onStart != nil {
		setupWindow.onStart(settings)
	}
}

// presetOptions lists presets as strings, adding current when it came from
// the settings file or flags and is not one of them.
func presetOptions(presets []int, current int) []string {
	options := make([]string, 0, len(presets)+1)
	found := false
	for _, value := range presets {
		options = append(options, strconv.Itoa(value))
		if value == current {
			found = true
		}
	}
	if !found && current > 0 {
		options = append(options, strconv.Itoa(current))
	}
	return options
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
