package session

import (
	"image/color"
	"strings"

	core "breathkeeper/internal/core/session"
	"breathkeeper/internal/ui/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var (
	breathingColor = color.NRGBA{R: 38, G: 110, B: 196, A: 255}
	retentionColor = color.NRGBA{R: 12, G: 16, B: 28, A: 255}
	recoveryColor  = color.NRGBA{R: 46, G: 140, B: 96, A: 255}
	neutralColor   = color.NRGBA{R: 24, G: 28, B: 36, A: 255}
	textColor      = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	accentColor    = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
)

// Window shows the running session: breath counter, retention timer,
// recovery countdown and the final results.
type Window struct {
	window        fyne.Window
	background    *canvas.Rectangle
	titleLabel    *canvas.Text
	headlineLabel *canvas.Text
	detailLabel   *canvas.Text
	resultsLabel  *widget.Label
	restartButton *widget.Button
	tap           *tapArea
	onTap         func()
	onRestart     func()
	onClose       func()
}

// New creates the session window. It stays hidden until Render is called
// with a non-setup screen.
func New(app fyne.App) *Window {
	window := app.NewWindow("Breathing Session")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(neutralColor)

	titleLabel := canvas.NewText("", textColor)
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 20

	headlineLabel := canvas.NewText("", textColor)
	headlineLabel.Alignment = fyne.TextAlignCenter
	headlineLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	headlineLabel.TextSize = 96

	detailLabel := canvas.NewText("", accentColor)
	detailLabel.Alignment = fyne.TextAlignCenter
	detailLabel.TextSize = 22

	resultsLabel := widget.NewLabel("")
	resultsLabel.Alignment = fyne.TextAlignCenter
	resultsLabel.TextStyle = fyne.TextStyle{Monospace: true}
	resultsLabel.Hide()

	restartButton := widget.NewButton("Restart Session", nil)

	sessionWindow := &Window{
		window:        window,
		background:    background,
		titleLabel:    titleLabel,
		headlineLabel: headlineLabel,
		detailLabel:   detailLabel,
		resultsLabel:  resultsLabel,
		restartButton: restartButton,
	}

	centre := container.NewVBox(titleLabel, headlineLabel, detailLabel, resultsLabel)
	sessionWindow.tap = newTapArea(container.NewCenter(centre), sessionWindow.handleTap)

	root := container.NewStack(background, container.NewBorder(nil, container.NewPadded(restartButton), nil, nil, sessionWindow.tap))
	window.SetContent(root)
	window.Resize(fyne.NewSize(480, 520))

	restartButton.OnTapped = func() {
		if sessionWindow.onRestart != nil {
			sessionWindow.onRestart()
		}
	}
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeySpace || event.Name == fyne.KeyReturn {
			sessionWindow.handleTap()
		}
	})
	window.SetCloseIntercept(func() {
		if sessionWindow.onClose != nil {
			sessionWindow.onClose()
			return
		}
		window.Hide()
	})

	return sessionWindow
}

// SetOnTap sets the handler for taps during retention.
func (sessionWindow *Window) SetOnTap(handler func()) {
	sessionWindow.onTap = handler
}

// SetOnRestart sets the handler for the Restart button.
func (sessionWindow *Window) SetOnRestart(handler func()) {
	sessionWindow.onRestart = handler
}

// SetOnClose sets the handler for the window close button.
func (sessionWindow *Window) SetOnClose(handler func()) {
	sessionWindow.onClose = handler
}

// Render updates the window from a screen description. Safe to call from
// any goroutine.
func (sessionWindow *Window) Render(screen view.Screen) {
	fyne.Do(func() {
		sessionWindow.renderUnsafe(screen)
	})
}

// Show displays the window.
func (sessionWindow *Window) Show() {
	sessionWindow.window.Show()
	sessionWindow.window.RequestFocus()
}

// Hide hides the window.
func (sessionWindow *Window) Hide() {
	sessionWindow.window.Hide()
}

func (sessionWindow *Window) renderUnsafe(screen view.Screen) {
	sessionWindow.background.FillColor = backgroundFor(screen)
	sessionWindow.background.Refresh()

	sessionWindow.titleLabel.Text = screen.Title
	sessionWindow.titleLabel.Refresh()
	sessionWindow.headlineLabel.Text = screen.Headline
	sessionWindow.headlineLabel.TextSize = headlineSize(screen)
	sessionWindow.headlineLabel.Refresh()
	sessionWindow.detailLabel.Text = screen.Detail
	sessionWindow.detailLabel.Refresh()

	if len(screen.Results) > 0 {
		sessionWindow.resultsLabel.SetText(strings.Join(screen.Results, "\n"))
		sessionWindow.resultsLabel.Show()
	} else {
		sessionWindow.resultsLabel.Hide()
	}

	sessionWindow.tap.enabled = screen.Tappable
	if screen.CanRestart {
		sessionWindow.restartButton.Enable()
	} else {
		sessionWindow.restartButton.Disable()
	}
}

func (sessionWindow *Window) handleTap() {
	if !sessionWindow.tap.enabled || sessionWindow.onTap == nil {
		return
	}
	sessionWindow.onTap()
}

func backgroundFor(screen view.Screen) color.Color {
	switch screen.Phase {
	case core.PhaseBreathing:
		return breathingColor
	case core.PhaseRetention:
		return retentionColor
	case core.PhaseRecovery:
		return recoveryColor
	default:
		return neutralColor
	}
}

func headlineSize(screen view.Screen) float32 {
	if len(screen.Results) > 0 || len(screen.Headline) > 8 {
		return 28
	}
	return 96
}

// tapArea makes its whole content clickable while enabled.
type tapArea struct {
	widget.BaseWidget
	content fyne.CanvasObject
	onTap   func()
	enabled bool
}

func newTapArea(content fyne.CanvasObject, onTap func()) *tapArea {
	area := &tapArea{content: content, onTap: onTap}
	area.ExtendBaseWidget(area)
	return area
}

func (area *tapArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(area.content)
}

func (area *tapArea) Tapped(*fyne.PointEvent) {
	if area.onTap != nil {
		area.onTap()
	}
}
