package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow    func()
	OnStart   func()
	OnRestart func()
	OnQuit    func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	restartItem *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start session", func() {
		if manager.callbacks.OnStart != nil {
			manager.callbacks.OnStart()
		}
	})

	manager.restartItem = fyne.NewMenuItem("Restart session", func() {
		if manager.callbacks.OnRestart != nil {
			manager.callbacks.OnRestart()
		}
	})
	manager.restartItem.Disabled = true

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetRunning toggles session-related menu items.
func (manager *Manager) SetRunning(running bool) {
	if manager.running == running {
		return
	}
	manager.running = running
	manager.startItem.Disabled = running
	manager.restartItem.Disabled = !running
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Breathing",
		manager.statusItem,
		fyne.NewMenuItem("Show window", func() {
			if manager.callbacks.OnShow != nil {
				manager.callbacks.OnShow()
			}
		}),
		manager.startItem,
		manager.restartItem,
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
