package cli

import (
	"errors"
	"time"

	"breathkeeper/internal/bootstrap"
	"breathkeeper/internal/core/session"
	"breathkeeper/internal/platform"
	"breathkeeper/internal/storage"
	"breathkeeper/internal/ui/setup"
	sessionui "breathkeeper/internal/ui/session"
	"breathkeeper/internal/ui/tray"
	"breathkeeper/internal/ui/view"
	"breathkeeper/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newGUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window (default)",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
}

func runGUI(cmd *cobra.Command, args []string) error {
	opts, err := bootstrap.ResolveOptions(cmd.Flags(), appName)
	if err != nil {
		return err
	}
	logger := opts.InitLogger()

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunningInstance(appName, time.Second); activateErr != nil {
				logger.Warn("another instance holds the lock but did not answer", "error", activateErr)
			}
			logger.Info("another window is already open")
			return nil
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	clock := clockwork.NewRealClock()
	player, closePlayer := openPlayer(clock, logger)
	rt, err := bootstrap.NewRuntime(opts.Settings, clock, player, closePlayer, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.LoadCues(cmd.Context())

	scheduler := rt.Scheduler()

	fyneApp := app.NewWithID(appID)
	activeIcon := resources.MustLogo(resources.ActiveIcon)
	idleIcon := resources.MustLogo(resources.IdleIcon)
	fyneApp.SetIcon(idleIcon)

	sessionWindow := sessionui.New(fyneApp)
	var setupWindow *setup.Window
	setupWindow = setup.New(fyneApp, opts.Settings, func(chosen storage.Settings) {
		err := scheduler.Configure(chosen.SessionConfig())
		if err == nil {
			err = scheduler.Start()
		}
		if err != nil {
			logger.Warn("session not started", "error", err)
			setupWindow.SetStatus(err.Error())
			return
		}
		setupWindow.SetStatus("")
		if err := storage.SaveSettingsFile(opts.SettingsPath, chosen); err != nil {
			logger.Warn("settings not saved", "path", opts.SettingsPath, "error", err)
		}
	})
	setupWindow.SetOnQuit(fyneApp.Quit)
	sessionWindow.SetOnTap(func() {
		if err := scheduler.TapRetention(); err != nil {
			logger.Debug("tap ignored", "error", err)
		}
	})
	sessionWindow.SetOnRestart(scheduler.Restart)
	sessionWindow.SetOnClose(scheduler.Restart)

	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)
	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: func() {
				showFor(scheduler.Snapshot(), setupWindow, sessionWindow)
			},
			OnStart: func() {
				setupWindow.Show()
			},
			OnRestart: scheduler.Restart,
			OnQuit:    fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(idleIcon)
	} else {
		logger.Info("system tray unsupported on this platform")
	}

	guard.ServeActivation(func() {
		fyne.Do(func() {
			showFor(scheduler.Snapshot(), setupWindow, sessionWindow)
		})
	})

	events := scheduler.Subscribe(32)
	go func() {
		lastPhase := session.PhaseSetup
		lastStarting := false
		for event := range events {
			snapshot := event.Snapshot
			screen := view.Describe(snapshot)
			sessionWindow.Render(screen)

			switched := snapshot.Phase != lastPhase || snapshot.Starting != lastStarting
			lastPhase, lastStarting = snapshot.Phase, snapshot.Starting

			fyne.Do(func() {
				if switched {
					showFor(snapshot, setupWindow, sessionWindow)
				}
				if trayManager == nil {
					return
				}
				running := snapshot.Phase != session.PhaseSetup || snapshot.Starting
				trayManager.SetRunning(running)
				trayManager.SetStatus(view.Status(snapshot))
				if running {
					desktopApp.SetSystemTrayIcon(activeIcon)
				} else {
					desktopApp.SetSystemTrayIcon(idleIcon)
				}
			})
		}
	}()

	setupWindow.Show()
	fyneApp.Run()
	return nil
}

// showFor brings up the window that matches the snapshot. Must run on the
// fyne thread.
func showFor(snapshot session.Snapshot, setupWindow *setup.Window, sessionWindow *sessionui.Window) {
	if snapshot.Phase == session.PhaseSetup && !snapshot.Starting {
		sessionWindow.Hide()
		setupWindow.Show()
		return
	}
	setupWindow.Hide()
	sessionWindow.Show()
}
