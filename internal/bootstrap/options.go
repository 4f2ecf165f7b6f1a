package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"breathkeeper/internal/logging"
	"breathkeeper/internal/storage"

	"github.com/spf13/pflag"
)

const (
	flagBreaths        = "breaths"
	flagRounds         = "rounds"
	flagAudioDir       = "audio-dir"
	flagBreathDuration = "breath-duration"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
	flagConfig         = "config"
	flagLogFile        = "log-file"

	termLogName = "term.log"
)

// Options is the resolved startup configuration of one command run.
type Options struct {
	Settings     storage.Settings
	SettingsPath string
	// LogFile overrides where the terminal mode writes its log.
	LogFile string
	// LoadErr is set when the settings file existed but could not be
	// used. Settings then holds the defaults plus flags.
	LoadErr error
}

// RegisterFlags adds the shared session and logging flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.Int(flagBreaths, 0, "breaths per round (default from settings, 30)")
	flags.Int(flagRounds, 0, "number of rounds (default from settings, 3)")
	flags.String(flagAudioDir, "", "directory holding breath.mp3, chime.mp3 and bell.mp3")
	flags.Duration(flagBreathDuration, 0, "breath length used when the breath sound is not loaded")
	flags.String(flagLogLevel, "", "log level: debug, info, warn or error")
	flags.String(flagLogFormat, "", "log format: text or json")
	flags.String(flagLogFile, "", "log file for terminal mode (default is <user cache dir>/<app>/term.log)")
	flags.StringP(flagConfig, "c", "", "settings file (default is <user config dir>/<app>/settings.yaml)")
}

// ResolveOptions loads the settings file and applies any flags the user
// set on top of it.
func ResolveOptions(flags *pflag.FlagSet, appName string) (Options, error) {
	path, err := flags.GetString(flagConfig)
	if err != nil {
		return Options{}, err
	}
	if path == "" {
		path, err = storage.SettingsPath(appName)
		if err != nil {
			return Options{}, err
		}
	}

	settings, loadErr := storage.LoadSettingsFile(path)
	if loadErr != nil {
		settings = storage.DefaultSettings()
	}

	if flags.Changed(flagBreaths) {
		if settings.BreathsPerRound, err = flags.GetInt(flagBreaths); err != nil {
			return Options{}, err
		}
	}
	if flags.Changed(flagRounds) {
		if settings.TotalRounds, err = flags.GetInt(flagRounds); err != nil {
			return Options{}, err
		}
	}
	if flags.Changed(flagAudioDir) {
		if settings.AudioDir, err = flags.GetString(flagAudioDir); err != nil {
			return Options{}, err
		}
	}
	if flags.Changed(flagBreathDuration) {
		if settings.BreathDuration, err = flags.GetDuration(flagBreathDuration); err != nil {
			return Options{}, err
		}
	}
	if flags.Changed(flagLogLevel) {
		if settings.LogLevel, err = flags.GetString(flagLogLevel); err != nil {
			return Options{}, err
		}
	}
	if flags.Changed(flagLogFormat) {
		if settings.LogFormat, err = flags.GetString(flagLogFormat); err != nil {
			return Options{}, err
		}
	}

	logFile, err := flags.GetString(flagLogFile)
	if err != nil {
		return Options{}, err
	}

	if err := settings.SessionConfig().Validate(); err != nil {
		return Options{}, fmt.Errorf("session flags: %w", err)
	}

	return Options{Settings: settings, SettingsPath: path, LogFile: logFile, LoadErr: loadErr}, nil
}

// InitLogger installs the process logger and reports a settings load
// failure through it.
func (opts Options) InitLogger() *slog.Logger {
	logger := logging.Init(opts.Settings.LogLevel, opts.Settings.LogFormat)
	opts.reportLoadErr(logger)
	return logger
}

// InitFileLogger is InitLogger for the terminal mode, where stderr shares
// the screen with the rendered frame. Records go to LogFile, or to
// term.log under the user cache dir when it is unset.
func (opts Options) InitFileLogger(appName string) (*slog.Logger, io.Closer, error) {
	path := opts.LogFile
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locate cache dir: %w", err)
		}
		path = filepath.Join(dir, appName, termLogName)
	}

	logger, closer, err := logging.InitFile(path, opts.Settings.LogLevel, opts.Settings.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	opts.reportLoadErr(logger)
	return logger, closer, nil
}

func (opts Options) reportLoadErr(logger *slog.Logger) {
	if opts.LoadErr != nil {
		logger.Warn("settings file ignored, using defaults", "path", opts.SettingsPath, "error", opts.LoadErr)
	}
}
