package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	BreathsPerRound  int    `yaml:"breaths_per_round"`
	TotalRounds      int    `yaml:"total_rounds"`
	AudioDir         string `yaml:"audio_dir,omitempty"`
	BreathDurationMs int    `yaml:"breath_duration_ms,omitempty"`
	LogLevel         string `yaml:"log_level,omitempty"`
	LogFormat        string `yaml:"log_format,omitempty"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from the given path.
func LoadSettingsFile(configPath string) (Settings, error) {
	settings := DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to the given path, creating
// its directory when needed.
func SaveSettingsFile(configPath string, settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		BreathsPerRound:  settings.BreathsPerRound,
		TotalRounds:      settings.TotalRounds,
		AudioDir:         settings.AudioDir,
		BreathDurationMs: int(settings.BreathDuration / time.Millisecond),
		LogLevel:         settings.LogLevel,
		LogFormat:        settings.LogFormat,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *Settings, fileData yamlSettings) {
	if fileData.BreathsPerRound > 0 {
		settings.BreathsPerRound = fileData.BreathsPerRound
	}
	if fileData.TotalRounds > 0 {
		settings.TotalRounds = fileData.TotalRounds
	}
	if fileData.AudioDir != "" {
		settings.AudioDir = fileData.AudioDir
	}
	if fileData.BreathDurationMs > 0 {
		settings.BreathDuration = time.Duration(fileData.BreathDurationMs) * time.Millisecond
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	if fileData.LogFormat != "" {
		settings.LogFormat = fileData.LogFormat
	}
}
