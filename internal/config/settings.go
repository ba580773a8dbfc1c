// Package config loads server settings from YAML. Defaults come from the
// embedded settings file; a user file, when present, is overlaid on top so a
// partial file only overrides what it names.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Server       ServerSettings       `yaml:"server"`
	Logging      LoggingSettings      `yaml:"logging"`
	Orchestrator OrchestratorSettings `yaml:"orchestrator"`
	Worker       WorkerSettings       `yaml:"worker"`
	Poll         PollSettings         `yaml:"poll"`
	Transport    TransportSettings    `yaml:"transport"`
	Audit        AuditSettings        `yaml:"audit"`
}

type ServerSettings struct {
	Addr string `yaml:"addr"`
	// Token, when set, gates every API request behind bearer auth.
	Token string `yaml:"token"`
}

type LoggingSettings struct {
	Level string `yaml:"level"`
}

type OrchestratorSettings struct {
	Command string `yaml:"command"`
	Model   string `yaml:"model"`
}

type WorkerSettings struct {
	Command      string `yaml:"command"`
	Model        string `yaml:"model"`
	MaxTurns     int    `yaml:"max-turns"`
	GraceDelayMS int    `yaml:"grace-delay-ms"`
}

type PollSettings struct {
	IntervalSeconds int `yaml:"interval-seconds"`
	TimeoutSeconds  int `yaml:"timeout-seconds"`
}

type TransportSettings struct {
	KittySocket    string `yaml:"kitty-socket"`
	FocusDelayMS   int    `yaml:"focus-delay-ms"`
	PasteThreshold int    `yaml:"paste-threshold"`
}

type AuditSettings struct {
	Path string `yaml:"path"`
}

func (w WorkerSettings) GraceDelay() time.Duration {
	return time.Duration(w.GraceDelayMS) * time.Millisecond
}

func (p PollSettings) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

func (p PollSettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (t TransportSettings) FocusDelay() time.Duration {
	return time.Duration(t.FocusDelayMS) * time.Millisecond
}

// LoadSettings decodes the embedded defaults and overlays the user file at
// path, if any. A missing user file is not an error; a malformed one is.
func LoadSettings(defaults []byte, path string) (Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(defaults, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse default settings: %w", err)
	}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return settings, nil
}
