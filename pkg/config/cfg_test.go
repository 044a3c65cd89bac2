package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Viewport.Width != 480 || cfg.Viewport.Height != 360 {
		t.Errorf("Viewport = %+v", cfg.Viewport)
	}
	if cfg.Frames.Interval != 16*time.Millisecond {
		t.Errorf("Frames.Interval = %v, want 16ms", cfg.Frames.Interval)
	}
	if len(cfg.Features().StickyValues) != 0 {
		t.Error("default platform should have no native sticky")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `version: 1
viewport:
  width: 800
  height: 600
platform:
  sticky_values: [-webkit-sticky]
replay:
  container: list
  from: 20
  to: 100
  step: 5
logging:
  console:
    level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Viewport.Width != 800 {
		t.Errorf("Width = %d, want 800", cfg.Viewport.Width)
	}
	// untouched sections keep the defaults
	if cfg.Layout.LineHeight != 20 {
		t.Errorf("LineHeight = %v, want 20", cfg.Layout.LineHeight)
	}
	if f := cfg.Features(); len(f.StickyValues) != 1 || !f.IsNativeSticky("-webkit-sticky") {
		t.Errorf("Features = %+v", f)
	}
	if cfg.Replay.Container != "list" || cfg.Replay.Step != 5 {
		t.Errorf("Replay = %+v", cfg.Replay)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("console level = %q", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "version: 1\nviewport:\n  depth: 3\n"},
		{"bad version", "version: 2\n"},
		{"small viewport", "version: 1\nviewport:\n  width: 10\n"},
		{"zero step", "version: 1\nreplay:\n  step: 0\n"},
		{"unknown sticky keyword", "version: 1\nplatform:\n  sticky_values: [glued]\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfiguration(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("err = %v", err)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Replay.To = 321
	data, err := Dump(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dumped.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	again, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("reloading dumped config: %v", err)
	}
	if again.Replay.To != 321 || again.Frames.Interval != cfg.Frames.Interval {
		t.Errorf("reloaded = %+v", again)
	}
}

func TestPrepareLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: logPath, Mode: "overwrite"},
	}
	log, err := conf.Prepare("stickyfill")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("Sticky handoff")
	_ = log.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Sticky handoff") || !strings.Contains(string(data), "stickyfill") {
		t.Errorf("log file = %q", data)
	}
}

func TestPrepareLoggerBadDestination(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(t.TempDir(), "missing", "dir", "run.log")},
	}
	if _, err := conf.Prepare("stickyfill"); err == nil {
		t.Error("expected an error for an unreachable destination")
	}
}
