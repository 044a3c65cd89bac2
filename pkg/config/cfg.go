package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"stickyfill/pkg/css"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ViewportConfig struct {
		Width  int `yaml:"width" validate:"min=100"`
		Height int `yaml:"height" validate:"min=100"`
	}

	LayoutConfig struct {
		LineHeight float64 `yaml:"line_height" validate:"gt=0"`
	}

	PlatformConfig struct {
		StickyValues []string `yaml:"sticky_values" validate:"dive,oneof=sticky -webkit-sticky"`
	}

	FramesConfig struct {
		Interval time.Duration `yaml:"interval" validate:"gt=0"`
	}

	ReplayConfig struct {
		Container string  `yaml:"container"`
		From      float64 `yaml:"from" validate:"gte=0"`
		To        float64 `yaml:"to" validate:"gte=0"`
		Step      float64 `yaml:"step" validate:"gt=0"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Viewport ViewportConfig `yaml:"viewport"`
		Layout   LayoutConfig   `yaml:"layout"`
		Platform PlatformConfig `yaml:"platform"`
		Frames   FramesConfig   `yaml:"frames"`
		Replay   ReplayConfig   `yaml:"replay"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

// Features describes the configured platform to the style engine.
func (c *Config) Features() css.Features {
	return css.Features{StickyValues: append([]string(nil), c.Platform.StickyValues...)}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the embedded defaults and overlays the file at
// path, if any.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the default configuration as written to disk.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
