// Package config loads pipeline run configuration: which protocol to
// recognize, where the register map and frame source live, and any
// signal-name overrides. Grounded on the teacher's config.go
// (parse-then-validate struct population) and deviceid.go (a YAML
// file driving runtime behavior).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MBarae/waveform-reg-access-extractor/internal/bus"
)

// RegisterMapFormat selects which regmap loader parses RegisterMapPath.
type RegisterMapFormat string

const (
	FormatIPXACT RegisterMapFormat = "ipxact"
	FormatYAML   RegisterMapFormat = "yaml"
)

// Config is the full run configuration, loadable from a YAML file and
// overridable by CLI flags.
type Config struct {
	Protocol        string             `yaml:"protocol"`
	RegisterMapPath string             `yaml:"register_map_path"`
	RegisterMapKind RegisterMapFormat  `yaml:"register_map_format"`
	FrameSourcePath string             `yaml:"frame_source_path"`
	OutputPath      string             `yaml:"output_path"`
	OutputFormat    string             `yaml:"output_format"` // "json" | "csv"
	SignalMapping   map[string]string  `yaml:"signal_mapping"`
}

// Default returns a Config with the same fallback posture spec.md §4.1
// describes for optional signals: sane defaults, nothing fatal until
// validated against an actual register map / frame source.
func Default() Config {
	return Config{
		Protocol:     "AHB",
		OutputFormat: "json",
	}
}

// Load reads a YAML config file on top of Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is complete enough to build a
// pipeline. This is a setup-time check, per spec.md §7's configuration
// error class — it never inspects frame contents.
func (c Config) Validate() error {
	if _, ok := bus.Registry[c.Protocol]; !ok {
		return fmt.Errorf("config: unknown protocol %q", c.Protocol)
	}
	if c.RegisterMapPath == "" {
		return fmt.Errorf("config: register_map_path is required")
	}
	switch c.RegisterMapKind {
	case FormatIPXACT, FormatYAML:
	default:
		return fmt.Errorf("config: register_map_format must be %q or %q, got %q", FormatIPXACT, FormatYAML, c.RegisterMapKind)
	}
	if c.FrameSourcePath == "" {
		return fmt.Errorf("config: frame_source_path is required")
	}
	switch c.OutputFormat {
	case "json", "csv":
	default:
		return fmt.Errorf("config: output_format must be \"json\" or \"csv\", got %q", c.OutputFormat)
	}
	return nil
}

// SignalMappingOf returns c.SignalMapping as a bus.SignalMapping.
func (c Config) SignalMappingOf() bus.SignalMapping {
	if c.SignalMapping == nil {
		return nil
	}
	return bus.SignalMapping(c.SignalMapping)
}
