// Package config loads the migration toggle configuration. Parsing of
// source documents is always unconditional; these toggles gate only
// destination effects. Destructive clears default off, additive writes
// default on.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"trackport/internal/match"
)

// MatchingConfig selects the track/take matching strategy.
type MatchingConfig struct {
	ExactName      bool `yaml:"exact_name"`
	IndexFallback  bool `yaml:"index_fallback"`
	FallbackCreate bool `yaml:"fallback_create"`
}

// Strategy converts the config into an engine strategy.
func (m MatchingConfig) Strategy() match.Strategy {
	return match.Strategy{ExactName: m.ExactName, IndexFallback: m.IndexFallback}
}

// TracksConfig gates the tracks writer.
type TracksConfig struct {
	Write           bool `yaml:"write"`
	ClearExisting   bool `yaml:"clear_existing"`
	WriteProperties bool `yaml:"write_properties"`
	WriteFX         bool `yaml:"write_fx"`
	WriteEnvelopes  bool `yaml:"write_envelopes"`
	WriteLanes      bool `yaml:"write_lanes"`
}

// ItemsConfig gates the items writer.
type ItemsConfig struct {
	Write           bool `yaml:"write"`
	ClearExisting   bool `yaml:"clear_existing"`
	WriteCrossfades bool `yaml:"write_crossfades"`
}

// TakesConfig gates the takes writer.
type TakesConfig struct {
	Write          bool `yaml:"write"`
	ClearExisting  bool `yaml:"clear_existing"`
	WriteFX        bool `yaml:"write_fx"`
	WriteEnvelopes bool `yaml:"write_envelopes"`
}

// MarkersConfig gates marker-style writers (project and take markers).
type MarkersConfig struct {
	Write         bool `yaml:"write"`
	ClearExisting bool `yaml:"clear_existing"`
}

// SectionConfig gates writers with a single toggle.
type SectionConfig struct {
	Write bool `yaml:"write"`
}

// Config is the full migration configuration.
type Config struct {
	Matching       MatchingConfig `yaml:"matching"`
	Tracks         TracksConfig   `yaml:"tracks"`
	Items          ItemsConfig    `yaml:"items"`
	Takes          TakesConfig    `yaml:"takes"`
	Tempo          SectionConfig  `yaml:"tempo"`
	ProjectInfo    SectionConfig  `yaml:"project_info"`
	StretchMarkers SectionConfig  `yaml:"stretch_markers"`
	TakeMarkers    MarkersConfig  `yaml:"take_markers"`
	Markers        MarkersConfig  `yaml:"markers"`
}

// Default returns the configuration used when nothing is provided:
// everything written, nothing cleared, exact-name matching with index
// fallback and creation of unmatched tracks.
func Default() *Config {
	return &Config{
		Matching: MatchingConfig{ExactName: true, IndexFallback: true, FallbackCreate: true},
		Tracks: TracksConfig{
			Write:           true,
			WriteProperties: true,
			WriteFX:         true,
			WriteEnvelopes:  true,
			WriteLanes:      true,
		},
		Items:          ItemsConfig{Write: true, WriteCrossfades: true},
		Takes:          TakesConfig{Write: true, WriteFX: true, WriteEnvelopes: true},
		Tempo:          SectionConfig{Write: true},
		ProjectInfo:    SectionConfig{Write: true},
		StretchMarkers: SectionConfig{Write: true},
		TakeMarkers:    MarkersConfig{Write: true},
		Markers:        MarkersConfig{Write: true},
	}
}

// Load loads configuration with precedence:
// 1. TRACKPORT_CONFIG environment variable (explicit file)
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/trackport/config.yaml
// 4. built-in defaults
func Load() (*Config, error) {
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if path := os.Getenv("TRACKPORT_CONFIG"); path != "" {
		return LoadFile(path)
	}

	cfg := Default()
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(homeDir, ".config", "trackport", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		// User config is optional.
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile loads a config file over the defaults. Absent keys keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
