/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	applog "goteleprompter/internal/log"
	"goteleprompter/internal/pacing"
	"goteleprompter/internal/palette"
	"goteleprompter/internal/shell"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int            `yaml:"config_version" default:"1" validate:"gte=1"`
	Playback      PlaybackConfig `yaml:"playback"`
	Library       LibraryConfig  `yaml:"library"`
	Display       DisplayConfig  `yaml:"display"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type PlaybackConfig struct {
	MinVisibleSeconds float64 `yaml:"min_visible_seconds" default:"5" validate:"gt=0,lte=3600"`
	FloorPolicy       string  `yaml:"floor_policy" default:"proportional" validate:"oneof=proportional clamp"`
	EndScreenSeconds  float64 `yaml:"end_screen_seconds" default:"10" validate:"gt=0"`
	DurationUnit      string  `yaml:"duration_unit" default:"minutes" validate:"oneof=minutes seconds"`
}

type LibraryConfig struct {
	// Dir holds the *.txt scripts; empty means the working directory.
	Dir string `yaml:"dir"`
}

type DisplayConfig struct {
	DefaultColor  string            `yaml:"default_color" default:"#000000"`
	SpeakerColors map[string]string `yaml:"speaker_colors" default:"{\"Mona\":\"#ff0000\",\"Chrissy\":\"#0000ff\"}"`
	PaletteFile   string            `yaml:"palette_file"`
	WrapWidth     int               `yaml:"wrap_width" default:"800" validate:"gt=0"`
	FontSize      int               `yaml:"font_size" default:"24" validate:"gt=0,lte=400"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Env var names used as overrides.
const (
	EnvConfigFile       = "GTP_CONFIG"
	EnvLibraryDir       = "GTP_LIBRARY_DIR"
	EnvMinVisibleSecs   = "GTP_MIN_VISIBLE_SECONDS"
	EnvFloorPolicy      = "GTP_FLOOR_POLICY"
	EnvEndScreenSeconds = "GTP_END_SCREEN_SECONDS"
	EnvDurationUnit     = "GTP_DURATION_UNIT"
	EnvLogLevel         = applog.EnvLevel
	EnvLogFormat        = applog.EnvFormat
	EnvLogSource        = applog.EnvSource
	EnvLogFile          = applog.EnvFile
)

var validate = validator.New()

// Defaults returns the application defaults.
func Defaults() AppConfig {
	var cfg AppConfig
	// tags are static; an error here is a programming mistake caught by tests
	_ = defaults.Set(&cfg)
	return cfg
}

// ConfigPath returns the per-user config file path. GTP_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoTeleprompter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoTeleprompter")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "goteleprompter")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "goteleprompter")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), merges environment
// overrides, fills defaults and validates the result.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit path. A missing file is not an error.
func LoadFrom(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), errors.Wrapf(err, "failed to parse config file %s", path)
		}
	case !os.IsNotExist(err):
		return Defaults(), errors.Wrapf(err, "failed to read config file %s", path)
	}
	applyEnvOverrides(&cfg)
	if err := defaults.Set(&cfg); err != nil {
		return Defaults(), errors.Wrap(err, "failed to set defaults")
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return Defaults(), errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path, creating the directory.
func SaveTo(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o600), "write config")
}

// Validate checks struct constraints and color values.
func (c AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Palette().Validate()
}

func normalize(cfg *AppConfig) {
	cfg.Playback.FloorPolicy = strings.ToLower(strings.TrimSpace(cfg.Playback.FloorPolicy))
	cfg.Playback.DurationUnit = strings.ToLower(strings.TrimSpace(cfg.Playback.DurationUnit))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLibraryDir)); v != "" {
		cfg.Library.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMinVisibleSecs)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Playback.MinVisibleSeconds = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFloorPolicy)); v != "" {
		cfg.Playback.FloorPolicy = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndScreenSeconds)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Playback.EndScreenSeconds = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDurationUnit)); v != "" {
		cfg.Playback.DurationUnit = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"library.dir":                  EnvLibraryDir,
	"playback.min_visible_seconds": EnvMinVisibleSecs,
	"playback.floor_policy":        EnvFloorPolicy,
	"playback.end_screen_seconds":  EnvEndScreenSeconds,
	"playback.duration_unit":       EnvDurationUnit,
	"logging.level":                EnvLogLevel,
	"logging.format":               EnvLogFormat,
	"logging.source":               EnvLogSource,
	"logging.file":                 EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Policy returns the parsed floor policy.
func (p PlaybackConfig) Policy() pacing.Policy {
	pol, _ := pacing.ParsePolicy(p.FloorPolicy)
	return pol
}

// Unit returns the unit for bare duration numbers.
func (p PlaybackConfig) Unit() pacing.Unit {
	if p.DurationUnit == string(pacing.Seconds) {
		return pacing.Seconds
	}
	return pacing.Minutes
}

// EndScreenDelay returns how long the end screen stays up.
func (p PlaybackConfig) EndScreenDelay() time.Duration {
	return time.Duration(p.EndScreenSeconds * float64(time.Second))
}

// Palette builds the speaker palette from the display section. The palette
// file, if any, is not read here; see palette.LoadFile.
func (c AppConfig) Palette() palette.Palette {
	p := palette.Palette{Default: c.Display.DefaultColor, Speakers: map[string]string{}}
	for k, v := range c.Display.SpeakerColors {
		p.Speakers[k] = v
	}
	return p
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// ShellConfig returns the pacing part of a shell configuration. Callers add
// the scheduler, view and storage collaborators.
func (c AppConfig) ShellConfig() shell.Config {
	return shell.Config{
		DurationUnit:      c.Playback.Unit(),
		MinVisibleSeconds: c.Playback.MinVisibleSeconds,
		Policy:            c.Playback.Policy(),
		EndScreenDelay:    c.Playback.EndScreenDelay(),
	}
}
