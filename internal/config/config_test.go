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
	"testing"
	"time"

	"goteleprompter/internal/pacing"
)

// isolate points the config path at a temp file and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Playback.MinVisibleSeconds != 5 || cfg.Playback.EndScreenSeconds != 10 {
		t.Fatalf("playback defaults: %#v", cfg.Playback)
	}
	if cfg.Playback.Policy() != pacing.Proportional || cfg.Playback.Unit() != pacing.Minutes {
		t.Fatalf("policy/unit defaults: %#v", cfg.Playback)
	}
	if cfg.Display.WrapWidth != 800 || cfg.Display.SpeakerColors["Mona"] != "#ff0000" || cfg.Display.SpeakerColors["Chrissy"] != "#0000ff" {
		t.Fatalf("display defaults: %#v", cfg.Display)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ConfigVersion != 1 || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected %#v", cfg)
	}
}

func TestLoadFileFillsUnsetFields(t *testing.T) {
	path := isolate(t)
	data := []byte("playback:\n  floor_policy: Clamp\n  duration_unit: seconds\ndisplay:\n  wrap_width: 400\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Playback.Policy() != pacing.Clamp || cfg.Playback.Unit() != pacing.Seconds {
		t.Fatalf("file values not applied: %#v", cfg.Playback)
	}
	if cfg.Display.WrapWidth != 400 || cfg.Playback.MinVisibleSeconds != 5 {
		t.Fatalf("merge wrong: %#v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := isolate(t)
	for _, doc := range []string{
		"playback:\n  floor_policy: sometimes\n",
		"display:\n  default_color: mauve-ish\n",
		"playback: [1, 2]\n",
	} {
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for %q", doc)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLibraryDir, "/tmp/scripts")
	t.Setenv(EnvMinVisibleSecs, "3")
	t.Setenv(EnvEndScreenSeconds, "2.5")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Library.Dir != "/tmp/scripts" || cfg.Playback.MinVisibleSeconds != 3 {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Playback.EndScreenDelay() != 2500*time.Millisecond {
		t.Fatalf("end delay %v", cfg.Playback.EndScreenDelay())
	}
	if o := cfg.LogOptions(); o.Format != "json" || !o.AddSource {
		t.Fatalf("log options %#v", o)
	}
	if name, ok := EnvOverrideFor("library.dir"); !ok || name != EnvLibraryDir {
		t.Fatalf("EnvOverrideFor = %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("display.wrap_width"); ok {
		t.Fatal("wrap_width has no env override")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Display.SpeakerColors["Joe"] = "green"
	cfg.Playback.FloorPolicy = "clamp"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Display.SpeakerColors["Joe"] != "green" || got.Playback.Policy() != pacing.Clamp {
		t.Fatalf("round trip lost values: %#v", got)
	}
	if got.Palette().Hex("Joe") != "green" || got.Palette().Hex("Nobody") != "#000000" {
		t.Fatalf("palette %#v", got.Palette())
	}

	cfg.Logging.Format = "xml"
	if err := Save(cfg); err == nil {
		t.Fatal("expected invalid config to be refused")
	}
}

func TestShellConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Playback.FloorPolicy = "clamp"
	sc := cfg.ShellConfig()
	if sc.Policy != pacing.Clamp || sc.MinVisibleSeconds != 5 || sc.EndScreenDelay != 10*time.Second || sc.DurationUnit != pacing.Minutes {
		t.Fatalf("shell config %#v", sc)
	}
}
