/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop teleprompter window. The Fyne implementation is
// compiled with -tags fyne and cgo; other builds get a stub Run.
package ui

import (
	"goteleprompter/internal/clock"
	"goteleprompter/internal/config"
	"goteleprompter/internal/palette"
	"goteleprompter/internal/shell"
	"goteleprompter/internal/storage"
)

// Options wires the window to configuration and storage.
type Options struct {
	Config  config.AppConfig
	Library *storage.Library
	// History is optional.
	History *storage.History
	Palette palette.Palette
	// Draft and Title prefill the editor, e.g. from a file given on the command line.
	Draft string
	Title string
}

// shellConfig builds the shell wiring shared by every display.
func shellConfig(opts Options, sched clock.Scheduler, view shell.View) shell.Config {
	cfg := opts.Config.ShellConfig()
	cfg.Scheduler = sched
	cfg.View = view
	cfg.Colors = opts.Palette
	lib := opts.Library
	if lib == nil {
		lib = storage.NewLibrary(opts.Config.Library.Dir)
	}
	cfg.Library = lib
	if opts.History != nil {
		cfg.History = opts.History
	}
	return cfg
}
