/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package console

import (
	"context"
	"io"
	"log/slog"

	"goteleprompter/internal/clock"
	applog "goteleprompter/internal/log"
	"goteleprompter/internal/playback"
	"goteleprompter/internal/shell"
)

// Result is how a terminal run ended.
type Result struct {
	// State is the last rendered shell state.
	shell.State
	// Playback is the controller state after the run, so CurrentIndex is
	// the number of entries shown.
	Playback playback.Snapshot
}

// PlayOptions describes one terminal playback run.
type PlayOptions struct {
	Text     string
	Duration string
	Title    string

	// Shell carries collaborators and pacing settings. Scheduler and View
	// are set by Play.
	Shell shell.Config
	View  Options

	In  io.Reader
	Out io.Writer
}

// Play runs a session on a terminal and returns once the shell is back on
// the start screen, either after the end screen or because the user quit.
// Cancelling ctx stops a running session the same way quitting does.
// Validation failures are returned as errors before anything plays.
func Play(parent context.Context, opt PlayOptions) (Result, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	l := applog.WithOperation(applog.WithComponent("console"), "play")
	loop := clock.NewLoop()
	view := NewView(opt.Out, opt.View)

	var (
		final   shell.State
		running bool
		err     error
	)
	cfg := opt.Shell
	cfg.Scheduler = loop.Scheduler()
	cfg.View = shell.ViewFunc(func(s shell.State) {
		view.Render(s)
		final = s
		if s.Screen == shell.ScreenRunning || s.Screen == shell.ScreenEnd {
			running = true
		}
		if running && s.Screen == shell.ScreenStart {
			cancel()
		}
	})
	sh := shell.New(cfg, opt.Text)

	loop.Post(func() {
		if opt.Title != "" {
			sh.SetTitle(opt.Title)
		}
		if err = sh.Handle(shell.Submit{Text: opt.Text, Duration: opt.Duration}); err != nil {
			cancel()
		}
	})
	if opt.In != nil {
		// The reader may block past the end of the session; it exits with
		// the process.
		go func() {
			if rerr := ReadCommands(ctx, opt.In, func(m shell.Msg) {
				loop.Post(func() { _ = sh.Handle(m) })
			}); rerr != nil {
				l.Warn("read commands", slog.Any("err", rerr))
			}
		}()
	}
	loop.Run(ctx)
	if parent.Err() != nil && err == nil {
		// The loop has stopped, so the shell is only touched from here.
		l.Info("interrupted", slog.Any("err", parent.Err()))
		_ = sh.Handle(shell.ExitToStart{})
	}
	l.Debug("play finished", slog.String("screen", final.Screen.String()), slog.Any("reason", final.EndReason))
	return Result{State: final, Playback: sh.Playback()}, err
}
