/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shell is the teleprompter's navigation state machine. A display
// (Fyne window or terminal) sends messages to Handle and renders the State it
// receives back; the shell owns the playback controller and the screen flow
// Start -> Running -> End -> Start, with Create and Load as side screens.
//
// Like the controller, a Shell must only be used from the dispatcher
// goroutine of its Scheduler.
package shell

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"goteleprompter/internal/clock"
	applog "goteleprompter/internal/log"
	"goteleprompter/internal/pacing"
	"goteleprompter/internal/playback"
	"goteleprompter/internal/script"
	"goteleprompter/internal/storage"
)

// Screen is the visible screen.
type Screen int

const (
	ScreenStart Screen = iota
	ScreenCreate
	ScreenLoad
	ScreenRunning
	ScreenEnd
)

func (s Screen) String() string {
	switch s {
	case ScreenCreate:
		return "create"
	case ScreenLoad:
		return "load"
	case ScreenRunning:
		return "running"
	case ScreenEnd:
		return "end"
	default:
		return "start"
	}
}

// EndOfScript is shown once a session runs out of lines or time.
const EndOfScript = "End of Script"

// DefaultEndScreenDelay is how long the end screen stays before returning to start.
const DefaultEndScreenDelay = 10 * time.Second

// Library is the script storage collaborator.
type Library interface {
	Save(text, title string) error
	List() ([]string, error)
	Load(name string) (string, error)
}

// Recorder stores finished sessions.
type Recorder interface {
	Record(ctx context.Context, s storage.Session) error
}

// Colors maps a speaker to a display color.
type Colors interface {
	Color(speaker string) color.NRGBA
}

// View renders shell state.
type View interface {
	Render(State)
}

// ViewFunc adapts a function to View.
type ViewFunc func(State)

func (f ViewFunc) Render(s State) { f(s) }

// Line is the prompt currently on screen.
type Line struct {
	Speaker string
	Text    string
	Color   color.NRGBA
}

// Label renders the line as "Speaker: text", or just the text without a speaker.
func (l Line) Label() string {
	if l.Speaker == "" {
		return l.Text
	}
	return l.Speaker + ": " + l.Text
}

// State is everything a display needs to draw the current screen.
type State struct {
	Screen       Screen
	Draft        string
	DurationText string
	Title        string
	Message      string
	Files        []string

	Line      Line
	Index     int
	Count     int
	Remaining string
	Paused    bool
	EndReason playback.EndReason
}

// Config wires the shell to its collaborators. Only Scheduler and Library are required.
type Config struct {
	Scheduler         clock.Scheduler
	Library           Library
	History           Recorder
	Colors            Colors
	View              View
	DurationUnit      pacing.Unit
	MinVisibleSeconds float64
	Policy            pacing.Policy
	EndScreenDelay    time.Duration
	Now               func() time.Time
}

// Shell is the application state machine.
type Shell struct {
	cfg   Config
	log   *slog.Logger
	ctrl  *playback.Controller
	state State

	started  time.Time
	epoch    uint64
	endTimer clock.Timer
}

// New creates a shell on the start screen with an optional initial draft.
func New(cfg Config, draft string) *Shell {
	if cfg.Scheduler == nil {
		cfg.Scheduler = clock.Dispatching{}
	}
	if cfg.EndScreenDelay <= 0 {
		cfg.EndScreenDelay = DefaultEndScreenDelay
	}
	if cfg.DurationUnit == "" {
		cfg.DurationUnit = pacing.Minutes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Shell{cfg: cfg, log: applog.WithComponent("shell")}
	s.ctrl = playback.New(playback.Config{
		Scheduler:         cfg.Scheduler,
		MinVisibleSeconds: cfg.MinVisibleSeconds,
		Policy:            cfg.Policy,
		Listener:          s.onPlayback,
	})
	s.state = State{Screen: ScreenStart, Draft: draft}
	return s
}

// State returns the current state.
func (s *Shell) State() State { return s.state }

// Playback exposes the controller for read-only inspection.
func (s *Shell) Playback() playback.Snapshot { return s.ctrl.State() }

// SetTitle names the draft for history records, as if it had been opened
// from the library.
func (s *Shell) SetTitle(title string) { s.state.Title = title }

// Refresh re-renders the current state.
func (s *Shell) Refresh() { s.render() }

// Handle applies a user command. Validation problems are reported in
// State.Message and returned; the screen does not change.
func (s *Shell) Handle(msg Msg) error {
	from := s.state.Screen
	err := s.handle(msg)
	if err != nil {
		s.state.Message = playback.UserMessage(err)
		s.log.Warn("command rejected", slog.String("cmd", fmt.Sprintf("%T", msg)), slog.String("screen", from.String()), slog.Any("err", err))
	} else if s.state.Screen != from {
		s.log.Debug("screen changed", slog.String("from", from.String()), slog.String("to", s.state.Screen.String()))
	}
	s.render()
	return err
}

func (s *Shell) handle(msg Msg) error {
	switch m := msg.(type) {
	case ShowStart:
		if s.state.Screen != ScreenCreate && s.state.Screen != ScreenLoad {
			return nil
		}
		s.goStart("")
		return nil
	case ShowCreate:
		if s.state.Screen != ScreenStart {
			return nil
		}
		s.state.Draft = m.Text
		s.state.Message = ""
		s.state.Screen = ScreenCreate
		return nil
	case ShowLoad:
		if s.state.Screen != ScreenStart {
			return nil
		}
		files, err := s.cfg.Library.List()
		if err != nil {
			return errors.WithHint(err, "Could not list saved scripts.")
		}
		s.state.Files = files
		s.state.Message = ""
		s.state.Screen = ScreenLoad
		return nil
	case Submit:
		return s.submit(m)
	case TogglePause:
		if s.state.Screen != ScreenRunning {
			return nil
		}
		return s.ctrl.TogglePause()
	case ExitToStart:
		switch s.state.Screen {
		case ScreenRunning:
			s.ctrl.Stop()
			s.goStart("")
		case ScreenEnd:
			s.goStart("")
		}
		return nil
	case SaveScript:
		return s.save(m)
	case OpenScript:
		return s.open(m)
	case Dismiss:
		if s.state.Screen == ScreenEnd {
			s.goStart("")
		}
		return nil
	default:
		return fmt.Errorf("unknown message %T", msg)
	}
}

func (s *Shell) submit(m Submit) error {
	if s.state.Screen != ScreenStart {
		return nil
	}
	text := strings.TrimSpace(m.Text)
	s.state.Draft = text
	s.state.DurationText = m.Duration

	sc := script.Parse(text)
	if sc.Empty() {
		return errors.WithHint(playback.ErrInvalidScript,
			"Invalid dialogue format. Please ensure each line is 'Speaker: Dialogue'.")
	}
	seconds, err := pacing.ParseDuration(m.Duration, s.cfg.DurationUnit)
	if err != nil {
		return err
	}

	s.cancelEndTimer()
	s.state.Message = ""
	s.state.Line = Line{}
	s.state.Index = 0
	s.state.Count = sc.Len()
	s.state.Paused = false
	s.state.EndReason = 0
	s.state.Screen = ScreenRunning
	s.started = s.cfg.Now()
	if err := s.ctrl.Start(sc, seconds); err != nil {
		s.state.Screen = ScreenStart
		return err
	}
	return nil
}

func (s *Shell) save(m SaveScript) error {
	if s.state.Screen != ScreenCreate {
		return nil
	}
	title := strings.TrimSpace(m.Title)
	s.state.Draft = m.Text
	if err := s.cfg.Library.Save(m.Text, title); err != nil {
		return errors.WithHint(err, "Could not save the script.")
	}
	s.log.Info("script saved", slog.String("title", title))
	s.goStart(fmt.Sprintf("Saved %s.txt", title))
	s.state.Title = title
	return nil
}

func (s *Shell) open(m OpenScript) error {
	if s.state.Screen != ScreenLoad {
		return nil
	}
	text, err := s.cfg.Library.Load(m.Name)
	if err != nil {
		return errors.WithHint(err, "Could not open the script.")
	}
	s.state.Draft = text
	s.state.Title = strings.TrimSuffix(m.Name, storage.ScriptExt)
	s.goStart("")
	return nil
}

func (s *Shell) goStart(message string) {
	s.cancelEndTimer()
	s.state.Screen = ScreenStart
	s.state.Message = message
	s.state.Files = nil
	s.state.Paused = false
}

func (s *Shell) cancelEndTimer() {
	s.epoch++
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
}

func (s *Shell) onPlayback(ev playback.Event) {
	s.state.Remaining = pacing.FormatRemaining(ev.RemainingSeconds)
	switch ev.Type {
	case playback.EventEntry:
		s.state.Index = ev.Index
		s.state.Line = Line{Speaker: ev.Entry.Speaker, Text: ev.Entry.Text, Color: s.colorOf(ev.Entry.Speaker)}
	case playback.EventPaused:
		s.state.Paused = true
	case playback.EventResumed:
		s.state.Paused = false
	case playback.EventEnded:
		s.record(ev.Reason)
		s.state.EndReason = ev.Reason
		s.state.Paused = false
		if ev.Reason == playback.Stopped {
			// ExitToStart moves the screen itself.
			return
		}
		s.state.Screen = ScreenEnd
		s.state.Line = Line{Text: EndOfScript, Color: s.colorOf("")}
		s.armEndTimer()
	}
	// Playback events arrive from timer callbacks as well as from Handle;
	// Handle renders on its own.
	if ev.Type != playback.EventEnded || ev.Reason != playback.Stopped {
		s.render()
	}
}

func (s *Shell) armEndTimer() {
	s.cancelEndTimer()
	epoch := s.epoch
	s.endTimer = s.cfg.Scheduler.AfterFunc(s.cfg.EndScreenDelay, func() {
		if epoch != s.epoch || s.state.Screen != ScreenEnd {
			return
		}
		s.goStart("")
		s.render()
	})
}

func (s *Shell) record(reason playback.EndReason) {
	if s.cfg.History == nil {
		return
	}
	snap := s.ctrl.State()
	timing := s.ctrl.Timing()
	sess := storage.Session{
		ID:              snap.SessionID,
		Title:           s.state.Title,
		Entries:         snap.EntryCount,
		Shown:           snap.CurrentIndex,
		TotalSeconds:    s.ctrl.TotalSeconds(),
		IntervalSeconds: timing.IntervalSeconds(),
		Reason:          reason.String(),
		StartedAt:       s.started,
		EndedAt:         s.cfg.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cfg.History.Record(ctx, sess); err != nil {
		s.log.Warn("record session failed", slog.String("session", sess.ID), slog.Any("err", err))
	}
}

func (s *Shell) colorOf(speaker string) color.NRGBA {
	if s.cfg.Colors == nil {
		return color.NRGBA{A: 0xff}
	}
	return s.cfg.Colors.Color(speaker)
}

func (s *Shell) render() {
	if s.cfg.View != nil {
		s.cfg.View.Render(s.state)
	}
}
