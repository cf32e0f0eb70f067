/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package playback drives a teleprompter session: it shows entries one by one
// at a fixed interval and counts the remaining time down once per second.
//
// The controller is single-threaded. Start, TogglePause, Stop and all timer
// callbacks must run on the goroutine that owns the Scheduler's dispatcher;
// there is no locking.
package playback

import (
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"goteleprompter/internal/clock"
	applog "goteleprompter/internal/log"
	"goteleprompter/internal/pacing"
	"goteleprompter/internal/script"
)

// Errors
var (
	ErrInvalidScript   = pacing.ErrInvalidScript
	ErrInvalidDuration = pacing.ErrInvalidDuration
	ErrNotActive       = errors.New("no active playback session")
	ErrAlreadyActive   = errors.New("playback session already active")
)

const tickInterval = time.Second

// Config holds controller configuration.
type Config struct {
	Scheduler         clock.Scheduler
	MinVisibleSeconds float64
	Policy            pacing.Policy
	Listener          Listener
}

// Snapshot is a read-only view of the playback state.
type Snapshot struct {
	SessionID        string
	Phase            Phase
	CurrentIndex     int
	EntryCount       int
	RemainingSeconds float64
	Paused           bool
	Reason           EndReason
}

// Controller owns the playback state of one session at a time.
type Controller struct {
	cfg Config
	log *slog.Logger

	// Session
	sessionID string
	entries   []script.Entry
	timing    pacing.Timing
	total     float64

	// State
	phase     Phase
	index     int
	remaining float64
	reason    EndReason

	// epoch invalidates callbacks armed before the last start, pause, resume
	// or end. A callback whose epoch differs returns without side effects.
	epoch        uint64
	advanceTimer clock.Timer
	tickTimer    clock.Timer
}

// New creates an idle controller.
func New(cfg Config) *Controller {
	if cfg.Scheduler == nil {
		cfg.Scheduler = clock.Dispatching{}
	}
	return &Controller{cfg: cfg, log: applog.WithComponent("playback")}
}

// Validate reports whether s and totalSeconds can start a session.
func Validate(s script.Script, totalSeconds float64) error {
	_, err := pacing.Compute(s.Len(), totalSeconds, pacing.Options{})
	return err
}

// UserMessage renders a validation error for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return strings.Join(hints, " ")
	}
	return err.Error()
}

// Start begins a session. The first entry is shown as soon as the scheduler
// runs pending callbacks and the countdown ticks every second after that.
func (c *Controller) Start(s script.Script, totalSeconds float64) error {
	if c.phase == PhaseRunning || c.phase == PhasePaused {
		return ErrAlreadyActive
	}
	timing, err := pacing.Compute(s.Len(), totalSeconds, pacing.Options{
		MinVisibleSeconds: c.cfg.MinVisibleSeconds,
		Policy:            c.cfg.Policy,
	})
	if err != nil {
		return err
	}

	c.sessionID = uuid.NewString()
	c.entries = append([]script.Entry(nil), s.Entries...)
	c.timing = timing
	c.total = totalSeconds
	c.phase = PhaseRunning
	c.index = 0
	c.remaining = totalSeconds
	c.reason = 0
	c.epoch++

	l := applog.WithSession(c.log, c.sessionID)
	l.Info("playback started",
		slog.Int("entries", len(c.entries)),
		slog.Float64("total_seconds", totalSeconds),
		slog.Float64("interval_seconds", timing.IntervalSeconds()))
	if timing.BelowMinimum() {
		l.Warn("interval below minimum visible time",
			slog.Float64("min_visible_seconds", timing.MinVisibleSeconds),
			slog.Float64("interval_seconds", timing.IntervalSeconds()))
	}

	c.emit(Event{Type: EventRemaining})
	c.armAdvance(0)
	c.armTick()
	return nil
}

// TogglePause pauses a running session or resumes a paused one. Resuming
// shows the next entry immediately instead of waiting out the interval.
func (c *Controller) TogglePause() error {
	switch c.phase {
	case PhaseRunning:
		c.phase = PhasePaused
		c.disarm()
		c.log.Debug("playback paused", slog.String("session", c.sessionID), slog.Int("index", c.index))
		c.emit(Event{Type: EventPaused})
		return nil
	case PhasePaused:
		c.phase = PhaseRunning
		c.epoch++
		c.log.Debug("playback resumed", slog.String("session", c.sessionID), slog.Int("index", c.index))
		c.emit(Event{Type: EventResumed})
		c.armTick()
		c.advance(c.epoch)
		return nil
	default:
		return ErrNotActive
	}
}

// Stop interrupts the session. It is a no-op when nothing is playing.
func (c *Controller) Stop() {
	if c.phase != PhaseRunning && c.phase != PhasePaused {
		return
	}
	c.end(Stopped)
}

// State returns a snapshot of the playback state.
func (c *Controller) State() Snapshot {
	return Snapshot{
		SessionID:        c.sessionID,
		Phase:            c.phase,
		CurrentIndex:     c.index,
		EntryCount:       len(c.entries),
		RemainingSeconds: c.remaining,
		Paused:           c.phase == PhasePaused,
		Reason:           c.reason,
	}
}

// Timing returns the timing of the current or last session.
func (c *Controller) Timing() pacing.Timing { return c.timing }

// TotalSeconds returns the requested duration of the current or last session.
func (c *Controller) TotalSeconds() float64 { return c.total }

// SessionID returns the id of the current or last session.
func (c *Controller) SessionID() string { return c.sessionID }

func (c *Controller) armAdvance(d time.Duration) {
	epoch := c.epoch
	c.advanceTimer = c.cfg.Scheduler.AfterFunc(d, func() { c.advance(epoch) })
}

func (c *Controller) armTick() {
	epoch := c.epoch
	c.tickTimer = c.cfg.Scheduler.AfterFunc(tickInterval, func() { c.tick(epoch) })
}

func (c *Controller) disarm() {
	c.epoch++
	if c.advanceTimer != nil {
		c.advanceTimer.Stop()
		c.advanceTimer = nil
	}
	if c.tickTimer != nil {
		c.tickTimer.Stop()
		c.tickTimer = nil
	}
}

func (c *Controller) advance(epoch uint64) {
	if epoch != c.epoch || c.phase != PhaseRunning {
		return
	}
	if c.index >= len(c.entries) {
		c.end(Exhausted)
		return
	}
	idx := c.index
	e := c.entries[idx]
	c.index++
	c.log.Debug("entry shown", slog.String("session", c.sessionID), slog.Int("index", idx), slog.String("speaker", e.Speaker))
	c.emit(Event{Type: EventEntry, Index: idx, Entry: e})
	// Re-check: a listener may have stopped the session.
	if epoch != c.epoch || c.phase != PhaseRunning {
		return
	}
	c.armAdvance(c.timing.Interval())
}

func (c *Controller) tick(epoch uint64) {
	if epoch != c.epoch || c.phase != PhaseRunning {
		return
	}
	c.remaining--
	c.emit(Event{Type: EventRemaining})
	if epoch != c.epoch || c.phase != PhaseRunning {
		return
	}
	if c.remaining <= 0 {
		c.end(Timeout)
		return
	}
	c.armTick()
}

func (c *Controller) end(reason EndReason) {
	c.disarm()
	c.phase = PhaseEnded
	c.reason = reason
	c.log.Info("playback ended",
		slog.String("session", c.sessionID),
		slog.String("reason", reason.String()),
		slog.Int("shown", c.index),
		slog.Int("entries", len(c.entries)),
		slog.Float64("remaining_seconds", c.remaining))
	c.emit(Event{Type: EventEnded, Reason: reason})
}

func (c *Controller) emit(ev Event) {
	ev.RemainingSeconds = c.remaining
	if c.cfg.Listener != nil {
		c.cfg.Listener(ev)
	}
}
