/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clock schedules deferred callbacks for the single-threaded playback
// and shell state machines. Callbacks never run concurrently with each other
// as long as every caller goes through the same dispatcher.
package clock

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from being dispatched. It reports whether
	// the call stopped the timer; a callback already handed to the dispatcher
	// still runs, so callers guard their callbacks with their own token.
	Stop() bool
}

// Scheduler arms deferred callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Dispatching schedules with real timers and hands fired callbacks to
// Dispatch, which must run them one at a time on the owning goroutine
// (fyne.Do for the desktop UI, Loop.Post for the terminal).
type Dispatching struct {
	Dispatch func(func())
}

func (s Dispatching) AfterFunc(d time.Duration, fn func()) Timer {
	dispatch := s.Dispatch
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return time.AfterFunc(d, func() { dispatch(fn) })
}

// Loop is a minimal event loop: Post enqueues work, Run executes it in order
// on the calling goroutine until ctx is done.
type Loop struct {
	q    chan func()
	once sync.Once
	done chan struct{}
}

// NewLoop creates a loop with a bounded queue.
func NewLoop() *Loop {
	return &Loop{q: make(chan func(), 64), done: make(chan struct{})}
}

// Post enqueues fn. It blocks while the queue is full and drops fn once the
// loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.q <- fn:
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.q:
			fn()
		}
	}
}

// Scheduler returns a Scheduler whose callbacks run on this loop.
func (l *Loop) Scheduler() Scheduler { return Dispatching{Dispatch: l.Post} }
