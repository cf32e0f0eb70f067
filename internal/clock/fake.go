/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clock

import (
	"sort"
	"time"
)

// Fake is a virtual clock for tests. Callbacks run synchronously inside
// Advance, ordered by due time and then by the order they were armed.
// It is not safe for concurrent use.
type Fake struct {
	now     time.Duration
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	f       *Fake
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

// NewFake returns a virtual clock at time zero.
func NewFake() *Fake { return &Fake{} }

// Now is the virtual time elapsed since the clock was created.
func (f *Fake) Now() time.Duration { return f.now }

// Pending counts armed, unstopped timers.
func (f *Fake) Pending() int {
	n := 0
	for _, t := range f.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	f.seq++
	t := &fakeTimer{f: f, due: f.now + d, seq: f.seq, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	for _, p := range t.f.pending {
		if p == t {
			t.stopped = true
			return true
		}
	}
	return false
}

// Advance moves time forward by d, firing every callback that becomes due,
// including ones armed by callbacks during the advance.
func (f *Fake) Advance(d time.Duration) {
	target := f.now + d
	for {
		next := f.popDue(target)
		if next == nil {
			break
		}
		f.now = next.due
		next.fn()
	}
	f.now = target
}

func (f *Fake) popDue(target time.Duration) *fakeTimer {
	live := f.pending[:0]
	for _, t := range f.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	f.pending = live
	if len(f.pending) == 0 {
		return nil
	}
	sort.SliceStable(f.pending, func(i, j int) bool {
		if f.pending[i].due != f.pending[j].due {
			return f.pending[i].due < f.pending[j].due
		}
		return f.pending[i].seq < f.pending[j].seq
	})
	first := f.pending[0]
	if first.due > target {
		return nil
	}
	f.pending = f.pending[1:]
	first.stopped = true
	return first
}
