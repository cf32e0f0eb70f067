/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package playback

import "goteleprompter/internal/script"

// Phase is the controller state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "idle"
	}
}

// EndReason says why a session ended.
type EndReason int

const (
	// Exhausted: every entry was shown for its interval.
	Exhausted EndReason = iota + 1
	// Timeout: the countdown reached zero first.
	Timeout
	// Stopped: the session was interrupted (exit to start).
	Stopped
)

func (r EndReason) String() string {
	switch r {
	case Exhausted:
		return "exhausted"
	case Timeout:
		return "timeout"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EventType identifies an Event.
type EventType int

const (
	EventEntry EventType = iota + 1
	EventRemaining
	EventPaused
	EventResumed
	EventEnded
)

// Event is delivered synchronously to the Listener from within the
// controller's callbacks. Listeners must not block.
type Event struct {
	Type EventType
	// Index and Entry are set for EventEntry.
	Index int
	Entry script.Entry
	// RemainingSeconds is set for every event.
	RemainingSeconds float64
	// Reason is set for EventEnded.
	Reason EndReason
}

// Listener receives controller events.
type Listener func(Event)
