/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pacing derives how long each dialogue entry stays on screen.
// Every entry gets the same interval: a fixed minimum visible time plus an
// equal share of whatever is left of the total duration.
package pacing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultMinVisibleSeconds is the per-entry minimum visible time.
const DefaultMinVisibleSeconds = 5.0

// MaxDurationSeconds caps a session so every interval fits in a time.Duration.
const MaxDurationSeconds = 24 * 60 * 60.0

var (
	// ErrInvalidScript reports a script without any "Speaker: Text" line.
	ErrInvalidScript = errors.New("invalid script")
	// ErrInvalidDuration reports a duration that is not a positive number
	// or exceeds MaxDurationSeconds.
	ErrInvalidDuration = errors.New("invalid duration")
)

// Policy decides what happens when the total duration cannot give every entry
// its minimum visible time.
type Policy int

const (
	// Proportional shrinks every interval below the minimum: extra goes negative
	// and the session still fits the requested total.
	Proportional Policy = iota
	// Clamp keeps the minimum as a true floor (extra never below zero); the
	// countdown then ends the session before the script is exhausted.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Clamp:
		return "clamp"
	default:
		return "proportional"
	}
}

// ParsePolicy maps a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "proportional":
		return Proportional, nil
	case "clamp", "floor":
		return Clamp, nil
	}
	return Proportional, fmt.Errorf("unknown floor policy %q", s)
}

// Options tunes Compute. A zero MinVisibleSeconds means DefaultMinVisibleSeconds.
type Options struct {
	MinVisibleSeconds float64
	Policy            Policy
}

// Timing is computed once per playback session.
type Timing struct {
	MinVisibleSeconds    float64
	ExtraPerEntrySeconds float64
}

// IntervalSeconds is the time each entry stays on screen.
func (t Timing) IntervalSeconds() float64 { return t.MinVisibleSeconds + t.ExtraPerEntrySeconds }

// Interval is IntervalSeconds as a time.Duration.
func (t Timing) Interval() time.Duration {
	return time.Duration(t.IntervalSeconds() * float64(time.Second))
}

// BelowMinimum reports whether entries are shown for less than the minimum.
func (t Timing) BelowMinimum() bool { return t.ExtraPerEntrySeconds < 0 }

// Compute spreads totalSeconds over entryCount entries:
//
//	extra = (total - minVisible*count) / count
//
// so that minVisible+extra == total/count under the Proportional policy.
func Compute(entryCount int, totalSeconds float64, opt Options) (Timing, error) {
	if entryCount <= 0 {
		return Timing{}, errors.WithHint(ErrInvalidScript, "Enter at least one line in the form 'Speaker: Dialogue'.")
	}
	if err := checkSeconds(totalSeconds); err != nil {
		return Timing{}, err
	}
	minVisible := opt.MinVisibleSeconds
	if minVisible <= 0 {
		minVisible = DefaultMinVisibleSeconds
	}
	if err := checkSeconds(minVisible); err != nil {
		return Timing{}, errors.Wrap(err, "minimum visible time")
	}
	n := float64(entryCount)
	extra := (totalSeconds - minVisible*n) / n
	if opt.Policy == Clamp && extra < 0 {
		extra = 0
	}
	return Timing{MinVisibleSeconds: minVisible, ExtraPerEntrySeconds: extra}, nil
}

// Schedule returns the offset from session start at which each entry appears.
func Schedule(entryCount int, t Timing) []time.Duration {
	if entryCount <= 0 {
		return nil
	}
	out := make([]time.Duration, entryCount)
	step := t.IntervalSeconds()
	for i := range out {
		out[i] = time.Duration(float64(i) * step * float64(time.Second))
	}
	return out
}

// Unit is the unit of a bare number typed as a duration.
type Unit string

const (
	Minutes Unit = "minutes"
	Seconds Unit = "seconds"
)

// ParseDuration reads a total duration typed by the user and returns seconds.
// A bare number ("2", "1.5") is taken in unit; otherwise a Go duration literal
// ("90s", "2m30s") is accepted.
func ParseDuration(text string, unit Unit) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, errors.WithHint(ErrInvalidDuration, "Please enter a numeric value for the duration.")
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if unit != Seconds {
			v *= 60
		}
		if err := checkSeconds(v); err != nil {
			return 0, err
		}
		return v, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WithHint(errors.Wrapf(ErrInvalidDuration, "parse %q", s),
			"Please enter a numeric value for the duration.")
	}
	v := d.Seconds()
	if err := checkSeconds(v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkSeconds(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errors.WithHint(errors.Wrapf(ErrInvalidDuration, "%v seconds", v),
			"The duration must be greater than zero.")
	}
	if v > MaxDurationSeconds {
		return errors.WithHint(errors.Wrapf(ErrInvalidDuration, "%v seconds exceeds %v", v, MaxDurationSeconds),
			"The duration must be at most 24 hours.")
	}
	return nil
}

// FormatRemaining renders seconds as "{minutes}m {seconds}s".
// Fractions are truncated and negative values are shown as zero.
func FormatRemaining(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole := int64(seconds)
	return fmt.Sprintf("%dm %ds", whole/60, whole%60)
}
