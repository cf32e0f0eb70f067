/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package console is the terminal display for the teleprompter shell. It
// prints each prompt as it appears, a countdown line and the end banner, and
// turns typed commands into shell messages.
package console

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"goteleprompter/internal/shell"
	"goteleprompter/internal/textlayout"
)

// View renders shell.State to a writer. It only prints what changed since the
// previous Render so a ticking countdown does not repeat the prompt.
type View struct {
	w       io.Writer
	columns int
	ansi    bool

	rendered bool
	last     shell.State
}

// Options configures a View.
type Options struct {
	// WrapWidth and FontSize describe the desktop prompt area in pixels; the
	// view maps them onto character columns.
	WrapWidth int
	FontSize  int
	// ANSI enables 24-bit color escapes for speaker colors.
	ANSI bool
}

// NewView creates a view writing to w.
func NewView(w io.Writer, opt Options) *View {
	width := float64(opt.WrapWidth)
	if width <= 0 {
		width = textlayout.DefaultWidth
	}
	size := float64(opt.FontSize)
	if size <= 0 {
		size = 24
	}
	cols := textlayout.Columns(width, size)
	if cols < 20 {
		cols = 20
	}
	return &View{w: w, columns: cols, ansi: opt.ANSI}
}

// Columns is the wrap width in characters.
func (v *View) Columns() int { return v.columns }

// Render implements shell.View.
func (v *View) Render(s shell.State) {
	prev := v.last
	first := !v.rendered
	v.rendered = true
	v.last = s

	if s.Message != "" && (first || s.Message != prev.Message) {
		fmt.Fprintf(v.w, "! %s\n", s.Message)
	}
	changed := first || s.Screen != prev.Screen
	switch s.Screen {
	case shell.ScreenStart:
		if changed && !first {
			fmt.Fprintln(v.w, "-- start --")
		}
	case shell.ScreenCreate:
		if changed {
			fmt.Fprintln(v.w, "-- save script --")
		}
	case shell.ScreenLoad:
		if changed {
			fmt.Fprintln(v.w, "-- saved scripts --")
			for _, f := range s.Files {
				fmt.Fprintf(v.w, "  %s\n", f)
			}
		}
	case shell.ScreenRunning:
		if s.Line.Text != "" && (changed || s.Index != prev.Index || s.Line != prev.Line) {
			v.printLine(s.Line, fmt.Sprintf("[%d/%d] ", s.Index+1, s.Count))
		}
		if s.Paused != prev.Paused && !changed {
			if s.Paused {
				fmt.Fprintln(v.w, "-- paused (p to resume) --")
			} else {
				fmt.Fprintln(v.w, "-- resumed --")
			}
		}
		if s.Remaining != "" && s.Remaining != prev.Remaining {
			fmt.Fprintf(v.w, "Time left: %s\n", s.Remaining)
		}
	case shell.ScreenEnd:
		if changed {
			v.printLine(s.Line, "")
		}
	}
}

func (v *View) printLine(l shell.Line, prefix string) {
	lines := wrapColumns(l.Label(), v.columns-len(prefix))
	indent := strings.Repeat(" ", len(prefix))
	for i, ln := range lines {
		lead := indent
		if i == 0 {
			lead = prefix
		}
		fmt.Fprintf(v.w, "%s%s\n", lead, v.paint(ln, l.Color))
	}
}

func (v *View) paint(s string, c color.NRGBA) string {
	if !v.ansi || c.A == 0 {
		return s
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, s)
}

// wrapColumns wraps on a monospace grid using the basicfont measurer, where
// one glyph is one column.
func wrapColumns(text string, cols int) []string {
	if cols < 1 {
		cols = 1
	}
	return textlayout.Wrap(textlayout.Basic{}, text, float64(cols*glyphWidth))
}

// glyphWidth is the advance of basicfont.Face7x13 at its native size.
const glyphWidth = 7
