/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"
	"testing"
)

func TestWrapFitsWidth(t *testing.T) {
	m := Basic{SizePx: 13}
	lines := Wrap(m, "Hello world from Go", 50)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %v", lines)
	}
	for _, l := range lines {
		if strings.Contains(l, " ") && m.Width(l) > 50 {
			t.Fatalf("line %q is %v px wide", l, m.Width(l))
		}
	}
	if got := strings.Join(lines, " "); got != "Hello world from Go" {
		t.Fatalf("words lost: %q", got)
	}
}

func TestWrapKeepsNewlinesAndLongWords(t *testing.T) {
	lines := Wrap(Basic{}, "a\nsupercalifragilistic b", 35)
	if lines[0] != "a" || lines[1] != "supercalifragilistic" || lines[2] != "b" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestWrapDisabled(t *testing.T) {
	lines := Wrap(nil, "one two three", 0)
	if len(lines) != 1 || lines[0] != "one two three" {
		t.Fatalf("unexpected %q", lines)
	}
}

func TestScaleAndColumns(t *testing.T) {
	small := Basic{SizePx: 13}.Width("ABC")
	big := Basic{SizePx: 26}.Width("ABC")
	if small != 21 || big != 42 {
		t.Fatalf("widths small=%v big=%v", small, big)
	}
	if c := Columns(70, 13); c != 10 {
		t.Fatalf("columns=%d", c)
	}
	if (Basic{SizePx: 26}).LineHeight() <= (Basic{}).LineHeight() {
		t.Fatal("line height should scale")
	}
}
