/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "testing"

func TestParseDropsLinesWithoutColon(t *testing.T) {
	s := Parse("A: hi\nnoise\nB: bye")
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", s.Len(), s.Entries)
	}
	if s.Entries[0].Speaker != "A" || s.Entries[0].Text != "hi" {
		t.Fatalf("unexpected first entry: %+v", s.Entries[0])
	}
	if s.Entries[1].Speaker != "B" || s.Entries[1].Text != "bye" {
		t.Fatalf("unexpected second entry: %+v", s.Entries[1])
	}
	if s.Entries[0].LineNo != 1 || s.Entries[1].LineNo != 3 {
		t.Fatalf("unexpected line numbers: %d, %d", s.Entries[0].LineNo, s.Entries[1].LineNo)
	}
}

func TestParseSplitsAtFirstColonAndTrims(t *testing.T) {
	s := Parse("  Mona  :   Meet at 10:30: sharp.  \r\n\r\nChrissy:Okay")
	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
	if s.Entries[0].Speaker != "Mona" || s.Entries[0].Text != "Meet at 10:30: sharp." {
		t.Fatalf("unexpected entry: %+v", s.Entries[0])
	}
	if s.Entries[1].Speaker != "Chrissy" || s.Entries[1].Text != "Okay" {
		t.Fatalf("unexpected entry: %+v", s.Entries[1])
	}
}

func TestParseEmptyInputs(t *testing.T) {
	for _, in := range []string{"", "\n\n", "just prose\nmore prose"} {
		if s := Parse(in); !s.Empty() {
			t.Fatalf("expected empty script for %q, got %+v", in, s.Entries)
		}
	}
}

func TestParseKeepsDuplicatesAndEmptySpeaker(t *testing.T) {
	s := Parse("A: one\nA: one\n: orphan")
	if s.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", s.Len())
	}
	if s.Entries[2].Speaker != "" || s.Entries[2].Text != "orphan" {
		t.Fatalf("unexpected entry: %+v", s.Entries[2])
	}
	if got := s.Speakers(); len(got) != 2 || got[0] != "A" || got[1] != "" {
		t.Fatalf("unexpected speakers: %q", got)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	in := Parse("Mona: Hello there\nnoise line\nChrissy: Time is 10:30\nMona:")
	again := Parse(Format(in.Entries))
	if again.Len() != in.Len() {
		t.Fatalf("length changed: %d vs %d", again.Len(), in.Len())
	}
	for i := range in.Entries {
		a, b := in.Entries[i], again.Entries[i]
		if a.Speaker != b.Speaker || a.Text != b.Text {
			t.Fatalf("entry %d changed: %+v vs %+v", i, a, b)
		}
	}
}
