/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"goteleprompter/internal/pacing"
	"goteleprompter/internal/palette"
	"goteleprompter/internal/script"
)

func testSheet(t *testing.T, n int) Sheet {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("Mona: line of dialogue that goes on for a while so it wraps inside the text column\n")
	}
	sc := script.Parse(b.String())
	tm, err := pacing.Compute(sc.Len(), 60*float64(n), pacing.Options{})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	return Sheet{Title: "Scene One", Script: sc, Timing: tm, Palette: palette.Default()}
}

func TestCueSheetPDF_WritesDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := CueSheetPDF(&buf, testSheet(t, 3)); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatalf("not a pdf: %q", out[:10])
	}
	for _, want := range []string{"Scene One", "00:00", "01:00", "02:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("pdf missing %q", want)
		}
	}
}

func TestCueSheetPDF_ManyEntriesPaginate(t *testing.T) {
	var buf bytes.Buffer
	if err := CueSheetPDF(&buf, testSheet(t, 80)); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if pages := strings.Count(out, "/Type /Page") - strings.Count(out, "/Type /Pages"); pages < 2 {
		t.Fatal("expected more than one page")
	}
}

func TestCueSheetPDF_RejectsEmpty(t *testing.T) {
	if err := CueSheetPDF(&bytes.Buffer{}, Sheet{}); err == nil {
		t.Fatal("expected error for empty script")
	}
}

func TestCueSheetFile_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "cues.pdf")
	if err := CueSheetFile(out, testSheet(t, 2)); err != nil {
		t.Fatalf("export: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf file empty")
	}
}

func TestClockString(t *testing.T) {
	if got := clockString(125 * time.Second); got != "02:05" {
		t.Fatalf("got %q", got)
	}
}
