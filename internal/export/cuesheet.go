/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders scripts into printable artifacts.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jung-kurt/gofpdf"

	"goteleprompter/internal/pacing"
	"goteleprompter/internal/palette"
	"goteleprompter/internal/script"
)

// Sheet is the input to CueSheetPDF.
type Sheet struct {
	Title   string
	Script  script.Script
	Timing  pacing.Timing
	Palette palette.Palette
	// Compress toggles stream compression. Off keeps the text greppable.
	Compress bool
}

const (
	marginMM  = 10.0
	rowHeight = 6.0
	colTime   = 22.0
	colSpeak  = 38.0
)

// CueSheetPDF writes an A4 cue sheet listing every entry with its scheduled
// start offset. The speaker column uses the palette color.
func CueSheetPDF(w io.Writer, s Sheet) error {
	if s.Script.Empty() {
		return errors.New("cue sheet needs at least one entry")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(s.Compress)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(false, marginMM)
	pdf.SetTitle(s.Title, true)
	pdf.SetAuthor("goteleprompter", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	colText := pageW - 2*marginMM - colTime - colSpeak
	offsets := pacing.Schedule(s.Script.Len(), s.Timing)
	n := s.Script.Len()

	header := func() {
		pdf.AddPage()
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(s.Title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		total := time.Duration(float64(n) * s.Timing.IntervalSeconds() * float64(time.Second))
		pdf.CellFormat(0, 5, fmt.Sprintf("%d entries, %.1fs each, %s total", n, s.Timing.IntervalSeconds(), clockString(total)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(colTime, rowHeight, "Start", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colSpeak, rowHeight, "Speaker", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colText, rowHeight, "Text", "1", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	header()

	for i, e := range s.Script.Entries {
		lines := pdf.SplitLines([]byte(tr(e.Text)), colText-2)
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}
		h := rowHeight * float64(len(lines))
		if pdf.GetY()+h > pageH-marginMM {
			header()
		}
		x, y := pdf.GetXY()
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(colTime, h, clockString(offsets[i]), "1", 0, "L", false, 0, "")
		c := s.Palette.Color(e.Speaker)
		pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
		pdf.CellFormat(colSpeak, h, tr(e.Speaker), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Rect(x+colTime+colSpeak, y, colText, h, "D")
		for j, ln := range lines {
			pdf.SetXY(x+colTime+colSpeak, y+float64(j)*rowHeight)
			pdf.CellFormat(colText, rowHeight, string(ln), "", 0, "L", false, 0, "")
		}
		pdf.SetXY(x, y+h)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

// CueSheetFile writes the cue sheet to path, creating its directory.
func CueSheetFile(path string, s Sheet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "ensure out dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create pdf")
	}
	if err := CueSheetPDF(f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return errors.Wrap(f.Close(), "close pdf")
}

func clockString(d time.Duration) string {
	sec := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
