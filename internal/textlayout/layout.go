/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout breaks prompt text into lines that fit a pixel width.
// Measurement uses the fixed basicfont face scaled to the requested size, so
// results are deterministic across platforms and in tests.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DefaultWidth matches the prompt area width of the desktop window.
const DefaultWidth = 800

// baseSize is the pixel height of basicfont.Face7x13.
const baseSize = 13

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Width(s string) float64
}

// Basic measures with basicfont.Face7x13 scaled to SizePx.
type Basic struct {
	SizePx float64
}

func (b Basic) scale() float64 {
	if b.SizePx <= 0 {
		return 1
	}
	return b.SizePx / baseSize
}

func (b Basic) Width(s string) float64 {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return float64(d.MeasureString(s)>>6) * b.scale()
}

// LineHeight returns the scaled line height in pixels.
func (b Basic) LineHeight() float64 {
	return float64(basicfont.Face7x13.Metrics().Height.Round()) * b.scale()
}

// Wrap breaks text on spaces so no line exceeds maxWidth pixels. Existing
// newlines are kept. A single word wider than maxWidth gets a line of its
// own. maxWidth <= 0 disables wrapping.
func Wrap(m Measurer, text string, maxWidth float64) []string {
	if m == nil {
		m = Basic{}
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 || maxWidth <= 0 {
			out = append(out, strings.TrimSpace(para))
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if m.Width(next) > maxWidth {
				out = append(out, cur)
				cur = w
				continue
			}
			cur = next
		}
		out = append(out, cur)
	}
	return out
}

// Columns returns how many basicfont glyphs of sizePx fit in maxWidth.
// Used by the terminal view to map pixel widths onto character cells.
func Columns(maxWidth, sizePx float64) int {
	adv, ok := basicfont.Face7x13.GlyphAdvance('M')
	if !ok {
		return 0
	}
	w := float64(adv>>6) * Basic{SizePx: sizePx}.scale()
	if w <= 0 {
		return 0
	}
	return int(maxWidth / w)
}
