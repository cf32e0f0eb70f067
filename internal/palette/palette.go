/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package palette maps speaker names to display colors.
package palette

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed palette.schema.json
var schemaJSON []byte

// ErrInvalidColor is returned by ParseHex for unknown color strings.
var ErrInvalidColor = errors.New("invalid color")

var named = map[string]color.NRGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"magenta": {255, 0, 255, 255},
	"cyan":    {0, 255, 255, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
}

// Palette holds per-speaker colors. Speakers not listed use Default.
type Palette struct {
	Default  string            `json:"default,omitempty"`
	Speakers map[string]string `json:"speakers,omitempty"`
}

// Default returns the built-in palette.
func Default() Palette {
	return Palette{
		Default:  "#000000",
		Speakers: map[string]string{"Mona": "#ff0000", "Chrissy": "#0000ff"},
	}
}

// Hex returns the configured color string for speaker.
func (p Palette) Hex(speaker string) string {
	if h, ok := p.Speakers[speaker]; ok && h != "" {
		return h
	}
	if p.Default == "" {
		return "#000000"
	}
	return p.Default
}

// Color resolves the speaker's color. Unparseable entries fall back to the
// default, and then to black.
func (p Palette) Color(speaker string) color.NRGBA {
	if c, err := ParseHex(p.Hex(speaker)); err == nil {
		return c
	}
	if c, err := ParseHex(p.Default); err == nil {
		return c
	}
	return named["black"]
}

// Merge returns a copy of p with other's entries applied on top.
func (p Palette) Merge(other Palette) Palette {
	out := Palette{Default: p.Default, Speakers: make(map[string]string, len(p.Speakers)+len(other.Speakers))}
	for k, v := range p.Speakers {
		out.Speakers[k] = v
	}
	for k, v := range other.Speakers {
		out.Speakers[k] = v
	}
	if other.Default != "" {
		out.Default = other.Default
	}
	return out
}

// Validate checks that every color parses.
func (p Palette) Validate() error {
	if p.Default != "" {
		if _, err := ParseHex(p.Default); err != nil {
			return errors.Wrap(err, "default")
		}
	}
	names := make([]string, 0, len(p.Speakers))
	for k := range p.Speakers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, err := ParseHex(p.Speakers[k]); err != nil {
			return errors.Wrapf(err, "speaker %q", k)
		}
	}
	return nil
}

// ParseHex parses "#rrggbb", "#rgb" or a basic color name.
func ParseHex(s string) (color.NRGBA, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[t]; ok {
		return c, nil
	}
	if !strings.HasPrefix(t, "#") {
		return color.NRGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	h := t[1:]
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return color.NRGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(ErrInvalidColor, "%q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Parse validates data against the palette schema and decodes it.
func Parse(data []byte) (Palette, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Palette{}, errors.Wrap(err, "validate palette")
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Palette{}, errors.WithHint(
			errors.Newf("palette does not match schema: %s", strings.Join(msgs, "; ")),
			fmt.Sprintf("Fix the palette file: %s", msgs[0]))
	}
	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		return Palette{}, errors.Wrap(err, "decode palette")
	}
	return p, p.Validate()
}

// LoadFile reads a palette file and merges it over base.
func LoadFile(path string, base Palette) (Palette, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(err, "read palette %s", path)
	}
	p, err := Parse(b)
	if err != nil {
		return base, errors.Wrapf(err, "palette %s", path)
	}
	return base.Merge(p), nil
}
