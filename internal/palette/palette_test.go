/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultColors(t *testing.T) {
	p := Default()
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, p.Color("Mona"))
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, p.Color("Chrissy"))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, p.Color("Narrator"))
	assert.Equal(t, "#000000", p.Hex(""))
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#0f8")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x00, 0xff, 0x88, 255}, c)

	c, err = ParseHex(" #1A2b3C ")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0x1a, 0x2b, 0x3c, 255}, c)

	c, err = ParseHex("Blue")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, c)

	for _, bad := range []string{"", "#12", "#ggg", "ff0000", "chartreuse"} {
		_, err := ParseHex(bad)
		assert.Truef(t, errors.Is(err, ErrInvalidColor), "%q", bad)
	}
}

func TestColorFallsBackOnBadEntry(t *testing.T) {
	p := Palette{Default: "#00ff00", Speakers: map[string]string{"X": "nope"}}
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, p.Color("X"))
	assert.Error(t, p.Validate())
}

func TestLoadFileMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"speakers":{"Mona":"#00f","Joe":"green"}}`), 0o644))

	p, err := LoadFile(path, Default())
	require.NoError(t, err)
	assert.Equal(t, "#00f", p.Hex("Mona"))
	assert.Equal(t, "green", p.Hex("Joe"))
	assert.Equal(t, "#0000ff", p.Hex("Chrissy"))
	assert.Equal(t, "#000000", p.Default)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	for _, doc := range []string{
		`{"speakers":{"Mona":"#12345"}}`,
		`{"colour":"#000"}`,
		`{"speakers":["Mona"]}`,
	} {
		_, err := Parse([]byte(doc))
		assert.Errorf(t, err, "%s", doc)
	}
}
