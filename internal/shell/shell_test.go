/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shell

import (
	"context"
	"image/color"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"goteleprompter/internal/clock"
	"goteleprompter/internal/pacing"
	"goteleprompter/internal/playback"
	"goteleprompter/internal/storage"
)

type memLibrary struct{ files map[string]string }

func (m *memLibrary) Save(text, title string) error {
	if title == "" {
		return errors.New("title is required")
	}
	m.files[title+storage.ScriptExt] = text
	return nil
}

func (m *memLibrary) List() ([]string, error) {
	var out []string
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memLibrary) Load(name string) (string, error) {
	t, ok := m.files[name]
	if !ok {
		return "", errors.Newf("no such script %q", name)
	}
	return t, nil
}

type memHistory struct{ sessions []storage.Session }

func (h *memHistory) Record(_ context.Context, s storage.Session) error {
	h.sessions = append(h.sessions, s)
	return nil
}

type colors map[string]color.NRGBA

func (c colors) Color(speaker string) color.NRGBA {
	if v, ok := c[speaker]; ok {
		return v
	}
	return color.NRGBA{A: 0xff}
}

var red = color.NRGBA{R: 0xff, A: 0xff}

type fixture struct {
	clk     *clock.Fake
	lib     *memLibrary
	hist    *memHistory
	shell   *Shell
	renders []State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clk: clock.NewFake(), lib: &memLibrary{files: map[string]string{}}, hist: &memHistory{}}
	f.shell = New(Config{
		Scheduler: f.clk,
		Library:   f.lib,
		History:   f.hist,
		Colors:    colors{"Mona": red},
		View:      ViewFunc(func(s State) { f.renders = append(f.renders, s) }),
	}, "")
	return f
}

const dialogue = "Mona: Hello\nChrissy: Hi there\n"

func TestSubmitValidationStaysOnStart(t *testing.T) {
	f := newFixture(t)

	err := f.shell.Handle(Submit{Text: "no colon here", Duration: "1"})
	require.True(t, errors.Is(err, playback.ErrInvalidScript))
	require.Equal(t, ScreenStart, f.shell.State().Screen)
	require.Contains(t, f.shell.State().Message, "Speaker: Dialogue")

	err = f.shell.Handle(Submit{Text: dialogue, Duration: "soon"})
	require.True(t, errors.Is(err, playback.ErrInvalidDuration))
	require.Equal(t, ScreenStart, f.shell.State().Screen)
	require.Contains(t, f.shell.State().Message, "numeric")

	err = f.shell.Handle(Submit{Text: dialogue, Duration: "-2"})
	require.True(t, errors.Is(err, playback.ErrInvalidDuration))
	require.Equal(t, "Mona: Hello\nChrissy: Hi there", f.shell.State().Draft)
	require.Zero(t, f.clk.Pending())
}

func TestRunToExhaustionThenAutoReturn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.shell.Handle(Submit{Text: dialogue, Duration: "1"}))
	st := f.shell.State()
	require.Equal(t, ScreenRunning, st.Screen)
	require.Equal(t, "1m 0s", st.Remaining)

	f.clk.Advance(0)
	st = f.shell.State()
	require.Equal(t, "Mona: Hello", st.Line.Label())
	require.Equal(t, red, st.Line.Color)

	f.clk.Advance(30 * time.Second)
	st = f.shell.State()
	require.Equal(t, "Chrissy", st.Line.Speaker)
	require.Equal(t, color.NRGBA{A: 0xff}, st.Line.Color)
	require.Equal(t, "0m 30s", st.Remaining)

	f.clk.Advance(30 * time.Second)
	st = f.shell.State()
	require.Equal(t, ScreenEnd, st.Screen)
	require.Equal(t, EndOfScript, st.Line.Text)
	require.Equal(t, playback.Exhausted, st.EndReason)

	require.Len(t, f.hist.sessions, 1)
	require.Equal(t, "exhausted", f.hist.sessions[0].Reason)
	require.Equal(t, 2, f.hist.sessions[0].Shown)

	f.clk.Advance(DefaultEndScreenDelay - time.Millisecond)
	require.Equal(t, ScreenEnd, f.shell.State().Screen)
	f.clk.Advance(time.Millisecond)
	require.Equal(t, ScreenStart, f.shell.State().Screen)
	require.Equal(t, "Mona: Hello\nChrissy: Hi there", f.shell.State().Draft)
}

func TestDismissBeatsAutoReturn(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.shell.Handle(Submit{Text: "A: only", Duration: "5s"}))
	f.clk.Advance(5 * time.Second)
	require.Equal(t, ScreenEnd, f.shell.State().Screen)

	require.NoError(t, f.shell.Handle(Dismiss{}))
	require.Equal(t, ScreenStart, f.shell.State().Screen)

	// A new session started before the stale auto-return fires is unaffected.
	require.NoError(t, f.shell.Handle(Submit{Text: dialogue, Duration: "10"}))
	f.clk.Advance(DefaultEndScreenDelay)
	require.Equal(t, ScreenRunning, f.shell.State().Screen)
}

func TestExitToStartRestoresDraftAndStopsPlayback(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.shell.Handle(Submit{Text: dialogue, Duration: "2"}))
	f.clk.Advance(5 * time.Second)

	require.NoError(t, f.shell.Handle(ExitToStart{}))
	st := f.shell.State()
	require.Equal(t, ScreenStart, st.Screen)
	require.Equal(t, "Mona: Hello\nChrissy: Hi there", st.Draft)
	require.Equal(t, "2", st.DurationText)
	require.Equal(t, playback.PhaseEnded, f.shell.Playback().Phase)

	require.Len(t, f.hist.sessions, 1)
	require.Equal(t, "stopped", f.hist.sessions[0].Reason)

	f.clk.Advance(time.Hour)
	require.Equal(t, ScreenStart, f.shell.State().Screen)
}

func TestPauseToggleOnlyWhileRunning(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.shell.Handle(TogglePause{}))
	require.False(t, f.shell.State().Paused)

	require.NoError(t, f.shell.Handle(Submit{Text: dialogue, Duration: "1"}))
	f.clk.Advance(0)
	require.NoError(t, f.shell.Handle(TogglePause{}))
	require.True(t, f.shell.State().Paused)
	before := f.shell.State().Remaining
	f.clk.Advance(time.Minute)
	require.Equal(t, before, f.shell.State().Remaining)

	require.NoError(t, f.shell.Handle(TogglePause{}))
	require.False(t, f.shell.State().Paused)
	require.Equal(t, "Chrissy", f.shell.State().Line.Speaker)
}

func TestTimeoutEndsBeforeExhaustion(t *testing.T) {
	clk := clock.NewFake()
	sh := New(Config{Scheduler: clk, Library: &memLibrary{files: map[string]string{}}, Policy: pacing.Clamp}, "")
	require.NoError(t, sh.Handle(Submit{Text: dialogue, Duration: "3s"}))
	clk.Advance(3 * time.Second)
	st := sh.State()
	require.Equal(t, ScreenEnd, st.Screen)
	require.Equal(t, playback.Timeout, st.EndReason)
	require.Equal(t, 0, st.Index)
	require.Equal(t, "0m 0s", st.Remaining)
}

func TestCreateSaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.shell.Handle(ShowCreate{Text: dialogue}))
	require.Equal(t, ScreenCreate, f.shell.State().Screen)

	err := f.shell.Handle(SaveScript{Title: "", Text: dialogue})
	require.Error(t, err)
	require.Equal(t, ScreenCreate, f.shell.State().Screen)

	require.NoError(t, f.shell.Handle(SaveScript{Title: "intro", Text: dialogue}))
	st := f.shell.State()
	require.Equal(t, ScreenStart, st.Screen)
	require.Equal(t, "Saved intro.txt", st.Message)

	require.NoError(t, f.shell.Handle(ShowLoad{}))
	require.Equal(t, []string{"intro.txt"}, f.shell.State().Files)

	require.Error(t, f.shell.Handle(OpenScript{Name: "missing.txt"}))
	require.Equal(t, ScreenLoad, f.shell.State().Screen)

	require.NoError(t, f.shell.Handle(OpenScript{Name: "intro.txt"}))
	st = f.shell.State()
	require.Equal(t, ScreenStart, st.Screen)
	require.Equal(t, dialogue, st.Draft)
	require.Equal(t, "intro", st.Title)

	require.NoError(t, f.shell.Handle(ShowLoad{}))
	require.NoError(t, f.shell.Handle(ShowStart{}))
	require.Equal(t, ScreenStart, f.shell.State().Screen)
	require.NotEmpty(t, f.renders)
}
