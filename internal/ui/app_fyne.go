//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"goteleprompter/internal/clock"
	"goteleprompter/internal/crash"
	applog "goteleprompter/internal/log"
	"goteleprompter/internal/shell"
	"goteleprompter/internal/textlayout"
	"goteleprompter/internal/version"
)

// Run opens the teleprompter window and blocks until it is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("goteleprompter")
	w := fyneApp.NewWindow("Teleprompter")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 900)
	winH := prefs.IntWithFallback("window.height", 600)
	if winW < 640 {
		winW = 640
	}
	if winH < 400 {
		winH = 400
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	tp := newTeleprompter(w, opts, clock.Dispatching{Dispatch: fyne.Do})
	defer crash.Recover(crash.Target{Library: opts.Library, Draft: tp.draft})

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("closing UI")
		w.Close()
	})
	w.ShowAndRun()
	return nil
}

// promptEntry is the script editor. It submits on Ctrl+Enter, which a plain
// Entry would swallow.
type promptEntry struct {
	widget.Entry
	onSubmit func()
}

func newPromptEntry(onSubmit func()) *promptEntry {
	e := &promptEntry{onSubmit: onSubmit}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.ExtendBaseWidget(e)
	return e
}

func (e *promptEntry) TypedShortcut(s fyne.Shortcut) {
	if isSubmitShortcut(s) && e.onSubmit != nil {
		e.onSubmit()
		return
	}
	e.Entry.TypedShortcut(s)
}

func isSubmitShortcut(s fyne.Shortcut) bool {
	cs, ok := s.(*desktop.CustomShortcut)
	if !ok || cs.Modifier != fyne.KeyModifierControl {
		return false
	}
	return cs.KeyName == fyne.KeyReturn || cs.KeyName == fyne.KeyEnter
}

// teleprompter owns the widgets of every screen and renders shell state into
// them. All methods run on the Fyne main goroutine.
type teleprompter struct {
	w     fyne.Window
	shell *shell.Shell
	log   *slog.Logger

	wrapWidth float64
	fontSize  float32

	root    *fyne.Container
	screens map[shell.Screen]fyne.CanvasObject
	current shell.Screen
	shown   bool

	// start
	editor   *promptEntry
	duration *widget.Entry
	message  *widget.Label
	title    *widget.Label
	// create
	titleEntry *widget.Entry
	// load
	files    []string
	fileList *widget.List
	// running and end
	prompt    *fyne.Container
	endPrompt *fyne.Container
	lastLine  shell.Line
	timeLeft  *widget.Label
	pauseBtn  *widget.Button
}

func newTeleprompter(w fyne.Window, opts Options, sched clock.Scheduler) *teleprompter {
	disp := opts.Config.Display
	tp := &teleprompter{
		w:         w,
		log:       applog.WithComponent("ui"),
		wrapWidth: float64(disp.WrapWidth),
		fontSize:  float32(disp.FontSize),
		root:      container.NewStack(),
	}
	tp.shell = shell.New(shellConfig(opts, sched, tp), opts.Draft)
	if opts.Title != "" {
		tp.shell.SetTitle(opts.Title)
	}
	tp.screens = map[shell.Screen]fyne.CanvasObject{
		shell.ScreenStart:   tp.buildStart(),
		shell.ScreenCreate:  tp.buildCreate(),
		shell.ScreenLoad:    tp.buildLoad(),
		shell.ScreenRunning: tp.buildRunning(),
		shell.ScreenEnd:     tp.buildEnd(),
	}
	w.SetContent(tp.root)
	w.Canvas().SetOnTypedKey(tp.typedKey)
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyReturn, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		tp.submit()
	})
	tp.shell.Refresh()
	return tp
}

func (tp *teleprompter) draft() string {
	if tp.editor == nil {
		return ""
	}
	return tp.editor.Text
}

func (tp *teleprompter) send(m shell.Msg) {
	// rejected commands are reported through State.Message
	_ = tp.shell.Handle(m)
}

func (tp *teleprompter) submit() {
	if tp.current != shell.ScreenStart {
		return
	}
	tp.send(shell.Submit{Text: tp.editor.Text, Duration: tp.duration.Text})
}

func (tp *teleprompter) typedKey(ev *fyne.KeyEvent) {
	switch tp.current {
	case shell.ScreenRunning:
		switch ev.Name {
		case fyne.KeySpace:
			tp.send(shell.TogglePause{})
		case fyne.KeyEscape:
			tp.send(shell.ExitToStart{})
		}
	case shell.ScreenEnd:
		switch ev.Name {
		case fyne.KeyEscape, fyne.KeySpace, fyne.KeyReturn:
			tp.send(shell.Dismiss{})
		}
	case shell.ScreenCreate, shell.ScreenLoad:
		if ev.Name == fyne.KeyEscape {
			tp.send(shell.ShowStart{})
		}
	}
}

func (tp *teleprompter) buildStart() fyne.CanvasObject {
	heading := widget.NewLabel("Enter the dialogue for the teleprompter\n(Speaker: Dialogue)")
	heading.Alignment = fyne.TextAlignCenter
	heading.TextStyle = fyne.TextStyle{Bold: true}

	tp.editor = newPromptEntry(tp.submit)
	tp.editor.SetPlaceHolder("Mona: Hello!\nChrissy: Hi there.")
	tp.duration = widget.NewEntry()
	tp.duration.SetPlaceHolder("minutes, or a duration like 90s")
	tp.duration.OnSubmitted = func(string) { tp.submit() }

	tp.message = widget.NewLabel("")
	tp.message.Importance = widget.DangerImportance
	tp.message.Wrapping = fyne.TextWrapWord
	tp.title = widget.NewLabel("")

	submitBtn := widget.NewButton("Submit", tp.submit)
	submitBtn.Importance = widget.HighImportance
	saveBtn := widget.NewButton("Save…", func() { tp.send(shell.ShowCreate{Text: tp.editor.Text}) })
	loadBtn := widget.NewButton("Load…", func() { tp.send(shell.ShowLoad{}) })

	form := container.NewVBox(
		widget.NewLabel("Enter total duration of the video in minutes:"),
		tp.duration,
		tp.message,
		container.NewHBox(saveBtn, loadBtn, layout.NewSpacer(), tp.title, submitBtn),
	)
	return container.NewBorder(heading, form, nil, nil, tp.editor)
}

func (tp *teleprompter) buildCreate() fyne.CanvasObject {
	tp.titleEntry = widget.NewEntry()
	tp.titleEntry.SetPlaceHolder("Script title")
	save := func() { tp.send(shell.SaveScript{Title: tp.titleEntry.Text, Text: tp.editor.Text}) }
	tp.titleEntry.OnSubmitted = func(string) { save() }
	saveBtn := widget.NewButton("Save", save)
	saveBtn.Importance = widget.HighImportance
	back := widget.NewButton("Back", func() { tp.send(shell.ShowStart{}) })
	return container.NewCenter(container.NewVBox(
		widget.NewLabel("Save the script as {title}.txt"),
		tp.titleEntry,
		container.NewHBox(back, layout.NewSpacer(), saveBtn),
	))
}

func (tp *teleprompter) buildLoad() fyne.CanvasObject {
	tp.fileList = widget.NewList(
		func() int { return len(tp.files) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(tp.files) {
				o.(*widget.Label).SetText(tp.files[i])
			} else {
				o.(*widget.Label).SetText("")
			}
		},
	)
	tp.fileList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || int(id) >= len(tp.files) {
			return
		}
		name := tp.files[id]
		tp.fileList.UnselectAll()
		tp.send(shell.OpenScript{Name: name})
	}
	back := widget.NewButton("Back", func() { tp.send(shell.ShowStart{}) })
	return container.NewBorder(widget.NewLabel("Saved scripts"), back, nil, nil, tp.fileList)
}

func (tp *teleprompter) buildRunning() fyne.CanvasObject {
	tp.prompt = container.NewVBox()
	tp.timeLeft = widget.NewLabel("")
	tp.pauseBtn = widget.NewButton("Pause", func() { tp.send(shell.TogglePause{}) })
	exit := widget.NewButton("Exit", func() { tp.send(shell.ExitToStart{}) })
	bottom := container.NewHBox(exit, layout.NewSpacer(), tp.timeLeft, layout.NewSpacer(), tp.pauseBtn)
	return container.NewBorder(nil, bottom, nil, nil, container.NewCenter(tp.prompt))
}

func (tp *teleprompter) buildEnd() fyne.CanvasObject {
	tp.endPrompt = container.NewVBox()
	back := widget.NewButton("Back to start", func() { tp.send(shell.Dismiss{}) })
	return container.NewBorder(nil, container.NewCenter(back), nil, nil, container.NewCenter(tp.endPrompt))
}

// Render implements shell.View.
func (tp *teleprompter) Render(s shell.State) {
	if !tp.shown || s.Screen != tp.current {
		tp.switchTo(s)
	}
	tp.message.SetText(s.Message)
	if s.Title != "" {
		tp.title.SetText(s.Title + ".txt")
	} else {
		tp.title.SetText("")
	}
	switch s.Screen {
	case shell.ScreenLoad:
		tp.files = s.Files
		tp.fileList.Refresh()
	case shell.ScreenRunning:
		tp.setPrompt(tp.prompt, s.Line)
		tp.timeLeft.SetText("Time left: " + s.Remaining)
		if s.Paused {
			tp.pauseBtn.SetText("Resume")
		} else {
			tp.pauseBtn.SetText("Pause")
		}
	case shell.ScreenEnd:
		tp.setPrompt(tp.endPrompt, s.Line)
	}
}

func (tp *teleprompter) switchTo(s shell.State) {
	prev := tp.current
	tp.current = s.Screen
	tp.shown = true
	tp.root.Objects = []fyne.CanvasObject{tp.screens[s.Screen]}
	tp.root.Refresh()
	tp.lastLine = shell.Line{}
	tp.log.Debug("screen", slog.String("from", prev.String()), slog.String("to", s.Screen.String()))

	switch s.Screen {
	case shell.ScreenStart:
		if tp.editor.Text != s.Draft {
			tp.editor.SetText(s.Draft)
		}
		if tp.duration.Text != s.DurationText {
			tp.duration.SetText(s.DurationText)
		}
		tp.w.Canvas().Focus(tp.editor)
	case shell.ScreenCreate:
		tp.titleEntry.SetText(s.Title)
		tp.w.Canvas().Focus(tp.titleEntry)
	case shell.ScreenRunning, shell.ScreenEnd:
		// keys go to the canvas handler, not an entry
		tp.w.Canvas().Unfocus()
	}
}

func (tp *teleprompter) setPrompt(box *fyne.Container, line shell.Line) {
	if line == tp.lastLine && len(box.Objects) > 0 {
		return
	}
	tp.lastLine = line
	lines := textlayout.Wrap(textlayout.Basic{SizePx: float64(tp.fontSize)}, line.Label(), tp.wrapWidth)
	objs := make([]fyne.CanvasObject, 0, len(lines))
	for _, ln := range lines {
		t := canvas.NewText(ln, line.Color)
		t.TextSize = tp.fontSize
		t.Alignment = fyne.TextAlignCenter
		objs = append(objs, t)
	}
	box.Objects = objs
	box.Refresh()
}
