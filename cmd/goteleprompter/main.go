/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command goteleprompter shows a "Speaker: Dialogue" script one line at a
// time, paced to fit a total duration.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"goteleprompter/internal/config"
	"goteleprompter/internal/console"
	"goteleprompter/internal/crash"
	"goteleprompter/internal/export"
	applog "goteleprompter/internal/log"
	"goteleprompter/internal/pacing"
	"goteleprompter/internal/palette"
	"goteleprompter/internal/playback"
	"goteleprompter/internal/script"
	"goteleprompter/internal/storage"
	"goteleprompter/internal/ui"
	"goteleprompter/internal/version"
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout))
}

// cli holds the parsed command line.
type cli struct {
	app *kingpin.Application

	configPath *string
	libraryDir *string

	uiCmd  *kingpin.CmdClause
	uiFile *string

	playCmd      *kingpin.CmdClause
	playFile     *string
	playDuration *string
	playColor    *bool

	listCmd *kingpin.CmdClause

	saveCmd   *kingpin.CmdClause
	saveTitle *string
	saveFile  *string

	exportCmd      *kingpin.CmdClause
	exportFile     *string
	exportDuration *string
	exportOut      *string

	historyCmd   *kingpin.CmdClause
	historyLimit *int

	configCmd  *kingpin.CmdClause
	versionCmd *kingpin.CmdClause
}

func newCLI(out io.Writer) *cli {
	c := &cli{app: kingpin.New("goteleprompter", "Teleprompter for 'Speaker: Dialogue' scripts")}
	c.app.Writer(out)
	c.app.Terminate(nil)
	c.app.Version(version.String())

	c.configPath = c.app.Flag("config", "Config file (or set GTP_CONFIG env)").Envar(config.EnvConfigFile).String()
	c.libraryDir = c.app.Flag("library", "Script library directory (overrides library.dir)").Short('L').String()

	c.uiCmd = c.app.Command("ui", "Open the desktop teleprompter (build with -tags fyne)").Default()
	// A flag, not an argument: the default command must not swallow unknown words.
	c.uiFile = c.uiCmd.Flag("file", "Script file or library name to prefill").Short('f').String()

	c.playCmd = c.app.Command("play", "Run the teleprompter in the terminal")
	c.playFile = c.playCmd.Arg("file", "Script file or library name").Required().String()
	c.playDuration = c.playCmd.Arg("duration", "Total duration: minutes, or a duration like 90s").Required().String()
	c.playColor = c.playCmd.Flag("color", "Color speakers with ANSI escapes").Default("true").Bool()

	c.listCmd = c.app.Command("list", "List saved scripts").Alias("ls")

	c.saveCmd = c.app.Command("save", "Save a script into the library as {title}.txt")
	c.saveTitle = c.saveCmd.Arg("title", "Script title").Required().String()
	c.saveFile = c.saveCmd.Arg("file", "Source file, - for stdin").Default("-").String()

	c.exportCmd = c.app.Command("export", "Write a PDF cue sheet with every line's start time")
	c.exportFile = c.exportCmd.Arg("file", "Script file or library name").Required().String()
	c.exportDuration = c.exportCmd.Arg("duration", "Total duration: minutes, or a duration like 90s").Required().String()
	c.exportOut = c.exportCmd.Arg("out", "Output PDF path").Required().String()

	c.historyCmd = c.app.Command("history", "Show recent playback sessions")
	c.historyLimit = c.historyCmd.Flag("limit", "Number of sessions").Short('n').Default("20").Int()

	c.configCmd = c.app.Command("config", "Print the effective configuration")
	c.versionCmd = c.app.Command("version", "Show version")
	return c
}

// env is what every command needs after config is loaded.
type env struct {
	out     io.Writer
	in      io.Reader
	cfg     config.AppConfig
	lib     *storage.Library
	palette palette.Palette
	log     *slog.Logger
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) int {
	c := newCLI(out)
	command, err := c.app.Parse(args)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 2
	}
	if command == c.versionCmd.FullCommand() {
		fmt.Fprintln(out, "Go Teleprompter")
		fmt.Fprintln(out, version.String())
		return 0
	}

	if *c.configPath != "" {
		_ = os.Setenv(config.EnvConfigFile, *c.configPath)
	}
	cfg, cfgErr := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		// keep going on defaults so a broken file does not lock the user out
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
		fmt.Fprintf(out, "Warning: %v\n", cfgErr)
	}
	if *c.libraryDir != "" {
		cfg.Library.Dir = *c.libraryDir
	}
	e := &env{out: out, in: in, cfg: cfg, lib: storage.NewLibrary(cfg.Library.Dir), log: l}
	e.palette = cfg.Palette()
	if pf := cfg.Display.PaletteFile; pf != "" {
		p, err := palette.LoadFile(pf, e.palette)
		if err != nil {
			l.Warn("palette file ignored", slog.String("path", pf), slog.Any("err", err))
		} else {
			e.palette = p
		}
	}
	l.Debug("start", slog.String("cmd", command), slog.String("library", e.lib.Dir))
	defer crash.Recover(crash.Target{Library: e.lib})

	switch command {
	case c.uiCmd.FullCommand():
		err = e.ui(*c.uiFile)
	case c.playCmd.FullCommand():
		err = e.play(ctx, *c.playFile, *c.playDuration, *c.playColor)
	case c.listCmd.FullCommand():
		err = e.list()
	case c.saveCmd.FullCommand():
		err = e.save(*c.saveTitle, *c.saveFile)
	case c.exportCmd.FullCommand():
		err = e.export(*c.exportFile, *c.exportDuration, *c.exportOut)
	case c.historyCmd.FullCommand():
		err = e.history(ctx, *c.historyLimit)
	case c.configCmd.FullCommand():
		err = e.printConfig()
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", command), slog.Any("err", err))
		fmt.Fprintf(out, "Error: %s\n", playback.UserMessage(err))
		return 1
	}
	return 0
}

// readScript resolves a path on disk first, then a name in the library.
func (e *env) readScript(name string) (text, title string, err error) {
	if name == "-" {
		b, err := io.ReadAll(e.in)
		return string(b), "", errors.Wrap(err, "read stdin")
	}
	if b, err := os.ReadFile(name); err == nil {
		return string(b), strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), nil
	}
	text, err = e.lib.Load(name)
	if err != nil {
		return "", "", errors.WithHint(err, fmt.Sprintf("No script named %q on disk or in the library.", name))
	}
	return text, strings.TrimSuffix(name, storage.ScriptExt), nil
}

func (e *env) openHistory() *storage.History {
	h, err := storage.OpenHistory(e.lib.Dir)
	if err != nil {
		e.log.Warn("session history unavailable", slog.Any("err", err))
		return nil
	}
	return h
}

func (e *env) ui(file string) error {
	opts := ui.Options{Config: e.cfg, Library: e.lib, Palette: e.palette}
	if file != "" {
		text, title, err := e.readScript(file)
		if err != nil {
			return err
		}
		opts.Draft, opts.Title = text, title
	}
	if h := e.openHistory(); h != nil {
		defer h.Close()
		opts.History = h
	}
	return ui.Run(opts)
}

func (e *env) play(ctx context.Context, file, duration string, color bool) error {
	text, title, err := e.readScript(file)
	if err != nil {
		return err
	}
	sc := e.cfg.ShellConfig()
	sc.Library = e.lib
	sc.Colors = e.palette
	if h := e.openHistory(); h != nil {
		defer h.Close()
		sc.History = h
	}
	fmt.Fprintln(e.out, "Commands: p = pause/resume, q = exit, d = dismiss end screen")
	res, err := console.Play(ctx, console.PlayOptions{
		Text:     text,
		Duration: duration,
		Title:    title,
		Shell:    sc,
		View:     console.Options{WrapWidth: e.cfg.Display.WrapWidth, FontSize: e.cfg.Display.FontSize, ANSI: color},
		In:       e.in,
		Out:      e.out,
	})
	if err != nil {
		return err
	}
	e.log.Info("play finished", slog.String("reason", res.Playback.Reason.String()), slog.Int("shown", res.Playback.CurrentIndex))
	return nil
}

func (e *env) list() error {
	names, err := e.lib.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(e.out, "No saved scripts.")
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(e.out, n)
	}
	return nil
}

func (e *env) save(title, file string) error {
	text, _, err := e.readScript(file)
	if err != nil {
		return err
	}
	if script.Parse(text).Empty() {
		e.log.Warn("saving a script without dialogue lines", slog.String("title", title))
	}
	if err := e.lib.Save(text, title); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Saved %s\n", e.lib.Path(title))
	return nil
}

func (e *env) export(file, duration, out string) error {
	text, title, err := e.readScript(file)
	if err != nil {
		return err
	}
	sc := script.Parse(text)
	if sc.Empty() {
		return errors.WithHint(playback.ErrInvalidScript,
			"Invalid dialogue format. Please ensure each line is 'Speaker: Dialogue'.")
	}
	seconds, err := pacing.ParseDuration(duration, e.cfg.Playback.Unit())
	if err != nil {
		return err
	}
	timing, err := pacing.Compute(sc.Len(), seconds, pacing.Options{
		MinVisibleSeconds: e.cfg.Playback.MinVisibleSeconds,
		Policy:            e.cfg.Playback.Policy(),
	})
	if err != nil {
		return err
	}
	if timing.BelowMinimum() {
		fmt.Fprintf(e.out, "Note: %.1fs per line is below the %.0fs minimum.\n", timing.IntervalSeconds(), timing.MinVisibleSeconds)
	}
	if title == "" {
		title = "Script"
	}
	if err := export.CueSheetFile(out, export.Sheet{Title: title, Script: sc, Timing: timing, Palette: e.palette, Compress: true}); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Wrote %s (%d lines, %.1fs each)\n", out, sc.Len(), timing.IntervalSeconds())
	return nil
}

func (e *env) history(ctx context.Context, limit int) error {
	h, err := storage.OpenHistory(e.lib.Dir)
	if err != nil {
		return err
	}
	defer h.Close()
	sessions, err := h.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(e.out, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(unsaved)"
		}
		fmt.Fprintf(e.out, "%s  %-20s %d/%d lines  %s  %s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"), title, s.Shown, s.Entries,
			pacing.FormatRemaining(s.TotalSeconds), s.Reason)
	}
	return nil
}

func (e *env) printConfig() error {
	data, err := yaml.Marshal(e.cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if path, err := config.ConfigPath(); err == nil {
		fmt.Fprintf(e.out, "# %s\n", path)
	}
	for _, key := range []string{"library.dir", "playback.min_visible_seconds", "playback.floor_policy", "playback.end_screen_seconds", "playback.duration_unit", "logging.level", "logging.format", "logging.source", "logging.file"} {
		if name, ok := config.EnvOverrideFor(key); ok {
			fmt.Fprintf(e.out, "# %s overridden by %s\n", key, name)
		}
	}
	_, err = e.out.Write(data)
	return err
}
