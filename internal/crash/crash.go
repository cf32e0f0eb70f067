/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a saved draft.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "goteleprompter/internal/log"
	"goteleprompter/internal/storage"
	"goteleprompter/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Target tells Recover where to put the report and how to read the unsaved
// draft. Both fields are optional.
type Target struct {
	Library *storage.Library
	Draft   func() string
}

// Recover captures a panic, logs it with the stack, writes a report file,
// autosaves the current draft and exits with code 2.
//
// Usage: defer crash.Recover(target)
func Recover(t Target) {
	if r := recover(); r != nil {
		handle(t, r, debug.Stack())
	}
}

func handle(t Target, r any, stack []byte) {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(t, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, ok := autosave(t); ok {
		_, _ = fmt.Fprintf(os.Stderr, "Your unsaved script was saved to: %s\n", path)
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func autosave(t Target) (string, bool) {
	if t.Library == nil || t.Draft == nil {
		return "", false
	}
	l := applog.WithComponent("crash")
	var text string
	func() {
		// the draft accessor may itself be broken
		defer func() {
			if r := recover(); r != nil {
				l.Error("draft accessor panicked", slog.Any("panic", r))
			}
		}()
		text = t.Draft()
	}()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	path, err := t.Library.AutosaveDraft(text)
	if err != nil {
		l.Error("autosave draft failed", slog.Any("err", err))
		return "", false
	}
	l.Info("autosave draft written", slog.String("path", path))
	return path, true
}

func writeReport(t Target, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if t.Library != nil && t.Library.Dir != "" {
		dir = filepath.Join(t.Library.Dir, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Go Teleprompter Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if t.Library != nil {
		_, _ = fmt.Fprintf(&buf, "Library: %s\n", t.Library.Dir)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
