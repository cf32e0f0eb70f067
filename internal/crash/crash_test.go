/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goteleprompter/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(Target{}, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Go Teleprompter Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileInLibraryBackups(t *testing.T) {
	root := t.TempDir()
	path, err := writeReport(Target{Library: storage.NewLibrary(root)}, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, storage.BackupsDirName) {
		t.Fatalf("expected crash report under backups dir, got %s", path)
	}
}

// silence swaps stderr for a pipe for the duration of the test.
func silence(t *testing.T) {
	t.Helper()
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	})
}

func TestRecover_SavesDraftAndExits(t *testing.T) {
	silence(t)
	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	root := t.TempDir()
	target := Target{Library: storage.NewLibrary(root), Draft: func() string { return "Mona: not saved yet" }}

	func() {
		defer Recover(target)
		panic("boom")
	}()

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
	reports, _ := filepath.Glob(filepath.Join(root, storage.BackupsDirName, "crash-*.log"))
	if len(reports) != 1 {
		t.Fatalf("expected one crash report, got %v", reports)
	}
	b, _ := os.ReadFile(reports[0])
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", b)
	}
	drafts, _ := filepath.Glob(filepath.Join(root, storage.AutosaveDir, "draft-*.txt"))
	if len(drafts) != 1 {
		t.Fatalf("expected one autosaved draft, got %v", drafts)
	}
	d, _ := os.ReadFile(drafts[0])
	if string(d) != "Mona: not saved yet" {
		t.Fatalf("draft = %q", d)
	}
}

func TestRecover_NoPanicNoExit(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() { defer Recover(Target{}) }()
	if called {
		t.Fatal("exit called without panic")
	}
}

func TestAutosaveSkipsBlankAndBrokenDrafts(t *testing.T) {
	lib := storage.NewLibrary(t.TempDir())
	if _, ok := autosave(Target{Library: lib, Draft: func() string { return "  \n" }}); ok {
		t.Fatal("blank draft should not be saved")
	}
	if _, ok := autosave(Target{Library: lib, Draft: func() string { panic("nope") }}); ok {
		t.Fatal("panicking accessor should not be saved")
	}
}
