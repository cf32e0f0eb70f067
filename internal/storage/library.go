/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	applog "goteleprompter/internal/log"
)

const (
	ScriptExt      = ".txt"
	BackupsDirName = ".backups"
	AutosaveDir    = ".autosave"
)

// ErrInvalidTitle is returned for titles that cannot be used as a file name.
var ErrInvalidTitle = errors.New("invalid script title")

// Library is a directory of "{title}.txt" scripts. The zero value uses the
// working directory.
type Library struct {
	Dir string
}

// NewLibrary returns a library rooted at dir ("" means the working directory).
func NewLibrary(dir string) *Library { return &Library{Dir: dir} }

func (lib *Library) root() string {
	if lib == nil || strings.TrimSpace(lib.Dir) == "" {
		return "."
	}
	return lib.Dir
}

// Path returns the file path for a title.
func (lib *Library) Path(title string) string {
	return filepath.Join(lib.root(), title+ScriptExt)
}

// Save writes text to "{title}.txt". The text is stored as-is; an existing
// file is copied into .backups before it is replaced.
func (lib *Library) Save(text, title string) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "save").With(slog.String("title", title))
	if err := checkTitle(title); err != nil {
		return err
	}
	root := lib.root()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.Wrap(err, "create library dir")
	}
	path := lib.Path(title)

	if _, statErr := os.Stat(path); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(root, BackupsDirName, fmt.Sprintf("%s%s.%s.bak", title, ScriptExt, stamp))
		if err := copyFile(path, bpath); err != nil {
			return errors.Wrap(err, "backup previous script")
		}
	}

	temp := filepath.Join(root, fmt.Sprintf(".%s%s.tmp-%d-%d", title, ScriptExt, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, []byte(text)); err != nil {
		return errors.Wrap(err, "write temp script")
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return errors.Wrap(err, "replace script")
	}
	l.Info("script saved", slog.String("path", path), slog.Int("bytes", len(text)))
	return nil
}

// List returns the names of all "*.txt" files in the library, sorted.
func (lib *Library) List() ([]string, error) {
	ents, err := os.ReadDir(lib.root())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read library dir")
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ScriptExt) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Load reads a script by file name as returned from List. A bare title
// without extension is accepted too.
func (lib *Library) Load(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || name == "" || name == "." || name == ".." {
		return "", errors.Wrapf(ErrInvalidTitle, "%q", name)
	}
	if !strings.EqualFold(filepath.Ext(base), ScriptExt) {
		base += ScriptExt
	}
	b, err := os.ReadFile(filepath.Join(lib.root(), base))
	if err != nil {
		return "", errors.Wrapf(err, "read script %s", base)
	}
	return string(b), nil
}

// AutosaveDraft writes an unsaved draft into .autosave and returns its path.
func (lib *Library) AutosaveDraft(text string) (string, error) {
	dir := filepath.Join(lib.root(), AutosaveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create autosave dir")
	}
	path := filepath.Join(dir, fmt.Sprintf("draft-%s.txt", time.Now().Format("20060102-150405")))
	if err := writeFileSync(path, []byte(text)); err != nil {
		return "", errors.Wrap(err, "write autosave")
	}
	return path, nil
}

func checkTitle(title string) error {
	t := strings.TrimSpace(title)
	switch {
	case t == "":
		return errors.WithHint(errors.Wrap(ErrInvalidTitle, "empty title"), "Please enter a title.")
	case t != title:
		return errors.WithHint(errors.Wrapf(ErrInvalidTitle, "%q has surrounding spaces", title), "Remove leading and trailing spaces from the title.")
	case strings.ContainsAny(title, `/\`) || title == "." || title == "..":
		return errors.WithHint(errors.Wrapf(ErrInvalidTitle, "%q", title), "The title cannot contain path separators.")
	}
	return nil
}

// writeFileSync writes data and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, creating dst's directory.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
