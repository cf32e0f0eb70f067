/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package console

import (
	"bufio"
	"context"
	"io"
	"strings"

	"goteleprompter/internal/shell"
)

// ParseCommand maps one typed line onto a shell message.
//
//	p, space, pause   toggle pause
//	q, quit, esc      exit to the start screen
//	d, dismiss        leave the end screen
func ParseCommand(line string) (shell.Msg, bool) {
	if line != "" && strings.TrimSpace(line) == "" {
		return shell.TogglePause{}, true
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "p", "pause", "resume":
		return shell.TogglePause{}, true
	case "q", "quit", "esc", "exit":
		return shell.ExitToStart{}, true
	case "d", "dismiss":
		return shell.Dismiss{}, true
	}
	return nil, false
}

// ReadCommands scans r line by line and passes recognised commands to send
// until r is exhausted or ctx is done. Unknown input is ignored.
func ReadCommands(ctx context.Context, r io.Reader, send func(shell.Msg)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if m, ok := ParseCommand(sc.Text()); ok {
			send(m)
		}
	}
	return sc.Err()
}
