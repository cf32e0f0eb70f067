/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"
)

// Parse turns prompter text into a Script.
// Syntax:
//   - one dialogue line per text line: Speaker: what they say
//   - the first ':' separates speaker from text; later colons belong to the text
//   - speaker and text are trimmed
//   - lines without a colon (blank lines included) are dropped
//
// Parse never fails. An input with no dialogue yields an empty Script, which
// playback rejects.
func Parse(input string) Script {
	s := Script{}
	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimRight(raw, "\r")
		speaker, text, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		s.Entries = append(s.Entries, Entry{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(text),
			LineNo:  i + 1,
		})
	}
	return s
}

// Format renders entries back into the "Speaker: Text" form accepted by Parse.
// Parse(Format(e)) yields the same speakers and texts in the same order.
func Format(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Speaker)
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	return b.String()
}
