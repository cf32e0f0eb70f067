/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Script is the ordered dialogue to prompt. Playback order is slice order.
// A Script is never mutated after Parse returns it.
type Script struct {
	Entries []Entry
}

// Entry is one "Speaker: Text" line.
// LineNo is the 1-based line in the source text; it is informational and
// does not take part in equality of the dialogue itself.
type Entry struct {
	Speaker string
	Text    string
	LineNo  int
}

// Len returns the number of entries.
func (s Script) Len() int { return len(s.Entries) }

// Empty reports whether there is nothing to prompt.
func (s Script) Empty() bool { return len(s.Entries) == 0 }

// Speakers returns the distinct speaker names in order of first appearance.
func (s Script) Speakers() []string {
	seen := make(map[string]struct{}, len(s.Entries))
	var out []string
	for _, e := range s.Entries {
		if _, ok := seen[e.Speaker]; ok {
			continue
		}
		seen[e.Speaker] = struct{}{}
		out = append(out, e.Speaker)
	}
	return out
}
