/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shell

// Msg is a user command sent to Shell.Handle.
type Msg interface{ isMsg() }

// ShowStart returns to the start screen from Create or Load.
type ShowStart struct{}

// ShowCreate opens the save form with the current editor text.
type ShowCreate struct{ Text string }

// ShowLoad lists the saved scripts.
type ShowLoad struct{}

// Submit validates the draft and starts playback.
type Submit struct {
	Text     string
	Duration string
}

// TogglePause pauses or resumes the running session.
type TogglePause struct{}

// ExitToStart abandons playback and restores the draft for editing.
type ExitToStart struct{}

// SaveScript writes Text under Title to the library.
type SaveScript struct {
	Title string
	Text  string
}

// OpenScript loads a saved script into the editor.
type OpenScript struct{ Name string }

// Dismiss leaves the end screen before the auto-return delay.
type Dismiss struct{}

func (ShowStart) isMsg()   {}
func (ShowCreate) isMsg()  {}
func (ShowLoad) isMsg()    {}
func (Submit) isMsg()      {}
func (TogglePause) isMsg() {}
func (ExitToStart) isMsg() {}
func (SaveScript) isMsg()  {}
func (OpenScript) isMsg()  {}
func (Dismiss) isMsg()     {}
