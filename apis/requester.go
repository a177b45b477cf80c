/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package apis

// MessageType is the severity attached to a human-readable message.
type MessageType int

const (
	// InfoMessage is informational.
	InfoMessage MessageType = iota
	// WarningMessage reports something unexpected that did not fail.
	WarningMessage
	// ErrorMessage reports a failed operation.
	ErrorMessage
	// FatalMessage reports a failure the sender cannot recover from.
	FatalMessage
)

// String returns the lowercase severity name.
func (t MessageType) String() string {
	switch t {
	case InfoMessage:
		return "info"
	case WarningMessage:
		return "warning"
	case ErrorMessage:
		return "error"
	case FatalMessage:
		return "fatal"
	default:
		return "unknown"
	}
}

// Requester is a sink for human-readable messages.
// Records and databases hold requesters by reference and compare them by
// identity, so implementations should be pointers.
type Requester interface {
	// RequesterName identifies the requester in logs.
	RequesterName() string
	// Message delivers text with the given severity. It must not block for long.
	Message(text string, t MessageType)
}
