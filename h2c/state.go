/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package h2c coordinates the HTTP/1.1-to-HTTP/2-over-cleartext upgrade
// dance (RFC 7540 §3.2), specializing the HTTP/1.x wire format for exactly
// one first exchange before handing the connection off to the http2 engine.
package h2c

// State is the coordinator's progress through the upgrade dance (spec §4.2).
// Modeled as a tagged enum rather than a bool pair so every legal transition
// is named; stored in an internal/atomic.Value[State], never a plain field.
//
// Values start at 1, not 0: atomic.Value[T].Store treats a zero argument as
// "use the configured default store value" (see internal/atomic), and this
// type never wants that substitution to kick in for StateStarted.
type State int32

const (
	StateStarted State = iota + 1
	StateReceived
	StateFullyReceived
	StatePrepared
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateReceived:
		return "received"
	case StateFullyReceived:
		return "fully-received"
	case StatePrepared:
		return "prepared"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
