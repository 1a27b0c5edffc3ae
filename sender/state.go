// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package sender

// State is the delivery state of a Sender
type State int32

const (
	// Idle means no message is being delivered
	Idle State = iota
	// Resolving means the sender is asking the directory for the actor location
	Resolving
	// Sending means a message has been handed to the transport
	Sending
	// Retrying means the last attempt failed and the location is presumed stale
	Retrying
	// Failed means the last message exhausted its retry budget.
	// The sender keeps accepting messages.
	Failed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Resolving:
		return "Resolving"
	case Sending:
		return "Sending"
	case Retrying:
		return "Retrying"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
