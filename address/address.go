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

// Package address defines the identifiers used to locate actors across the
// processes of a sharded game server.
//
// An ActorID names a logical actor and never changes for the lifetime of the
// actor, whichever process hosts it. A LocationID names the process currently
// hosting the actor. Both are opaque 64-bit integers; a LocationID is only ever
// compared for equality.
//
// The zero value of both types is reserved: NoActor and NoLocation mean
// "unset" and are rejected by the directory.
package address

import (
	"fmt"
	"strconv"
	"strings"
)

// ActorID is the cluster-wide stable identifier of an actor.
type ActorID int64

// LocationID identifies the process hosting an actor.
type LocationID int64

const (
	// NoActor is the unset actor identifier
	NoActor ActorID = 0
	// NoLocation is the unset location identifier
	NoLocation LocationID = 0
)

// IsValid reports whether the actor id is set
func (a ActorID) IsValid() bool {
	return a != NoActor
}

// String returns the decimal form of the actor id
func (a ActorID) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// Int64 returns the raw value
func (a ActorID) Int64() int64 {
	return int64(a)
}

// IsValid reports whether the location id is set
func (l LocationID) IsValid() bool {
	return l != NoLocation
}

// String returns the decimal form of the location id
func (l LocationID) String() string {
	return strconv.FormatInt(int64(l), 10)
}

// Int64 returns the raw value
func (l LocationID) Int64() int64 {
	return int64(l)
}

// ParseActorID parses the decimal representation of an actor id.
func ParseActorID(s string) (ActorID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return NoActor, fmt.Errorf("address: invalid actor id %q: %w", s, err)
	}
	return ActorID(v), nil
}

// ParseLocationID parses the decimal representation of a location id.
func ParseLocationID(s string) (LocationID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return NoLocation, fmt.Errorf("address: invalid location id %q: %w", s, err)
	}
	return LocationID(v), nil
}
