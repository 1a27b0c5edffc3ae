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

// Package store persists the authoritative actor location table outside of
// the process so that a directory can be restored after a restart.
//
// A Store is a plain key/value view of the table: it does not serialize
// concurrent mutations of the same actor, the directory does that before
// writing through.
package store

import (
	"context"

	"github.com/tochemey/actorloc/address"
)

// Store is the persistence contract of the location table
type Store interface {
	// Put records the location of the actor, replacing any previous value
	Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error
	// Delete removes the actor. Deleting an absent actor is not an error
	Delete(ctx context.Context, actorID address.ActorID) error
	// Get returns the recorded location of the actor and whether it exists
	Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error)
	// Iterate calls fn for every recorded actor until fn returns false
	Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error
	// Close releases the resources held by the store
	Close() error
}

func parseEntry(key, value string) (address.ActorID, address.LocationID, error) {
	actorID, err := address.ParseActorID(key)
	if err != nil {
		return address.NoActor, address.NoLocation, err
	}
	locationID, err := address.ParseLocationID(value)
	if err != nil {
		return address.NoActor, address.NoLocation, err
	}
	return actorID, locationID, nil
}

func contextErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
