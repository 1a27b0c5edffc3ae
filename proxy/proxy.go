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

// Package proxy is the entry point used by any component that needs to
// record, forget or resolve the location of an actor. A Proxy hides whether
// the authoritative directory lives in the current process or behind the
// directory RPC service of another node.
package proxy

import (
	"context"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/directory"
	gerrors "github.com/tochemey/actorloc/errors"
)

// Proxy exposes the directory contract.
type Proxy interface {
	// Add records the actor at the location, replacing any previous location
	Add(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error
	// Remove forgets the actor. Removing an absent actor is not an error
	Remove(ctx context.Context, actorID address.ActorID) error
	// Get resolves the actor. It returns errors.ErrActorNotFound when the actor is not recorded
	Get(ctx context.Context, actorID address.ActorID) (address.LocationID, error)
	// Close releases the resources held by the proxy
	Close() error
}

// Local is a Proxy bound to an in-process directory
type Local struct {
	dir *directory.Directory
}

// enforce compilation error
var _ Proxy = (*Local)(nil)

// NewLocal creates a Proxy over the given directory.
// The directory stays owned by the caller.
func NewLocal(dir *directory.Directory) *Local {
	return &Local{dir: dir}
}

// Add implements Proxy
func (x *Local) Add(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	return x.dir.Add(ctx, actorID, locationID)
}

// Remove implements Proxy
func (x *Local) Remove(ctx context.Context, actorID address.ActorID) error {
	return x.dir.Remove(ctx, actorID)
}

// Get implements Proxy
func (x *Local) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, error) {
	if err := ctx.Err(); err != nil {
		return address.NoLocation, err
	}
	locationID, ok := x.dir.Get(actorID)
	if !ok {
		return address.NoLocation, gerrors.NewErrActorNotFound(actorID.Int64())
	}
	return locationID, nil
}

// Close implements Proxy. The directory is not closed.
func (x *Local) Close() error {
	return nil
}
