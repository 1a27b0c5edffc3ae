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

// Package transport delivers envelopes to actors hosted at a named location.
package transport

import (
	"context"
	"errors"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

// Envelope carries a message to an actor
type Envelope struct {
	// ID correlates the envelope in logs
	ID string
	// ActorID is the destination actor
	ActorID address.ActorID
	// Payload is the opaque message body
	Payload []byte
	// ExpectReply is set for request/response exchanges
	ExpectReply bool
}

// Handler dispatches an inbound envelope to a local actor.
// It returns errors.ErrActorNotFound when the actor does not live here.
type Handler func(ctx context.Context, envelope *Envelope) ([]byte, error)

// Transport is the raw send/receive primitive between locations
type Transport interface {
	// Deliver hands the envelope to the given location and waits for its reply.
	// The returned error wraps errors.ErrLocationUnreachable when the location
	// cannot be reached, errors.ErrActorNotFound when the actor is not hosted
	// there, and errors.ErrMessageRejected when the actor handler failed.
	Deliver(ctx context.Context, location address.LocationID, envelope *Envelope) ([]byte, error)
	// Serve registers the handler receiving the envelopes sent to location
	Serve(location address.LocationID, handler Handler) error
	// Unserve stops receiving envelopes for location
	Unserve(location address.LocationID) error
	// Close releases the transport resources
	Close() error
}

// IsStale reports whether a delivery error means the cached location of the
// actor is no longer valid
func IsStale(err error) bool {
	return errors.Is(err, gerrors.ErrLocationUnreachable) || errors.Is(err, gerrors.ErrActorNotFound)
}

// handlerResult converts a handler error into the error returned by Deliver
func handlerResult(actorID address.ActorID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gerrors.ErrActorNotFound):
		return gerrors.NewErrActorNotFound(actorID.Int64())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return gerrors.NewErrMessageRejected(err)
	}
}

func validate(location address.LocationID, envelope *Envelope) error {
	if !location.IsValid() {
		return gerrors.NewErrInvalidLocationID(location.Int64())
	}
	if envelope == nil || !envelope.ActorID.IsValid() {
		var id int64
		if envelope != nil {
			id = envelope.ActorID.Int64()
		}
		return gerrors.NewErrInvalidActorID(id)
	}
	return nil
}
