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

package transport

import (
	"context"
	"errors"

	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/internal/xsync"
)

var (
	errNoHandler = errors.New("no handler registered")
	errClosed    = errors.New("transport is closed")
)

// Loopback delivers envelopes to handlers registered in the same process.
// It is used by single process deployments and tests.
type Loopback struct {
	handlers *xsync.Map[address.LocationID, Handler]
	closed   *atomic.Bool
}

// enforce compilation error
var _ Transport = (*Loopback)(nil)

// NewLoopback creates a Loopback transport
func NewLoopback() *Loopback {
	return &Loopback{
		handlers: xsync.NewMap[address.LocationID, Handler](),
		closed:   atomic.NewBool(false),
	}
}

// Deliver calls the handler registered for location
func (l *Loopback) Deliver(ctx context.Context, location address.LocationID, envelope *Envelope) ([]byte, error) {
	if err := validate(location, envelope); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.closed.Load() {
		return nil, gerrors.NewErrLocationUnreachable(location.Int64(), errClosed)
	}

	handler, ok := l.handlers.Get(location)
	if !ok {
		return nil, gerrors.NewErrLocationUnreachable(location.Int64(), errNoHandler)
	}

	// the handler must not observe later changes made by the caller
	clone := *envelope
	clone.Payload = append([]byte(nil), envelope.Payload...)

	reply, err := handler(ctx, &clone)
	if err != nil {
		return nil, handlerResult(envelope.ActorID, err)
	}
	return reply, nil
}

// Serve registers the handler of location, replacing any previous one
func (l *Loopback) Serve(location address.LocationID, handler Handler) error {
	if !location.IsValid() {
		return gerrors.NewErrInvalidLocationID(location.Int64())
	}
	if handler == nil {
		return errors.New("transport: handler is nil")
	}
	if l.closed.Load() {
		return errClosed
	}
	l.handlers.Set(location, handler)
	return nil
}

// Unserve removes the handler of location
func (l *Loopback) Unserve(location address.LocationID) error {
	l.handlers.Delete(location)
	return nil
}

// Close removes every handler. Further deliveries fail with errors.ErrLocationUnreachable.
func (l *Loopback) Close() error {
	l.closed.Store(true)
	l.handlers.Reset()
	return nil
}
