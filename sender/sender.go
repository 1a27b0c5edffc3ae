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

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/transport"
)

const queueHint = 16

type result struct {
	reply []byte
	err   error
}

// message is a queued envelope and the channel its outcome is reported on
type message struct {
	ctx      context.Context
	envelope *transport.Envelope
	done     chan result
}

func newMessage(ctx context.Context, envelope *transport.Envelope) *message {
	return &message{
		ctx:      ctx,
		envelope: envelope,
		done:     make(chan result, 1),
	}
}

func (m *message) complete(reply []byte, err error) {
	m.done <- result{reply: reply, err: err}
}

// Sender delivers the messages addressed to one actor in submission order.
// It caches the actor location and resolves it again through the directory
// whenever a delivery shows the cached location is stale.
type Sender struct {
	actorID  address.ActorID
	registry *Registry

	queue        *queue.Queue
	location     *atomic.Int64
	state        *atomic.Int32
	lastActivity *atomic.Time
	draining     *atomic.Bool

	// mu orders enqueue against retirement
	mu      sync.Mutex
	retired bool
}

func newSender(actorID address.ActorID, registry *Registry) *Sender {
	return &Sender{
		actorID:      actorID,
		registry:     registry,
		queue:        queue.New(queueHint),
		location:     atomic.NewInt64(address.NoLocation.Int64()),
		state:        atomic.NewInt32(int32(Idle)),
		lastActivity: atomic.NewTime(registry.clock()),
		draining:     atomic.NewBool(false),
	}
}

// ActorID returns the actor the sender addresses
func (s *Sender) ActorID() address.ActorID {
	return s.actorID
}

// State returns the current delivery state
func (s *Sender) State() State {
	return State(s.state.Load())
}

// QueueLen returns the number of messages waiting to be delivered
func (s *Sender) QueueLen() int {
	return int(s.queue.Len())
}

// Location returns the cached location, address.NoLocation when none is cached
func (s *Sender) Location() address.LocationID {
	return address.LocationID(s.location.Load())
}

// LastActivity returns the time of the last enqueue or delivery outcome
func (s *Sender) LastActivity() time.Time {
	return s.lastActivity.Load()
}

// enqueue adds the message to the queue and makes sure a drain goroutine runs.
// It returns false when the sender has been retired.
func (s *Sender) enqueue(msg *message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired {
		return false
	}

	if err := s.queue.Put(msg); err != nil {
		return false
	}
	s.touch()

	if s.draining.CompareAndSwap(false, true) {
		s.registry.wg.Add(1)
		go s.drain()
	}
	return true
}

// drain delivers queued messages one at a time until the queue is empty
func (s *Sender) drain() {
	defer s.registry.wg.Done()
	for {
		for !s.queue.Empty() {
			items, err := s.queue.Get(1)
			if err != nil {
				// disposed
				s.draining.Store(false)
				return
			}
			s.process(items[0].(*message))
		}

		if s.State() != Failed {
			s.state.Store(int32(Idle))
		}
		s.draining.Store(false)

		// a message enqueued after the emptiness check must not be stranded
		if s.queue.Empty() || !s.draining.CompareAndSwap(false, true) {
			return
		}
	}
}

func (s *Sender) process(msg *message) {
	if err := msg.ctx.Err(); err != nil {
		msg.complete(nil, err)
		return
	}

	start := time.Now()
	reply, err := s.deliver(msg)
	s.touch()

	if err == nil {
		s.registry.metrics.RecordDelivery(msg.ctx, time.Since(start))
		msg.complete(reply, nil)
		return
	}

	switch {
	case errors.Is(err, gerrors.ErrDeliveryFailed):
		s.state.Store(int32(Failed))
		s.registry.metrics.RecordFailure(context.Background(), "delivery_failed")
		s.registry.logger.Errorf("failed to deliver message=%s to actor=%d: %v", msg.envelope.ID, s.actorID.Int64(), err)
	case errors.Is(err, gerrors.ErrActorNotFound):
		s.state.Store(int32(Idle))
		s.registry.metrics.RecordFailure(context.Background(), "actor_not_found")
		msg.complete(nil, err)
		s.failQueued(err)
		return
	case errors.Is(err, gerrors.ErrMessageRejected):
		s.registry.metrics.RecordFailure(context.Background(), "rejected")
	}
	msg.complete(nil, err)
}

// failQueued fails every message currently waiting in the queue
func (s *Sender) failQueued(err error) {
	count := s.queue.Len()
	if count == 0 {
		return
	}

	items, qerr := s.queue.Get(count)
	if qerr != nil {
		return
	}
	for _, item := range items {
		item.(*message).complete(nil, err)
	}
	s.registry.logger.Warnf("actor=%d not found, failed %d queued message(s)", s.actorID.Int64(), len(items))
}

// deliver runs the resolve and send loop for one message
func (s *Sender) deliver(msg *message) ([]byte, error) {
	ctx := msg.ctx
	if window := s.registry.retryWindow; window > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, window)
		defer cancel()
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	unregister := context.AfterFunc(s.registry.ctx, stop)
	defer unregister()

	var (
		limit     = s.registry.maxRetries + 1
		attempts  int
		reply     []byte
		delivered bool
		lastErr   error
		terminal  error
	)

	retrier := retry.NewRetrier(limit, s.registry.minBackoff, s.registry.maxBackoff)
	_ = retrier.RunContext(runCtx, func(ctx context.Context) error {
		if attempts >= limit {
			stop()
			return lastErr
		}

		attempts++
		if attempts > 1 {
			s.state.Store(int32(Retrying))
			s.registry.metrics.RecordRetry(ctx, s.Location().Int64())
			s.registry.logger.Warnf("retrying message=%s to actor=%d (attempt=%d): %v", msg.envelope.ID, s.actorID.Int64(), attempts, lastErr)
		}

		location, err := s.resolve(ctx)
		if err != nil {
			if errors.Is(err, gerrors.ErrActorNotFound) {
				terminal = err
				stop()
				return err
			}
			lastErr = err
			return err
		}

		s.state.Store(int32(Sending))
		attemptCtx, cancel := context.WithTimeout(ctx, s.registry.sendTimeout)
		reply, err = s.registry.transport.Deliver(attemptCtx, location, msg.envelope)
		cancel()

		switch {
		case err == nil:
			delivered = true
			return nil
		case ctx.Err() != nil:
			lastErr = err
			return err
		case transport.IsStale(err), errors.Is(err, context.DeadlineExceeded):
			s.invalidate(location)
			lastErr = err
			return err
		default:
			terminal = err
			stop()
			return err
		}
	})

	switch {
	case delivered:
		return reply, nil
	case terminal != nil:
		return nil, terminal
	case s.registry.ctx.Err() != nil:
		return nil, gerrors.ErrSenderStopped
	case msg.ctx.Err() != nil:
		return nil, msg.ctx.Err()
	default:
		return nil, gerrors.NewErrDeliveryFailed(s.actorID.Int64(), attempts, lastErr)
	}
}

// resolve returns the cached location or asks the directory for it
func (s *Sender) resolve(ctx context.Context) (address.LocationID, error) {
	if location := s.Location(); location.IsValid() {
		return location, nil
	}

	s.state.Store(int32(Resolving))
	location, err := s.registry.resolver.Get(ctx, s.actorID)
	if err != nil {
		return address.NoLocation, err
	}
	s.location.Store(location.Int64())
	return location, nil
}

// invalidate drops the cached location when it still is the stale one
func (s *Sender) invalidate(stale address.LocationID) {
	s.location.CompareAndSwap(stale.Int64(), address.NoLocation.Int64())
}

func (s *Sender) touch() {
	s.lastActivity.Store(s.registry.clock())
}

// retireIfIdle retires the sender when it has no work and has been idle for
// at least timeout
func (s *Sender) retireIfIdle(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired {
		return true
	}

	if !s.queue.Empty() || s.draining.Load() || now.Sub(s.lastActivity.Load()) < timeout {
		return false
	}

	s.retired = true
	s.queue.Dispose()
	return true
}

// retire stops the sender and fails the messages still queued
func (s *Sender) retire(err error) {
	s.mu.Lock()
	if s.retired {
		s.mu.Unlock()
		return
	}
	s.retired = true
	items := s.queue.Dispose()
	s.mu.Unlock()

	for _, item := range items {
		item.(*message).complete(nil, err)
	}
}
