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

// Package sender routes messages to actors whose location may change at any
// time. A Registry keeps one Sender per destination actor. Each Sender owns a
// FIFO queue drained by a single goroutine, caches the actor location and
// re-resolves it through the directory when a delivery shows it is stale.
// Senders without work are evicted by a periodic sweep.
package sender

import (
	"context"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/internal/ticker"
	"github.com/tochemey/actorloc/internal/xsync"
	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/telemetry"
	"github.com/tochemey/actorloc/transport"
)

// Resolver resolves the location of an actor.
// It returns errors.ErrActorNotFound when the actor is not recorded.
type Resolver interface {
	Get(ctx context.Context, actorID address.ActorID) (address.LocationID, error)
}

// Registry holds the live senders of the process
type Registry struct {
	resolver  Resolver
	transport transport.Transport
	senders   *xsync.Map[address.ActorID, *Sender]

	idleTimeout   time.Duration
	sweepInterval time.Duration
	maxRetries    int
	minBackoff    time.Duration
	maxBackoff    time.Duration
	retryWindow   time.Duration
	sendTimeout   time.Duration
	clock         func() time.Time

	logger  log.Logger
	metrics *telemetry.Metrics

	// mu orders sender creation and Start against Stop
	mu      sync.RWMutex
	stopped bool
	started *atomic.Bool
	ticker  *ticker.Ticker
	sweepWg sync.WaitGroup
	stopCh  chan struct{}

	// wg tracks the drain goroutines
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates a Registry resolving locations with resolver and
// delivering messages with transport
func NewRegistry(resolver Resolver, transport transport.Transport, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	registry := &Registry{
		resolver:      resolver,
		transport:     transport,
		senders:       xsync.NewMap[address.ActorID, *Sender](),
		idleTimeout:   DefaultIdleTimeout,
		sweepInterval: DefaultSweepInterval,
		maxRetries:    DefaultMaxRetries,
		minBackoff:    DefaultRetryMinBackoff,
		maxBackoff:    DefaultRetryMaxBackoff,
		sendTimeout:   DefaultSendTimeout,
		clock:         time.Now,
		logger:        log.DiscardLogger,
		started:       atomic.NewBool(false),
		ctx:           ctx,
		cancel:        cancel,
	}

	for _, opt := range opts {
		opt.Apply(registry)
	}
	return registry
}

// Send delivers payload to the actor and waits for the outcome. It returns
// errors.ErrActorNotFound when the actor is not recorded in the directory and
// an errors.DeliveryError once the retry budget is exhausted.
func (r *Registry) Send(ctx context.Context, actorID address.ActorID, payload []byte) error {
	_, err := r.submit(ctx, actorID, payload, false)
	return err
}

// Ask delivers payload to the actor and returns its reply
func (r *Registry) Ask(ctx context.Context, actorID address.ActorID, payload []byte) ([]byte, error) {
	return r.submit(ctx, actorID, payload, true)
}

// Sender returns the live sender of the actor
func (r *Registry) Sender(actorID address.ActorID) (*Sender, bool) {
	return r.senders.Get(actorID)
}

// Len returns the number of live senders
func (r *Registry) Len() int {
	return r.senders.Len()
}

// Sweep evicts every sender with an empty queue that has been idle for at
// least the idle timeout. It returns the number of evicted senders.
func (r *Registry) Sweep() int {
	now := r.clock()

	victims := mapset.NewThreadUnsafeSet[address.ActorID]()
	r.senders.Range(func(actorID address.ActorID, s *Sender) bool {
		if s.QueueLen() == 0 && now.Sub(s.LastActivity()) >= r.idleTimeout {
			victims.Add(actorID)
		}
		return true
	})

	if victims.Cardinality() == 0 {
		return 0
	}

	evicted := 0
	for _, actorID := range victims.ToSlice() {
		if _, ok := r.senders.DeleteIf(actorID, func(s *Sender) bool {
			return s.retireIfIdle(now, r.idleTimeout)
		}); ok {
			evicted++
		}
	}

	if evicted > 0 {
		r.metrics.AddSenders(context.Background(), -int64(evicted))
		r.metrics.RecordEvictions(context.Background(), int64(evicted))
		r.logger.Debugf("evicted %d idle sender(s)", evicted)
	}
	return evicted
}

// Start runs the idle sweep every sweep interval
func (r *Registry) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return gerrors.ErrSenderStopped
	}
	if r.started.Load() {
		return nil
	}

	r.ticker = ticker.New(r.sweepInterval)
	r.stopCh = make(chan struct{})
	r.started.Store(true)
	r.ticker.Start()

	r.sweepWg.Add(1)
	go r.sweepLoop(r.ticker, r.stopCh)
	r.logger.Infof("sender registry started, sweeping every %s", r.sweepInterval)
	return nil
}

// Stop stops the sweep, fails every queued message with errors.ErrSenderStopped
// and waits for in-flight deliveries to finish or ctx to be done
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	started := r.started.Load()
	tick, stopCh := r.ticker, r.stopCh
	r.mu.Unlock()

	if started {
		close(stopCh)
		tick.Stop()
		r.sweepWg.Wait()
	}

	r.cancel()
	for _, s := range r.senders.Values() {
		s.retire(gerrors.ErrSenderStopped)
	}
	count := r.senders.Len()
	r.senders.Reset()
	r.metrics.AddSenders(context.Background(), -int64(count))

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Infof("sender registry stopped, %d sender(s) released", count)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) sweepLoop(tick *ticker.Ticker, stopCh chan struct{}) {
	defer r.sweepWg.Done()
	for {
		select {
		case <-tick.Ticks:
			r.Sweep()
		case <-stopCh:
			return
		}
	}
}

func (r *Registry) submit(ctx context.Context, actorID address.ActorID, payload []byte, expectReply bool) ([]byte, error) {
	if !actorID.IsValid() {
		return nil, gerrors.NewErrInvalidActorID(actorID.Int64())
	}

	msg := newMessage(ctx, &transport.Envelope{
		ID:          uuid.NewString(),
		ActorID:     actorID,
		Payload:     payload,
		ExpectReply: expectReply,
	})

	if err := r.enqueue(actorID, msg); err != nil {
		return nil, err
	}

	select {
	case res := <-msg.done:
		return res.reply, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) enqueue(actorID address.ActorID, msg *message) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		return gerrors.ErrSenderStopped
	}

	for {
		s, created := r.senders.GetOrCreate(actorID, func() *Sender {
			return newSender(actorID, r)
		})
		if created {
			r.metrics.AddSenders(msg.ctx, 1)
		}

		if s.enqueue(msg) {
			return nil
		}

		// evicted between lookup and enqueue
		r.senders.DeleteIf(actorID, func(current *Sender) bool { return current == s })
	}
}
