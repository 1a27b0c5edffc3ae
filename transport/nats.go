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
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/internal/compression"
	"github.com/tochemey/actorloc/internal/locationpb"
	"github.com/tochemey/actorloc/internal/xsync"
	"github.com/tochemey/actorloc/log"
)

const (
	// DefaultSubjectPrefix is the subject prefix used when none is set
	DefaultSubjectPrefix = "actorloc.location"
	// DefaultMinCompressSize is the smallest payload compressed when compression is on
	DefaultMinCompressSize = 256
)

// Nats delivers envelopes over NATS request/reply. Every location listens on
// its own subject made of the prefix and the location id.
type Nats struct {
	conn        *nats.Conn
	prefix      string
	compression string
	minSize     int
	logger      log.Logger

	subscriptions *xsync.Map[address.LocationID, *nats.Subscription]
	mu            sync.Mutex
	closed        *atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// enforce compilation error
var _ Transport = (*Nats)(nil)

// NatsOption configures the NATS transport
type NatsOption func(*Nats)

// WithSubjectPrefix sets the subject prefix
func WithSubjectPrefix(prefix string) NatsOption {
	return func(n *Nats) {
		if prefix != "" {
			n.prefix = prefix
		}
	}
}

// WithCompression sets the payload compression algorithm, compression.Zstd or compression.None
func WithCompression(algorithm string) NatsOption {
	return func(n *Nats) {
		n.compression = algorithm
	}
}

// WithMinCompressSize sets the smallest message compressed
func WithMinCompressSize(size int) NatsOption {
	return func(n *Nats) {
		n.minSize = size
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) NatsOption {
	return func(n *Nats) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNats creates a transport on top of the given connection.
// The connection is owned by the caller.
func NewNats(conn *nats.Conn, opts ...NatsOption) (*Nats, error) {
	if conn == nil {
		return nil, errors.New("transport: nats connection is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	transport := &Nats{
		conn:          conn,
		prefix:        DefaultSubjectPrefix,
		compression:   compression.None,
		minSize:       DefaultMinCompressSize,
		logger:        log.DiscardLogger,
		subscriptions: xsync.NewMap[address.LocationID, *nats.Subscription](),
		closed:        atomic.NewBool(false),
		ctx:           ctx,
		cancel:        cancel,
	}

	for _, opt := range opts {
		opt(transport)
	}

	switch transport.compression {
	case compression.None, compression.Zstd:
	default:
		cancel()
		return nil, fmt.Errorf("transport: unsupported compression %q", transport.compression)
	}

	return transport, nil
}

// Subject returns the subject the given location listens on
func (n *Nats) Subject(location address.LocationID) string {
	return fmt.Sprintf("%s.%d", n.prefix, location.Int64())
}

// Deliver sends the envelope to location and waits for the reply
func (n *Nats) Deliver(ctx context.Context, location address.LocationID, envelope *Envelope) ([]byte, error) {
	if err := validate(location, envelope); err != nil {
		return nil, err
	}

	if n.closed.Load() {
		return nil, gerrors.NewErrLocationUnreachable(location.Int64(), errClosed)
	}

	id := envelope.ID
	if id == "" {
		id = uuid.NewString()
	}

	request := &locationpb.Envelope{
		Id:          id,
		ActorId:     envelope.ActorID.Int64(),
		Payload:     envelope.Payload,
		ExpectReply: envelope.ExpectReply,
	}

	data, err := n.encode(request)
	if err != nil {
		return nil, err
	}

	msg, err := n.conn.RequestWithContext(ctx, n.Subject(location), data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, gerrors.NewErrLocationUnreachable(location.Int64(), err)
	}

	reply := new(locationpb.DeliveryReply)
	if err := n.decode(msg.Data, reply); err != nil {
		return nil, gerrors.NewErrLocationUnreachable(location.Int64(), err)
	}

	switch reply.Status {
	case locationpb.DeliveryStatus_OK:
		return reply.Payload, nil
	case locationpb.DeliveryStatus_NOT_FOUND:
		return nil, gerrors.NewErrActorNotFound(envelope.ActorID.Int64())
	default:
		return nil, gerrors.NewErrMessageRejected(errors.New(reply.Error))
	}
}

// Serve subscribes to the subject of location. A previous handler of the same
// location is replaced.
func (n *Nats) Serve(location address.LocationID, handler Handler) error {
	if !location.IsValid() {
		return gerrors.NewErrInvalidLocationID(location.Int64())
	}
	if handler == nil {
		return errors.New("transport: handler is nil")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed.Load() {
		return errClosed
	}

	subscription, err := n.conn.Subscribe(n.Subject(location), func(msg *nats.Msg) {
		n.handle(location, handler, msg)
	})
	if err != nil {
		return fmt.Errorf("transport: failed to subscribe location=%d: %w", location.Int64(), err)
	}

	// make sure the subscription is known to the server before returning
	if err := n.conn.Flush(); err != nil {
		_ = subscription.Unsubscribe()
		return fmt.Errorf("transport: failed to subscribe location=%d: %w", location.Int64(), err)
	}

	if previous, ok := n.subscriptions.Get(location); ok {
		_ = previous.Unsubscribe()
	}
	n.subscriptions.Set(location, subscription)
	n.logger.Debugf("serving location=%d on subject=%s", location.Int64(), subscription.Subject)
	return nil
}

// Unserve unsubscribes the subject of location
func (n *Nats) Unserve(location address.LocationID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	subscription, ok := n.subscriptions.Get(location)
	if !ok {
		return nil
	}
	n.subscriptions.Delete(location)
	return subscription.Unsubscribe()
}

// Close unsubscribes every location. The connection is left open.
func (n *Nats) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed.Swap(true) {
		return nil
	}

	n.cancel()
	var errs []error
	n.subscriptions.Range(func(_ address.LocationID, subscription *nats.Subscription) bool {
		if err := subscription.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, err)
		}
		return true
	})
	n.subscriptions.Reset()
	return errors.Join(errs...)
}

func (n *Nats) handle(location address.LocationID, handler Handler, msg *nats.Msg) {
	request := new(locationpb.Envelope)
	if err := n.decode(msg.Data, request); err != nil {
		n.logger.Errorf("dropping malformed envelope at location=%d: %v", location.Int64(), err)
		return
	}

	envelope := &Envelope{
		ID:          request.Id,
		ActorID:     address.ActorID(request.ActorId),
		Payload:     request.Payload,
		ExpectReply: request.ExpectReply,
	}

	reply := new(locationpb.DeliveryReply)
	payload, err := handler(n.ctx, envelope)
	switch {
	case err == nil:
		reply.Status = locationpb.DeliveryStatus_OK
		reply.Payload = payload
	case errors.Is(err, gerrors.ErrActorNotFound):
		reply.Status = locationpb.DeliveryStatus_NOT_FOUND
	default:
		reply.Status = locationpb.DeliveryStatus_REJECTED
		reply.Error = err.Error()
	}

	data, err := n.encode(reply)
	if err != nil {
		n.logger.Errorf("failed to encode reply of envelope=%s: %v", envelope.ID, err)
		return
	}

	if err := msg.Respond(data); err != nil {
		n.logger.Warnf("failed to reply to envelope=%s: %v", envelope.ID, err)
	}
}

func (n *Nats) encode(message locationpb.Message) ([]byte, error) {
	bytes, err := message.Marshal()
	if err != nil {
		return nil, err
	}
	return compression.Encode(n.compression, bytes, n.minSize)
}

func (n *Nats) decode(data []byte, message locationpb.Message) error {
	bytes, err := compression.Decode(data)
	if err != nil {
		return err
	}
	return message.Unmarshal(bytes)
}
