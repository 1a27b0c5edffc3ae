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

package proxy

import (
	"context"
	"errors"
	nethttp "net/http"
	"strconv"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/singleflight"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
	"github.com/tochemey/actorloc/hash"
	"github.com/tochemey/actorloc/internal/codec"
	"github.com/tochemey/actorloc/internal/compression"
	"github.com/tochemey/actorloc/internal/http"
	"github.com/tochemey/actorloc/internal/locationpb"
	"github.com/tochemey/actorloc/log"
)

// DefaultRequestTimeout bounds a single directory call
const DefaultRequestTimeout = 5 * time.Second

// partition is the client of one directory endpoint
type partition struct {
	endpoint string
	add      *connect.Client[locationpb.AddLocationRequest, locationpb.AddLocationResponse]
	remove   *connect.Client[locationpb.RemoveLocationRequest, locationpb.RemoveLocationResponse]
	get      *connect.Client[locationpb.GetLocationRequest, locationpb.GetLocationResponse]
}

// Remote is a Proxy talking to one or more directory servers.
//
// With several endpoints the actors are partitioned across them by hashing the
// actor id, every node must list the endpoints in the same order so each actor
// has a single authoritative directory. Concurrent Get calls for the same
// actor are coalesced into one RPC.
type Remote struct {
	partitions []*partition
	httpClient *nethttp.Client
	hasher     hash.Hasher
	group      singleflight.Group
	timeout    time.Duration
	compress   bool
	logger     log.Logger
}

// enforce compilation error
var _ Proxy = (*Remote)(nil)

// RemoteOption configures a Remote
type RemoteOption func(*Remote)

// WithHTTPClient sets the HTTP client used to reach the directory servers
func WithHTTPClient(client *nethttp.Client) RemoteOption {
	return func(r *Remote) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithRequestTimeout bounds every directory call
func WithRequestTimeout(timeout time.Duration) RemoteOption {
	return func(r *Remote) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithCompression makes the proxy send zstd compressed requests
func WithCompression(enabled bool) RemoteOption {
	return func(r *Remote) {
		r.compress = enabled
	}
}

// WithRemoteLogger sets the logger
func WithRemoteLogger(logger log.Logger) RemoteOption {
	return func(r *Remote) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPartitionHasher sets the hasher used to select the owning endpoint
func WithPartitionHasher(hasher hash.Hasher) RemoteOption {
	return func(r *Remote) {
		if hasher != nil {
			r.hasher = hasher
		}
	}
}

// NewRemote creates a Remote over the given directory endpoints (host:port)
func NewRemote(endpoints []string, opts ...RemoteOption) (*Remote, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("proxy: at least one directory endpoint is required")
	}

	remote := &Remote{
		hasher:  hash.DefaultHasher(),
		timeout: DefaultRequestTimeout,
		logger:  log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(remote)
	}
	if remote.httpClient == nil {
		remote.httpClient = http.NewClient(0)
	}

	clientOpts := []connect.ClientOption{codec.Option()}
	if remote.compress {
		clientOpts = append(clientOpts, compression.ClientOptions()...)
	}

	remote.partitions = make([]*partition, 0, len(endpoints))
	for _, endpoint := range endpoints {
		baseURL := http.URL(endpoint)
		remote.partitions = append(remote.partitions, &partition{
			endpoint: endpoint,
			add: connect.NewClient[locationpb.AddLocationRequest, locationpb.AddLocationResponse](
				remote.httpClient, baseURL+addLocationProcedure, clientOpts...),
			remove: connect.NewClient[locationpb.RemoveLocationRequest, locationpb.RemoveLocationResponse](
				remote.httpClient, baseURL+removeLocationProcedure, clientOpts...),
			get: connect.NewClient[locationpb.GetLocationRequest, locationpb.GetLocationResponse](
				remote.httpClient, baseURL+getLocationProcedure, clientOpts...),
		})
	}

	return remote, nil
}

// Add implements Proxy
func (r *Remote) Add(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if !actorID.IsValid() {
		return gerrors.NewErrInvalidActorID(actorID.Int64())
	}
	if !locationID.IsValid() {
		return gerrors.NewErrInvalidLocationID(locationID.Int64())
	}

	part := r.partitionOf(actorID)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := part.add.CallUnary(ctx, connect.NewRequest(&locationpb.AddLocationRequest{
		ActorId:    actorID.Int64(),
		LocationId: locationID.Int64(),
	}))
	if err != nil {
		r.logger.Warnf("failed to add actor=%d on %s: %v", actorID, part.endpoint, err)
		return fromConnectError(ctx, part.endpoint, actorID.Int64(), err)
	}
	return nil
}

// Remove implements Proxy
func (r *Remote) Remove(ctx context.Context, actorID address.ActorID) error {
	if !actorID.IsValid() {
		return gerrors.NewErrInvalidActorID(actorID.Int64())
	}

	part := r.partitionOf(actorID)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := part.remove.CallUnary(ctx, connect.NewRequest(&locationpb.RemoveLocationRequest{ActorId: actorID.Int64()}))
	if err != nil {
		r.logger.Warnf("failed to remove actor=%d on %s: %v", actorID, part.endpoint, err)
		return fromConnectError(ctx, part.endpoint, actorID.Int64(), err)
	}
	return nil
}

// Get implements Proxy
func (r *Remote) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, error) {
	part := r.partitionOf(actorID)
	key := strconv.FormatInt(actorID.Int64(), 10)

	// the shared call must not be cancelled by the first caller going away
	resultCh := r.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		resp, err := part.get.CallUnary(callCtx, connect.NewRequest(&locationpb.GetLocationRequest{ActorId: actorID.Int64()}))
		if err != nil {
			return nil, fromConnectError(callCtx, part.endpoint, actorID.Int64(), err)
		}
		return resp.Msg, nil
	})

	select {
	case <-ctx.Done():
		return address.NoLocation, ctx.Err()
	case result := <-resultCh:
		if result.Err != nil {
			r.logger.Warnf("failed to resolve actor=%d on %s: %v", actorID, part.endpoint, result.Err)
			return address.NoLocation, result.Err
		}
		msg := result.Val.(*locationpb.GetLocationResponse)
		if !msg.Found {
			return address.NoLocation, gerrors.NewErrActorNotFound(actorID.Int64())
		}
		return address.LocationID(msg.LocationId), nil
	}
}

// Close implements Proxy
func (r *Remote) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}

// Endpoint returns the directory endpoint owning the actor
func (r *Remote) Endpoint(actorID address.ActorID) string {
	return r.partitionOf(actorID).endpoint
}

func (r *Remote) partitionOf(actorID address.ActorID) *partition {
	return r.partitions[hash.Partition(r.hasher, actorID.Int64(), len(r.partitions))]
}
