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
	"fmt"
	"net"
	nethttp "net/http"

	"connectrpc.com/connect"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	"github.com/tochemey/actorloc/directory"
	"github.com/tochemey/actorloc/internal/codec"
	"github.com/tochemey/actorloc/internal/compression"
	"github.com/tochemey/actorloc/internal/http"
	"github.com/tochemey/actorloc/internal/locationpb"
	"github.com/tochemey/actorloc/log"
)

// Handler returns the HTTP handler serving the directory RPC service
func Handler(dir *directory.Directory, logger log.Logger) nethttp.Handler {
	if logger == nil {
		logger = log.DiscardLogger
	}

	svc := &service{dir: dir, logger: logger}
	opts := []connect.HandlerOption{codec.Option(), compression.HandlerOption()}

	mux := nethttp.NewServeMux()
	mux.Handle(addLocationProcedure, connect.NewUnaryHandler(addLocationProcedure, svc.addLocation, opts...))
	mux.Handle(removeLocationProcedure, connect.NewUnaryHandler(removeLocationProcedure, svc.removeLocation, opts...))
	mux.Handle(getLocationProcedure, connect.NewUnaryHandler(getLocationProcedure, svc.getLocation, opts...))
	return mux
}

type service struct {
	dir    *directory.Directory
	logger log.Logger
}

func (s *service) addLocation(ctx context.Context, req *connect.Request[locationpb.AddLocationRequest]) (*connect.Response[locationpb.AddLocationResponse], error) {
	msg := req.Msg
	if err := s.dir.Add(ctx, address.ActorID(msg.ActorId), address.LocationID(msg.LocationId)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(new(locationpb.AddLocationResponse)), nil
}

func (s *service) removeLocation(ctx context.Context, req *connect.Request[locationpb.RemoveLocationRequest]) (*connect.Response[locationpb.RemoveLocationResponse], error) {
	if err := s.dir.Remove(ctx, address.ActorID(req.Msg.ActorId)); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(new(locationpb.RemoveLocationResponse)), nil
}

func (s *service) getLocation(_ context.Context, req *connect.Request[locationpb.GetLocationRequest]) (*connect.Response[locationpb.GetLocationResponse], error) {
	locationID, found := s.dir.Get(address.ActorID(req.Msg.ActorId))
	return connect.NewResponse(&locationpb.GetLocationResponse{
		LocationId: locationID.Int64(),
		Found:      found,
	}), nil
}

// Server exposes a directory to remote proxies
type Server struct {
	dir      *directory.Directory
	bindAddr string
	logger   log.Logger
	server   *nethttp.Server
	listener net.Listener
	started  *atomic.Bool
	serveErr chan error
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithServerLogger sets the server logger
func WithServerLogger(logger log.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server that will listen on bindAddr
func NewServer(bindAddr string, dir *directory.Directory, opts ...ServerOption) *Server {
	server := &Server{
		dir:      dir,
		bindAddr: bindAddr,
		logger:   log.DiscardLogger,
		started:  atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(server)
	}
	return server
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	if s.started.Swap(true) {
		return nil
	}

	listener, err := net.Listen("tcp", s.bindAddr)
	if err != nil {
		s.started.Store(false)
		return fmt.Errorf("proxy: failed to listen on %s: %w", s.bindAddr, err)
	}

	s.listener = listener
	s.serveErr = make(chan error, 1)
	s.server = http.NewServer(context.WithoutCancel(ctx), listener.Addr().String(), Handler(s.dir, s.logger), 0)

	server, serveErr := s.server, s.serveErr
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			s.logger.Errorf("location directory server failed: %v", err)
			serveErr <- err
		}
		close(serveErr)
	}()

	s.logger.Infof("location directory serving on %s", listener.Addr().String())
	return nil
}

// Addr returns the address the server listens on once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bindAddr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.Swap(false) {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	if err, ok := <-s.serveErr; ok {
		return err
	}
	s.logger.Info("location directory server stopped")
	return nil
}
