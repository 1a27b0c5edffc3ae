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

package http

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	// DefaultMaxReadFrameSize is the HTTP/2 frame size used when none is given
	DefaultMaxReadFrameSize uint32 = 1 << 20
	// DefaultRequestTimeout bounds a request that does not honor its context
	DefaultRequestTimeout = 30 * time.Second
)

// NewClient creates an HTTP/2 cleartext (h2c) client.
//
// Every directory call of a node to a given endpoint is multiplexed over a
// single TCP connection. Pings detect a dead peer well before the request
// timeout so a lost directory endpoint surfaces as an error quickly.
func NewClient(maxReadFrameSize uint32) *http.Client {
	if maxReadFrameSize == 0 {
		maxReadFrameSize = DefaultMaxReadFrameSize
	}

	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Client{
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: DefaultRequestTimeout,
		Transport: &http2.Transport{
			AllowHTTP:        true,
			MaxReadFrameSize: maxReadFrameSize,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
			PingTimeout:     10 * time.Second,
			ReadIdleTimeout: 20 * time.Second,
		},
	}
}

// NewServer creates an HTTP server serving handler over h2c.
// Requests inherit ctx as their base context.
func NewServer(ctx context.Context, addr string, handler http.Handler, maxReadFrameSize uint32) *http.Server {
	if maxReadFrameSize == 0 {
		maxReadFrameSize = DefaultMaxReadFrameSize
	}

	http2Server := &http2.Server{
		MaxConcurrentStreams: 1000,
		MaxReadFrameSize:     maxReadFrameSize,
		IdleTimeout:          2 * time.Minute,
	}

	return &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, http2Server),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

// URL turns a host:port endpoint into the base URL of a cleartext server.
// Endpoints that already carry a scheme are returned unchanged.
func URL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	return "http://" + endpoint
}
