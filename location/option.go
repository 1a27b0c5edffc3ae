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

package location

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/actorloc/log"
	"github.com/tochemey/actorloc/store"
	"github.com/tochemey/actorloc/transport"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Service)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Service)

// Apply applies the option
func (f OptionFunc) Apply(s *Service) {
	f(s)
}

// WithTransport sets the transport. The service does not close it.
func WithTransport(tr transport.Transport) Option {
	return OptionFunc(func(s *Service) {
		s.transport = tr
	})
}

// WithStore sets the store of the local directory. The service does not close it.
func WithStore(st store.Store) Option {
	return OptionFunc(func(s *Service) {
		s.store = st
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// WithMeterProvider sets the meter provider of the service instruments
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(s *Service) {
		s.meterProvider = provider
	})
}

// WithHandler sets the handler receiving the messages sent to the actors
// hosted by this process
func WithHandler(handler transport.Handler) Option {
	return OptionFunc(func(s *Service) {
		s.handler = handler
	})
}
