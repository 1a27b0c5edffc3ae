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

// Package telemetry exposes the OpenTelemetry instruments of the location
// subsystem. Instruments are created from the global MeterProvider unless one
// is given, so an application that configures OpenTelemetry gets them for free.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/tochemey/actorloc"

// Telemetry holds the meter and the instruments built from it
type Telemetry struct {
	meterProvider metric.MeterProvider
	meter         metric.Meter
	metrics       *Metrics
}

// New creates a Telemetry. Instrument creation failures are reported to the
// global otel error handler and replaced by no-op instruments.
func New(opts ...Option) *Telemetry {
	telemetry := &Telemetry{
		meterProvider: otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt.Apply(telemetry)
	}

	telemetry.meter = telemetry.meterProvider.Meter(instrumentationName)

	metrics, err := NewMetrics(telemetry.meter)
	if err != nil {
		otel.Handle(err)
		metrics, _ = NewMetrics(noop.NewMeterProvider().Meter(instrumentationName))
	}
	telemetry.metrics = metrics
	return telemetry
}

// Noop returns a Telemetry whose instruments record nothing
func Noop() *Telemetry {
	return New(WithMeterProvider(noop.NewMeterProvider()))
}

// Meter returns the meter
func (x *Telemetry) Meter() metric.Meter {
	return x.meter
}

// Metrics returns the instruments
func (x *Telemetry) Metrics() *Metrics {
	return x.metrics
}

// Option configures a Telemetry
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Telemetry)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Telemetry)

// Apply applies the option
func (f OptionFunc) Apply(t *Telemetry) {
	f(t)
}

// WithMeterProvider sets the meter provider. A nil provider is ignored.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(t *Telemetry) {
		if provider != nil {
			t.meterProvider = provider
		}
	})
}
