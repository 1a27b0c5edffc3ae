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

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	directoryEntriesName = "location_directory_entries"
	lockWaitersName      = "location_lock_waiters"
	senderCountName      = "location_sender_count"
	sendRetriesName      = "location_send_retries_total"
	sendFailuresName     = "location_send_failures_total"
	senderEvictionsName  = "location_sender_evictions_total"
	deliveryDurationName = "location_delivery_duration"
	failureReasonKey     = "reason"
	locationAttributeKey = "location"
)

// Metrics groups the instruments of the directory and the sender registry.
//
// All record methods accept a nil receiver so components built without
// telemetry do not need to guard every call.
type Metrics struct {
	directoryEntries metric.Int64UpDownCounter
	lockWaiters      metric.Int64UpDownCounter
	senderCount      metric.Int64UpDownCounter
	sendRetries      metric.Int64Counter
	sendFailures     metric.Int64Counter
	senderEvictions  metric.Int64Counter
	deliveryDuration metric.Float64Histogram
}

// NewMetrics creates the instruments using the given meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	var err error

	if metrics.directoryEntries, err = meter.Int64UpDownCounter(
		directoryEntriesName,
		metric.WithDescription("The number of actors recorded in the location directory"),
	); err != nil {
		return nil, fmt.Errorf("failed to create directory entries instrument, %w", err)
	}

	if metrics.lockWaiters, err = meter.Int64UpDownCounter(
		lockWaitersName,
		metric.WithDescription("The number of directory mutations waiting for a per-actor lock"),
	); err != nil {
		return nil, fmt.Errorf("failed to create lock waiters instrument, %w", err)
	}

	if metrics.senderCount, err = meter.Int64UpDownCounter(
		senderCountName,
		metric.WithDescription("The number of live actor location senders"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sender count instrument, %w", err)
	}

	if metrics.sendRetries, err = meter.Int64Counter(
		sendRetriesName,
		metric.WithDescription("The total number of delivery attempts retried after a stale location"),
	); err != nil {
		return nil, fmt.Errorf("failed to create send retries instrument, %w", err)
	}

	if metrics.sendFailures, err = meter.Int64Counter(
		sendFailuresName,
		metric.WithDescription("The total number of messages that could not be delivered"),
	); err != nil {
		return nil, fmt.Errorf("failed to create send failures instrument, %w", err)
	}

	if metrics.senderEvictions, err = meter.Int64Counter(
		senderEvictionsName,
		metric.WithDescription("The total number of idle senders evicted by the sweep"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sender evictions instrument, %w", err)
	}

	if metrics.deliveryDuration, err = meter.Float64Histogram(
		deliveryDurationName,
		metric.WithDescription("The latency of a delivered message in milliseconds, retries included"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create delivery duration instrument, %w", err)
	}

	return metrics, nil
}

// AddDirectoryEntries moves the directory size by delta
func (x *Metrics) AddDirectoryEntries(ctx context.Context, delta int64) {
	if x == nil || delta == 0 {
		return
	}
	x.directoryEntries.Add(ctx, delta)
}

// AddLockWaiters moves the number of lock waiters by delta
func (x *Metrics) AddLockWaiters(ctx context.Context, delta int64) {
	if x == nil {
		return
	}
	x.lockWaiters.Add(ctx, delta)
}

// AddSenders moves the number of live senders by delta
func (x *Metrics) AddSenders(ctx context.Context, delta int64) {
	if x == nil {
		return
	}
	x.senderCount.Add(ctx, delta)
}

// RecordRetry counts a retried delivery to the given location
func (x *Metrics) RecordRetry(ctx context.Context, locationID int64) {
	if x == nil {
		return
	}
	x.sendRetries.Add(ctx, 1, metric.WithAttributes(attribute.Int64(locationAttributeKey, locationID)))
}

// RecordFailure counts an undelivered message
func (x *Metrics) RecordFailure(ctx context.Context, reason string) {
	if x == nil {
		return
	}
	x.sendFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(failureReasonKey, reason)))
}

// RecordEvictions counts evicted senders
func (x *Metrics) RecordEvictions(ctx context.Context, count int64) {
	if x == nil || count == 0 {
		return
	}
	x.senderEvictions.Add(ctx, count)
}

// RecordDelivery records the latency of a delivered message
func (x *Metrics) RecordDelivery(ctx context.Context, elapsed time.Duration) {
	if x == nil {
		return
	}
	x.deliveryDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond))
}
