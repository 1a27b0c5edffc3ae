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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrLockAborted is returned to a lock waiter when the lock table owning the
	// key is closed while the waiter is still queued.
	ErrLockAborted = errors.New("lock wait aborted")

	// ErrActorNotFound indicates that the directory holds no location for the actor.
	// Absence means the actor is not currently reachable; it is not a transient state.
	ErrActorNotFound = errors.New("actor not found")

	// ErrDeliveryFailed is returned when a message exhausted its retry budget.
	ErrDeliveryFailed = errors.New("delivery failed")

	// ErrLocationUnreachable is returned by transports and remote proxies when the
	// addressed process cannot be reached.
	ErrLocationUnreachable = errors.New("location unreachable")

	// ErrMessageRejected is returned when the destination actor received the message
	// and its handler returned an error. Such failures are never retried.
	ErrMessageRejected = errors.New("message rejected by actor")

	// ErrSenderStopped is returned for messages still queued when the sender registry stops.
	ErrSenderStopped = errors.New("sender stopped")

	// ErrServiceNotStarted is returned when the location service is used before Start.
	ErrServiceNotStarted = errors.New("location service is not started")

	// ErrServiceAlreadyStarted is returned when Start is called twice.
	ErrServiceAlreadyStarted = errors.New("location service already started")

	// ErrInvalidActorID is returned when the zero actor id is used.
	ErrInvalidActorID = errors.New("invalid actor id")

	// ErrInvalidLocationID is returned when the zero location id is used.
	ErrInvalidLocationID = errors.New("invalid location id")

	// ErrInvalidConfig is returned when the configuration does not validate.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStoreClosed is returned by stores used after Close.
	ErrStoreClosed = errors.New("store is closed")

	// ErrDirectoryClosed is returned by the directory once it has been closed.
	ErrDirectoryClosed = errors.New("directory is closed")

	// ErrDirectoryUnavailable is returned when a remote directory endpoint cannot be reached.
	ErrDirectoryUnavailable = errors.New("location directory unavailable")
)

// NewErrActorNotFound formats an ErrActorNotFound with the given actor id.
func NewErrActorNotFound(actorID int64) error {
	return fmt.Errorf("(actor=%d) %w", actorID, ErrActorNotFound)
}

// NewErrLockAborted formats an ErrLockAborted with the given key.
func NewErrLockAborted(key int64) error {
	return fmt.Errorf("(key=%d) %w", key, ErrLockAborted)
}

// NewErrInvalidActorID formats an ErrInvalidActorID with the given value.
func NewErrInvalidActorID(actorID int64) error {
	return fmt.Errorf("(actor=%d) %w", actorID, ErrInvalidActorID)
}

// NewErrInvalidLocationID formats an ErrInvalidLocationID with the given value.
func NewErrInvalidLocationID(locationID int64) error {
	return fmt.Errorf("(location=%d) %w", locationID, ErrInvalidLocationID)
}

// NewErrLocationUnreachable wraps a transport level error with ErrLocationUnreachable.
func NewErrLocationUnreachable(locationID int64, err error) error {
	return errors.Join(fmt.Errorf("(location=%d) %w", locationID, ErrLocationUnreachable), err)
}

// NewErrDirectoryUnavailable wraps an RPC error with ErrDirectoryUnavailable.
func NewErrDirectoryUnavailable(endpoint string, err error) error {
	return errors.Join(fmt.Errorf("(endpoint=%s) %w", endpoint, ErrDirectoryUnavailable), err)
}

// NewErrMessageRejected wraps the error returned by the destination actor.
func NewErrMessageRejected(err error) error {
	return errors.Join(ErrMessageRejected, err)
}

// NewErrInvalidConfig wraps configuration violations.
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// DeliveryError is returned when a message could not be delivered within the
// configured retry budget. It carries the number of attempts made and the
// error of the last attempt. It only matches ErrDeliveryFailed: the last
// attempt error is available through Cause.
type DeliveryError struct {
	ActorID  int64
	Attempts int
	cause    error
}

// enforce compilation error
var _ error = (*DeliveryError)(nil)

// NewErrDeliveryFailed creates a DeliveryError
func NewErrDeliveryFailed(actorID int64, attempts int, cause error) *DeliveryError {
	return &DeliveryError{
		ActorID:  actorID,
		Attempts: attempts,
		cause:    cause,
	}
}

// Error implements the standard error interface
func (e *DeliveryError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("(actor=%d attempts=%d) %s", e.ActorID, e.Attempts, ErrDeliveryFailed.Error())
	}
	return fmt.Sprintf("(actor=%d attempts=%d) %s: %v", e.ActorID, e.Attempts, ErrDeliveryFailed.Error(), e.cause)
}

// Cause returns the error of the last attempt
func (e *DeliveryError) Cause() error {
	return e.cause
}

// Unwrap returns ErrDeliveryFailed
func (e *DeliveryError) Unwrap() error {
	return ErrDeliveryFailed
}
