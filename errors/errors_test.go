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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	t.Run("With actor not found", func(t *testing.T) {
		err := NewErrActorNotFound(42)
		require.ErrorIs(t, err, ErrActorNotFound)
		assert.EqualError(t, err, "(actor=42) actor not found")
	})
	t.Run("With lock aborted", func(t *testing.T) {
		err := NewErrLockAborted(7)
		require.ErrorIs(t, err, ErrLockAborted)
		assert.EqualError(t, err, "(key=7) lock wait aborted")
	})
	t.Run("With location unreachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewErrLocationUnreachable(9, cause)
		require.ErrorIs(t, err, ErrLocationUnreachable)
		require.ErrorIs(t, err, cause)
	})
	t.Run("With directory unavailable", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := NewErrDirectoryUnavailable("127.0.0.1:9000", cause)
		require.ErrorIs(t, err, ErrDirectoryUnavailable)
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "endpoint=127.0.0.1:9000")
	})
	t.Run("With message rejected", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewErrMessageRejected(cause)
		require.ErrorIs(t, err, ErrMessageRejected)
		require.ErrorIs(t, err, cause)
	})
	t.Run("With invalid ids and config", func(t *testing.T) {
		require.ErrorIs(t, NewErrInvalidActorID(0), ErrInvalidActorID)
		require.ErrorIs(t, NewErrInvalidLocationID(0), ErrInvalidLocationID)
		require.ErrorIs(t, NewErrInvalidConfig(errors.New("x")), ErrInvalidConfig)
	})
}

func TestDeliveryError(t *testing.T) {
	cause := errors.New("no responders")
	err := NewErrDeliveryFailed(42, 3, cause)

	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.NotErrorIs(t, err, cause)
	assert.Equal(t, "(actor=42 attempts=3) delivery failed: no responders", err.Error())

	var target *DeliveryError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 3, target.Attempts)
	assert.Equal(t, cause, target.Cause())

	notHere := NewErrDeliveryFailed(42, 3, NewErrActorNotFound(42))
	assert.NotErrorIs(t, notHere, ErrActorNotFound)
	assert.ErrorIs(t, notHere.Cause(), ErrActorNotFound)

	bare := NewErrDeliveryFailed(1, 1, nil)
	require.ErrorIs(t, bare, ErrDeliveryFailed)
	assert.NoError(t, bare.Cause())
	assert.Equal(t, "(actor=1 attempts=1) delivery failed", bare.Error())
}
