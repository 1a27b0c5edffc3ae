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

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/actorloc/address"
)

func TestBoltStore(t *testing.T) {
	testStore(t, func(t *testing.T) Store {
		store, err := NewBoltStore(filepath.Join(t.TempDir(), "locations.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})

	t.Run("With reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "locations.db")

		store, err := NewBoltStore(path)
		require.NoError(t, err)
		assert.Equal(t, path, store.Path())
		require.NoError(t, store.Put(ctx, 42, 7))
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		reopened, err := NewBoltStore(path)
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()

		locationID, found, err := reopened.Get(ctx, 42)
		require.NoError(t, err)
		require.True(t, found)
		assert.EqualValues(t, 7, locationID)
	})
	t.Run("With ordered iteration", func(t *testing.T) {
		ctx := context.Background()
		store, err := NewBoltStore(filepath.Join(t.TempDir(), "locations.db"))
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		for _, id := range []address.ActorID{3, -1, 2, -10} {
			require.NoError(t, store.Put(ctx, id, 1))
		}

		var ids []address.ActorID
		require.NoError(t, store.Iterate(ctx, func(actorID address.ActorID, _ address.LocationID) bool {
			ids = append(ids, actorID)
			return true
		}))
		assert.Equal(t, []address.ActorID{-10, -1, 2, 3}, ids)
	})
	t.Run("With invalid path", func(t *testing.T) {
		_, err := NewBoltStore(filepath.Join(t.TempDir(), "missing", "locations.db"))
		require.Error(t, err)
	})
}

func TestIDEncoding(t *testing.T) {
	for _, id := range []int64{0, 1, -1, 1 << 62, -(1 << 62)} {
		decoded, err := decodeID(encodeID(id))
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
	_, err := decodeID([]byte{1, 2})
	require.Error(t, err)
}
