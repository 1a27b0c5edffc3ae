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
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

var bucketCounter = atomic.NewUint64(0)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()

	serv, err := natsserver.NewServer(&natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}
	t.Cleanup(serv.Shutdown)
	return serv
}

func TestNatsStore(t *testing.T) {
	serv := startNatsServer(t)

	conn, err := nats.Connect(serv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	testStore(t, func(t *testing.T) Store {
		store, err := NewNatsStore(conn, fmt.Sprintf("locations-%d", bucketCounter.Inc()))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		return store
	})

	t.Run("With existing bucket", func(t *testing.T) {
		first, err := NewNatsStore(conn, "")
		require.NoError(t, err)
		second, err := NewNatsStore(conn, DefaultNatsBucket)
		require.NoError(t, err)

		require.NoError(t, first.Put(t.Context(), 5, 6))
		locationID, found, err := second.Get(t.Context(), 5)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 6, locationID)
	})
	t.Run("With nil connection", func(t *testing.T) {
		_, err := NewNatsStore(nil, "")
		require.Error(t, err)
	})
}
