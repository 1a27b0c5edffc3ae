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
	"errors"
	"fmt"
	"strings"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
	"go.uber.org/atomic"

	"github.com/tochemey/actorloc/address"
	gerrors "github.com/tochemey/actorloc/errors"
)

// DefaultEtcdNamespace is the key prefix used when none is given
const DefaultEtcdNamespace = "/actorloc/locations/"

const etcdPageSize = 512

// EtcdStore persists the table in etcd under a key namespace.
// Keys are decimal actor ids and values decimal location ids.
type EtcdStore struct {
	kv     clientv3.KV
	closed *atomic.Bool
}

var _ Store = (*EtcdStore)(nil)

// NewEtcdStore creates an EtcdStore. The client stays owned by the caller.
func NewEtcdStore(client *clientv3.Client, prefix string) (*EtcdStore, error) {
	if client == nil {
		return nil, errors.New("store: etcd client is required")
	}
	return &EtcdStore{
		kv:     namespace.NewKV(client.KV, normalizeNamespace(prefix)),
		closed: atomic.NewBool(false),
	}, nil
}

// Put implements Store
func (s *EtcdStore) Put(ctx context.Context, actorID address.ActorID, locationID address.LocationID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, actorID.String(), locationID.String()); err != nil {
		return fmt.Errorf("store: etcd put: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *EtcdStore) Delete(ctx context.Context, actorID address.ActorID) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}
	if _, err := s.kv.Delete(ctx, actorID.String()); err != nil {
		return fmt.Errorf("store: etcd delete: %w", err)
	}
	return nil
}

// Get implements Store
func (s *EtcdStore) Get(ctx context.Context, actorID address.ActorID) (address.LocationID, bool, error) {
	if err := s.ensureOpen(ctx); err != nil {
		return address.NoLocation, false, err
	}
	resp, err := s.kv.Get(ctx, actorID.String())
	if err != nil {
		return address.NoLocation, false, fmt.Errorf("store: etcd get: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return address.NoLocation, false, nil
	}
	locationID, err := address.ParseLocationID(string(resp.Kvs[0].Value))
	if err != nil {
		return address.NoLocation, false, err
	}
	return locationID, true, nil
}

// Iterate implements Store. Keys are read in pages ordered by key.
func (s *EtcdStore) Iterate(ctx context.Context, fn func(address.ActorID, address.LocationID) bool) error {
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	start := ""
	for {
		resp, err := s.kv.Get(ctx, start,
			clientv3.WithFromKey(),
			clientv3.WithLimit(etcdPageSize),
			clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
		if err != nil {
			return fmt.Errorf("store: etcd range: %w", err)
		}

		for _, kv := range resp.Kvs {
			actorID, locationID, err := parseEntry(string(kv.Key), string(kv.Value))
			if err != nil {
				return err
			}
			if !fn(actorID, locationID) {
				return nil
			}
		}

		if !resp.More || len(resp.Kvs) == 0 {
			return nil
		}
		// resume right after the last key of the page
		start = string(resp.Kvs[len(resp.Kvs)-1].Key) + "\x00"
	}
}

// Close implements Store. It does not close the client.
func (s *EtcdStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *EtcdStore) ensureOpen(ctx context.Context) error {
	if s.closed.Load() {
		return gerrors.ErrStoreClosed
	}
	return contextErr(ctx)
}

func normalizeNamespace(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return DefaultEtcdNamespace
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
