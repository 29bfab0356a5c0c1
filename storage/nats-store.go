// seqtoid: a toolkit for preparing sequencing runs for analysis pipelines.
// Copyright (c) 2024-2025 the CypherID developers.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License along with this program. If not, see
// <https://github.com/cypherid/seqtoid/blob/master/LICENSE.txt>.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/cypherid/seqtoid/utils"
)

// An ObjectStore serves objects from a NATS JetStream object store
// bucket.
type ObjectStore struct {
	conn  *nats.Conn
	store jetstream.ObjectStore
}

// DialObjectStore connects to a NATS server and binds the given
// bucket.
func DialObjectStore(ctx context.Context, url, bucket string) (*ObjectStore, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url, nats.Name(utils.ProgramName))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to object store at %v: %w", url, err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("cannot connect to object store at %v: %w", url, err)
	}
	store, err := js.ObjectStore(ctx, bucket)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("cannot open object store bucket %v: %w", bucket, err)
	}
	return &ObjectStore{conn: conn, store: store}, nil
}

func (client *Client) dial(ctx context.Context, bucket string) (*ObjectStore, error) {
	return DialObjectStore(ctx, client.URL, bucket)
}

// Exists reports whether the keyed object is present in the bucket.
func (store *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := store.store.GetInfo(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return false, nil
	}
	return false, err
}

// Open streams the keyed object from the bucket.
func (store *ObjectStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := store.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, fmt.Errorf("object %v not found: %w", key, fs.ErrNotExist)
		}
		return nil, err
	}
	return object, nil
}

// Put stores the stream under the given key.
func (store *ObjectStore) Put(ctx context.Context, key string, reader io.Reader) error {
	_, err := store.store.Put(ctx, jetstream.ObjectMeta{Name: key}, reader)
	return err
}

// Close drains the underlying connection.
func (store *ObjectStore) Close() error {
	return store.conn.Drain()
}
