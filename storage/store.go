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
	"os"
	"path/filepath"

	"github.com/cypherid/seqtoid/internal"
)

// A Store provides access to objects by key. Missing objects are
// reported as errors satisfying errors.Is(err, fs.ErrNotExist).
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, reader io.Reader) error
}

// Dir serves objects from a local directory.
type Dir string

// Exists reports whether the keyed file is present.
func (dir Dir) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(string(dir), key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Open opens the keyed file for reading.
func (dir Dir) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(dir), key))
}

// Put writes the stream to the keyed file, creating parent
// directories as needed.
func (dir Dir) Put(ctx context.Context, key string, reader io.Reader) (err error) {
	path := filepath.Join(string(dir), key)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(f, reader)
	return err
}

// A Client resolves locations, reaching out to a NATS object store
// for remote ones.
type Client struct {
	// URL is the NATS server; empty selects the default local
	// server address.
	URL string
}

// Check reports whether the location exists, be it a local file or
// a remote object.
func (client *Client) Check(ctx context.Context, raw string) (bool, error) {
	loc, err := Parse(raw)
	if err != nil {
		return false, err
	}
	if !loc.Remote() {
		_, err := os.Stat(loc.Path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	store, err := client.dial(ctx, loc.Bucket)
	if err != nil {
		return false, err
	}
	defer func() { _ = store.Close() }()
	return store.Exists(ctx, loc.Key)
}

// Fetch makes the location available as a local file and returns
// its absolute path. Local locations are verified and returned in
// place; remote objects are streamed into a uniquely named
// directory under destDir (the system temp directory when destDir
// is empty).
func (client *Client) Fetch(ctx context.Context, raw, destDir string) (string, error) {
	loc, err := Parse(raw)
	if err != nil {
		return "", err
	}
	if !loc.Remote() {
		if _, err := os.Stat(loc.Path); err != nil {
			return "", fmt.Errorf("input %v cannot be used: %w", loc.Path, err)
		}
		return internal.FullPathname(loc.Path)
	}
	store, err := client.dial(ctx, loc.Bucket)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()
	object, err := store.Open(ctx, loc.Key)
	if err != nil {
		return "", err
	}
	defer func() { _ = object.Close() }()

	stage, err := internal.StagingDir(destDir, "seqtoid-fetch")
	if err != nil {
		return "", err
	}
	path := filepath.Join(stage, filepath.Base(loc.Key))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, object); err != nil {
		_ = f.Close()
		_ = os.RemoveAll(stage)
		return "", fmt.Errorf("cannot fetch %v: %w", loc, err)
	}
	if err := f.Close(); err != nil {
		_ = os.RemoveAll(stage)
		return "", err
	}
	return path, nil
}

// Push uploads a local file to a remote location.
func (client *Client) Push(ctx context.Context, src, raw string) error {
	loc, err := Parse(raw)
	if err != nil {
		return err
	}
	if !loc.Remote() {
		return fmt.Errorf("push target %v is not an object store location", raw)
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	store, err := client.dial(ctx, loc.Bucket)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Put(ctx, loc.Key, f)
}

// NotExist reports whether an error denotes a missing object or
// file.
func NotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
