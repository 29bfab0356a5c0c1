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

// Package storage resolves input locations that may live on the
// local filesystem or in an object store, addressed as
// nats://bucket/key.
package storage

import (
	"fmt"
	"strings"
)

// Scheme marks remote object-store locations.
const Scheme = "nats:"

// A Location is a classified input or output address. Either Bucket
// and Key are set for a remote object, or Path is set for a local
// file.
type Location struct {
	Bucket string
	Key    string
	Path   string
}

// Remote reports whether the location refers to an object store.
func (loc Location) Remote() bool {
	return loc.Bucket != ""
}

func (loc Location) String() string {
	if loc.Remote() {
		return Scheme + "//" + loc.Bucket + "/" + loc.Key
	}
	return loc.Path
}

// Parse classifies a raw location string. Anything without the
// nats: scheme is a local path. Remote locations must name a valid
// bucket and a non-empty object key.
func Parse(raw string) (Location, error) {
	if !strings.HasPrefix(raw, Scheme) {
		return Location{Path: raw}, nil
	}
	rest := strings.TrimPrefix(raw, Scheme)
	if !strings.HasPrefix(rest, "//") {
		return Location{}, fmt.Errorf("malformed object store location %v: expected nats://bucket/key", raw)
	}
	bucket, key, _ := strings.Cut(rest[2:], "/")
	if !validBucket(bucket) {
		return Location{}, fmt.Errorf("invalid bucket name %v in location %v", bucket, raw)
	}
	if key == "" {
		return Location{}, fmt.Errorf("missing object key in location %v", raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// validBucket enforces the bucket naming policy: 3 to 63 characters
// drawn from lowercase letters, digits, dash, and underscore.
func validBucket(bucket string) bool {
	if len(bucket) < 3 || len(bucket) > 63 {
		return false
	}
	for i := 0; i < len(bucket); i++ {
		switch c := bucket[i]; {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
