// Copyright 2020 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph stores the shape of the commit DAG: each commit's parent
// list, string keyed properties, and the bidirectional commit mapping used
// by sparse replication.
package graph

import (
	"context"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// SparseFlag is the property marking a commit as a filtered projection.
const (
	SparseFlag      = "sparse"
	SparseFlagValue = "true"
)

// Database records commit ancestry and replication mappings. Mapping(a) == b
// means commit a's projection is commit b; an unmapped commit returns Null,
// and Mapping(Null) is Null.
type Database interface {
	// Put records a commit and its parent list.
	Put(ctx context.Context, id hash.Hash, parents []hash.Hash) error

	// Parents returns a commit's recorded parents. Unknown commits have no
	// parents; they are roots as far as traversal is concerned.
	Parents(ctx context.Context, id hash.Hash) ([]hash.Hash, error)

	// Exists returns true if the commit has been recorded.
	Exists(ctx context.Context, id hash.Hash) (bool, error)

	// SetProperty sets a string property on a commit.
	SetProperty(ctx context.Context, id hash.Hash, key, value string) error

	// Property reads a string property from a commit.
	Property(ctx context.Context, id hash.Hash, key string) (string, bool, error)

	// Map installs the mapping between an original commit and its projection
	// in both directions at once.
	Map(ctx context.Context, original, projection hash.Hash) error

	// MapForward records from's projection without altering to's reverse
	// mapping. Used when a commit's filtered changes are empty and it shares
	// its mainline parent's projection.
	MapForward(ctx context.Context, from, to hash.Hash) error

	// Mapping returns the commit id mapped to id, or Null.
	Mapping(ctx context.Context, id hash.Hash) (hash.Hash, error)
}

// IsSparse reads the sparse flag on a commit.
func IsSparse(ctx context.Context, db Database, id hash.Hash) (bool, error) {
	value, ok, err := db.Property(ctx, id, SparseFlag)

	if err != nil {
		return false, err
	}

	return ok && value == SparseFlagValue, nil
}
