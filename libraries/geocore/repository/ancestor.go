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

package repository

import (
	"context"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/graph"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// FindCommonAncestor returns the nearest commit reachable from both left and
// right in the graph database, or Null when the histories are unrelated.
// A commit is its own ancestor, so the ancestor of a commit and one of its
// descendants is the commit itself.
func FindCommonAncestor(ctx context.Context, db graph.Database, left, right hash.Hash) (hash.Hash, error) {
	if left.IsNull() || right.IsNull() {
		return hash.Null, nil
	}

	leftAncestors := hash.NewHashSet()

	frontier := []hash.Hash{left}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]

		if leftAncestors.Has(id) {
			continue
		}
		leftAncestors.Insert(id)

		parents, err := db.Parents(ctx, id)

		if err != nil {
			return hash.Null, err
		}

		frontier = append(frontier, parents...)
	}

	visited := hash.NewHashSet()

	frontier = []hash.Hash{right}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]

		if visited.Has(id) {
			continue
		}
		visited.Insert(id)

		if leftAncestors.Has(id) {
			return id, nil
		}

		parents, err := db.Parents(ctx, id)

		if err != nil {
			return hash.Null, err
		}

		frontier = append(frontier, parents...)
	}

	return hash.Null, nil
}
