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

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

func testDatabases(t *testing.T) map[string]Database {
	bdb, err := NewBoltDatabase(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	return map[string]Database{
		"mem":  NewMemDatabase(),
		"bolt": bdb,
	}
}

func TestParentsRoundTrip(t *testing.T) {
	ctx := context.Background()

	root := hash.Of([]byte("root"))
	child := hash.Of([]byte("child"))
	merge := hash.Of([]byte("merge"))

	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := db.Exists(ctx, root)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, db.Put(ctx, root, nil))
			require.NoError(t, db.Put(ctx, child, []hash.Hash{root}))
			require.NoError(t, db.Put(ctx, merge, []hash.Hash{child, root}))

			ok, err = db.Exists(ctx, root)
			require.NoError(t, err)
			assert.True(t, ok)

			parents, err := db.Parents(ctx, merge)
			require.NoError(t, err)
			assert.Equal(t, []hash.Hash{child, root}, parents)

			parents, err = db.Parents(ctx, root)
			require.NoError(t, err)
			assert.Empty(t, parents)

			// unknown commits read as parentless roots
			parents, err = db.Parents(ctx, hash.Of([]byte("unknown")))
			require.NoError(t, err)
			assert.Empty(t, parents)
		})
	}
}

func TestProperties(t *testing.T) {
	ctx := context.Background()
	id := hash.Of([]byte("commit"))

	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := db.Property(ctx, id, SparseFlag)
			require.NoError(t, err)
			assert.False(t, ok)

			sparse, err := IsSparse(ctx, db, id)
			require.NoError(t, err)
			assert.False(t, sparse)

			require.NoError(t, db.SetProperty(ctx, id, SparseFlag, SparseFlagValue))

			value, ok, err := db.Property(ctx, id, SparseFlag)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, SparseFlagValue, value)

			sparse, err = IsSparse(ctx, db, id)
			require.NoError(t, err)
			assert.True(t, sparse)
		})
	}
}

func TestMappingBijection(t *testing.T) {
	ctx := context.Background()

	original := hash.Of([]byte("original"))
	projection := hash.Of([]byte("projection"))

	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			// Mapping(Null) is Null; unmapped commits are Null
			mapped, err := db.Mapping(ctx, hash.Null)
			require.NoError(t, err)
			assert.True(t, mapped.IsNull())

			mapped, err = db.Mapping(ctx, original)
			require.NoError(t, err)
			assert.True(t, mapped.IsNull())

			// both directions installed at once
			require.NoError(t, db.Map(ctx, original, projection))

			mapped, err = db.Mapping(ctx, original)
			require.NoError(t, err)
			assert.Equal(t, projection, mapped)

			mapped, err = db.Mapping(ctx, projection)
			require.NoError(t, err)
			assert.Equal(t, original, mapped)
		})
	}
}

func TestMapForwardLeavesReverseUntouched(t *testing.T) {
	ctx := context.Background()

	parentOrig := hash.Of([]byte("parent original"))
	parentProj := hash.Of([]byte("parent projection"))
	collapsed := hash.Of([]byte("collapsed child"))

	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Map(ctx, parentOrig, parentProj))

			// the collapsed commit shares its parent's projection
			require.NoError(t, db.MapForward(ctx, collapsed, parentProj))

			mapped, err := db.Mapping(ctx, collapsed)
			require.NoError(t, err)
			assert.Equal(t, parentProj, mapped)

			// the projection still maps back to the parent original
			mapped, err = db.Mapping(ctx, parentProj)
			require.NoError(t, err)
			assert.Equal(t, parentOrig, mapped)
		})
	}
}

func TestMapToNullClears(t *testing.T) {
	ctx := context.Background()

	a := hash.Of([]byte("a"))
	b := hash.Of([]byte("b"))

	for name, db := range testDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Map(ctx, a, b))
			require.NoError(t, db.MapForward(ctx, a, hash.Null))

			mapped, err := db.Mapping(ctx, a)
			require.NoError(t, err)
			assert.True(t, mapped.IsNull())
		})
	}
}
