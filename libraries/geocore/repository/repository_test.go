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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/refdb"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

var testSig = objects.Signature{Name: "tester", Email: "tester@example.com", When: 1396000000000}

func TestOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := Open(dir)
	require.NoError(t, err)

	root, err := repo.Root()
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	commit := objects.NewCommit(nil, objects.EmptyTreeId(), testSig, testSig, "initial")
	require.NoError(t, repo.WriteCommit(ctx, commit))
	require.NoError(t, repo.Refs.PutRef("refs/heads/master", commit.Id()))
	require.NoError(t, repo.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := objects.GetCommit(ctx, reopened.Objects, commit.Id())
	require.NoError(t, err)
	assert.Equal(t, commit.Id(), got.Id())

	ok, err := reopened.Graph.Exists(ctx, commit.Id())
	require.NoError(t, err)
	assert.True(t, ok)

	h, err := reopened.Refs.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, commit.Id(), h)
}

func TestMemRepositoryHasNoRoot(t *testing.T) {
	repo := NewMemRepository()

	_, err := repo.Root()
	assert.ErrorIs(t, err, ErrNotFileRepository)
}

func TestResolveTree(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()

	tree := objects.NewTree([]objects.TreeEntry{
		{Name: "roads/1", Kind: objects.KindFeature, Id: hash.Of([]byte("road"))},
	})
	require.NoError(t, repo.Objects.Put(ctx, tree))

	commit := objects.NewCommit(nil, tree.Id(), testSig, testSig, "add road")
	require.NoError(t, repo.WriteCommit(ctx, commit))

	resolved, err := repo.ResolveTree(ctx, hash.Null)
	require.NoError(t, err)
	assert.Equal(t, objects.EmptyTreeId(), resolved.Id())

	resolved, err = repo.ResolveTree(ctx, tree.Id())
	require.NoError(t, err)
	assert.Equal(t, tree.Id(), resolved.Id())

	resolved, err = repo.ResolveTree(ctx, commit.Id())
	require.NoError(t, err)
	assert.Equal(t, tree.Id(), resolved.Id())
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	_, ok := config.Get(FilterConfigKey)
	assert.False(t, ok)

	config.Set(FilterConfigKey, "filter.ini")
	require.NoError(t, config.Save())

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)

	value, ok := reloaded.Get(FilterConfigKey)
	assert.True(t, ok)
	assert.Equal(t, "filter.ini", value)
}

func TestLoadFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.ini")

	content := "[roads]\nfilter = main*\n\n[parks]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	filter, err := LoadFilter(path)
	require.NoError(t, err)

	assert.True(t, filter.Matches("roads/main-st"))
	assert.False(t, filter.Matches("roads/side-st"))
	assert.True(t, filter.Matches("parks/central"))
	assert.False(t, filter.Matches("rivers/long"))
}

func TestLoadFilterDefaultSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.ini")

	require.NoError(t, os.WriteFile(path, []byte("[default]\n"), 0644))

	filter, err := LoadFilter(path)
	require.NoError(t, err)

	assert.True(t, filter.Matches("roads/any"))
	assert.True(t, filter.Matches("parks/any"))
}

func TestLoadFilterMissingFile(t *testing.T) {
	_, err := LoadFilter(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestFindCommonAncestor(t *testing.T) {
	ctx := context.Background()
	repo := NewMemRepository()

	root := hash.Of([]byte("root"))
	left := hash.Of([]byte("left"))
	right := hash.Of([]byte("right"))
	lone := hash.Of([]byte("lone"))

	require.NoError(t, repo.Graph.Put(ctx, root, nil))
	require.NoError(t, repo.Graph.Put(ctx, left, []hash.Hash{root}))
	require.NoError(t, repo.Graph.Put(ctx, right, []hash.Hash{root}))
	require.NoError(t, repo.Graph.Put(ctx, lone, nil))

	anc, err := FindCommonAncestor(ctx, repo.Graph, left, right)
	require.NoError(t, err)
	assert.Equal(t, root, anc)

	// a commit is its own ancestor
	anc, err = FindCommonAncestor(ctx, repo.Graph, root, left)
	require.NoError(t, err)
	assert.Equal(t, root, anc)

	// unrelated histories have none
	anc, err = FindCommonAncestor(ctx, repo.Graph, left, lone)
	require.NoError(t, err)
	assert.True(t, anc.IsNull())

	anc, err = FindCommonAncestor(ctx, repo.Graph, hash.Null, left)
	require.NoError(t, err)
	assert.True(t, anc.IsNull())
}

func TestTransactionLifecycle(t *testing.T) {
	repo := NewMemRepository()

	head := hash.Of([]byte("head commit"))
	require.NoError(t, repo.Refs.PutRef("refs/heads/master", head))
	require.NoError(t, repo.Refs.PutSymRef(ref.Head, "refs/heads/master"))

	tx, err := repo.BeginTransaction()
	require.NoError(t, err)

	next := hash.Of([]byte("next commit"))
	require.NoError(t, tx.Refs.PutRef("refs/heads/master", next))

	// invisible until commit
	h, err := repo.Refs.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, head, h)

	require.NoError(t, tx.Commit())

	h, err = repo.Refs.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, next, h)

	// the namespace is gone
	leftover, err := repo.Refs.GetAll(refdb.TransactionsPrefixFor(tx.ID))
	require.NoError(t, err)
	assert.Empty(t, leftover)

	assert.ErrorIs(t, tx.Commit(), ErrTransactionDone)
}

func TestTransactionAbort(t *testing.T) {
	repo := NewMemRepository()

	head := hash.Of([]byte("head commit"))
	require.NoError(t, repo.Refs.PutRef("refs/heads/master", head))

	tx, err := repo.BeginTransaction()
	require.NoError(t, err)

	require.NoError(t, tx.Refs.PutRef("refs/heads/master", hash.Of([]byte("discarded"))))
	require.NoError(t, tx.Abort())

	h, err := repo.Refs.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, head, h)

	assert.ErrorIs(t, tx.Abort(), ErrTransactionDone)
}
