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

package refdb

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
)

func newTestTransaction(t *testing.T) (RefDatabase, *TransactionRefDatabase, string) {
	underlying := NewMemRefDatabase()
	require.NoError(t, underlying.Create())

	require.NoError(t, underlying.PutRef("refs/heads/master", hashA))
	require.NoError(t, underlying.PutSymRef(ref.Head, "refs/heads/master"))

	id := uuid.New()
	tx := NewTransactionRefDatabase(underlying, id)
	require.NoError(t, tx.Create())

	return underlying, tx, TransactionsPrefix + id.String() + "/"
}

func TestTransactionNamespaceLayout(t *testing.T) {
	underlying, _, prefix := newTestTransaction(t)

	all, err := underlying.GetAll("")
	require.NoError(t, err)

	// live copies of the head ref and the user refs
	assert.Contains(t, all, prefix+ref.Head)
	assert.Contains(t, all, prefix+"refs/heads/master")

	// orig snapshot of the user refs only
	assert.Contains(t, all, prefix+"orig/refs/heads/master")
	assert.NotContains(t, all, prefix+"orig/"+ref.Head)
}

func TestTransactionLiveShadowsOrig(t *testing.T) {
	underlying, tx, prefix := newTestTransaction(t)

	require.NoError(t, tx.PutRef("refs/heads/master", hashB))

	refs, err := tx.GetAll("refs/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"refs/heads/master": hashB.String()}, refs)

	h, err := tx.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashB, h)

	// the view's writes never escape the namespace
	h, err = underlying.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)

	require.NoError(t, tx.Close())

	all, err := underlying.GetAll("")
	require.NoError(t, err)
	for name := range all {
		assert.False(t, strings.HasPrefix(name, prefix), "leftover %s", name)
	}

	h, err = underlying.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)
}

func TestTransactionReadFallsBackToOrig(t *testing.T) {
	_, tx, _ := newTestTransaction(t)

	// not written in the transaction, read comes from the snapshot
	h, err := tx.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)

	// a ref removed from the live namespace reverts to its snapshot value
	_, err = tx.Remove("refs/heads/master")
	require.NoError(t, err)

	h, err = tx.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)
}

func TestTransactionIsolation(t *testing.T) {
	underlying, tx, _ := newTestTransaction(t)

	require.NoError(t, tx.PutRef("refs/heads/sparse", hashB))
	require.NoError(t, tx.PutSymRef(ref.Head, "refs/heads/sparse"))

	// outside the transaction nothing changed
	_, err := underlying.GetRef("refs/heads/sparse")
	assert.ErrorIs(t, err, ErrRefNotFound)

	target, err := underlying.GetSymRef(ref.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/master", target)

	// inside the transaction both writes are visible
	h, err := tx.GetRef("refs/heads/sparse")
	require.NoError(t, err)
	assert.Equal(t, hashB, h)

	target, err = tx.GetSymRef(ref.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/sparse", target)
}

func TestTransactionSymRefTargetRoundTrips(t *testing.T) {
	underlying, tx, prefix := newTestTransaction(t)

	require.NoError(t, tx.PutSymRef(ref.Head, "refs/heads/master"))

	target, err := tx.GetSymRef(ref.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/master", target)

	// even a stored form carrying the live prefix externalizes cleanly
	require.NoError(t, underlying.PutSymRef(prefix+ref.Head, prefix+"refs/heads/master"))

	target, err = tx.GetSymRef(ref.Head)
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/master", target)

	all, err := tx.GetAll("")
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master", all[ref.Head])
}

func TestTransactionRemoveAllScopedToLive(t *testing.T) {
	underlying, tx, _ := newTestTransaction(t)

	removed, err := tx.RemoveAll("refs/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"refs/heads/master": hashA.String()}, removed)

	// the snapshot still answers reads
	refs, err := tx.GetAll("refs/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"refs/heads/master": hashA.String()}, refs)

	// and the shared database never saw the removal
	h, err := underlying.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)
}

func TestConcurrentTransactionsAreIndependent(t *testing.T) {
	underlying := NewMemRefDatabase()
	require.NoError(t, underlying.Create())
	require.NoError(t, underlying.PutRef("refs/heads/master", hashA))

	txA := NewTransactionRefDatabase(underlying, uuid.New())
	txB := NewTransactionRefDatabase(underlying, uuid.New())
	require.NoError(t, txA.Create())
	require.NoError(t, txB.Create())

	require.NoError(t, txA.PutRef("refs/heads/master", hashB))

	h, err := txB.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)

	require.NoError(t, txA.Close())

	h, err = txB.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)
	require.NoError(t, txB.Close())
}
