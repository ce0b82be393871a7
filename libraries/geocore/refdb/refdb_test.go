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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

var (
	hashA = hash.MustParse("aa00000000000000000000000000000000000001")
	hashB = hash.MustParse("bb00000000000000000000000000000000000002")
)

func testRefDatabases(t *testing.T) map[string]RefDatabase {
	return map[string]RefDatabase{
		"mem":  NewMemRefDatabase(),
		"file": NewFileRefDatabase(t.TempDir()),
	}
}

func TestRefDatabaseRoundTrip(t *testing.T) {
	for name, db := range testRefDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Create())

			require.NoError(t, db.PutRef("refs/heads/master", hashA))
			require.NoError(t, db.PutSymRef(ref.Head, "refs/heads/master"))

			h, err := db.GetRef("refs/heads/master")
			require.NoError(t, err)
			assert.Equal(t, hashA, h)

			target, err := db.GetSymRef(ref.Head)
			require.NoError(t, err)
			assert.Equal(t, "refs/heads/master", target)

			_, err = db.GetRef(ref.Head)
			assert.ErrorIs(t, err, ErrNotDirectRef)

			_, err = db.GetSymRef("refs/heads/master")
			assert.ErrorIs(t, err, ErrNotSymRef)

			_, err = db.GetRef("refs/heads/missing")
			assert.ErrorIs(t, err, ErrRefNotFound)
		})
	}
}

func TestRefDatabaseScanAndRemove(t *testing.T) {
	for name, db := range testRefDatabases(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Create())

			require.NoError(t, db.PutRef("refs/heads/master", hashA))
			require.NoError(t, db.PutRef("refs/heads/sparse", hashB))
			require.NoError(t, db.PutRef("refs/tags/v1", hashA))
			require.NoError(t, db.PutSymRef(ref.Head, "refs/heads/master"))

			heads, err := db.GetAll("refs/heads/")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{
				"refs/heads/master": hashA.String(),
				"refs/heads/sparse": hashB.String(),
			}, heads)

			all, err := db.GetAll("")
			require.NoError(t, err)
			assert.Len(t, all, 4)
			assert.Equal(t, "ref: refs/heads/master", all[ref.Head])

			prior, err := db.Remove("refs/tags/v1")
			require.NoError(t, err)
			assert.Equal(t, hashA.String(), prior)

			prior, err = db.Remove("refs/tags/v1")
			require.NoError(t, err)
			assert.Equal(t, "", prior)

			removed, err := db.RemoveAll("refs/heads/")
			require.NoError(t, err)
			assert.Len(t, removed, 2)

			all, err = db.GetAll("")
			require.NoError(t, err)
			assert.Equal(t, map[string]string{ref.Head: "ref: refs/heads/master"}, all)
		})
	}
}

func TestFileRefDatabaseSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db := NewFileRefDatabase(dir)
	require.NoError(t, db.Create())
	require.NoError(t, db.PutRef("refs/heads/master", hashA))
	require.NoError(t, db.Close())

	reopened := NewFileRefDatabase(dir)
	h, err := reopened.GetRef("refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA, h)
}

func TestRefDatabaseLock(t *testing.T) {
	db := NewMemRefDatabase()
	require.NoError(t, db.Create())

	require.NoError(t, db.Lock())
	require.NoError(t, db.Unlock())
	require.NoError(t, db.Lock())
	require.NoError(t, db.Unlock())
}

func TestGetPutValue(t *testing.T) {
	db := NewMemRefDatabase()
	require.NoError(t, db.Create())

	require.NoError(t, PutValue(db, "refs/heads/master", hashA.String()))
	require.NoError(t, PutValue(db, ref.Head, "ref: refs/heads/master"))

	value, err := GetValue(db, "refs/heads/master")
	require.NoError(t, err)
	assert.Equal(t, hashA.String(), value)

	value, err = GetValue(db, ref.Head)
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/master", value)

	_, err = GetValue(db, "refs/heads/missing")
	assert.ErrorIs(t, err, ErrRefNotFound)
}
