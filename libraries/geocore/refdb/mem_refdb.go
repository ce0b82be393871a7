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
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

const memLockTimeout = 30 * time.Second

type refEntry struct {
	name  string
	value string
}

func refEntryLess(a, b refEntry) bool {
	return a.name < b.name
}

// MemRefDatabase is an in memory RefDatabase, used for tests and scratch
// repositories. Entries are kept ordered so prefix scans are deterministic.
type MemRefDatabase struct {
	mu      sync.Mutex
	refs    *btree.BTreeG[refEntry]
	lock    chan struct{}
	created bool
}

var _ RefDatabase = (*MemRefDatabase)(nil)

// NewMemRefDatabase creates an empty MemRefDatabase.
func NewMemRefDatabase() *MemRefDatabase {
	lock := make(chan struct{}, 1)
	lock <- struct{}{}

	return &MemRefDatabase{
		refs: btree.NewG[refEntry](2, refEntryLess),
		lock: lock,
	}
}

// Lock acquires the database lock, failing with ErrLockTimeout if another
// holder does not release it in time.
func (db *MemRefDatabase) Lock() error {
	select {
	case <-db.lock:
		return nil
	case <-time.After(memLockTimeout):
		return ErrLockTimeout
	}
}

func (db *MemRefDatabase) Unlock() error {
	select {
	case db.lock <- struct{}{}:
	default:
	}
	return nil
}

func (db *MemRefDatabase) Create() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.created = true
	return nil
}

func (db *MemRefDatabase) Close() error {
	return nil
}

func (db *MemRefDatabase) GetRef(name string) (hash.Hash, error) {
	value, ok := db.get(name)

	if !ok {
		return hash.Null, ErrRefNotFound
	} else if ref.IsSymRefValue(value) {
		return hash.Null, ErrNotDirectRef
	}

	return hash.Parse(value)
}

func (db *MemRefDatabase) GetSymRef(name string) (string, error) {
	value, ok := db.get(name)

	if !ok {
		return "", ErrRefNotFound
	} else if !ref.IsSymRefValue(value) {
		return "", ErrNotSymRef
	}

	return ref.SymRefTarget(value), nil
}

func (db *MemRefDatabase) PutRef(name string, h hash.Hash) error {
	db.put(name, h.String())
	return nil
}

func (db *MemRefDatabase) PutSymRef(name, target string) error {
	db.put(name, ref.SymRefValue(target))
	return nil
}

func (db *MemRefDatabase) Remove(name string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	prior, ok := db.refs.Delete(refEntry{name: name})

	if !ok {
		return "", nil
	}

	return prior.value, nil
}

func (db *MemRefDatabase) RemoveAll(prefix string) (map[string]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	removed := db.scan(prefix)

	for name := range removed {
		db.refs.Delete(refEntry{name: name})
	}

	return removed, nil
}

func (db *MemRefDatabase) GetAll(prefix string) (map[string]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.scan(prefix), nil
}

func (db *MemRefDatabase) get(name string) (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry, ok := db.refs.Get(refEntry{name: name})

	if !ok {
		return "", false
	}

	return entry.value, true
}

func (db *MemRefDatabase) put(name, value string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.refs.ReplaceOrInsert(refEntry{name: name, value: value})
}

// scan must be called with db.mu held.
func (db *MemRefDatabase) scan(prefix string) map[string]string {
	matches := make(map[string]string)

	db.refs.AscendGreaterOrEqual(refEntry{name: prefix}, func(entry refEntry) bool {
		if !strings.HasPrefix(entry.name, prefix) {
			return false
		}

		matches[entry.name] = entry.value
		return true
	})

	return matches
}
