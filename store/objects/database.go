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

package objects

import (
	"context"
	"sync"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// Database is content addressed storage for objects.
type Database interface {
	// Get returns the object stored under id, or ErrObjectNotFound.
	Get(ctx context.Context, id hash.Hash) (Object, error)

	// Put stores an object under its id. Writing an object that already
	// exists is a no-op.
	Put(ctx context.Context, obj Object) error

	// Exists returns true if an object is stored under id.
	Exists(ctx context.Context, id hash.Hash) (bool, error)
}

// GetCommit reads id and asserts it is a commit.
func GetCommit(ctx context.Context, db Database, id hash.Hash) (*Commit, error) {
	obj, err := db.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	commit, ok := obj.(*Commit)

	if !ok {
		return nil, ErrCorruptObject
	}

	return commit, nil
}

// GetTree reads id and asserts it is a tree.
func GetTree(ctx context.Context, db Database, id hash.Hash) (*Tree, error) {
	obj, err := db.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	tree, ok := obj.(*Tree)

	if !ok {
		return nil, ErrCorruptObject
	}

	return tree, nil
}

// MemDatabase is an in memory Database used by tests and scratch
// repositories.
type MemDatabase struct {
	mu      sync.RWMutex
	objects map[hash.Hash][]byte
	writes  int
}

var _ Database = (*MemDatabase)(nil)

func NewMemDatabase() *MemDatabase {
	return &MemDatabase{objects: make(map[hash.Hash][]byte)}
}

func (db *MemDatabase) Get(ctx context.Context, id hash.Hash) (Object, error) {
	db.mu.RLock()
	data, ok := db.objects[id]
	db.mu.RUnlock()

	if !ok {
		return nil, ErrObjectNotFound
	}

	return Decode(data)
}

func (db *MemDatabase) Put(ctx context.Context, obj Object) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.objects[obj.Id()]; ok {
		return nil
	}

	db.objects[obj.Id()] = Encode(obj)
	db.writes++
	return nil
}

func (db *MemDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.objects[id]
	return ok, nil
}

// Writes returns the number of objects stored since creation. Used by tests
// asserting that re-synchronization performs no duplicate writes.
func (db *MemDatabase) Writes() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.writes
}
