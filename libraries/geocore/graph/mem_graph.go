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
	"sync"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// MemDatabase is an in memory graph Database.
type MemDatabase struct {
	mu       sync.RWMutex
	parents  map[hash.Hash][]hash.Hash
	props    map[hash.Hash]map[string]string
	mappings map[hash.Hash]hash.Hash
}

var _ Database = (*MemDatabase)(nil)

func NewMemDatabase() *MemDatabase {
	return &MemDatabase{
		parents:  make(map[hash.Hash][]hash.Hash),
		props:    make(map[hash.Hash]map[string]string),
		mappings: make(map[hash.Hash]hash.Hash),
	}
}

func (db *MemDatabase) Put(ctx context.Context, id hash.Hash, parents []hash.Hash) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.parents[id] = append([]hash.Hash(nil), parents...)
	return nil
}

func (db *MemDatabase) Parents(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return append([]hash.Hash(nil), db.parents[id]...), nil
}

func (db *MemDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.parents[id]
	return ok, nil
}

func (db *MemDatabase) SetProperty(ctx context.Context, id hash.Hash, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	props, ok := db.props[id]

	if !ok {
		props = make(map[string]string)
		db.props[id] = props
	}

	props[key] = value
	return nil
}

func (db *MemDatabase) Property(ctx context.Context, id hash.Hash, key string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	value, ok := db.props[id][key]
	return value, ok, nil
}

func (db *MemDatabase) Map(ctx context.Context, original, projection hash.Hash) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.setMapping(original, projection)
	db.setMapping(projection, original)
	return nil
}

func (db *MemDatabase) MapForward(ctx context.Context, from, to hash.Hash) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.setMapping(from, to)
	return nil
}

func (db *MemDatabase) Mapping(ctx context.Context, id hash.Hash) (hash.Hash, error) {
	if id.IsNull() {
		return hash.Null, nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.mappings[id], nil
}

// setMapping must be called with db.mu held. Mapping a commit to Null clears
// its entry.
func (db *MemDatabase) setMapping(from, to hash.Hash) {
	if from.IsNull() {
		return
	}

	if to.IsNull() {
		delete(db.mappings, from)
		return
	}

	db.mappings[from] = to
}
