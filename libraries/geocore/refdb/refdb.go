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

// Package refdb stores named refs as a flat map from slash delimited names to
// stored ref values, and provides the transaction scoped decorator that gives
// every open transaction an isolated view of that map.
package refdb

import (
	"errors"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

var (
	// ErrRefNotFound is returned by reads of names with no stored value.
	ErrRefNotFound = errors.New("ref not found")

	// ErrNotDirectRef is returned by GetRef when the stored value is symbolic.
	ErrNotDirectRef = errors.New("ref is not a direct ref")

	// ErrNotSymRef is returned by GetSymRef when the stored value is direct.
	ErrNotSymRef = errors.New("ref is not a symbolic ref")

	// ErrLockTimeout is returned by Lock when the database lock cannot be
	// acquired within the lock timeout.
	ErrLockTimeout = errors.New("timed out waiting for ref database lock")
)

// RefDatabase is a flat mapping from ref names to stored ref values. Direct
// refs store the 40 hex form of a hash; symbolic refs store "ref: " followed
// by the target name.
type RefDatabase interface {
	// Lock acquires the database lock, blocking up to the implementation's
	// timeout. Callers bracket multi step compound updates with Lock/Unlock.
	Lock() error

	// Unlock releases the database lock.
	Unlock() error

	// Create initializes the database storage. Safe to call more than once.
	Create() error

	// Close releases any resources held by the database.
	Close() error

	// GetRef returns the hash stored under a direct ref.
	GetRef(name string) (hash.Hash, error)

	// GetSymRef returns the target name stored under a symbolic ref.
	GetSymRef(name string) (string, error)

	// PutRef stores a direct ref.
	PutRef(name string, h hash.Hash) error

	// PutSymRef stores a symbolic ref.
	PutSymRef(name, target string) error

	// Remove deletes a single ref and returns its prior stored value, or the
	// empty string if it did not exist.
	Remove(name string) (string, error)

	// RemoveAll deletes every ref under the given name prefix and returns the
	// removed names and stored values.
	RemoveAll(prefix string) (map[string]string, error)

	// GetAll returns the stored values of every ref under the given name
	// prefix. An empty prefix returns everything.
	GetAll(prefix string) (map[string]string, error)
}

// GetValue reads the raw stored value of a ref, whether direct or symbolic.
func GetValue(db RefDatabase, name string) (string, error) {
	h, err := db.GetRef(name)

	if err == nil {
		return h.String(), nil
	} else if errors.Is(err, ErrNotDirectRef) {
		target, err := db.GetSymRef(name)

		if err != nil {
			return "", err
		}

		return ref.SymRefValue(target), nil
	}

	return "", err
}

// PutValue stores a raw ref value under name, dispatching on the value's form.
func PutValue(db RefDatabase, name, value string) error {
	if ref.IsSymRefValue(value) {
		return db.PutSymRef(name, ref.SymRefTarget(value))
	}

	h, err := hash.Parse(value)

	if err != nil {
		return err
	}

	return db.PutRef(name, h)
}
