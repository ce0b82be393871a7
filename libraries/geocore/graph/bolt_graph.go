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

	"github.com/boltdb/bolt"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

var (
	parentsBucket  = []byte("parents")
	propsBucket    = []byte("props")
	mappingsBucket = []byte("mappings")
)

// BoltDatabase is a graph Database stored in a single boltdb file. Parent
// lists are stored as a one byte parent count followed by the concatenated
// 20 byte ids, properties under <id><0x00><key>, mappings as id to id.
type BoltDatabase struct {
	db *bolt.DB
}

var _ Database = (*BoltDatabase)(nil)

// NewBoltDatabase opens (creating if needed) the boltdb file at path.
func NewBoltDatabase(path string) (*BoltDatabase, error) {
	db, err := bolt.Open(path, 0644, nil)

	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{parentsBucket, propsBucket, mappingsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltDatabase{db: db}, nil
}

func (bdb *BoltDatabase) Close() error {
	return bdb.db.Close()
}

func (bdb *BoltDatabase) Put(ctx context.Context, id hash.Hash, parents []hash.Hash) error {
	// count-prefixed so a parentless root never stores a zero length value,
	// which Get cannot tell apart from a missing key
	value := make([]byte, 1, 1+len(parents)*hash.ByteLen)
	value[0] = byte(len(parents))

	for _, p := range parents {
		value = append(value, p[:]...)
	}

	return bdb.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(parentsBucket).Put(id[:], value)
	})
}

func (bdb *BoltDatabase) Parents(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
	var parents []hash.Hash

	err := bdb.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(parentsBucket).Get(id[:])

		if len(value) == 0 {
			return nil
		}

		for i := 1; i+hash.ByteLen <= len(value); i += hash.ByteLen {
			p, err := hash.New(value[i : i+hash.ByteLen])

			if err != nil {
				return err
			}

			parents = append(parents, p)
		}
		return nil
	})

	return parents, err
}

func (bdb *BoltDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	var exists bool

	err := bdb.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(parentsBucket).Get(id[:]) != nil
		return nil
	})

	return exists, err
}

func (bdb *BoltDatabase) SetProperty(ctx context.Context, id hash.Hash, key, value string) error {
	return bdb.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(propsBucket).Put(propKey(id, key), []byte(value))
	})
}

func (bdb *BoltDatabase) Property(ctx context.Context, id hash.Hash, key string) (string, bool, error) {
	var value string
	var ok bool

	err := bdb.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(propsBucket).Get(propKey(id, key))

		if stored != nil {
			value = string(stored)
			ok = true
		}
		return nil
	})

	return value, ok, err
}

func (bdb *BoltDatabase) Map(ctx context.Context, original, projection hash.Hash) error {
	return bdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(mappingsBucket)

		if err := putMapping(bucket, original, projection); err != nil {
			return err
		}

		return putMapping(bucket, projection, original)
	})
}

func (bdb *BoltDatabase) MapForward(ctx context.Context, from, to hash.Hash) error {
	return bdb.db.Update(func(tx *bolt.Tx) error {
		return putMapping(tx.Bucket(mappingsBucket), from, to)
	})
}

func (bdb *BoltDatabase) Mapping(ctx context.Context, id hash.Hash) (hash.Hash, error) {
	if id.IsNull() {
		return hash.Null, nil
	}

	mapped := hash.Null

	err := bdb.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(mappingsBucket).Get(id[:])

		if value == nil {
			return nil
		}

		h, err := hash.New(value)

		if err != nil {
			return err
		}

		mapped = h
		return nil
	})

	return mapped, err
}

func putMapping(bucket *bolt.Bucket, from, to hash.Hash) error {
	if from.IsNull() {
		return nil
	}

	if to.IsNull() {
		return bucket.Delete(from[:])
	}

	return bucket.Put(from[:], to[:])
}

func propKey(id hash.Hash, key string) []byte {
	k := make([]byte, 0, hash.ByteLen+1+len(key))
	k = append(k, id[:]...)
	k = append(k, 0)
	k = append(k, key...)
	return k
}
