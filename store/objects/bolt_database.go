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

	"github.com/boltdb/bolt"
	"github.com/golang/snappy"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

var objectsBucket = []byte("objects")

// BoltDatabase is a Database stored in a single boltdb file. Object payloads
// are snappy compressed.
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
		_, err := tx.CreateBucketIfNotExists(objectsBucket)
		return err
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

func (bdb *BoltDatabase) Get(ctx context.Context, id hash.Hash) (Object, error) {
	var data []byte

	err := bdb.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(objectsBucket).Get(id[:])

		if stored == nil {
			return ErrObjectNotFound
		}

		decoded, err := snappy.Decode(nil, stored)

		if err != nil {
			return ErrCorruptObject
		}

		data = decoded
		return nil
	})

	if err != nil {
		return nil, err
	}

	return Decode(data)
}

func (bdb *BoltDatabase) Put(ctx context.Context, obj Object) error {
	id := obj.Id()

	return bdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(objectsBucket)

		if bucket.Get(id[:]) != nil {
			return nil
		}

		return bucket.Put(id[:], snappy.Encode(nil, Encode(obj)))
	})
}

func (bdb *BoltDatabase) Exists(ctx context.Context, id hash.Hash) (bool, error) {
	var exists bool

	err := bdb.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(objectsBucket).Get(id[:]) != nil
		return nil
	})

	return exists, err
}
