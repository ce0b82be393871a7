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
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// TransactionsPrefix is the namespace holding every open transaction's refs.
const TransactionsPrefix = "transactions/"

// TransactionRefDatabase is a RefDatabase decorator scoped to one open
// transaction. It maps every read and write into the transaction's namespace
// under transactions/<id>/, so commands handed this database run unchanged
// and never notice they are inside a transaction.
//
// Create must be called once before any other use, to build the namespace and
// snapshot the current refs into it, and Close once afterwards to delete the
// namespace. Writes land in the live namespace; reads of names the
// transaction has not written fall back to the orig/ snapshot taken at
// Create.
type TransactionRefDatabase struct {
	refDb      RefDatabase
	txPrefix   string
	origPrefix string
}

var _ RefDatabase = (*TransactionRefDatabase)(nil)

// TransactionsPrefixFor returns the namespace prefix holding the refs of the
// transaction with the given id.
func TransactionsPrefixFor(id uuid.UUID) string {
	return TransactionsPrefix + id.String() + "/"
}

// NewTransactionRefDatabase decorates refDb for the transaction with the
// given id.
func NewTransactionRefDatabase(refDb RefDatabase, id uuid.UUID) *TransactionRefDatabase {
	txPrefix := TransactionsPrefixFor(id)

	return &TransactionRefDatabase{
		refDb:      refDb,
		txPrefix:   txPrefix,
		origPrefix: txPrefix + "orig/",
	}
}

func (db *TransactionRefDatabase) Lock() error {
	return db.refDb.Lock()
}

func (db *TransactionRefDatabase) Unlock() error {
	return db.refDb.Unlock()
}

// Create builds the transaction namespace. The three head refs are copied
// into the live namespace only; every ref under refs/ is copied into both
// the live and the orig/ namespace.
func (db *TransactionRefDatabase) Create() error {
	if err := db.refDb.Create(); err != nil {
		return err
	}

	for _, name := range []string{ref.Head, ref.WorkHead, ref.StageHead} {
		value, err := GetValue(db.refDb, name)

		if errors.Is(err, ErrRefNotFound) {
			continue
		} else if err != nil {
			return err
		}

		if err = PutValue(db.refDb, db.toInternal(name), value); err != nil {
			return err
		}
	}

	userRefs, err := db.refDb.GetAll(ref.RefsPrefix)

	if err != nil {
		return err
	}

	for name, value := range userRefs {
		if err = PutValue(db.refDb, db.toInternal(name), value); err != nil {
			return err
		}
		if err = PutValue(db.refDb, db.toOrigInternal(name), value); err != nil {
			return err
		}
	}

	return nil
}

// Close deletes the transaction namespace. The underlying database is left
// untouched outside transactions/<id>/.
func (db *TransactionRefDatabase) Close() error {
	_, err := db.refDb.RemoveAll(db.txPrefix)
	return err
}

// GetRef reads a direct ref from the live namespace, falling back to the
// orig/ snapshot when the transaction has not written the name.
func (db *TransactionRefDatabase) GetRef(name string) (hash.Hash, error) {
	h, err := db.refDb.GetRef(db.toInternal(name))

	if errors.Is(err, ErrRefNotFound) {
		return db.refDb.GetRef(db.toOrigInternal(name))
	}

	return h, err
}

func (db *TransactionRefDatabase) GetSymRef(name string) (string, error) {
	target, err := db.refDb.GetSymRef(db.toInternal(name))

	if errors.Is(err, ErrRefNotFound) {
		target, err = db.refDb.GetSymRef(db.toOrigInternal(name))
	}

	if err != nil {
		return "", err
	}

	return db.externalizeTarget(target), nil
}

func (db *TransactionRefDatabase) PutRef(name string, h hash.Hash) error {
	return db.refDb.PutRef(db.toInternal(name), h)
}

// PutSymRef stores the target exactly as supplied. Only the key is mapped
// into the namespace; callers supply external form targets.
func (db *TransactionRefDatabase) PutSymRef(name, target string) error {
	return db.refDb.PutSymRef(db.toInternal(name), target)
}

func (db *TransactionRefDatabase) Remove(name string) (string, error) {
	value, err := db.refDb.Remove(db.toInternal(name))

	if err != nil {
		return "", err
	}

	return db.externalizeValue(value), nil
}

// RemoveAll removes the live subtree under prefix. The orig/ snapshot is
// untouched, so removed refs revert to their snapshot values on read.
func (db *TransactionRefDatabase) RemoveAll(prefix string) (map[string]string, error) {
	live, err := db.liveEntries(prefix)

	if err != nil {
		return nil, err
	}

	removed := make(map[string]string, len(live))

	for name := range live {
		value, err := db.refDb.Remove(name)

		if err != nil {
			return nil, err
		}

		removed[name] = value
	}

	return db.toExternal(removed), nil
}

// GetAll overlays the live namespace over the orig/ snapshot; a name present
// in both takes its live value.
func (db *TransactionRefDatabase) GetAll(prefix string) (map[string]string, error) {
	composite, err := db.refDb.GetAll(db.origPrefix + prefix)

	if err != nil {
		return nil, err
	}

	composite = db.toExternal(composite)

	live, err := db.liveEntries(prefix)

	if err != nil {
		return nil, err
	}

	for name, value := range db.toExternal(live) {
		composite[name] = value
	}

	return composite, nil
}

// liveEntries scans the live namespace under prefix. The orig/ snapshot
// nests inside the transaction namespace and is never part of the live view.
func (db *TransactionRefDatabase) liveEntries(prefix string) (map[string]string, error) {
	entries, err := db.refDb.GetAll(db.txPrefix + prefix)

	if err != nil {
		return nil, err
	}

	for name := range entries {
		if strings.HasPrefix(name, db.origPrefix) {
			delete(entries, name)
		}
	}

	return entries, nil
}

func (db *TransactionRefDatabase) toInternal(name string) string {
	return db.txPrefix + name
}

func (db *TransactionRefDatabase) toOrigInternal(name string) string {
	return db.origPrefix + name
}

func (db *TransactionRefDatabase) externalizeName(name string) string {
	if strings.HasPrefix(name, db.origPrefix) {
		return name[len(db.origPrefix):]
	} else if strings.HasPrefix(name, db.txPrefix) {
		return name[len(db.txPrefix):]
	}

	return name
}

// externalizeTarget strips the live namespace prefix from a symbolic ref
// target so the external view only ever shows user visible names.
func (db *TransactionRefDatabase) externalizeTarget(target string) string {
	return strings.TrimPrefix(target, db.txPrefix)
}

func (db *TransactionRefDatabase) externalizeValue(value string) string {
	if ref.IsSymRefValue(value) {
		return ref.SymRefValue(db.externalizeTarget(ref.SymRefTarget(value)))
	}

	return value
}

func (db *TransactionRefDatabase) toExternal(entries map[string]string) map[string]string {
	external := make(map[string]string, len(entries))

	for name, value := range entries {
		external[db.externalizeName(name)] = db.externalizeValue(value)
	}

	return external
}
