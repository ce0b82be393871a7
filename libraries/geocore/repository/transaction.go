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
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/refdb"
)

// ErrTransactionDone is returned when a finished transaction is used again.
var ErrTransactionDone = errors.New("transaction already committed or aborted")

// Transaction is an isolated view over the repository refs. Commands run
// against Refs see a private copy of every named pointer; nothing is visible
// outside the transaction until Commit copies the namespace back.
type Transaction struct {
	ID   uuid.UUID
	Refs *refdb.TransactionRefDatabase

	repo *Repository
	done bool
}

// BeginTransaction snapshots the current refs into a fresh transaction
// namespace.
func (r *Repository) BeginTransaction() (*Transaction, error) {
	id := uuid.New()
	view := refdb.NewTransactionRefDatabase(r.Refs, id)

	if err := view.Create(); err != nil {
		return nil, err
	}

	r.logger.Debug("transaction begun", zap.String("id", id.String()))

	return &Transaction{ID: id, Refs: view, repo: r}, nil
}

// Commit publishes the transaction's refs to the shared database under the
// ref database lock, then deletes the namespace.
func (tx *Transaction) Commit() error {
	if tx.done {
		return ErrTransactionDone
	}
	tx.done = true

	refs, err := tx.Refs.GetAll("")

	if err != nil {
		return err
	}

	base := tx.repo.Refs

	if err = base.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = base.Unlock()
	}()

	for name, value := range refs {
		if err = refdb.PutValue(base, name, value); err != nil {
			return err
		}
	}

	tx.repo.logger.Debug("transaction committed",
		zap.String("id", tx.ID.String()), zap.Int("refs", len(refs)))

	return tx.Refs.Close()
}

// Abort discards the transaction's namespace without publishing anything.
func (tx *Transaction) Abort() error {
	if tx.done {
		return ErrTransactionDone
	}
	tx.done = true

	tx.repo.logger.Debug("transaction aborted", zap.String("id", tx.ID.String()))

	return tx.Refs.Close()
}
