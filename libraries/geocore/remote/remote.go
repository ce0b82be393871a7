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

// Package remote synchronizes a sparse clone with a full remote repository.
// The clone holds projections of the remote's commits, filtered through the
// repository filter, and the replicator maintains the bidirectional mapping
// between original and projected commit ids.
package remote

import (
	"context"
	"errors"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/diff"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/repository"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

// PlaceholderCommitMessage marks a projection emitted only to keep the tip
// of a fetched ref reachable.
const PlaceholderCommitMessage = "Placeholder Sparse Commit"

var (
	// ErrNoFilter is returned when a repository configured as a sparse clone
	// has no sparse.filter config entry.
	ErrNoFilter = errors.New("no filter found for sparse clone")

	// ErrSparseShallow is returned when a depth limit is supplied to a
	// sparse fetch.
	ErrSparseShallow = errors.New("a sparse clone cannot be shallow")

	// ErrMissingMapping is returned when a commit's expected projection has
	// not been installed.
	ErrMissingMapping = errors.New("no mapping found for commit")

	// ErrNothingToPush reports that the remote already has everything the
	// local ref points at. A status condition, not a fault.
	ErrNothingToPush = errors.New("nothing to push")

	// ErrRemoteHasChanges reports that pushing would overwrite history the
	// local clone does not have. A status condition, not a fault.
	ErrRemoteHasChanges = errors.New("remote has changes the local repository does not")
)

// Protocol is the set of operations a concrete transport provides to the
// replicator. Variants (in-process, filesystem, HTTP) are instances of this
// interface rather than replicator subtypes.
type Protocol interface {
	// Parents returns a remote commit's parent ids in declared order.
	Parents(ctx context.Context, id hash.Hash) ([]hash.Hash, error)

	// Object retrieves an object from the remote store.
	Object(ctx context.Context, id hash.Hash) (objects.Object, error)

	// FilteredChanges returns the changes a remote commit introduces
	// relative to its mainline parent, restricted to entries passing the
	// filter.
	FilteredChanges(ctx context.Context, commit *objects.Commit, filter *repository.Filter) (*FilteredIterator, error)

	// RemoteRef resolves a refspec on the remote, returning nil when the
	// ref does not exist.
	RemoteRef(ctx context.Context, refspec string) (*ref.Ref, error)

	// UpdateRemoteRef points the remote ref at id, or deletes it.
	UpdateRemoteRef(ctx context.Context, refspec string, id hash.Hash, delete bool) (*ref.Ref, error)

	// PushCommit transmits one local commit to the remote, rebuilding it
	// against the remote's trees and installing the reverse mapping.
	PushCommit(ctx context.Context, id hash.Hash) error
}

// FilteredIterator walks the changes that survived the filter. WasFiltered
// reports whether any entry was suppressed; it is fixed when the iterator is
// built, so it holds before, during and after iteration.
type FilteredIterator struct {
	entries  []diff.Entry
	next     int
	filtered bool
}

// NewFilteredIterator wraps the kept entries; filtered records whether any
// entry was dropped to produce them.
func NewFilteredIterator(entries []diff.Entry, filtered bool) *FilteredIterator {
	return &FilteredIterator{entries: entries, filtered: filtered}
}

// FilterChanges partitions entries through the filter, keeping matches.
func FilterChanges(entries []diff.Entry, filter *repository.Filter) *FilteredIterator {
	var kept []diff.Entry
	filtered := false

	for _, entry := range entries {
		if filter.Matches(entry.Path) {
			kept = append(kept, entry)
		} else {
			filtered = true
		}
	}

	return NewFilteredIterator(kept, filtered)
}

// Next returns the next change, or false when exhausted.
func (it *FilteredIterator) Next() (diff.Entry, bool) {
	if it.next >= len(it.entries) {
		return diff.Entry{}, false
	}

	entry := it.entries[it.next]
	it.next++
	return entry, true
}

// Len returns the number of changes that passed the filter.
func (it *FilteredIterator) Len() int {
	return len(it.entries)
}

// Entries returns every change that passed the filter.
func (it *FilteredIterator) Entries() []diff.Entry {
	return it.entries
}

// WasFiltered reports whether the filter suppressed any change.
func (it *FilteredIterator) WasFiltered() bool {
	return it.filtered
}
