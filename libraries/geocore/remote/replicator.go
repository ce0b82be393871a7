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

package remote

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/diff"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/graph"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/repository"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/traverse"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

// Replicator synchronizes commits between a sparse local clone and a remote
// reached through a Protocol. Fetch projects each remote commit through the
// repository filter; Push rebuilds local commits on the remote side. Not
// safe for concurrent use.
type Replicator struct {
	local  *repository.Repository
	proto  Protocol
	filter *repository.Filter
	logger *zap.Logger
}

// ReplicatorOption configures a Replicator.
type ReplicatorOption func(*Replicator)

// WithFilter supplies the filter directly instead of loading it from the
// repository config.
func WithFilter(filter *repository.Filter) ReplicatorOption {
	return func(r *Replicator) {
		r.filter = filter
	}
}

// NewReplicator builds a Replicator for a sparse clone. Unless a filter is
// supplied, the sparse.filter config key names the filter file, resolved
// against the repository root; a repository without a file system root
// cannot be a sparse clone.
func NewReplicator(local *repository.Repository, proto Protocol, opts ...ReplicatorOption) (*Replicator, error) {
	r := &Replicator{
		local:  local,
		proto:  proto,
		logger: local.Logger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.filter == nil {
		filterFile, ok := local.Config.Get(repository.FilterConfigKey)

		if !ok {
			return nil, ErrNoFilter
		}

		root, err := local.Root()

		if err != nil {
			return nil, err
		}

		filter, err := repository.LoadFilter(filepath.Join(root, filterFile))

		if err != nil {
			return nil, err
		}

		r.filter = filter
	}

	return r, nil
}

// Fetch brings every commit reachable from the remote ref into the local
// clone, as filtered projections. Re-running a completed fetch is a no-op:
// commits already recorded in the local graph database are pruned.
func (r *Replicator) Fetch(ctx context.Context, remoteRef ref.Ref, depth int) error {
	if depth > 0 {
		return ErrSparseShallow
	}

	trav := &traverse.Traverser{
		Evaluate: func(ctx context.Context, id hash.Hash) (traverse.Evaluation, error) {
			exists, err := r.local.Graph.Exists(ctx, id)

			if err != nil {
				return 0, err
			} else if exists {
				return traverse.ExcludeAndPrune, nil
			}

			return traverse.IncludeAndContinue, nil
		},
		Parents: r.proto.Parents,
		ExistsInDestination: func(ctx context.Context, id hash.Hash) (bool, error) {
			return r.local.Graph.Exists(ctx, id)
		},
	}

	if err := trav.Traverse(ctx, remoteRef.Hash); err != nil {
		return err
	}

	r.logger.Info("fetching sparse commits",
		zap.String("ref", remoteRef.Name), zap.Int("commits", trav.Remaining()))

	for {
		id, ok := trav.Pop()

		if !ok {
			break
		}

		// the tip may be written as a placeholder so the fetched ref has a
		// local commit to land on
		allowEmpty := trav.Remaining() == 0

		if err := r.fetchSparseCommit(ctx, id, allowEmpty); err != nil {
			return err
		}
	}

	return nil
}

// fetchSparseCommit projects one remote commit into the local clone: its
// changes are filtered, applied over its mainline parent's projected tree,
// and the resulting commit mapped to the original in both directions.
func (r *Replicator) fetchSparseCommit(ctx context.Context, id hash.Hash, allowEmpty bool) error {
	obj, err := r.proto.Object(ctx, id)

	if err != nil {
		return err
	}

	commit, ok := obj.(*objects.Commit)

	if !ok {
		return nil
	}

	changes, err := r.proto.FilteredChanges(ctx, commit, r.filter)

	if err != nil {
		return err
	}

	if err = r.local.Graph.Put(ctx, id, commit.Parents); err != nil {
		return err
	}

	baseTree := objects.EmptyTree()
	mappedParent := hash.Null

	if len(commit.Parents) > 0 {
		mappedParent, err = r.local.Graph.Mapping(ctx, commit.MainlineParent())

		if err != nil {
			return err
		}

		if !mappedParent.IsNull() {
			baseTree, err = r.local.ResolveTree(ctx, mappedParent)

			if err != nil {
				return err
			}
		}
	}

	switch {
	case changes.Len() > 0:
		newTree, err := r.applyChanges(ctx, baseTree, changes.Entries())

		if err != nil {
			return err
		}

		mapped, err := r.writeProjection(ctx, commit, newTree.Id(), "")

		if err != nil {
			return err
		}

		if changes.WasFiltered() {
			if err = r.markSparse(ctx, mapped.Id()); err != nil {
				return err
			}
		}

		return r.local.Graph.Map(ctx, id, mapped.Id())

	case allowEmpty:
		mapped, err := r.writeProjection(ctx, commit, baseTree.Id(), PlaceholderCommitMessage)

		if err != nil {
			return err
		}

		if err = r.markSparse(ctx, mapped.Id()); err != nil {
			return err
		}

		return r.local.Graph.Map(ctx, id, mapped.Id())

	default:
		// nothing survived the filter: this commit's projection is its
		// mainline parent's projection, which now carries the sparse flag
		if mappedParent.IsNull() {
			return fmt.Errorf("%w: %s", ErrMissingMapping, id)
		}

		if err = r.markSparse(ctx, mappedParent); err != nil {
			return err
		}

		return r.local.Graph.MapForward(ctx, id, mappedParent)
	}
}

// applyChanges copies the objects referenced by the kept changes into the
// local store and builds the projected tree.
func (r *Replicator) applyChanges(ctx context.Context, baseTree *objects.Tree, entries []diff.Entry) (*objects.Tree, error) {
	for _, entry := range entries {
		for _, id := range []hash.Hash{entry.NewId, entry.NewMetadata} {
			if id.IsNull() {
				continue
			}

			exists, err := r.local.Objects.Exists(ctx, id)

			if err != nil {
				return nil, err
			} else if exists {
				continue
			}

			obj, err := r.proto.Object(ctx, id)

			if err != nil {
				return nil, err
			}

			if err = r.local.Objects.Put(ctx, obj); err != nil {
				return nil, err
			}
		}
	}

	tree, err := diff.ApplyToTree(baseTree, entries)

	if err != nil {
		return nil, err
	}

	if err = r.local.Objects.Put(ctx, tree); err != nil {
		return nil, err
	}

	return tree, nil
}

// writeProjection rebuilds commit with mapped parents and the given tree,
// stores it locally and records it in the graph database. A non-empty
// message overrides the original's.
func (r *Replicator) writeProjection(ctx context.Context, commit *objects.Commit, tree hash.Hash, message string) (*objects.Commit, error) {
	mappedParents := make([]hash.Hash, 0, len(commit.Parents))

	for _, parent := range commit.Parents {
		mapped, err := r.local.Graph.Mapping(ctx, parent)

		if err != nil {
			return nil, err
		}

		if !mapped.IsNull() {
			mappedParents = append(mappedParents, mapped)
		}
	}

	builder := objects.NewCommitBuilder(commit).
		SetParents(mappedParents).
		SetTree(tree)

	if message != "" {
		builder.SetMessage(message)
	}

	mapped := builder.Build()

	if err := r.local.WriteCommit(ctx, mapped); err != nil {
		return nil, err
	}

	return mapped, nil
}

func (r *Replicator) markSparse(ctx context.Context, id hash.Hash) error {
	return r.local.Graph.SetProperty(ctx, id, graph.SparseFlag, graph.SparseFlagValue)
}

// CheckPush decides whether pushing localRef onto the remote ref is safe.
// It returns nil for a fast forward, ErrNothingToPush when the remote
// already has the local data, and ErrRemoteHasChanges when pushing would
// lose remote history.
func (r *Replicator) CheckPush(ctx context.Context, localRef ref.Ref, remoteRef *ref.Ref) error {
	if remoteRef == nil {
		return nil
	}

	mapped, err := r.local.Graph.Mapping(ctx, remoteRef.Hash)

	if err != nil {
		return err
	}

	if mapped == localRef.Hash {
		return ErrNothingToPush
	}

	exists, err := r.local.Objects.Exists(ctx, mapped)

	if err != nil {
		return err
	} else if !exists {
		// the remote has commits this clone has never seen
		return ErrRemoteHasChanges
	}

	ancestor, err := repository.FindCommonAncestor(ctx, r.local.Graph, mapped, localRef.Hash)

	if err != nil {
		return err
	}

	switch {
	case ancestor.IsNull():
		return ErrRemoteHasChanges
	case ancestor == localRef.Hash:
		return ErrNothingToPush
	case ancestor != mapped:
		return ErrRemoteHasChanges
	}

	return nil
}

// Push transmits every unpushed commit reachable from localRef and then
// points the remote refspec at the projection of the local tip.
func (r *Replicator) Push(ctx context.Context, localRef ref.Ref, refspec string) error {
	remoteRef, err := r.proto.RemoteRef(ctx, refspec)

	if err != nil {
		return err
	}

	if err = r.CheckPush(ctx, localRef, remoteRef); err != nil {
		return err
	}

	trav := &traverse.Traverser{
		Evaluate: func(ctx context.Context, id hash.Hash) (traverse.Evaluation, error) {
			mapped, err := r.local.Graph.Mapping(ctx, id)

			if err != nil {
				return 0, err
			} else if !mapped.IsNull() {
				// already pushed or fetched, the remote has it
				return traverse.ExcludeAndPrune, nil
			}

			return traverse.IncludeAndContinue, nil
		},
		Parents: func(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
			return r.local.Graph.Parents(ctx, id)
		},
		ExistsInDestination: func(ctx context.Context, id hash.Hash) (bool, error) {
			mapped, err := r.local.Graph.Mapping(ctx, id)
			return !mapped.IsNull(), err
		},
	}

	if err = trav.Traverse(ctx, localRef.Hash); err != nil {
		return err
	}

	r.logger.Info("pushing sparse commits",
		zap.String("refspec", refspec), zap.Int("commits", trav.Remaining()))

	for {
		id, ok := trav.Pop()

		if !ok {
			break
		}

		if err = r.proto.PushCommit(ctx, id); err != nil {
			return err
		}
	}

	newCommitId, err := r.local.Graph.Mapping(ctx, localRef.Hash)

	if err != nil {
		return err
	}

	if newCommitId.IsNull() {
		return fmt.Errorf("%w: %s", ErrMissingMapping, localRef.Hash)
	}

	originalValue := hash.Null
	if remoteRef != nil {
		originalValue = remoteRef.Hash
	}

	return r.endPush(ctx, refspec, newCommitId, originalValue)
}

// endPush updates the remote ref to the pushed tip. The remote ref is
// re-read first: if another writer moved it since CheckPush, the update is
// refused rather than overwriting their history.
func (r *Replicator) endPush(ctx context.Context, refspec string, newCommitId, originalValue hash.Hash) error {
	current, err := r.proto.RemoteRef(ctx, refspec)

	if err != nil {
		return err
	}

	currentValue := hash.Null
	if current != nil {
		currentValue = current.Hash
	}

	if currentValue != originalValue {
		return ErrRemoteHasChanges
	}

	_, err = r.proto.UpdateRemoteRef(ctx, refspec, newCommitId, false)
	return err
}
