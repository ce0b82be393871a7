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
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/diff"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/refdb"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/repository"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

const objectCacheSize = 512

// LocalProtocol replicates against a remote repository reachable in
// process, e.g. another repository on the same file system. Remote object
// reads go through a small lru cache; the same objects tend to be read for
// the tree of every projected commit.
type LocalProtocol struct {
	local  *repository.Repository
	remote *repository.Repository
	cache  *lru.Cache[hash.Hash, objects.Object]
}

var _ Protocol = (*LocalProtocol)(nil)

// NewLocalProtocol builds the protocol for replicating between local and
// remote.
func NewLocalProtocol(local, remote *repository.Repository) (*LocalProtocol, error) {
	cache, err := lru.New[hash.Hash, objects.Object](objectCacheSize)

	if err != nil {
		return nil, err
	}

	return &LocalProtocol{local: local, remote: remote, cache: cache}, nil
}

func (p *LocalProtocol) Parents(ctx context.Context, id hash.Hash) ([]hash.Hash, error) {
	return p.remote.Graph.Parents(ctx, id)
}

func (p *LocalProtocol) Object(ctx context.Context, id hash.Hash) (objects.Object, error) {
	if obj, ok := p.cache.Get(id); ok {
		return obj, nil
	}

	obj, err := p.remote.Objects.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	p.cache.Add(id, obj)
	return obj, nil
}

// FilteredChanges diffs a remote commit against its mainline parent and
// keeps the entries passing the filter.
func (p *LocalProtocol) FilteredChanges(ctx context.Context, commit *objects.Commit, filter *repository.Filter) (*FilteredIterator, error) {
	baseTree, err := p.remote.ResolveTree(ctx, commit.MainlineParent())

	if err != nil {
		return nil, err
	}

	nextTree, err := objects.GetTree(ctx, p.remote.Objects, commit.Tree)

	if err != nil {
		return nil, err
	}

	return FilterChanges(diff.TreeDiff(baseTree, nextTree), filter), nil
}

func (p *LocalProtocol) RemoteRef(ctx context.Context, refspec string) (*ref.Ref, error) {
	h, err := p.remote.Refs.GetRef(refspec)

	if errors.Is(err, refdb.ErrRefNotFound) {
		return nil, nil
	} else if errors.Is(err, refdb.ErrNotDirectRef) {
		// follow one level of indirection
		target, err := p.remote.Refs.GetSymRef(refspec)

		if err != nil {
			return nil, err
		}

		h, err = p.remote.Refs.GetRef(target)

		if errors.Is(err, refdb.ErrRefNotFound) {
			return nil, nil
		} else if err != nil {
			return nil, err
		}

		r := ref.NewRef(target, h)
		return &r, nil
	} else if err != nil {
		return nil, err
	}

	r := ref.NewRef(refspec, h)
	return &r, nil
}

func (p *LocalProtocol) UpdateRemoteRef(ctx context.Context, refspec string, id hash.Hash, delete bool) (*ref.Ref, error) {
	if delete {
		if _, err := p.remote.Refs.Remove(refspec); err != nil {
			return nil, err
		}

		r := ref.NewRef(refspec, hash.Null)
		return &r, nil
	}

	if err := p.remote.Refs.PutRef(refspec, id); err != nil {
		return nil, err
	}

	r := ref.NewRef(refspec, id)
	return &r, nil
}

// PushCommit rebuilds one local commit on the remote: its changes are
// applied over the remote tree of its mapped mainline parent, the objects it
// references are copied across, and the mapping installed both ways.
func (p *LocalProtocol) PushCommit(ctx context.Context, id hash.Hash) error {
	commit, err := objects.GetCommit(ctx, p.local.Objects, id)

	if err != nil {
		return err
	}

	baseTree, err := p.local.ResolveTree(ctx, commit.MainlineParent())

	if err != nil {
		return err
	}

	nextTree, err := objects.GetTree(ctx, p.local.Objects, commit.Tree)

	if err != nil {
		return err
	}

	changes := diff.TreeDiff(baseTree, nextTree)

	for _, entry := range changes {
		for _, objId := range []hash.Hash{entry.NewId, entry.NewMetadata} {
			if objId.IsNull() {
				continue
			}

			exists, err := p.remote.Objects.Exists(ctx, objId)

			if err != nil {
				return err
			} else if exists {
				continue
			}

			obj, err := p.local.Objects.Get(ctx, objId)

			if err != nil {
				return err
			}

			if err = p.remote.Objects.Put(ctx, obj); err != nil {
				return err
			}
		}
	}

	mappedParents := make([]hash.Hash, 0, len(commit.Parents))

	for _, parent := range commit.Parents {
		mapped, err := p.local.Graph.Mapping(ctx, parent)

		if err != nil {
			return err
		}

		if !mapped.IsNull() {
			mappedParents = append(mappedParents, mapped)
		}
	}

	remoteBaseId := hash.Null

	if len(mappedParents) > 0 {
		remoteBaseId = mappedParents[0]
	}

	remoteBase, err := p.remote.ResolveTree(ctx, remoteBaseId)

	if err != nil {
		return err
	}

	newTree, err := diff.ApplyToTree(remoteBase, changes)

	if err != nil {
		return err
	}

	if err = p.remote.Objects.Put(ctx, newTree); err != nil {
		return err
	}

	pushed := objects.NewCommitBuilder(commit).
		SetParents(mappedParents).
		SetTree(newTree.Id()).
		Build()

	if err = p.remote.WriteCommit(ctx, pushed); err != nil {
		return err
	}

	return p.local.Graph.Map(ctx, id, pushed.Id())
}
