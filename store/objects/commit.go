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
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// Commit references a root tree of features and an ordered list of parents.
// The first parent is the mainline, the base used for computing the changes
// the commit introduces.
type Commit struct {
	id        hash.Hash
	Parents   []hash.Hash
	Tree      hash.Hash
	Author    Signature
	Committer Signature
	Message   string
}

// NewCommit builds a Commit and derives its id from the canonical encoding.
func NewCommit(parents []hash.Hash, tree hash.Hash, author, committer Signature, message string) *Commit {
	c := &Commit{
		Parents:   append([]hash.Hash(nil), parents...),
		Tree:      tree,
		Author:    author,
		Committer: committer,
		Message:   message,
	}
	c.id = hash.Of(Encode(c))
	return c
}

func (c *Commit) Kind() Kind    { return KindCommit }
func (c *Commit) Id() hash.Hash { return c.id }

// MainlineParent returns the first parent, or Null for root commits.
func (c *Commit) MainlineParent() hash.Hash {
	if len(c.Parents) == 0 {
		return hash.Null
	}
	return c.Parents[0]
}

// CommitBuilder derives a new commit from an existing one, with some fields
// replaced. Used by replication to rebuild a commit against a different tree
// and parent list while keeping its authorship and message.
type CommitBuilder struct {
	parents   []hash.Hash
	tree      hash.Hash
	author    Signature
	committer Signature
	message   string
}

// NewCommitBuilder seeds a builder with every field of from.
func NewCommitBuilder(from *Commit) *CommitBuilder {
	return &CommitBuilder{
		parents:   append([]hash.Hash(nil), from.Parents...),
		tree:      from.Tree,
		author:    from.Author,
		committer: from.Committer,
		message:   from.Message,
	}
}

func (b *CommitBuilder) SetParents(parents []hash.Hash) *CommitBuilder {
	b.parents = append([]hash.Hash(nil), parents...)
	return b
}

func (b *CommitBuilder) SetTree(tree hash.Hash) *CommitBuilder {
	b.tree = tree
	return b
}

func (b *CommitBuilder) SetMessage(message string) *CommitBuilder {
	b.message = message
	return b
}

// Build constructs the commit, deriving its id.
func (b *CommitBuilder) Build() *Commit {
	return NewCommit(b.parents, b.tree, b.author, b.committer, b.message)
}
