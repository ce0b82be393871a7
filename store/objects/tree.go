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
	"sort"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// TreeEntry is one named child of a tree. Metadata points at the feature
// type describing the entry, or is Null for untyped entries.
type TreeEntry struct {
	Name     string
	Kind     Kind
	Id       hash.Hash
	Metadata hash.Hash
}

// Tree is a content addressed set of named entries, kept sorted by name so
// equal trees always serialize to equal bytes.
type Tree struct {
	id      hash.Hash
	Entries []TreeEntry
}

// NewTree builds a Tree from entries, sorting them by name.
func NewTree(entries []TreeEntry) *Tree {
	sorted := append([]TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	t := &Tree{Entries: sorted}
	t.id = hash.Of(Encode(t))
	return t
}

var emptyTree = NewTree(nil)

// EmptyTree returns the distinguished empty tree.
func EmptyTree() *Tree {
	return emptyTree
}

// EmptyTreeId is the fixed id of the empty tree.
func EmptyTreeId() hash.Hash {
	return emptyTree.Id()
}

func (t *Tree) Kind() Kind    { return KindTree }
func (t *Tree) Id() hash.Hash { return t.id }

// Entry returns the entry with the given name.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	idx := sort.Search(len(t.Entries), func(i int) bool { return t.Entries[i].Name >= name })

	if idx < len(t.Entries) && t.Entries[idx].Name == name {
		return t.Entries[idx], true
	}

	return TreeEntry{}, false
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	return len(t.Entries)
}
