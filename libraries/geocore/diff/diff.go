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

// Package diff computes and applies entry level differences between feature
// trees.
package diff

import (
	"errors"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

// ChangeType classifies one changed tree entry.
type ChangeType int

const (
	Added ChangeType = iota
	Modified
	Removed
)

func (ct ChangeType) String() string {
	switch ct {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// ErrConflictingEntry is returned when a change does not apply cleanly to a
// base tree.
var ErrConflictingEntry = errors.New("change does not apply to base tree")

// Entry is one changed path between two trees.
type Entry struct {
	Change      ChangeType
	Path        string
	Kind        objects.Kind
	OldId       hash.Hash
	NewId       hash.Hash
	OldMetadata hash.Hash
	NewMetadata hash.Hash
}

// TreeDiff returns the entries that change base into next, ordered by path.
func TreeDiff(base, next *objects.Tree) []Entry {
	var entries []Entry

	i, j := 0, 0
	for i < len(base.Entries) || j < len(next.Entries) {
		switch {
		case j >= len(next.Entries) || (i < len(base.Entries) && base.Entries[i].Name < next.Entries[j].Name):
			old := base.Entries[i]
			entries = append(entries, Entry{
				Change:      Removed,
				Path:        old.Name,
				Kind:        old.Kind,
				OldId:       old.Id,
				OldMetadata: old.Metadata,
			})
			i++

		case i >= len(base.Entries) || next.Entries[j].Name < base.Entries[i].Name:
			added := next.Entries[j]
			entries = append(entries, Entry{
				Change:      Added,
				Path:        added.Name,
				Kind:        added.Kind,
				NewId:       added.Id,
				NewMetadata: added.Metadata,
			})
			j++

		default:
			old, updated := base.Entries[i], next.Entries[j]
			if old.Id != updated.Id || old.Metadata != updated.Metadata || old.Kind != updated.Kind {
				entries = append(entries, Entry{
					Change:      Modified,
					Path:        old.Name,
					Kind:        updated.Kind,
					OldId:       old.Id,
					NewId:       updated.Id,
					OldMetadata: old.Metadata,
					NewMetadata: updated.Metadata,
				})
			}
			i++
			j++
		}
	}

	return entries
}

// ApplyToTree builds the tree that results from applying entries to base.
// Added and modified entries replace whatever base holds at their path;
// removals of absent paths are rejected.
func ApplyToTree(base *objects.Tree, entries []Entry) (*objects.Tree, error) {
	merged := make(map[string]objects.TreeEntry, base.Len()+len(entries))

	for _, entry := range base.Entries {
		merged[entry.Name] = entry
	}

	for _, change := range entries {
		switch change.Change {
		case Removed:
			if _, ok := merged[change.Path]; !ok {
				return nil, ErrConflictingEntry
			}
			delete(merged, change.Path)

		default:
			merged[change.Path] = objects.TreeEntry{
				Name:     change.Path,
				Kind:     change.Kind,
				Id:       change.NewId,
				Metadata: change.NewMetadata,
			}
		}
	}

	flat := make([]objects.TreeEntry, 0, len(merged))
	for _, entry := range merged {
		flat = append(flat, entry)
	}

	return objects.NewTree(flat), nil
}
