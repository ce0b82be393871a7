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

// Package ref defines named pointers into the commit graph and their
// serialized forms.
package ref

import (
	"strings"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// Well known ref names. Head points at the current branch, WorkHead at the
// root tree of the working copy, StageHead at the root tree of the staging
// area.
const (
	Head      = "HEAD"
	WorkHead  = "WORK_HEAD"
	StageHead = "STAGE_HEAD"
)

// Namespaces under refs/, the user visible ref space.
const (
	RefsPrefix    = "refs/"
	HeadsPrefix   = RefsPrefix + "heads/"
	TagsPrefix    = RefsPrefix + "tags/"
	RemotesPrefix = RefsPrefix + "remotes/"
)

// SymRefPrefix precedes the target name in the stored form of a symbolic ref.
const SymRefPrefix = "ref: "

// IsUserRef returns true if name lies in the refs/ namespace.
func IsUserRef(name string) bool {
	return strings.HasPrefix(name, RefsPrefix)
}

// IsSymRefValue reports whether a stored ref value is symbolic.
func IsSymRefValue(value string) bool {
	return strings.HasPrefix(value, SymRefPrefix)
}

// SymRefTarget extracts the target name from a stored symbolic ref value.
func SymRefTarget(value string) string {
	return strings.TrimPrefix(value, SymRefPrefix)
}

// SymRefValue builds the stored form of a symbolic ref pointing at target.
func SymRefValue(target string) string {
	return SymRefPrefix + target
}

// Ref is a named pointer. A direct ref holds a commit hash, a symbolic ref
// holds the name of another ref.
type Ref struct {
	// Name is the full name of the ref, e.g. refs/heads/master.
	Name string

	// Hash is the object pointed at by a direct ref.
	Hash hash.Hash

	// Target is the name pointed at by a symbolic ref, empty for direct refs.
	Target string
}

// NewRef creates a direct ref.
func NewRef(name string, h hash.Hash) Ref {
	return Ref{Name: name, Hash: h}
}

// NewSymRef creates a symbolic ref.
func NewSymRef(name, target string) Ref {
	return Ref{Name: name, Target: target}
}

// IsSymbolic returns true for symbolic refs.
func (r Ref) IsSymbolic() bool {
	return r.Target != ""
}

// Value returns the stored form of the ref: the 40 hex hash for direct refs,
// the "ref: " prefixed target for symbolic refs.
func (r Ref) Value() string {
	if r.IsSymbolic() {
		return SymRefValue(r.Target)
	}
	return r.Hash.String()
}

// SimpleName returns the last path segment of a ref name, e.g. master for
// refs/heads/master.
func SimpleName(name string) string {
	idx := strings.LastIndex(name, "/")

	if idx == -1 {
		return name
	}

	return name[idx+1:]
}
