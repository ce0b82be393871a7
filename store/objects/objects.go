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

// Package objects defines the content addressed object model: commits, trees
// of typed features, features, feature types and tags, together with the
// canonical byte encoding their addresses are derived from.
package objects

import (
	"errors"
	"fmt"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// Kind tags the stored form of an object.
type Kind byte

const (
	KindCommit Kind = iota + 1
	KindTree
	KindFeature
	KindFeatureType
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindFeature:
		return "feature"
	case KindFeatureType:
		return "featuretype"
	case KindTag:
		return "tag"
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

var (
	// ErrObjectNotFound is returned by Database.Get for unknown ids.
	ErrObjectNotFound = errors.New("object not found")

	// ErrCorruptObject is returned when stored bytes fail to decode.
	ErrCorruptObject = errors.New("corrupt object")
)

// Object is a content addressed value. Its id is the hash of its canonical
// encoding; changing any field yields a different id.
type Object interface {
	Kind() Kind
	Id() hash.Hash
}

// Signature identifies the author or committer of a commit. The timestamp is
// unix milliseconds with a timezone offset in minutes, both fixed at commit
// construction so ids stay stable.
type Signature struct {
	Name     string
	Email    string
	When     int64
	TZOffset int32
}

// Feature is a versioned geospatial feature. The value payload is the
// serialized attribute tuple; its interpretation belongs to the feature type
// registry, which is outside this store.
type Feature struct {
	id     hash.Hash
	Values []byte
}

// NewFeature builds a Feature and derives its id.
func NewFeature(values []byte) *Feature {
	f := &Feature{Values: values}
	f.id = hash.Of(Encode(f))
	return f
}

func (f *Feature) Kind() Kind    { return KindFeature }
func (f *Feature) Id() hash.Hash { return f.id }

// FeatureType describes the schema of a set of features.
type FeatureType struct {
	id   hash.Hash
	Name string
	Spec []byte
}

func NewFeatureType(name string, spec []byte) *FeatureType {
	ft := &FeatureType{Name: name, Spec: spec}
	ft.id = hash.Of(Encode(ft))
	return ft
}

func (ft *FeatureType) Kind() Kind    { return KindFeatureType }
func (ft *FeatureType) Id() hash.Hash { return ft.id }

// Tag is a named, annotated pointer at another object.
type Tag struct {
	id      hash.Hash
	Object  hash.Hash
	Name    string
	Message string
	Tagger  Signature
}

func NewTag(object hash.Hash, name, message string, tagger Signature) *Tag {
	t := &Tag{Object: object, Name: name, Message: message, Tagger: tagger}
	t.id = hash.Of(Encode(t))
	return t
}

func (t *Tag) Kind() Kind    { return KindTag }
func (t *Tag) Id() hash.Hash { return t.id }
