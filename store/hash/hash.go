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

// Package hash provides the 20 byte content addresses used throughout the
// object, ref and graph databases, serialized as 40 lowercase hex characters.
package hash

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// ByteLen is the number of bytes in a Hash.
	ByteLen = 20

	// StrLen is the number of characters in the hex form of a Hash.
	StrLen = ByteLen * 2
)

var ErrInvalidHash = errors.New("invalid hash")

// Hash is a content address. The zero value, Null, is distinguished and
// means "absent" or "no mapping".
type Hash [ByteLen]byte

// Null is the all-zero Hash.
var Null = Hash{}

// Of returns the Hash of the given byte encoding.
func Of(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// New creates a Hash from exactly ByteLen bytes.
func New(data []byte) (Hash, error) {
	if len(data) != ByteLen {
		return Null, fmt.Errorf("%w: %d bytes", ErrInvalidHash, len(data))
	}

	var h Hash
	copy(h[:], data)
	return h, nil
}

// Parse decodes the 40 character hex form of a Hash.
func Parse(s string) (Hash, error) {
	if len(s) != StrLen {
		return Null, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}

	data, err := hex.DecodeString(s)

	if err != nil {
		return Null, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}

	return New(data)
}

// MustParse parses s and panics on failure. For use with string literals.
func MustParse(s string) Hash {
	h, err := Parse(s)

	if err != nil {
		panic(err)
	}

	return h
}

// IsValid returns true if s parses as a Hash.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// IsNull returns true if h is the distinguished Null value.
func (h Hash) IsNull() bool {
	return h == Null
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal returns true if h and other hold the same bytes.
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// Less provides the byte-lexicographic ordering of hashes.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// HashSet is an unordered collection of unique hashes.
type HashSet map[Hash]struct{}

func NewHashSet(hashes ...Hash) HashSet {
	hs := make(HashSet, len(hashes))

	for _, h := range hashes {
		hs.Insert(h)
	}

	return hs
}

func (hs HashSet) Insert(h Hash) {
	hs[h] = struct{}{}
}

func (hs HashSet) Has(h Hash) bool {
	_, ok := hs[h]
	return ok
}

func (hs HashSet) Remove(h Hash) {
	delete(hs, h)
}

func (hs HashSet) Size() int {
	return len(hs)
}
