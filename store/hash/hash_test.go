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

package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	const str = "0123456789abcdef0123456789abcdef01234567"

	h, err := Parse(str)
	require.NoError(t, err)
	assert.Equal(t, str, h.String())
	assert.False(t, h.IsNull())
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []string{
		"",
		"abc",
		"0123456789abcdef0123456789abcdef0123456",   // too short
		"0123456789abcdef0123456789abcdef012345678", // too long
		"zzzz456789abcdef0123456789abcdef01234567",  // not hex
	}

	for _, test := range tests {
		_, err := Parse(test)
		assert.ErrorIs(t, err, ErrInvalidHash)
		assert.False(t, IsValid(test))
	}
}

func TestNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.Equal(t, "0000000000000000000000000000000000000000", Null.String())

	h := Of([]byte("content"))
	assert.False(t, h.IsNull())
	assert.True(t, Null.Less(h) || h.Less(Null))
}

func TestOfIsDeterministic(t *testing.T) {
	a := Of([]byte("same bytes"))
	b := Of([]byte("same bytes"))
	c := Of([]byte("other bytes"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestHashSet(t *testing.T) {
	a := Of([]byte("a"))
	b := Of([]byte("b"))

	hs := NewHashSet(a)
	assert.True(t, hs.Has(a))
	assert.False(t, hs.Has(b))

	hs.Insert(b)
	assert.Equal(t, 2, hs.Size())

	hs.Remove(a)
	assert.False(t, hs.Has(a))
	assert.Equal(t, 1, hs.Size())
}
