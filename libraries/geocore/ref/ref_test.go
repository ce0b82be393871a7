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

package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

func TestRefValues(t *testing.T) {
	h := hash.MustParse("aa00000000000000000000000000000000000001")

	direct := NewRef("refs/heads/master", h)
	assert.False(t, direct.IsSymbolic())
	assert.Equal(t, h.String(), direct.Value())

	sym := NewSymRef(Head, "refs/heads/master")
	assert.True(t, sym.IsSymbolic())
	assert.Equal(t, "ref: refs/heads/master", sym.Value())
	assert.Equal(t, "refs/heads/master", SymRefTarget(sym.Value()))
}

func TestIsUserRef(t *testing.T) {
	assert.True(t, IsUserRef("refs/heads/master"))
	assert.True(t, IsUserRef("refs/tags/v1"))
	assert.False(t, IsUserRef(Head))
	assert.False(t, IsUserRef(WorkHead))
	assert.False(t, IsUserRef("transactions/x/refs/heads/master"))
}

func TestSymRefValueRoundTrip(t *testing.T) {
	v := SymRefValue("refs/heads/sparse")
	assert.True(t, IsSymRefValue(v))
	assert.Equal(t, "refs/heads/sparse", SymRefTarget(v))
	assert.False(t, IsSymRefValue("aa00000000000000000000000000000000000001"))
}

func TestSimpleName(t *testing.T) {
	assert.Equal(t, "master", SimpleName("refs/heads/master"))
	assert.Equal(t, "HEAD", SimpleName("HEAD"))
}
