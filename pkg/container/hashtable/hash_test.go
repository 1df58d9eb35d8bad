// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hashtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashBytesDeterministic(t *testing.T) {
	data := []byte("backend-0:25000")
	h1 := HashBytes(data, SeedForLevel(0))
	h2 := HashBytes(data, SeedForLevel(0))
	require.Equal(t, h1, h2)
	require.Equal(t, h1, HashString("backend-0:25000", SeedForLevel(0)))
}

func TestHashBytesSeedChangesValue(t *testing.T) {
	data := []byte("some row key material")
	seen := map[uint32]bool{}
	for level := 0; level < MaxLevels; level++ {
		seen[HashBytes(data, SeedForLevel(level))] = true
	}
	// Different levels must not collapse onto a handful of values, or
	// repartitioning would re-create the same skew.
	require.Greater(t, len(seen), MaxLevels/2)
}

func TestHashUint64Spread(t *testing.T) {
	const n = 1 << 12
	buckets := make(map[uint32]int)
	for i := uint64(0); i < n; i++ {
		buckets[HashUint64(i, SeedForLevel(0))&1023]++
	}
	for _, cnt := range buckets {
		require.Less(t, cnt, 64)
	}
}

func TestHashBytesEmpty(t *testing.T) {
	require.NotPanics(t, func() {
		HashBytes(nil, SeedForLevel(1))
	})
}
