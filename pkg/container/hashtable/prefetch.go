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

// prefetchSink keeps the touch loads below from being optimized away.
var prefetchSink uint32

// PrefetchBucket touches the bucket and its hash-array slot for the given
// hash so the lines are warm when the probe arrives.  Callers pipeline a few
// future probes behind current work.
func (ht *JoinHashTable) PrefetchBucket(hash uint32) {
	ht.prefetchIndex(uint64(hash) & (ht.numBuckets - 1))
}

func (ht *JoinHashTable) prefetchIndex(idx uint64) {
	prefetchSink += ht.hashArray[idx]
	if ht.buckets[idx].filled {
		prefetchSink++
	}
}
