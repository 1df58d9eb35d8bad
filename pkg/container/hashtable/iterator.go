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
	"unsafe"
)

// Iterator walks filled buckets and their duplicate chains.
type Iterator struct {
	table     *JoinHashTable
	bucketIdx int64
	node      *DuplicateNode
}

func (it *Iterator) AtEnd() bool {
	return it.bucketIdx == BucketNotFound
}

func (it *Iterator) setAtEnd() {
	it.bucketIdx = BucketNotFound
	it.node = nil
}

// BuildRow returns the row the iterator currently points at, resolving
// flat-row handles through the table's row source.
func (it *Iterator) BuildRow() unsafe.Pointer {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates {
		return ht.resolveRow(it.node.htdata)
	}
	return ht.resolveRow(b.data)
}

// SetRow claims the empty bucket the iterator points at and stores the row.
// Aggregations call this after FindBuildRowBucket reported no match.
func (it *Iterator) SetRow(row unsafe.Pointer, hash uint32) {
	ht := it.table
	ht.prepareBucketForInsert(it.bucketIdx, hash)
	ht.buckets[it.bucketIdx].data = row
	ht.numBuildRows++
	ht.sketch.InsertHash(mix64(uint64(hash)))
}

// SetMatched marks the current entry for outer-join bookkeeping and pins the
// table in memory.
func (it *Iterator) SetMatched() {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates {
		it.node.matched = true
	} else {
		b.matched = true
	}
	ht.hasMatches = true
}

func (it *Iterator) IsMatched() bool {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates {
		return it.node.matched
	}
	return b.matched
}

// Next advances to the next row: the rest of the duplicate chain first, then
// the next filled bucket.
func (it *Iterator) Next() {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates && it.node.next != nil {
		it.node = it.node.next
	} else {
		it.bucketIdx, it.node = ht.nextFilledBucket(it.bucketIdx)
	}
}

// NextDuplicate advances within the current key's rows only.
func (it *Iterator) NextDuplicate() {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates && it.node.next != nil {
		it.node = it.node.next
	} else {
		it.setAtEnd()
	}
}

// NextUnmatched advances to the next entry never marked matched, skipping
// matched buckets and matched chain nodes.
func (it *Iterator) NextUnmatched() {
	ht := it.table
	b := &ht.buckets[it.bucketIdx]
	if ht.storesDuplicates && b.hasDuplicates {
		next := it.node.next
		for next != nil {
			it.node = next
			if !it.node.matched {
				return
			}
			next = it.node.next
		}
	}
	it.bucketIdx, it.node = ht.nextFilledBucket(it.bucketIdx)
	for it.bucketIdx != BucketNotFound {
		b = &ht.buckets[it.bucketIdx]
		if !ht.storesDuplicates || !b.hasDuplicates {
			if !b.matched {
				return
			}
		} else {
			next := it.node.next
			for it.node.matched && next != nil {
				it.node = next
				next = next.next
			}
			if !it.node.matched {
				return
			}
		}
		it.bucketIdx, it.node = ht.nextFilledBucket(it.bucketIdx)
	}
}

// PrefetchBucket warms the iterator's bucket ahead of use.
func (it *Iterator) PrefetchBucket() {
	if !it.AtEnd() {
		it.table.prefetchIndex(uint64(it.bucketIdx))
	}
}
