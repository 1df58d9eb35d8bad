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
	"context"
	"fmt"
	"unsafe"

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
	"github.com/matrixorigin/mpquery/pkg/common/mpool"
)

var (
	bucketSize = int64(unsafe.Sizeof(Bucket{}))
	nodeSize   = int64(unsafe.Sizeof(DuplicateNode{}))
)

// New builds an empty table.  opts.NumBuckets must be a power of two.
func New(mp *mpool.MPool, opts Options) (*JoinHashTable, error) {
	n := opts.NumBuckets
	if n <= 0 || n&(n-1) != 0 {
		return nil, moerr.NewInvalidInput(context.Background(),
			"hash table bucket count must be a power of two, got %d", n)
	}
	if err := mp.Acquire(n * (bucketSize + 4)); err != nil {
		return nil, err
	}
	ht := &JoinHashTable{
		mp:               mp,
		rowSource:        opts.RowSource,
		quadraticProbing: opts.QuadraticProbing,
		storesDuplicates: opts.StoresDuplicates,
		numBuckets:       uint64(n),
		buckets:          make([]Bucket, n),
		hashArray:        make([]uint32, n),
		sketch:           hyperloglog.New14(),
	}
	return ht, nil
}

// Release returns all table memory to the pool.  The table must not be used
// afterwards.
func (ht *JoinHashTable) Release() {
	ht.mp.Release(int64(ht.numBuckets) * (bucketSize + 4))
	ht.mp.Release(int64(len(ht.pages)) * int64(nodesPerPage) * nodeSize)
	ht.buckets = nil
	ht.hashArray = nil
	ht.pages = nil
	ht.curPage = nil
	ht.numBuckets = 0
	ht.numFilledBuckets = 0
	ht.numDuplicateNodes = 0
}

func (ht *JoinHashTable) NumBuckets() int64 {
	return int64(ht.numBuckets)
}

func (ht *JoinHashTable) NumFilledBuckets() int64 {
	return int64(ht.numFilledBuckets)
}

func (ht *JoinHashTable) NumDuplicateNodes() int64 {
	return int64(ht.numDuplicateNodes)
}

func (ht *JoinHashTable) NumBuildRows() int64 {
	return int64(ht.numBuildRows)
}

// HasMatches reports whether any entry was marked matched.  Once set the
// table must not be spilled.
func (ht *JoinHashTable) HasMatches() bool {
	return ht.hasMatches
}

// NumInsertsBeforeResize returns how many inserts still fit under the fill
// factor.  Zero means the caller must resize or spill before inserting.
func (ht *JoinHashTable) NumInsertsBeforeResize() int64 {
	limit := int64(float64(ht.numBuckets) * MaxFillFactor)
	remaining := limit - int64(ht.numFilledBuckets)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CurrentMemSize counts the buckets, the hash array and all duplicate nodes
// in use; unused space in duplicate-node pages is not counted.
func (ht *JoinHashTable) CurrentMemSize() int64 {
	return int64(ht.numBuckets)*(bucketSize+4) +
		int64(ht.numDuplicateNodes)*nodeSize
}

// EstimatedDistinct returns the sketched number of distinct build keys.
func (ht *JoinHashTable) EstimatedDistinct() uint64 {
	return ht.sketch.Estimate()
}

func (ht *JoinHashTable) resolveRow(data unsafe.Pointer) unsafe.Pointer {
	if ht.rowSource != nil {
		return ht.rowSource.ResolveRow(data)
	}
	return data
}

// bucketPayload reads the payload of a filled bucket.  For buckets with
// duplicates every row lives in the chain and the head node speaks for the
// bucket.
func (ht *JoinHashTable) bucketPayload(b *Bucket, bd *BucketData) unsafe.Pointer {
	if ht.storesDuplicates && b.hasDuplicates {
		head := (*DuplicateNode)(b.data)
		bd.data = head.htdata
		bd.duplicates = head
		return head.htdata
	}
	bd.data = b.data
	bd.duplicates = nil
	return b.data
}

// probe walks the probe sequence from hash's home bucket.  It returns the
// index of the matching or first empty bucket, or BucketNotFound after
// numBuckets steps.  With compareRow unset no row is compared, so the probe
// stops only at an empty bucket.
func (ht *JoinHashTable) probe(ctx *Ctx, hash uint32, inclusiveEquality, compareRow bool, bd *BucketData) (int64, bool) {
	ctx.NumProbes++
	mask := ht.numBuckets - 1
	idx := uint64(hash) & mask

	// step doubles as the quadratic increment: after k steps the total
	// offset is k(k+1)/2, which visits every bucket exactly once when the
	// bucket count is a power of two.
	var step uint64
	for {
		b := &ht.buckets[idx]
		if !b.filled {
			return int64(idx), false
		}
		if ht.hashArray[idx] == hash {
			if compareRow {
				buildData := ht.bucketPayload(b, bd)
				if ctx.equals(ctx.probeRow, ht.resolveRow(buildData), inclusiveEquality) {
					return int64(idx), true
				}
			}
			// Hash match without row equality.
			ctx.NumHashCollisions++
		}
		step++
		ctx.TravelLength++
		if ht.quadraticProbing {
			idx = (idx + step) & mask
		} else {
			idx = (idx + 1) & mask
		}
		if step >= ht.numBuckets {
			break
		}
	}
	if EnableDebugChecks && ht.numFilledBuckets != ht.numBuckets {
		panic(fmt.Sprintf("probe of a non-full table failed: quadratic=%v hash=%#x",
			ht.quadraticProbing, hash))
	}
	return BucketNotFound, false
}

func (ht *JoinHashTable) prepareBucketForInsert(idx int64, hash uint32) {
	b := &ht.buckets[idx]
	if EnableDebugChecks && b.filled {
		panic("insert into a filled bucket")
	}
	ht.numFilledBuckets++
	b.filled = true
	b.matched = false
	b.hasDuplicates = false
	ht.hashArray[idx] = hash
}

func (ht *JoinHashTable) growNodeArray() error {
	if err := ht.mp.Acquire(int64(nodesPerPage) * nodeSize); err != nil {
		return err
	}
	page := make([]DuplicateNode, nodesPerPage)
	ht.pages = append(ht.pages, page)
	ht.curPage = page
	ht.curPageUsed = 0
	ht.nodeRemainingCurrentPage = nodesPerPage
	return nil
}

func (ht *JoinHashTable) peekNextNode() *DuplicateNode {
	return &ht.curPage[ht.curPageUsed]
}

// appendNextNode claims the prepared node and links it as the bucket's chain
// head.
func (ht *JoinHashTable) appendNextNode(b *Bucket) *DuplicateNode {
	node := &ht.curPage[ht.curPageUsed]
	ht.curPageUsed++
	ht.nodeRemainingCurrentPage--
	ht.numDuplicateNodes++
	b.data = unsafe.Pointer(node)
	return node
}

// insertDuplicateNode adds a node at the head of the bucket's duplicate chain
// and returns it for the caller to fill.  The
// first duplicate moves the bucket's own payload into the chain so the
// bucket holds only the head pointer from then on.
func (ht *JoinHashTable) insertDuplicateNode(idx int64, bd *BucketData) (*DuplicateNode, error) {
	b := &ht.buckets[idx]
	if !ht.storesDuplicates {
		return nil, moerr.NewInvalidState(context.Background(),
			"duplicate insert into a table that does not store duplicates")
	}
	need := 2
	if b.hasDuplicates {
		need = 1
	}
	for ht.nodeRemainingCurrentPage < need {
		if err := ht.growNodeArray(); err != nil {
			return nil, err
		}
	}
	if !b.hasDuplicates {
		if EnableDebugChecks && b.matched {
			panic("bucket acquired duplicates after being matched")
		}
		node := ht.peekNextNode()
		node.htdata = bd.data
		node.next = nil
		node.matched = false
		ht.appendNextNode(b)
		b.hasDuplicates = true
		ht.numBucketsWithDuplicates++
	}
	node := ht.peekNextNode()
	node.next = (*DuplicateNode)(b.data)
	node.matched = false
	return ht.appendNextNode(b), nil
}

// Insert adds the row under the key ctx currently carries.  It returns
// (false, nil) when the table is full so the caller can resize or spill, and
// an error when duplicate-node memory runs out.
func (ht *JoinHashTable) Insert(ctx *Ctx, row unsafe.Pointer) (bool, error) {
	var bd BucketData
	idx, found := ht.probe(ctx, ctx.hash, true, true, &bd)
	if idx == BucketNotFound {
		return false, nil
	}
	if found {
		node, err := ht.insertDuplicateNode(idx, &bd)
		if err != nil {
			return false, err
		}
		node.htdata = row
	} else {
		ht.prepareBucketForInsert(idx, ctx.hash)
		ht.buckets[idx].data = row
	}
	ht.numBuildRows++
	ht.sketch.InsertHash(mix64(uint64(ctx.hash)))
	return true, nil
}

// FindProbeRow probes with non-inclusive equality and yields an iterator
// over the rows of the matching key, or an end iterator.
func (ht *JoinHashTable) FindProbeRow(ctx *Ctx) Iterator {
	var bd BucketData
	idx, found := ht.probe(ctx, ctx.hash, false, true, &bd)
	if !found {
		return ht.End()
	}
	var node *DuplicateNode
	if ht.storesDuplicates {
		node = bd.duplicates
	}
	return Iterator{table: ht, bucketIdx: idx, node: node}
}

// FindBuildRowBucket probes with inclusive equality.  Aggregations use it to
// combine into an existing entry, or to claim the returned bucket via
// Iterator.SetRow when found is false.
func (ht *JoinHashTable) FindBuildRowBucket(ctx *Ctx) (Iterator, bool) {
	var bd BucketData
	idx, found := ht.probe(ctx, ctx.hash, true, true, &bd)
	var node *DuplicateNode
	if ht.storesDuplicates && idx != BucketNotFound {
		node = bd.duplicates
	}
	return Iterator{table: ht, bucketIdx: idx, node: node}, found
}

// nextFilledBucket advances past idx to the next filled bucket.
func (ht *JoinHashTable) nextFilledBucket(idx int64) (int64, *DuplicateNode) {
	for idx++; idx < int64(ht.numBuckets); idx++ {
		b := &ht.buckets[idx]
		if !b.filled {
			continue
		}
		if ht.storesDuplicates && b.hasDuplicates {
			return idx, (*DuplicateNode)(b.data)
		}
		return idx, nil
	}
	return BucketNotFound, nil
}

// Begin returns an iterator over every row of the table.
func (ht *JoinHashTable) Begin() Iterator {
	idx, node := ht.nextFilledBucket(BucketNotFound)
	return Iterator{table: ht, bucketIdx: idx, node: node}
}

// End returns the end iterator.
func (ht *JoinHashTable) End() Iterator {
	return Iterator{table: ht, bucketIdx: BucketNotFound}
}

// FirstUnmatched positions an iterator on the first entry never marked
// matched.  Outer joins emit the remaining build side through it.
func (ht *JoinHashTable) FirstUnmatched() Iterator {
	idx, node := ht.nextFilledBucket(BucketNotFound)
	it := Iterator{table: ht, bucketIdx: idx, node: node}
	if idx == BucketNotFound {
		return it
	}
	b := &ht.buckets[idx]
	hasDuplicates := ht.storesDuplicates && b.hasDuplicates
	if (!hasDuplicates && b.matched) || (hasDuplicates && node.matched) {
		it.NextUnmatched()
	}
	return it
}

// ResizeBuckets rebuilds the table with newNum buckets.  Duplicate chains
// move with their buckets; only bucket and hash arrays are reallocated.
func (ht *JoinHashTable) ResizeBuckets(newNum int64) error {
	if newNum <= 0 || newNum&(newNum-1) != 0 {
		return moerr.NewInvalidInput(context.Background(),
			"hash table bucket count must be a power of two, got %d", newNum)
	}
	if float64(ht.numFilledBuckets) > float64(newNum)*MaxFillFactor {
		return moerr.NewInvalidInput(context.Background(),
			"%d filled buckets do not fit in %d buckets under the fill factor",
			ht.numFilledBuckets, newNum)
	}
	if err := ht.mp.Acquire(newNum * (bucketSize + 4)); err != nil {
		return err
	}
	oldBuckets, oldHashes := ht.buckets, ht.hashArray
	oldNum := int64(ht.numBuckets)

	ht.buckets = make([]Bucket, newNum)
	ht.hashArray = make([]uint32, newNum)
	ht.numBuckets = uint64(newNum)

	mask := ht.numBuckets - 1
	for i := int64(0); i < oldNum; i++ {
		if !oldBuckets[i].filled {
			continue
		}
		hash := oldHashes[i]
		idx := uint64(hash) & mask
		var step uint64
		for ht.buckets[idx].filled {
			step++
			if ht.quadraticProbing {
				idx = (idx + step) & mask
			} else {
				idx = (idx + 1) & mask
			}
		}
		ht.buckets[idx] = oldBuckets[i]
		ht.hashArray[idx] = hash
	}
	ht.mp.Release(oldNum * (bucketSize + 4))
	return nil
}
