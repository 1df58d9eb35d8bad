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

	"github.com/axiomhq/hyperloglog"

	"github.com/matrixorigin/mpquery/pkg/common/mpool"
)

const (
	// MaxFillFactor is the load past which inserts must trigger a resize.
	MaxFillFactor = 0.75

	// BucketNotFound marks an iterator at the end of the table and a probe
	// that traversed the whole table without finding an empty bucket.
	BucketNotFound int64 = -1

	// Duplicate nodes are carved out of pages of this size so one insert
	// costs at most one page allocation.
	dataPageSize = 64 << 10
)

var nodesPerPage = dataPageSize / int(unsafe.Sizeof(DuplicateNode{}))

// EnableDebugChecks turns on the internal consistency checks.  They panic on
// violation and are meant for tests and debug builds only.
var EnableDebugChecks = false

// DuplicateNode holds one row of a key that collided with an earlier equal
// key.  Nodes of one bucket form a singly linked list; insertion order is
// newest first.
type DuplicateNode struct {
	htdata  unsafe.Pointer
	next    *DuplicateNode
	matched bool
}

// Bucket is one slot of the open-addressed table.  When hasDuplicates is set,
// data points at the head DuplicateNode and every row of the bucket lives in
// the chain; otherwise data is the single row payload.  The 32-bit hashes
// live in a separate dense array so probe loops scan them without pulling
// bucket lines into cache.
type Bucket struct {
	filled        bool
	matched       bool
	hasDuplicates bool
	data          unsafe.Pointer
}

// BucketData carries the payload found by a probe back to the caller so
// follow-up work (duplicate conversion, iteration) does not re-read the
// bucket.
type BucketData struct {
	data       unsafe.Pointer
	duplicates *DuplicateNode
}

// RowSource resolves flat-row handles into rows.  Tables over spillable
// streams store handles instead of in-memory row pointers.
type RowSource interface {
	ResolveRow(flatRow unsafe.Pointer) unsafe.Pointer
}

// EqualsFn decides whether the probe row equals a build row.
// inclusiveEquality selects the NULL==NULL mode used on the build side.
type EqualsFn func(probeRow, buildRow unsafe.Pointer, inclusiveEquality bool) bool

// Ctx carries the per-probe state one owner thread reuses across rows, plus
// probing statistics.
type Ctx struct {
	equals   EqualsFn
	probeRow unsafe.Pointer
	hash     uint32

	NumProbes         uint64
	NumHashCollisions uint64
	TravelLength      uint64
}

func NewCtx(equals EqualsFn) *Ctx {
	return &Ctx{equals: equals}
}

// SetProbeRow installs the row the next table operations work on.
func (c *Ctx) SetProbeRow(row unsafe.Pointer, hash uint32) {
	c.probeRow = row
	c.hash = hash
}

func (c *Ctx) Hash() uint32 {
	return c.hash
}

// Options configures a JoinHashTable.
type Options struct {
	// NumBuckets is the initial bucket count, a power of two.
	NumBuckets int64
	// QuadraticProbing selects the probe sequence; linear otherwise.
	QuadraticProbing bool
	// StoresDuplicates is set for join builds.  Aggregation tables keep one
	// entry per key and combine in place instead.
	StoresDuplicates bool
	// RowSource, when non-nil, marks payloads as flat-row handles resolved
	// through it.  Nil payloads are in-memory row pointers.
	RowSource RowSource
}

// JoinHashTable is the build side of hash joins and aggregations.  It is
// owned by exactly one thread and takes no locks.
type JoinHashTable struct {
	mp        *mpool.MPool
	rowSource RowSource

	quadraticProbing bool
	storesDuplicates bool

	numBuckets               uint64
	numFilledBuckets         uint64
	numBucketsWithDuplicates uint64
	numDuplicateNodes        uint64
	numBuildRows             uint64

	// hasMatches disables spilling once any entry has been matched; a
	// partially matched table cannot be rebuilt from a spilled partition.
	hasMatches bool

	buckets   []Bucket
	hashArray []uint32

	pages       [][]DuplicateNode
	curPage     []DuplicateNode
	curPageUsed int
	// nodeRemainingCurrentPage bounds per-insert allocation: a new page is
	// taken only when the current one is exhausted.
	nodeRemainingCurrentPage int

	sketch *hyperloglog.Sketch
}
