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

package mpool

import (
	"context"
	"sync/atomic"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
)

// NoCap means the pool has no enforced capacity.
const NoCap int64 = 0

// Stats tracks the allocation activity of one pool.
type Stats struct {
	NumAlloc      atomic.Int64
	NumFree       atomic.Int64
	NumCurrBytes  atomic.Int64
	HighWaterMark atomic.Int64
}

// MPool accounts memory used by one component.  Alloc hands out byte slices,
// Acquire/Release account for slabs whose lifetime the caller manages itself
// (bucket arrays, duplicate-node pages).  Exceeding the capacity yields an
// out of memory error instead of letting the process balloon.
type MPool struct {
	tag   string
	cap   int64
	stats Stats
}

// New creates a pool with the given capacity.  cap == NoCap disables the
// limit.
func New(tag string, cap int64) *MPool {
	return &MPool{tag: tag, cap: cap}
}

// MustNewZero creates an unbounded pool.
func MustNewZero() *MPool {
	return New("", NoCap)
}

func (m *MPool) Tag() string {
	return m.tag
}

func (m *MPool) Cap() int64 {
	return m.cap
}

func (m *MPool) Stats() *Stats {
	return &m.stats
}

// Acquire accounts for n bytes the caller is about to allocate.  It fails
// without side effects when the pool would exceed its capacity.
func (m *MPool) Acquire(n int64) error {
	curr := m.stats.NumCurrBytes.Add(n)
	if m.cap != NoCap && curr > m.cap {
		m.stats.NumCurrBytes.Add(-n)
		return moerr.NewOOM(context.Background())
	}
	m.stats.NumAlloc.Add(1)
	for {
		hwm := m.stats.HighWaterMark.Load()
		if curr <= hwm || m.stats.HighWaterMark.CompareAndSwap(hwm, curr) {
			return nil
		}
	}
}

// Release returns n bytes of accounted memory.
func (m *MPool) Release(n int64) {
	m.stats.NumFree.Add(1)
	m.stats.NumCurrBytes.Add(-n)
}

// Alloc hands out a byte slice accounted against the pool.
func (m *MPool) Alloc(sz int) ([]byte, error) {
	if sz == 0 {
		return nil, nil
	}
	if err := m.Acquire(int64(sz)); err != nil {
		return nil, err
	}
	return make([]byte, sz), nil
}

// Free returns a slice obtained from Alloc.
func (m *MPool) Free(bs []byte) {
	if len(bs) == 0 {
		return
	}
	m.Release(int64(len(bs)))
}

// FreeAll drops every outstanding byte at once.  Arena-style usage: scratch
// allocations between two FreeAll calls share one lifetime and their owners
// must not touch them afterwards.
func (m *MPool) FreeAll() {
	curr := m.stats.NumCurrBytes.Swap(0)
	if curr != 0 {
		m.stats.NumFree.Add(1)
	}
}
