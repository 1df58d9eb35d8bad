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

package rootsink

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/matrixorigin/mpquery/pkg/common/mpool"
	"github.com/matrixorigin/mpquery/pkg/container/batch"
	"github.com/matrixorigin/mpquery/pkg/sql/colexec"
)

// SenderState tracks the producer side of the sink.  It leaves RowsPending
// exactly once and never returns.
type SenderState int32

const (
	// RowsPending: the producer may still deliver rows.
	RowsPending SenderState = iota
	// EOS: the producer delivered everything and called FlushFinal.
	EOS
	// ClosedNotEOS: the producer closed before reaching end of stream,
	// usually because the fragment hit an error.
	ClosedNotEOS
)

// ResultBuffer collects rows for one fetch call.  The sink treats it as
// opaque and only ever appends.
type ResultBuffer interface {
	// AddRows appends cnt rows of bat starting at start, projected through
	// evals.  Scratch may be taken from mp; the sink clears mp between
	// hand-offs.
	AddRows(evals []colexec.Evaluator, bat *batch.Batch, start, cnt int, mp *mpool.MPool) error
}

// Profile carries cheap counters the coordinator exposes per query.
type Profile struct {
	RowsSent      atomic.Int64
	SenderWaits   atomic.Int64
	ConsumerWaits atomic.Int64
}

// BlockingRootSink hands query output from the single producer fragment to
// the single blocking consumer, one buffer at a time.  The producer blocks
// until the consumer presents a buffer; the consumer blocks until the
// producer fills it or ends the stream.
type BlockingRootSink struct {
	ctx   context.Context
	evals []colexec.Evaluator

	// exprPool bounds transient expression scratch; it is cleared after
	// every slot hand-off.
	exprPool *mpool.MPool

	rowsProducedLimit int64
	numRowsProduced   int64

	mu           sync.Mutex
	senderCond   *sync.Cond
	consumerCond *sync.Cond

	// results non-nil means a consumer is waiting for the slot to be
	// filled.
	results          ResultBuffer
	numRowsRequested int
	senderState      SenderState

	profile Profile
}

// Option configures a BlockingRootSink.
type Option func(*BlockingRootSink)

// WithRowsProducedLimit fails Send once the producer has emitted more than
// limit rows.  Zero means unlimited.
func WithRowsProducedLimit(limit int64) Option {
	return func(s *BlockingRootSink) {
		s.rowsProducedLimit = limit
	}
}

// WithExprPool replaces the sink-owned scratch pool.
func WithExprPool(mp *mpool.MPool) Option {
	return func(s *BlockingRootSink) {
		s.exprPool = mp
	}
}
