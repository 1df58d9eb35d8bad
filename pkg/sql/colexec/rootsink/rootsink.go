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

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
	"github.com/matrixorigin/mpquery/pkg/common/mpool"
	"github.com/matrixorigin/mpquery/pkg/container/batch"
	"github.com/matrixorigin/mpquery/pkg/sql/colexec"
)

// New creates a sink bound to the query fragment's context.  Cancel the
// context, then call Cancel, to unblock both sides.
func New(ctx context.Context, evals []colexec.Evaluator, opts ...Option) *BlockingRootSink {
	s := &BlockingRootSink{
		ctx:      ctx,
		evals:    evals,
		exprPool: mpool.New("expr-results", mpool.NoCap),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.senderCond = sync.NewCond(&s.mu)
	s.consumerCond = sync.NewCond(&s.mu)
	return s
}

func (s *BlockingRootSink) cancelled() bool {
	return s.ctx.Err() != nil
}

// Send delivers one batch to the consumer, blocking until every row has been
// copied into consumer buffers.  Zero-row batches are skipped without waking
// the consumer; some clients mishandle empty result sets.
func (s *BlockingRootSink) Send(bat *batch.Batch) error {
	if err := s.updateAndCheckRowsProducedLimit(bat); err != nil {
		return err
	}
	currentBatchRow := 0
	for currentBatchRow < bat.RowCount() {
		s.mu.Lock()
		for s.results == nil && !s.cancelled() {
			s.profile.SenderWaits.Add(1)
			s.senderCond.Wait()
		}
		if s.cancelled() {
			s.mu.Unlock()
			return moerr.NewQueryInterrupted(s.ctx)
		}

		numToFetch := bat.RowCount() - currentBatchRow
		if s.numRowsRequested > 0 && numToFetch > s.numRowsRequested {
			numToFetch = s.numRowsRequested
		}
		if err := s.results.AddRows(s.evals, bat, currentBatchRow, numToFetch, s.exprPool); err != nil {
			s.mu.Unlock()
			return err
		}
		currentBatchRow += numToFetch
		s.profile.RowsSent.Add(int64(numToFetch))
		// Keep expression scratch from accumulating across hand-offs.
		s.exprPool.FreeAll()
		s.results = nil
		s.consumerCond.Broadcast()
		s.mu.Unlock()
	}
	return nil
}

// FlushFinal marks the end of the stream and wakes the consumer so it can
// report eos.
func (s *BlockingRootSink) FlushFinal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.senderState = EOS
	s.consumerCond.Broadcast()
	return nil
}

// Close is called by the fragment on teardown.  FlushFinal will not have run
// when the fragment stopped on an error, so record that the stream ended
// short.
func (s *BlockingRootSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.senderState == RowsPending {
		s.senderState = ClosedNotEOS
	}
	s.consumerCond.Broadcast()
}

// Cancel wakes both sides without changing state; waiters re-check the
// context on resumption.
func (s *BlockingRootSink) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.senderCond.Broadcast()
	s.consumerCond.Broadcast()
}

// GetNext hands the producer a buffer for up to numResults rows (<= 0 means
// as many as available) and blocks until it was filled, the stream ended, or
// the query was cancelled.
func (s *BlockingRootSink) GetNext(results ResultBuffer, numResults int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = results
	s.numRowsRequested = numResults
	s.senderCond.Broadcast()

	for s.senderState == RowsPending && s.results != nil && !s.cancelled() {
		s.profile.ConsumerWaits.Add(1)
		s.consumerCond.Wait()
	}

	eos := s.senderState == EOS
	if s.cancelled() {
		// The producer stops at its next loop iteration; drop the slot so
		// it is never filled behind the consumer's back.
		s.results = nil
		return eos, moerr.NewQueryInterrupted(s.ctx)
	}
	return eos, nil
}

// Profile returns the sink's counters.
func (s *BlockingRootSink) Profile() *Profile {
	return &s.profile
}

func (s *BlockingRootSink) updateAndCheckRowsProducedLimit(bat *batch.Batch) error {
	// numRowsProduced is only touched by the producer, no lock needed.
	s.numRowsProduced += int64(bat.RowCount())
	if s.rowsProducedLimit > 0 && s.numRowsProduced > s.rowsProducedLimit {
		return moerr.NewRowsProducedLimit(s.ctx, s.rowsProducedLimit)
	}
	return nil
}
