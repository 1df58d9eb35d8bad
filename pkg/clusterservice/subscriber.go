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

package clusterservice

import (
	"context"
	"sync"
	"sync/atomic"

	queue "github.com/yireyun/go-queue"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
)

// LoopbackSubscriber is an in-process Subscriber for embedded deployments
// and tests.  Deltas handed to Deliver are fanned out to registered
// callbacks; outbound updates the callbacks produce are buffered on a
// lock-free ring until the harness drains them.
type LoopbackSubscriber struct {
	mu        sync.Mutex
	callbacks map[string][]UpdateCallback

	recovering atomic.Bool
	outbound   *queue.EsQueue
}

func NewLoopbackSubscriber() *LoopbackSubscriber {
	return &LoopbackSubscriber{
		callbacks: make(map[string][]UpdateCallback),
		outbound:  queue.NewQueue(1024),
	}
}

func (s *LoopbackSubscriber) AddTopic(topic string, _ bool, cb UpdateCallback) error {
	if cb == nil {
		return moerr.NewInvalidInput(context.Background(), "nil topic callback")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[topic] = append(s.callbacks[topic], cb)
	return nil
}

func (s *LoopbackSubscriber) IsInPostRecoveryGracePeriod() bool {
	return s.recovering.Load()
}

// SetRecovering toggles the post-recovery grace period.
func (s *LoopbackSubscriber) SetRecovering(v bool) {
	s.recovering.Store(v)
}

// Deliver invokes every callback subscribed to a topic present in deltas.
func (s *LoopbackSubscriber) Deliver(deltas map[string]TopicDelta) {
	s.mu.Lock()
	var cbs []UpdateCallback
	for topic := range deltas {
		cbs = append(cbs, s.callbacks[topic]...)
	}
	s.mu.Unlock()

	for _, cb := range cbs {
		var outbound []TopicDelta
		cb(deltas, &outbound)
		for i := range outbound {
			s.outbound.Put(&outbound[i])
		}
	}
}

// DrainOutbound pops every buffered outbound update.
func (s *LoopbackSubscriber) DrainOutbound() []TopicDelta {
	var out []TopicDelta
	for {
		v, ok, _ := s.outbound.Get()
		if !ok {
			return out
		}
		out = append(out, *(v.(*TopicDelta)))
	}
}
