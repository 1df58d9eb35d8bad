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
	"sync/atomic"
)

// Metrics are refreshed on every snapshot publication.  A live group has at
// least one executor; a healthy group also meets its minimum size.
type Metrics struct {
	TotalBackends              atomic.Int64
	TotalLiveExecutorGroups    atomic.Int64
	TotalHealthyExecutorGroups atomic.Int64
}

func (m *Metrics) update(s *Snapshot) {
	live, healthy := 0, 0
	for _, group := range s.ExecutorGroups {
		if group.IsHealthy() {
			live++
			healthy++
		} else if group.NumHosts() > 0 {
			live++
		}
	}
	m.TotalBackends.Store(int64(len(s.CurrentBackends)))
	m.TotalLiveExecutorGroups.Store(int64(live))
	m.TotalHealthyExecutorGroups.Store(int64(healthy))
}
