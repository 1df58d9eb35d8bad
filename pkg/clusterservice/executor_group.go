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
	"net"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/matrixorigin/mpquery/pkg/logutil"
)

const executorBTreeDegree = 8

type executorItem struct {
	addr string
	desc *BackendDescriptor
}

func (e executorItem) Less(than btree.Item) bool {
	return e.addr < than.(executorItem).addr
}

// ExecutorGroup is a named set of backends that may jointly execute a query.
// Executors are kept ordered by address so iteration and scheduling are
// deterministic.  Every member satisfies: IsExecutor, not quiescing, not
// blacklisted; the membership manager maintains that invariant.
type ExecutorGroup struct {
	name    string
	minSize int

	executors *btree.BTree
	// hostIPs resolves a hostname to the IP its executors registered with.
	hostIPs map[string]string
	// ipCounts tracks executors per IP; its size is the host count.
	ipCounts map[string]int
}

func newExecutorGroup(name string, minSize int) *ExecutorGroup {
	if minSize <= 0 {
		minSize = 1
	}
	return &ExecutorGroup{
		name:      name,
		minSize:   minSize,
		executors: btree.New(executorBTreeDegree),
		hostIPs:   make(map[string]string),
		ipCounts:  make(map[string]int),
	}
}

func newExecutorGroupFromDesc(desc ExecutorGroupDesc) *ExecutorGroup {
	return newExecutorGroup(desc.Name, desc.MinSize)
}

func (g *ExecutorGroup) clone() *ExecutorGroup {
	c := &ExecutorGroup{
		name:      g.name,
		minSize:   g.minSize,
		executors: g.executors.Clone(),
		hostIPs:   make(map[string]string, len(g.hostIPs)),
		ipCounts:  make(map[string]int, len(g.ipCounts)),
	}
	for k, v := range g.hostIPs {
		c.hostIPs[k] = v
	}
	for k, v := range g.ipCounts {
		c.ipCounts[k] = v
	}
	return c
}

func (g *ExecutorGroup) Name() string {
	return g.name
}

func (g *ExecutorGroup) MinSize() int {
	return g.minSize
}

func (g *ExecutorGroup) NumExecutors() int {
	return g.executors.Len()
}

func (g *ExecutorGroup) NumHosts() int {
	return len(g.ipCounts)
}

// IsHealthy reports whether the group is large enough to schedule on.
func (g *ExecutorGroup) IsHealthy() bool {
	n := g.NumExecutors()
	if n < g.minSize {
		logutil.Warn("executor group is unhealthy",
			zap.String("group", g.name),
			zap.Int("available", n),
			zap.Int("min-size", g.minSize))
		return false
	}
	return true
}

func hostOf(address string) string {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return address
	}
	return host
}

// AddExecutor inserts the backend.  Duplicates and backends whose group
// configuration conflicts with this group are dropped with a warning.
func (g *ExecutorGroup) AddExecutor(desc *BackendDescriptor) {
	if g.executors.Get(executorItem{addr: desc.Address}) != nil {
		logutil.Warn("tried to add existing backend to executor group",
			zap.String("group", g.name), zap.String("address", desc.Address))
		return
	}
	if !g.checkConsistencyOrWarn(desc) {
		logutil.Warn("ignoring inconsistent backend for executor group",
			zap.String("group", g.name), zap.String("address", desc.Address))
		return
	}
	g.executors.ReplaceOrInsert(executorItem{addr: desc.Address, desc: desc})
	g.hostIPs[hostOf(desc.Address)] = desc.IPAddress
	g.ipCounts[desc.IPAddress]++
}

// RemoveExecutor drops the backend; removing a missing backend is logged and
// ignored.
func (g *ExecutorGroup) RemoveExecutor(desc *BackendDescriptor) {
	item := g.executors.Delete(executorItem{addr: desc.Address})
	if item == nil {
		logutil.Warn("tried to remove non-existing backend from executor group",
			zap.String("group", g.name), zap.String("address", desc.Address))
		return
	}
	removed := item.(executorItem).desc
	g.ipCounts[removed.IPAddress]--
	if g.ipCounts[removed.IPAddress] <= 0 {
		delete(g.ipCounts, removed.IPAddress)
		delete(g.hostIPs, hostOf(removed.Address))
	}
}

// LookUpBackend returns the member with the given address, or nil.
func (g *ExecutorGroup) LookUpBackend(address string) *BackendDescriptor {
	item := g.executors.Get(executorItem{addr: address})
	if item == nil {
		return nil
	}
	return item.(executorItem).desc
}

// LookUpExecutorIP resolves a hostname (or an IP that is already a member
// host) to the member IP.
func (g *ExecutorGroup) LookUpExecutorIP(hostname string) (string, bool) {
	if _, ok := g.ipCounts[hostname]; ok {
		return hostname, true
	}
	ip, ok := g.hostIPs[hostname]
	return ip, ok
}

// AllExecutors returns the members in address order.
func (g *ExecutorGroup) AllExecutors() []*BackendDescriptor {
	out := make([]*BackendDescriptor, 0, g.executors.Len())
	g.executors.Ascend(func(i btree.Item) bool {
		out = append(out, i.(executorItem).desc)
		return true
	})
	return out
}

// checkConsistencyOrWarn verifies the backend's own view of this group.  A
// backend that does not mention the group at all is considered consistent so
// it can be added to unrelated groups, e.g. coordinator-only scheduling.
func (g *ExecutorGroup) checkConsistencyOrWarn(desc *BackendDescriptor) bool {
	for _, gd := range desc.ExecutorGroups {
		if gd.Name == g.name {
			if gd.MinSize == g.minSize || gd.MinSize <= 0 {
				return true
			}
			logutil.Warn("backend is configured for executor group with a different minimum size",
				zap.String("group", g.name),
				zap.String("address", desc.Address),
				zap.Int("backend-min-size", gd.MinSize),
				zap.Int("group-min-size", g.minSize))
			return false
		}
	}
	return true
}
