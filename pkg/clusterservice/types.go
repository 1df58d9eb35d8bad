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
	"time"
)

// ExecutorGroupDesc names a group a backend belongs to, together with the
// group size below which the group counts as unhealthy.
type ExecutorGroupDesc struct {
	Name    string
	MinSize int
}

// BackendDescriptor describes one engine backend as disseminated over the
// membership topic.  Each backend resolves its own IP address and transmits
// it in its descriptor; descriptors without one are rejected.
type BackendDescriptor struct {
	ID          string
	Address     string
	IPAddress   string
	IsExecutor  bool
	IsQuiescing bool
	// ExecutorGroups lists the groups this backend executes for.  It may be
	// non-empty even when IsExecutor is false, e.g. for a coordinator that
	// schedules onto itself.
	ExecutorGroups []ExecutorGroupDesc
}

// Clone returns a deep copy.
func (d *BackendDescriptor) Clone() *BackendDescriptor {
	c := *d
	c.ExecutorGroups = append([]ExecutorGroupDesc(nil), d.ExecutorGroups...)
	return &c
}

// TopicEntry is one key of a statestore topic.
type TopicEntry struct {
	Key     string
	Value   []byte
	Deleted bool
}

// TopicDelta carries the entries of one topic that changed since the last
// update, or the full topic when IsDelta is false.
type TopicDelta struct {
	TopicName string
	IsDelta   bool
	Entries   []TopicEntry
}

// UpdateCallback is invoked by the statestore subscriber with the deltas of
// all subscribed topics.  Outbound updates appended to outbound are
// republished by the transport.
type UpdateCallback func(deltas map[string]TopicDelta, outbound *[]TopicDelta)

// Subscriber is the narrow face of the statestore transport the membership
// manager depends on.
type Subscriber interface {
	// AddTopic registers cb for the topic.  Transient topics have their
	// entries dropped by the statestore when the subscriber disappears.
	AddTopic(topic string, transient bool, cb UpdateCallback) error
	// IsInPostRecoveryGracePeriod reports whether the statestore recently
	// recovered from a connection failure and updates should not yet be
	// acted upon.
	IsInPostRecoveryGracePeriod() bool
}

// Snapshot is one immutable view of cluster membership.  Fields must not be
// mutated after publication; all mutation goes through clone-and-swap in the
// manager.
type Snapshot struct {
	// Version strictly increases with each published snapshot.
	Version uint64
	// LocalBackend is this process's descriptor, nil until the local
	// backend has started.
	LocalBackend *BackendDescriptor
	// CurrentBackends maps backend id to descriptor for every live backend.
	CurrentBackends map[string]*BackendDescriptor
	// ExecutorGroups maps group name to the executors currently usable for
	// scheduling: live, non-quiescing and not blacklisted.
	ExecutorGroups map[string]*ExecutorGroup
	// Blacklist tracks executors the local coordinator refuses to schedule
	// on, independent of gossip.
	Blacklist *ExecutorBlacklist
}

func newSnapshot(blacklistTimeout time.Duration) *Snapshot {
	return &Snapshot{
		CurrentBackends: make(map[string]*BackendDescriptor),
		ExecutorGroups:  make(map[string]*ExecutorGroup),
		Blacklist:       newExecutorBlacklist(blacklistTimeout),
	}
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		Version:         s.Version,
		LocalBackend:    s.LocalBackend,
		CurrentBackends: make(map[string]*BackendDescriptor, len(s.CurrentBackends)),
		ExecutorGroups:  make(map[string]*ExecutorGroup, len(s.ExecutorGroups)),
		Blacklist:       s.Blacklist.clone(),
	}
	for id, desc := range s.CurrentBackends {
		c.CurrentBackends[id] = desc
	}
	for name, group := range s.ExecutorGroups {
		c.ExecutorGroups[name] = group.clone()
	}
	return c
}

// UpdateLocalServerFn receives the set of active backend addresses after a
// backend disappeared, so the server can cancel queries scheduled on it.
type UpdateLocalServerFn func(activeBackends map[string]struct{})

// FrontendUpdate summarizes executor membership for the planner.
type FrontendUpdate struct {
	Hostnames    map[string]struct{}
	IPAddresses  map[string]struct{}
	NumExecutors int
}

// UpdateFrontendFn pushes a membership summary to the frontend planner.
type UpdateFrontendFn func(update *FrontendUpdate) error

// LocalBackendFn returns the current local backend descriptor, or nil before
// the local backend has started.
type LocalBackendFn func() *BackendDescriptor
