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

// BlacklistState is the standing of one backend on the blacklist.
type BlacklistState int

const (
	NotBlacklisted BlacklistState = iota
	Blacklisted
	OnProbation
)

// A blacklisted backend moves to probation after the blacklist timeout and
// is forgotten entirely after this many more timeouts without a relapse.
const probationTimeoutFactor = 5

// nowFunc is stubbed in tests.
var nowFunc = time.Now

type blacklistEntry struct {
	desc  *BackendDescriptor
	state BlacklistState
	at    time.Time
}

// ExecutorBlacklist tracks executors the local coordinator refuses to
// schedule on.  It is part of a snapshot and follows the same
// mutate-via-clone rule.
type ExecutorBlacklist struct {
	timeout time.Duration
	entries map[string]blacklistEntry
}

func newExecutorBlacklist(timeout time.Duration) *ExecutorBlacklist {
	return &ExecutorBlacklist{
		timeout: timeout,
		entries: make(map[string]blacklistEntry),
	}
}

func (b *ExecutorBlacklist) clone() *ExecutorBlacklist {
	c := newExecutorBlacklist(b.timeout)
	for k, v := range b.entries {
		c.entries[k] = v
	}
	return c
}

// Blacklist puts the backend on the blacklist, restarting its timeout if it
// was already there or on probation.
func (b *ExecutorBlacklist) Blacklist(desc *BackendDescriptor) {
	b.entries[desc.Address] = blacklistEntry{
		desc:  desc,
		state: Blacklisted,
		at:    nowFunc(),
	}
}

// FindAndRemove drops the backend's entry and returns the state it had.
func (b *ExecutorBlacklist) FindAndRemove(desc *BackendDescriptor) BlacklistState {
	entry, ok := b.entries[desc.Address]
	if !ok {
		return NotBlacklisted
	}
	delete(b.entries, desc.Address)
	return entry.state
}

func (b *ExecutorBlacklist) IsBlacklisted(desc *BackendDescriptor) bool {
	return b.State(desc) == Blacklisted
}

// State returns the backend's standing without modifying the list.
func (b *ExecutorBlacklist) State(desc *BackendDescriptor) BlacklistState {
	entry, ok := b.entries[desc.Address]
	if !ok {
		return NotBlacklisted
	}
	return entry.state
}

// NumBlacklisted counts entries currently in the Blacklisted state.
func (b *ExecutorBlacklist) NumBlacklisted() int {
	n := 0
	for _, entry := range b.entries {
		if entry.state == Blacklisted {
			n++
		}
	}
	return n
}

// NeedsMaintenance reports whether Maintenance would change anything.
func (b *ExecutorBlacklist) NeedsMaintenance() bool {
	if b.timeout <= 0 || len(b.entries) == 0 {
		return false
	}
	now := nowFunc()
	for _, entry := range b.entries {
		if b.expired(entry, now) {
			return true
		}
	}
	return false
}

func (b *ExecutorBlacklist) expired(entry blacklistEntry, now time.Time) bool {
	switch entry.state {
	case Blacklisted:
		return now.Sub(entry.at) >= b.timeout
	case OnProbation:
		return now.Sub(entry.at) >= b.timeout*probationTimeoutFactor
	}
	return false
}

// Maintenance ages entries: blacklisted backends past the timeout move to
// probation and are returned so the caller can re-add them to their groups;
// probation entries past the longer window are forgotten.
func (b *ExecutorBlacklist) Maintenance() []*BackendDescriptor {
	if b.timeout <= 0 {
		return nil
	}
	now := nowFunc()
	var probated []*BackendDescriptor
	for key, entry := range b.entries {
		if !b.expired(entry, now) {
			continue
		}
		switch entry.state {
		case Blacklisted:
			entry.state = OnProbation
			entry.at = now
			b.entries[key] = entry
			probated = append(probated, entry.desc)
		case OnProbation:
			delete(b.entries, key)
		}
	}
	return probated
}
