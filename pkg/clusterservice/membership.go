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
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/mpquery/pkg/logutil"
)

// DefaultMembershipTopic is the statestore topic backends register under.
const DefaultMembershipTopic = "impala-membership"

const defaultBlacklistTimeout = 12 * time.Second

// EnableDebugChecks turns on the snapshot consistency check after upserts,
// blacklist maintenance, local-backend refreshes and blacklisting; deletions
// are not followed by a check.  Violations panic; tests and debug builds only.
var EnableDebugChecks = false

// MembershipManager ingests gossip updates about remote backends, maintains
// one canonical immutable Snapshot many readers share, notifies the local
// server and the frontend planner of observable changes, and keeps the
// executor blacklist.
type MembershipManager struct {
	localID          string
	topic            string
	subscriber       Subscriber
	codec            Codec
	blacklistTimeout time.Duration
	metrics          Metrics

	// updateMu serializes every mutation: gossip updates and local
	// blacklisting.
	updateMu sync.Mutex
	// recovering holds the snapshot assembled while the statestore is in
	// its post-recovery grace period.  It is never handed to readers and
	// may therefore be mutated in place.
	recovering *Snapshot

	// publishMu only guards the published pointer; readers hold it for one
	// pointer copy.
	publishMu sync.Mutex
	current   *Snapshot

	callbackMu          sync.Mutex
	localBackendFn      LocalBackendFn
	updateLocalServerFn UpdateLocalServerFn
	updateFrontendFn    UpdateFrontendFn

	sampledLogger *zap.Logger
}

// Option configures a MembershipManager.
type Option func(*MembershipManager)

// WithTopicName overrides the membership topic.
func WithTopicName(topic string) Option {
	return func(m *MembershipManager) {
		m.topic = topic
	}
}

// WithBlacklistTimeout overrides how long an executor stays blacklisted.
// Zero or negative disables blacklisting.
func WithBlacklistTimeout(d time.Duration) Option {
	return func(m *MembershipManager) {
		m.blacklistTimeout = d
	}
}

// NewManager creates a manager for the backend with the given globally
// unique id.  subscriber may be nil in tests; UpdateMembership is then
// driven directly.
func NewManager(localID string, subscriber Subscriber, codec Codec, opts ...Option) *MembershipManager {
	m := &MembershipManager{
		localID:          localID,
		topic:            DefaultMembershipTopic,
		subscriber:       subscriber,
		codec:            codec,
		blacklistTimeout: defaultBlacklistTimeout,
		sampledLogger:    logutil.GetSampledLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current = newSnapshot(m.blacklistTimeout)
	return m
}

// Init registers the gossip callback.
func (m *MembershipManager) Init() error {
	logutil.Info("starting cluster membership manager",
		zap.String("local-id", m.localID), zap.String("topic", m.topic))
	if m.subscriber == nil {
		return nil
	}
	return m.subscriber.AddTopic(m.topic, true, m.UpdateMembership)
}

// SetLocalBackendFn installs the provider of the local backend descriptor.
// Must be set exactly once.
func (m *MembershipManager) SetLocalBackendFn(fn LocalBackendFn) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if fn == nil || m.localBackendFn != nil {
		panic("local backend fn must be set exactly once")
	}
	m.localBackendFn = fn
}

// SetUpdateLocalServerFn installs the local server listener.  Must be set
// exactly once.
func (m *MembershipManager) SetUpdateLocalServerFn(fn UpdateLocalServerFn) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if fn == nil || m.updateLocalServerFn != nil {
		panic("update local server fn must be set exactly once")
	}
	m.updateLocalServerFn = fn
}

// SetUpdateFrontendFn installs the frontend listener.  Must be set exactly
// once.
func (m *MembershipManager) SetUpdateFrontendFn(fn UpdateFrontendFn) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if fn == nil || m.updateFrontendFn != nil {
		panic("update frontend fn must be set exactly once")
	}
	m.updateFrontendFn = fn
}

// GetSnapshot returns the published snapshot.  O(1); never contends with the
// update path beyond one pointer copy.
func (m *MembershipManager) GetSnapshot() *Snapshot {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()
	return m.current
}

// Metrics returns the manager's publication metrics.
func (m *MembershipManager) Metrics() *Metrics {
	return &m.metrics
}

func (m *MembershipManager) setState(s *Snapshot) {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()
	m.current = s
}

func (m *MembershipManager) localBackendDescriptor() *BackendDescriptor {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if m.localBackendFn == nil {
		return nil
	}
	return m.localBackendFn()
}

// findOrInsertGroup returns the named group of the snapshot, creating it
// from the backend-provided description when first referenced.
func findOrInsertGroup(s *Snapshot, desc ExecutorGroupDesc) *ExecutorGroup {
	if g, ok := s.ExecutorGroups[desc.Name]; ok {
		return g
	}
	g := newExecutorGroupFromDesc(desc)
	s.ExecutorGroups[desc.Name] = g
	return g
}

// needsLocalBackendUpdate reports whether the snapshot's view of the local
// backend diverged from the descriptor the local server reports.
func (m *MembershipManager) needsLocalBackendUpdate(s *Snapshot, local *BackendDescriptor) bool {
	if local == nil {
		return false
	}
	if s.LocalBackend == nil {
		return true
	}
	existing, ok := s.CurrentBackends[m.localID]
	if !ok {
		return true
	}
	return existing.IsQuiescing != local.IsQuiescing
}

// UpdateMembership is the gossip callback.  It applies the membership
// topic's update to a fresh snapshot, publishes it, and appends the local
// backend's descriptor to outbound when it needs republishing.
func (m *MembershipManager) UpdateMembership(deltas map[string]TopicDelta, outbound *[]TopicDelta) {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	update, ok := deltas[m.topic]
	if !ok {
		// Spurious wakeup for topics we do not subscribe to.
		return
	}

	noSSUpdate := update.IsDelta && len(update.Entries) == 0

	base := m.recovering
	if base == nil {
		base = m.GetSnapshot()
	}
	local := m.localBackendDescriptor()
	needsLocalBEUpdate := m.needsLocalBackendUpdate(base, local)

	ssIsRecovering := m.subscriber != nil && m.subscriber.IsInPostRecoveryGracePeriod()
	updateLocalServer := m.recovering != nil && !ssIsRecovering
	needsBlacklistMaintenance := base.Blacklist.NeedsMaintenance()

	// Nothing to do: skip the copy entirely.
	if noSSUpdate && !needsLocalBEUpdate && !updateLocalServer && !needsBlacklistMaintenance {
		return
	}

	var newState *Snapshot
	if !update.IsDelta {
		logutil.Debug("received full membership update")
		newState = newSnapshot(m.blacklistTimeout)
		// Versions stay totally ordered across full transmits.
		newState.Version = base.Version
		// A full update can remove backends, so the local server must hear
		// about it.
		updateLocalServer = true
	} else {
		logutil.Debug("received delta membership update",
			zap.Int("entries", len(update.Entries)))
		if m.recovering != nil {
			// The recovering snapshot was never exposed to readers; no
			// copy needed.
			newState = m.recovering
		} else {
			newState = base.clone()
		}
	}
	if local != nil {
		newState.LocalBackend = local
	}
	newState.Version++

	for i := range update.Entries {
		entry := &update.Entries[i]
		if entry.Deleted {
			if m.applyDeletion(newState, entry.Key) {
				updateLocalServer = true
			}
			continue
		}
		m.applyUpsert(newState, entry, local)
	}

	if needsBlacklistMaintenance {
		for _, desc := range newState.Blacklist.Maintenance() {
			for _, gd := range desc.ExecutorGroups {
				logutil.Info("adding backend back to group after blacklist timeout",
					zap.String("address", desc.Address), zap.String("group", gd.Name))
				findOrInsertGroup(newState, gd).AddExecutor(desc)
			}
		}
		m.debugCheckConsistency(newState)
	}

	// Re-check against newState: a full update resets it to empty.
	if m.needsLocalBackendUpdate(newState, local) {
		newState.CurrentBackends[m.localID] = local
		for _, gd := range local.ExecutorGroups {
			group := findOrInsertGroup(newState, gd)
			if local.IsQuiescing {
				logutil.Debug("removing local backend from group", zap.String("group", gd.Name))
				group.RemoveExecutor(local)
			} else if local.IsExecutor {
				logutil.Debug("adding local backend to group", zap.String("group", gd.Name))
				group.AddExecutor(local)
			}
		}
		m.appendLocalBackendUpdate(local, outbound)
		m.debugCheckConsistency(newState)
	}

	m.metrics.update(newState)

	// Hold publications while the statestore is in its post-recovery grace
	// period; the assembled snapshot is released once it ends.
	if ssIsRecovering {
		m.recovering = newState
		return
	}

	if updateLocalServer {
		m.notifyLocalServer(newState.CurrentBackends)
	}
	m.updateFrontend(newState.CurrentBackends)

	m.setState(newState)
	m.recovering = nil
}

// applyDeletion removes the backend from the snapshot.  It reports whether
// anything changed.
func (m *MembershipManager) applyDeletion(s *Snapshot, key string) bool {
	desc, ok := s.CurrentBackends[key]
	if !ok {
		return false
	}
	blacklisted := s.Blacklist.FindAndRemove(desc) == Blacklisted
	// A quiescing or blacklisted backend has already left its groups.
	if desc.IsExecutor && !desc.IsQuiescing && !blacklisted {
		for _, gd := range desc.ExecutorGroups {
			logutil.Debug("removing deleted backend from group",
				zap.String("key", key), zap.String("group", gd.Name))
			findOrInsertGroup(s, gd).RemoveExecutor(desc)
		}
	}
	delete(s.CurrentBackends, key)
	return true
}

func (m *MembershipManager) applyUpsert(s *Snapshot, entry *TopicEntry, local *BackendDescriptor) {
	desc := &BackendDescriptor{}
	if err := m.codec.Unmarshal(entry.Value, desc); err != nil {
		m.sampledLogger.Warn("error decoding membership topic entry",
			zap.String("key", entry.Key), zap.Error(err))
		return
	}
	if desc.IPAddress == "" {
		// Each backend resolves its own IP and sends it in the descriptor;
		// an empty one means a broken or malicious peer.
		m.sampledLogger.Warn("ignoring backend descriptor with empty IP address",
			zap.String("key", entry.Key), zap.String("address", desc.Address))
		return
	}
	if entry.Key == m.localID {
		// The local backend is applied separately; only surface conflicts.
		if local == nil {
			m.sampledLogger.Warn("another host registered itself with the local backend id "+
				"before the local backend started",
				zap.String("key", entry.Key), zap.String("address", desc.Address))
		} else if desc.Address != local.Address {
			m.sampledLogger.Warn("duplicate subscriber registration under the local backend id",
				zap.String("key", entry.Key),
				zap.String("their-address", desc.Address),
				zap.String("our-address", local.Address))
		}
		return
	}

	if existing, ok := s.CurrentBackends[entry.Key]; ok {
		blacklisted := s.Blacklist.FindAndRemove(desc) == Blacklisted
		if desc.IsQuiescing && !existing.IsQuiescing && existing.IsExecutor && !blacklisted {
			for _, gd := range desc.ExecutorGroups {
				logutil.Debug("removing quiescing backend from group",
					zap.String("key", entry.Key), zap.String("group", gd.Name))
				findOrInsertGroup(s, gd).RemoveExecutor(desc)
			}
		}
		s.CurrentBackends[entry.Key] = desc
	} else {
		s.CurrentBackends[entry.Key] = desc
		if !desc.IsQuiescing && desc.IsExecutor {
			for _, gd := range desc.ExecutorGroups {
				logutil.Debug("adding backend to group",
					zap.String("key", entry.Key), zap.String("group", gd.Name))
				findOrInsertGroup(s, gd).AddExecutor(desc)
			}
		}
	}
	m.debugCheckConsistency(s)
}

// BlacklistExecutor removes the executor from its groups and records it on
// the blacklist, locally and idempotently.  Listeners are deliberately not
// notified: queries already running on the backend may still succeed, and
// the next gossip tick propagates the membership to the planner anyway.
func (m *MembershipManager) BlacklistExecutor(desc *BackendDescriptor) {
	if m.blacklistTimeout <= 0 {
		return
	}
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	current := m.GetSnapshot()
	// Never blacklist the local backend: coordinator fragments must be
	// schedulable on it.
	if local := current.LocalBackend; local != nil &&
		desc.IPAddress == local.IPAddress && desc.Address == local.Address {
		return
	}

	recovering := m.recovering != nil
	base := current
	if recovering {
		base = m.recovering
	}

	exists := false
	for _, gd := range desc.ExecutorGroups {
		if g, ok := base.ExecutorGroups[gd.Name]; ok && g.LookUpBackend(desc.Address) != nil {
			exists = true
			break
		}
	}
	if !exists {
		// Already gone from every group, e.g. quiescing or removed by a
		// statestore update before the coordinator decided to blacklist it.
		return
	}

	newState := base
	if !recovering {
		newState = current.clone()
	}
	for _, gd := range desc.ExecutorGroups {
		logutil.Info("removing blacklisted backend from group",
			zap.String("address", desc.Address), zap.String("group", gd.Name))
		findOrInsertGroup(newState, gd).RemoveExecutor(desc)
	}
	newState.Blacklist.Blacklist(desc)
	newState.Version++
	m.debugCheckConsistency(newState)

	// The recovering snapshot is published when the grace period ends.
	if recovering {
		return
	}
	m.metrics.update(newState)
	m.setState(newState)
}

func (m *MembershipManager) appendLocalBackendUpdate(local *BackendDescriptor, outbound *[]TopicDelta) {
	value, err := m.codec.Marshal(local)
	if err != nil {
		// Failing to serialize our own descriptor is a programming error.
		logutil.Fatal("failed to serialize local backend descriptor for membership topic",
			zap.Error(err))
		return
	}
	logutil.Debug("sending local backend to statestore")
	*outbound = append(*outbound, TopicDelta{
		TopicName: m.topic,
		IsDelta:   true,
		Entries:   []TopicEntry{{Key: m.localID, Value: value}},
	})
}

func (m *MembershipManager) notifyLocalServer(backends map[string]*BackendDescriptor) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if m.updateLocalServerFn == nil {
		return
	}
	active := make(map[string]struct{}, len(backends))
	for _, desc := range backends {
		active[desc.Address] = struct{}{}
	}
	m.updateLocalServerFn(active)
}

func (m *MembershipManager) updateFrontend(backends map[string]*BackendDescriptor) {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()
	if m.updateFrontendFn == nil {
		return
	}
	req := &FrontendUpdate{
		Hostnames:   make(map[string]struct{}),
		IPAddresses: make(map[string]struct{}),
	}
	for _, desc := range backends {
		if desc.IsExecutor {
			req.Hostnames[hostOf(desc.Address)] = struct{}{}
			req.IPAddresses[desc.IPAddress] = struct{}{}
			req.NumExecutors++
		}
	}
	if err := m.updateFrontendFn(req); err != nil {
		logutil.Warn("error updating frontend membership snapshot", zap.Error(err))
	}
}

func (m *MembershipManager) debugCheckConsistency(s *Snapshot) {
	if !EnableDebugChecks {
		return
	}
	if !checkConsistency(s) {
		panic("membership snapshot is inconsistent")
	}
}

// checkConsistency verifies that every group member appears in
// CurrentBackends with matching executor flags and is not blacklisted.
func checkConsistency(s *Snapshot) bool {
	byAddress := make(map[string]*BackendDescriptor, len(s.CurrentBackends))
	for _, desc := range s.CurrentBackends {
		byAddress[desc.Address] = desc
	}
	for name, group := range s.ExecutorGroups {
		for _, member := range group.AllExecutors() {
			if !member.IsExecutor {
				logutil.Warn("group member is not an executor",
					zap.String("group", name), zap.String("address", member.Address))
				return false
			}
			if member.IsQuiescing {
				logutil.Warn("group member is quiescing",
					zap.String("group", name), zap.String("address", member.Address))
				return false
			}
			current, ok := byAddress[member.Address]
			if !ok {
				logutil.Warn("group member missing from current backends",
					zap.String("group", name), zap.String("address", member.Address))
				return false
			}
			if current.IsQuiescing != member.IsQuiescing || current.IsExecutor != member.IsExecutor {
				logutil.Warn("group member differs from current backend entry",
					zap.String("group", name), zap.String("address", member.Address))
				return false
			}
			if s.Blacklist.IsBlacklisted(member) {
				logutil.Warn("group member is blacklisted",
					zap.String("group", name), zap.String("address", member.Address))
				return false
			}
		}
	}
	return true
}
