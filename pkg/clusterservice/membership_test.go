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
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func makeDesc(id, addr, ip string, isExecutor, isQuiescing bool, groups ...ExecutorGroupDesc) *BackendDescriptor {
	return &BackendDescriptor{
		ID:             id,
		Address:        addr,
		IPAddress:      ip,
		IsExecutor:     isExecutor,
		IsQuiescing:    isQuiescing,
		ExecutorGroups: groups,
	}
}

func g1() ExecutorGroupDesc {
	return ExecutorGroupDesc{Name: "g1", MinSize: 1}
}

func entryFor(t *testing.T, codec Codec, desc *BackendDescriptor) TopicEntry {
	t.Helper()
	value, err := codec.Marshal(desc)
	require.NoError(t, err)
	return TopicEntry{Key: desc.ID, Value: value}
}

func deletionFor(id string) TopicEntry {
	return TopicEntry{Key: id, Deleted: true}
}

func deliver(m *MembershipManager, isDelta bool, entries ...TopicEntry) []TopicDelta {
	deltas := map[string]TopicDelta{
		m.topic: {TopicName: m.topic, IsDelta: isDelta, Entries: entries},
	}
	var outbound []TopicDelta
	m.UpdateMembership(deltas, &outbound)
	return outbound
}

type listenerLog struct {
	mu              sync.Mutex
	localCalls      []map[string]struct{}
	frontendUpdates []*FrontendUpdate
}

func (l *listenerLog) install(m *MembershipManager) {
	m.SetUpdateLocalServerFn(func(active map[string]struct{}) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.localCalls = append(l.localCalls, active)
	})
	m.SetUpdateFrontendFn(func(update *FrontendUpdate) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.frontendUpdates = append(l.frontendUpdates, update)
		return nil
	})
}

func (l *listenerLog) numLocal() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.localCalls)
}

func (l *listenerLog) numFrontend() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frontendUpdates)
}

func newTestManager(t *testing.T) (*MembershipManager, *listenerLog) {
	t.Helper()
	EnableDebugChecks = true
	t.Cleanup(func() { EnableDebugChecks = false })
	m := NewManager("local", nil, NewCodec())
	log := &listenerLog{}
	log.install(m)
	return m, log
}

func TestInitRegistersMembershipTopic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := NewMockSubscriber(ctrl)
	sub.EXPECT().AddTopic(DefaultMembershipTopic, true, gomock.Any()).Return(nil)

	m := NewManager("local", sub, NewCodec())
	require.NoError(t, m.Init())
}

func TestMembershipDelta(t *testing.T) {
	m, log := newTestManager(t)
	codec := NewCodec()

	a := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())
	b := makeDesc("b", "host-b:25000", "10.0.0.2", true, false, g1())
	deliver(m, true, entryFor(t, codec, a), entryFor(t, codec, b))

	snap := m.GetSnapshot()
	require.Equal(t, uint64(1), snap.Version)
	require.Len(t, snap.CurrentBackends, 2)
	require.Equal(t, 2, snap.ExecutorGroups["g1"].NumExecutors())

	// Delete a, quiesce b, add c.
	bq := makeDesc("b", "host-b:25000", "10.0.0.2", true, true, g1())
	c := makeDesc("c", "host-c:25000", "10.0.0.3", true, false, g1())
	deliver(m, true, deletionFor("a"), entryFor(t, codec, bq), entryFor(t, codec, c))

	snap2 := m.GetSnapshot()
	require.Equal(t, uint64(2), snap2.Version)
	require.Len(t, snap2.CurrentBackends, 2)
	require.NotNil(t, snap2.CurrentBackends["b"])
	require.NotNil(t, snap2.CurrentBackends["c"])
	require.True(t, snap2.CurrentBackends["b"].IsQuiescing)

	group := snap2.ExecutorGroups["g1"]
	require.Equal(t, 1, group.NumExecutors())
	require.NotNil(t, group.LookUpBackend("host-c:25000"))
	require.Nil(t, group.LookUpBackend("host-b:25000"))

	// The first snapshot stayed untouched.
	require.Equal(t, uint64(1), snap.Version)
	require.Len(t, snap.CurrentBackends, 2)
	require.Equal(t, 2, snap.ExecutorGroups["g1"].NumExecutors())

	// Deletion notified the local server; the frontend hears every
	// publication.
	require.Equal(t, 1, log.numLocal())
	require.Equal(t, 2, log.numFrontend())
}

func TestEmptyDeltaSkipsProcessing(t *testing.T) {
	m, log := newTestManager(t)
	codec := NewCodec()
	deliver(m, true, entryFor(t, codec, makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())))
	before := m.GetSnapshot()

	deliver(m, true)
	require.Same(t, before, m.GetSnapshot())
	require.Equal(t, 1, log.numFrontend())
}

func TestFullUpdateResetsState(t *testing.T) {
	m, log := newTestManager(t)
	codec := NewCodec()

	deliver(m, true,
		entryFor(t, codec, makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())),
		entryFor(t, codec, makeDesc("b", "host-b:25000", "10.0.0.2", true, false, g1())))
	require.Equal(t, 0, log.numLocal())

	deliver(m, false, entryFor(t, codec, makeDesc("c", "host-c:25000", "10.0.0.3", true, false, g1())))

	snap := m.GetSnapshot()
	require.Equal(t, uint64(2), snap.Version)
	require.Len(t, snap.CurrentBackends, 1)
	require.NotNil(t, snap.CurrentBackends["c"])
	require.Equal(t, 1, snap.ExecutorGroups["g1"].NumExecutors())
	// A full transmit can drop backends, so the local server is notified.
	require.Equal(t, 1, log.numLocal())
}

func TestVersionStrictlyIncreases(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()

	last := m.GetSnapshot().Version
	for i := 0; i < 5; i++ {
		desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, i%2 == 1, g1())
		deliver(m, true, entryFor(t, codec, desc))
		v := m.GetSnapshot().Version
		require.Greater(t, v, last)
		last = v
	}
}

func TestBlacklistThenGossipRemove(t *testing.T) {
	m, log := newTestManager(t)
	codec := NewCodec()

	b := makeDesc("b", "host-b:25000", "10.0.0.2", true, false, g1())
	c := makeDesc("c", "host-c:25000", "10.0.0.3", true, false, g1())
	deliver(m, true, entryFor(t, codec, b), entryFor(t, codec, c))
	frontendBefore := log.numFrontend()
	versionBefore := m.GetSnapshot().Version

	m.BlacklistExecutor(c)

	snap := m.GetSnapshot()
	require.Greater(t, snap.Version, versionBefore)
	require.Equal(t, 1, snap.ExecutorGroups["g1"].NumExecutors())
	require.Nil(t, snap.ExecutorGroups["g1"].LookUpBackend("host-c:25000"))
	require.Equal(t, Blacklisted, snap.Blacklist.State(c))
	// CurrentBackends still reflects the full statestore view.
	require.Len(t, snap.CurrentBackends, 2)
	// No listeners during the blacklist step.
	require.Equal(t, frontendBefore, log.numFrontend())
	require.Equal(t, 0, log.numLocal())

	// Blacklisting again is a no-op: the backend is gone from every group.
	m.BlacklistExecutor(c)
	require.Same(t, snap, m.GetSnapshot())

	deliver(m, true, deletionFor("c"))
	snap2 := m.GetSnapshot()
	require.Len(t, snap2.CurrentBackends, 1)
	require.Equal(t, 0, snap2.ExecutorGroups["g1"].NumExecutors())
	require.Equal(t, NotBlacklisted, snap2.Blacklist.State(c))
	require.Equal(t, frontendBefore+1, log.numFrontend())
	require.Equal(t, 1, log.numLocal())
}

func TestBlacklistRefusesLocalBackend(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()
	local := makeDesc("local", "host-l:25000", "10.0.0.9", true, false, g1())
	m.SetLocalBackendFn(func() *BackendDescriptor { return local })

	deliver(m, true, entryFor(t, codec, makeDesc("b", "host-b:25000", "10.0.0.2", true, false, g1())))
	snap := m.GetSnapshot()
	require.NotNil(t, snap.ExecutorGroups["g1"].LookUpBackend("host-l:25000"))

	m.BlacklistExecutor(local)
	require.Same(t, snap, m.GetSnapshot())
}

func TestLocalBackendRepublish(t *testing.T) {
	m, log := newTestManager(t)
	local := makeDesc("local", "host-l:25000", "10.0.0.9", true, false, g1())
	m.SetLocalBackendFn(func() *BackendDescriptor { return local })

	outbound := deliver(m, true)
	require.Len(t, outbound, 1)
	require.Equal(t, m.topic, outbound[0].TopicName)
	require.True(t, outbound[0].IsDelta)
	require.Len(t, outbound[0].Entries, 1)
	require.Equal(t, "local", outbound[0].Entries[0].Key)

	var decoded BackendDescriptor
	require.NoError(t, NewCodec().Unmarshal(outbound[0].Entries[0].Value, &decoded))
	require.Equal(t, *local.Clone(), decoded)

	snap := m.GetSnapshot()
	require.Same(t, local, snap.LocalBackend)
	require.Same(t, local, snap.CurrentBackends["local"])
	require.Equal(t, 1, snap.ExecutorGroups["g1"].NumExecutors())

	require.Equal(t, 1, log.numFrontend())
	fe := log.frontendUpdates[0]
	require.Equal(t, 1, fe.NumExecutors)
	require.Contains(t, fe.Hostnames, "host-l")
	require.Contains(t, fe.IPAddresses, "10.0.0.9")

	// Nothing diverged: the next empty delta publishes nothing new.
	outbound = deliver(m, true)
	require.Empty(t, outbound)
}

func TestLocalEntryFromGossipIsIgnored(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()

	impostor := makeDesc("local", "host-x:25000", "10.0.0.66", true, false, g1())
	deliver(m, true, entryFor(t, codec, impostor))

	snap := m.GetSnapshot()
	require.NotContains(t, snap.CurrentBackends, "local")
}

func TestMalformedEntriesDropped(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()

	noIP := makeDesc("x", "host-x:25000", "", true, false, g1())
	garbage := TopicEntry{Key: "y", Value: []byte{0x00, 0xde, 0xad, 0xbe, 0xef}}
	good := makeDesc("z", "host-z:25000", "10.0.0.4", true, false, g1())
	deliver(m, true, entryFor(t, codec, noIP), garbage, entryFor(t, codec, good))

	snap := m.GetSnapshot()
	require.Equal(t, uint64(1), snap.Version)
	require.Len(t, snap.CurrentBackends, 1)
	require.NotNil(t, snap.CurrentBackends["z"])
}

func TestRecoveringSnapshotHeldBack(t *testing.T) {
	EnableDebugChecks = true
	t.Cleanup(func() { EnableDebugChecks = false })

	sub := NewLoopbackSubscriber()
	m := NewManager("local", sub, NewCodec())
	log := &listenerLog{}
	log.install(m)
	require.NoError(t, m.Init())
	codec := NewCodec()

	sub.SetRecovering(true)
	sub.Deliver(map[string]TopicDelta{
		m.topic: {TopicName: m.topic, IsDelta: true, Entries: []TopicEntry{
			entryFor(t, codec, makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())),
		}},
	})

	// Nothing published, nobody notified.
	require.Equal(t, uint64(0), m.GetSnapshot().Version)
	require.Equal(t, 0, log.numFrontend())

	sub.SetRecovering(false)
	sub.Deliver(map[string]TopicDelta{
		m.topic: {TopicName: m.topic, IsDelta: true},
	})

	snap := m.GetSnapshot()
	require.Equal(t, uint64(2), snap.Version)
	require.Len(t, snap.CurrentBackends, 1)
	// Leaving recovery forces a local server update.
	require.Equal(t, 1, log.numLocal())
	require.Equal(t, 1, log.numFrontend())
}

func TestMetricsOnPublication(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()

	small := ExecutorGroupDesc{Name: "small", MinSize: 2}
	deliver(m, true,
		entryFor(t, codec, makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())),
		entryFor(t, codec, makeDesc("b", "host-b:25000", "10.0.0.2", true, false, small)))

	require.Equal(t, int64(2), m.Metrics().TotalBackends.Load())
	require.Equal(t, int64(2), m.Metrics().TotalLiveExecutorGroups.Load())
	// "small" wants two executors and has one.
	require.Equal(t, int64(1), m.Metrics().TotalHealthyExecutorGroups.Load())
}

func TestSnapshotReadersNeverBlock(t *testing.T) {
	m, _ := newTestManager(t)
	codec := NewCodec()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := m.GetSnapshot()
				if snap.Version < last {
					t.Error("snapshot version went backwards")
					return
				}
				last = snap.Version
			}
		}()
	}

	for i := 0; i < 50; i++ {
		quiescing := i%2 == 1
		deliver(m, true, entryFor(t, codec,
			makeDesc("a", "host-a:25000", "10.0.0.1", true, quiescing, g1())))
	}
	close(stop)
	wg.Wait()
}
