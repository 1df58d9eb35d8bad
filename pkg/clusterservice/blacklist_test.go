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
	"testing"
	"time"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"
)

func TestBlacklistLifecycle(t *testing.T) {
	now := time.Unix(1000, 0)
	stub := gostub.Stub(&nowFunc, func() time.Time { return now })
	defer stub.Reset()

	const timeout = 10 * time.Second
	bl := newExecutorBlacklist(timeout)
	desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())

	require.Equal(t, NotBlacklisted, bl.State(desc))
	require.False(t, bl.NeedsMaintenance())

	bl.Blacklist(desc)
	require.True(t, bl.IsBlacklisted(desc))
	require.Equal(t, 1, bl.NumBlacklisted())
	require.False(t, bl.NeedsMaintenance())

	// Not yet expired.
	now = now.Add(timeout - time.Second)
	require.False(t, bl.NeedsMaintenance())
	require.Empty(t, bl.Maintenance())
	require.True(t, bl.IsBlacklisted(desc))

	// Past the timeout: one maintenance pass moves it to probation.
	now = now.Add(2 * time.Second)
	require.True(t, bl.NeedsMaintenance())
	probated := bl.Maintenance()
	require.Len(t, probated, 1)
	require.Equal(t, "host-a:25000", probated[0].Address)
	require.Equal(t, OnProbation, bl.State(desc))
	require.False(t, bl.IsBlacklisted(desc))
	require.Equal(t, 0, bl.NumBlacklisted())

	// Probation entries age out after the longer window.
	now = now.Add(timeout*probationTimeoutFactor + time.Second)
	require.True(t, bl.NeedsMaintenance())
	require.Empty(t, bl.Maintenance())
	require.Equal(t, NotBlacklisted, bl.State(desc))
}

func TestBlacklistFindAndRemove(t *testing.T) {
	now := time.Unix(2000, 0)
	stub := gostub.Stub(&nowFunc, func() time.Time { return now })
	defer stub.Reset()

	bl := newExecutorBlacklist(10 * time.Second)
	desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())

	require.Equal(t, NotBlacklisted, bl.FindAndRemove(desc))

	bl.Blacklist(desc)
	require.Equal(t, Blacklisted, bl.FindAndRemove(desc))
	require.Equal(t, NotBlacklisted, bl.State(desc))

	bl.Blacklist(desc)
	now = now.Add(11 * time.Second)
	bl.Maintenance()
	require.Equal(t, OnProbation, bl.FindAndRemove(desc))
}

func TestBlacklistRelapseRestartsTimeout(t *testing.T) {
	now := time.Unix(3000, 0)
	stub := gostub.Stub(&nowFunc, func() time.Time { return now })
	defer stub.Reset()

	const timeout = 10 * time.Second
	bl := newExecutorBlacklist(timeout)
	desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())

	bl.Blacklist(desc)
	now = now.Add(timeout + time.Second)
	bl.Maintenance()
	require.Equal(t, OnProbation, bl.State(desc))

	// Blacklisting again while on probation starts a fresh blacklist spell.
	bl.Blacklist(desc)
	require.True(t, bl.IsBlacklisted(desc))
	require.False(t, bl.NeedsMaintenance())
}

func TestBlacklistCloneIsIndependent(t *testing.T) {
	bl := newExecutorBlacklist(10 * time.Second)
	desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())
	bl.Blacklist(desc)

	c := bl.clone()
	c.FindAndRemove(desc)
	require.True(t, bl.IsBlacklisted(desc))
	require.False(t, c.IsBlacklisted(desc))
}

func TestBlacklistDisabled(t *testing.T) {
	bl := newExecutorBlacklist(0)
	desc := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, g1())
	bl.Blacklist(desc)
	require.False(t, bl.NeedsMaintenance())
	require.Empty(t, bl.Maintenance())
}
