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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	data := `
[log]
level = "debug"

[membership]
topic-name = "impala-membership"
blacklist-timeout = "30s"
min-group-size = 2

[hashtable]
initial-buckets = 2048
quadratic-probing = false
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 30*time.Second, cfg.Membership.BlacklistTimeout.Duration)
	require.Equal(t, 2, cfg.Membership.MinGroupSize)
	require.Equal(t, int64(2048), cfg.HashTable.InitialBuckets)
	require.False(t, cfg.HashTable.QuadraticProbing)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.HashTable.InitialBuckets = 1000
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Membership.MinGroupSize = 0
	require.Error(t, cfg.Validate())
}
