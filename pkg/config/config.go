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
	"context"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/mpquery/pkg/common/moerr"
	"github.com/matrixorigin/mpquery/pkg/logutil"
)

// Duration wraps time.Duration so values can be written as "2m" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MembershipConfig configures the cluster membership manager.
type MembershipConfig struct {
	TopicName        string   `toml:"topic-name"`
	BlacklistTimeout Duration `toml:"blacklist-timeout"`
	MinGroupSize     int      `toml:"min-group-size"`
}

// HashTableConfig carries build-side hash table defaults.
type HashTableConfig struct {
	InitialBuckets   int64 `toml:"initial-buckets"`
	QuadraticProbing bool  `toml:"quadratic-probing"`
}

// Config is the root of the engine configuration file.
type Config struct {
	Log        logutil.LogConfig `toml:"log"`
	Membership MembershipConfig  `toml:"membership"`
	HashTable  HashTableConfig   `toml:"hashtable"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: logutil.LogConfig{
			Level:  "info",
			Format: "console",
		},
		Membership: MembershipConfig{
			TopicName:        "impala-membership",
			BlacklistTimeout: Duration{12 * time.Second},
			MinGroupSize:     1,
		},
		HashTable: HashTableConfig{
			InitialBuckets:   1 << 10,
			QuadraticProbing: true,
		},
	}
}

// Load parses the TOML file at path on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, moerr.NewInvalidInput(context.Background(), "parse config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	ctx := context.Background()
	if c.Membership.TopicName == "" {
		return moerr.NewInvalidInput(ctx, "membership topic name must not be empty")
	}
	if c.Membership.MinGroupSize <= 0 {
		return moerr.NewInvalidInput(ctx, "min-group-size must be positive, got %d", c.Membership.MinGroupSize)
	}
	n := c.HashTable.InitialBuckets
	if n <= 0 || n&(n-1) != 0 {
		return moerr.NewInvalidInput(ctx, "initial-buckets must be a power of two, got %d", n)
	}
	return nil
}
