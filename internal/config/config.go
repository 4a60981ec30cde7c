/*
 * Minio Cloud Storage, (C) 2016, 2017, 2018 Minio, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the array configuration a scrub run is wired
// from: the data disks, the parity file paths, the block size, the hash
// seed, and the planner's tunables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Disk names one data-disk slot. An empty Path means the slot is
// vacant.
type Disk struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Array is the on-disk YAML configuration for one array.
type Array struct {
	Disks      []Disk `yaml:"disks"`
	Parity     string `yaml:"parity"`
	QParity    string `yaml:"qarity,omitempty"`
	Level      int    `yaml:"level"`
	BlockSize  int    `yaml:"block_size"`
	HashSeed   string `yaml:"hash_seed"` // 64 hex chars = 32 bytes
	Autosave   int64  `yaml:"autosave"`  // bytes; 0 disables
	CountQuota struct {
		Num int64 `yaml:"num"`
		Den int64 `yaml:"den"`
	} `yaml:"count_quota"`
	RecencyGuardDays int `yaml:"recency_guard_days"`
}

// Load parses and validates an Array configuration from path.
func Load(path string) (*Array, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var a Array
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &a, nil
}

func (a *Array) validate() error {
	if len(a.Disks) == 0 {
		return fmt.Errorf("at least one disk is required")
	}
	if a.Parity == "" {
		return fmt.Errorf("parity path is required")
	}
	if a.Level != 1 && a.Level != 2 {
		return fmt.Errorf("level must be 1 or 2, got %d", a.Level)
	}
	if a.Level == 2 && a.QParity == "" {
		return fmt.Errorf("qarity path is required at level 2")
	}
	if a.BlockSize <= 0 || a.BlockSize%4096 != 0 {
		return fmt.Errorf("block_size must be a positive multiple of 4096, got %d", a.BlockSize)
	}
	if len(a.HashSeed) != 64 {
		return fmt.Errorf("hash_seed must be 64 hex characters (32 bytes), got %d", len(a.HashSeed))
	}
	if _, err := hex.DecodeString(a.HashSeed); err != nil {
		return fmt.Errorf("hash_seed: %w", err)
	}
	if a.CountQuota.Den == 0 {
		a.CountQuota.Num, a.CountQuota.Den = 1, 12
	}
	if a.RecencyGuardDays == 0 {
		a.RecencyGuardDays = 10
	}
	return nil
}

// Seed decodes HashSeed into the 32-byte key the keyed hash function
// expects.
func (a *Array) Seed() (seed [32]byte, err error) {
	raw, err := hex.DecodeString(a.HashSeed)
	if err != nil {
		return seed, err
	}
	copy(seed[:], raw)
	return seed, nil
}

// RecencyGuard returns the configured recency guard as a duration.
func (a *Array) RecencyGuard() time.Duration {
	return time.Duration(a.RecencyGuardDays) * 24 * time.Hour
}
