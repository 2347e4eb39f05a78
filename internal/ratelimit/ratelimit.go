// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit provides sliding-window request limiting keyed by origin.
//
// The default implementation keeps the ledger in process memory: per-origin
// state lives for the process lifetime and resets on restart, which is an
// accepted trade-off for a single-process gateway. A Redis-backed
// implementation is available for deployments that want the ledger in a
// shared store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultWindow is the sliding window length.
	DefaultWindow = 60 * time.Second

	// DefaultMax is the number of requests admitted per origin per window.
	DefaultMax = 3
)

// Limiter decides whether a request from the given origin key may proceed at
// the given instant, recording it when admitted.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, error)
}

// bucket holds the in-window timestamps for one origin. Each bucket carries
// its own lock so origins never contend with each other.
type bucket struct {
	mu    sync.Mutex
	times []time.Time
}

// Memory is an in-process sliding-window limiter. Entries older than the
// window are pruned lazily on each access; there is no background sweep.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	window  time.Duration
	max     int
}

// NewMemory creates an in-memory limiter admitting max requests per origin
// within the sliding window.
func NewMemory(window time.Duration, max int) *Memory {
	return &Memory{
		buckets: make(map[string]*bucket),
		window:  window,
		max:     max,
	}
}

// Allow prunes, counts, and conditionally appends under the origin's lock as
// a single read-modify-write. Two simultaneous requests for the same origin
// can never both be admitted into the last remaining slot.
func (m *Memory) Allow(_ context.Context, key string, now time.Time) (bool, error) {
	b := m.bucketFor(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := now.Add(-m.window)
	kept := b.times[:0]
	for _, t := range b.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.times = kept

	if len(b.times) >= m.max {
		return false, nil
	}

	b.times = append(b.times, now)
	return true, nil
}

func (m *Memory) bucketFor(key string) *bucket {
	m.mu.RLock()
	b := m.buckets[key]
	m.mu.RUnlock()
	if b != nil {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b = m.buckets[key]; b == nil {
		b = &bucket{}
		m.buckets[key] = b
	}
	return b
}
