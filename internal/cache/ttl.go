/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package cache

import (
    "sync"
    "time"
)

type entry[V any] struct {
    value V
    at    time.Time
}

// TTL is a read-through cache whose entries expire ttl after they were stored.
// Expired entries are only dropped when overwritten.
type TTL[K comparable, V any] struct {
    mu    sync.RWMutex
    ttl   time.Duration
    now   func() time.Time
    items map[K]entry[V]
}

func NewTTL[K comparable, V any](ttl time.Duration, now func() time.Time) *TTL[K, V] {
    if now == nil { now = time.Now }
    return &TTL[K, V]{ttl: ttl, now: now, items: map[K]entry[V]{}}
}

func (c *TTL[K, V]) Get(key K) (V, bool) {
    c.mu.RLock()
    e, ok := c.items[key]
    c.mu.RUnlock()
    if !ok || c.now().Sub(e.at) >= c.ttl {
        var zero V
        return zero, false
    }
    return e.value, true
}

func (c *TTL[K, V]) Set(key K, v V) {
    c.mu.Lock()
    c.items[key] = entry[V]{value: v, at: c.now()}
    c.mu.Unlock()
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Load errors are not cached.
func (c *TTL[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
    if v, ok := c.Get(key); ok { return v, nil }
    v, err := load()
    if err != nil { return v, err }
    c.Set(key, v)
    return v, nil
}
