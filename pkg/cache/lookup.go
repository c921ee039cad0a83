// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver fetches the value for a key from its source of truth. A non-nil
// error means the key could not be resolved; the reason is the resolver's
// to log.
type Resolver[K comparable, V any] func(ctx context.Context, key K) (V, error)

type entry[V any] struct {
	value V
	found bool
}

// Lookup is a read-through, run-scoped cache in front of a Resolver.
//
// Every outcome is remembered, unresolved keys included, so the resolver is
// called at most once per key for the lifetime of the Lookup. Entries are
// never invalidated. Concurrent misses for the same key share one call.
type Lookup[K comparable, V any] struct {
	name    string
	resolve Resolver[K, V]

	mu      sync.RWMutex
	entries map[K]entry[V]
	group   singleflight.Group
}

// New returns an empty Lookup. The name labels its metrics and log lines.
func New[K comparable, V any](name string, resolve Resolver[K, V]) *Lookup[K, V] {
	return &Lookup[K, V]{
		name:    name,
		resolve: resolve,
		entries: make(map[K]entry[V]),
	}
}

// Resolve returns the value for key and whether it was found.
func (l *Lookup[K, V]) Resolve(ctx context.Context, key K) (V, bool) {
	if e, ok := l.get(key); ok {
		lookupsTotal.WithLabelValues(l.name, "hit").Inc()
		return e.value, e.found
	}

	v, _, _ := l.group.Do(fmt.Sprint(key), func() (any, error) {
		// a concurrent caller may have stored it between get and Do
		if e, ok := l.get(key); ok {
			return e, nil
		}

		lookupsTotal.WithLabelValues(l.name, "miss").Inc()
		var e entry[V]
		if l.resolve != nil {
			value, err := l.resolve(ctx, key)
			if err == nil {
				e = entry[V]{value: value, found: true}
			} else {
				slog.Debug("lookup unresolved", "cache", l.name, "key", key, "error", err)
			}
		}

		l.mu.Lock()
		l.entries[key] = e
		l.mu.Unlock()
		return e, nil
	})

	e := v.(entry[V])
	return e.value, e.found
}

// Put stores a resolved value, replacing whatever was known about key.
func (l *Lookup[K, V]) Put(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = entry[V]{value: value, found: true}
}

// Len returns the number of keys with a stored outcome.
func (l *Lookup[K, V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Lookup[K, V]) get(key K) (entry[V], bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[key]
	return e, ok
}
