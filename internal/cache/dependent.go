// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
)

// NewDependent returns a cache whose value is convert applied to the parent's
// value. It recomputes whenever the parent's revision differs from the one
// observed at the last computation.
func NewDependent[M, T any](name string, parent *Cache[M], convert func(M) T) *Cache[T] {
	return &Cache[T]{
		name:   name,
		parent: parent,
		load: func(ctx context.Context) (T, int, error) {
			data, rev, err := parent.get(ctx, false)
			if err != nil {
				var zero T
				return zero, NoSuchRevision, err
			}
			return convert(data), rev, nil
		},
		parentRev: NoSuchRevision,
	}
}

// NewByKey returns a dependent cache mapping each item of the parent list to
// key(item). A later item with the same key replaces an earlier one.
func NewByKey[K comparable, V any](name string, parent *Cache[[]V], key func(V) K) *Cache[map[K]V] {
	return NewDependent(name, parent, func(list []V) map[K]V {
		m := make(map[K]V, len(list))
		for _, v := range list {
			m[key(v)] = v
		}
		return m
	})
}

// NewGrouped returns a dependent cache holding one derived value per distinct
// key of the parent list. The first item seen for a key wins and later
// duplicates are dropped. Output order is first-occurrence order.
func NewGrouped[R any, G any, K comparable](
	name string,
	parent *Cache[[]R],
	key func(R) K,
	value func(R) G,
) *Cache[[]G] {
	return NewDependent(name, parent, func(list []R) []G {
		seen := make(map[K]struct{}, len(list))
		groups := make([]G, 0, len(list))
		for _, item := range list {
			k := key(item)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			groups = append(groups, value(item))
		}
		return groups
	})
}
