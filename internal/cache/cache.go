// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"strconv"
	"sync"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// NoSuchRevision is the parent revision a dependent cache starts with. It
// never matches a real revision, so the first Get always computes.
const NoSuchRevision = -1

// Fetcher produces a fresh value for a Cache.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Revisioned is anything that exposes a revision counter. Dependent caches
// compare their stored parent revision against it.
type Revisioned interface {
	Revision() int
}

// Cache memoizes a single value. Revision increments exactly once per stored
// fetch. A failed fetch leaves data and revision untouched.
//
// Concurrent Gets share one in-flight fetch. Refresh starts a new generation
// that never joins an older fetch, and a fetch finishing after a newer one
// was stored is discarded.
type Cache[T any] struct {
	name string

	// load returns the fresh value and, for dependent caches, the parent
	// revision the value was computed from.
	load func(ctx context.Context) (T, int, error)

	// parent is nil for root caches.
	parent Revisioned

	mu         sync.RWMutex
	data       T
	loaded     bool
	revision   int
	parentRev  int
	fetchCount int
	// gen is the current generation, stored the generation of data.
	gen    int
	stored int
	flight singleflight.Group
}

type result[T any] struct {
	data T
	rev  int
}

// New returns a root cache backed by fetch. name is only used for logging.
func New[T any](name string, fetch Fetcher[T]) *Cache[T] {
	return &Cache[T]{
		name: name,
		load: func(ctx context.Context) (T, int, error) {
			v, err := fetch(ctx)
			return v, NoSuchRevision, err
		},
		parentRev: NoSuchRevision,
	}
}

// Get returns the cached value, fetching first if nothing is cached or the
// parent has moved on.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	data, _, err := c.get(ctx, false)
	return data, err
}

// Refresh forces a fetch started after the call and returns its value.
func (c *Cache[T]) Refresh(ctx context.Context) (T, error) {
	data, _, err := c.get(ctx, true)
	return data, err
}

// Revision returns the number of successful fetches so far.
func (c *Cache[T]) Revision() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.revision
}

// Fetches returns how many times the underlying fetch function completed,
// successful or not.
func (c *Cache[T]) Fetches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchCount
}

// UpToDate reports whether a dependent cache still matches its parent. Root
// caches are always up to date.
func (c *Cache[T]) UpToDate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.upToDateLocked()
}

func (c *Cache[T]) upToDateLocked() bool {
	if c.parent == nil {
		return true
	}
	return c.parentRev == c.parent.Revision()
}

// get returns the value together with the revision it was stored under.
func (c *Cache[T]) get(ctx context.Context, refresh bool) (T, int, error) {
	c.mu.RLock()
	if c.loaded && !refresh && c.upToDateLocked() {
		data, rev := c.data, c.revision
		c.mu.RUnlock()
		return data, rev, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if refresh {
		c.gen++
	}
	gen := c.gen
	c.mu.Unlock()

	// The fetch outlives any single waiter; each waiter can still give up
	// through its own context.
	ch := c.flight.DoChan(strconv.Itoa(gen), func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), gen)
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, 0, res.Err
		}
		if res.Shared {
			log.Debugf("cache %s: joined in-flight fetch", c.name)
		}
		r := res.Val.(result[T])
		return r.data, r.rev, nil
	}
}

func (c *Cache[T]) fetch(ctx context.Context, gen int) (any, error) {
	data, parentRev, err := c.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchCount++

	if err != nil {
		log.WithError(err).Debugf("cache %s: fetch failed", c.name)
		return nil, err
	}
	if c.loaded && gen < c.stored {
		log.Debugf("cache %s: dropping generation %d, have %d", c.name, gen, c.stored)
		return result[T]{data: c.data, rev: c.revision}, nil
	}

	c.data = data
	c.stored = gen
	c.loaded = true
	c.parentRev = parentRev
	c.revision++
	log.Debugf("cache %s: revision %d", c.name, c.revision)

	return result[T]{data: data, rev: c.revision}, nil
}
