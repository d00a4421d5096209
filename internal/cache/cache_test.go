// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testData struct {
	name  string
	value float64
}

type testValue struct {
	value float64
}

// testSource mimics a backend list endpoint. offset shifts every value so
// tests can tell one fetch from the next.
type testSource struct {
	mu     sync.Mutex
	offset float64
	fail   bool
	calls  atomic.Int32
}

func (s *testSource) fetch(_ context.Context) ([]testData, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("failure")
	}
	return []testData{
		{name: "a", value: 1 + s.offset},
		{name: "b", value: 2.5 + s.offset},
		{name: "c", value: 1 + s.offset},
	}, nil
}

func (s *testSource) set(offset float64, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = offset
	s.fail = fail
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)

	assert.Equal(t, 0, c.Revision())

	data1, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, data1, 3)
	assert.Equal(t, 1.0, data1[0].value)
	assert.Equal(t, 1, c.Revision())

	data2, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, data2[0].value)
	assert.Equal(t, int32(1), src.calls.Load(), "second Get must not refetch")
	assert.Same(t, &data1[0], &data2[0], "second Get must return the cached slice")
	assert.Equal(t, 1, c.Revision())
}

func TestCache_Refresh(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)

	_, err := c.Get(ctx)
	require.NoError(t, err)

	src.set(1, false)
	data, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.0, data[0].value)
	assert.Equal(t, 2, c.Revision())
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCache_RefreshDuringGet(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	release := make(chan struct{})
	c := New("test", func(context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		return int(n), nil
	})

	got := make(chan int, 1)
	go func() {
		v, err := c.Get(ctx)
		assert.NoError(t, err)
		got <- v
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	// The first fetch is still blocked, Refresh must not wait for it.
	v, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int32(2), calls.Load())

	// The older fetch finishes last and must not replace the newer value.
	close(release)
	assert.Equal(t, 2, <-got)
	v, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Revision())
	assert.Equal(t, 2, c.Fetches())
}

func TestCache_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)

	_, err := c.Get(ctx)
	require.NoError(t, err)

	src.set(5, true)
	_, err = c.Refresh(ctx)
	assert.EqualError(t, err, "failure")
	assert.Equal(t, 1, c.Revision())

	data, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, data[0].value, "prior data must survive a failed fetch")
}

func TestCache_FirstFetchFails(t *testing.T) {
	src := &testSource{fail: true}
	c := New("test", src.fetch)

	_, err := c.Get(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, c.Revision())
	assert.Equal(t, 1, c.Fetches())
}

func TestCache_ConcurrentGetsShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := New("slow", func(_ context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give every goroutine a chance to join the flight.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Revision())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestCache_WaiterCancellation(t *testing.T) {
	release := make(chan struct{})
	c := New("slow", func(_ context.Context) (string, error) {
		<-release
		return "done", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The abandoned fetch still completes and populates the cache.
	close(release)
	assert.Eventually(t, func() bool { return c.Revision() == 1 }, time.Second, 5*time.Millisecond)

	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestByKeyCache(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)
	byKey := NewByKey("byKey", c, func(d testData) string { return d.name })

	data1, err := byKey.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, data1["a"].value)
	assert.Equal(t, 1, byKey.Revision())

	data2, err := byKey.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.5, data2["b"].value)
	assert.Equal(t, 1, byKey.Revision())

	src.set(1, false)
	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Revision())
	assert.False(t, byKey.UpToDate())

	data3, err := byKey.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, byKey.Revision())
	assert.Equal(t, 2.0, data3["a"].value)
	assert.True(t, byKey.UpToDate())
}

func TestGroupedCache(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)
	grouped := NewGrouped("grouped", c,
		func(d testData) float64 { return d.value },
		func(d testData) testValue { return testValue{value: d.value} },
	)

	data1, err := grouped.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []testValue{{value: 1}, {value: 2.5}}, data1)

	src.set(1, false)
	_, err = c.Refresh(ctx)
	require.NoError(t, err)

	data2, err := grouped.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []testValue{{value: 2}, {value: 3.5}}, data2)
}

func TestGroupedCache_FirstSeenWins(t *testing.T) {
	ctx := context.Background()
	c := New("test", func(_ context.Context) ([]testData, error) {
		return []testData{
			{name: "first", value: 1},
			{name: "other", value: 2},
			{name: "second", value: 1},
		}, nil
	})
	grouped := NewGrouped("grouped", c,
		func(d testData) float64 { return d.value },
		func(d testData) string { return d.name },
	)

	data, err := grouped.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "other"}, data)
}

func TestDependentCache_ParentFailure(t *testing.T) {
	ctx := context.Background()
	src := &testSource{fail: true}
	c := New("test", src.fetch)
	dep := NewDependent("count", c, func(l []testData) int { return len(l) })

	_, err := dep.Get(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, dep.Revision())

	src.set(0, false)
	n, err := dep.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, dep.Revision())
}

func TestDependentCache_NoRecomputeWithoutParentChange(t *testing.T) {
	ctx := context.Background()
	src := &testSource{}
	c := New("test", src.fetch)
	var conversions int
	dep := NewDependent("count", c, func(l []testData) int {
		conversions++
		return len(l)
	})

	for i := 0; i < 3; i++ {
		_, err := dep.Get(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, conversions)
	assert.Equal(t, int32(1), src.calls.Load())
}
