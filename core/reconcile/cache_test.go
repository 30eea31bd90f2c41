package reconcile

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrBuild(t *testing.T) {
	c := NewCache(time.Minute)
	var builds atomic.Int32
	build := func() (any, error) {
		builds.Add(1)
		return "value", nil
	}

	v, err := c.GetOrBuild("stops", build)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = c.GetOrBuild("stops", build)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, int32(1), builds.Load())

	c.Invalidate()
	_, err = c.GetOrBuild("stops", build)
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds.Load())
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(time.Minute)
	var builds atomic.Int32
	release := make(chan struct{})
	build := func() (any, error) {
		builds.Add(1)
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrBuild("routes", build)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
}

func TestCache_Disabled(t *testing.T) {
	c := NewCache(0)
	calls := 0
	build := func() (any, error) {
		calls++
		return calls, nil
	}

	_, _ = c.GetOrBuild("k", build)
	_, _ = c.GetOrBuild("k", build)
	assert.Equal(t, 2, calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache(time.Minute)
	_, err := c.GetOrBuild("k", func() (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)

	v, err := c.GetOrBuild("k", func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
