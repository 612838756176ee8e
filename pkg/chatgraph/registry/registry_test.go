package registry

import (
	"cmp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[string, int]()
	assert.NotNil(t, r)
	assert.Equal(t, 0, len(r.Keys()))
}

// fill adds each key with its index as the value.
func fill[K cmp.Ordered](t *testing.T, r *Registry[K, int], keys ...K) {
	t.Helper()
	for i, k := range keys {
		require.NoError(t, r.Add(k, i))
	}
}

func TestGet(t *testing.T) {
	r := New[string, int]()
	fill(t, r, "zero", "one")

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Non-existent key
	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestAdd(t *testing.T) {
	r := New[string, string]()

	require.NoError(t, r.Add("booking", "first"))
	err := r.Add("booking", "second")

	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "booking")
	v, _ := r.Get("booking")
	assert.Equal(t, "first", v)
}

func TestLookup(t *testing.T) {
	r := New[string, int]()
	fill(t, r, "chatbot", "booking")

	v, err := r.Lookup("booking")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = r.Lookup("weather")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "weather")
	assert.Contains(t, err.Error(), "[booking chatbot]")
}

func TestKeysSorted(t *testing.T) {
	r := New[string, int]()
	for _, k := range []string{"intent", "booking", "chatbot"} {
		require.NoError(t, r.Add(k, 0))
	}

	assert.Equal(t, []string{"booking", "chatbot", "intent"}, r.Keys())
	assert.Empty(t, New[string, int]().Keys())
}

func TestConcurrentAdd(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup
	var failures atomic.Int32

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Add(1, 1); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(49), failures.Load())
	assert.Equal(t, 1, len(r.Keys()))
}

func TestConcurrentReadWrite(t *testing.T) {
	r := New[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(2)
		go func(val int) {
			defer wg.Done()
			assert.NoError(t, r.Add(val, val*2))
		}(i)
		go func(val int) {
			defer wg.Done()
			_, _ = r.Get(val)
			_ = r.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, len(r.Keys()))
	for i := range 100 {
		v, ok := r.Get(i)
		assert.True(t, ok)
		assert.Equal(t, i*2, v)
	}
}

func TestAll(t *testing.T) {
	r := New[int, string]()
	require.NoError(t, r.Add(3, "c"))
	require.NoError(t, r.Add(1, "a"))
	require.NoError(t, r.Add(2, "b"))

	var got []string
	for _, v := range r.All() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestAll_EarlyStop(t *testing.T) {
	r := New[int, int]()
	for i := range 10 {
		require.NoError(t, r.Add(i, i))
	}

	count := 0
	for range r.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestAll_AllowsMutation(t *testing.T) {
	r := New[string, int]()
	fill(t, r, "a", "b")

	var visited []string
	for k, v := range r.All() {
		visited = append(visited, k)
		require.NoError(t, r.Add("added-"+k, v))
	}

	assert.Equal(t, []string{"a", "b"}, visited)
	assert.Equal(t, []string{"a", "added-a", "added-b", "b"}, r.Keys())
}
