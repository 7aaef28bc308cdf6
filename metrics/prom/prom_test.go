package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/memocache/cache"
)

func TestAdapter_WiredIntoLRU(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "memocache", "test", prometheus.Labels{"cache": "lru"})

	c, err := cache.NewLRU[string, int](cache.Options[string, int]{Capacity: 2, Metrics: m})
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Get("zzz")
	c.Put("c", 3) // evicts b

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.evicts.WithLabelValues("expired")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.entries))

	n, err := testutil.GatherAndCount(reg, "memocache_test_hits_total", "memocache_test_size_entries")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAdapter_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "memocache", "dup", nil)
	assert.Panics(t, func() { New(reg, "memocache", "dup", nil) })
}
