package fingerprint

import (
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

func cacheLookups(t *testing.T, result string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, telemetry.VendorCacheLookups.WithLabelValues(result).Write(&m))
	return m.GetCounter().GetValue()
}

func TestVendorCache_EvictsLeastRecent(t *testing.T) {
	c := newVendorCache(2)
	a, b, d := [3]byte{0, 0, 1}, [3]byte{0, 0, 2}, [3]byte{0, 0, 3}

	c.store(a, "A")
	c.store(b, "B")
	_, ok := c.lookup(a) // a becomes most recent
	assert.True(t, ok)

	c.store(d, "D")
	assert.Equal(t, 2, c.len())
	_, ok = c.lookup(b)
	assert.False(t, ok, "b was least recently used")

	v, ok := c.lookup(a)
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	c.store(a, "A2")
	v, _ = c.lookup(a)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 2, c.len())
}

func TestVendorCache_CountsLookups(t *testing.T) {
	c := newVendorCache(0)
	hits := cacheLookups(t, "hit")
	misses := cacheLookups(t, "miss")

	c.lookup([3]byte{9, 9, 9})
	c.store([3]byte{9, 9, 9}, VendorUnknown)
	c.lookup([3]byte{9, 9, 9})

	assert.Equal(t, hits+1, cacheLookups(t, "hit"))
	assert.Equal(t, misses+1, cacheLookups(t, "miss"))
}

func TestVendorCache_Concurrent(t *testing.T) {
	c := newVendorCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := [3]byte{byte(i), byte(j), 0}
				c.store(p, "v")
				c.lookup(p)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, c.len())
}
