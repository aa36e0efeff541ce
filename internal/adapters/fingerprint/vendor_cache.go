package fingerprint

import (
	"container/list"
	"sync"

	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

// vendorCache remembers resolved vendors per OUI prefix, evicting the least
// recently resolved prefix once full. Misses of the repository are cached as
// VendorUnknown so a noisy unknown prefix costs one lookup.
type vendorCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recent
	entries  map[[3]byte]*list.Element
}

type vendorEntry struct {
	prefix [3]byte
	vendor string
}

func newVendorCache(capacity int) *vendorCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &vendorCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[[3]byte]*list.Element, capacity),
	}
}

func (c *vendorCache) lookup(prefix [3]byte) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[prefix]
	if !ok {
		telemetry.VendorCacheLookups.WithLabelValues("miss").Inc()
		return "", false
	}
	c.order.MoveToFront(elem)
	telemetry.VendorCacheLookups.WithLabelValues("hit").Inc()
	return elem.Value.(*vendorEntry).vendor, true
}

func (c *vendorCache) store(prefix [3]byte, vendor string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[prefix]; ok {
		elem.Value.(*vendorEntry).vendor = vendor
		c.order.MoveToFront(elem)
		return
	}

	c.entries[prefix] = c.order.PushFront(&vendorEntry{prefix: prefix, vendor: vendor})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*vendorEntry).prefix)
	}
}

func (c *vendorCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
