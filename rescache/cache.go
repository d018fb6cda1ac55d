// Package rescache pools transient GPU textures and render targets across
// frames so ephemeral render-graph allocations reuse GPU memory instead of
// round-tripping the backend every frame (spec.md §4.3). Grounded on
// Filament's TextureCache.{h,cpp} (original_source/filament/src), with the
// checkout/checkin disposer split collapsed into one Cache since Go has no
// equivalent need for TextureCache's mock-for-unit-tests interface split
// (this module tests against backend.NullDriver directly instead).
package rescache

import (
	"sort"

	"github.com/gekko3d/luma"
	"github.com/gekko3d/luma/backend"
	"github.com/google/uuid"
)

// TextureKey is the hashable descriptor a pooled texture is looked up by.
// Mirrors TextureCache::TextureKey, minus the debug name (which doesn't
// participate in Filament's hash either).
type TextureKey struct {
	Target  backend.TextureTarget
	Levels  int
	Format  backend.TextureFormat
	Samples int
	Width   int
	Height  int
	Depth   int
	Usage   backend.TextureUsage
}

// Size estimates the byte footprint of a texture this key describes,
// used for the cache's size accounting and high-water mark (spec.md §4.3,
// SPEC_FULL.md §10's GcHighWaterMark supplement). A flat 4 bytes/texel
// approximation stands in for Filament's exact per-format size table,
// which this module has no reason to replicate bit-for-bit: the cache
// only needs size accounting to be monotonic and roughly proportional,
// never exact.
func (k TextureKey) Size() int {
	levels := k.Levels
	if levels < 1 {
		levels = 1
	}
	samples := k.Samples
	if samples < 1 {
		samples = 1
	}
	depth := k.Depth
	if depth < 1 {
		depth = 1
	}
	return k.Width * k.Height * depth * samples * levels * 4
}

type poolEntry struct {
	handle backend.TextureHandle
	age    int
	size   int
	label  string
}

// inUseEntry remembers which key a checked-out handle was created from, so
// DestroyTexture can put it back in the pool instead of asking the backend
// to destroy it outright — mirroring TextureCacheDisposer::checkin.
type inUseEntry struct {
	key   TextureKey
	label string
}

// Eviction tuning, grounded on TextureCache::gc's literal constants
// (original_source/filament/src/TextureCache.cpp).
const (
	// MaxAgeSkippedFrame is the age at which an entry is evicted when a
	// frame is skipped, regardless of the soft-age limit.
	MaxAgeSkippedFrame = 1
	// MaxEvictionCount bounds how many soft-aged entries one Gc call
	// purges, so a large cache doesn't stall a frame all at once.
	MaxEvictionCount = 1
	// MaxUniqueAgeCount bounds how many distinct "age buckets" the cache
	// tolerates before forcibly flushing the oldest ones.
	MaxUniqueAgeCount = 3
)

// Cache pools textures keyed by their descriptor. Not safe for concurrent
// use (spec.md §5: "accessed only from the view thread").
type Cache struct {
	driver backend.DriverAPI

	cacheMaxAgeSoft int
	free            map[TextureKey][]poolEntry
	inUse           map[backend.TextureHandle]inUseEntry

	age int

	cacheSize       int
	GcHighWaterMark int
}

// NewCache creates a Cache whose free-pool entries are evicted once they've
// sat unused for cacheMaxAgeSoft non-skipped Gc calls.
func NewCache(driver backend.DriverAPI, cacheMaxAgeSoft int) *Cache {
	return &Cache{
		driver:          driver,
		cacheMaxAgeSoft: cacheMaxAgeSoft,
		free:            make(map[TextureKey][]poolEntry),
		inUse:           make(map[backend.TextureHandle]inUseEntry),
	}
}

// CreateTexture returns a texture matching key, reusing a pooled one if the
// free list has a match, or asking the backend for a new one otherwise
// (spec.md §4.3.2, TextureCache::createTexture).
func (c *Cache) CreateTexture(key TextureKey) backend.TextureHandle {
	if entries := c.free[key]; len(entries) > 0 {
		e := entries[len(entries)-1]
		c.free[key] = entries[:len(entries)-1]
		if len(c.free[key]) == 0 {
			delete(c.free, key)
		}
		c.cacheSize -= e.size
		c.inUse[e.handle] = inUseEntry{key: key, label: e.label}
		return e.handle
	}

	h := c.driver.CreateTexture(key.Target, key.Levels, key.Format, key.Samples, key.Width, key.Height, key.Depth, key.Usage)
	if h == backend.InvalidTexture {
		return backend.InvalidTexture
	}
	c.inUse[h] = inUseEntry{key: key, label: uuid.NewString()}
	return h
}

// Label returns the debug label generated for h when it was first created,
// standing in for Filament's utils::StaticString name field (the teacher
// has no compile-time string-interning facility to borrow instead).
func (c *Cache) Label(h backend.TextureHandle) string {
	return c.inUse[h].label
}

// DestroyTexture returns h to the free pool instead of asking the backend
// to actually destroy it, so a future CreateTexture with the same key can
// reuse the GPU allocation (spec.md §4.3.2, TextureCache::destroyTexture).
func (c *Cache) DestroyTexture(h backend.TextureHandle) {
	entry, ok := c.inUse[h]
	if !ok {
		return // unknown handle: programming error, best-effort no-op (spec.md §7)
	}
	delete(c.inUse, h)

	size := entry.key.Size()
	c.free[entry.key] = append(c.free[entry.key], poolEntry{handle: h, age: c.age, size: size, label: entry.label})
	c.cacheSize += size
	if c.cacheSize > c.GcHighWaterMark {
		c.GcHighWaterMark = c.cacheSize
	}
}

// Gc runs one eviction pass over the free pool (spec.md §4.3.3,
// TextureCache::gc): on a skipped frame every entry at least
// MaxAgeSkippedFrame old is purged outright; otherwise at most
// MaxEvictionCount soft-aged entries are purged, and if MaxUniqueAgeCount
// or more distinct ages remain afterward every bucket except the
// MaxUniqueAgeCount-1 youngest is flushed in full.
func (c *Cache) Gc(skippedFrame bool, logger luma.Logger) {
	age := c.age
	if !skippedFrame {
		c.age++
	}

	evicted := 0
	seenAges := make(map[int]bool)
	for key, entries := range c.free {
		kept := entries[:0]
		for _, e := range entries {
			ageDiff := age - e.age
			if (skippedFrame && ageDiff >= MaxAgeSkippedFrame) ||
				(!skippedFrame && ageDiff >= c.cacheMaxAgeSoft && evicted < MaxEvictionCount) {
				evicted++
				c.purge(key, e)
				continue
			}
			seenAges[minInt(ageDiff, 31)] = true
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(c.free, key)
		} else {
			c.free[key] = kept
		}
	}

	if !skippedFrame && len(seenAges) >= MaxUniqueAgeCount {
		ages := make([]int, 0, len(seenAges))
		for a := range seenAges {
			ages = append(ages, a)
		}
		sort.Ints(ages)
		maxAge := ages[MaxUniqueAgeCount-1]

		for key, entries := range c.free {
			kept := entries[:0]
			for _, e := range entries {
				if age-e.age >= maxAge {
					c.purge(key, e)
					continue
				}
				kept = append(kept, e)
			}
			if len(kept) == 0 {
				delete(c.free, key)
			} else {
				c.free[key] = kept
			}
		}
	}

	if logger != nil && evicted > 0 {
		logger.Debugf("rescache: evicted %d entries, cache size %d bytes", evicted, c.cacheSize)
	}
}

func (c *Cache) purge(key TextureKey, e poolEntry) {
	c.driver.DestroyTexture(e.handle)
	c.cacheSize -= e.size
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
