// Package cache models a set-associative cache with LRU replacement and a
// write-back, write-allocate policy. The model tracks tags and dirty state
// only; no data payload is ever stored or moved.
package cache

import (
	"github.com/sarchlab/csim/sim"
)

// A Cache is the full model of one set-associative cache. It owns all the
// sets, decomposes addresses, and executes the per-access hit/miss/evict
// decision, updating its Stats as a side effect.
//
// A Cache is not safe for concurrent use. Accesses are processed one at a
// time, in trace order.
type Cache struct {
	*sim.HookableBase

	name string

	sets          []Set
	associativity int
	setIndexBits  int
	log2BlockSize int

	victimFinder VictimFinder

	// accessCount is the global logical clock. It increments exactly once
	// per processed access. The stamp written to a line is the value
	// before the increment, so the first access stamps 0.
	accessCount uint64

	stats Stats
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// NumSets returns the number of sets in the cache.
func (c *Cache) NumSets() int {
	return len(c.sets)
}

// Associativity returns the number of lines per set.
func (c *Cache) Associativity() int {
	return c.associativity
}

// BlockSize returns the block size in bytes.
func (c *Cache) BlockSize() uint64 {
	return 1 << uint(c.log2BlockSize)
}

// TotalByteSize returns the maximum number of bytes the cache can hold.
func (c *Cache) TotalByteSize() uint64 {
	return uint64(len(c.sets)) * uint64(c.associativity) * c.BlockSize()
}

// Stats returns a copy of the statistics accumulated so far.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Decompose splits an address into the set index and tag for this cache's
// geometry.
func (c *Cache) Decompose(addr uint64) (setID int, tag uint64) {
	set, tag := DecomposeAddress(addr, c.setIndexBits, c.log2BlockSize)
	return int(set), tag
}

// Access processes one memory access against the cache. The set index and
// tag must come from Decompose or follow the same decomposition. A write
// marks the touched line dirty; a read never clears an existing dirty bit.
// Access never fails: every access resolves to exactly one of hit, miss
// without eviction, or miss with eviction.
func (c *Cache) Access(setID int, tag uint64, isWrite bool) {
	set := &c.sets[setID]
	blockSize := c.BlockSize()

	var info AccessInfo

	wayID, found := set.Lookup(tag)
	switch {
	case found:
		info = c.hit(set, wayID, isWrite, blockSize)
	case !set.IsFull():
		info = c.place(set, isWrite, tag, blockSize)
	default:
		info = c.evictAndPlace(set, isWrite, tag, blockSize)
	}

	info.SetID = setID
	info.Tag = tag
	info.IsWrite = isWrite
	info.Seq = c.accessCount
	info.BlockAddr = c.blockAddr(setID, tag)

	c.accessCount++

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    info.Result.hookPos(),
		Item:   info,
	})
}

func (c *Cache) hit(
	set *Set,
	wayID int,
	isWrite bool,
	blockSize uint64,
) AccessInfo {
	line := &set.Lines[wayID]
	line.LastUse = c.accessCount

	if isWrite && !line.Dirty {
		line.Dirty = true
		c.stats.DirtyBytes += blockSize
	}

	c.stats.Hits++

	return AccessInfo{Result: AccessHit}
}

func (c *Cache) place(
	set *Set,
	isWrite bool,
	tag uint64,
	blockSize uint64,
) AccessInfo {
	line := &set.Lines[set.Occupied]
	line.Tag = tag
	line.Dirty = isWrite
	line.LastUse = c.accessCount
	set.Occupied++

	if isWrite {
		c.stats.DirtyBytes += blockSize
	}

	c.stats.Misses++

	return AccessInfo{Result: AccessMiss}
}

func (c *Cache) evictAndPlace(
	set *Set,
	isWrite bool,
	tag uint64,
	blockSize uint64,
) AccessInfo {
	wayID := c.victimFinder.FindVictim(set)
	line := &set.Lines[wayID]

	info := AccessInfo{
		Result:      AccessMissEvict,
		VictimTag:   line.Tag,
		VictimDirty: line.Dirty,
	}

	if line.Dirty {
		c.stats.DirtyBytes -= blockSize
		c.stats.DirtyEvictions += blockSize
	}

	line.Tag = tag
	line.Dirty = isWrite
	line.LastUse = c.accessCount

	if isWrite {
		c.stats.DirtyBytes += blockSize
	}

	c.stats.Misses++
	c.stats.Evictions++

	return info
}

// blockAddr reassembles the block-aligned address from a set index and tag.
func (c *Cache) blockAddr(setID int, tag uint64) uint64 {
	return tag<<uint(c.setIndexBits+c.log2BlockSize) |
		uint64(setID)<<uint(c.log2BlockSize)
}
