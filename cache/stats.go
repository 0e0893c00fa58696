package cache

// Stats accumulates the outcome of every access processed by a Cache. It is
// a passive record: the Cache mutates it as a side effect of Access and
// nothing else writes to it.
type Stats struct {
	// Hits counts accesses whose tag was resident in the selected set.
	Hits uint64

	// Misses counts accesses whose tag was not resident.
	Misses uint64

	// Evictions counts misses that displaced a resident line.
	Evictions uint64

	// DirtyBytes is the number of bytes currently held in dirty lines
	// across the whole cache. It rises when a clean line turns dirty and
	// falls when a dirty line is evicted.
	DirtyBytes uint64

	// DirtyEvictions is the cumulative number of bytes evicted while
	// dirty. It never decreases.
	DirtyEvictions uint64
}
