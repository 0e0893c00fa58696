package cache

// A VictimFinder decides which line of a full set should be evicted.
type VictimFinder interface {
	FindVictim(set *Set) int
}

// LRUVictimFinder selects the least recently used line to evict.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the way index of the occupied line with the smallest
// last-use stamp. Ties are broken by the lowest way index: the scan only
// moves on a strictly smaller stamp.
func (e *LRUVictimFinder) FindVictim(set *Set) int {
	victim := 0
	min := set.Lines[0].LastUse

	for i := 1; i < set.Occupied; i++ {
		if set.Lines[i].LastUse < min {
			min = set.Lines[i].LastUse
			victim = i
		}
	}

	return victim
}
