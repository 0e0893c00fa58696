package cache

// A Line is the information that is associated with one cache line. Lines
// are stored in place inside their set and are reused across evictions;
// they are never individually allocated or released.
type Line struct {
	// Dirty is true while the line holds a write that has not been
	// flushed to backing storage.
	Dirty bool

	// Tag is the address tag currently resident. It is meaningful only
	// while the line is in use.
	Tag uint64

	// LastUse is the logical timestamp of the most recent access to this
	// line, used for LRU ordering.
	LastUse uint64
}

// A Set is a fixed-capacity group of lines where a certain piece of memory
// can be stored at.
type Set struct {
	// Lines has a fixed length equal to the cache associativity.
	Lines []Line

	// Occupied is the number of lines currently holding valid data.
	// Lines fill left to right, so exactly Lines[0:Occupied] are in use.
	Occupied int
}

// Lookup returns the way index of the line holding tag, scanning only the
// occupied lines. The second return value reports whether the tag is
// resident.
func (s *Set) Lookup(tag uint64) (int, bool) {
	for i := 0; i < s.Occupied; i++ {
		if s.Lines[i].Tag == tag {
			return i, true
		}
	}

	return 0, false
}

// IsFull returns true when every line of the set holds valid data.
func (s *Set) IsFull() bool {
	return s.Occupied == len(s.Lines)
}
