package cache

import (
	"fmt"

	"github.com/sarchlab/csim/sim"
)

// Builder can build caches.
type Builder struct {
	setIndexBits  int
	associativity int
	log2BlockSize int
	victimFinder  VictimFinder
}

// MakeBuilder creates a new builder with default geometry.
func MakeBuilder() Builder {
	return Builder{
		setIndexBits:  4,
		associativity: 4,
		log2BlockSize: 6,
	}
}

// WithSetIndexBits sets the number of address bits used to select a set.
// The cache will have 2^s sets. Zero is valid and means a single set.
func (b Builder) WithSetIndexBits(s int) Builder {
	b.setIndexBits = s
	return b
}

// WithAssociativity sets the number of lines per set.
func (b Builder) WithAssociativity(e int) Builder {
	b.associativity = e
	return b
}

// WithLog2BlockSize sets the log2 of the block size in bytes.
func (b Builder) WithLog2BlockSize(n int) Builder {
	b.log2BlockSize = n
	return b
}

// WithVictimFinder sets the replacement policy. The default is LRU.
func (b Builder) WithVictimFinder(vf VictimFinder) Builder {
	b.victimFinder = vf
	return b
}

// Build builds a cache.
func (b Builder) Build(name string) *Cache {
	b.parametersMustBeValid()

	vf := b.victimFinder
	if vf == nil {
		vf = NewLRUVictimFinder()
	}

	c := &Cache{
		HookableBase:  sim.NewHookableBase(),
		name:          name,
		associativity: b.associativity,
		setIndexBits:  b.setIndexBits,
		log2BlockSize: b.log2BlockSize,
		victimFinder:  vf,
	}

	numSets := 1 << uint(b.setIndexBits)
	c.sets = make([]Set, numSets)
	for i := range c.sets {
		c.sets[i].Lines = make([]Line, b.associativity)
	}

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.associativity <= 0 {
		panic(fmt.Sprintf(
			"associativity must be positive, got %d", b.associativity))
	}

	if b.setIndexBits < 0 || b.log2BlockSize < 0 {
		panic("set index bits and block offset bits must be non-negative")
	}

	if b.setIndexBits+b.log2BlockSize > 64 {
		panic(fmt.Sprintf(
			"set index bits (%d) plus block offset bits (%d) exceed the "+
				"64-bit address width",
			b.setIndexBits, b.log2BlockSize))
	}
}
