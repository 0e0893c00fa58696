package cache

import (
	"github.com/sarchlab/csim/sim"
)

// HookPosAccessHit marks that an access found its tag resident.
var HookPosAccessHit = &sim.HookPos{Name: "Cache Access Hit"}

// HookPosAccessMiss marks that an access missed and filled a free line.
var HookPosAccessMiss = &sim.HookPos{Name: "Cache Access Miss"}

// HookPosAccessEvict marks that an access missed and displaced a resident
// line.
var HookPosAccessEvict = &sim.HookPos{Name: "Cache Access Evict"}

// AccessResult is the outcome of one cache access.
type AccessResult int

// The three mutually exclusive outcomes of an access.
const (
	AccessHit AccessResult = iota
	AccessMiss
	AccessMissEvict
)

func (r AccessResult) String() string {
	switch r {
	case AccessHit:
		return "hit"
	case AccessMiss:
		return "miss"
	case AccessMissEvict:
		return "miss eviction"
	default:
		return "unknown"
	}
}

func (r AccessResult) hookPos() *sim.HookPos {
	switch r {
	case AccessHit:
		return HookPosAccessHit
	case AccessMiss:
		return HookPosAccessMiss
	default:
		return HookPosAccessEvict
	}
}

// AccessInfo describes one completed access. It is delivered to hooks as
// the HookCtx item after the cache state and statistics are updated.
type AccessInfo struct {
	// Seq is the logical timestamp the access was stamped with.
	Seq uint64

	// BlockAddr is the block-aligned address reassembled from the set
	// index and tag.
	BlockAddr uint64

	SetID   int
	Tag     uint64
	IsWrite bool

	Result AccessResult

	// VictimTag and VictimDirty describe the displaced line. They are
	// meaningful only when Result is AccessMissEvict.
	VictimTag   uint64
	VictimDirty bool
}
