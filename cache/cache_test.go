package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/csim/sim"
)

// residentDirtyBytes walks every set and sums the block size over the
// occupied lines that are dirty.
func residentDirtyBytes(c *Cache) uint64 {
	total := uint64(0)
	for i := range c.sets {
		set := &c.sets[i]
		for j := 0; j < set.Occupied; j++ {
			if set.Lines[j].Dirty {
				total += c.BlockSize()
			}
		}
	}

	return total
}

type accessRecorder struct {
	infos []AccessInfo
}

func (r *accessRecorder) Func(ctx sim.HookCtx) {
	r.infos = append(r.infos, ctx.Item.(AccessInfo))
}

var _ = Describe("Cache", func() {
	var c *Cache

	BeforeEach(func() {
		c = MakeBuilder().
			WithSetIndexBits(2).
			WithAssociativity(2).
			WithLog2BlockSize(4).
			Build("L1")
	})

	It("should report its geometry", func() {
		Expect(c.NumSets()).To(Equal(4))
		Expect(c.Associativity()).To(Equal(2))
		Expect(c.BlockSize()).To(Equal(uint64(16)))
		Expect(c.TotalByteSize()).To(Equal(uint64(128)))
	})

	It("should miss on the first access and hit on the repeat", func() {
		c.Access(0, 0x1, false)
		c.Access(0, 0x1, false)

		stats := c.Stats()
		Expect(stats.Misses).To(Equal(uint64(1)))
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Evictions).To(BeZero())
	})

	It("should keep read hits idempotent", func() {
		c.Access(0, 0x1, false)
		before := c.Stats()

		c.Access(0, 0x1, false)
		c.Access(0, 0x1, false)

		stats := c.Stats()
		Expect(stats.Hits).To(Equal(before.Hits + 2))
		Expect(stats.DirtyBytes).To(Equal(before.DirtyBytes))
	})

	It("should mark a clean line dirty on a write hit, once", func() {
		c.Access(1, 0x2, false)
		c.Access(1, 0x2, true)

		Expect(c.Stats().DirtyBytes).To(Equal(uint64(16)))

		c.Access(1, 0x2, true)

		Expect(c.Stats().DirtyBytes).To(Equal(uint64(16)))
		Expect(c.Stats().Hits).To(Equal(uint64(2)))
	})

	It("should not clear the dirty bit on a read hit", func() {
		c.Access(1, 0x2, true)
		c.Access(1, 0x2, false)

		Expect(c.sets[1].Lines[0].Dirty).To(BeTrue())
		Expect(c.Stats().DirtyBytes).To(Equal(uint64(16)))
	})

	It("should fill lines left to right before evicting", func() {
		c.Access(2, 0xa, false)
		c.Access(2, 0xb, false)

		set := &c.sets[2]
		Expect(set.Occupied).To(Equal(2))
		Expect(set.Lines[0].Tag).To(Equal(uint64(0xa)))
		Expect(set.Lines[1].Tag).To(Equal(uint64(0xb)))
		Expect(c.Stats().Evictions).To(BeZero())
	})

	It("should evict only when the set is full and the tag is absent",
		func() {
			c.Access(0, 0xa, false)
			c.Access(0, 0xb, false)
			c.Access(0, 0xa, false) // hit, no eviction
			Expect(c.Stats().Evictions).To(BeZero())

			c.Access(0, 0xc, false)
			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
			Expect(c.sets[0].Occupied).To(Equal(2))
		})

	It("should evict the least recently used line, not the least "+
		"recently inserted", func() {
		c.Access(0, 0xa, false) // miss
		c.Access(0, 0xb, false) // miss
		c.Access(0, 0xa, false) // hit, refreshes A
		c.Access(0, 0xc, false) // miss, evicts B

		set := &c.sets[0]
		tags := []uint64{set.Lines[0].Tag, set.Lines[1].Tag}
		Expect(tags).To(ContainElement(uint64(0xa)))
		Expect(tags).To(ContainElement(uint64(0xc)))
		Expect(tags).NotTo(ContainElement(uint64(0xb)))
	})

	It("should conserve dirty bytes after every access", func() {
		script := []struct {
			setID   int
			tag     uint64
			isWrite bool
		}{
			{0, 0x1, true},
			{0, 0x2, false},
			{0, 0x1, false},
			{0, 0x3, true}, // evicts one of the residents
			{1, 0x1, true},
			{0, 0x4, false}, // another eviction
			{1, 0x1, true},
			{3, 0x9, true},
			{3, 0x9, false},
		}

		for _, a := range script {
			c.Access(a.setID, a.tag, a.isWrite)
			Expect(c.Stats().DirtyBytes).To(
				Equal(residentDirtyBytes(c)),
				"dirty bytes diverged after access to set %d tag %#x",
				a.setID, a.tag)
		}
	})

	It("should maintain the capacity invariant at all times", func() {
		for i := uint64(0); i < 32; i++ {
			c.Access(int(i%4), i, i%3 == 0)

			for s := range c.sets {
				Expect(c.sets[s].Occupied).To(BeNumerically(">=", 0))
				Expect(c.sets[s].Occupied).To(
					BeNumerically("<=", c.Associativity()))
			}
		}
	})

	It("should stamp the first access with counter value 0", func() {
		c.Access(0, 0x1, false)

		Expect(c.sets[0].Lines[0].LastUse).To(Equal(uint64(0)))
		Expect(c.accessCount).To(Equal(uint64(1)))
	})

	It("should invoke hooks with the access outcome", func() {
		rec := &accessRecorder{}
		c.AcceptHook(rec)

		c.Access(0, 0x1, true)
		c.Access(0, 0x1, false)
		c.Access(0, 0x2, false)
		c.Access(0, 0x3, false)

		Expect(rec.infos).To(HaveLen(4))
		Expect(rec.infos[0].Result).To(Equal(AccessMiss))
		Expect(rec.infos[1].Result).To(Equal(AccessHit))
		Expect(rec.infos[2].Result).To(Equal(AccessMiss))
		Expect(rec.infos[3].Result).To(Equal(AccessMissEvict))
		Expect(rec.infos[3].VictimTag).To(Equal(uint64(0x1)))
		Expect(rec.infos[3].VictimDirty).To(BeTrue())
		Expect(rec.infos[3].Seq).To(Equal(uint64(3)))
	})

	It("should reassemble block-aligned addresses for hooks", func() {
		rec := &accessRecorder{}
		c.AcceptHook(rec)

		setID, tag := c.Decompose(0x1234)
		c.Access(setID, tag, false)

		// b=4, s=2: the low 4 offset bits are dropped.
		Expect(rec.infos[0].BlockAddr).To(Equal(uint64(0x1230)))
	})
})

var _ = Describe("Cache with a mocked victim finder", func() {
	var (
		mockCtrl *gomock.Controller
		vf       *MockVictimFinder
		c        *Cache
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		vf = NewMockVictimFinder(mockCtrl)
		c = MakeBuilder().
			WithSetIndexBits(0).
			WithAssociativity(2).
			WithLog2BlockSize(3).
			WithVictimFinder(vf).
			Build("L1")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not consult the victim finder on hits or free fills", func() {
		c.Access(0, 0x1, false)
		c.Access(0, 0x2, false)
		c.Access(0, 0x1, false)
	})

	It("should overwrite the way the victim finder chooses", func() {
		c.Access(0, 0x1, false)
		c.Access(0, 0x2, false)

		vf.EXPECT().FindVictim(&c.sets[0]).Return(1)

		c.Access(0, 0x3, false)

		Expect(c.sets[0].Lines[0].Tag).To(Equal(uint64(0x1)))
		Expect(c.sets[0].Lines[1].Tag).To(Equal(uint64(0x3)))
	})
})

var _ = Describe("Cache single-set configurations", func() {
	It("should map every address to the one set when s=0", func() {
		c := MakeBuilder().
			WithSetIndexBits(0).
			WithAssociativity(4).
			WithLog2BlockSize(0).
			Build("L1")

		for _, addr := range []uint64{0, 5, 0x1000, 0xffffffffffffffff} {
			setID, _ := c.Decompose(addr)
			Expect(setID).To(BeZero())
		}
	})

	It("should replay the s=1 E=1 b=0 scenario", func() {
		c := MakeBuilder().
			WithSetIndexBits(1).
			WithAssociativity(1).
			WithLog2BlockSize(0).
			Build("L1")

		// Addresses 0 and 1 differ in bit 0, the set index bit, so they
		// land in different sets with the same tag.
		setID, tag := c.Decompose(0)
		c.Access(setID, tag, false) // L 0,1

		setID, tag = c.Decompose(1)
		c.Access(setID, tag, true) // S 1,1

		setID, tag = c.Decompose(0)
		c.Access(setID, tag, false) // L 0,1

		stats := c.Stats()
		Expect(stats.Misses).To(Equal(uint64(2)))
		Expect(stats.Hits).To(Equal(uint64(1)))
		Expect(stats.Evictions).To(BeZero())
	})

	It("should replay the s=0 E=1 b=0 dirty eviction scenario", func() {
		c := MakeBuilder().
			WithSetIndexBits(0).
			WithAssociativity(1).
			WithLog2BlockSize(0).
			Build("L1")

		setID, tag := c.Decompose(0)
		c.Access(setID, tag, true) // S 0,1

		Expect(c.Stats().DirtyBytes).To(Equal(uint64(1)))

		setID, tag = c.Decompose(16)
		c.Access(setID, tag, false) // L 16,1

		stats := c.Stats()
		Expect(stats.Misses).To(Equal(uint64(2)))
		Expect(stats.Evictions).To(Equal(uint64(1)))
		Expect(stats.DirtyEvictions).To(Equal(uint64(1)))
		Expect(stats.DirtyBytes).To(BeZero())
	})
})

var _ = Describe("Builder", func() {
	It("should reject a non-positive associativity", func() {
		Expect(func() {
			MakeBuilder().WithAssociativity(0).Build("L1")
		}).To(Panic())
	})

	It("should reject negative bit widths", func() {
		Expect(func() {
			MakeBuilder().WithSetIndexBits(-1).Build("L1")
		}).To(Panic())
	})

	It("should reject geometries wider than the address", func() {
		Expect(func() {
			MakeBuilder().
				WithSetIndexBits(40).
				WithLog2BlockSize(30).
				Build("L1")
		}).To(Panic())
	})
})
