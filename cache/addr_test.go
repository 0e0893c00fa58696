package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DecomposeAddress", func() {
	It("should split a typical address", func() {
		// b=5, s=5: offset 0x15, set 0x12, tag 0xc.
		setID, tag := DecomposeAddress(0x3255, 5, 5)

		Expect(setID).To(Equal(uint64(0x12)))
		Expect(tag).To(Equal(uint64(0xc)))
	})

	It("should always select set 0 when there are no set index bits", func() {
		for _, addr := range []uint64{0, 1, 0x10, 0xdeadbeef, ^uint64(0)} {
			setID, tag := DecomposeAddress(addr, 0, 4)

			Expect(setID).To(Equal(uint64(0)))
			Expect(tag).To(Equal(addr >> 4))
		}
	})

	It("should use the lowest bit as the set index with s=1, b=0", func() {
		setID, tag := DecomposeAddress(0, 1, 0)
		Expect(setID).To(Equal(uint64(0)))
		Expect(tag).To(Equal(uint64(0)))

		setID, tag = DecomposeAddress(1, 1, 0)
		Expect(setID).To(Equal(uint64(1)))
		Expect(tag).To(Equal(uint64(0)))
	})

	It("should handle a set index width near 64", func() {
		addr := uint64(0xfedcba9876543210)

		setID, tag := DecomposeAddress(addr, 63, 0)

		Expect(setID).To(Equal(addr & ((1 << 63) - 1)))
		Expect(tag).To(Equal(addr >> 63))
	})

	It("should produce a zero tag when set and offset bits cover the "+
		"full address", func() {
		addr := uint64(0xfedcba9876543210)

		setID, tag := DecomposeAddress(addr, 60, 4)

		Expect(setID).To(Equal(addr >> 4))
		Expect(tag).To(Equal(uint64(0)))
	})

	It("should not take set index bits from the block offset", func() {
		// Addresses differing only inside the block offset share a set.
		setA, tagA := DecomposeAddress(0x40, 4, 6)
		setB, tagB := DecomposeAddress(0x7f, 4, 6)

		Expect(setA).To(Equal(setB))
		Expect(tagA).To(Equal(tagB))
	})
})
