package cache

// DecomposeAddress splits a 64-bit address into a set index and a tag.
// The low blockBits bits are the block offset and select nothing. The
// setBits bits immediately above the offset select the set; with setBits
// equal to zero no address bit participates and the set index is always
// zero. The remaining high-order bits form the tag.
func DecomposeAddress(addr uint64, setBits, blockBits int) (setID, tag uint64) {
	if setBits == 0 {
		setID = 0
	} else {
		setID = (addr >> uint(blockBits)) & ((1 << uint(setBits)) - 1)
	}

	tag = addr >> uint(blockBits+setBits)

	return setID, tag
}
