package hal

// sample16 returns the most significant 16 bits of the little-endian sample
// at pcm[off:off+width].
func sample16(pcm []byte, off, width int) int16 {
	return int16(uint16(pcm[off+width-2]) | uint16(pcm[off+width-1])<<8)
}

// i2sFrames packs mono PCM into 32-bit I2S frames with the sample on both
// channels, left in the high half. It stops when dst is full and returns the
// number of frames packed.
func i2sFrames(dst []uint32, pcm []byte, width int) int {
	n := 0
	for off := 0; off+width <= len(pcm) && n < len(dst); off += width {
		s := uint32(uint16(sample16(pcm, off, width)))
		dst[n] = s<<16 | s
		n++
	}
	return n
}
