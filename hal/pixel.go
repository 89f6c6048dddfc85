package hal

// RGB565 packs 8-bit channels into rrrrrggggggbbbbb.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888From565 expands a packed pixel. RGB565(RGB888From565(p)) == p.
func RGB888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((uint32(rr) * 255) / 31)
	g = uint8((uint32(gg) * 255) / 63)
	b = uint8((uint32(bb) * 255) / 31)
	return r, g, b
}

// PixelAt reads a big-endian RGB565 pixel from a row-major buffer.
func PixelAt(buf []byte, width, x, y int) uint16 {
	off := (y*width + x) * 2
	if off < 0 || off+1 >= len(buf) {
		return 0
	}
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}
