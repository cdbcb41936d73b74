package formats

import "encoding/binary"

// decodeDXT expands block-compressed pixel data into an RGBA buffer.
// Blocks cover the image in raster order, 4x4 texels each; edge blocks are
// clipped to the image bounds.
//
// All three DXT variants are decoded with the color-only DXT1 scheme: the
// separate alpha blocks of DXT3/DXT5 are not interpreted, matching the
// behavior of the legacy tool this parser is bit-compatible with.
func decodeDXT(data []byte, width, height int, isDXT1 bool) []byte {
	out := make([]byte, width*height*4)
	blocksW := blockCount(width)
	blocksH := blockCount(height)

	var texels [16][4]uint8
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			off := (by*blocksW + bx) * 8
			if off+8 > len(data) {
				return out
			}
			decodeDXTBlock(data[off:off+8], isDXT1, &texels)

			for py := 0; py < 4 && by*4+py < height; py++ {
				for px := 0; px < 4 && bx*4+px < width; px++ {
					o := ((by*4+py)*width + bx*4 + px) * 4
					copy(out[o:o+4], texels[py*4+px][:])
				}
			}
		}
	}
	return out
}

// decodeDXTBlock expands one 8-byte color block into 16 RGBA texels.
func decodeDXTBlock(block []byte, isDXT1 bool, out *[16][4]uint8) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])

	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)

	var palette [4][4]uint8
	palette[0] = [4]uint8{r0, g0, b0, 0xFF}
	palette[1] = [4]uint8{r1, g1, b1, 0xFF}

	if c0 > c1 || !isDXT1 {
		// Four-color mode: two interpolated mid-colors at 2:1 and 1:2.
		palette[2] = [4]uint8{
			uint8((2*uint16(r0) + uint16(r1)) / 3),
			uint8((2*uint16(g0) + uint16(g1)) / 3),
			uint8((2*uint16(b0) + uint16(b1)) / 3),
			0xFF,
		}
		palette[3] = [4]uint8{
			uint8((uint16(r0) + 2*uint16(r1)) / 3),
			uint8((uint16(g0) + 2*uint16(g1)) / 3),
			uint8((uint16(b0) + 2*uint16(b1)) / 3),
			0xFF,
		}
	} else {
		// Three-color mode: averaged mid-color plus a transparent entry.
		palette[2] = [4]uint8{
			uint8((uint16(r0) + uint16(r1)) / 2),
			uint8((uint16(g0) + uint16(g1)) / 2),
			uint8((uint16(b0) + uint16(b1)) / 2),
			0xFF,
		}
		palette[3] = [4]uint8{}
	}

	indices := binary.LittleEndian.Uint32(block[4:8])
	for i := 0; i < 16; i++ {
		out[i] = palette[indices>>(2*uint(i))&0x3]
	}
}

// expand565 widens an RGB565 color to 8-bit channels.
func expand565(c uint16) (r, g, b uint8) {
	return uint8(c>>11&0x1F) << 3, uint8(c>>5&0x3F) << 2, uint8(c&0x1F) << 3
}
