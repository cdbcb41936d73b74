package formats

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/asadandasad/openrw-editor/pkg/encoding"
)

// TXD format errors.
var (
	ErrNotTexDictionary    = errors.New("unsupported root chunk: expected TEXDICTIONARY")
	ErrUnsupportedPlatform = errors.New("unsupported texture platform id")
)

// Texture platform ids found in TEXNATIVE chunks.
const (
	PlatformXbox uint32 = 5
	PlatformPC   uint32 = 8
	PlatformPS2  uint32 = 9
)

// Raster format codes, masked with RasterFormatMask.
const (
	RasterFormatMask uint32 = 0x0F00

	Raster1555 uint32 = 0x0100
	Raster565  uint32 = 0x0200
	Raster4444 uint32 = 0x0300
	RasterLum8 uint32 = 0x0400
	Raster8888 uint32 = 0x0500
	Raster888  uint32 = 0x0600
	Raster555  uint32 = 0x0A00
)

// Compression codes from the TEXNATIVE header.
const (
	CompressionNone uint8 = 0
	CompressionDXT1 uint8 = 1
	CompressionDXT3 uint8 = 3
	CompressionDXT5 uint8 = 5
)

// Texture is a single decoded entry from a texture dictionary. Pixels is
// always RGBA, 4 bytes per texel, Width*Height*4 long.
type Texture struct {
	Name         string
	MaskName     string
	Width        int
	Height       int
	Depth        uint8
	MipmapCount  uint8
	RasterFormat uint32
	Compression  uint8
	HasAlpha     bool
	Pixels       []byte
}

// Image returns the decoded pixels as an image. The pixel buffer is
// copied so the texture stays immutable.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	copy(img.Pix, t.Pixels)
	return img
}

// TXD is a parsed texture dictionary. Textures that had to be skipped
// (unsupported platform, payload inconsistent with the chunk bound) are
// reported in Diagnostics.
type TXD struct {
	Textures    []Texture
	Diagnostics []Diagnostic
}

// GetTexture returns the texture with the given name, or nil.
func (t *TXD) GetTexture(name string) *Texture {
	for i := range t.Textures {
		if t.Textures[i].Name == name {
			return &t.Textures[i]
		}
	}
	return nil
}

// ParseTXD parses a texture dictionary from raw bytes.
func ParseTXD(data []byte) (*TXD, error) {
	cur := NewChunkCursor(data)

	root, err := cur.ReadHeader()
	if err != nil {
		return nil, err
	}
	if root.Type != ChunkTexDictionary {
		return nil, fmt.Errorf("%w: got %s", ErrNotTexDictionary, root.Type)
	}
	dictEnd, err := cur.BoundEnd(root)
	if err != nil {
		return nil, err
	}

	dataEnd, err := readDataChunk(cur, ChunkTexDictionary)
	if err != nil {
		return nil, err
	}
	// Declared texture count; iteration runs to the dictionary bound
	// instead of trusting it.
	if _, err := cur.Uint16(); err != nil {
		return nil, err
	}
	if err := cur.SkipTo(dataEnd); err != nil {
		return nil, err
	}

	txd := &TXD{}
	for cur.Pos() < dictEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return nil, err
		}
		if child.Type != ChunkTexNative {
			if err := cur.Skip(child); err != nil {
				return nil, err
			}
			continue
		}
		texEnd, err := cur.BoundEnd(child)
		if err != nil {
			return nil, err
		}
		tex, diag := parseTexNative(cur, texEnd)
		if diag != nil {
			txd.Diagnostics = append(txd.Diagnostics, *diag)
		} else {
			txd.Textures = append(txd.Textures, *tex)
		}
		// Extension chunks after the data, or the remains of a skipped
		// texture, are passed over wholesale.
		if err := cur.SkipTo(texEnd); err != nil {
			return nil, err
		}
	}
	return txd, nil
}

// ParseTXDFile parses a texture dictionary file from disk.
func ParseTXDFile(path string) (*TXD, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TXD file: %w", err)
	}
	return ParseTXD(data)
}

// parseTexNative decodes one TEXNATIVE chunk. Recoverable problems are
// returned as a diagnostic; the caller skips to the chunk bound and keeps
// scanning the dictionary.
func parseTexNative(cur *ChunkCursor, texEnd int64) (*Texture, *Diagnostic) {
	start := cur.Pos()
	fail := func(format string, args ...interface{}) (*Texture, *Diagnostic) {
		d := offsetDiag(start, format, args...)
		return nil, &d
	}

	dataEnd, err := readDataChunk(cur, ChunkTexNative)
	if err != nil {
		return fail("texture native: %v", err)
	}
	if dataEnd > texEnd {
		return fail("texture data chunk overruns its parent")
	}

	platform, err := cur.Uint32()
	if err != nil {
		return fail("texture native: %v", err)
	}
	if platform != PlatformPC && platform != PlatformPS2 && platform != PlatformXbox {
		return fail("%v: %d", ErrUnsupportedPlatform, platform)
	}

	// Filter and u/v addressing words, unused.
	for i := 0; i < 3; i++ {
		if _, err := cur.Uint32(); err != nil {
			return fail("texture native: %v", err)
		}
	}

	nameRaw, err := cur.Bytes(32)
	if err != nil {
		return fail("texture native: %v", err)
	}
	maskRaw, err := cur.Bytes(32)
	if err != nil {
		return fail("texture native: %v", err)
	}

	tex := Texture{
		Name:     encoding.FixedString(nameRaw),
		MaskName: encoding.FixedString(maskRaw),
	}

	if tex.RasterFormat, err = cur.Uint32(); err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	if _, err = cur.Uint32(); err != nil { // D3D format, unused
		return fail("texture %q: %v", tex.Name, err)
	}
	width, err := cur.Uint16()
	if err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	height, err := cur.Uint16()
	if err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	tex.Width, tex.Height = int(width), int(height)
	if tex.Depth, err = cur.Uint8(); err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	if tex.MipmapCount, err = cur.Uint8(); err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	if _, err = cur.Uint8(); err != nil { // raster type, unused
		return fail("texture %q: %v", tex.Name, err)
	}
	if tex.Compression, err = cur.Uint8(); err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}
	tex.HasAlpha = tex.RasterFormat&Raster8888 != 0

	size := pixelDataSize(tex.Width, tex.Height, tex.Depth, tex.Compression)
	if size < 0 || int64(size) > dataEnd-cur.Pos() {
		return fail("texture %q: pixel data (%d bytes) exceeds chunk payload (%d bytes)",
			tex.Name, size, dataEnd-cur.Pos())
	}
	raw, err := cur.Bytes(size)
	if err != nil {
		return fail("texture %q: %v", tex.Name, err)
	}

	// Only the top mip level is decoded; further levels remain in the
	// data chunk and are skipped with it.
	switch tex.Compression {
	case CompressionDXT1:
		tex.Pixels = decodeDXT(raw, tex.Width, tex.Height, true)
	case CompressionDXT3, CompressionDXT5:
		tex.Pixels = decodeDXT(raw, tex.Width, tex.Height, false)
	default:
		tex.Pixels = decodeUncompressed(raw, tex.Width, tex.Height, tex.RasterFormat)
	}
	return &tex, nil
}

// pixelDataSize returns the byte length of the top mip level, or -1 when
// the depth is unusable.
func pixelDataSize(width, height int, depth, compression uint8) int {
	switch compression {
	case CompressionDXT1:
		return blockCount(width) * blockCount(height) * 8
	case CompressionDXT3, CompressionDXT5:
		return blockCount(width) * blockCount(height) * 16
	}
	pixels := width * height
	switch depth {
	case 32:
		return pixels * 4
	case 24:
		return pixels * 3
	case 16:
		return pixels * 2
	case 8:
		return pixels
	case 4:
		return pixels / 2
	}
	return -1
}

func blockCount(dim int) int {
	n := (dim + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// decodeUncompressed maps raw raster bytes to RGBA. Unrecognized raster
// formats fall back to opaque white rather than failing.
func decodeUncompressed(data []byte, width, height int, rasterFormat uint32) []byte {
	out := make([]byte, width*height*4)
	switch rasterFormat & RasterFormatMask {
	case Raster8888:
		copy(out, data)
	case Raster888:
		for i := 0; i+2 < len(data) && i/3*4+3 < len(out); i += 3 {
			o := i / 3 * 4
			out[o] = data[i]
			out[o+1] = data[i+1]
			out[o+2] = data[i+2]
			out[o+3] = 0xFF
		}
	case Raster565:
		for i := 0; i+1 < len(data) && i/2*4+3 < len(out); i += 2 {
			v := uint16(data[i]) | uint16(data[i+1])<<8
			o := i / 2 * 4
			out[o] = uint8(v>>11&0x1F) << 3
			out[o+1] = uint8(v>>5&0x3F) << 2
			out[o+2] = uint8(v&0x1F) << 3
			out[o+3] = 0xFF
		}
	default:
		for i := range out {
			out[i] = 0xFF
		}
	}
	return out
}
