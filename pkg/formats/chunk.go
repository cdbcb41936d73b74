package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Chunk stream errors.
var (
	ErrTruncatedChunk = errors.New("truncated chunk stream")
	ErrMalformedChunk = errors.New("malformed chunk: declared size exceeds buffer")
)

// ChunkType identifies a section in a DFF/TXD container.
type ChunkType uint32

// Known chunk types. Anything else is skippable via its declared size.
const (
	ChunkData          ChunkType = 0x01
	ChunkString        ChunkType = 0x02
	ChunkExtension     ChunkType = 0x03
	ChunkTexture       ChunkType = 0x06
	ChunkMaterial      ChunkType = 0x07
	ChunkMaterialList  ChunkType = 0x08
	ChunkFrameList     ChunkType = 0x0E
	ChunkGeometry      ChunkType = 0x0F
	ChunkClump         ChunkType = 0x10
	ChunkAtomic        ChunkType = 0x14
	ChunkTexNative     ChunkType = 0x15
	ChunkTexDictionary ChunkType = 0x16
	ChunkGeometryList  ChunkType = 0x1A
)

// String returns a human-readable chunk type name.
func (t ChunkType) String() string {
	switch t {
	case ChunkData:
		return "DATA"
	case ChunkString:
		return "STRING"
	case ChunkExtension:
		return "EXTENSION"
	case ChunkTexture:
		return "TEXTURE"
	case ChunkMaterial:
		return "MATERIAL"
	case ChunkMaterialList:
		return "MATERIALLIST"
	case ChunkFrameList:
		return "FRAMELIST"
	case ChunkGeometry:
		return "GEOMETRY"
	case ChunkClump:
		return "CLUMP"
	case ChunkAtomic:
		return "ATOMIC"
	case ChunkTexNative:
		return "TEXNATIVE"
	case ChunkTexDictionary:
		return "TEXDICTIONARY"
	case ChunkGeometryList:
		return "GEOMETRYLIST"
	default:
		return fmt.Sprintf("Unknown(0x%X)", uint32(t))
	}
}

// chunkHeaderSize is the fixed on-disk header: type, size, version (u32 each).
// Declared sizes include these 12 bytes.
const chunkHeaderSize = 12

// ChunkHeader is the 12-byte record prefixing every chunk.
type ChunkHeader struct {
	Type    ChunkType
	Size    uint32
	Version uint32
}

// ChunkCursor is a bounded little-endian reader over a chunk container.
// It tracks an absolute position inside the buffer so that declared chunk
// sizes can be validated against the real input length before they are
// trusted for skipping or allocation.
type ChunkCursor struct {
	data []byte
	pos  int64
}

// NewChunkCursor returns a cursor positioned at the start of data.
func NewChunkCursor(data []byte) *ChunkCursor {
	return &ChunkCursor{data: data}
}

// Pos returns the current byte offset.
func (c *ChunkCursor) Pos() int64 { return c.pos }

// Len returns the total buffer length.
func (c *ChunkCursor) Len() int64 { return int64(len(c.data)) }

// Remaining returns the number of unread bytes.
func (c *ChunkCursor) Remaining() int64 { return int64(len(c.data)) - c.pos }

// AtEnd reports whether the cursor has consumed the whole buffer.
func (c *ChunkCursor) AtEnd() bool { return c.pos >= int64(len(c.data)) }

// ReadHeader reads the next 12-byte chunk header.
func (c *ChunkCursor) ReadHeader() (ChunkHeader, error) {
	if c.Remaining() < chunkHeaderSize {
		return ChunkHeader{}, fmt.Errorf("%w: chunk header at offset %d", ErrTruncatedChunk, c.pos)
	}
	h := ChunkHeader{
		Type:    ChunkType(binary.LittleEndian.Uint32(c.data[c.pos:])),
		Size:    binary.LittleEndian.Uint32(c.data[c.pos+4:]),
		Version: binary.LittleEndian.Uint32(c.data[c.pos+8:]),
	}
	c.pos += chunkHeaderSize
	return h, nil
}

// BoundEnd computes the absolute offset where the chunk's payload ends.
// The declared size counts from the start of the header, so the payload
// spans [Pos, Pos+Size-12). A declared size smaller than the header or an
// end past the buffer is rejected: declared sizes come from untrusted input.
func (c *ChunkCursor) BoundEnd(h ChunkHeader) (int64, error) {
	if h.Size < chunkHeaderSize {
		return 0, fmt.Errorf("%w: %s size %d at offset %d", ErrMalformedChunk, h.Type, h.Size, c.pos)
	}
	end := c.pos + int64(h.Size) - chunkHeaderSize
	if end > int64(len(c.data)) {
		return 0, fmt.Errorf("%w: %s ends at %d, buffer is %d bytes", ErrMalformedChunk, h.Type, end, len(c.data))
	}
	return end, nil
}

// SkipTo moves the cursor to an absolute offset previously obtained from
// BoundEnd. Rewinding is not supported.
func (c *ChunkCursor) SkipTo(offset int64) error {
	if offset < c.pos || offset > int64(len(c.data)) {
		return fmt.Errorf("%w: skip to %d from %d", ErrMalformedChunk, offset, c.pos)
	}
	c.pos = offset
	return nil
}

// Skip advances past the chunk's entire payload.
func (c *ChunkCursor) Skip(h ChunkHeader) error {
	end, err := c.BoundEnd(h)
	if err != nil {
		return err
	}
	return c.SkipTo(end)
}

// Bytes reads exactly n raw bytes.
func (c *ChunkCursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < int64(n) {
		return nil, fmt.Errorf("%w: %d bytes at offset %d", ErrTruncatedChunk, n, c.pos)
	}
	b := c.data[c.pos : c.pos+int64(n)]
	c.pos += int64(n)
	return b, nil
}

// Uint8 reads one byte.
func (c *ChunkCursor) Uint8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, fmt.Errorf("%w: u8 at offset %d", ErrTruncatedChunk, c.pos)
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

// Uint16 reads a little-endian u16.
func (c *ChunkCursor) Uint16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, fmt.Errorf("%w: u16 at offset %d", ErrTruncatedChunk, c.pos)
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// Uint32 reads a little-endian u32.
func (c *ChunkCursor) Uint32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, fmt.Errorf("%w: u32 at offset %d", ErrTruncatedChunk, c.pos)
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// Float32 reads a little-endian IEEE 754 float.
func (c *ChunkCursor) Float32() (float32, error) {
	bits, err := c.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}
