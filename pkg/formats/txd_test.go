package formats

import (
	"bytes"
	"errors"
	"testing"
)

// texNativeParams collects the header fields of a test TEXNATIVE chunk.
type texNativeParams struct {
	platform     uint32
	name         string
	maskName     string
	rasterFormat uint32
	width        uint16
	height       uint16
	depth        uint8
	mipmaps      uint8
	compression  uint8
	pixels       []byte
}

func makeTexNative(p texNativeParams) []byte {
	name := make([]byte, 32)
	copy(name, p.name)
	mask := make([]byte, 32)
	copy(mask, p.maskName)

	payload := leBytes(
		p.platform,
		uint32(0x1101), // filter mode
		uint32(1),      // u addressing
		uint32(1),      // v addressing
		name, mask,
		p.rasterFormat,
		uint32(0), // d3d format
		p.width, p.height,
		p.depth, p.mipmaps,
		uint8(4), // raster type
		p.compression,
		p.pixels,
	)
	return makeChunk(ChunkTexNative,
		makeChunk(ChunkData, payload),
		makeChunk(ChunkExtension),
	)
}

func makeTXD(texNatives ...[]byte) []byte {
	children := [][]byte{
		makeChunk(ChunkData, leBytes(uint16(len(texNatives)), uint16(0))),
	}
	children = append(children, texNatives...)
	return makeChunk(ChunkTexDictionary, children...)
}

func TestParseTXD_RootValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"wrong root chunk", makeChunk(ChunkClump), ErrNotTexDictionary},
		{"empty data", []byte{}, ErrTruncatedChunk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTXD(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseTXD_Uncompressed8888(t *testing.T) {
	pixels := []byte{
		0x10, 0x20, 0x30, 0xFF, 0x40, 0x50, 0x60, 0x80,
		0x70, 0x80, 0x90, 0x40, 0xA0, 0xB0, 0xC0, 0x00,
	}
	txd, err := ParseTXD(makeTXD(makeTexNative(texNativeParams{
		platform:     PlatformPC,
		name:         "brick",
		maskName:     "brick_a",
		rasterFormat: Raster8888,
		width:        2,
		height:       2,
		depth:        32,
		mipmaps:      1,
		compression:  CompressionNone,
		pixels:       pixels,
	})))
	if err != nil {
		t.Fatalf("ParseTXD failed: %v", err)
	}
	if len(txd.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", txd.Diagnostics)
	}
	if len(txd.Textures) != 1 {
		t.Fatalf("texture count = %d, want 1", len(txd.Textures))
	}

	tex := &txd.Textures[0]
	if tex.Name != "brick" {
		t.Errorf("name = %q, want \"brick\"", tex.Name)
	}
	if tex.MaskName != "brick_a" {
		t.Errorf("mask name = %q, want \"brick_a\"", tex.MaskName)
	}
	if tex.Width != 2 || tex.Height != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", tex.Width, tex.Height)
	}
	if !tex.HasAlpha {
		t.Error("8888 raster should report alpha")
	}
	if !bytes.Equal(tex.Pixels, pixels) {
		t.Errorf("pixels = %v, want input copied through", tex.Pixels)
	}

	img := tex.Image()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("image bounds = %v, want 2x2", img.Bounds())
	}
	if !bytes.Equal(img.Pix, pixels) {
		t.Error("image pixels should match texture pixels")
	}

	if txd.GetTexture("brick") != tex {
		t.Error("GetTexture should find the texture by name")
	}
	if txd.GetTexture("missing") != nil {
		t.Error("GetTexture should return nil for unknown names")
	}
}

func TestParseTXD_DXT1SolidBlock(t *testing.T) {
	// Equal endpoints select three-color mode; all indices point at
	// color 0, so every texel is the expanded endpoint, fully opaque.
	block := leBytes(uint16(0xF800), uint16(0xF800), uint32(0))
	txd, err := ParseTXD(makeTXD(makeTexNative(texNativeParams{
		platform:     PlatformPC,
		name:         "red",
		rasterFormat: Raster565,
		width:        4,
		height:       4,
		depth:        16,
		mipmaps:      1,
		compression:  CompressionDXT1,
		pixels:       block,
	})))
	if err != nil {
		t.Fatalf("ParseTXD failed: %v", err)
	}
	if len(txd.Textures) != 1 {
		t.Fatalf("texture count = %d, want 1", len(txd.Textures))
	}

	tex := &txd.Textures[0]
	if len(tex.Pixels) != 4*4*4 {
		t.Fatalf("pixel buffer = %d bytes, want 64", len(tex.Pixels))
	}
	for i := 0; i < 16; i++ {
		r, g, b, a := tex.Pixels[i*4], tex.Pixels[i*4+1], tex.Pixels[i*4+2], tex.Pixels[i*4+3]
		if r != 0xF8 || g != 0 || b != 0 || a != 0xFF {
			t.Fatalf("texel %d = (%d, %d, %d, %d), want (248, 0, 0, 255)", i, r, g, b, a)
		}
	}
	if tex.HasAlpha {
		t.Error("565 raster should not report alpha")
	}
}

func TestParseTXD_UnsupportedPlatformSkips(t *testing.T) {
	bad := makeTexNative(texNativeParams{
		platform:     3,
		name:         "ps2sky",
		rasterFormat: Raster8888,
		width:        2,
		height:       2,
		depth:        32,
		compression:  CompressionNone,
		pixels:       make([]byte, 16),
	})
	good := makeTexNative(texNativeParams{
		platform:     PlatformPC,
		name:         "ground",
		rasterFormat: Raster888,
		width:        1,
		height:       1,
		depth:        24,
		compression:  CompressionNone,
		pixels:       []byte{0x11, 0x22, 0x33},
	})

	txd, err := ParseTXD(makeTXD(bad, good))
	if err != nil {
		t.Fatalf("ParseTXD failed: %v", err)
	}

	if len(txd.Textures) != 1 {
		t.Fatalf("texture count = %d, want 1", len(txd.Textures))
	}
	if txd.Textures[0].Name != "ground" {
		t.Errorf("surviving texture = %q, want \"ground\"", txd.Textures[0].Name)
	}
	if len(txd.Diagnostics) != 1 {
		t.Fatalf("diagnostic count = %d, want 1", len(txd.Diagnostics))
	}

	// 888 decodes with forced opaque alpha.
	want := []byte{0x11, 0x22, 0x33, 0xFF}
	if !bytes.Equal(txd.Textures[0].Pixels, want) {
		t.Errorf("pixels = %v, want %v", txd.Textures[0].Pixels, want)
	}
}

func TestParseTXD_OversizedPixelDataSkips(t *testing.T) {
	// Payload claims 32-bit 64x64 pixels but carries almost nothing; the
	// texture is dropped with a diagnostic instead of reading past the
	// chunk bound.
	txd, err := ParseTXD(makeTXD(makeTexNative(texNativeParams{
		platform:     PlatformPC,
		name:         "huge",
		rasterFormat: Raster8888,
		width:        64,
		height:       64,
		depth:        32,
		compression:  CompressionNone,
		pixels:       []byte{0x00},
	})))
	if err != nil {
		t.Fatalf("ParseTXD failed: %v", err)
	}
	if len(txd.Textures) != 0 {
		t.Errorf("texture count = %d, want 0", len(txd.Textures))
	}
	if len(txd.Diagnostics) != 1 {
		t.Errorf("diagnostic count = %d, want 1", len(txd.Diagnostics))
	}
}

func TestDecodeDXTBlock_FourColorMode(t *testing.T) {
	// c0 > c1 selects four-color mode; index 2 is the 2:1 blend.
	block := leBytes(uint16(0xF800), uint16(0x001F), uint32(0xAAAAAAAA))

	var texels [16][4]uint8
	decodeDXTBlock(block, true, &texels)

	want := [4]uint8{165, 0, 82, 0xFF} // (2*248+0)/3 red, (0+248)/3 blue
	for i, got := range texels {
		if got != want {
			t.Fatalf("texel %d = %v, want %v", i, got, want)
		}
	}
}

func TestPixelDataSize(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		height      int
		depth       uint8
		compression uint8
		want        int
	}{
		{"dxt1 4x4", 4, 4, 16, CompressionDXT1, 8},
		{"dxt1 rounds up", 5, 5, 16, CompressionDXT1, 32},
		{"dxt3 4x4", 4, 4, 16, CompressionDXT3, 16},
		{"raw 32-bit", 2, 2, 32, CompressionNone, 16},
		{"raw 24-bit", 2, 2, 24, CompressionNone, 12},
		{"raw 16-bit", 2, 2, 16, CompressionNone, 8},
		{"raw 8-bit", 2, 2, 8, CompressionNone, 4},
		{"raw 4-bit", 4, 2, 4, CompressionNone, 4},
		{"bad depth", 2, 2, 13, CompressionNone, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pixelDataSize(tt.width, tt.height, tt.depth, tt.compression)
			if got != tt.want {
				t.Errorf("pixelDataSize = %d, want %d", got, tt.want)
			}
		})
	}
}
