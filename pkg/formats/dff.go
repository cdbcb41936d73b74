package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/asadandasad/openrw-editor/pkg/encoding"
)

// DFF format errors.
var (
	ErrNotClump       = errors.New("unsupported root chunk: expected CLUMP")
	ErrMissingData    = errors.New("expected DATA sub-chunk")
	ErrOversizedArray = errors.New("declared count exceeds chunk payload")
)

// GeometryFlag is the bitmask describing which per-vertex arrays a
// geometry carries.
type GeometryFlag uint32

// Geometry flag bits.
const (
	GeometryTriStrip  GeometryFlag = 0x01
	GeometryPositions GeometryFlag = 0x02
	GeometryTextured  GeometryFlag = 0x04
	GeometryPrelit    GeometryFlag = 0x08
	GeometryNormals   GeometryFlag = 0x10
	GeometryLight     GeometryFlag = 0x20
	GeometryModulate  GeometryFlag = 0x40
	GeometryTextured2 GeometryFlag = 0x80
)

// HasPositions reports whether the geometry carries a position array.
func (f GeometryFlag) HasPositions() bool { return f&GeometryPositions != 0 }

// HasNormals reports whether the geometry carries a normal array.
func (f GeometryFlag) HasNormals() bool { return f&GeometryNormals != 0 }

// HasTexCoords reports whether the geometry carries texture coordinates.
func (f GeometryFlag) HasTexCoords() bool { return f&GeometryTextured != 0 }

// HasPrelit reports whether the geometry carries prelit vertex colors.
func (f GeometryFlag) HasPrelit() bool { return f&GeometryPrelit != 0 }

// BoundingBox is an axis-aligned box. The zero value is the empty box.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the box midpoint.
func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Union returns the smallest box containing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		Min: mgl32.Vec3{
			math32.Min(b.Min.X(), o.Min.X()),
			math32.Min(b.Min.Y(), o.Min.Y()),
			math32.Min(b.Min.Z(), o.Min.Z()),
		},
		Max: mgl32.Vec3{
			math32.Max(b.Max.X(), o.Max.X()),
			math32.Max(b.Max.Y(), o.Max.Y()),
			math32.Max(b.Max.Z(), o.Max.Z()),
		},
	}
}

// Vertex is a single mesh vertex. Position is always present; the other
// attributes are meaningful only when the mesh's corresponding geometry
// flag bit is set.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
	Color    [4]uint8 // prelit RGBA
}

// Material holds the surface properties applied to a mesh.
type Material struct {
	Name        string
	Diffuse     mgl32.Vec4 // RGBA
	TextureName string     // empty when the material is untextured
}

// Mesh is one geometry from a model: a vertex list, a triangle index list
// (always 3 entries per triangle) and a single material.
type Mesh struct {
	Name        string
	Flags       GeometryFlag
	Vertices    []Vertex
	Indices     []uint32
	Material    Material
	BoundingBox BoundingBox
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Model is a parsed DFF model container.
type Model struct {
	Name        string
	Meshes      []Mesh
	BoundingBox BoundingBox // union of all mesh boxes
}

// TotalVertexCount returns the vertex count summed over all meshes.
func (m *Model) TotalVertexCount() int {
	total := 0
	for i := range m.Meshes {
		total += len(m.Meshes[i].Vertices)
	}
	return total
}

// TotalTriangleCount returns the triangle count summed over all meshes.
func (m *Model) TotalTriangleCount() int {
	total := 0
	for i := range m.Meshes {
		total += m.Meshes[i].TriangleCount()
	}
	return total
}

// ParseDFF parses a DFF model container from raw bytes.
func ParseDFF(data []byte) (*Model, error) {
	cur := NewChunkCursor(data)

	root, err := cur.ReadHeader()
	if err != nil {
		return nil, err
	}
	if root.Type != ChunkClump {
		return nil, fmt.Errorf("%w: got %s", ErrNotClump, root.Type)
	}
	clumpEnd, err := cur.BoundEnd(root)
	if err != nil {
		return nil, err
	}

	model := &Model{}
	if err := parseClump(cur, clumpEnd, model); err != nil {
		return nil, err
	}

	// Aggregate box: union over mesh boxes, zero box for an empty model.
	if len(model.Meshes) > 0 {
		model.BoundingBox = model.Meshes[0].BoundingBox
		for i := 1; i < len(model.Meshes); i++ {
			model.BoundingBox = model.BoundingBox.Union(model.Meshes[i].BoundingBox)
		}
	}

	return model, nil
}

// ParseDFFFile parses a DFF file from disk. The model name is taken from
// the file's base name.
func ParseDFFFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DFF file: %w", err)
	}
	model, err := ParseDFF(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	model.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return model, nil
}

// readDataChunk reads the DATA sub-chunk every container opens with and
// returns its payload end offset.
func readDataChunk(cur *ChunkCursor, parent ChunkType) (int64, error) {
	h, err := cur.ReadHeader()
	if err != nil {
		return 0, err
	}
	if h.Type != ChunkData {
		return 0, fmt.Errorf("%w: in %s, got %s", ErrMissingData, parent, h.Type)
	}
	return cur.BoundEnd(h)
}

func parseClump(cur *ChunkCursor, clumpEnd int64, model *Model) error {
	dataEnd, err := readDataChunk(cur, ChunkClump)
	if err != nil {
		return err
	}
	// Atomic count is informational; children are walked to the bound end.
	if _, err := cur.Uint32(); err != nil {
		return err
	}
	if err := cur.SkipTo(dataEnd); err != nil {
		return err
	}

	for cur.Pos() < clumpEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return err
		}
		switch child.Type {
		case ChunkGeometryList:
			if err := parseGeometryList(cur, child, model); err != nil {
				return err
			}
		case ChunkFrameList, ChunkAtomic:
			// Frame hierarchy and atomic linkage are not modeled.
			if err := cur.Skip(child); err != nil {
				return err
			}
		default:
			if err := cur.Skip(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseGeometryList(cur *ChunkCursor, h ChunkHeader, model *Model) error {
	listEnd, err := cur.BoundEnd(h)
	if err != nil {
		return err
	}
	dataEnd, err := readDataChunk(cur, ChunkGeometryList)
	if err != nil {
		return err
	}
	// Declared geometry count is informational, like the atomic count.
	if _, err := cur.Uint32(); err != nil {
		return err
	}
	if err := cur.SkipTo(dataEnd); err != nil {
		return err
	}

	for cur.Pos() < listEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return err
		}
		if child.Type != ChunkGeometry {
			if err := cur.Skip(child); err != nil {
				return err
			}
			continue
		}
		mesh := Mesh{Name: fmt.Sprintf("Mesh_%d", len(model.Meshes))}
		if err := parseGeometry(cur, child, &mesh); err != nil {
			return err
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	return nil
}

// triangleRecordSize is the on-disk triangle quad: v1 u16, v2 u16,
// materialId u32, v3 u16.
const triangleRecordSize = 10

func parseGeometry(cur *ChunkCursor, h ChunkHeader, mesh *Mesh) error {
	geomEnd, err := cur.BoundEnd(h)
	if err != nil {
		return err
	}
	dataEnd, err := readDataChunk(cur, ChunkGeometry)
	if err != nil {
		return err
	}

	flags, err := cur.Uint32()
	if err != nil {
		return err
	}
	triangleCount, err := cur.Uint32()
	if err != nil {
		return err
	}
	vertexCount, err := cur.Uint32()
	if err != nil {
		return err
	}
	if _, err := cur.Uint32(); err != nil { // morph target count, ignored
		return err
	}
	mesh.Flags = GeometryFlag(flags)

	// Reject counts that cannot fit in the payload before allocating.
	perVertex := int64(0)
	if mesh.Flags.HasPositions() {
		perVertex += 12
	}
	if mesh.Flags.HasNormals() {
		perVertex += 12
	}
	if mesh.Flags.HasPrelit() {
		perVertex += 4
	}
	if mesh.Flags.HasTexCoords() {
		perVertex += 8
	}
	// With no arrays enabled, vertices occupy zero payload bytes and the
	// byte check below cannot bound the count.
	if perVertex == 0 && vertexCount > 0 {
		return fmt.Errorf("%w: %d vertices declared with no vertex arrays", ErrOversizedArray, vertexCount)
	}
	need := perVertex*int64(vertexCount) + triangleRecordSize*int64(triangleCount)
	if need > dataEnd-cur.Pos() {
		return fmt.Errorf("%w: geometry needs %d bytes, %d remain", ErrOversizedArray, need, dataEnd-cur.Pos())
	}

	mesh.Vertices = make([]Vertex, vertexCount)

	// Per-vertex arrays follow in a fixed order, each present only when
	// its flag bit is set.
	if mesh.Flags.HasPositions() {
		for i := range mesh.Vertices {
			if mesh.Vertices[i].Position, err = readVec3(cur); err != nil {
				return err
			}
		}
	}
	if mesh.Flags.HasNormals() {
		for i := range mesh.Vertices {
			if mesh.Vertices[i].Normal, err = readVec3(cur); err != nil {
				return err
			}
		}
	}
	if mesh.Flags.HasPrelit() {
		for i := range mesh.Vertices {
			raw, err := cur.Bytes(4)
			if err != nil {
				return err
			}
			copy(mesh.Vertices[i].Color[:], raw)
		}
	}
	if mesh.Flags.HasTexCoords() {
		for i := range mesh.Vertices {
			u, err := cur.Float32()
			if err != nil {
				return err
			}
			v, err := cur.Float32()
			if err != nil {
				return err
			}
			mesh.Vertices[i].TexCoord = mgl32.Vec2{u, v}
		}
	}

	mesh.Indices = make([]uint32, 3*triangleCount)
	for i := uint32(0); i < triangleCount; i++ {
		v1, err := cur.Uint16()
		if err != nil {
			return err
		}
		v2, err := cur.Uint16()
		if err != nil {
			return err
		}
		// Per-triangle material id; the whole mesh uses the first
		// material from the MATERIALLIST instead.
		if _, err := cur.Uint32(); err != nil {
			return err
		}
		v3, err := cur.Uint16()
		if err != nil {
			return err
		}
		mesh.Indices[3*i] = uint32(v1)
		mesh.Indices[3*i+1] = uint32(v2)
		mesh.Indices[3*i+2] = uint32(v3)
	}

	if err := cur.SkipTo(dataEnd); err != nil {
		return err
	}

	var materials []Material
	for cur.Pos() < geomEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return err
		}
		if child.Type == ChunkMaterialList {
			if err := parseMaterialList(cur, child, &materials); err != nil {
				return err
			}
		} else if err := cur.Skip(child); err != nil {
			return err
		}
	}
	if len(materials) > 0 {
		mesh.Material = materials[0]
	}

	mesh.BoundingBox = boundingBoxOf(mesh.Vertices)
	return nil
}

func parseMaterialList(cur *ChunkCursor, h ChunkHeader, materials *[]Material) error {
	listEnd, err := cur.BoundEnd(h)
	if err != nil {
		return err
	}
	dataEnd, err := readDataChunk(cur, ChunkMaterialList)
	if err != nil {
		return err
	}
	count, err := cur.Uint32()
	if err != nil {
		return err
	}
	// Per-index table, one u32 each; the indices themselves are unused.
	if int64(count)*4 > dataEnd-cur.Pos() {
		return fmt.Errorf("%w: material index table", ErrOversizedArray)
	}
	if err := cur.SkipTo(dataEnd); err != nil {
		return err
	}

	for cur.Pos() < listEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return err
		}
		if child.Type != ChunkMaterial {
			if err := cur.Skip(child); err != nil {
				return err
			}
			continue
		}
		mat := Material{Name: fmt.Sprintf("Material_%d", len(*materials))}
		if err := parseMaterial(cur, child, &mat); err != nil {
			return err
		}
		*materials = append(*materials, mat)
	}
	return nil
}

func parseMaterial(cur *ChunkCursor, h ChunkHeader, mat *Material) error {
	matEnd, err := cur.BoundEnd(h)
	if err != nil {
		return err
	}
	dataEnd, err := readDataChunk(cur, ChunkMaterial)
	if err != nil {
		return err
	}

	if _, err := cur.Uint32(); err != nil { // material flags, unused
		return err
	}
	var rgba [4]float32
	for i := range rgba {
		if rgba[i], err = cur.Float32(); err != nil {
			return err
		}
	}
	mat.Diffuse = mgl32.Vec4{rgba[0], rgba[1], rgba[2], rgba[3]}

	if err := cur.SkipTo(dataEnd); err != nil {
		return err
	}

	for cur.Pos() < matEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return err
		}
		if child.Type == ChunkTexture {
			name, err := parseTextureRef(cur, child)
			if err != nil {
				return err
			}
			mat.TextureName = name
		} else if err := cur.Skip(child); err != nil {
			return err
		}
	}
	return nil
}

// parseTextureRef walks a TEXTURE chunk and returns the name carried by its
// first STRING child.
func parseTextureRef(cur *ChunkCursor, h ChunkHeader) (string, error) {
	texEnd, err := cur.BoundEnd(h)
	if err != nil {
		return "", err
	}

	name := ""
	for cur.Pos() < texEnd && !cur.AtEnd() {
		child, err := cur.ReadHeader()
		if err != nil {
			return "", err
		}
		if child.Type == ChunkString && name == "" {
			strEnd, err := cur.BoundEnd(child)
			if err != nil {
				return "", err
			}
			raw, err := cur.Bytes(int(strEnd - cur.Pos()))
			if err != nil {
				return "", err
			}
			name = encoding.FixedString(raw)
			continue
		}
		if err := cur.Skip(child); err != nil {
			return "", err
		}
	}
	return name, nil
}

func readVec3(cur *ChunkCursor) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := cur.Float32()
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// boundingBoxOf returns the componentwise min/max box over the vertex
// positions, or the zero box when there are no vertices.
func boundingBoxOf(vertices []Vertex) BoundingBox {
	if len(vertices) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{Min: vertices[0].Position, Max: vertices[0].Position}
	for i := 1; i < len(vertices); i++ {
		p := vertices[i].Position
		box.Min = mgl32.Vec3{
			math32.Min(box.Min.X(), p.X()),
			math32.Min(box.Min.Y(), p.Y()),
			math32.Min(box.Min.Z(), p.Z()),
		}
		box.Max = mgl32.Vec3{
			math32.Max(box.Max.X(), p.X()),
			math32.Max(box.Max.Y(), p.Y()),
			math32.Max(box.Max.Z(), p.Z()),
		}
	}
	return box
}
