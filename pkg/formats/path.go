package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Path format errors.
var ErrTruncatedPaths = errors.New("truncated binary path data")

// binaryPathHeaderSize covers the four u32 counts at the head of a binary
// path file; only the node count is consumed.
const binaryPathHeaderSize = 16

// binaryPathRecordSize is one on-disk node:
// memAddr u16, pad u16, pos f32x3, link/area/node u16, width/type u8, flags u32.
const binaryPathRecordSize = 28

// PathNode is a single waypoint of an AI routing graph.
type PathNode struct {
	ID        uint32
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Width     float32
	NodeType  uint32
	NextNode  uint32
	CrossRoad uint32
}

// PathSet is a parsed path file, binary or text.
type PathSet struct {
	Binary      bool
	Nodes       []PathNode
	Diagnostics []Diagnostic
}

// ParsePaths parses an AI path file from raw bytes, auto-detecting the
// binary and text variants.
func ParsePaths(data []byte) (*PathSet, error) {
	if isBinaryData(data, binaryPathHeaderSize) {
		return parseBinaryPaths(data)
	}
	return parseTextPaths(data), nil
}

// ParsePathsFile parses an AI path file from disk.
func ParsePathsFile(path string) (*PathSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading path file: %w", err)
	}
	return ParsePaths(data)
}

func parseBinaryPaths(data []byte) (*PathSet, error) {
	cur := NewChunkCursor(data)
	nodeCount, err := cur.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncatedPaths)
	}
	for i := 0; i < 3; i++ { // vehicle/ped/carpath counts, unused
		if _, err := cur.Uint32(); err != nil {
			return nil, fmt.Errorf("%w: header", ErrTruncatedPaths)
		}
	}

	set := &PathSet{Binary: true}

	maxNodes := uint32(cur.Remaining() / binaryPathRecordSize)
	if nodeCount > maxNodes {
		set.Diagnostics = append(set.Diagnostics,
			offsetDiag(0, "declared node count %d exceeds file capacity %d", nodeCount, maxNodes))
		nodeCount = maxNodes
	}

	set.Nodes = make([]PathNode, 0, nodeCount)
	for i := uint32(0); i < nodeCount; i++ {
		if _, err := cur.Bytes(4); err != nil { // mem address + padding
			return nil, err
		}
		var pos mgl32.Vec3
		for j := 0; j < 3; j++ {
			if pos[j], err = cur.Float32(); err != nil {
				return nil, err
			}
		}
		link, err := cur.Uint16()
		if err != nil {
			return nil, err
		}
		if _, err := cur.Uint16(); err != nil { // area id, unused
			return nil, err
		}
		nodeID, err := cur.Uint16()
		if err != nil {
			return nil, err
		}
		pathWidth, err := cur.Uint8()
		if err != nil {
			return nil, err
		}
		nodeType, err := cur.Uint8()
		if err != nil {
			return nil, err
		}
		if _, err := cur.Uint32(); err != nil { // flags, unused
			return nil, err
		}

		set.Nodes = append(set.Nodes, PathNode{
			ID:       uint32(nodeID),
			Position: pos,
			// Stored as a fraction of 255, scaled to a nominal 10m lane.
			Width:    float32(pathWidth) / 255 * 10,
			NodeType: uint32(nodeType),
			NextNode: uint32(link),
		})
	}
	return set, nil
}

func parseTextPaths(data []byte) *PathSet {
	set := &PathSet{}
	r := newLineReader(data, "#;")
	for {
		line, num, ok := r.next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		node, diag := parsePathLine(line, num)
		if diag != nil {
			set.Diagnostics = append(set.Diagnostics, *diag)
			continue
		}
		set.Nodes = append(set.Nodes, node)
	}
	return set
}

// parsePathLine decodes one text node:
// id, posXYZ, dirXYZ, width, [type], [next], [cross].
func parsePathLine(line string, num int) (PathNode, *Diagnostic) {
	fail := func(format string, args ...interface{}) (PathNode, *Diagnostic) {
		d := lineDiag(num, format, args...)
		return PathNode{}, &d
	}

	parts := splitFields(line)
	if len(parts) < 8 {
		return fail("path record has %d fields, want at least 8", len(parts))
	}

	id, err := parseUint32(parts[0])
	if err != nil {
		return fail("invalid node id %q", parts[0])
	}
	node := PathNode{ID: id, Width: 1.0}

	var f [6]float32
	for i := range f {
		if f[i], err = parseFloat32(parts[1+i]); err != nil {
			return fail("invalid numeric field %q", parts[1+i])
		}
	}
	node.Position = mgl32.Vec3{f[0], f[1], f[2]}
	node.Direction = mgl32.Vec3{f[3], f[4], f[5]}

	if w, err := parseFloat32(parts[7]); err == nil {
		node.Width = w
	}
	if len(parts) > 8 {
		node.NodeType, _ = parseUint32(parts[8])
	}
	if len(parts) > 9 {
		node.NextNode, _ = parseUint32(parts[9])
	}
	if len(parts) > 10 {
		node.CrossRoad, _ = parseUint32(parts[10])
	}
	return node, nil
}
