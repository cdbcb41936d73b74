package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// IPL format errors.
var ErrTruncatedIPL = errors.New("truncated binary placement data")

// binaryIPLSignature opens a binary placement file.
const binaryIPLSignature = "IPLB"

// binaryIPLRecordSize is pos f32x3 + rot f32x4 + modelId/interior/lod u32.
const binaryIPLRecordSize = 40

// Instance is a single object placement.
type Instance struct {
	ID        uint32
	ModelName string // synthesized "Model_<id>" for binary records
	Interior  uint32
	Position  mgl32.Vec3
	Rotation  mgl32.Quat
	LOD       uint32
}

// IPL is a parsed placement list. Only the inst section of text files is
// materialized; other sections are scanned past.
type IPL struct {
	Binary      bool
	Instances   []Instance
	Diagnostics []Diagnostic
}

// iplSections are the recognized text section keywords. A line equal to
// one of these (or "end") is a section boundary, never a record.
var iplSections = map[string]bool{
	"inst": true, "zone": true, "cull": true, "pick": true,
	"path": true, "occl": true, "mult": true, "grge": true,
	"enex": true, "cars": true, "jump": true, "tcyc": true,
	"auzo": true,
}

// ParseIPL parses a placement list from raw bytes, auto-detecting the
// binary and text variants.
func ParseIPL(data []byte) (*IPL, error) {
	if isBinaryIPL(data) {
		return parseBinaryIPL(data)
	}
	return parseTextIPL(data), nil
}

// ParseIPLFile parses a placement list file from disk.
func ParseIPLFile(path string) (*IPL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IPL file: %w", err)
	}
	return ParseIPL(data)
}

// isBinaryIPL samples the first four bytes for the binary signature or any
// non-ASCII byte. Known to false-positive on exotic text files.
func isBinaryIPL(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return string(data[:4]) == binaryIPLSignature || isBinaryData(data, 4)
}

func parseBinaryIPL(data []byte) (*IPL, error) {
	cur := NewChunkCursor(data)
	if _, err := cur.Bytes(4); err != nil { // signature
		return nil, fmt.Errorf("%w: header", ErrTruncatedIPL)
	}
	itemCount, err := cur.Uint32()
	if err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncatedIPL)
	}

	ipl := &IPL{Binary: true}

	// Never allocate on the declared count alone: clamp to what the
	// buffer can actually hold.
	maxItems := uint32(cur.Remaining() / binaryIPLRecordSize)
	if itemCount > maxItems {
		ipl.Diagnostics = append(ipl.Diagnostics,
			offsetDiag(4, "declared item count %d exceeds file capacity %d", itemCount, maxItems))
		itemCount = maxItems
	}

	ipl.Instances = make([]Instance, 0, itemCount)
	for i := uint32(0); i < itemCount; i++ {
		var pos mgl32.Vec3
		var rot [4]float32
		for j := 0; j < 3; j++ {
			if pos[j], err = cur.Float32(); err != nil {
				return nil, err
			}
		}
		for j := 0; j < 4; j++ { // disk order x, y, z, w
			if rot[j], err = cur.Float32(); err != nil {
				return nil, err
			}
		}
		modelID, err := cur.Uint32()
		if err != nil {
			return nil, err
		}
		interior, err := cur.Uint32()
		if err != nil {
			return nil, err
		}
		lod, err := cur.Uint32()
		if err != nil {
			return nil, err
		}

		ipl.Instances = append(ipl.Instances, Instance{
			ID:        modelID,
			ModelName: fmt.Sprintf("Model_%d", modelID),
			Interior:  interior,
			Position:  pos,
			Rotation:  mgl32.Quat{W: rot[3], V: mgl32.Vec3{rot[0], rot[1], rot[2]}},
			LOD:       lod,
		})
	}
	return ipl, nil
}

func parseTextIPL(data []byte) *IPL {
	ipl := &IPL{}
	r := newLineReader(data, "#")

	inInst := false
	for {
		line, num, ok := r.next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if line == "end" {
			inInst = false
			continue
		}
		if iplSections[line] {
			inInst = line == "inst"
			continue
		}
		if !inInst {
			continue
		}
		inst, diag := parseInstLine(line, num)
		if diag != nil {
			ipl.Diagnostics = append(ipl.Diagnostics, *diag)
			continue
		}
		ipl.Instances = append(ipl.Instances, inst)
	}
	return ipl
}

// parseInstLine decodes one inst record:
// id, modelName, interior, posXYZ, rotXYZW, [lod].
func parseInstLine(line string, num int) (Instance, *Diagnostic) {
	fail := func(format string, args ...interface{}) (Instance, *Diagnostic) {
		d := lineDiag(num, format, args...)
		return Instance{}, &d
	}

	parts := splitRecord(line)
	if len(parts) < 10 {
		return fail("inst record has %d fields, want at least 10", len(parts))
	}

	id, err := parseUint32(parts[0])
	if err != nil {
		return fail("invalid inst id %q", parts[0])
	}

	inst := Instance{ID: id, ModelName: parts[1]}
	inst.Interior, _ = parseUint32(parts[2]) // 0 on malformed interior

	var f [7]float32
	for i := range f {
		if f[i], err = parseFloat32(parts[3+i]); err != nil {
			return fail("invalid numeric field %q", parts[3+i])
		}
	}
	inst.Position = mgl32.Vec3{f[0], f[1], f[2]}
	// Rotation is written x, y, z, w; the quaternion is kept w-first.
	inst.Rotation = mgl32.Quat{W: f[6], V: mgl32.Vec3{f[3], f[4], f[5]}}

	if len(parts) > 10 {
		inst.LOD, _ = parseUint32(parts[10])
	}
	return inst, nil
}
