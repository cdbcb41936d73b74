package formats

import (
	"fmt"
	"os"
	"strconv"
)

// ObjectDef is one record from the objs section of a definition file.
type ObjectDef struct {
	ID           uint32
	ModelName    string
	TextureName  string
	MeshCount    uint32
	DrawDistance float32
	Flags        uint32
}

// IDE is a parsed object definition file. Only the objs section is
// materialized; other sections are scanned past.
type IDE struct {
	Objects     []ObjectDef
	Diagnostics []Diagnostic
}

// GetObject returns the definition with the given id, or nil.
func (f *IDE) GetObject(id uint32) *ObjectDef {
	for i := range f.Objects {
		if f.Objects[i].ID == id {
			return &f.Objects[i]
		}
	}
	return nil
}

// ideSections are the recognized definition section keywords.
var ideSections = map[string]bool{
	"objs": true, "tobj": true, "weap": true, "hier": true,
	"cars": true, "peds": true, "path": true, "txdp": true,
	"anim": true,
}

// ParseIDE parses an object definition file from raw bytes.
func ParseIDE(data []byte) (*IDE, error) {
	ide := &IDE{}
	r := newLineReader(data, "#%")

	inObjs := false
	for {
		line, num, ok := r.next()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if line == "end" {
			inObjs = false
			continue
		}
		if ideSections[line] {
			inObjs = line == "objs"
			continue
		}
		if !inObjs {
			continue
		}
		obj, diag := parseObjLine(line, num)
		if diag != nil {
			ide.Diagnostics = append(ide.Diagnostics, *diag)
			continue
		}
		ide.Objects = append(ide.Objects, obj)
	}
	return ide, nil
}

// ParseIDEFile parses an object definition file from disk.
func ParseIDEFile(path string) (*IDE, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading IDE file: %w", err)
	}
	return ParseIDE(data)
}

// parseObjLine decodes one objs record:
// id, modelName, txdName, meshCount, drawDist, [flags].
func parseObjLine(line string, num int) (ObjectDef, *Diagnostic) {
	fail := func(format string, args ...interface{}) (ObjectDef, *Diagnostic) {
		d := lineDiag(num, format, args...)
		return ObjectDef{}, &d
	}

	parts := splitRecord(line)
	if len(parts) < 5 {
		return fail("objs record has %d fields, want at least 5", len(parts))
	}

	id, err := parseUint32(parts[0])
	if err != nil {
		return fail("invalid object id %q", parts[0])
	}
	obj := ObjectDef{
		ID:          id,
		ModelName:   parts[1],
		TextureName: parts[2],
	}
	if obj.MeshCount, err = parseUint32(parts[3]); err != nil {
		return fail("invalid mesh count %q", parts[3])
	}
	if obj.DrawDistance, err = parseFloat32(parts[4]); err != nil {
		return fail("invalid draw distance %q", parts[4])
	}
	if len(parts) > 5 {
		obj.Flags = parseFlags(parts[5])
	}
	return obj, nil
}

// parseFlags reads a flags bitmask, trying decimal first and falling back
// to hex. Unparseable flags come back as 0.
func parseFlags(s string) uint32 {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v)
	}
	if v, err := strconv.ParseUint(s, 16, 32); err == nil {
		return uint32(v)
	}
	return 0
}
