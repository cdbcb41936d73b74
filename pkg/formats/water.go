package formats

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// WaterPlane is one quad of the water surface grid.
type WaterPlane struct {
	Corners [4]mgl32.Vec3
	Level   float32
	Type    uint32
}

// WaterFile is a parsed water definition file.
type WaterFile struct {
	Planes      []WaterPlane
	Diagnostics []Diagnostic
}

// ParseWater parses a water definition file from raw bytes.
func ParseWater(data []byte) (*WaterFile, error) {
	wf := &WaterFile{}
	r := newLineReader(data, "#;")
	for {
		line, num, ok := r.next()
		if !ok {
			break
		}
		if line == "" || strings.EqualFold(line, "processed") {
			continue
		}
		plane, diag := parseWaterLine(line, num)
		if diag != nil {
			wf.Diagnostics = append(wf.Diagnostics, *diag)
			continue
		}
		wf.Planes = append(wf.Planes, plane)
	}
	return wf, nil
}

// ParseWaterFile parses a water definition file from disk.
func ParseWaterFile(path string) (*WaterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading water file: %w", err)
	}
	return ParseWater(data)
}

// parseWaterLine decodes one plane: four corner XYZ triples, a water
// level, and an optional type.
func parseWaterLine(line string, num int) (WaterPlane, *Diagnostic) {
	fail := func(format string, args ...interface{}) (WaterPlane, *Diagnostic) {
		d := lineDiag(num, format, args...)
		return WaterPlane{}, &d
	}

	parts := splitFields(line)
	if len(parts) < 13 {
		return fail("water record has %d fields, want at least 13", len(parts))
	}

	var f [13]float32
	for i := range f {
		v, err := parseFloat32(parts[i])
		if err != nil {
			return fail("invalid numeric field %q", parts[i])
		}
		f[i] = v
	}

	plane := WaterPlane{Level: f[12]}
	for i := 0; i < 4; i++ {
		plane.Corners[i] = mgl32.Vec3{f[i*3], f[i*3+1], f[i*3+2]}
	}
	if len(parts) > 13 {
		plane.Type, _ = parseUint32(parts[13])
	}
	return plane, nil
}
