package formats

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseWater_Planes(t *testing.T) {
	data := []byte(`processed
# x1 y1 z1  x2 y2 z2  x3 y3 z3  x4 y4 z4  level type
0.0 0.0 0.0  10.0 0.0 0.0  10.0 10.0 0.0  0.0 10.0 0.0  4.5 1
-5.0 -5.0 0.0  5.0 -5.0 0.0  5.0 5.0 0.0  -5.0 5.0 0.0  2.0
`)

	wf, err := ParseWater(data)
	if err != nil {
		t.Fatalf("ParseWater failed: %v", err)
	}
	if len(wf.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", wf.Diagnostics)
	}
	if len(wf.Planes) != 2 {
		t.Fatalf("plane count = %d, want 2", len(wf.Planes))
	}

	p := wf.Planes[0]
	if p.Corners[0] != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("corner 0 = %v, want origin", p.Corners[0])
	}
	if p.Corners[2] != (mgl32.Vec3{10, 10, 0}) {
		t.Errorf("corner 2 = %v, want (10, 10, 0)", p.Corners[2])
	}
	if p.Level != 4.5 {
		t.Errorf("level = %f, want 4.5", p.Level)
	}
	if p.Type != 1 {
		t.Errorf("type = %d, want 1", p.Type)
	}

	// Type is optional and defaults to 0.
	if wf.Planes[1].Type != 0 {
		t.Errorf("default type = %d, want 0", wf.Planes[1].Type)
	}
	if wf.Planes[1].Level != 2.0 {
		t.Errorf("level = %f, want 2.0", wf.Planes[1].Level)
	}
}

func TestParseWater_MalformedLines(t *testing.T) {
	data := []byte(`1.0 2.0 3.0
0.0 0.0 0.0 1.0 0.0 0.0 1.0 1.0 0.0 0.0 1.0 0.0 3.0
0.0 0.0 zz 1.0 0.0 0.0 1.0 1.0 0.0 0.0 1.0 0.0 3.0
`)

	wf, err := ParseWater(data)
	if err != nil {
		t.Fatalf("ParseWater failed: %v", err)
	}
	if len(wf.Planes) != 1 {
		t.Errorf("plane count = %d, want 1", len(wf.Planes))
	}
	if len(wf.Diagnostics) != 2 {
		t.Fatalf("diagnostic count = %d, want 2", len(wf.Diagnostics))
	}
	if wf.Diagnostics[0].Line != 1 || wf.Diagnostics[1].Line != 3 {
		t.Errorf("diagnostic lines = %d, %d; want 1, 3",
			wf.Diagnostics[0].Line, wf.Diagnostics[1].Line)
	}
}
