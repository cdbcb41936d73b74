package formats

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// handlingFieldCount is the minimum field count of a vehicle line. Only
// the first 18 fields are read; the rest of the record predates the data
// this tool needs and is replaced with fixed defaults.
const handlingFieldCount = 30

// VehicleHandling is one vehicle physics record.
type VehicleHandling struct {
	Identifier         string
	Mass               float32
	DragMult           float32
	CenterOfMass       mgl32.Vec3
	PercentSubmerged   uint32
	TractionMult       float32
	TractionLoss       float32
	TractionBias       float32
	TransmissionData   uint32
	EngineAcceleration float32
	EngineInertia      float32
	DriveType          uint32
	EngineType         uint32
	BrakeDeceleration  float32
	BrakeBias          float32
	ABS                bool
	SteeringLock       float32

	// Defaulted, not parsed.
	SuspensionForceLevel       float32
	SuspensionDampingLevel     float32
	SuspensionHighSpeedComDamp float32
	SuspensionUpperLimit       float32
	SuspensionLowerLimit       float32
	SuspensionBias             float32
	SuspensionAntiDive         float32
	SeatOffsetDistance         float32
	CollisionDamageMult        float32
	MonetaryValue              uint32
	ModelFlags                 uint32
	HandlingFlags              uint32
	FrontLights                uint32
	RearLights                 uint32
	AnimGroup                  uint32
}

// HandlingFile is a parsed vehicle handling configuration.
type HandlingFile struct {
	Vehicles    []VehicleHandling
	Diagnostics []Diagnostic
}

// GetVehicle returns the record with the given identifier
// (case-insensitive), or nil.
func (f *HandlingFile) GetVehicle(identifier string) *VehicleHandling {
	for i := range f.Vehicles {
		if strings.EqualFold(f.Vehicles[i].Identifier, identifier) {
			return &f.Vehicles[i]
		}
	}
	return nil
}

// ParseHandling parses a vehicle handling file from raw bytes.
func ParseHandling(data []byte) (*HandlingFile, error) {
	hf := &HandlingFile{}
	r := newLineReader(data, "#;")

	inSection := false
	for {
		line, num, ok := r.next()
		if !ok {
			break
		}
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		switch strings.ToLower(line) {
		case "handling":
			inSection = true
			continue
		case "end":
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		v, diag := parseHandlingLine(line, num)
		if diag != nil {
			hf.Diagnostics = append(hf.Diagnostics, *diag)
			continue
		}
		hf.Vehicles = append(hf.Vehicles, v)
	}
	return hf, nil
}

// ParseHandlingFile parses a vehicle handling file from disk.
func ParseHandlingFile(path string) (*HandlingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading handling file: %w", err)
	}
	return ParseHandling(data)
}

func parseHandlingLine(line string, num int) (VehicleHandling, *Diagnostic) {
	fail := func(format string, args ...interface{}) (VehicleHandling, *Diagnostic) {
		d := lineDiag(num, format, args...)
		return VehicleHandling{}, &d
	}

	parts := splitFields(line)
	if len(parts) < handlingFieldCount {
		return fail("handling record has %d fields, want at least %d",
			len(parts), handlingFieldCount)
	}

	v := VehicleHandling{Identifier: parts[0]}
	applyHandlingDefaults(&v)

	// Fields are read in record order so the first malformed one is the
	// one reported.
	badField := ""
	f := func(idx int) float32 {
		if badField != "" {
			return 0
		}
		x, err := parseFloat32(parts[idx])
		if err != nil {
			badField = parts[idx]
		}
		return x
	}
	u := func(idx int) uint32 {
		if badField != "" {
			return 0
		}
		x, err := parseUint32(parts[idx])
		if err != nil {
			badField = parts[idx]
		}
		return x
	}

	v.Mass = f(1)
	v.DragMult = f(2)
	v.CenterOfMass = mgl32.Vec3{f(3), f(4), f(5)}
	v.PercentSubmerged = u(6)
	v.TractionMult = f(7)
	v.TractionLoss = f(8)
	v.TractionBias = f(9)
	v.TransmissionData = u(10)
	v.EngineAcceleration = f(11)
	v.EngineInertia = f(12)
	v.DriveType = u(13)
	v.EngineType = u(14)
	v.BrakeDeceleration = f(15)
	v.BrakeBias = f(16)
	v.ABS = u(17) != 0
	v.SteeringLock = f(18)

	if badField != "" {
		return fail("invalid numeric field %q", badField)
	}
	return v, nil
}

// applyHandlingDefaults fills the fields beyond the parsed prefix with
// the baseline values every record carries.
func applyHandlingDefaults(v *VehicleHandling) {
	v.SuspensionForceLevel = 1.0
	v.SuspensionDampingLevel = 0.1
	v.SuspensionHighSpeedComDamp = 0.0
	v.SuspensionUpperLimit = 0.3
	v.SuspensionLowerLimit = -0.15
	v.SuspensionBias = 0.5
	v.SuspensionAntiDive = 0.0
	v.SeatOffsetDistance = 0.2
	v.CollisionDamageMult = 0.2
	v.MonetaryValue = 10000
	v.ModelFlags = 0
	v.HandlingFlags = 0
	v.FrontLights = 0
	v.RearLights = 1
	v.AnimGroup = 0
}
