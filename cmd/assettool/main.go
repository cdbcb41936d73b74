// assettool is a CLI utility for inspecting and exporting legacy game
// asset files: DFF models, TXD texture dictionaries, IPL placements, IDE
// object definitions and the DAT path/handling/water files.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"go.uber.org/zap"

	"github.com/asadandasad/openrw-editor/internal/assets"
	"github.com/asadandasad/openrw-editor/internal/config"
	"github.com/asadandasad/openrw-editor/internal/logger"
	"github.com/asadandasad/openrw-editor/pkg/formats"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "scan":
		cmdScan(cfg, args)
	case "model":
		cmdModel(args)
	case "textures", "tex":
		cmdTextures(cfg, args)
	case "placements", "ipl":
		cmdPlacements(args)
	case "definitions", "ide":
		cmdDefinitions(args)
	case "paths":
		cmdPaths(args)
	case "handling":
		cmdHandling(args)
	case "water":
		cmdWater(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assettool - legacy game asset inspector

Usage:
  assettool [options] <command> [args]

Options:
  -config <file>  Config file path
  -debug          Enable debug logging
  -format <fmt>   Texture export format (png, webp, tga)
  -out <dir>      Export output directory

Commands:
  scan [dir]                    Inventory asset files in a data directory
  model <file.dff>              Show model geometry and materials
  textures [-export] <file.txd> List textures, optionally export images
  placements <file.ipl>         List object placements
  definitions <file.ide> [-id]  List object definitions
  paths <file.dat>              Show AI path nodes
  handling <file.dat> [name]    Show vehicle handling records
  water <file.dat>              Show water planes

Examples:
  assettool model infernus.dff
  assettool -format webp -out dump textures -export vehicle.txd
  assettool definitions -id 1234 maps.ide`)
}

// reportDiagnostics logs recoverable parse problems without failing the
// command.
func reportDiagnostics(file string, diags []formats.Diagnostic) {
	for _, d := range diags {
		logger.Warn("recovered parse problem",
			zap.String("file", file),
			zap.String("detail", d.String()))
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdScan(cfg *config.Config, args []string) {
	root := cfg.Data.RootDir
	if len(args) > 0 {
		root = args[0]
	}

	lib := assets.NewLibrary()
	if err := lib.AddDir(root); err != nil {
		fatal("Error: %v", err)
	}
	for _, dir := range cfg.Data.TextureDirs {
		if err := lib.AddDir(dir); err != nil {
			fatal("Error: %v", err)
		}
	}

	names := lib.Names()
	sort.Strings(names)

	extCount := make(map[string]int)
	for _, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			ext = "(no ext)"
		}
		extCount[ext]++
	}

	fmt.Printf("Data root: %s\n", root)
	fmt.Printf("Assets:    %d\n", len(names))
	fmt.Println()
	fmt.Println("Assets by type:")

	type extStat struct {
		ext   string
		count int
	}
	var stats []extStat
	for ext, count := range extCount {
		stats = append(stats, extStat{ext, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].count > stats[j].count
	})
	for _, s := range stats {
		fmt.Printf("  %-10s %d\n", s.ext, s.count)
	}
}

func cmdModel(args []string) {
	if len(args) < 1 {
		fatal("Usage: assettool model <file.dff>")
	}

	model, err := formats.ParseDFFFile(args[0])
	if err != nil {
		fatal("Error: %v", err)
	}

	fmt.Printf("Model:     %s\n", model.Name)
	fmt.Printf("Meshes:    %d\n", len(model.Meshes))
	fmt.Printf("Vertices:  %d\n", model.TotalVertexCount())
	fmt.Printf("Triangles: %d\n", model.TotalTriangleCount())
	fmt.Printf("Bounds:    min %v max %v\n", model.BoundingBox.Min, model.BoundingBox.Max)
	fmt.Println()

	for i, mesh := range model.Meshes {
		fmt.Printf("  [%d] %s: %d vertices, %d triangles",
			i, mesh.Name, len(mesh.Vertices), mesh.TriangleCount())
		if mesh.Material.TextureName != "" {
			fmt.Printf(", texture %q", mesh.Material.TextureName)
		}
		fmt.Println()
	}
}

func cmdTextures(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	export := fs.Bool("export", false, "Export decoded textures as images")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("Usage: assettool textures [-export] <file.txd>")
	}

	txd, err := formats.ParseTXDFile(fs.Arg(0))
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(fs.Arg(0), txd.Diagnostics)

	fmt.Printf("Dictionary: %s (%d textures)\n\n", fs.Arg(0), len(txd.Textures))
	for _, tex := range txd.Textures {
		alpha := ""
		if tex.HasAlpha {
			alpha = " +alpha"
		}
		fmt.Printf("  %-32s %4dx%-4d depth=%d mips=%d %s%s\n",
			tex.Name, tex.Width, tex.Height, tex.Depth, tex.MipmapCount,
			compressionName(tex.Compression), alpha)
	}

	if !*export {
		return
	}
	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		fatal("Error creating output directory: %v", err)
	}

	exported := 0
	for i := range txd.Textures {
		tex := &txd.Textures[i]
		path := filepath.Join(cfg.Export.OutputDir, tex.Name+"."+cfg.Export.Format)
		if err := writeImage(path, cfg.Export.Format, tex.Image()); err != nil {
			logger.Error("texture export failed",
				zap.String("texture", tex.Name), zap.Error(err))
			continue
		}
		exported++
		logger.Debug("exported texture",
			zap.String("texture", tex.Name), zap.String("path", path))
	}
	fmt.Printf("\nExported %d textures to %s\n", exported, cfg.Export.OutputDir)
}

func compressionName(c uint8) string {
	switch c {
	case formats.CompressionDXT1:
		return "DXT1"
	case formats.CompressionDXT3:
		return "DXT3"
	case formats.CompressionDXT5:
		return "DXT5"
	default:
		return "raw"
	}
}

// writeImage encodes an image in the configured export format.
func writeImage(path, format string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "webp":
		return nativewebp.Encode(f, img, nil)
	case "tga":
		return tga.Encode(f, img)
	case "png", "":
		return png.Encode(f, img)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func cmdPlacements(args []string) {
	if len(args) < 1 {
		fatal("Usage: assettool placements <file.ipl>")
	}

	ipl, err := formats.ParseIPLFile(args[0])
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(args[0], ipl.Diagnostics)

	kind := "text"
	if ipl.Binary {
		kind = "binary"
	}
	fmt.Printf("Placements: %s (%s, %d instances)\n\n", args[0], kind, len(ipl.Instances))
	for _, inst := range ipl.Instances {
		fmt.Printf("  %6d %-24s interior=%d pos=(%.2f, %.2f, %.2f)\n",
			inst.ID, inst.ModelName, inst.Interior,
			inst.Position.X(), inst.Position.Y(), inst.Position.Z())
	}
}

func cmdDefinitions(args []string) {
	fs := flag.NewFlagSet("definitions", flag.ExitOnError)
	id := fs.Uint("id", 0, "Show only the definition with this id")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("Usage: assettool definitions [-id N] <file.ide>")
	}

	ide, err := formats.ParseIDEFile(fs.Arg(0))
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(fs.Arg(0), ide.Diagnostics)

	if *id != 0 {
		obj := ide.GetObject(uint32(*id))
		if obj == nil {
			fatal("No definition with id %d", *id)
		}
		fmt.Printf("%d: model=%s txd=%s meshes=%d drawdist=%.1f flags=0x%X\n",
			obj.ID, obj.ModelName, obj.TextureName, obj.MeshCount,
			obj.DrawDistance, obj.Flags)
		return
	}

	fmt.Printf("Definitions: %s (%d objects)\n\n", fs.Arg(0), len(ide.Objects))
	for _, obj := range ide.Objects {
		fmt.Printf("  %6d %-24s txd=%-20s drawdist=%.1f\n",
			obj.ID, obj.ModelName, obj.TextureName, obj.DrawDistance)
	}
}

func cmdPaths(args []string) {
	if len(args) < 1 {
		fatal("Usage: assettool paths <file.dat>")
	}

	set, err := formats.ParsePathsFile(args[0])
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(args[0], set.Diagnostics)

	kind := "text"
	if set.Binary {
		kind = "binary"
	}
	fmt.Printf("Paths: %s (%s, %d nodes)\n\n", args[0], kind, len(set.Nodes))
	for _, node := range set.Nodes {
		fmt.Printf("  %6d pos=(%.2f, %.2f, %.2f) width=%.2f type=%d next=%d\n",
			node.ID, node.Position.X(), node.Position.Y(), node.Position.Z(),
			node.Width, node.NodeType, node.NextNode)
	}
}

func cmdHandling(args []string) {
	if len(args) < 1 {
		fatal("Usage: assettool handling <file.dat> [vehicle]")
	}

	hf, err := formats.ParseHandlingFile(args[0])
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(args[0], hf.Diagnostics)

	if len(args) > 1 {
		v := hf.GetVehicle(args[1])
		if v == nil {
			fatal("No handling record for %q", args[1])
		}
		fmt.Printf("%s:\n", v.Identifier)
		fmt.Printf("  mass=%.1f drag=%.2f submerged=%d%%\n",
			v.Mass, v.DragMult, v.PercentSubmerged)
		fmt.Printf("  traction mult=%.2f loss=%.2f bias=%.2f\n",
			v.TractionMult, v.TractionLoss, v.TractionBias)
		fmt.Printf("  engine accel=%.2f inertia=%.2f drive=%d type=%d\n",
			v.EngineAcceleration, v.EngineInertia, v.DriveType, v.EngineType)
		fmt.Printf("  brakes decel=%.2f bias=%.2f abs=%v steering=%.1f\n",
			v.BrakeDeceleration, v.BrakeBias, v.ABS, v.SteeringLock)
		return
	}

	fmt.Printf("Handling: %s (%d vehicles)\n\n", args[0], len(hf.Vehicles))
	for _, v := range hf.Vehicles {
		fmt.Printf("  %-16s mass=%-8.1f accel=%-6.2f brakes=%.2f\n",
			v.Identifier, v.Mass, v.EngineAcceleration, v.BrakeDeceleration)
	}
}

func cmdWater(args []string) {
	if len(args) < 1 {
		fatal("Usage: assettool water <file.dat>")
	}

	wf, err := formats.ParseWaterFile(args[0])
	if err != nil {
		fatal("Error: %v", err)
	}
	reportDiagnostics(args[0], wf.Diagnostics)

	fmt.Printf("Water: %s (%d planes)\n\n", args[0], len(wf.Planes))
	for i, p := range wf.Planes {
		fmt.Printf("  [%d] level=%.2f type=%d corner0=(%.1f, %.1f, %.1f)\n",
			i, p.Level, p.Type,
			p.Corners[0].X(), p.Corners[0].Y(), p.Corners[0].Z())
	}
}
