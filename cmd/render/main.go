package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"softraster/internal/config"
	"softraster/internal/export"
	"softraster/internal/mathutil"
	"softraster/internal/mesh"
	"softraster/internal/pipeline"
	"softraster/internal/raster"
	"softraster/internal/shader"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .toml or .yaml scene file")
	meshPath := flag.String("mesh", "", "OBJ file or built-in shape: cube, plane, tetrahedron (default: cube)")
	outPath := flag.String("out", "", "Output image (default: render.png)")
	format := flag.String("format", "", "png, webp or tga (default: from -out)")
	width := flag.Int("width", 0, "Target width in pixels (default: 256)")
	height := flag.Int("height", 0, "Target height in pixels (default: width)")
	cull := flag.String("cull", "", "none, back or front (default: back)")
	depth := flag.Bool("depth", true, "Enable the depth test")
	derivatives := flag.Bool("derivatives", false, "Rasterize triangles in 2x2 quads and provide derivatives")
	topology := flag.String("topology", "", "triangles, lines or points (default: triangles)")
	shaderName := flag.String("shader", "", "Shader: "+strings.Join(shader.Names(), ", ")+" (default: lambert)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	scale := flag.Int("scale", 0, "Enlarge the saved image by this integer factor")
	preview := flag.Int("preview", 0, "Print a terminal preview this many columns wide")
	manifest := flag.String("manifest", "", "Write a JSON manifest to this path")
	diff := flag.String("diff", "", "Compare the render against this reference image")
	verbose := flag.Bool("v", false, "Debug logging to stderr")

	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if *verbose {
		pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fatalf("Error loading config: %v", err)
		}
	}

	// CLI flags override config file
	flags := config.Flags{
		Mesh:     *meshPath,
		Output:   *outPath,
		Format:   *format,
		Width:    *width,
		Height:   *height,
		Cull:     *cull,
		Topology: *topology,
		Shader:   *shaderName,
		Workers:  *workers,
		Scale:    *scale,
		Manifest: *manifest,
	}
	if set["depth"] {
		flags.DepthTest = depth
	}
	if set["derivatives"] {
		flags.Derivatives = derivatives
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		fatalf("Error: %v", err)
	}

	cullMode, err := raster.ParseCullMode(cfg.Cull)
	if err != nil {
		fatalf("Error: %v", err)
	}
	topo, err := pipeline.ParseTopology(cfg.Topology)
	if err != nil {
		fatalf("Error: %v", err)
	}
	outFormat, err := export.ParseFormat(cfg.Format)
	if err != nil {
		fatalf("Error: %v", err)
	}

	m, err := loadMesh(cfg.Mesh)
	if err != nil {
		fatalf("Error loading mesh: %v", err)
	}

	model := pipeline.Fit(m, cfg.Rotation, cfg.Margin)
	color := mathutil.Vec4(config.RGBA(cfg.Color, pipeline.DefaultColor))
	sh, err := shader.ByName(cfg.Shader, model, color)
	if err != nil {
		fatalf("Error: %v", err)
	}

	fb := raster.NewFrameBuffer(cfg.Width, cfg.Height)
	fb.Cull = cullMode
	fb.DepthTest = *cfg.DepthTest
	fb.Derivatives = cfg.Derivatives
	fb.Clear(mathutil.Vec4(config.RGBA(cfg.Background, [4]float64{})))

	r := pipeline.New(fb, sh, cfg.Workers)
	if len(cfg.Color) > 0 {
		r.Color = &color
	}

	// Print summary
	fmt.Printf("Mesh: %s (%d vertices, %d faces)\n", cfg.Mesh, len(m.Positions), len(m.Faces))
	fmt.Printf("Target: %dx%d, cull %s, depth %v, derivatives %v\n",
		cfg.Width, cfg.Height, cullMode, fb.DepthTest, fb.Derivatives)
	fmt.Printf("Shader: %s, Topology: %s, Workers: %d\n", cfg.Shader, topo, r.Workers())
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := r.Draw(ctx, m, topo)
	if errors.Is(err, context.Canceled) {
		fatalf("Interrupted after %d/%d faces", stats.Faces, len(m.Faces))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %d primitives rejected: %v\n", stats.Errors, err)
	}

	img := export.Scale(fb.Image(), cfg.Scale)
	if err := export.Save(cfg.Output, img, outFormat); err != nil {
		fatalf("Error saving image: %v", err)
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fms (raster %.1fms)\n", ms(elapsed), ms(stats.Elapsed))
	fmt.Printf("Primitives: %d, Output: %s\n", stats.Primitives, cfg.Output)

	if *preview > 0 {
		if err := export.Preview(os.Stdout, fb.Image(), *preview); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: preview failed: %v\n", err)
		}
	}

	// Write manifest
	if cfg.Manifest != "" {
		err := export.WriteManifest(cfg.Manifest, export.Manifest{
			Image:       cfg.Output,
			Format:      outFormat,
			Width:       img.Bounds().Dx(),
			Height:      img.Bounds().Dy(),
			Mesh:        cfg.Mesh,
			Shader:      cfg.Shader,
			Topology:    topo.String(),
			Cull:        cullMode.String(),
			DepthTest:   fb.DepthTest,
			Derivatives: fb.Derivatives,
			Workers:     r.Workers(),
			Faces:       stats.Faces,
			Primitives:  stats.Primitives,
			Errors:      stats.Errors,
			ElapsedMS:   ms(stats.Elapsed),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", cfg.Manifest)
		}
	}

	if *diff != "" {
		ref, err := export.Load(*diff)
		if err != nil {
			fatalf("Error loading reference: %v", err)
		}
		n, err := export.Diff(img, ref, 1)
		if err != nil {
			fatalf("Error: %v", err)
		}
		fmt.Printf("Diff: %d pixels differ from %s\n", n, *diff)
		if n > 0 {
			os.Exit(1)
		}
	}
}

func loadMesh(name string) (*mesh.Mesh, error) {
	switch strings.ToLower(name) {
	case "cube":
		return mesh.Cube(), nil
	case "plane":
		return mesh.Plane(), nil
	case "tetrahedron":
		return mesh.Tetrahedron(), nil
	}
	return mesh.LoadOBJ(name)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
