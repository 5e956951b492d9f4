// glopstool is a CLI utility for checking glops geometry and level files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/glops/internal/config"
	"github.com/Faultbox/glops/internal/importer"
	"github.com/Faultbox/glops/internal/logger"
	"github.com/Faultbox/glops/internal/scene"
	"github.com/Faultbox/glops/internal/world"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "inspect", "i":
		cmdInspect(args)
	case "validate", "v":
		cmdValidate(args)
	case "schema":
		cmdSchema(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`glopstool - glops geometry and level utility

Usage:
  glopstool <command> [options]

Commands:
  inspect [-config f] <geometry.yaml>  Show imported entities
  validate [-config f] <level.yaml>    Load a level into an empty scene
  schema [-config f]                   Show the configured vertex schema

Examples:
  glopstool inspect levels/yard.geo.yaml
  glopstool validate -strict levels/yard.yaml
  glopstool schema -config glops.yaml`)
}

// loadConfig returns the file's config, or the defaults when path is empty.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newImporter builds an importer whose warnings go to stderr.
func newImporter(cfg *config.Config, verbose bool) *importer.Importer {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, Console: true})
	if err != nil {
		log = zap.NewNop()
	}
	schema, err := cfg.Mesh.Schema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	im, err := importer.New(importer.Options{
		Schema:         schema,
		DeclaredStride: cfg.Mesh.DeclaredStride,
		StrictStride:   cfg.Mesh.StrictSchema,
	}, log, logger.NewDiagnostics(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return im
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file for the vertex schema")
	verbose := fs.Bool("v", false, "Log importer details")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glopstool inspect [-config f] <geometry.yaml>")
		os.Exit(1)
	}

	im := newImporter(loadConfig(*cfgPath), *verbose)
	imported, err := im.Import(importer.YAMLLoader{}, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File: %s\n", fs.Arg(0))
	fmt.Printf("Schema: %s (stride %d)\n", im.Schema(), im.Schema().Stride())
	fmt.Printf("Entities: %d\n\n", len(imported))

	var verts, tris int
	for _, e := range imported {
		m := e.Mesh
		verts += m.VertexCount()
		tris += m.TriangleCount()
		fmt.Printf("  %-24s %6d verts %6d tris  radius %.3f  at (%.2f, %.2f, %.2f)\n",
			m.Name, m.VertexCount(), m.TriangleCount(), m.HitRadius,
			e.Placement.X, e.Placement.Y, e.Placement.Z)
		if tex := m.Material.DiffuseTexture; tex != "" {
			fmt.Printf("  %-24s texture %s\n", "", tex)
		}
	}
	fmt.Printf("\nTotal: %d vertices, %d triangles\n", verts, tris)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file for schema and scene options")
	strict := fs.Bool("strict", false, "Fail when a level name matches nothing")
	verbose := fs.Bool("v", false, "Log importer details")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: glopstool validate [-config f] [-strict] <level.yaml>")
		os.Exit(1)
	}

	cfg := loadConfig(*cfgPath)
	level, err := world.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// No render, audio or input: the scene only records what the level does.
	s := scene.New(cfg.SceneOptions(), scene.Deps{})
	rep, err := level.Apply(s, newImporter(cfg, *verbose), importer.YAMLLoader{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Level: %s\n", level.Name)
	for _, line := range rep.Lines() {
		fmt.Printf("  %s\n", line)
	}
	fmt.Printf("\n(%d entities, %d in scene)\n", rep.Total(), s.Len())

	if *strict && len(rep.Missing) > 0 {
		fmt.Fprintf(os.Stderr, "%d unmatched names\n", len(rep.Missing))
		os.Exit(1)
	}
}

func cmdSchema(args []string) {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file to read")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	schema, err := cfg.Mesh.Schema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stride: %d floats\n", schema.Stride())
	for _, a := range schema.Attributes() {
		off, _ := schema.Offset(a.Semantic)
		fmt.Printf("  %-10s %d components at offset %d\n", a.Semantic, a.Components, off)
	}
	if cfg.Mesh.DeclaredStride > 0 {
		if err := schema.CheckStride(cfg.Mesh.DeclaredStride); err != nil {
			fmt.Printf("\nwarning: %v\n", err)
		}
	}
}
