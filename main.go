package main

import (
	"fmt"
	"os"

	"github.com/df07/go-scatter/cmd"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "go-scatter"
	app.Usage = "bake scattering tables and inspect mesh and sampler data"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML configuration file, defaults are used when empty",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn or error",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write logs to this rotated file",
		},
		cli.BoolFlag{
			Name:  "verbose, V",
			Usage: "enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "bake",
			Usage: "tabulate directional albedo over cosθ and roughness",
			Description: `
Estimate the directional albedo of a scattering family for a grid of outgoing
angles and roughness values, plus the hemispherical average of every row.

The table is printed as a summary and optionally written as a 16-bit
grayscale TIFF with one pixel per cell.`,
			Flags:  cmd.BakeFlags,
			Action: cmd.Bake,
		},
		{
			Name:      "mesh",
			Usage:     "load PLY meshes and PBRT scene meshes through the shared buffer caches",
			ArgsUsage: "mesh.ply scene.pbrt ...",
			Flags:     cmd.MeshFlags,
			Action:    cmd.MeshInfo,
		},
		{
			Name:   "sampler-check",
			Usage:  "report sample distribution and stratification of the pixel samplers",
			Flags:  cmd.SamplerCheckFlags,
			Action: cmd.SamplerCheck,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
