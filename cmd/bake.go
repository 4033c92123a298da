package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/df07/go-scatter/pkg/bake"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// BakeFlags configure the bake command
var BakeFlags = append([]cli.Flag{
	cli.StringFlag{
		Name:  "family, f",
		Usage: "scattering family: coated-diffuse, dielectric, conductor or diffuse",
	},
	cli.IntFlag{
		Name:  "workers, w",
		Usage: "number of workers, 0 uses one per CPU",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "write the table as a 16-bit grayscale TIFF",
	},
	cli.Float64Flag{
		Name:  "eta",
		Usage: "index of refraction of the dielectric or conductor",
	},
}, SamplerFlags...)

// Bake tabulates the directional albedo of one scattering family and prints
// a summary.
func Bake(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if ctx.IsSet("family") {
		cfg.Bake.Family = ctx.String("family")
	}
	if ctx.IsSet("workers") {
		cfg.Bake.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("out") {
		cfg.Bake.Output = ctx.String("out")
	}
	if ctx.IsSet("eta") {
		cfg.Bake.Eta = ctx.Float64("eta")
	}
	if err := overrideSampler(ctx, cfg); err != nil {
		return err
	}

	job := bake.JobFromConfig(cfg)
	job.Logger = logger.Named("bake")

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := bake.Run(runCtx, job, cfg.Bake.Workers)
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.App.Writer, bake.Report(result))

	if cfg.Bake.Output != "" {
		if err := bake.WriteTIFF(cfg.Bake.Output, result); err != nil {
			return err
		}
		logger.Log.Info("wrote albedo table", zap.String("path", cfg.Bake.Output))
	}
	return nil
}
