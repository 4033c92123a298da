// Package cmd implements the command-line actions.
package cmd

import (
	"github.com/df07/go-scatter/pkg/config"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// setup loads the configuration named by the global flags and starts the
// logger. Flags override values from the file.
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	if ctx.GlobalIsSet("log-level") {
		cfg.Logging.Level = ctx.GlobalString("log-level")
	}
	if ctx.GlobalBool("verbose") {
		cfg.Logging.Level = "debug"
	}
	if ctx.GlobalIsSet("log-file") {
		cfg.Logging.LogFile = ctx.GlobalString("log-file")
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, errors.Wrap(err, "starting logger")
	}
	return cfg, nil
}

// overrideSampler applies the sampler flags shared by several commands
func overrideSampler(ctx *cli.Context, cfg *config.Config) error {
	if ctx.IsSet("sampler") {
		cfg.Sampler.Type = ctx.String("sampler")
	}
	if ctx.IsSet("spp") {
		cfg.Sampler.SamplesPerPixel = ctx.Int("spp")
	}
	if ctx.IsSet("seed") {
		cfg.Sampler.Seed = ctx.Int("seed")
	}
	return cfg.Validate()
}

// SamplerFlags selects the pixel sampler
var SamplerFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "sampler",
		Usage: "sampler type: zerotwo, stratified or random",
	},
	cli.IntFlag{
		Name:  "spp",
		Usage: "samples per pixel",
	},
	cli.IntFlag{
		Name:  "seed",
		Usage: "sampler seed",
	},
}
