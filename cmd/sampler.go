package cmd

import (
	"bytes"
	"fmt"

	"github.com/df07/go-scatter/pkg/config"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/logger"
	"github.com/df07/go-scatter/pkg/sampler"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// SamplerCheckFlags configure the sampler-check command
var SamplerCheckFlags = append([]cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: 8,
		Usage: "width of the pixel block",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 8,
		Usage: "height of the pixel block",
	},
	cli.BoolFlag{
		Name:  "all",
		Usage: "check every sampler type instead of the configured one",
	},
}, SamplerFlags...)

// SamplerCheck draws a block of pixels from the sampler and reports the
// sample distribution and elementary interval stratification.
func SamplerCheck(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := overrideSampler(ctx, cfg); err != nil {
		return err
	}
	w, h := ctx.Int("width"), ctx.Int("height")
	if w < 1 || h < 1 {
		return errors.Errorf("pixel block %dx%d is empty", w, h)
	}
	bounds := core.NewBounds2i(core.NewPoint2i(0, 0), core.NewPoint2i(w, h))

	types := []string{cfg.Sampler.Type}
	if ctx.Bool("all") {
		types = config.SamplerTypes
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Sampler", "spp", "Samples", "Mean", "Min", "Max", "Stratified"})

	for _, name := range types {
		s, err := sampler.New(name, cfg.Sampler.SamplesPerPixel, 1, cfg.Sampler.Seed)
		if err != nil {
			return err
		}
		r := sampler.Check(s, bounds)

		stratified := "n/a"
		if r.Checked {
			stratified = fmt.Sprintf("%d/%d pixels", r.Pixels-r.Violations, r.Pixels)
		}
		table.Append([]string{
			name,
			fmt.Sprintf("%d", s.SamplesPerPixel()),
			fmt.Sprintf("%d", r.Samples),
			fmt.Sprintf("(%.4f, %.4f)", r.Mean.X, r.Mean.Y),
			fmt.Sprintf("(%.4f, %.4f)", r.Min.X, r.Min.Y),
			fmt.Sprintf("(%.4f, %.4f)", r.Max.X, r.Max.Y),
			stratified,
		})
	}
	table.Render()
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}
