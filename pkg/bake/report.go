package bake

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

// Report renders a per-row summary of the table
func Report(r *Result) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Roughness", "E(grazing)", "E(normal)", "E avg", "1 - E avg", "Row time"})

	nx := r.Albedo.XSize()
	for y := 0; y < r.Albedo.YSize(); y++ {
		table.Append([]string{
			fmt.Sprintf("%.3f", r.Job.Roughness(y)),
			fmt.Sprintf("%.4f", r.Albedo.AtXY(0, y)),
			fmt.Sprintf("%.4f", r.Albedo.AtXY(nx-1, y)),
			fmt.Sprintf("%.4f", r.Average[y]),
			fmt.Sprintf("%.4f", 1-r.Average[y]),
			r.Stats.RowTimes[y].String(),
		})
	}
	a := r.Stats.Albedo
	table.SetFooter([]string{
		r.Job.Family,
		fmt.Sprintf("min %.4f", a.Min),
		fmt.Sprintf("max %.4f", a.Max),
		fmt.Sprintf("mean %.4f", a.Mean()),
		fmt.Sprintf("%d samples", r.Stats.Samples),
		r.Stats.Elapsed.String(),
	})
	table.Render()
	return buf.String()
}

// Image converts the table to a 16-bit grayscale image, one pixel per cell
// with values clamped to [0, 1]
func Image(r *Result) *image.Gray16 {
	nx, ny := r.Albedo.XSize(), r.Albedo.YSize()
	img := image.NewGray16(image.Rect(0, 0, nx, ny))
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			v := core.Clamp(r.Albedo.AtXY(x, y), 0, 1)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v*65535 + 0.5)})
		}
	}
	return img
}

// WriteTIFF stores the table as a deflate-compressed 16-bit grayscale TIFF
func WriteTIFF(path string, r *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := tiff.Encode(f, Image(r), &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
