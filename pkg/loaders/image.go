package loaders

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/sampling"
	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff" // TIFF decoder
)

// ImageData holds linear RGB pixels in row-major order, top row first
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Spectrum
}

// LoadImage loads a PNG, JPEG or TIFF image with channels scaled to [0, 1]
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image file")
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", filename)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Spectrum, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			pixels[y*width+x] = core.NewSpectrumRGB(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// At returns the pixel at column x, row y
func (img *ImageData) At(x, y int) core.Spectrum {
	return img.Pixels[y*img.Width+x]
}

// SamplingDistribution returns a density over (u,v) proportional to the
// average channel value. v runs bottom to top, so the last image row maps to
// v near 0.
func (img *ImageData) SamplingDistribution() *sampling.PiecewiseConstant2D {
	a := containers.NewArray2DSize[float64](img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			a.SetXY(x, img.Height-1-y, img.At(x, y).Average())
		}
	}
	return sampling.NewPiecewiseConstant2DFromArray(a)
}
