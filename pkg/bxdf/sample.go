package bxdf

import (
	"fmt"

	"github.com/df07/go-scatter/pkg/core"
)

// BSDFSample is the result of importance sampling a scattering function.
// A PDF of zero means there is no valid sample.
type BSDFSample struct {
	F     core.Spectrum
	Wi    core.Vec3
	PDF   float64
	Flags Flags
	// Eta is the relative index of refraction along a transmitted path, 1 otherwise
	Eta float64
	// PDFIsProportional is set when PDF is only proportional to the true density
	PDFIsProportional bool
}

func newSample(f core.Spectrum, wi core.Vec3, pdf float64, flags Flags) BSDFSample {
	return BSDFSample{F: f, Wi: wi, PDF: pdf, Flags: flags, Eta: 1}
}

func (s BSDFSample) IsReflection() bool   { return s.Flags.IsReflective() }
func (s BSDFSample) IsTransmission() bool { return s.Flags.IsTransmissive() }
func (s BSDFSample) IsDiffuse() bool      { return s.Flags.IsDiffuse() }
func (s BSDFSample) IsGlossy() bool       { return s.Flags.IsGlossy() }
func (s BSDFSample) IsSpecular() bool     { return s.Flags.IsSpecular() }

func (s BSDFSample) String() string {
	return fmt.Sprintf("[ BSDFSample f: %v wi: %v pdf: %g flags: %v eta: %g pdfIsProportional: %v ]",
		s.F, s.Wi, s.PDF, s.Flags, s.Eta, s.PDFIsProportional)
}

// valid reports whether a sample contributes anything
func (s BSDFSample) valid() bool {
	return s.PDF > 0 && s.F.NonZero() && s.Wi.Z != 0
}
