// Package bake tabulates directional albedo of the scattering models over
// outgoing angle and roughness. The tables feed energy compensation and
// serve as a regression check on the sampling code.
package bake

import (
	"fmt"

	"github.com/df07/go-scatter/pkg/bxdf"
	"github.com/df07/go-scatter/pkg/config"
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/sampler"
	"github.com/df07/go-scatter/pkg/scattering"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInvalidJob is the cause of every Job validation error
var ErrInvalidJob = errors.New("bake: invalid job")

// Coating parameters of the coated-diffuse family
const (
	coatThickness = 0.01
	coatMaxDepth  = 10
	coatNSamples  = 1
)

// Job describes one albedo table. Cell (x, y) holds the directional albedo
// for cosθo = (x+0.5)/CosThetaRes at roughness y/(RoughRes-1).
type Job struct {
	Family      string // one of config.BakeFamilies
	CosThetaRes int
	RoughRes    int
	Eta         float64
	K           float64 // conductor absorption

	Sampler string // sampler name, see sampler.New
	Samples int    // samples per cell
	Seed    int

	Logger *zap.Logger // optional
}

// JobFromConfig builds a Job from the bake and sampler sections
func JobFromConfig(cfg *config.Config) Job {
	return Job{
		Family:      cfg.Bake.Family,
		CosThetaRes: cfg.Bake.CosThetaRes,
		RoughRes:    cfg.Bake.RoughRes,
		Eta:         cfg.Bake.Eta,
		K:           cfg.Bake.K,
		Sampler:     cfg.Sampler.Type,
		Samples:     cfg.Sampler.SamplesPerPixel,
		Seed:        cfg.Sampler.Seed,
	}
}

// Validate reports whether the job can run
func (j Job) Validate() error {
	known := false
	for _, f := range config.BakeFamilies {
		known = known || f == j.Family
	}
	switch {
	case !known:
		return errors.Wrapf(ErrInvalidJob, "unknown family %q", j.Family)
	case j.CosThetaRes < 2 || j.RoughRes < 2:
		return errors.Wrapf(ErrInvalidJob, "resolution %dx%d is below 2x2", j.CosThetaRes, j.RoughRes)
	case j.Samples <= 0:
		return errors.Wrapf(ErrInvalidJob, "sample count %d", j.Samples)
	case j.Eta <= 0 || j.K < 0:
		return errors.Wrapf(ErrInvalidJob, "eta %g k %g", j.Eta, j.K)
	}
	if _, err := j.newSampler(); err != nil {
		return errors.Wrap(ErrInvalidJob, err.Error())
	}
	return nil
}

// Roughness returns the roughness of table row y
func (j Job) Roughness(y int) float64 {
	return float64(y) / float64(j.RoughRes-1)
}

// CosTheta returns the outgoing cosine of table column x
func (j Job) CosTheta(x int) float64 {
	return (float64(x) + 0.5) / float64(j.CosThetaRes)
}

// newSampler creates the sampler one worker draws cell samples from: one 1D
// and two 2D dimensions per sample
func (j Job) newSampler() (sampler.PixelSampler, error) {
	return sampler.New(j.Sampler, j.Samples, 2, j.Seed)
}

// newBxDF allocates the family's scattering function at the given roughness
func (j Job) newBxDF(s *bxdf.ScratchBuffer, roughness float64) bxdf.Handle {
	alpha := scattering.RoughnessToAlpha(roughness)
	distrib := scattering.NewTrowbridgeReitz(alpha, alpha)
	white := core.NewSpectrum(1)

	switch j.Family {
	case "diffuse":
		// Oren-Nayar slope deviation in degrees
		return s.Diffuse(bxdf.NewDiffuseBxDF(white, core.Spectrum{}, 90*roughness))
	case "dielectric":
		return s.Dielectric(bxdf.NewDielectricBxDF(j.Eta, distrib))
	case "conductor":
		return s.MicrofacetReflection(bxdf.NewConductorBxDF(distrib, core.NewSpectrum(j.Eta), core.NewSpectrum(j.K)))
	case "coated-diffuse":
		top := s.DielectricLayer(bxdf.NewDielectricBxDF(j.Eta, distrib))
		bottom := s.DiffuseLayer(bxdf.NewDiffuseBxDF(white, core.Spectrum{}, 0))
		return s.CoatedDiffuse(bxdf.NewCoatedDiffuseBxDF(top, bottom, coatThickness, core.Spectrum{}, 0, coatMaxDepth, coatNSamples))
	}
	panic(fmt.Sprintf("bake: unknown family %q", j.Family))
}
