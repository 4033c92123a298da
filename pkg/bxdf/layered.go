package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/hashing"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/df07/go-scatter/pkg/sampling"
	"github.com/df07/go-scatter/pkg/scattering"
)

// layer is the scattering interface a LayeredBxDF needs from its two
// interfaces
type layer interface {
	F(wo, wi core.Vec3, mode TransportMode) core.Spectrum
	SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool)
	PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64
	Flags() Flags
}

// LayeredBxDF stacks two interfaces separated by a slab of the given
// thickness, optionally filled with a scattering medium of the given albedo
// and Henyey-Greenstein asymmetry g. Light transport between the interfaces
// is estimated stochastically with a random walk, so F and PDF are
// themselves Monte Carlo estimates. Both sides of the stack see the top
// interface first.
type LayeredBxDF[T, B layer] struct {
	top       T
	bottom    B
	thickness float64
	g         float64
	albedo    core.Spectrum
	maxDepth  int
	nSamples  int
}

// CoatedDiffuseBxDF is a dielectric coating over a diffuse base
type CoatedDiffuseBxDF = LayeredBxDF[*DielectricBxDF, *DiffuseBxDF]

// GeneralLayeredBxDF stacks two arbitrary scattering functions
type GeneralLayeredBxDF = LayeredBxDF[Handle, Handle]

func newLayeredBxDF[T, B layer](top T, bottom B, thickness float64, albedo core.Spectrum, g float64, maxDepth, nSamples int) LayeredBxDF[T, B] {
	if maxDepth <= 0 || nSamples <= 0 {
		panic(fmt.Sprintf("LayeredBxDF: maxDepth %d and nSamples %d must be positive", maxDepth, nSamples))
	}
	return LayeredBxDF[T, B]{
		top:       top,
		bottom:    bottom,
		thickness: max(thickness, math.SmallestNonzeroFloat64),
		g:         g,
		albedo:    albedo,
		maxDepth:  maxDepth,
		nSamples:  nSamples,
	}
}

// NewCoatedDiffuseBxDF creates a dielectric coating over a diffuse base
func NewCoatedDiffuseBxDF(top *DielectricBxDF, bottom *DiffuseBxDF, thickness float64, albedo core.Spectrum, g float64, maxDepth, nSamples int) CoatedDiffuseBxDF {
	return newLayeredBxDF(top, bottom, thickness, albedo, g, maxDepth, nSamples)
}

// NewGeneralLayeredBxDF stacks top over bottom
func NewGeneralLayeredBxDF(top, bottom Handle, thickness float64, albedo core.Spectrum, g float64, maxDepth, nSamples int) GeneralLayeredBxDF {
	if top.IsNil() || bottom.IsNil() {
		panic("GeneralLayeredBxDF: nil interface")
	}
	return newLayeredBxDF(top, bottom, thickness, albedo, g, maxDepth, nSamples)
}

// Top returns the upper interface
func (l *LayeredBxDF[T, B]) Top() T { return l.top }

// Bottom returns the lower interface
func (l *LayeredBxDF[T, B]) Bottom() B { return l.bottom }

// tr is the transmittance through the slab medium over a depth dz along w
func tr(dz float64, w core.Vec3) float64 {
	if math.Abs(dz) <= math.SmallestNonzeroFloat64 {
		return 1
	}
	return math.Exp(-math.Abs(dz / w.Z))
}

// walkRNG derives a deterministic generator from the arguments of a call so
// that repeated evaluations agree
func walkRNG(a, b core.Vec3) *rng.RNG {
	r := rng.NewWithSequence(hashing.HashFloats(a.X, a.Y, a.Z), hashing.HashFloats(b.X, b.Y, b.Z))
	return &r
}

func uniform(r *rng.RNG) float64 {
	return min(r.Float64(), core.OneMinusEpsilon)
}

func uniform2(r *rng.RNG) core.Vec2 {
	return core.NewVec2(uniform(r), uniform(r))
}

func (l *LayeredBxDF[T, B]) Flags() Flags {
	topFlags, bottomFlags := l.top.Flags(), l.bottom.Flags()
	flags := FlagReflection
	if topFlags.IsSpecular() {
		flags |= FlagSpecular
	}
	if topFlags.IsDiffuse() || bottomFlags.IsDiffuse() || l.albedo.NonZero() {
		flags |= FlagDiffuse
	} else if topFlags.IsGlossy() || bottomFlags.IsGlossy() {
		flags |= FlagGlossy
	}
	if topFlags.IsTransmissive() && bottomFlags.IsTransmissive() {
		flags |= FlagTransmission
	}
	return flags
}

func (l *LayeredBxDF[T, B]) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	var top, bottom layer = l.top, l.bottom
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}
	// Light always enters through the top after the flip above
	enter := top
	sameHemisphere := core.SameHemisphere(wo, wi)
	exit, nonExit := bottom, top
	exitZ := 0.0
	if sameHemisphere {
		exit, nonExit = top, bottom
		exitZ = l.thickness
	}

	nSamples := float64(l.nSamples)
	var f core.Spectrum
	if sameHemisphere {
		f = enter.F(wo, wi, mode).Scale(nSamples)
	}

	r := walkRNG(wo, wi)
	phase := scattering.HGPhaseFunction{G: l.g}

	for s := 0; s < l.nSamples; s++ {
		// Sample transmission through the entrance interface
		wos, ok := enter.SampleF(wo, uniform(r), uniform2(r), mode, Transmission)
		if !ok || !wos.valid() {
			continue
		}

		// Sample the exit direction towards wi, the adjoint of the light path
		wis, ok := exit.SampleF(wi, uniform(r), uniform2(r), mode.Flip(), Transmission)
		if !ok || !wis.valid() {
			continue
		}

		beta := wos.F.Scale(core.AbsCosTheta(wos.Wi) / wos.PDF)
		z := l.thickness
		w := wos.Wi

		for depth := 0; depth < l.maxDepth; depth++ {
			// Russian roulette
			if depth > 3 && beta.MaxComponent() < 0.25 {
				q := max(0, 1-beta.MaxComponent())
				if uniform(r) < q {
					break
				}
				beta = beta.Scale(1 / (1 - q))
			}

			if l.albedo.IsBlack() {
				// Cross the slab without scattering
				if z == l.thickness {
					z = 0
				} else {
					z = l.thickness
				}
				beta = beta.Scale(tr(l.thickness, w))
			} else {
				sigmaT := 1.0
				dz := core.SampleExponential(uniform(r), sigmaT/math.Abs(w.Z))
				zp := z - dz
				if w.Z > 0 {
					zp = z + dz
				}
				if zp == z {
					continue
				}
				if 0 < zp && zp < l.thickness {
					// Scattering inside the medium; connect to the exit sample
					wt := 1.0
					if !exit.Flags().IsSpecular() {
						wt = sampling.PowerHeuristic(1, wis.PDF, 1, phase.PDF(w.Negate(), wis.Wi.Negate()))
					}
					contrib := beta.Mul(l.albedo).Mul(wis.F).
						Scale(phase.P(w.Negate(), wis.Wi.Negate()) * wt * tr(zp-exitZ, wis.Wi) / wis.PDF)
					f = f.Add(contrib)

					wiPhase, pdfPhase, ok := phase.SampleP(w.Negate(), uniform2(r))
					if !ok || pdfPhase == 0 || wiPhase.Z == 0 {
						continue
					}
					beta = beta.Mul(l.albedo).Scale(phase.P(w.Negate(), wiPhase) / pdfPhase)
					w = wiPhase
					z = zp

					// Account for leaving through the exit interface along the phase sample
					if ((z < exitZ && w.Z > 0) || (z > exitZ && w.Z < 0)) && !exit.Flags().IsSpecular() {
						fExit := exit.F(w.Negate(), wi, mode)
						if fExit.NonZero() {
							exitPDF := exit.PDF(w.Negate(), wi, mode, Transmission)
							wt := sampling.PowerHeuristic(1, pdfPhase, 1, exitPDF)
							f = f.Add(beta.Mul(fExit).Scale(tr(zp-exitZ, wiPhase) * wt))
						}
					}
					continue
				}
				z = core.Clamp(zp, 0, l.thickness)
			}

			if z == exitZ {
				// Reflect off the exit interface back into the slab
				bs, ok := exit.SampleF(w.Negate(), uniform(r), uniform2(r), mode, Reflection)
				if !ok || !bs.valid() {
					break
				}
				beta = beta.Mul(bs.F).Scale(core.AbsCosTheta(bs.Wi) / bs.PDF)
				w = bs.Wi
				continue
			}

			// Next event estimation through the exit sample at the other interface
			if !nonExit.Flags().IsSpecular() {
				wt := 1.0
				if !exit.Flags().IsSpecular() {
					wt = sampling.PowerHeuristic(1, wis.PDF, 1, nonExit.PDF(w.Negate(), wis.Wi.Negate(), mode, ReflTransAll))
				}
				contrib := beta.Mul(nonExit.F(w.Negate(), wis.Wi.Negate(), mode)).Mul(wis.F).
					Scale(core.AbsCosTheta(wis.Wi) * wt * tr(l.thickness, wis.Wi) / wis.PDF)
				f = f.Add(contrib)
			}

			// Scatter off the non-exit interface
			bs, ok := nonExit.SampleF(w.Negate(), uniform(r), uniform2(r), mode, Reflection)
			if !ok || !bs.valid() {
				break
			}
			beta = beta.Mul(bs.F).Scale(core.AbsCosTheta(bs.Wi) / bs.PDF)
			w = bs.Wi

			if !exit.Flags().IsSpecular() {
				fExit := exit.F(w.Negate(), wi, mode)
				if fExit.NonZero() {
					wt := 1.0
					if !nonExit.Flags().IsSpecular() {
						exitPDF := exit.PDF(w.Negate(), wi, mode, Transmission)
						wt = sampling.PowerHeuristic(1, bs.PDF, 1, exitPDF)
					}
					f = f.Add(beta.Mul(fExit).Scale(tr(l.thickness, bs.Wi) * wt))
				}
			}
		}
	}
	return f.Scale(1 / nSamples)
}

func (l *LayeredBxDF[T, B]) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	var top, bottom layer = l.top, l.bottom
	flipWi := false
	if wo.Z < 0 {
		wo = wo.Negate()
		flipWi = true
	}

	// Sample the entrance interface
	bs, ok := top.SampleF(wo, uc, u, mode, ReflTransAll)
	if !ok || !bs.valid() {
		return BSDFSample{}, false
	}
	if bs.IsReflection() {
		if sampleFlags&Reflection == 0 {
			return BSDFSample{}, false
		}
		if flipWi {
			bs.Wi = bs.Wi.Negate()
		}
		bs.PDFIsProportional = true
		return bs, true
	}
	w := bs.Wi
	specularPath := bs.IsSpecular()

	r := walkRNG(wo, core.NewVec3(uc, u.X, u.Y))
	f := bs.F.Scale(core.AbsCosTheta(bs.Wi))
	pdf := bs.PDF
	z := l.thickness
	phase := scattering.HGPhaseFunction{G: l.g}

	for depth := 0; depth < l.maxDepth; depth++ {
		// Russian roulette
		rrBeta := f.MaxComponent() / pdf
		if depth > 3 && rrBeta < 0.25 {
			q := max(0, 1-rrBeta)
			if uniform(r) < q {
				return BSDFSample{}, false
			}
			pdf *= 1 - q
		}
		if w.Z == 0 {
			return BSDFSample{}, false
		}

		if l.albedo.NonZero() {
			sigmaT := 1.0
			dz := core.SampleExponential(uniform(r), sigmaT/core.AbsCosTheta(w))
			zp := z - dz
			if w.Z > 0 {
				zp = z + dz
			}
			if zp == z {
				return BSDFSample{}, false
			}
			if 0 < zp && zp < l.thickness {
				wiPhase, pdfPhase, ok := phase.SampleP(w.Negate(), uniform2(r))
				if !ok || pdfPhase == 0 || wiPhase.Z == 0 {
					return BSDFSample{}, false
				}
				f = f.Mul(l.albedo).Scale(phase.P(w.Negate(), wiPhase))
				pdf *= pdfPhase
				specularPath = false
				w = wiPhase
				z = zp
				continue
			}
			z = core.Clamp(zp, 0, l.thickness)
		} else {
			if z == l.thickness {
				z = 0
			} else {
				z = l.thickness
			}
			f = f.Scale(tr(l.thickness, w))
		}

		iface := top
		if z == 0 {
			iface = bottom
		}
		bs, ok := iface.SampleF(w.Negate(), uniform(r), uniform2(r), mode, ReflTransAll)
		if !ok || !bs.valid() {
			return BSDFSample{}, false
		}
		f = f.Mul(bs.F)
		pdf *= bs.PDF
		specularPath = specularPath && bs.IsSpecular()
		w = bs.Wi

		if bs.IsTransmission() {
			flags := FlagTransmission
			if core.SameHemisphere(wo, w) {
				flags = FlagReflection
			}
			if specularPath {
				flags |= FlagSpecular
			} else {
				flags |= FlagGlossy
			}
			if !flags.Allows(sampleFlags) {
				return BSDFSample{}, false
			}
			if flipWi {
				w = w.Negate()
			}
			s := newSample(f, w, pdf, flags)
			s.PDFIsProportional = true
			return s, true
		}
		f = f.Scale(core.AbsCosTheta(bs.Wi))
	}
	return BSDFSample{}, false
}

func (l *LayeredBxDF[T, B]) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	var top, bottom layer = l.top, l.bottom
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}
	sameHemisphere := core.SameHemisphere(wo, wi)
	if sameHemisphere && sampleFlags&Reflection == 0 || !sameHemisphere && sampleFlags&Transmission == 0 {
		return 0
	}
	r := walkRNG(wi, wo)

	nSamples := float64(l.nSamples)
	pdfSum := 0.0
	if sameHemisphere {
		pdfSum += nSamples * top.PDF(wo, wi, mode, Reflection)
	}

	for s := 0; s < l.nSamples; s++ {
		if sameHemisphere {
			// Transmission through the top, reflection at the bottom, and
			// transmission back out
			rIface, tIface := bottom, top
			wos, okO := tIface.SampleF(wo, uniform(r), uniform2(r), mode, Transmission)
			wis, okI := tIface.SampleF(wi, uniform(r), uniform2(r), mode.Flip(), Transmission)
			if !okO || !okI || !wos.valid() || !wis.valid() {
				continue
			}
			if !tIface.Flags().IsNonSpecular() {
				pdfSum += rIface.PDF(wos.Wi.Negate(), wis.Wi.Negate(), mode, ReflTransAll)
				continue
			}
			rs, ok := rIface.SampleF(wos.Wi.Negate(), uniform(r), uniform2(r), mode, ReflTransAll)
			if !ok || !rs.valid() {
				continue
			}
			if !rIface.Flags().IsNonSpecular() {
				pdfSum += tIface.PDF(rs.Wi.Negate(), wi, mode, ReflTransAll)
				continue
			}
			rPDF := rIface.PDF(wos.Wi.Negate(), wis.Wi.Negate(), mode, ReflTransAll)
			pdfSum += sampling.PowerHeuristic(1, wis.PDF, 1, rPDF) * rPDF

			tPDF := tIface.PDF(rs.Wi.Negate(), wi, mode, ReflTransAll)
			pdfSum += sampling.PowerHeuristic(1, rs.PDF, 1, tPDF) * tPDF
			continue
		}

		// Transmission through both interfaces
		toIface, tiIface := top, bottom
		wos, ok := toIface.SampleF(wo, uniform(r), uniform2(r), mode, ReflTransAll)
		if !ok || !wos.valid() || wos.IsReflection() {
			continue
		}
		wis, ok := tiIface.SampleF(wi, uniform(r), uniform2(r), mode.Flip(), ReflTransAll)
		if !ok || !wis.valid() || wis.IsReflection() {
			continue
		}
		switch {
		case toIface.Flags().IsSpecular():
			pdfSum += tiIface.PDF(wos.Wi.Negate(), wi, mode, ReflTransAll)
		case tiIface.Flags().IsSpecular():
			pdfSum += toIface.PDF(wo, wis.Wi.Negate(), mode, ReflTransAll)
		default:
			pdfSum += (toIface.PDF(wo, wis.Wi.Negate(), mode, ReflTransAll) +
				tiIface.PDF(wos.Wi.Negate(), wi, mode, ReflTransAll)) / 2
		}
	}
	// Blend with a uniform density to cover paths the estimate misses
	return core.Lerp(0.9, 1/(4*math.Pi), pdfSum/nSamples)
}

// SampledPDFIsProportional is true: sampled densities only follow the
// walk that produced the direction
func (l *LayeredBxDF[T, B]) SampledPDFIsProportional() bool { return true }

func (l *LayeredBxDF[T, B]) String() string {
	return fmt.Sprintf("[ LayeredBxDF top: %v bottom: %v thickness: %g albedo: %v g: %g maxDepth: %d nSamples: %d ]",
		l.top, l.bottom, l.thickness, l.albedo, l.g, l.maxDepth, l.nSamples)
}
