package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/sampling"
	"github.com/df07/go-scatter/pkg/scattering"
)

// hairPMax is the number of explicitly modeled scattering lobes; higher
// orders are folded into one remainder term
const hairPMax = 3

var (
	eumelaninSigmaA   = core.NewSpectrumRGB(0.419, 0.697, 1.37)
	pheomelaninSigmaA = core.NewSpectrumRGB(0.187, 0.4, 1.05)
)

// HairBxDF scatters light from a hair fiber. Directions use the fiber frame:
// x runs along the fiber and the curve's width is along y.
type HairBxDF struct {
	h, eta     float64
	sigmaA     core.Spectrum
	betaM      float64
	betaN      float64
	v          [hairPMax + 1]float64
	s          float64
	sin2kAlpha [3]float64
	cos2kAlpha [3]float64
}

// NewHairBxDF creates a fiber scatterer. h is the offset across the fiber
// in [-1, 1], eta the index of refraction of its interior, sigmaA its
// absorption, betaM and betaN the longitudinal and azimuthal roughness and
// alpha the cuticle scale angle in degrees.
func NewHairBxDF(h, eta float64, sigmaA core.Spectrum, betaM, betaN, alpha float64) HairBxDF {
	if h < -1 || h > 1 {
		panic(fmt.Sprintf("HairBxDF: h %g outside [-1, 1]", h))
	}
	if betaM < 0 || betaM > 1 || betaN < 0 || betaN > 1 {
		panic(fmt.Sprintf("HairBxDF: roughness (%g, %g) outside [0, 1]", betaM, betaN))
	}
	b := HairBxDF{h: h, eta: eta, sigmaA: sigmaA, betaM: betaM, betaN: betaN}

	// Longitudinal variance for each lobe
	b.v[0] = core.Sqr(0.726*betaM + 0.812*core.Sqr(betaM) + 3.7*math.Pow(betaM, 20))
	b.v[1] = 0.25 * b.v[0]
	b.v[2] = 4 * b.v[0]
	for p := 3; p <= hairPMax; p++ {
		b.v[p] = b.v[2]
	}

	// Azimuthal logistic scale
	b.s = core.SqrtPiOver8 * (0.265*betaN + 1.194*core.Sqr(betaN) + 5.372*math.Pow(betaN, 22))

	// Scale tilts for rotating the specular lobes
	b.sin2kAlpha[0] = math.Sin(core.Radians(alpha))
	b.cos2kAlpha[0] = core.SafeSqrt(1 - core.Sqr(b.sin2kAlpha[0]))
	for i := 1; i < 3; i++ {
		b.sin2kAlpha[i] = 2 * b.cos2kAlpha[i-1] * b.sin2kAlpha[i-1]
		b.cos2kAlpha[i] = core.Sqr(b.cos2kAlpha[i-1]) - core.Sqr(b.sin2kAlpha[i-1])
	}
	return b
}

// SigmaAFromConcentration returns the absorption of a fiber with the given
// eumelanin and pheomelanin concentrations
func SigmaAFromConcentration(ce, cp float64) core.Spectrum {
	return eumelaninSigmaA.Scale(ce).Add(pheomelaninSigmaA.Scale(cp))
}

// SigmaAFromReflectance inverts the multiple-scattering albedo of a fiber
// with azimuthal roughness betaN to find the absorption yielding color c
func SigmaAFromReflectance(c core.Spectrum, betaN float64) core.Spectrum {
	var sigmaA core.Spectrum
	denom := core.EvaluatePolynomial(betaN, 5.969, -0.215, 2.532, -10.73, 5.574, 0.245)
	for i := range c {
		sigmaA[i] = core.Sqr(math.Log(c[i]) / denom)
	}
	return sigmaA
}

func (b *HairBxDF) Flags() Flags { return GlossyReflection }

// tiltedTheta rotates the outgoing elevation by the cuticle tilt of lobe p
func (b *HairBxDF) tiltedTheta(p int, sinThetaO, cosThetaO float64) (float64, float64) {
	var sinThetaOp, cosThetaOp float64
	switch p {
	case 0:
		sinThetaOp = sinThetaO*b.cos2kAlpha[1] - cosThetaO*b.sin2kAlpha[1]
		cosThetaOp = cosThetaO*b.cos2kAlpha[1] + sinThetaO*b.sin2kAlpha[1]
	case 1:
		sinThetaOp = sinThetaO*b.cos2kAlpha[0] + cosThetaO*b.sin2kAlpha[0]
		cosThetaOp = cosThetaO*b.cos2kAlpha[0] - sinThetaO*b.sin2kAlpha[0]
	case 2:
		sinThetaOp = sinThetaO*b.cos2kAlpha[2] + cosThetaO*b.sin2kAlpha[2]
		cosThetaOp = cosThetaO*b.cos2kAlpha[2] - sinThetaO*b.sin2kAlpha[2]
	default:
		sinThetaOp, cosThetaOp = sinThetaO, cosThetaO
	}
	return sinThetaOp, math.Abs(cosThetaOp)
}

// transmittance returns the absorption along one internal path segment and
// the refracted azimuthal angle gammaT
func (b *HairBxDF) transmittance(sinThetaO, cosThetaO float64) (core.Spectrum, float64) {
	sinThetaT := sinThetaO / b.eta
	cosThetaT := core.SafeSqrt(1 - core.Sqr(sinThetaT))

	// Modified index of refraction for the projected azimuthal problem
	etap := core.SafeSqrt(b.eta*b.eta-core.Sqr(sinThetaO)) / cosThetaO
	sinGammaT := b.h / etap
	cosGammaT := core.SafeSqrt(1 - core.Sqr(sinGammaT))
	gammaT := core.SafeASin(sinGammaT)

	t := b.sigmaA.Scale(-2 * cosGammaT / cosThetaT).Exp()
	return t, gammaT
}

func (b *HairBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	sinThetaI := wi.X
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))
	phiI := math.Atan2(wi.Z, wi.Y)

	t, gammaT := b.transmittance(sinThetaO, cosThetaO)
	ap := hairAp(cosThetaO, b.eta, b.h, t)

	phi := phiI - phiO
	var fsum core.Spectrum
	for p := 0; p < hairPMax; p++ {
		sinThetaOp, cosThetaOp := b.tiltedTheta(p, sinThetaO, cosThetaO)
		w := hairMp(cosThetaI, cosThetaOp, sinThetaI, sinThetaOp, b.v[p]) *
			hairNp(phi, p, b.s, gammaO, gammaT)
		fsum = fsum.Add(ap[p].Scale(w))
	}
	// Remaining orders are treated as isotropic in azimuth
	w := hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, b.v[hairPMax]) / (2 * math.Pi)
	fsum = fsum.Add(ap[hairPMax].Scale(w))

	if c := core.AbsCosTheta(wi); c > 0 {
		fsum = fsum.Scale(1 / c)
	}
	return fsum
}

// apPDF returns the probability of sampling each lobe, proportional to its
// average attenuation
func (b *HairBxDF) apPDF(cosThetaO float64) [hairPMax + 1]float64 {
	sinThetaO := core.SafeSqrt(1 - core.Sqr(cosThetaO))
	t, _ := b.transmittance(sinThetaO, cosThetaO)
	ap := hairAp(cosThetaO, b.eta, b.h, t)

	var pdf [hairPMax + 1]float64
	sumY := 0.0
	for _, a := range ap {
		sumY += a.Average()
	}
	for i, a := range ap {
		pdf[i] = a.Average() / sumY
	}
	return pdf
}

func (b *HairBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Reflection == 0 {
		return BSDFSample{}, false
	}
	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	// Choose a lobe, then reuse the remapped control sample for azimuth
	apPDF := b.apPDF(cosThetaO)
	p, _, uc := sampling.SampleDiscrete(apPDF[:], uc)
	if p < 0 {
		return BSDFSample{}, false
	}
	sinThetaOp, cosThetaOp := b.tiltedTheta(p, sinThetaO, cosThetaO)

	// Sample the longitudinal scattering function
	cosTheta := 1 + b.v[p]*math.Log(max(u.X, 1e-5)+(1-u.X)*math.Exp(-2/b.v[p]))
	sinTheta := core.SafeSqrt(1 - core.Sqr(cosTheta))
	cosPhi := math.Cos(2 * math.Pi * u.Y)
	sinThetaI := -cosTheta*sinThetaOp + sinTheta*cosPhi*cosThetaOp
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))

	// Sample the azimuthal scattering function
	etap := core.SafeSqrt(b.eta*b.eta-core.Sqr(sinThetaO)) / cosThetaO
	gammaT := core.SafeASin(b.h / etap)
	var dphi float64
	if p < hairPMax {
		dphi = hairPhi(p, gammaO, gammaT) + core.SampleTrimmedLogistic(uc, b.s, -math.Pi, math.Pi)
	} else {
		dphi = 2 * math.Pi * uc
	}

	phiI := phiO + dphi
	wi := core.NewVec3(sinThetaI, cosThetaI*math.Cos(phiI), cosThetaI*math.Sin(phiI))

	pdf := b.pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, dphi, gammaO, gammaT, apPDF)
	return newSample(b.F(wo, wi, mode), wi, pdf, GlossyReflection), true
}

func (b *HairBxDF) pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, phi, gammaO, gammaT float64, apPDF [hairPMax + 1]float64) float64 {
	pdf := 0.0
	for p := 0; p < hairPMax; p++ {
		sinThetaOp, cosThetaOp := b.tiltedTheta(p, sinThetaO, cosThetaO)
		pdf += hairMp(cosThetaI, cosThetaOp, sinThetaI, sinThetaOp, b.v[p]) *
			apPDF[p] * hairNp(phi, p, b.s, gammaO, gammaT)
	}
	pdf += hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, b.v[hairPMax]) *
		apPDF[hairPMax] / (2 * math.Pi)
	return pdf
}

func (b *HairBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&Reflection == 0 {
		return 0
	}
	sinThetaO := wo.X
	cosThetaO := core.SafeSqrt(1 - core.Sqr(sinThetaO))
	phiO := math.Atan2(wo.Z, wo.Y)
	gammaO := core.SafeASin(b.h)

	sinThetaI := wi.X
	cosThetaI := core.SafeSqrt(1 - core.Sqr(sinThetaI))
	phiI := math.Atan2(wi.Z, wi.Y)

	etap := core.SafeSqrt(b.eta*b.eta-core.Sqr(sinThetaO)) / cosThetaO
	gammaT := core.SafeASin(b.h / etap)

	return b.pdf(sinThetaO, cosThetaO, sinThetaI, cosThetaI, phiI-phiO, gammaO, gammaT, b.apPDF(cosThetaO))
}

func (b *HairBxDF) Regularize(*ScratchBuffer) *HairBxDF { return b }

func (b *HairBxDF) Handle() Handle { return newHandle(TagHair, b) }

func (b *HairBxDF) String() string {
	return fmt.Sprintf("[ HairBxDF h: %g eta: %g beta_m: %g beta_n: %g v[0]: %g s: %g sigma_a: %v ]",
		b.h, b.eta, b.betaM, b.betaN, b.v[0], b.s, b.sigmaA)
}

// hairMp is the longitudinal scattering function with variance v
func hairMp(cosThetaI, cosThetaO, sinThetaI, sinThetaO, v float64) float64 {
	a := cosThetaI * cosThetaO / v
	b := sinThetaI * sinThetaO / v
	if v <= 0.1 {
		return math.Exp(logI0(a) - b - 1/v + 0.6931 + math.Log(1/(2*v)))
	}
	return math.Exp(-b) * besselI0(a) / (math.Sinh(1/v) * 2 * v)
}

// hairAp returns the attenuation of each lobe for a fiber with per-segment
// transmittance t
func hairAp(cosThetaO, eta, h float64, t core.Spectrum) [hairPMax + 1]core.Spectrum {
	var ap [hairPMax + 1]core.Spectrum
	cosGammaO := core.SafeSqrt(1 - h*h)
	cosTheta := cosThetaO * cosGammaO
	f := scattering.FrDielectric(cosTheta, eta)

	ap[0] = core.NewSpectrum(f)
	ap[1] = t.Scale(core.Sqr(1 - f))
	for p := 2; p < hairPMax; p++ {
		ap[p] = ap[p-1].Mul(t).Scale(f)
	}
	// Geometric series of the remaining bounces
	tf := t.Scale(f)
	ap[hairPMax] = ap[hairPMax-1].Mul(tf).Div(core.NewSpectrum(1).Subtract(tf))
	return ap
}

// hairPhi is the net azimuthal deflection of lobe p
func hairPhi(p int, gammaO, gammaT float64) float64 {
	return 2*float64(p)*gammaT - 2*gammaO + float64(p)*math.Pi
}

// hairNp is the azimuthal scattering function of lobe p
func hairNp(phi float64, p int, s, gammaO, gammaT float64) float64 {
	dphi := phi - hairPhi(p, gammaO, gammaT)
	for dphi > math.Pi {
		dphi -= 2 * math.Pi
	}
	for dphi < -math.Pi {
		dphi += 2 * math.Pi
	}
	return core.TrimmedLogistic(dphi, s, -math.Pi, math.Pi)
}

// besselI0 is the modified Bessel function of the first kind, order zero
func besselI0(x float64) float64 {
	val, x2i, ifact, i4 := 0.0, 1.0, 1.0, 1.0
	for i := 0; i < 10; i++ {
		if i > 1 {
			ifact *= float64(i)
		}
		val += x2i / (i4 * core.Sqr(ifact))
		x2i *= x * x
		i4 *= 4
	}
	return val
}

func logI0(x float64) float64 {
	if x > 12 {
		return x + 0.5*(-math.Log(2*math.Pi)+math.Log(1/x)+1/(8*x))
	}
	return math.Log(besselI0(x))
}
