package bxdf

import (
	"math"
	"strings"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/df07/go-scatter/pkg/scattering"
)

type namedHandle struct {
	name string
	h    Handle
}

func constantBRDF(v float64) *MeasuredBRDF {
	return TabulateMeasuredBRDF("constant", 8, 8, 4, func(thetaH, thetaD, phiD float64) core.Spectrum {
		return core.NewSpectrum(v)
	})
}

// allVariants builds one handle of every kind
func allVariants(s *ScratchBuffer) []namedHandle {
	coat := s.DielectricLayer(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0, 0)))
	base := s.DiffuseLayer(NewDiffuseBxDF(core.NewSpectrum(0.8), core.Spectrum{}, 0))
	return []namedHandle{
		{"Diffuse", s.Diffuse(NewDiffuseBxDF(core.NewSpectrum(0.5), core.Spectrum{}, 0))},
		{"CoatedDiffuse", s.CoatedDiffuse(NewCoatedDiffuseBxDF(coat, base, 0.01, core.Spectrum{}, 0, 10, 1))},
		{"GeneralLayered", s.GeneralLayered(NewGeneralLayeredBxDF(coat.Handle(), base.Handle(), 0.01, core.Spectrum{}, 0, 10, 1))},
		{"DielectricInterface", s.Dielectric(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0.3, 0.3)))},
		{"ThinDielectric", s.ThinDielectric(NewThinDielectricBxDF(1.5))},
		{"SpecularReflection", s.SpecularReflection(NewSpecularReflectionBxDF(scattering.NewFresnelDielectric(1.5, true)))},
		{"Hair", s.Hair(NewHairBxDF(0.2, 1.55, SigmaAFromConcentration(1.3, 0), 0.3, 0.3, 2))},
		{"Measured", s.Measured(NewMeasuredBxDF(constantBRDF(0.5 / math.Pi)))},
		{"MicrofacetReflection", s.MicrofacetReflection(NewConductorBxDF(scattering.NewTrowbridgeReitz(0.2, 0.4), core.NewSpectrum(0.2), core.NewSpectrum(3)))},
		{"MicrofacetTransmission", s.MicrofacetTransmission(NewMicrofacetTransmissionBxDF(scattering.NewTrowbridgeReitz(0.4, 0.4), 1.33))},
		{"BSSRDFAdapter", s.BSSRDFAdapter(NewBSSRDFAdapter(1.33))},
	}
}

func randomDirection(r *rng.RNG) core.Vec3 {
	for {
		w := core.SampleUniformSphere(core.NewVec2(r.Float64(), r.Float64()))
		if math.Abs(w.Z) > 0.05 {
			return w
		}
	}
}

func relClose(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*max(1, math.Abs(a), math.Abs(b))
}

func TestHandleTags(t *testing.T) {
	s := NewScratchBuffer()
	for i, v := range allVariants(s) {
		if v.h.Tag() != Tag(i+1) {
			t.Errorf("%s: got tag %v, expected %v", v.name, v.h.Tag(), Tag(i+1))
		}
		if v.h.Tag().String() != v.name {
			t.Errorf("%s: tag name %q", v.name, v.h.Tag().String())
		}
		if v.h.IsNil() {
			t.Errorf("%s: handle is nil", v.name)
		}
		if str := v.h.String(); !strings.HasPrefix(str, "[ ") {
			t.Errorf("%s: unexpected String %q", v.name, str)
		}
	}
	if !(Handle{}).IsNil() {
		t.Error("zero Handle should be nil")
	}
}

func TestHandleUnknownTagPanics(t *testing.T) {
	ops := map[string]func(h Handle){
		"F":     func(h Handle) { h.F(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), Radiance) },
		"PDF":   func(h Handle) { h.PDF(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), Radiance, ReflTransAll) },
		"Flags": func(h Handle) { h.Flags() },
		"SampleF": func(h Handle) {
			h.SampleF(core.NewVec3(0, 0, 1), 0.5, core.NewVec2(0.5, 0.5), Radiance, ReflTransAll)
		},
		"Regularize":               func(h Handle) { h.Regularize(NewScratchBuffer()) },
		"SampledPDFIsProportional": func(h Handle) { h.SampledPDFIsProportional() },
	}
	var d DiffuseBxDF
	bad := newHandle(Tag(200), &d)
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s on unknown tag did not panic", name)
				}
			}()
			op(bad)
		})
	}
}

func TestSampledPDFIsProportional(t *testing.T) {
	s := NewScratchBuffer()
	for _, v := range allVariants(s) {
		expected := v.h.Tag() == TagCoatedDiffuse || v.h.Tag() == TagGeneralLayered
		if got := v.h.SampledPDFIsProportional(); got != expected {
			t.Errorf("%s: got %v, expected %v", v.name, got, expected)
		}
	}
}

func TestHandleFlags(t *testing.T) {
	s := NewScratchBuffer()
	expected := map[string]Flags{
		"Diffuse":                DiffuseReflection,
		"CoatedDiffuse":          DiffuseReflection | FlagSpecular,
		"GeneralLayered":         DiffuseReflection | FlagSpecular,
		"DielectricInterface":    GlossyReflection | GlossyTransmission,
		"ThinDielectric":         SpecularReflection | SpecularTransmission,
		"SpecularReflection":     SpecularReflection,
		"Hair":                   GlossyReflection,
		"Measured":               GlossyReflection,
		"MicrofacetReflection":   GlossyReflection,
		"MicrofacetTransmission": GlossyTransmission,
		"BSSRDFAdapter":          DiffuseReflection,
	}
	for _, v := range allVariants(s) {
		if got := v.h.Flags(); got != expected[v.name] {
			t.Errorf("%s: got %v, expected %v", v.name, got, expected[v.name])
		}
	}

	smooth := NewDielectricBxDF(1, scattering.NewTrowbridgeReitz(0, 0))
	if got := smooth.Flags(); got != SpecularTransmission {
		t.Errorf("index-matched dielectric: got %v, expected %v", got, SpecularTransmission)
	}
	none := NewDiffuseBxDF(core.Spectrum{}, core.Spectrum{}, 0)
	if got := none.Flags(); got != FlagUnset {
		t.Errorf("black diffuse: got %v, expected Unset", got)
	}
}

// TestSampleMatchesEvaluation checks that sampled values and densities agree
// with F and PDF for every variant with an exact, non-delta density
func TestSampleMatchesEvaluation(t *testing.T) {
	s := NewScratchBuffer()
	r := rng.New()
	for _, v := range allVariants(s) {
		if v.h.SampledPDFIsProportional() || !v.h.Flags().IsNonSpecular() {
			continue
		}
		t.Run(v.name, func(t *testing.T) {
			matched, total := 0, 0
			for i := 0; i < 2000; i++ {
				wo := randomDirection(&r)
				u := core.NewVec2(r.Float64(), r.Float64())
				for _, mode := range []TransportMode{Radiance, Importance} {
					bs, ok := v.h.SampleF(wo, r.Float64(), u, mode, ReflTransAll)
					if !ok {
						continue
					}
					if bs.PDF <= 0 || bs.F.HasNaN() || bs.F.MinComponent() < 0 {
						t.Fatalf("wo %v: invalid sample %v", wo, bs)
					}
					total++
					f := v.h.F(wo, bs.Wi, mode)
					if f.IsBlack() {
						continue
					}
					pdf := v.h.PDF(wo, bs.Wi, mode, ReflTransAll)
					if !relClose(pdf, bs.PDF, 1e-5) {
						t.Errorf("wo %v wi %v: sampled pdf %v, PDF %v", wo, bs.Wi, bs.PDF, pdf)
						continue
					}
					for c := range f {
						if !relClose(f[c], bs.F[c], 1e-5) {
							t.Errorf("wo %v wi %v: sampled f %v, F %v", wo, bs.Wi, bs.F, f)
							break
						}
					}
					matched++
				}
			}
			if total == 0 || float64(matched) < 0.95*float64(total) {
				t.Errorf("only %d of %d samples could be compared", matched, total)
			}
		})
	}
}

func TestSampleFlagsRestrictLobes(t *testing.T) {
	s := NewScratchBuffer()
	wo := core.NewVec3(0.3, 0.2, 0.8).Normalize()
	r := rng.New()
	for _, v := range allVariants(s) {
		for _, restrict := range []ReflTransFlags{Reflection, Transmission} {
			for i := 0; i < 64; i++ {
				bs, ok := v.h.SampleF(wo, r.Float64(), core.NewVec2(r.Float64(), r.Float64()), Radiance, restrict)
				if !ok {
					continue
				}
				if restrict == Reflection && !bs.IsReflection() || restrict == Transmission && !bs.IsTransmission() {
					t.Errorf("%s restricted to %v sampled a %v lobe", v.name, restrict, bs.Flags)
					break
				}
			}
		}
	}
}

func TestGrazingDirectionHasNoSample(t *testing.T) {
	s := NewScratchBuffer()
	grazing := core.NewVec3(1, 0, 0)
	for _, v := range allVariants(s) {
		if v.h.Tag() == TagHair {
			// Hair directions are in the fiber frame where z = 0 is not grazing
			continue
		}
		if _, ok := v.h.SampleF(grazing, 0.5, core.NewVec2(0.3, 0.6), Radiance, ReflTransAll); ok {
			t.Errorf("%s: sampled a direction for grazing wo", v.name)
		}
		if f := v.h.F(grazing, core.NewVec3(0, 0, 1), Radiance); f.NonZero() {
			t.Errorf("%s: F for grazing wo is %v", v.name, f)
		}
	}
}

func TestDiffuseRho(t *testing.T) {
	s := NewScratchBuffer()
	h := s.Diffuse(NewDiffuseBxDF(core.NewSpectrumRGB(0.2, 0.5, 0.8), core.Spectrum{}, 0))
	uc, u2 := testSampleSets(256, 1)
	_, u1 := testSampleSets(256, 2)

	rhoHD := h.RhoHD(core.NewVec3(0.4, 0, 0.9).Normalize(), uc, u2)
	rhoHH := h.RhoHH(u1, uc, u2)
	for c, expected := range []float64{0.2, 0.5, 0.8} {
		if math.Abs(rhoHD[c]-expected) > 1e-9 {
			t.Errorf("RhoHD[%d]: got %v, expected %v", c, rhoHD[c], expected)
		}
		if math.Abs(rhoHH[c]-expected) > 0.02 {
			t.Errorf("RhoHH[%d]: got %v, expected %v", c, rhoHH[c], expected)
		}
	}

	if got := h.RhoHD(core.NewVec3(1, 0, 0), uc, u2); got.NonZero() {
		t.Errorf("RhoHD at grazing: got %v, expected 0", got)
	}
}

func TestRhoHHMismatchedSets(t *testing.T) {
	s := NewScratchBuffer()
	h := s.Diffuse(NewDiffuseBxDF(core.NewSpectrum(0.5), core.Spectrum{}, 0))
	uc, u2 := testSampleSets(8, 1)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for sample sets of different lengths")
		}
	}()
	h.RhoHH(u2[:4], uc, u2)
}

func TestOrenNayarLosesEnergy(t *testing.T) {
	s := NewScratchBuffer()
	lambert := s.Diffuse(NewDiffuseBxDF(core.NewSpectrum(1), core.Spectrum{}, 0))
	rough := s.Diffuse(NewDiffuseBxDF(core.NewSpectrum(1), core.Spectrum{}, 30))
	uc, u2 := testSampleSets(1024, 3)
	wo := core.NewVec3(0.6, 0.1, 0.5).Normalize()

	l, o := lambert.RhoHD(wo, uc, u2)[0], rough.RhoHD(wo, uc, u2)[0]
	if o >= l || o <= 0.5 {
		t.Errorf("Oren-Nayar albedo %v should be below Lambertian %v", o, l)
	}
}

func TestSpecularEnergy(t *testing.T) {
	s := NewScratchBuffer()
	uc, u2 := testSampleSets(64, 4)
	wo := core.NewVec3(0.5, -0.3, 0.7).Normalize()
	tests := []struct {
		name string
		h    Handle
	}{
		{"ThinDielectric", s.ThinDielectric(NewThinDielectricBxDF(1.7))},
		{"IndexMatched", s.Dielectric(NewDielectricBxDF(1, scattering.NewTrowbridgeReitz(0, 0)))},
		{"Mirror", s.SpecularReflection(NewSpecularReflectionBxDF(scattering.NewFresnelConductor(core.NewSpectrum(0), core.NewSpectrum(1e6))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rho := tt.h.RhoHD(wo, uc, u2)
			if math.Abs(rho[0]-1) > 1e-6 {
				t.Errorf("got %v, expected 1", rho)
			}
		})
	}
}

func TestSmoothDielectricRefraction(t *testing.T) {
	d := NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0, 0))
	wo := core.NewVec3(0.3, 0.1, 0.9).Normalize()
	// uc near one selects transmission
	bs, ok := d.SampleF(wo, 0.999, core.NewVec2(0.5, 0.5), Radiance, ReflTransAll)
	if !ok || !bs.IsTransmission() || !bs.IsSpecular() {
		t.Fatalf("expected specular transmission, got %v %v", bs, ok)
	}
	if bs.Eta != 1.5 {
		t.Errorf("eta: got %v, expected 1.5", bs.Eta)
	}
	sinI := math.Sqrt(wo.X*wo.X + wo.Y*wo.Y)
	sinT := math.Sqrt(bs.Wi.X*bs.Wi.X + bs.Wi.Y*bs.Wi.Y)
	if math.Abs(sinI-1.5*sinT) > 1e-9 {
		t.Errorf("Snell's law violated: sinI %v sinT %v", sinI, sinT)
	}

	imp, _ := d.SampleF(wo, 0.999, core.NewVec2(0.5, 0.5), Importance, ReflTransAll)
	if math.Abs(imp.F[0]/bs.F[0]-1.5*1.5) > 1e-9 {
		t.Errorf("radiance scaling: got ratio %v, expected %v", imp.F[0]/bs.F[0], 1.5*1.5)
	}

	if d.F(wo, bs.Wi, Radiance).NonZero() || d.PDF(wo, bs.Wi, Radiance, ReflTransAll) != 0 {
		t.Error("smooth dielectric should have no finite density")
	}
}

func TestBSSRDFAdapterNormalized(t *testing.T) {
	for _, eta := range []float64{1.33, 1.5} {
		b := NewBSSRDFAdapter(eta)
		wo := core.NewVec3(0, 0, 1)
		const n = 10000
		integral := 0.0
		for i := 0; i < n; i++ {
			mu := (float64(i) + 0.5) / n
			wi := core.NewVec3(math.Sqrt(1-mu*mu), 0, mu)
			integral += b.F(wo, wi, Importance)[0] * mu * 2 * math.Pi / n
		}
		if math.Abs(integral-1) > 0.02 {
			t.Errorf("eta %v: ∫f cos = %v, expected 1", eta, integral)
		}
	}
}

func TestHairSamplingWeights(t *testing.T) {
	r := rng.New()
	for _, betaM := range []float64{0.2, 0.5, 0.8} {
		for _, betaN := range []float64{0.2, 0.5, 0.8} {
			for i := 0; i < 500; i++ {
				h := NewHairBxDF(-1+2*r.Float64(), 1.55, core.Spectrum{}, betaM, betaN, 2)
				wo := core.SampleUniformSphere(core.NewVec2(r.Float64(), r.Float64()))
				bs, ok := h.SampleF(wo, r.Float64(), core.NewVec2(r.Float64(), r.Float64()), Radiance, ReflTransAll)
				if !ok || bs.PDF == 0 {
					continue
				}
				w := bs.F[0] * core.AbsCosTheta(bs.Wi) / bs.PDF
				if math.Abs(w-1) > 0.01 {
					t.Errorf("betaM %v betaN %v: sample weight %v, expected 1", betaM, betaN, w)
				}
			}
		}
	}
}

func TestHairWhiteFurnace(t *testing.T) {
	r := rng.New()
	for _, beta := range [][2]float64{{0.3, 0.3}, {0.6, 0.8}} {
		h := NewHairBxDF(-1+2*r.Float64(), 1.55, core.Spectrum{}, beta[0], beta[1], 2)
		wo := core.SampleUniformSphere(core.NewVec2(r.Float64(), r.Float64()))
		const n = 200000
		sum := 0.0
		for i := 0; i < n; i++ {
			wi := core.SampleUniformSphere(core.NewVec2(r.Float64(), r.Float64()))
			sum += h.F(wo, wi, Radiance)[0] * core.AbsCosTheta(wi) / core.UniformSpherePDF()
		}
		if got := sum / n; math.Abs(got-1) > 0.05 {
			t.Errorf("beta %v: furnace estimate %v, expected 1", beta, got)
		}
	}
}

func TestHairParameters(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("h outside [-1, 1] should panic")
		}
	}()

	sigma := SigmaAFromConcentration(1, 0)
	if sigma != eumelaninSigmaA {
		t.Errorf("SigmaAFromConcentration: got %v, expected %v", sigma, eumelaninSigmaA)
	}
	dark := SigmaAFromReflectance(core.NewSpectrum(0.1), 0.3)
	light := SigmaAFromReflectance(core.NewSpectrum(0.8), 0.3)
	if dark[0] <= light[0] || light[0] <= 0 {
		t.Errorf("darker fibers should absorb more: dark %v light %v", dark, light)
	}

	NewHairBxDF(1.5, 1.55, sigma, 0.3, 0.3, 2)
}

func TestMeasuredBxDF(t *testing.T) {
	s := NewScratchBuffer()
	h := s.Measured(NewMeasuredBxDF(constantBRDF(0.5 / math.Pi)))
	uc, u2 := testSampleSets(128, 5)
	rho := h.RhoHD(core.NewVec3(0.2, 0.3, 0.8).Normalize(), uc, u2)
	if math.Abs(rho[0]-0.5) > 1e-9 {
		t.Errorf("constant table albedo: got %v, expected 0.5", rho[0])
	}

	peaked := TabulateMeasuredBRDF("peaked", 32, 8, 4, func(thetaH, thetaD, phiD float64) core.Spectrum {
		return core.NewSpectrum(math.Cos(thetaH))
	})
	z := core.NewVec3(0, 0, 1)
	if f := peaked.Evaluate(z, z); math.Abs(f[0]-1) > 1e-3 {
		t.Errorf("peak value: got %v, expected 1", f[0])
	}
	wo := core.NewVec3(math.Sin(1), 0, math.Cos(1))
	wi := core.NewVec3(-math.Sin(1), 0, math.Cos(1))
	if f := peaked.Evaluate(wo, wi); math.Abs(f[0]-1) > 1e-3 {
		t.Errorf("mirror configuration: got %v, expected 1", f[0])
	}

	// Cosine-hemisphere sampling: SampleF agrees with F and PDF
	ph := s.Measured(NewMeasuredBxDF(peaked))
	for i := range uc {
		bs, ok := ph.SampleF(wo, uc[i], u2[i], Radiance, ReflTransAll)
		if !ok {
			t.Fatalf("sample %d: expected a reflection sample", i)
		}
		if pdf := ph.PDF(wo, bs.Wi, Radiance, ReflTransAll); math.Abs(pdf-bs.PDF) > 1e-9 {
			t.Errorf("sample %d: PDF %v, sampled PDF %v", i, pdf, bs.PDF)
		}
		if f := ph.F(wo, bs.Wi, Radiance); math.Abs(f[0]-bs.F[0]) > 1e-9 {
			t.Errorf("sample %d: F %v, sampled F %v", i, f[0], bs.F[0])
		}
	}
}

func TestRusinkiewiczAngles(t *testing.T) {
	wo := core.NewVec3(math.Sin(0.4), 0, math.Cos(0.4))
	thetaH, thetaD, _ := RusinkiewiczAngles(wo, wo)
	if math.Abs(thetaH-0.4) > 1e-9 || math.Abs(thetaD) > 1e-6 {
		t.Errorf("identical directions: thetaH %v thetaD %v", thetaH, thetaD)
	}

	wi := core.NewVec3(-math.Sin(0.7), 0, math.Cos(0.7))
	wo = core.NewVec3(math.Sin(0.7), 0, math.Cos(0.7))
	thetaH, thetaD, _ = RusinkiewiczAngles(wo, wi)
	if math.Abs(thetaH) > 1e-6 || math.Abs(thetaD-0.7) > 1e-9 {
		t.Errorf("mirror pair: thetaH %v thetaD %v, expected 0 and 0.7", thetaH, thetaD)
	}
}

func TestCoatedDiffuse(t *testing.T) {
	s := NewScratchBuffer()
	coat := s.DielectricLayer(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0, 0)))
	base := s.DiffuseLayer(NewDiffuseBxDF(core.NewSpectrum(1), core.Spectrum{}, 0))
	coated := s.CoatedDiffuse(NewCoatedDiffuseBxDF(coat, base, 0.01, core.Spectrum{}, 0, 10, 1))
	general := s.GeneralLayered(NewGeneralLayeredBxDF(coat.Handle(), base.Handle(), 0.01, core.Spectrum{}, 0, 10, 1))

	uc, u2 := testSampleSets(4096, 6)
	wo := core.NewVec3(0.3, 0.2, 0.8).Normalize()
	rho := coated.RhoHD(wo, uc, u2)
	if rho[0] < 0.6 || rho[0] > 1.02 {
		t.Errorf("white coated diffuse albedo: got %v, expected in [0.6, 1]", rho[0])
	}

	r := rng.New()
	for i := 0; i < 50; i++ {
		wo := randomDirection(&r)
		wi := randomDirection(&r)
		f1, f2 := coated.F(wo, wi, Radiance), general.F(wo, wi, Radiance)
		if f1 != f2 {
			t.Fatalf("wo %v wi %v: coated %v, general layered %v", wo, wi, f1, f2)
		}
		if f1 != coated.F(wo, wi, Radiance) {
			t.Fatalf("F is not deterministic")
		}
		if core.SameHemisphere(wo, wi) {
			if f1.IsBlack() {
				t.Errorf("wo %v wi %v: no reflection", wo, wi)
			}
		} else if f1.NonZero() {
			t.Errorf("wo %v wi %v: opaque base transmitted %v", wo, wi, f1)
		}
		pdf := coated.PDF(wo, wi, Radiance, ReflTransAll)
		if pdf <= 0 && core.SameHemisphere(wo, wi) {
			t.Errorf("wo %v wi %v: pdf %v", wo, wi, pdf)
		}
	}

	for i := 0; i < 200; i++ {
		bs, ok := coated.SampleF(randomDirection(&r), r.Float64(), core.NewVec2(r.Float64(), r.Float64()), Radiance, ReflTransAll)
		if ok && !bs.PDFIsProportional {
			t.Fatalf("layered sample not marked proportional: %v", bs)
		}
	}
}

func TestLayeredMediumScatters(t *testing.T) {
	s := NewScratchBuffer()
	coat := s.DielectricLayer(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0.3, 0.3)))
	base := s.DiffuseLayer(NewDiffuseBxDF(core.NewSpectrum(0.5), core.Spectrum{}, 0))
	albedo := core.NewSpectrumRGB(0.8, 0.4, 0.1)
	h := s.CoatedDiffuse(NewCoatedDiffuseBxDF(coat, base, 0.5, albedo, 0.3, 10, 4))
	if !h.Flags().IsDiffuse() {
		t.Errorf("flags %v should include Diffuse", h.Flags())
	}
	uc, u2 := testSampleSets(2048, 7)
	rho := h.RhoHD(core.NewVec3(0, 0.3, 0.9).Normalize(), uc, u2)
	if rho.HasNaN() || rho.MaxComponent() > 1.05 || rho.MinComponent() <= 0 {
		t.Errorf("albedo out of range: %v", rho)
	}
	if rho[0] <= rho[2] {
		t.Errorf("medium albedo should tint reflection: %v", rho)
	}
}

func TestRegularizeIdempotent(t *testing.T) {
	s := NewScratchBuffer()
	variants := allVariants(s)
	variants = append(variants,
		namedHandle{"SmoothDielectric", s.Dielectric(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0, 0)))},
		namedHandle{"SmoothConductor", s.MicrofacetReflection(NewConductorBxDF(scattering.NewTrowbridgeReitz(1e-4, 1e-4), core.NewSpectrum(0.2), core.NewSpectrum(3)))},
	)
	r := rng.New()
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			once := v.h.Regularize(s)
			twice := once.Regularize(s)
			if once.Tag() != twice.Tag() || once.Flags() != twice.Flags() {
				t.Fatalf("regularizing twice changed kind: %v vs %v", once, twice)
			}
			for i := 0; i < 20; i++ {
				wo, wi := randomDirection(&r), randomDirection(&r)
				uc, u := r.Float64(), core.NewVec2(r.Float64(), r.Float64())
				if once.F(wo, wi, Radiance) != twice.F(wo, wi, Radiance) {
					t.Errorf("F differs after second Regularize")
				}
				if once.PDF(wo, wi, Radiance, ReflTransAll) != twice.PDF(wo, wi, Radiance, ReflTransAll) {
					t.Errorf("PDF differs after second Regularize")
				}
				b1, ok1 := once.SampleF(wo, uc, u, Radiance, ReflTransAll)
				b2, ok2 := twice.SampleF(wo, uc, u, Radiance, ReflTransAll)
				if ok1 != ok2 || b1 != b2 {
					t.Errorf("SampleF differs after second Regularize: %v vs %v", b1, b2)
				}
			}
		})
	}
}

func TestRegularizeRemovesSpecular(t *testing.T) {
	s := NewScratchBuffer()
	mirror := s.SpecularReflection(NewSpecularReflectionBxDF(scattering.NewFresnelDielectric(1.5, true)))
	reg := mirror.Regularize(s)
	if reg.Tag() != TagMicrofacetReflection || reg.Flags() != GlossyReflection {
		t.Errorf("regularized mirror: got %v with flags %v", reg.Tag(), reg.Flags())
	}

	glass := s.Dielectric(NewDielectricBxDF(1.5, scattering.NewTrowbridgeReitz(0, 0)))
	if f := glass.Regularize(s).Flags(); f.IsSpecular() || !f.IsGlossy() {
		t.Errorf("regularized glass flags: %v", f)
	}

	diffuse := s.Diffuse(NewDiffuseBxDF(core.NewSpectrum(0.5), core.Spectrum{}, 0))
	if diffuse.Regularize(s) != diffuse {
		t.Error("regularizing a diffuse surface should return it unchanged")
	}
}

func TestScratchBufferReset(t *testing.T) {
	s := NewScratchBuffer()
	n := len(allVariants(s))
	// Two layers for each layered variant come from the same buffer
	if s.Len() != n+2 {
		t.Errorf("Len: got %d, expected %d", s.Len(), n+2)
	}
	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len after Reset: got %d, expected 0", s.Len())
	}
}

// testSampleSets returns n control and 2D samples, stratified along uc and
// the first 2D dimension with the strata visited in different orders
func testSampleSets(n int, seed uint64) ([]float64, []core.Vec2) {
	r := rng.NewWithSequenceIndex(seed)
	uc := make([]float64, n)
	u2 := make([]core.Vec2, n)
	for i := range uc {
		uc[i] = (float64(i) + r.Float64()) / float64(n)
		stratum := (i * 7919) % n
		u2[i] = core.NewVec2((float64(stratum)+r.Float64())/float64(n), r.Float64())
	}
	return uc, u2
}
