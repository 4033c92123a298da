package scattering

import (
	"math"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
)

func TestFrDielectricReciprocity(t *testing.T) {
	for _, eta := range []float64{1.0001, 1.33, 1.5, 2.4, 0.7} {
		for _, cos := range []float64{-1, -0.7, -0.2, 0.05, 0.3, 0.9, 1} {
			a := FrDielectric(cos, eta)
			b := FrDielectric(-cos, 1/eta)
			if math.Abs(a-b) > 1e-12 {
				t.Errorf("eta %v cos %v: got %v and %v for the reversed interface", eta, cos, a, b)
			}
		}
	}
}

func TestFrDielectric(t *testing.T) {
	tests := []struct {
		name     string
		cos, eta float64
		expected float64
	}{
		{"normal incidence glass", 1, 1.5, 0.04},
		{"index matched", 0.5, 1, 0},
		{"grazing", 0, 1.5, 1},
		{"total internal reflection", -0.2, 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrDielectric(tt.cos, tt.eta); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("got %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFrConductorRange(t *testing.T) {
	r := rng.New()
	for i := 0; i < 10000; i++ {
		eta := core.NewSpectrumRGB(0.1+3*r.Float64(), 0.1+3*r.Float64(), 0.1+3*r.Float64())
		k := core.NewSpectrumRGB(5*r.Float64(), 5*r.Float64(), 5*r.Float64())
		cos := r.Float64()
		if i%100 == 0 {
			cos = 0
		}

		f := FrConductor(cos, eta, k)
		for c, v := range f {
			if math.IsNaN(v) || v < 0 || v > 1+1e-12 {
				t.Fatalf("FrConductor(%v, %v, %v)[%d] = %v outside [0, 1]", cos, eta, k, c, v)
			}
		}
		if cos == 0 && math.Abs(f[0]-1) > 1e-12 {
			t.Errorf("grazing reflectance: got %v, expected 1", f[0])
		}
	}
}

func TestFrConductorMatchesDielectric(t *testing.T) {
	// With zero absorption the conductor formula reduces to a dielectric
	eta := core.NewSpectrum(1.5)
	for _, cos := range []float64{0.1, 0.4, 0.8, 1} {
		got := FrConductor(cos, eta, core.Spectrum{})[0]
		expected := FrDielectric(cos, 1.5)
		if math.Abs(got-expected) > 1e-9 {
			t.Errorf("cos %v: got %v, expected %v", cos, got, expected)
		}
	}
}

func TestFresnelMoments(t *testing.T) {
	tests := []struct {
		eta    float64
		m1, m2 float64
	}{
		{0.5, 0.0802971875, 0.044659375},
		{1.5, 0.298296875, 0.15420347222221498},
	}
	for _, tt := range tests {
		if got := FresnelMoment1(tt.eta); math.Abs(got-tt.m1) > 1e-9 {
			t.Errorf("FresnelMoment1(%v): got %v, expected %v", tt.eta, got, tt.m1)
		}
		if got := FresnelMoment2(tt.eta); math.Abs(got-tt.m2) > 1e-9 {
			t.Errorf("FresnelMoment2(%v): got %v, expected %v", tt.eta, got, tt.m2)
		}
	}
}

func TestFresnelMomentsApproximateIntegrals(t *testing.T) {
	// The fits approximate ∫ Fr(μ, 1/η) μ^i dμ over [0, 1]
	const n = 4096
	for _, eta := range []float64{0.5, 0.75, 0.9, 1.33, 1.5, 2} {
		i1, i2 := 0.0, 0.0
		for k := 0; k < n; k++ {
			mu := (float64(k) + 0.5) / n
			fr := FrDielectric(mu, 1/eta)
			i1 += fr * mu / n
			i2 += fr * mu * mu / n
		}
		if got := FresnelMoment1(eta); math.Abs(got-i1) > 3e-3 {
			t.Errorf("FresnelMoment1(%v): got %v, integral %v", eta, got, i1)
		}
		if got := FresnelMoment2(eta); math.Abs(got-i2) > 3e-3 {
			t.Errorf("FresnelMoment2(%v): got %v, integral %v", eta, got, i2)
		}
	}
}

func TestFresnelEvaluate(t *testing.T) {
	d := NewFresnelDielectric(1.5, false)
	if got := d.Evaluate(-1)[0]; math.Abs(got-0.04) > 1e-9 {
		t.Errorf("dielectric from inside: got %v, expected 0.04", got)
	}
	if got := d.Evaluate(-0.2)[0]; got != 1 {
		t.Errorf("dielectric total internal reflection: got %v, expected 1", got)
	}

	opaque := NewFresnelDielectric(1.5, true)
	if a, b := opaque.Evaluate(-0.2), opaque.Evaluate(0.2); a != b {
		t.Errorf("opaque dielectric depends on side: %v vs %v", a, b)
	}

	c := NewFresnelConductor(core.NewSpectrum(0.2), core.NewSpectrum(3))
	if a, b := c.Evaluate(-0.5), c.Evaluate(0.5); a != b {
		t.Errorf("conductor depends on side: %v vs %v", a, b)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero Fresnel")
		}
	}()
	Fresnel{}.Evaluate(1)
}

func TestReflect(t *testing.T) {
	wo := core.NewVec3(1, 2, 3).Normalize()
	n := core.NewVec3(0, 0, 1)
	wr := Reflect(wo, n)
	if math.Abs(wr.X+wo.X) > 1e-12 || math.Abs(wr.Y+wo.Y) > 1e-12 || math.Abs(wr.Z-wo.Z) > 1e-12 {
		t.Errorf("Reflect: got %v", wr)
	}
}

func TestRefract(t *testing.T) {
	n := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(math.Sin(0.5), 0, math.Cos(0.5))

	wt, etap, ok := Refract(wi, n, 1.5)
	if !ok {
		t.Fatal("unexpected total internal reflection")
	}
	if etap != 1.5 {
		t.Errorf("etap: got %v, expected 1.5", etap)
	}
	// Snell's law: sinθi = η sinθt
	sinT := math.Hypot(wt.X, wt.Y)
	if math.Abs(math.Sin(0.5)-1.5*sinT) > 1e-12 {
		t.Errorf("Snell's law violated: sinθi %v, η sinθt %v", math.Sin(0.5), 1.5*sinT)
	}
	if wt.Z >= 0 || math.Abs(wt.Length()-1) > 1e-12 {
		t.Errorf("transmitted direction %v should be unit length and below the surface", wt)
	}

	// From inside the interface flips
	back, etap, ok := Refract(wt, n, 1.5)
	if !ok || math.Abs(etap-1/1.5) > 1e-12 {
		t.Fatalf("reverse refraction: ok %v etap %v", ok, etap)
	}
	if math.Abs(back.X-wi.X) > 1e-9 || math.Abs(back.Z-wi.Z) > 1e-9 {
		t.Errorf("reverse refraction: got %v, expected %v", back, wi)
	}

	// Grazing from inside totally reflects
	inside := core.NewVec3(0.9, 0, -math.Sqrt(1-0.81))
	if _, _, ok := Refract(inside, n, 1.5); ok {
		t.Error("expected total internal reflection")
	}
}
