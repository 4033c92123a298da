package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// RhoHD estimates the hemispherical-directional reflectance for wo from the
// paired sample sets uc and u2
func (h Handle) RhoHD(wo core.Vec3, uc []float64, u2 []core.Vec2) core.Spectrum {
	if len(uc) != len(u2) {
		panic(fmt.Sprintf("RhoHD: %d control samples but %d 2D samples", len(uc), len(u2)))
	}
	if wo.Z == 0 || len(uc) == 0 {
		return core.Spectrum{}
	}
	var r core.Spectrum
	for i := range uc {
		bs, ok := h.SampleF(wo, uc[i], u2[i], Radiance, ReflTransAll)
		if ok {
			r = r.Add(bs.F.Scale(core.AbsCosTheta(bs.Wi) / bs.PDF))
		}
	}
	return r.Scale(1 / float64(len(uc)))
}

// RhoHH estimates the hemispherical-hemispherical reflectance. Outgoing
// directions are drawn uniformly from u1; uc and u2 drive SampleF.
func (h Handle) RhoHH(u1 []core.Vec2, uc []float64, u2 []core.Vec2) core.Spectrum {
	if len(u1) != len(uc) || len(uc) != len(u2) {
		panic(fmt.Sprintf("RhoHH: mismatched sample sets %d/%d/%d", len(u1), len(uc), len(u2)))
	}
	if len(u1) == 0 {
		return core.Spectrum{}
	}
	var r core.Spectrum
	for i := range u1 {
		wo := core.SampleUniformHemisphere(u1[i])
		if wo.Z == 0 {
			continue
		}
		pdfo := core.UniformHemispherePDF()
		bs, ok := h.SampleF(wo, uc[i], u2[i], Radiance, ReflTransAll)
		if ok {
			r = r.Add(bs.F.Scale(core.AbsCosTheta(bs.Wi) * core.AbsCosTheta(wo) / (pdfo * bs.PDF)))
		}
	}
	return r.Scale(1 / (math.Pi * float64(len(u1))))
}
