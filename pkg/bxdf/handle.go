package bxdf

import (
	"fmt"
	"unsafe"

	"github.com/df07/go-scatter/pkg/core"
)

// Tag identifies the concrete scattering function behind a Handle
type Tag uint8

const (
	TagNil Tag = iota
	TagDiffuse
	TagCoatedDiffuse
	TagGeneralLayered
	TagDielectricInterface
	TagThinDielectric
	TagSpecularReflection
	TagHair
	TagMeasured
	TagMicrofacetReflection
	TagMicrofacetTransmission
	TagBSSRDFAdapter
)

var tagNames = [...]string{
	TagNil:                    "Nil",
	TagDiffuse:                "Diffuse",
	TagCoatedDiffuse:          "CoatedDiffuse",
	TagGeneralLayered:         "GeneralLayered",
	TagDielectricInterface:    "DielectricInterface",
	TagThinDielectric:         "ThinDielectric",
	TagSpecularReflection:     "SpecularReflection",
	TagHair:                   "Hair",
	TagMeasured:               "Measured",
	TagMicrofacetReflection:   "MicrofacetReflection",
	TagMicrofacetTransmission: "MicrofacetTransmission",
	TagBSSRDFAdapter:          "BSSRDFAdapter",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", t)
}

// Handle is a tagged pointer to one of the scattering functions in this
// package. Every operation switches on the tag once and calls the concrete
// implementation directly. The zero Handle is nil.
type Handle struct {
	tag Tag
	ptr unsafe.Pointer
}

func newHandle[T any](tag Tag, p *T) Handle {
	if p == nil {
		return Handle{}
	}
	return Handle{tag: tag, ptr: unsafe.Pointer(p)}
}

// Tag returns the kind of the referenced scattering function
func (h Handle) Tag() Tag { return h.tag }

// IsNil reports whether h references nothing
func (h Handle) IsNil() bool { return h.ptr == nil }

func (h Handle) unknownTag() string {
	return fmt.Sprintf("bxdf: operation on handle with unknown tag %d", h.tag)
}

// F evaluates the scattering function for the pair of directions. It is
// zero for grazing wo.
func (h Handle) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if wo.Z == 0 {
		return core.Spectrum{}
	}
	switch h.tag {
	case TagDiffuse:
		return (*DiffuseBxDF)(h.ptr).F(wo, wi, mode)
	case TagCoatedDiffuse:
		return (*CoatedDiffuseBxDF)(h.ptr).F(wo, wi, mode)
	case TagGeneralLayered:
		return (*GeneralLayeredBxDF)(h.ptr).F(wo, wi, mode)
	case TagDielectricInterface:
		return (*DielectricBxDF)(h.ptr).F(wo, wi, mode)
	case TagThinDielectric:
		return (*ThinDielectricBxDF)(h.ptr).F(wo, wi, mode)
	case TagSpecularReflection:
		return (*SpecularReflectionBxDF)(h.ptr).F(wo, wi, mode)
	case TagHair:
		return (*HairBxDF)(h.ptr).F(wo, wi, mode)
	case TagMeasured:
		return (*MeasuredBxDF)(h.ptr).F(wo, wi, mode)
	case TagMicrofacetReflection:
		return (*MicrofacetReflectionBxDF)(h.ptr).F(wo, wi, mode)
	case TagMicrofacetTransmission:
		return (*MicrofacetTransmissionBxDF)(h.ptr).F(wo, wi, mode)
	case TagBSSRDFAdapter:
		return (*BSSRDFAdapter)(h.ptr).F(wo, wi, mode)
	default:
		panic(h.unknownTag())
	}
}

// SampleF samples an incident direction for wo. uc selects between lobes
// and u drives the directional sample. The result is false when wo is
// grazing, when sampleFlags excludes every lobe, or when the sample carries
// no contribution.
func (h Handle) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	var bs BSDFSample
	var ok bool
	switch h.tag {
	case TagDiffuse:
		bs, ok = (*DiffuseBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagCoatedDiffuse:
		bs, ok = (*CoatedDiffuseBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagGeneralLayered:
		bs, ok = (*GeneralLayeredBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagDielectricInterface:
		bs, ok = (*DielectricBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagThinDielectric:
		bs, ok = (*ThinDielectricBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagSpecularReflection:
		bs, ok = (*SpecularReflectionBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagHair:
		bs, ok = (*HairBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagMeasured:
		bs, ok = (*MeasuredBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagMicrofacetReflection:
		bs, ok = (*MicrofacetReflectionBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagMicrofacetTransmission:
		bs, ok = (*MicrofacetTransmissionBxDF)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	case TagBSSRDFAdapter:
		bs, ok = (*BSSRDFAdapter)(h.ptr).SampleF(wo, uc, u, mode, sampleFlags)
	default:
		panic(h.unknownTag())
	}
	if wo.Z == 0 || !ok || !bs.valid() {
		return BSDFSample{}, false
	}
	return bs, true
}

// PDF returns the density with which SampleF produces wi for wo under the
// same sampling restriction
func (h Handle) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if wo.Z == 0 {
		return 0
	}
	switch h.tag {
	case TagDiffuse:
		return (*DiffuseBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagCoatedDiffuse:
		return (*CoatedDiffuseBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagGeneralLayered:
		return (*GeneralLayeredBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagDielectricInterface:
		return (*DielectricBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagThinDielectric:
		return (*ThinDielectricBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagSpecularReflection:
		return (*SpecularReflectionBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagHair:
		return (*HairBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagMeasured:
		return (*MeasuredBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagMicrofacetReflection:
		return (*MicrofacetReflectionBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagMicrofacetTransmission:
		return (*MicrofacetTransmissionBxDF)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	case TagBSSRDFAdapter:
		return (*BSSRDFAdapter)(h.ptr).PDF(wo, wi, mode, sampleFlags)
	default:
		panic(h.unknownTag())
	}
}

// Flags returns the lobes of the referenced scattering function
func (h Handle) Flags() Flags {
	switch h.tag {
	case TagDiffuse:
		return (*DiffuseBxDF)(h.ptr).Flags()
	case TagCoatedDiffuse:
		return (*CoatedDiffuseBxDF)(h.ptr).Flags()
	case TagGeneralLayered:
		return (*GeneralLayeredBxDF)(h.ptr).Flags()
	case TagDielectricInterface:
		return (*DielectricBxDF)(h.ptr).Flags()
	case TagThinDielectric:
		return (*ThinDielectricBxDF)(h.ptr).Flags()
	case TagSpecularReflection:
		return (*SpecularReflectionBxDF)(h.ptr).Flags()
	case TagHair:
		return (*HairBxDF)(h.ptr).Flags()
	case TagMeasured:
		return (*MeasuredBxDF)(h.ptr).Flags()
	case TagMicrofacetReflection:
		return (*MicrofacetReflectionBxDF)(h.ptr).Flags()
	case TagMicrofacetTransmission:
		return (*MicrofacetTransmissionBxDF)(h.ptr).Flags()
	case TagBSSRDFAdapter:
		return (*BSSRDFAdapter)(h.ptr).Flags()
	default:
		panic(h.unknownTag())
	}
}

// Regularize returns a handle to a copy with roughness raised to suppress
// near-singular lobes. Applying it again has no further effect. New values
// are allocated from s.
func (h Handle) Regularize(s *ScratchBuffer) Handle {
	switch h.tag {
	case TagDiffuse:
		return (*DiffuseBxDF)(h.ptr).Regularize(s).Handle()
	case TagCoatedDiffuse:
		c := (*CoatedDiffuseBxDF)(h.ptr)
		r := *c
		r.top = c.top.Regularize(s)
		r.bottom = c.bottom.Regularize(s)
		return s.CoatedDiffuse(r)
	case TagGeneralLayered:
		c := (*GeneralLayeredBxDF)(h.ptr)
		r := *c
		r.top = c.top.Regularize(s)
		r.bottom = c.bottom.Regularize(s)
		return s.GeneralLayered(r)
	case TagDielectricInterface:
		return (*DielectricBxDF)(h.ptr).Regularize(s).Handle()
	case TagThinDielectric:
		return (*ThinDielectricBxDF)(h.ptr).Regularize(s).Handle()
	case TagSpecularReflection:
		return (*SpecularReflectionBxDF)(h.ptr).Regularize(s).Handle()
	case TagHair:
		return (*HairBxDF)(h.ptr).Regularize(s).Handle()
	case TagMeasured:
		return (*MeasuredBxDF)(h.ptr).Regularize(s).Handle()
	case TagMicrofacetReflection:
		return (*MicrofacetReflectionBxDF)(h.ptr).Regularize(s).Handle()
	case TagMicrofacetTransmission:
		return (*MicrofacetTransmissionBxDF)(h.ptr).Regularize(s).Handle()
	case TagBSSRDFAdapter:
		return (*BSSRDFAdapter)(h.ptr).Regularize(s).Handle()
	default:
		panic(h.unknownTag())
	}
}

// SampledPDFIsProportional reports whether SampleF densities are only
// proportional to the true density, as for the stochastic layered models
func (h Handle) SampledPDFIsProportional() bool {
	switch h.tag {
	case TagCoatedDiffuse:
		return (*CoatedDiffuseBxDF)(h.ptr).SampledPDFIsProportional()
	case TagGeneralLayered:
		return (*GeneralLayeredBxDF)(h.ptr).SampledPDFIsProportional()
	case TagDiffuse, TagDielectricInterface, TagThinDielectric, TagSpecularReflection, TagHair,
		TagMeasured, TagMicrofacetReflection, TagMicrofacetTransmission, TagBSSRDFAdapter:
		return false
	default:
		panic(h.unknownTag())
	}
}

func (h Handle) String() string {
	if h.IsNil() {
		return "[ BxDF nil ]"
	}
	switch h.tag {
	case TagDiffuse:
		return (*DiffuseBxDF)(h.ptr).String()
	case TagCoatedDiffuse:
		return (*CoatedDiffuseBxDF)(h.ptr).String()
	case TagGeneralLayered:
		return (*GeneralLayeredBxDF)(h.ptr).String()
	case TagDielectricInterface:
		return (*DielectricBxDF)(h.ptr).String()
	case TagThinDielectric:
		return (*ThinDielectricBxDF)(h.ptr).String()
	case TagSpecularReflection:
		return (*SpecularReflectionBxDF)(h.ptr).String()
	case TagHair:
		return (*HairBxDF)(h.ptr).String()
	case TagMeasured:
		return (*MeasuredBxDF)(h.ptr).String()
	case TagMicrofacetReflection:
		return (*MicrofacetReflectionBxDF)(h.ptr).String()
	case TagMicrofacetTransmission:
		return (*MicrofacetTransmissionBxDF)(h.ptr).String()
	case TagBSSRDFAdapter:
		return (*BSSRDFAdapter)(h.ptr).String()
	default:
		panic(h.unknownTag())
	}
}
