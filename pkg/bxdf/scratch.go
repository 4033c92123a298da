package bxdf

import "github.com/df07/go-scatter/pkg/memory"

// ScratchBuffer owns the scattering functions built for one shading point.
// Values allocated from it stay valid until Reset, which releases all of
// them at once. A ScratchBuffer must not be shared between goroutines.
type ScratchBuffer struct {
	diffuse                memory.Arena[DiffuseBxDF]
	coatedDiffuse          memory.Arena[CoatedDiffuseBxDF]
	generalLayered         memory.Arena[GeneralLayeredBxDF]
	dielectric             memory.Arena[DielectricBxDF]
	thinDielectric         memory.Arena[ThinDielectricBxDF]
	specularReflection     memory.Arena[SpecularReflectionBxDF]
	hair                   memory.Arena[HairBxDF]
	measured               memory.Arena[MeasuredBxDF]
	microfacetReflection   memory.Arena[MicrofacetReflectionBxDF]
	microfacetTransmission memory.Arena[MicrofacetTransmissionBxDF]
	bssrdf                 memory.Arena[BSSRDFAdapter]
}

// NewScratchBuffer returns an empty scratch buffer
func NewScratchBuffer() *ScratchBuffer {
	return &ScratchBuffer{}
}

func (s *ScratchBuffer) Diffuse(b DiffuseBxDF) Handle {
	return s.diffuse.New(b).Handle()
}

func (s *ScratchBuffer) CoatedDiffuse(b CoatedDiffuseBxDF) Handle {
	return newHandle(TagCoatedDiffuse, s.coatedDiffuse.New(b))
}

func (s *ScratchBuffer) GeneralLayered(b GeneralLayeredBxDF) Handle {
	return newHandle(TagGeneralLayered, s.generalLayered.New(b))
}

func (s *ScratchBuffer) Dielectric(b DielectricBxDF) Handle {
	return s.dielectric.New(b).Handle()
}

func (s *ScratchBuffer) ThinDielectric(b ThinDielectricBxDF) Handle {
	return s.thinDielectric.New(b).Handle()
}

func (s *ScratchBuffer) SpecularReflection(b SpecularReflectionBxDF) Handle {
	return s.specularReflection.New(b).Handle()
}

func (s *ScratchBuffer) Hair(b HairBxDF) Handle {
	return s.hair.New(b).Handle()
}

func (s *ScratchBuffer) Measured(b MeasuredBxDF) Handle {
	return s.measured.New(b).Handle()
}

func (s *ScratchBuffer) MicrofacetReflection(b MicrofacetReflectionBxDF) Handle {
	return s.microfacetReflection.New(b).Handle()
}

func (s *ScratchBuffer) MicrofacetTransmission(b MicrofacetTransmissionBxDF) Handle {
	return s.microfacetTransmission.New(b).Handle()
}

func (s *ScratchBuffer) BSSRDFAdapter(b BSSRDFAdapter) Handle {
	return s.bssrdf.New(b).Handle()
}

// DielectricLayer allocates a dielectric for use as the coating of a
// CoatedDiffuseBxDF
func (s *ScratchBuffer) DielectricLayer(b DielectricBxDF) *DielectricBxDF {
	return s.dielectric.New(b)
}

// DiffuseLayer allocates a diffuse base for a CoatedDiffuseBxDF
func (s *ScratchBuffer) DiffuseLayer(b DiffuseBxDF) *DiffuseBxDF {
	return s.diffuse.New(b)
}

// Len returns the number of scattering functions allocated since the last Reset
func (s *ScratchBuffer) Len() int {
	return s.diffuse.Len() + s.coatedDiffuse.Len() + s.generalLayered.Len() +
		s.dielectric.Len() + s.thinDielectric.Len() + s.specularReflection.Len() +
		s.hair.Len() + s.measured.Len() + s.microfacetReflection.Len() +
		s.microfacetTransmission.Len() + s.bssrdf.Len()
}

// Reset releases every allocation
func (s *ScratchBuffer) Reset() {
	s.diffuse.Reset()
	s.coatedDiffuse.Reset()
	s.generalLayered.Reset()
	s.dielectric.Reset()
	s.thinDielectric.Reset()
	s.specularReflection.Reset()
	s.hair.Reset()
	s.measured.Reset()
	s.microfacetReflection.Reset()
	s.microfacetTransmission.Reset()
	s.bssrdf.Reset()
}
