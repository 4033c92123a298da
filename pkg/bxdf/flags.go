// Package bxdf implements the closed set of scattering functions used at a
// shading point and the tagged Handle that dispatches between them.
//
// All directions are expressed in the local shading frame, where the
// surface normal is +Z.
package bxdf

import "strings"

// ReflTransFlags restricts sampling to reflection, transmission or both
type ReflTransFlags uint8

const (
	ReflTransUnset ReflTransFlags = 0
	Reflection     ReflTransFlags = 1 << 0
	Transmission   ReflTransFlags = 1 << 1
	ReflTransAll                  = Reflection | Transmission
)

func (f ReflTransFlags) String() string {
	switch f {
	case ReflTransUnset:
		return "Unset"
	case Reflection:
		return "Reflection"
	case Transmission:
		return "Transmission"
	case ReflTransAll:
		return "Reflection|Transmission"
	}
	return "Invalid"
}

// Flags categorizes the lobes of a scattering function
type Flags uint8

const (
	FlagUnset        Flags = 0
	FlagReflection   Flags = 1 << 0
	FlagTransmission Flags = 1 << 1
	FlagDiffuse      Flags = 1 << 2
	FlagGlossy       Flags = 1 << 3
	FlagSpecular     Flags = 1 << 4

	DiffuseReflection    = FlagDiffuse | FlagReflection
	DiffuseTransmission  = FlagDiffuse | FlagTransmission
	GlossyReflection     = FlagGlossy | FlagReflection
	GlossyTransmission   = FlagGlossy | FlagTransmission
	SpecularReflection   = FlagSpecular | FlagReflection
	SpecularTransmission = FlagSpecular | FlagTransmission
	FlagAll              = FlagDiffuse | FlagGlossy | FlagSpecular | FlagReflection | FlagTransmission
)

func (f Flags) IsReflective() bool   { return f&FlagReflection != 0 }
func (f Flags) IsTransmissive() bool { return f&FlagTransmission != 0 }
func (f Flags) IsDiffuse() bool      { return f&FlagDiffuse != 0 }
func (f Flags) IsGlossy() bool       { return f&FlagGlossy != 0 }
func (f Flags) IsSpecular() bool     { return f&FlagSpecular != 0 }

// IsNonSpecular reports whether any lobe has a finite density
func (f Flags) IsNonSpecular() bool { return f&(FlagDiffuse|FlagGlossy) != 0 }

// Allows reports whether f has a lobe permitted by the sampling restriction
func (f Flags) Allows(sampleFlags ReflTransFlags) bool {
	return uint8(f)&uint8(sampleFlags) != 0
}

func (f Flags) String() string {
	if f == FlagUnset {
		return "Unset"
	}
	names := []struct {
		flag Flags
		name string
	}{
		{FlagReflection, "Reflection"},
		{FlagTransmission, "Transmission"},
		{FlagDiffuse, "Diffuse"},
		{FlagGlossy, "Glossy"},
		{FlagSpecular, "Specular"},
	}
	var parts []string
	for _, n := range names {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// TransportMode distinguishes radiance from importance transport, which
// differ in how refraction scales throughput
type TransportMode uint8

const (
	Radiance TransportMode = iota
	Importance
)

// Flip returns the adjoint transport mode
func (m TransportMode) Flip() TransportMode {
	if m == Radiance {
		return Importance
	}
	return Radiance
}

func (m TransportMode) String() string {
	if m == Radiance {
		return "Radiance"
	}
	return "Importance"
}
