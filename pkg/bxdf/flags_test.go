package bxdf

import "testing"

func TestFlagComposites(t *testing.T) {
	tests := []struct {
		name     string
		got      Flags
		expected Flags
	}{
		{"DiffuseReflection", DiffuseReflection, FlagDiffuse | FlagReflection},
		{"DiffuseTransmission", DiffuseTransmission, FlagDiffuse | FlagTransmission},
		{"GlossyReflection", GlossyReflection, FlagGlossy | FlagReflection},
		{"GlossyTransmission", GlossyTransmission, FlagGlossy | FlagTransmission},
		{"SpecularReflection", SpecularReflection, FlagSpecular | FlagReflection},
		{"SpecularTransmission", SpecularTransmission, FlagSpecular | FlagTransmission},
		{"All", FlagAll, DiffuseReflection | GlossyTransmission | SpecularReflection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
	if ReflTransAll != Reflection|Transmission {
		t.Errorf("ReflTransAll: got %v", ReflTransAll)
	}
}

func TestFlagPredicates(t *testing.T) {
	f := GlossyReflection | DiffuseTransmission
	if !f.IsReflective() || !f.IsTransmissive() || !f.IsGlossy() || !f.IsDiffuse() || f.IsSpecular() {
		t.Errorf("unexpected predicates for %v", f)
	}
	if !f.IsNonSpecular() || SpecularReflection.IsNonSpecular() {
		t.Error("IsNonSpecular mismatch")
	}
	if !GlossyTransmission.Allows(Transmission) || GlossyTransmission.Allows(Reflection) {
		t.Error("Allows mismatch")
	}
	if FlagUnset.String() != "Unset" || SpecularReflection.String() != "Reflection|Specular" {
		t.Errorf("String: got %q and %q", FlagUnset.String(), SpecularReflection.String())
	}
}

func TestTransportModeFlip(t *testing.T) {
	if Radiance.Flip() != Importance || Importance.Flip() != Radiance {
		t.Error("Flip is not an involution between Radiance and Importance")
	}
	if Radiance.Flip().Flip() != Radiance {
		t.Error("double Flip changed the mode")
	}
}
