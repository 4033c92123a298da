package core

import (
	"math"
	"testing"
)

func TestVec3_Operations(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(-2, 0.5, 4)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(-1, 2.5, 7)},
		{"Subtract", a.Subtract(b), NewVec3(3, 1.5, -1)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", a.Divide(2), NewVec3(0.5, 1, 1.5)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(-2, 1, 12)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"FaceForward keeps", a.FaceForward(NewVec3(0, 0, 1)), a},
		{"FaceForward flips", a.FaceForward(NewVec3(0, 0, -1)), a.Negate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("got %v, expected %v", tt.result, tt.expected)
			}
		})
	}

	if d := a.Dot(b); d != 11 {
		t.Errorf("Dot: got %f, expected 11", d)
	}
	if d := a.Negate().AbsDot(b); d != 11 {
		t.Errorf("AbsDot: got %f, expected 11", d)
	}
	if l := NewVec3(3, 4, 0).Length(); l != 5 {
		t.Errorf("Length: got %f, expected 5", l)
	}
	if l := a.Normalize().Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("Normalize: got length %f, expected 1", l)
	}
	if !(Vec3{}).IsZero() || a.IsZero() {
		t.Error("IsZero misreports")
	}
	if !NewVec3(0, math.NaN(), 0).HasNaN() || a.HasNaN() {
		t.Error("HasNaN misreports")
	}
}

func TestVec3_CoordinateSystem(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(1, 2, -3).Normalize(),
		NewVec3(-0.3, 0.1, 0.9).Normalize(),
	}

	for _, n := range normals {
		x, y := n.CoordinateSystem()
		if math.Abs(x.Length()-1) > 1e-9 || math.Abs(y.Length()-1) > 1e-9 {
			t.Errorf("%v: basis not unit length: %v %v", n, x, y)
		}
		if math.Abs(x.Dot(y)) > 1e-9 || math.Abs(x.Dot(n)) > 1e-9 || math.Abs(y.Dot(n)) > 1e-9 {
			t.Errorf("%v: basis not orthogonal: %v %v", n, x, y)
		}

		f := FrameFromZ(n)
		v := NewVec3(0.2, -0.7, 0.4)
		if back := f.FromLocal(f.ToLocal(v)); back.Subtract(v).Length() > 1e-9 {
			t.Errorf("%v: frame round trip: got %v, expected %v", n, back, v)
		}
		if local := f.ToLocal(n); local.Subtract(NewVec3(0, 0, 1)).Length() > 1e-9 {
			t.Errorf("%v: normal in local space: got %v, expected +Z", n, local)
		}
	}
}

func TestShadingFunctions(t *testing.T) {
	w := SphericalDirection(math.Sin(0.6), math.Cos(0.6), 1.1)

	if math.Abs(CosTheta(w)-math.Cos(0.6)) > 1e-12 {
		t.Errorf("CosTheta: got %f, expected %f", CosTheta(w), math.Cos(0.6))
	}
	if math.Abs(SinTheta(w)-math.Sin(0.6)) > 1e-12 {
		t.Errorf("SinTheta: got %f, expected %f", SinTheta(w), math.Sin(0.6))
	}
	if math.Abs(TanTheta(w)-math.Tan(0.6)) > 1e-12 {
		t.Errorf("TanTheta: got %f, expected %f", TanTheta(w), math.Tan(0.6))
	}
	if math.Abs(CosPhi(w)-math.Cos(1.1)) > 1e-12 || math.Abs(SinPhi(w)-math.Sin(1.1)) > 1e-12 {
		t.Errorf("phi: got cos %f sin %f, expected %f %f", CosPhi(w), SinPhi(w), math.Cos(1.1), math.Sin(1.1))
	}
	if !SameHemisphere(w, NewVec3(0, 0, 1)) || SameHemisphere(w, NewVec3(0, 0, -1)) {
		t.Error("SameHemisphere misreports")
	}

	// Straight up has no azimuth; phi falls back to the x axis
	up := NewVec3(0, 0, 1)
	if CosPhi(up) != 1 || SinPhi(up) != 0 {
		t.Errorf("phi of +Z: got cos %f sin %f, expected 1 0", CosPhi(up), SinPhi(up))
	}
}

func TestBounds3(t *testing.T) {
	empty := EmptyBounds3()
	if !empty.IsEmpty() {
		t.Error("EmptyBounds3 should be empty")
	}
	if empty.SurfaceArea() != 0 {
		t.Errorf("empty SurfaceArea: got %f, expected 0", empty.SurfaceArea())
	}

	b := NewBounds3FromPoints(NewVec3(1, 0, -1), NewVec3(-1, 3, 2), NewVec3(0, 1, 0))
	if b.Min != NewVec3(-1, 0, -1) || b.Max != NewVec3(1, 3, 2) {
		t.Errorf("bounds: got %v, expected [-1,0,-1]-[1,3,2]", b)
	}
	if c := b.Center(); c != NewVec3(0, 1.5, 0.5) {
		t.Errorf("Center: got %v, expected (0, 1.5, 0.5)", c)
	}
	if d := b.Diagonal(); d != NewVec3(2, 3, 3) {
		t.Errorf("Diagonal: got %v, expected (2, 3, 3)", d)
	}
	if a := b.SurfaceArea(); a != 2*(6+9+6) {
		t.Errorf("SurfaceArea: got %f, expected 42", a)
	}
	if axis := b.MaxDimension(); axis != 2 {
		t.Errorf("MaxDimension: got %d, expected 2", axis)
	}

	u := empty.Union(b).Union(NewBounds3FromPoints(NewVec3(5, 0, 0)))
	if u.Min != b.Min || u.Max != NewVec3(5, 3, 2) {
		t.Errorf("Union: got %v", u)
	}
	if u.MaxDimension() != 0 {
		t.Errorf("MaxDimension after union: got %d, expected 0", u.MaxDimension())
	}

	if empty.String() != "[ empty ]" {
		t.Errorf("String of empty bounds: got %q", empty.String())
	}
}
