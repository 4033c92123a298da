package loaders

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
)

func TestTokenizePBRT(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple statement",
			input:    `Shape "plymesh"`,
			expected: []string{`Shape`, `"plymesh"`},
		},
		{
			name:     "statement with parameters",
			input:    `Shape "plymesh" "string filename" "bunny.ply"`,
			expected: []string{`Shape`, `"plymesh"`, `"string filename"`, `"bunny.ply"`},
		},
		{
			name:     "statement with array",
			input:    `Shape "trianglemesh" "integer indices" [0 1 2]`,
			expected: []string{`Shape`, `"trianglemesh"`, `"integer indices"`, `[0 1 2]`},
		},
		{
			name:     "shape with multiple arrays",
			input:    `Shape "trianglemesh" "point3 P" [0 0 0 1 0 0 0 1 0] "point2 uv" [0 0 1 0 0 1]`,
			expected: []string{`Shape`, `"trianglemesh"`, `"point3 P"`, `[0 0 0 1 0 0 0 1 0]`, `"point2 uv"`, `[0 0 1 0 0 1]`},
		},
		{
			name:     "array glued to name",
			input:    `Shape "trianglemesh" "integer indices"[0 1 2]`,
			expected: []string{`Shape`, `"trianglemesh"`, `"integer indices"`, `[0 1 2]`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tokenizePBRT(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("tokenizePBRT() length = %d, want %d", len(result), len(tt.expected))
				t.Errorf("got: %v", result)
				t.Errorf("want: %v", tt.expected)
				return
			}
			for i, token := range result {
				if token != tt.expected[i] {
					t.Errorf("tokenizePBRT()[%d] = %q, want %q", i, token, tt.expected[i])
				}
			}
		})
	}
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedType  string
		expectedSub   string
		expectedParam string
		expectedValue []string
	}{
		{
			name:          "plymesh filename",
			input:         `Shape "plymesh" "string filename" "geometry/mesh.ply"`,
			expectedType:  "Shape",
			expectedSub:   "plymesh",
			expectedParam: "filename",
			expectedValue: []string{"geometry/mesh.ply"},
		},
		{
			name:          "bracketed string",
			input:         `Shape "plymesh" "string filename" [ "mesh.ply" ]`,
			expectedType:  "Shape",
			expectedSub:   "plymesh",
			expectedParam: "filename",
			expectedValue: []string{"mesh.ply"},
		},
		{
			name:          "integer array",
			input:         `Shape "trianglemesh" "integer indices" [0 1 2 2 1 3]`,
			expectedType:  "Shape",
			expectedSub:   "trianglemesh",
			expectedParam: "indices",
			expectedValue: []string{"0", "1", "2", "2", "1", "3"},
		},
		{
			name:          "translate",
			input:         `Translate 1 -2 3.5`,
			expectedType:  "Translate",
			expectedParam: "values",
			expectedValue: []string{"1", "-2", "3.5"},
		},
		{
			name:          "bracketed matrix",
			input:         `ConcatTransform [1 0 0 0 0 1 0 0 0 0 1 0 4 5 6 1]`,
			expectedType:  "ConcatTransform",
			expectedParam: "values",
			expectedValue: []string{"1", "0", "0", "0", "0", "1", "0", "0", "0", "0", "1", "0", "4", "5", "6", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parseStatement(tt.input)
			if err != nil {
				t.Fatalf("parseStatement() error = %v", err)
			}
			if stmt.Type != tt.expectedType {
				t.Errorf("Type = %q, want %q", stmt.Type, tt.expectedType)
			}
			if stmt.Subtype != tt.expectedSub {
				t.Errorf("Subtype = %q, want %q", stmt.Subtype, tt.expectedSub)
			}
			param, ok := stmt.Parameters[tt.expectedParam]
			if !ok {
				t.Fatalf("parameter %q missing from %v", tt.expectedParam, stmt.Parameters)
			}
			if strings.Join(param.Values, ",") != strings.Join(tt.expectedValue, ",") {
				t.Errorf("values = %v, want %v", param.Values, tt.expectedValue)
			}
		})
	}
}

const testScene = `# mesh shapes under nested transforms
LookAt 0 0 -5  0 0 0  0 1 0
Camera "perspective" "float fov" 45
Film "rgb" "integer xresolution" 64
WorldBegin

Translate 10 0 0
AttributeBegin
  Scale 2 2 2
  ReverseOrientation
  Shape "trianglemesh"
    "point3 P" [0 0 0  1 0 0  0 1 0]
    "normal N" [0 0 1  0 0 1  0 0 1]
    "integer indices" [0 1 2]
AttributeEnd

Material "diffuse"
Shape "sphere" "float radius" 1
AttributeBegin
  Rotate 90 0 0 1
  Shape "bilinearmesh"
    "point3 P" [0 0 0  1 0 0  0 1 0  1 1 0]
    "point2 uv" [0 0  1 0  0 1  1 1]
    "integer faceIndices" [3]
AttributeEnd
Shape "plymesh" "string filename" "mesh.ply"
`

func TestParsePBRT(t *testing.T) {
	scene, err := ParsePBRT(strings.NewReader(testScene), "scenes")
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}

	if scene.Dir != "scenes" {
		t.Errorf("Dir = %q, want scenes", scene.Dir)
	}
	if len(scene.Shapes) != 3 {
		t.Fatalf("got %d shapes, want 3", len(scene.Shapes))
	}
	for kind, want := range map[string]int{"Camera": 1, "Film": 1, "Material": 1, "Shape sphere": 1} {
		if scene.Ignored[kind] != want {
			t.Errorf("Ignored[%q] = %d, want %d", kind, scene.Ignored[kind], want)
		}
	}

	// WorldBegin resets the LookAt transform
	tri := scene.Shapes[0]
	if tri.Subtype != "trianglemesh" || !tri.ReverseOrientation {
		t.Errorf("triangle shape: got %s reverse=%t", tri.Subtype, tri.ReverseOrientation)
	}
	if p := tri.RenderFromObject.ApplyPoint(core.NewVec3(1, 1, 1)); p != core.NewVec3(12, 2, 2) {
		t.Errorf("triangle transform: got %v, want (12, 2, 2)", p)
	}

	// AttributeEnd restores the transform and orientation
	patch := scene.Shapes[1]
	if patch.ReverseOrientation {
		t.Error("bilinear shape should not inherit ReverseOrientation")
	}
	if p := patch.RenderFromObject.ApplyPoint(core.NewVec3(1, 0, 0)); p.Subtract(core.NewVec3(10, 1, 0)).Length() > 1e-9 {
		t.Errorf("bilinear transform: got %v, want (10, 1, 0)", p)
	}

	ply := scene.Shapes[2]
	if p := ply.RenderFromObject.ApplyPoint(core.Vec3{}); p != core.NewVec3(10, 0, 0) {
		t.Errorf("plymesh transform: got %v, want (10, 0, 0)", p)
	}
	if name, _ := ply.GetStringParam("filename"); name != "mesh.ply" {
		t.Errorf("filename = %q, want mesh.ply", name)
	}
}

func TestParsePBRT_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unmatched end", "AttributeEnd", "unmatched AttributeEnd"},
		{"unterminated block", "AttributeBegin\nTranslate 1 0 0", "unterminated AttributeBegin"},
		{"short translate", "Translate 1 2", "requires 3 values"},
		{"bad number", "Scale 1 x 1", "invalid number"},
		{"zero scale", "Scale 1 0 1", "degenerate scale"},
		{"singular matrix", "Transform [0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0]", "singular matrix"},
		{"degenerate lookat", "LookAt 0 0 0 0 0 1 0 0 1", "parallel"},
		{"continuation", `"float radius" 1`, "unexpected continuation line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePBRT(strings.NewReader(tt.input), ".")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestPBRTTransforms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		point    core.Vec3
		expected core.Vec3
	}{
		{"rotate about z", "Rotate 90 0 0 1", core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		{"rotate about diagonal", "Rotate 120 1 1 1", core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)},
		{"column-major matrix", "Transform [1 0 0 0 0 1 0 0 0 0 1 0 4 5 6 1]", core.Vec3{}, core.NewVec3(4, 5, 6)},
		{"concat after translate", "Translate 1 0 0\nConcatTransform [2 0 0 0 0 2 0 0 0 0 2 0 0 0 0 1]", core.NewVec3(1, 1, 1), core.NewVec3(3, 2, 2)},
		{"identity resets", "Translate 1 0 0\nIdentity", core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1)},
		{"transform block", "TransformBegin\nTranslate 5 0 0\nTransformEnd", core.Vec3{}, core.Vec3{}},
		{"lookat", "LookAt 0 0 -5 0 0 0 0 1 0", core.Vec3{}, core.NewVec3(0, 0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := ParsePBRT(strings.NewReader(tt.input+"\nShape \"plymesh\" \"string filename\" \"a.ply\""), ".")
			if err != nil {
				t.Fatalf("ParsePBRT() error = %v", err)
			}
			got := scene.Shapes[0].RenderFromObject.ApplyPoint(tt.point)
			if got.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPBRTShapeMesh(t *testing.T) {
	scene, err := ParsePBRT(strings.NewReader(testScene), ".")
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}

	tri, err := scene.Shapes[0].Mesh(scene.Dir)
	if err != nil {
		t.Fatalf("trianglemesh Mesh() error = %v", err)
	}
	if len(tri.P) != 3 || len(tri.N) != 3 || !equalInt32s(tri.TriIndices, []int32{0, 1, 2}) || len(tri.QuadIndices) != 0 {
		t.Errorf("trianglemesh: got %s indices %v", tri, tri.TriIndices)
	}

	patch, err := scene.Shapes[1].Mesh(scene.Dir)
	if err != nil {
		t.Fatalf("bilinearmesh Mesh() error = %v", err)
	}
	if !equalInt32s(patch.QuadIndices, []int32{0, 1, 2, 3}) || !equalInt32s(patch.QuadFaceIndices, []int32{3}) {
		t.Errorf("bilinearmesh: got indices %v faces %v", patch.QuadIndices, patch.QuadFaceIndices)
	}
	if len(patch.UV) != 4 || patch.UV[3] != core.NewVec2(1, 1) {
		t.Errorf("bilinearmesh uvs: got %v", patch.UV)
	}
}

func TestPBRTShapeMesh_Errors(t *testing.T) {
	tests := []struct {
		name  string
		shape string
		want  string
	}{
		{"no positions", `Shape "trianglemesh" "integer indices" [0 1 2]`, "not provided"},
		{"bad index count", `Shape "trianglemesh" "point3 P" [0 0 0 1 0 0 0 1 0 1 1 0] "integer indices" [0 1]`, "multiple of 3"},
		{"index out of range", `Shape "trianglemesh" "point3 P" [0 0 0 1 0 0 0 1 0] "integer indices" [0 1 5]`, "out of bounds"},
		{"normal count", `Shape "trianglemesh" "point3 P" [0 0 0 1 0 0 0 1 0] "normal N" [0 0 1]`, "normals"},
		{"face index count", `Shape "bilinearmesh" "point3 P" [0 0 0 1 0 0 0 1 0 1 1 0] "integer faceIndices" [1 2]`, "face indices"},
		{"ragged points", `Shape "trianglemesh" "point3 P" [0 0 0 1 0]`, "multiple of 3"},
		{"missing filename", `Shape "plymesh"`, "missing filename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := ParsePBRT(strings.NewReader(tt.shape), ".")
			if err != nil {
				t.Fatalf("ParsePBRT() error = %v", err)
			}
			_, err = scene.Shapes[0].Mesh(scene.Dir)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadPBRT_PLYRelativeToScene(t *testing.T) {
	dir := t.TempDir()
	createTestPLY(t, filepath.Join(dir, "mesh.ply"), binary.LittleEndian, false)
	scenePath := filepath.Join(dir, "scene.pbrt")
	if err := os.WriteFile(scenePath, []byte(`Shape "plymesh" "string filename" "mesh.ply"`), 0644); err != nil {
		t.Fatalf("writing scene: %v", err)
	}

	scene, err := LoadPBRT(scenePath)
	if err != nil {
		t.Fatalf("LoadPBRT() error = %v", err)
	}
	if scene.Dir != dir {
		t.Errorf("Dir = %q, want %q", scene.Dir, dir)
	}
	mesh, err := scene.Shapes[0].Mesh(scene.Dir)
	if err != nil {
		t.Fatalf("plymesh Mesh() error = %v", err)
	}
	if len(mesh.P) == 0 || len(mesh.TriIndices) == 0 {
		t.Errorf("plymesh: got %s", mesh)
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"pbrt file", "scenes/test.pbrt", false},
		{"absolute path", filepath.Join(os.TempDir(), "x.PBRT"), false},
		{"empty", "", true},
		{"wrong extension", "scene.txt", true},
		{"null byte", "scene\x00.pbrt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestPBRTRotateUnnormalizedAxis(t *testing.T) {
	scene, err := ParsePBRT(strings.NewReader("Rotate 37 0 0 5\nShape \"plymesh\" \"string filename\" \"a.ply\""), ".")
	if err != nil {
		t.Fatalf("ParsePBRT() error = %v", err)
	}
	p := scene.Shapes[0].RenderFromObject.ApplyPoint(core.NewVec3(3, 4, 0))
	if math.Abs(p.Length()-5) > 1e-9 {
		t.Errorf("rotated length = %f, want 5", p.Length())
	}
}
