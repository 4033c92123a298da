package loaders

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/pkg/errors"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Shape, Translate, etc.)
	Subtype    string               // Subtype (trianglemesh, plymesh, etc.)
	Parameters map[string]PBRTParam // Named parameters
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, integer, point3, etc.)
	Values []string // Parameter values as strings
}

// PBRTShape is a Shape statement together with the graphics state that was
// active when it appeared
type PBRTShape struct {
	PBRTStatement
	RenderFromObject   core.Transform
	ReverseOrientation bool
}

// PBRTScene holds the mesh shapes of a scene description. Statements that do
// not affect geometry are counted in Ignored by type.
type PBRTScene struct {
	Dir     string // directory that relative file names resolve against
	Shapes  []PBRTShape
	Ignored map[string]int
}

// graphicsState is the part of the pbrt graphics state that shapes capture
type graphicsState struct {
	ctm                core.Transform
	reverseOrientation bool
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          graphicsState
	stateStack     []graphicsState
	statementLines []string
}

// ParsePBRT parses PBRT content from an io.Reader. Relative file names in
// the result resolve against dir.
func ParsePBRT(reader io.Reader, dir string) (*PBRTScene, error) {
	parser := NewPBRTParser(dir)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading input")
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}
	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PBRT file")
	}
	defer file.Close()

	return ParsePBRT(file, filepath.Dir(filename))
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser(dir string) *PBRTParser {
	return &PBRTParser{
		scene: &PBRTScene{
			Dir:     dir,
			Ignored: make(map[string]int),
		},
		state: graphicsState{ctm: core.IdentityTransform()},
	}
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return errors.Wrapf(err, "error parsing statement '%s'", fullStatement)
	}
	return p.routeStatement(stmt)
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 && !strings.Contains(line[:i], "\"") {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	if len(p.statementLines) == 0 {
		return errors.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return errors.Wrap(err, "at end of file")
	}
	if len(p.stateStack) != 0 {
		return errors.Errorf("%d unterminated AttributeBegin blocks", len(p.stateStack))
	}
	return nil
}

// routeStatement applies a statement to the graphics state or records a shape
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "AttributeBegin", "TransformBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd", "TransformEnd":
		if len(p.stateStack) == 0 {
			return errors.Errorf("unmatched %s", stmt.Type)
		}
		restored := p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
		if stmt.Type == "TransformEnd" {
			p.state.ctm = restored.ctm
		} else {
			p.state = restored
		}
	case "WorldBegin":
		p.state.ctm = core.IdentityTransform()
	case "ReverseOrientation":
		p.state.reverseOrientation = !p.state.reverseOrientation
	case "Identity", "Translate", "Scale", "Rotate", "LookAt", "Transform", "ConcatTransform":
		t, err := parseTransform(stmt)
		if err != nil {
			return errors.Wrapf(err, "error parsing %s", stmt.Type)
		}
		switch stmt.Type {
		case "Identity", "Transform":
			p.state.ctm = t
		default:
			p.state.ctm = p.state.ctm.Compose(t)
		}
	case "Shape":
		switch stmt.Subtype {
		case "trianglemesh", "bilinearmesh", "plymesh":
			p.scene.Shapes = append(p.scene.Shapes, PBRTShape{
				PBRTStatement:      *stmt,
				RenderFromObject:   p.state.ctm,
				ReverseOrientation: p.state.reverseOrientation,
			})
		default:
			p.scene.Ignored["Shape "+stmt.Subtype]++
		}
	default:
		p.scene.Ignored[stmt.Type]++
	}
	return nil
}

// validateFilePath rejects names that cannot be scene files
func validateFilePath(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return errors.New("invalid file path: null bytes not allowed")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pbrt") {
		return errors.New("invalid file type: only .pbrt files are allowed")
	}
	return nil
}

// parseTransform builds the transform a transform statement describes.
// Matrices in the file are column-major.
func parseTransform(stmt *PBRTStatement) (core.Transform, error) {
	values, err := parseFloats(stmt.Parameters["values"].Values)
	if err != nil {
		return core.Transform{}, err
	}
	want := map[string]int{"Identity": 0, "Translate": 3, "Scale": 3, "Rotate": 4, "LookAt": 9, "Transform": 16, "ConcatTransform": 16}[stmt.Type]
	if len(values) != want {
		return core.Transform{}, errors.Errorf("%s requires %d values, got %d", stmt.Type, want, len(values))
	}

	v3 := func(i int) core.Vec3 { return core.NewVec3(values[i], values[i+1], values[i+2]) }
	switch stmt.Type {
	case "Translate":
		return core.Translate(v3(0)), nil
	case "Scale":
		if values[0] == 0 || values[1] == 0 || values[2] == 0 {
			return core.Transform{}, errors.Errorf("degenerate scale %v", values)
		}
		return core.Scale(values[0], values[1], values[2]), nil
	case "Rotate":
		return core.Rotate(core.Radians(values[0]), v3(1)), nil
	case "LookAt":
		return core.LookAt(v3(0), v3(3), v3(6))
	case "Transform", "ConcatTransform":
		var m core.Mat4
		for i := 0; i < 16; i++ {
			m[i%4][i/4] = values[i]
		}
		if _, ok := m.Inverse(); !ok {
			return core.Transform{}, errors.Errorf("singular matrix %v", values)
		}
		return core.NewTransform(m), nil
	}
	return core.IdentityTransform(), nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			current.WriteRune(char)
			if !inBrackets {
				if inQuotes {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				inQuotes = !inQuotes
			}
		case '[':
			if !inQuotes && current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			current.WriteRune(char)
			if !inQuotes {
				inBrackets = true
			}
		case ']':
			current.WriteRune(char)
			if !inQuotes && inBrackets {
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	// Transform statements carry bare numbers, optionally bracketed
	for _, transform := range []string{"Identity", "Translate", "Scale", "Rotate", "LookAt", "ConcatTransform", "Transform"} {
		if line == transform || strings.HasPrefix(line, transform+" ") || strings.HasPrefix(line, transform+"[") {
			parts := strings.Fields(strings.NewReplacer("[", " ", "]", " ").Replace(line[len(transform):]))
			return &PBRTStatement{
				Type: transform,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: parts},
				},
			}, nil
		}
	}

	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, errors.New("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	if len(parts) > 1 && strings.HasPrefix(parts[1], "\"") && strings.HasSuffix(parts[1], "\"") {
		stmt.Subtype = strings.Trim(parts[1], "\"")
		parts = parts[2:]
	} else {
		parts = parts[1:]
	}

	i := 0
	for i < len(parts) {
		if !strings.HasPrefix(parts[i], "\"") {
			i++
			continue
		}

		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		i++
		if len(paramParts) != 2 {
			continue
		}

		var values []string
		if i < len(parts) {
			if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
				values = strings.Fields(strings.Trim(parts[i], "[] "))
			} else {
				values = []string{parts[i]}
			}
			i++
		}
		for j, v := range values {
			values[j] = strings.Trim(v, "\"")
		}

		stmt.Parameters[paramParts[1]] = PBRTParam{
			Type:   paramParts[0],
			Values: values,
		}
	}

	return stmt, nil
}

func parseFloats(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Errorf("invalid number '%s'", v)
		}
		out[i] = f
	}
	return out, nil
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// GetIntsParam extracts an integer array. A missing parameter returns nil.
func (stmt *PBRTStatement) GetIntsParam(name string) ([]int32, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, nil
	}
	out := make([]int32, len(param.Values))
	for i, v := range param.Values {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, errors.Errorf("parameter %s: invalid integer '%s'", name, v)
		}
		out[i] = int32(n)
	}
	return out, nil
}

// GetVec3sParam extracts a point3, normal or vector array. A missing
// parameter returns nil.
func (stmt *PBRTStatement) GetVec3sParam(name string) ([]core.Vec3, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, nil
	}
	values, err := parseFloats(param.Values)
	if err != nil {
		return nil, errors.Wrapf(err, "parameter %s", name)
	}
	if len(values)%3 != 0 {
		return nil, errors.Errorf("parameter %s: %d values is not a multiple of 3", name, len(values))
	}
	out := make([]core.Vec3, len(values)/3)
	for i := range out {
		out[i] = core.NewVec3(values[3*i], values[3*i+1], values[3*i+2])
	}
	return out, nil
}

// GetVec2sParam extracts a point2 array. A missing parameter returns nil.
func (stmt *PBRTStatement) GetVec2sParam(name string) ([]core.Vec2, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, nil
	}
	values, err := parseFloats(param.Values)
	if err != nil {
		return nil, errors.Wrapf(err, "parameter %s", name)
	}
	if len(values)%2 != 0 {
		return nil, errors.Errorf("parameter %s: %d values is not a multiple of 2", name, len(values))
	}
	out := make([]core.Vec2, len(values)/2)
	for i := range out {
		out[i] = core.NewVec2(values[2*i], values[2*i+1])
	}
	return out, nil
}

// Mesh returns the vertex data of the shape. plymesh shapes are read from
// their file, resolved against dir when relative. trianglemesh data lands in
// the triangle lists and bilinearmesh data in the quad lists.
func (s *PBRTShape) Mesh(dir string) (*TriQuadMesh, error) {
	if s.Subtype == "plymesh" {
		name, ok := s.GetStringParam("filename")
		if !ok {
			return nil, errors.New("plymesh: missing filename")
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}
		return ReadPLY(name)
	}

	mesh := &TriQuadMesh{}
	var err error
	if mesh.P, err = s.GetVec3sParam("P"); err != nil {
		return nil, err
	}
	if mesh.N, err = s.GetVec3sParam("N"); err != nil {
		return nil, err
	}
	if mesh.S, err = s.GetVec3sParam("S"); err != nil {
		return nil, err
	}
	if mesh.UV, err = s.GetVec2sParam("uv"); err != nil {
		return nil, err
	}
	indices, err := s.GetIntsParam("indices")
	if err != nil {
		return nil, err
	}
	faceIndices, err := s.GetIntsParam("faceIndices")
	if err != nil {
		return nil, err
	}
	if len(mesh.P) == 0 {
		return nil, errors.Errorf("%s: vertex positions \"P\" not provided", s.Subtype)
	}

	switch s.Subtype {
	case "trianglemesh":
		// A lone triangle may omit its indices
		if indices == nil && len(mesh.P) == 3 {
			indices = []int32{0, 1, 2}
		}
		if len(indices) == 0 || len(indices)%3 != 0 {
			return nil, errors.Errorf("trianglemesh: %d indices is not a positive multiple of 3", len(indices))
		}
		mesh.TriIndices, mesh.TriFaceIndices = indices, faceIndices
	case "bilinearmesh":
		if indices == nil && len(mesh.P) == 4 {
			indices = []int32{0, 1, 2, 3}
		}
		if len(indices) == 0 || len(indices)%4 != 0 {
			return nil, errors.Errorf("bilinearmesh: %d indices is not a positive multiple of 4", len(indices))
		}
		mesh.QuadIndices, mesh.QuadFaceIndices = indices, faceIndices
	default:
		return nil, errors.Errorf("unsupported shape %q", s.Subtype)
	}

	if err := mesh.checkIndices(); err != nil {
		return nil, errors.Wrap(err, s.Subtype)
	}
	if len(mesh.N) != 0 && len(mesh.N) != len(mesh.P) {
		return nil, errors.Errorf("%s: %d normals for %d vertices", s.Subtype, len(mesh.N), len(mesh.P))
	}
	if len(mesh.S) != 0 && len(mesh.S) != len(mesh.P) {
		return nil, errors.Errorf("%s: %d tangents for %d vertices", s.Subtype, len(mesh.S), len(mesh.P))
	}
	if len(mesh.UV) != 0 && len(mesh.UV) != len(mesh.P) {
		return nil, errors.Errorf("%s: %d uvs for %d vertices", s.Subtype, len(mesh.UV), len(mesh.P))
	}
	if nFaces := len(indices) / map[string]int{"trianglemesh": 3, "bilinearmesh": 4}[s.Subtype]; len(faceIndices) != 0 && len(faceIndices) != nFaces {
		return nil, errors.Errorf("%s: %d face indices for %d faces", s.Subtype, len(faceIndices), nFaces)
	}
	return mesh, nil
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	for _, stmt := range statementTypes {
		if line == stmt || strings.HasPrefix(line, stmt+" ") || strings.HasPrefix(line, stmt+"[") || strings.HasPrefix(line, stmt+"\"") {
			return true
		}
	}
	return false
}

var statementTypes = []string{
	"Camera", "Film", "Sampler", "Integrator", "PixelFilter", "ColorSpace", "Option",
	"WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd", "TransformBegin", "TransformEnd",
	"Attribute", "Material", "MakeNamedMaterial", "NamedMaterial", "Texture",
	"Shape", "LightSource", "AreaLightSource", "MakeNamedMedium", "MediumInterface",
	"ObjectBegin", "ObjectEnd", "ObjectInstance", "CoordinateSystem", "CoordSysTransform",
	"Identity", "Translate", "Rotate", "Scale", "LookAt", "Transform", "ConcatTransform",
	"ReverseOrientation", "Import", "Include",
}
