package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/pkg/errors"
)

// TriQuadMesh is the raw contents of a PLY file: shared vertex data plus
// separate triangle and quad index lists. Quad indices are stored in
// bilinear patch order (p00, p10, p01, p11).
type TriQuadMesh struct {
	P  []core.Vec3
	N  []core.Vec3 // empty if not present
	UV []core.Vec2 // empty if not present
	S  []core.Vec3 // tangents, only set by scene descriptions

	TriIndices  []int32
	QuadIndices []int32

	// Per-face ids from a face_indices property, one per triangle and one
	// per quad; empty if not present
	TriFaceIndices  []int32
	QuadFaceIndices []int32

	// Faces with other than 3 or 4 vertices are skipped and counted here
	SkippedFaces int
}

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element declaration and its properties
type PLYElement struct {
	Name  string
	Count int
	Props []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// Element returns the named element declaration
func (h *PLYHeader) Element(name string) (*PLYElement, bool) {
	for i := range h.Elements {
		if h.Elements[i].Name == name {
			return &h.Elements[i], true
		}
	}
	return nil, false
}

// propIndex returns the position of the named property, or -1
func (e *PLYElement) propIndex(name string) int {
	for i, p := range e.Props {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// uvNames lists the texture coordinate naming conventions in lookup order
var uvNames = [][2]string{
	{"u", "v"},
	{"s", "t"},
	{"texture_u", "texture_v"},
	{"texture_s", "texture_t"},
}

// ReadPLY loads a PLY file with triangle and quad faces
func ReadPLY(path string) (*TriQuadMesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening PLY file")
	}
	defer file.Close()

	mesh, err := DecodePLY(file)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return mesh, nil
}

// DecodePLY reads a PLY stream with triangle and quad faces
func DecodePLY(r io.Reader) (*TriQuadMesh, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read PLY header")
	}

	vertexElem, hasVertex := header.Element("vertex")
	faceElem, hasFace := header.Element("face")
	if !hasVertex || !hasFace || vertexElem.Count == 0 || faceElem.Count == 0 {
		return nil, errors.New("PLY file is invalid, no face/vertex elements found")
	}

	var values valueReader
	switch header.Format {
	case "ascii":
		s := bufio.NewScanner(br)
		s.Split(bufio.ScanWords)
		values = &asciiValues{s: s}
	case "binary_little_endian":
		values = &binaryValues{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{r: br, order: binary.BigEndian}
	default:
		return nil, errors.Errorf("unsupported PLY format %q", header.Format)
	}

	d, err := newPLYDecoder(vertexElem, faceElem)
	if err != nil {
		return nil, err
	}

	row := make([]float64, 0, 16)
	for ei := range header.Elements {
		elem := &header.Elements[ei]
		for i := 0; i < elem.Count; i++ {
			switch elem.Name {
			case "vertex":
				row, err = readScalarRow(values, elem, row[:0])
				if err != nil {
					return nil, errors.Wrapf(err, "reading vertex %d", i)
				}
				d.vertex(row)
			case "face":
				if err := d.face(values, elem, i); err != nil {
					return nil, errors.Wrapf(err, "reading face %d", i)
				}
			default:
				if err := skipInstance(values, elem); err != nil {
					return nil, errors.Wrapf(err, "skipping %s %d", elem.Name, i)
				}
			}
		}
	}

	if err := d.mesh.checkIndices(); err != nil {
		return nil, err
	}
	return d.mesh, nil
}

// plyDecoder maps vertex and face properties onto a TriQuadMesh
type plyDecoder struct {
	mesh *TriQuadMesh

	xyz, nxyz [3]int
	uv        [2]int
	hasN      bool
	hasUV     bool

	indicesProp, faceIndexProp int
}

func newPLYDecoder(vertexElem, faceElem *PLYElement) (*plyDecoder, error) {
	d := &plyDecoder{mesh: &TriQuadMesh{}}
	for i, name := range []string{"x", "y", "z"} {
		d.xyz[i] = vertexElem.propIndex(name)
		if d.xyz[i] < 0 || vertexElem.Props[d.xyz[i]].IsList {
			return nil, errors.New("vertex coordinate property not found")
		}
	}
	d.hasN = true
	for i, name := range []string{"nx", "ny", "nz"} {
		d.nxyz[i] = vertexElem.propIndex(name)
		d.hasN = d.hasN && d.nxyz[i] >= 0
	}
	for _, names := range uvNames {
		u, v := vertexElem.propIndex(names[0]), vertexElem.propIndex(names[1])
		if u >= 0 && v >= 0 {
			d.uv, d.hasUV = [2]int{u, v}, true
			break
		}
	}

	d.indicesProp = faceElem.propIndex("vertex_indices")
	if d.indicesProp < 0 {
		d.indicesProp = faceElem.propIndex("vertex_index")
	}
	if d.indicesProp < 0 || !faceElem.Props[d.indicesProp].IsList {
		return nil, errors.New("vertex indices not found in PLY file")
	}
	d.faceIndexProp = faceElem.propIndex("face_indices")

	m := d.mesh
	m.P = make([]core.Vec3, 0, vertexElem.Count)
	if d.hasN {
		m.N = make([]core.Vec3, 0, vertexElem.Count)
	}
	if d.hasUV {
		m.UV = make([]core.Vec2, 0, vertexElem.Count)
	}
	m.TriIndices = make([]int32, 0, 3*faceElem.Count)
	return d, nil
}

func (d *plyDecoder) vertex(row []float64) {
	m := d.mesh
	m.P = append(m.P, core.NewVec3(row[d.xyz[0]], row[d.xyz[1]], row[d.xyz[2]]))
	if d.hasN {
		m.N = append(m.N, core.NewVec3(row[d.nxyz[0]], row[d.nxyz[1]], row[d.nxyz[2]]))
	}
	if d.hasUV {
		m.UV = append(m.UV, core.NewVec2(row[d.uv[0]], row[d.uv[1]]))
	}
}

func (d *plyDecoder) face(values valueReader, elem *PLYElement, index int) error {
	var face [4]int32
	n := 0
	faceIndex, hasFaceIndex := int32(0), false
	for pi, prop := range elem.Props {
		switch {
		case pi == d.indicesProp:
			count, err := values.read(prop.ListType)
			if err != nil {
				return err
			}
			n = int(count)
			for j := 0; j < n; j++ {
				v, err := values.read(prop.DataType)
				if err != nil {
					return err
				}
				if j < len(face) {
					face[j] = int32(v)
				}
			}
		case pi == d.faceIndexProp && !prop.IsList:
			v, err := values.read(prop.Type)
			if err != nil {
				return err
			}
			faceIndex, hasFaceIndex = int32(v), true
		default:
			if err := skipProperty(values, prop); err != nil {
				return err
			}
		}
	}

	m := d.mesh
	switch n {
	case 3:
		m.TriIndices = append(m.TriIndices, face[0], face[1], face[2])
		if hasFaceIndex {
			m.TriFaceIndices = append(m.TriFaceIndices, faceIndex)
		}
	case 4:
		// Bilinear patch corner order
		m.QuadIndices = append(m.QuadIndices, face[0], face[1], face[3], face[2])
		if hasFaceIndex {
			m.QuadFaceIndices = append(m.QuadFaceIndices, faceIndex)
		}
	default:
		m.SkippedFaces++
	}
	return nil
}

func (m *TriQuadMesh) checkIndices() error {
	n := len(m.P)
	for _, list := range [][]int32{m.TriIndices, m.QuadIndices} {
		for _, idx := range list {
			if idx < 0 || int(idx) >= n {
				return errors.Errorf("vertex index %d is out of bounds, valid range is [0..%d)", idx, n)
			}
		}
	}
	return nil
}

// ConvertToOnlyTriangles splits every quad into two triangles
func (m *TriQuadMesh) ConvertToOnlyTriangles() {
	if len(m.QuadIndices) == 0 {
		return
	}
	for i := 0; i < len(m.QuadIndices); i += 4 {
		q := m.QuadIndices[i : i+4]
		m.TriIndices = append(m.TriIndices, q[0], q[1], q[3], q[0], q[3], q[2])
	}
	if len(m.QuadFaceIndices) > 0 {
		for _, f := range m.QuadFaceIndices {
			m.TriFaceIndices = append(m.TriFaceIndices, f, f)
		}
	}
	m.QuadIndices = nil
	m.QuadFaceIndices = nil
}

func (m *TriQuadMesh) String() string {
	return fmt.Sprintf("[ TriQuadMesh vertices: %d triangles: %d quads: %d normals: %t uvs: %t skipped: %d ]",
		len(m.P), len(m.TriIndices)/3, len(m.QuadIndices)/4, len(m.N) > 0, len(m.UV) > 0, m.SkippedFaces)
}

// parsePLYHeader parses the PLY header, leaving r positioned at the first
// byte of element data
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	readLine := func() (string, error) {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", errors.New("unexpected end of header")
			}
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	magic, err := readLine()
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, errors.Errorf("not a PLY file, got magic %q", magic)
	}

	for {
		line, err := readLine()
		if err != nil {
			return nil, err
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid format line %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, errors.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, errors.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.Errorf("property before any element: %q", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse property")
			}
			elem := &header.Elements[len(header.Elements)-1]
			elem.Props = append(elem.Props, prop)
		default:
			return nil, errors.Errorf("unknown header keyword %q", parts[0])
		}
	}

	if header.Format == "" {
		return nil, errors.New("missing format line")
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, errors.Errorf("unsupported list types %s %s", prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, errors.Errorf("unsupported data type: %s", prop.Type)
		}
	}

	return prop, nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// valueReader decodes one typed value from the element data
type valueReader interface {
	read(dataType string) (float64, error)
}

type binaryValues struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryValues) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch dataType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
	return 0, errors.Errorf("unsupported data type: %s", dataType)
}

type asciiValues struct {
	s *bufio.Scanner
}

func (a *asciiValues) read(dataType string) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	v, err := strconv.ParseFloat(a.s.Text(), 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s value %q", dataType, a.s.Text())
	}
	return v, nil
}

// readScalarRow reads one instance of an element whose properties are all
// scalars; list properties are skipped and read as 0
func readScalarRow(values valueReader, elem *PLYElement, row []float64) ([]float64, error) {
	for _, prop := range elem.Props {
		if prop.IsList {
			if err := skipProperty(values, prop); err != nil {
				return row, err
			}
			row = append(row, 0)
			continue
		}
		v, err := values.read(prop.Type)
		if err != nil {
			return row, err
		}
		row = append(row, v)
	}
	return row, nil
}

func skipInstance(values valueReader, elem *PLYElement) error {
	for _, prop := range elem.Props {
		if err := skipProperty(values, prop); err != nil {
			return err
		}
	}
	return nil
}

// skipProperty skips a property in the element data
func skipProperty(values valueReader, prop PLYProperty) error {
	if !prop.IsList {
		_, err := values.read(prop.Type)
		return err
	}
	count, err := values.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := values.read(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}
