package geometry

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// WritePLY writes the mesh as a binary little-endian PLY file. Tangents are
// not representable and are dropped.
func (m *TriangleMesh) WritePLY(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating PLY file %s", path)
	}
	if err := m.EncodePLY(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing PLY file %s", path)
	}
	return errors.Wrapf(f.Close(), "closing PLY file %s", path)
}

// EncodePLY writes the mesh in binary little-endian PLY form to w
func (m *TriangleMesh) EncodePLY(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "ply\nformat binary_little_endian 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", m.NVertices)
	fmt.Fprintf(bw, "property float x\nproperty float y\nproperty float z\n")
	if m.N != nil {
		fmt.Fprintf(bw, "property float nx\nproperty float ny\nproperty float nz\n")
	}
	if m.UV != nil {
		fmt.Fprintf(bw, "property float u\nproperty float v\n")
	}
	fmt.Fprintf(bw, "element face %d\n", m.NTriangles)
	fmt.Fprintf(bw, "property list uchar int vertex_indices\n")
	if m.FaceIndices != nil {
		fmt.Fprintf(bw, "property int face_indices\n")
	}
	fmt.Fprintf(bw, "end_header\n")

	le := binary.LittleEndian
	vertex := make([]float32, 0, 8)
	for i := 0; i < m.NVertices; i++ {
		vertex = append(vertex[:0], float32(m.P[i].X), float32(m.P[i].Y), float32(m.P[i].Z))
		if m.N != nil {
			vertex = append(vertex, float32(m.N[i].X), float32(m.N[i].Y), float32(m.N[i].Z))
		}
		if m.UV != nil {
			vertex = append(vertex, float32(m.UV[i].X), float32(m.UV[i].Y))
		}
		if err := binary.Write(bw, le, vertex); err != nil {
			return err
		}
	}

	for i := 0; i < m.NTriangles; i++ {
		if err := bw.WriteByte(3); err != nil {
			return err
		}
		if err := binary.Write(bw, le, m.VertexIndices[3*i:3*i+3]); err != nil {
			return err
		}
		if m.FaceIndices != nil {
			if err := binary.Write(bw, le, m.FaceIndices[i]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
