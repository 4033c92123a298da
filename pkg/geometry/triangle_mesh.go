package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// TriangleMesh holds the shared vertex data for a set of triangles. Positions,
// normals and tangents are stored in render space; the slices are views into
// MeshBufferCaches and must not be modified.
type TriangleMesh struct {
	ReverseOrientation       bool
	TransformSwapsHandedness bool
	NTriangles               int
	NVertices                int

	VertexIndices []int32     // 3 per triangle
	P             []core.Vec3 // positions
	N             []core.Vec3 // optional per-vertex normals
	S             []core.Vec3 // optional per-vertex tangents
	UV            []core.Vec2 // optional per-vertex texture coordinates
	FaceIndices   []int32     // optional per-triangle face ids
}

// NewTriangleMesh transforms the object-space vertex data into render space
// and stores it through the caches. indices must hold 3 entries per triangle
// and the optional n, s and uv slices must be empty or one per vertex.
// The caller's slices are not modified.
func NewTriangleMesh(caches *MeshBufferCaches, renderFromObject core.Transform, reverseOrientation bool,
	indices []int32, p []core.Vec3, s []core.Vec3, n []core.Vec3, uv []core.Vec2, faceIndices []int32) *TriangleMesh {
	if len(indices)%3 != 0 {
		panic(fmt.Sprintf("triangle mesh: %d vertex indices is not a multiple of 3", len(indices)))
	}
	nTriangles := len(indices) / 3
	checkMeshSizes("triangle mesh", indices, len(p), len(n), len(uv), len(faceIndices), nTriangles)
	if len(s) != 0 && len(s) != len(p) {
		panic(fmt.Sprintf("triangle mesh: %d tangents for %d vertices", len(s), len(p)))
	}

	mesh := &TriangleMesh{
		ReverseOrientation:       reverseOrientation,
		TransformSwapsHandedness: renderFromObject.SwapsHandedness(),
		NTriangles:               nTriangles,
		NVertices:                len(p),
	}

	mesh.VertexIndices = caches.Indices.LookupOrAdd(indices)
	mesh.P = caches.Positions.LookupOrAdd(transformPoints(renderFromObject, p))
	if len(uv) > 0 {
		mesh.UV = caches.UVs.LookupOrAdd(uv)
	}
	if len(n) > 0 {
		mesh.N = caches.Normals.LookupOrAdd(transformNormals(renderFromObject, n, reverseOrientation))
	}
	if len(s) > 0 {
		ws := make([]core.Vec3, len(s))
		for i, v := range s {
			ws[i] = renderFromObject.ApplyVector(v)
		}
		mesh.S = caches.Tangents.LookupOrAdd(ws)
	}
	if len(faceIndices) > 0 {
		mesh.FaceIndices = caches.FaceIndices.LookupOrAdd(faceIndices)
	}

	caches.triMeshes.Add(1)
	caches.triangles.Add(int64(nTriangles))
	return mesh
}

// Vertices returns the render-space corners of triangle i
func (m *TriangleMesh) Vertices(i int) (core.Vec3, core.Vec3, core.Vec3) {
	if i < 0 || i >= m.NTriangles {
		panic(fmt.Sprintf("triangle mesh: triangle %d out of range [0, %d)", i, m.NTriangles))
	}
	v := m.VertexIndices[3*i : 3*i+3]
	return m.P[v[0]], m.P[v[1]], m.P[v[2]]
}

// Area returns the total render-space surface area
func (m *TriangleMesh) Area() float64 {
	area := 0.0
	for i := 0; i < m.NTriangles; i++ {
		p0, p1, p2 := m.Vertices(i)
		area += 0.5 * p1.Subtract(p0).Cross(p2.Subtract(p0)).Length()
	}
	return area
}

// Bounds returns the render-space bounds of the vertices
func (m *TriangleMesh) Bounds() core.Bounds3 {
	return core.NewBounds3FromPoints(m.P...)
}

func (m *TriangleMesh) String() string {
	return fmt.Sprintf("[ TriangleMesh reverseOrientation: %t transformSwapsHandedness: %t "+
		"nTriangles: %d nVertices: %d normals: %t tangents: %t uvs: %t faceIndices: %t ]",
		m.ReverseOrientation, m.TransformSwapsHandedness, m.NTriangles, m.NVertices,
		m.N != nil, m.S != nil, m.UV != nil, m.FaceIndices != nil)
}

// checkMeshSizes panics when a vertex index is out of range or an optional
// buffer does not match the vertex or face count
func checkMeshSizes(kind string, indices []int32, nP, nN, nUV, nFace, nPrims int) {
	if nP > math.MaxInt32 {
		panic(fmt.Sprintf("%s: %d vertices cannot be addressed by int32 indices", kind, nP))
	}
	if nN != 0 && nN != nP {
		panic(fmt.Sprintf("%s: %d normals for %d vertices", kind, nN, nP))
	}
	if nUV != 0 && nUV != nP {
		panic(fmt.Sprintf("%s: %d uvs for %d vertices", kind, nUV, nP))
	}
	if nFace != 0 && nFace != nPrims {
		panic(fmt.Sprintf("%s: %d face indices for %d primitives", kind, nFace, nPrims))
	}
	for _, idx := range indices {
		if idx < 0 || int(idx) >= nP {
			panic(fmt.Sprintf("%s: vertex index %d out of range [0, %d)", kind, idx, nP))
		}
	}
}

func transformPoints(t core.Transform, p []core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, len(p))
	for i, v := range p {
		out[i] = t.ApplyPoint(v)
	}
	return out
}

func transformNormals(t core.Transform, n []core.Vec3, reverse bool) []core.Vec3 {
	out := make([]core.Vec3, len(n))
	for i, v := range n {
		out[i] = t.ApplyNormal(v)
		if reverse {
			out[i] = out[i].Negate()
		}
	}
	return out
}
