package geometry

import (
	"fmt"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/sampling"
)

// BilinearPatchMesh holds the shared vertex data for a set of bilinear
// patches. Each patch uses 4 indices ordered p00, p10, p01, p11.
type BilinearPatchMesh struct {
	ReverseOrientation       bool
	TransformSwapsHandedness bool
	NPatches                 int
	NVertices                int

	VertexIndices []int32
	P             []core.Vec3
	N             []core.Vec3
	UV            []core.Vec2
	FaceIndices   []int32

	// ImageDistribution, when set, drives (u,v) sampling of emissive patches
	ImageDistribution *sampling.PiecewiseConstant2D
}

// NewBilinearPatchMesh transforms the object-space vertex data into render
// space and stores it through the caches. indices must hold 4 entries per
// patch.
func NewBilinearPatchMesh(caches *MeshBufferCaches, renderFromObject core.Transform, reverseOrientation bool,
	indices []int32, p []core.Vec3, n []core.Vec3, uv []core.Vec2, faceIndices []int32,
	imageDist *sampling.PiecewiseConstant2D) *BilinearPatchMesh {
	if len(indices)%4 != 0 {
		panic(fmt.Sprintf("bilinear patch mesh: %d vertex indices is not a multiple of 4", len(indices)))
	}
	nPatches := len(indices) / 4
	checkMeshSizes("bilinear patch mesh", indices, len(p), len(n), len(uv), len(faceIndices), nPatches)

	mesh := &BilinearPatchMesh{
		ReverseOrientation:       reverseOrientation,
		TransformSwapsHandedness: renderFromObject.SwapsHandedness(),
		NPatches:                 nPatches,
		NVertices:                len(p),
		ImageDistribution:        imageDist,
	}

	mesh.VertexIndices = caches.Indices.LookupOrAdd(indices)
	mesh.P = caches.Positions.LookupOrAdd(transformPoints(renderFromObject, p))
	if len(uv) > 0 {
		mesh.UV = caches.UVs.LookupOrAdd(uv)
	}
	if len(n) > 0 {
		mesh.N = caches.Normals.LookupOrAdd(transformNormals(renderFromObject, n, reverseOrientation))
	}
	if len(faceIndices) > 0 {
		mesh.FaceIndices = caches.FaceIndices.LookupOrAdd(faceIndices)
	}

	caches.patchMeshes.Add(1)
	caches.patches.Add(int64(nPatches))
	return mesh
}

// Corners returns p00, p10, p01 and p11 of patch i
func (m *BilinearPatchMesh) Corners(i int) (core.Vec3, core.Vec3, core.Vec3, core.Vec3) {
	if i < 0 || i >= m.NPatches {
		panic(fmt.Sprintf("bilinear patch mesh: patch %d out of range [0, %d)", i, m.NPatches))
	}
	v := m.VertexIndices[4*i : 4*i+4]
	return m.P[v[0]], m.P[v[1]], m.P[v[2]], m.P[v[3]]
}

// Position evaluates patch i at parametric coordinates uv
func (m *BilinearPatchMesh) Position(i int, uv core.Vec2) core.Vec3 {
	p00, p10, p01, p11 := m.Corners(i)
	bottom := p00.Multiply(1 - uv.X).Add(p10.Multiply(uv.X))
	top := p01.Multiply(1 - uv.X).Add(p11.Multiply(uv.X))
	return bottom.Multiply(1 - uv.Y).Add(top.Multiply(uv.Y))
}

// SampleUV maps u to patch parameters, following ImageDistribution when one
// is set. The returned density is with respect to (u,v) area.
func (m *BilinearPatchMesh) SampleUV(u core.Vec2) (core.Vec2, float64) {
	if m.ImageDistribution == nil {
		return u, 1
	}
	return m.ImageDistribution.Sample(u)
}

// Bounds returns the render-space bounds of the vertices
func (m *BilinearPatchMesh) Bounds() core.Bounds3 {
	return core.NewBounds3FromPoints(m.P...)
}

func (m *BilinearPatchMesh) String() string {
	return fmt.Sprintf("[ BilinearPatchMesh reverseOrientation: %t transformSwapsHandedness: %t "+
		"nPatches: %d nVertices: %d normals: %t uvs: %t faceIndices: %t imageDistribution: %t ]",
		m.ReverseOrientation, m.TransformSwapsHandedness, m.NPatches, m.NVertices,
		m.N != nil, m.UV != nil, m.FaceIndices != nil, m.ImageDistribution != nil)
}
