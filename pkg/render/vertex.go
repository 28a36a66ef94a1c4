package render

import "github.com/taigrr/orrery/pkg/math3d"

// Vertex is an object-space mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Triangle is three vertices plus the shading context they are drawn with.
type Triangle struct {
	V       [3]Vertex
	Context *ShaderContext
}

// MeshSource is the read-only view of an indexed mesh the pipeline draws.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMesh is a mesh that knows its object-space bounding box.
type BoundedMesh interface {
	MeshSource
	GetBounds() (min, max math3d.Vec3)
}

// Triangles expands an indexed mesh into standalone triangles. Faces that
// reference missing vertices are skipped.
func Triangles(mesh MeshSource, ctx *ShaderContext) []Triangle {
	n := mesh.VertexCount()
	out := make([]Triangle, 0, mesh.TriangleCount())
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		if !validFace(face, n) {
			continue
		}
		var t Triangle
		for k, idx := range face {
			p, nrm, uv := mesh.GetVertex(idx)
			t.V[k] = Vertex{Position: p, Normal: nrm, UV: uv}
		}
		t.Context = ctx
		out = append(out, t)
	}
	return out
}

func validFace(face [3]int, n int) bool {
	for _, idx := range face {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}
