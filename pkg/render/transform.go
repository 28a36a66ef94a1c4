package render

import "github.com/taigrr/orrery/pkg/math3d"

// Transform bundles the matrices the vertex stage needs for one draw call.
type Transform struct {
	MVP       math3d.Mat4
	ModelView math3d.Mat4
	// Normal is the inverse-transpose of ModelView.
	Normal math3d.Mat4
}

// NewTransform composes model, view and projection.
func NewTransform(model, view, projection math3d.Mat4) Transform {
	mv := view.Mul(model)
	return Transform{
		MVP:       projection.Mul(mv),
		ModelView: mv,
		Normal:    mv.NormalMatrix(),
	}
}

// ClipVertex is a vertex after the transform stage.
type ClipVertex struct {
	Clip math3d.Vec4
	NDC  math3d.Vec3
	// InvW is 1/w, used for perspective-correct interpolation.
	InvW   float64
	View   math3d.Vec3
	Normal math3d.Vec3
	UV     math3d.Vec2
	Local  math3d.Vec3

	// visible is false when w <= 0.
	visible bool
}

// ClipTriangle is a triangle ready for rasterization.
type ClipTriangle struct {
	V       [3]ClipVertex
	Context *ShaderContext
}

// Vertex runs one vertex through the transform.
func (t Transform) Vertex(v Vertex) ClipVertex {
	clip := t.MVP.MulVec4(math3d.V4FromV3(v.Position, 1))
	out := ClipVertex{
		Clip:   clip,
		View:   t.ModelView.MulPoint(v.Position),
		Normal: t.Normal.MulDir(v.Normal).Normalize(),
		UV:     v.UV,
		Local:  v.Position,
	}
	ndc, ok := clip.PerspectiveDivide()
	if ok {
		out.NDC = ndc
		out.InvW = 1 / clip.W
		out.visible = true
	}
	return out
}

// assemble decides whether three transformed vertices form a drawable
// triangle. A vertex at or behind the eye discards the whole triangle; a
// triangle entirely past one clip plane is trivially rejected.
func assemble(a, b, c ClipVertex) bool {
	if !a.visible || !b.visible || !c.visible {
		return false
	}
	return a.Clip.Outside()&b.Clip.Outside()&c.Clip.Outside() == 0
}

// TransformTriangles runs the vertex stage over a triangle list. It is pure:
// the input is not modified and the output order follows the input order.
func TransformTriangles(tris []Triangle, t Transform) []ClipTriangle {
	out := make([]ClipTriangle, 0, len(tris))
	for i := range tris {
		a := t.Vertex(tris[i].V[0])
		b := t.Vertex(tris[i].V[1])
		c := t.Vertex(tris[i].V[2])
		if !assemble(a, b, c) {
			continue
		}
		out = append(out, ClipTriangle{V: [3]ClipVertex{a, b, c}, Context: tris[i].Context})
	}
	return out
}

// AppendMesh transforms every vertex of mesh once and appends the surviving
// triangles to dst. It returns the extended slice and the number of faces
// that were discarded.
func AppendMesh(dst []ClipTriangle, mesh MeshSource, t Transform, ctx *ShaderContext) ([]ClipTriangle, int) {
	n := mesh.VertexCount()
	verts := make([]ClipVertex, n)
	for i := range n {
		p, nrm, uv := mesh.GetVertex(i)
		verts[i] = t.Vertex(Vertex{Position: p, Normal: nrm, UV: uv})
	}
	discarded := 0
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		if !validFace(face, n) {
			discarded++
			continue
		}
		a, b, c := verts[face[0]], verts[face[1]], verts[face[2]]
		if !assemble(a, b, c) {
			discarded++
			continue
		}
		dst = append(dst, ClipTriangle{V: [3]ClipVertex{a, b, c}, Context: ctx})
	}
	return dst, discarded
}
