package models

import (
	"math"
	"testing"

	"github.com/taigrr/orrery/pkg/math3d"
)

func checkFaces(t *testing.T, m *Mesh) {
	t.Helper()
	for i := range m.TriangleCount() {
		for _, idx := range m.GetFace(i) {
			if idx < 0 || idx >= m.VertexCount() {
				t.Fatalf("face %d references vertex %d of %d", i, idx, m.VertexCount())
			}
		}
	}
}

func TestUVSphere(t *testing.T) {
	m := NewUVSphere(16, 8)
	if m.VertexCount() != 17*9 {
		t.Errorf("vertices = %d, want %d", m.VertexCount(), 17*9)
	}
	// Pole rows contribute one triangle per segment, other rows two.
	if want := 16 * (2*8 - 2); m.TriangleCount() != want {
		t.Errorf("faces = %d, want %d", m.TriangleCount(), want)
	}
	checkFaces(t, m)

	for i := range m.VertexCount() {
		p, n, uv := m.GetVertex(i)
		if math.Abs(p.Len()-1) > 1e-9 || n != p {
			t.Fatalf("vertex %d: pos %v normal %v", i, p, n)
		}
		if uv.X < 0 || uv.X > 1 || uv.Y < 0 || uv.Y > 1 {
			t.Fatalf("vertex %d uv %v out of range", i, uv)
		}
	}

	lo, hi := m.GetBounds()
	if math.Abs(lo.Y+1) > 1e-9 || math.Abs(hi.Y-1) > 1e-9 {
		t.Errorf("bounds = %v..%v", lo, hi)
	}
}

func TestUVSphereWindsOutward(t *testing.T) {
	m := NewUVSphere(12, 6)
	for i := range m.TriangleCount() {
		f := m.GetFace(i)
		a, b, c := m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-12 {
			t.Fatalf("face %d is degenerate", i)
		}
		if n.Dot(a.Add(b).Add(c)) <= 0 {
			t.Fatalf("face %d winds inward", i)
		}
	}
}

func TestRing(t *testing.T) {
	m := NewRing(2, 1.2, 24)
	checkFaces(t, m)
	if m.TriangleCount() != 48 {
		t.Errorf("faces = %d, want 48", m.TriangleCount())
	}
	for i := range m.VertexCount() {
		p, n, uv := m.GetVertex(i)
		r := math.Hypot(p.X, p.Z)
		want := 1.2 + 0.8*uv.X
		if math.Abs(r-want) > 1e-9 {
			t.Fatalf("vertex %d radius %v, want %v for u=%v", i, r, want, uv.X)
		}
		if n != math3d.Up() || p.Y != 0 {
			t.Fatalf("vertex %d not flat: %v %v", i, p, n)
		}
	}
}

func TestShipClosedAndOutward(t *testing.T) {
	m := NewShip()
	checkFaces(t, m)
	if m.TriangleCount() != 6 {
		t.Fatalf("faces = %d, want 6", m.TriangleCount())
	}
	center := m.Center()
	for i, f := range m.Faces {
		a := m.Vertices[f.V[0]]
		mid := a.Position.Add(m.Vertices[f.V[1]].Position).Add(m.Vertices[f.V[2]].Position).Scale(1.0 / 3)
		if a.Normal.Dot(mid.Sub(center)) <= 0 {
			t.Errorf("face %d normal %v points inward", i, a.Normal)
		}
		if m.GetMaterial(f.Material) == nil {
			t.Errorf("face %d has no material", i)
		}
	}
	if _, hi := m.GetBounds(); hi.Z != 1 {
		t.Errorf("engine face at z=%v, want 1", hi.Z)
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := NewUVSphere(24, 12)
	want := make([]math3d.Vec3, m.VertexCount())
	for i := range want {
		want[i] = m.Vertices[i].Normal
	}
	m.CalculateSmoothNormals()
	for i := range m.Vertices {
		// Seam and pole vertices only see part of their neighbourhood.
		if m.Vertices[i].UV.X == 0 || m.Vertices[i].UV.X == 1 || m.Vertices[i].UV.Y == 0 || m.Vertices[i].UV.Y == 1 {
			continue
		}
		if m.Vertices[i].Normal.Dot(want[i]) < 0.99 {
			t.Fatalf("vertex %d normal %v, want near %v", i, m.Vertices[i].Normal, want[i])
		}
	}
}

func TestMeshTransformKeepsNormalsUnit(t *testing.T) {
	m := NewUVSphere(8, 4)
	m.Transform(math3d.Scale(math3d.V3(1, 3, 1)))
	for i, v := range m.Vertices {
		if v.Normal.Len() != 0 && math.Abs(v.Normal.Len()-1) > 1e-9 {
			t.Fatalf("vertex %d normal length %v", i, v.Normal.Len())
		}
	}
	if _, hi := m.GetBounds(); math.Abs(hi.Y-3) > 1e-9 {
		t.Errorf("bounds max Y = %v, want 3", hi.Y)
	}
}

func TestAddVertexGrowsBounds(t *testing.T) {
	m := NewMesh("tri")
	m.AddVertex(math3d.V3(2, -1, -5), math3d.V3(0, 0, 1), math3d.V2(0, 0))
	if lo, hi := m.GetBounds(); lo != hi || lo != math3d.V3(2, -1, -5) {
		t.Fatalf("bounds after one vertex = %v, %v", lo, hi)
	}
	m.AddVertex(math3d.V3(-1, 3, -6), math3d.V3(0, 0, 1), math3d.V2(1, 0))
	m.AddVertex(math3d.V3(0, 0, -4), math3d.V3(0, 0, 1), math3d.V2(0, 1))
	m.AddFace(0, 1, 2)

	lo, hi := m.GetBounds()
	if lo != math3d.V3(-1, -1, -6) || hi != math3d.V3(2, 3, -4) {
		t.Errorf("bounds = %v, %v, want (-1,-1,-6), (2,3,-4)", lo, hi)
	}
	m.CalculateBounds()
	if lo2, hi2 := m.GetBounds(); lo2 != lo || hi2 != hi {
		t.Errorf("CalculateBounds = %v, %v, want %v, %v", lo2, hi2, lo, hi)
	}
}
