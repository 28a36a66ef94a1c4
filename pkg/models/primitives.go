package models

import (
	"math"

	"github.com/taigrr/orrery/pkg/math3d"
)

// NewUVSphere builds a unit sphere from latitude rings and longitude
// segments. Normals equal positions, UV.X runs with longitude and UV.Y from
// the north pole down. Faces wind counter-clockwise seen from outside.
func NewUVSphere(segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	m := NewMesh("sphere")

	for i := 0; i <= rings; i++ {
		v := float64(i) / float64(rings)
		st, ct := math.Sincos(v * math.Pi)
		for j := 0; j <= segments; j++ {
			u := float64(j) / float64(segments)
			sp, cp := math.Sincos(u * 2 * math.Pi)
			p := math3d.V3(st*cp, ct, st*sp)
			m.AddVertex(p, p, math3d.V2(u, v))
		}
	}

	stride := segments + 1
	for i := range rings {
		for j := range segments {
			a := i*stride + j
			b := a + stride
			c := b + 1
			d := a + 1
			// The first ring's top edge and the last ring's bottom edge
			// collapse onto the poles.
			if i != rings-1 {
				m.AddFace(a, c, b)
			}
			if i != 0 {
				m.AddFace(a, d, c)
			}
		}
	}
	m.CalculateBounds()
	return m
}

// NewRing builds a flat annulus in the XZ plane between inner and outer
// radius, facing +Y. UV.X is the radial coordinate, 0 at the inner edge
// and 1 at the outer edge; UV.Y runs around the ring.
func NewRing(inner, outer float64, segments int) *Mesh {
	segments = max(segments, 3)
	if inner > outer {
		inner, outer = outer, inner
	}
	m := NewMesh("ring")
	up := math3d.Up()

	for j := 0; j <= segments; j++ {
		u := float64(j) / float64(segments)
		s, c := math.Sincos(u * 2 * math.Pi)
		m.AddVertex(math3d.V3(inner*c, 0, inner*s), up, math3d.V2(0, u))
		m.AddVertex(math3d.V3(outer*c, 0, outer*s), up, math3d.V2(1, u))
	}
	for j := range segments {
		i0, o0 := 2*j, 2*j+1
		i1, o1 := 2*j+2, 2*j+3
		m.AddFace(i0, i1, o1)
		m.AddFace(i0, o1, o0)
	}
	m.CalculateBounds()
	return m
}

// NewShip builds a small flat-shaded dart. The nose points down -Z and the
// engine face sits at z = 1.
func NewShip() *Mesh {
	nose := math3d.V3(0, 0, -1.5)
	left := math3d.V3(-1, 0, 1)
	right := math3d.V3(1, 0, 1)
	top := math3d.V3(0, 0.35, 1)
	bottom := math3d.V3(0, -0.2, 1)

	m := NewMesh("ship")
	m.Materials = []Material{{Name: "hull", BaseColor: [4]float64{0.72, 0.74, 0.78, 1}}}
	center := math3d.V3(0, 0.03, 0.4)
	for _, tri := range [][3]math3d.Vec3{
		{nose, top, left},
		{nose, right, top},
		{nose, left, bottom},
		{nose, bottom, right},
		{left, top, right},
		{left, right, bottom},
	} {
		addFlat(m, tri, center)
	}
	m.CalculateBounds()
	return m
}

// addFlat appends a triangle with its own vertices, wound so its normal
// points away from center.
func addFlat(m *Mesh, tri [3]math3d.Vec3, center math3d.Vec3) {
	a, b, c := tri[0], tri[1], tri[2]
	n := b.Sub(a).Cross(c.Sub(a))
	mid := a.Add(b).Add(c).Scale(1.0 / 3)
	if n.Dot(mid.Sub(center)) < 0 {
		b, c = c, b
		n = n.Negate()
	}
	n = n.Normalize()
	planar := func(p math3d.Vec3) math3d.Vec2 {
		return math3d.V2(p.X*0.5+0.5, p.Z*0.4+0.6)
	}
	ia := m.AddVertex(a, n, planar(a))
	ib := m.AddVertex(b, n, planar(b))
	ic := m.AddVertex(c, n, planar(c))
	m.Faces = append(m.Faces, Face{V: [3]int{ia, ib, ic}, Material: 0})
}
