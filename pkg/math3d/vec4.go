package math3d

// Vec4 represents a homogeneous clip-space position.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 creates a Vec4 from Vec3 with specified W.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 returns the Vec3 portion (ignoring W).
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide returns the normalized device coordinates and ok=false
// when W is not strictly positive (the point is at or behind the eye).
func (v Vec4) PerspectiveDivide() (Vec3, bool) {
	if v.W <= 0 {
		return Vec3{}, false
	}
	inv := 1 / v.W
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}, true
}

// Outside reports which clip planes the point lies outside of, as a bit set
// (left, right, bottom, top, near, far).
func (v Vec4) Outside() uint8 {
	var code uint8
	if v.X < -v.W {
		code |= 1 << 0
	}
	if v.X > v.W {
		code |= 1 << 1
	}
	if v.Y < -v.W {
		code |= 1 << 2
	}
	if v.Y > v.W {
		code |= 1 << 3
	}
	if v.Z < -v.W {
		code |= 1 << 4
	}
	if v.Z > v.W {
		code |= 1 << 5
	}
	return code
}
