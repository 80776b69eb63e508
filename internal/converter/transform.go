package converter

import "math"

// mat4 is a 4x4 transform matrix in column-major order, matching the
// layout glTF uses for node matrices: element (row, col) lives at
// index col*4+row.
type mat4 [16]float64

// mat3 is a 3x3 matrix in column-major order, used for normal transforms.
type mat3 [9]float64

var identity = mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// mul returns a*b, applying b first.
func (a mat4) mul(b mat4) mat4 {
	var out mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// fromTRS composes a transform from a translation vector, a unit
// quaternion in glTF order (x, y, z, w) and a scale vector, applying
// scale first, then rotation, then translation.
func fromTRS(t [3]float64, r [4]float64, s [3]float64) mat4 {
	x, y, z, w := r[0], r[1], r[2], r[3]

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return mat4{
		(1 - 2*(yy+zz)) * s[0], 2 * (xy + wz) * s[0], 2 * (xz - wy) * s[0], 0,
		2 * (xy - wz) * s[1], (1 - 2*(xx+zz)) * s[1], 2 * (yz + wx) * s[1], 0,
		2 * (xz + wy) * s[2], 2 * (yz - wx) * s[2], (1 - 2*(xx+yy)) * s[2], 0,
		t[0], t[1], t[2], 1,
	}
}

// transformPoint applies the full affine transform to a position.
func (a mat4) transformPoint(p [3]float32) [3]float32 {
	x, y, z := float64(p[0]), float64(p[1]), float64(p[2])
	return [3]float32{
		float32(a[0]*x + a[4]*y + a[8]*z + a[12]),
		float32(a[1]*x + a[5]*y + a[9]*z + a[13]),
		float32(a[2]*x + a[6]*y + a[10]*z + a[14]),
	}
}

// upper3x3 extracts the rotation/scale block of the transform.
func (a mat4) upper3x3() mat3 {
	return mat3{
		a[0], a[1], a[2],
		a[4], a[5], a[6],
		a[8], a[9], a[10],
	}
}

// normalMatrix returns the inverse-transpose of the transform's upper
// 3x3 block, which maps surface normals correctly under non-uniform
// scale. For a singular block (degenerate scale) it falls back to the
// block itself; the caller renormalizes either way.
func (a mat4) normalMatrix() mat3 {
	m := a.upper3x3()
	inv, ok := m.inverse()
	if !ok {
		return m
	}
	return inv.transpose()
}

func (m mat3) transpose() mat3 {
	return mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

func (m mat3) inverse() (mat3, bool) {
	// Cofactor expansion; column-major element (row, col) is m[col*3+row].
	a, b, c := m[0], m[3], m[6]
	d, e, f := m[1], m[4], m[7]
	g, h, i := m[2], m[5], m[8]

	ca := e*i - f*h
	cb := f*g - d*i
	cc := d*h - e*g

	det := a*ca + b*cb + c*cc
	if math.Abs(det) < 1e-12 {
		return mat3{}, false
	}

	id := 1 / det
	return mat3{
		ca * id, cb * id, cc * id,
		(c*h - b*i) * id, (a*i - c*g) * id, (b*g - a*h) * id,
		(b*f - c*e) * id, (c*d - a*f) * id, (a*e - b*d) * id,
	}, true
}

// transformDir applies the matrix to a direction vector and normalizes
// the result. Zero-length results are passed through untouched.
func (m mat3) transformDir(v [3]float32) [3]float32 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	ox := m[0]*x + m[3]*y + m[6]*z
	oy := m[1]*x + m[4]*y + m[7]*z
	oz := m[2]*x + m[5]*y + m[8]*z

	length := math.Sqrt(ox*ox + oy*oy + oz*oz)
	if length == 0 {
		return v
	}
	return [3]float32{float32(ox / length), float32(oy / length), float32(oz / length)}
}
