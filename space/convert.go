package space

import (
	"math"

	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// The two systems share handedness and unit conventions, so pose
// conversion is purely representational: quaternion+position on the
// runtime side, 3x4 row-major affine matrix on the legacy side.

// Matrix34FromPose converts a runtime pose to the legacy matrix form.
func Matrix34FromPose(p xrt.Posef) vr.HmdMatrix34 {
	q := Normalize(p.Orientation)
	x, y, z, w := float64(q.X), float64(q.Y), float64(q.Z), float64(q.W)

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return vr.HmdMatrix34{
		{
			float32(1 - 2*(yy+zz)),
			float32(2 * (xy - wz)),
			float32(2 * (xz + wy)),
			p.Position.X,
		},
		{
			float32(2 * (xy + wz)),
			float32(1 - 2*(xx+zz)),
			float32(2 * (yz - wx)),
			p.Position.Y,
		},
		{
			float32(2 * (xz - wy)),
			float32(2 * (yz + wx)),
			float32(1 - 2*(xx+yy)),
			p.Position.Z,
		},
	}
}

// PoseFromMatrix34 converts a legacy matrix back to a runtime pose.
// The rotation part must be orthonormal; the conversion is the inverse of
// Matrix34FromPose within floating-point tolerance.
func PoseFromMatrix34(m vr.HmdMatrix34) xrt.Posef {
	// Shepperd's method: pick the largest diagonal combination for
	// numerical stability.
	m00, m01, m02 := float64(m[0][0]), float64(m[0][1]), float64(m[0][2])
	m10, m11, m12 := float64(m[1][0]), float64(m[1][1]), float64(m[1][2])
	m20, m21, m22 := float64(m[2][0]), float64(m[2][1]), float64(m[2][2])

	var x, y, z, w float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		w = s / 4
		x = (m21 - m12) / s
		y = (m02 - m20) / s
		z = (m10 - m01) / s
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		w = (m21 - m12) / s
		x = s / 4
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = s / 4
		z = (m12 + m21) / s
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = s / 4
	}

	return xrt.Posef{
		Orientation: Normalize(xrt.Quaternionf{
			X: float32(x), Y: float32(y), Z: float32(z), W: float32(w),
		}),
		Position: xrt.Vector3f{X: m[0][3], Y: m[1][3], Z: m[2][3]},
	}
}

// Normalize returns q scaled to unit length. A degenerate quaternion
// normalizes to identity.
func Normalize(q xrt.Quaternionf) xrt.Quaternionf {
	n := math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W))
	if n < 1e-9 {
		return xrt.IdentityQuaternion
	}
	inv := float32(1 / n)
	return xrt.Quaternionf{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}

// MulQuat composes two orientations (a then b applied in a's frame:
// result rotates by b first, then a).
func MulQuat(a, b xrt.Quaternionf) xrt.Quaternionf {
	return xrt.Quaternionf{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// InvertQuat returns the inverse of a unit quaternion.
func InvertQuat(q xrt.Quaternionf) xrt.Quaternionf {
	return xrt.Quaternionf{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// RotateVec applies orientation q to vector v.
func RotateVec(q xrt.Quaternionf, v xrt.Vector3f) xrt.Vector3f {
	// v' = v + 2*cross(q.xyz, cross(q.xyz, v) + w*v)
	ux, uy, uz := q.X, q.Y, q.Z

	cx := uy*v.Z - uz*v.Y + q.W*v.X
	cy := uz*v.X - ux*v.Z + q.W*v.Y
	cz := ux*v.Y - uy*v.X + q.W*v.Z

	return xrt.Vector3f{
		X: v.X + 2*(uy*cz-uz*cy),
		Y: v.Y + 2*(uz*cx-ux*cz),
		Z: v.Z + 2*(ux*cy-uy*cx),
	}
}

// AddVec adds two vectors componentwise.
func AddVec(a, b xrt.Vector3f) xrt.Vector3f {
	return xrt.Vector3f{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// MulPose composes two rigid transforms (a applied after b).
func MulPose(a, b xrt.Posef) xrt.Posef {
	rotated := RotateVec(a.Orientation, b.Position)
	return xrt.Posef{
		Orientation: MulQuat(a.Orientation, b.Orientation),
		Position: xrt.Vector3f{
			X: a.Position.X + rotated.X,
			Y: a.Position.Y + rotated.Y,
			Z: a.Position.Z + rotated.Z,
		},
	}
}

// InvertPose returns the inverse rigid transform.
func InvertPose(p xrt.Posef) xrt.Posef {
	inv := InvertQuat(p.Orientation)
	rotated := RotateVec(inv, p.Position)
	return xrt.Posef{
		Orientation: inv,
		Position:    xrt.Vector3f{X: -rotated.X, Y: -rotated.Y, Z: -rotated.Z},
	}
}

// YawOnly strips everything but the rotation about the vertical axis.
// Recentering keeps the horizon level, so only yaw participates in the
// recomputed origin.
func YawOnly(q xrt.Quaternionf) xrt.Quaternionf {
	// Forward vector projected onto the horizontal plane.
	fwd := RotateVec(q, xrt.Vector3f{Z: -1})
	if fwd.X == 0 && fwd.Z == 0 {
		return xrt.IdentityQuaternion
	}
	yaw := math.Atan2(float64(fwd.X), float64(-fwd.Z))
	half := yaw / 2
	return xrt.Quaternionf{
		Y: float32(math.Sin(half)),
		W: float32(math.Cos(half)),
	}
}
