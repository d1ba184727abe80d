package space

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gogpu/xrbridge/xrt"
)

func yawQuat(rad float64) xrt.Quaternionf {
	return xrt.Quaternionf{
		Y: float32(math.Sin(rad / 2)),
		W: float32(math.Cos(rad / 2)),
	}
}

func TestPoseMatrixRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pose xrt.Posef
	}{
		{"identity", xrt.IdentityPose},
		{"translation", xrt.Posef{
			Orientation: xrt.IdentityQuaternion,
			Position:    xrt.Vector3f{X: 1.5, Y: -0.25, Z: 3},
		}},
		{"yaw90", xrt.Posef{
			Orientation: yawQuat(math.Pi / 2),
			Position:    xrt.Vector3f{Y: 1.6},
		}},
		{"arbitrary", xrt.Posef{
			Orientation: Normalize(xrt.Quaternionf{X: 0.3, Y: -0.5, Z: 0.1, W: 0.8}),
			Position:    xrt.Vector3f{X: -0.2, Y: 1.2, Z: -0.3},
		}},
		{"flip180", xrt.Posef{
			Orientation: yawQuat(math.Pi),
			Position:    xrt.Vector3f{Z: -1},
		}},
	}

	approx := cmpopts.EquateApprox(0, 1e-5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m1 := Matrix34FromPose(tt.pose)
			back := PoseFromMatrix34(m1)
			m2 := Matrix34FromPose(back)
			// Quaternion sign is ambiguous; the matrix form is not.
			if diff := cmp.Diff(m1, m2, approx); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

func TestMulPoseInverse(t *testing.T) {
	p := xrt.Posef{
		Orientation: Normalize(xrt.Quaternionf{X: 0.2, Y: 0.4, Z: -0.1, W: 0.9}),
		Position:    xrt.Vector3f{X: 2, Y: -1, Z: 0.5},
	}
	got := MulPose(p, InvertPose(p))

	approx := cmpopts.EquateApprox(0, 1e-6)
	if diff := cmp.Diff(xrt.IdentityPose, got, approx); diff != "" {
		t.Errorf("p * p^-1 != identity:\n%s", diff)
	}
}

func TestMulPoseComposition(t *testing.T) {
	// Rotate 90 degrees about Y then translate: a point at the child
	// origin lands at the parent's translated, rotated position.
	a := xrt.Posef{Orientation: yawQuat(math.Pi / 2), Position: xrt.Vector3f{X: 1}}
	b := xrt.Posef{Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{Z: -1}}

	got := MulPose(a, b)
	// Yaw +90 maps -Z to -X.
	want := xrt.Vector3f{X: 0, Y: 0, Z: 0}
	if math.Abs(float64(got.Position.X-want.X)) > 1e-6 ||
		math.Abs(float64(got.Position.Z-want.Z)) > 1e-6 {
		t.Errorf("composed position = %+v, want %+v", got.Position, want)
	}
}

func TestRotateVec(t *testing.T) {
	q := yawQuat(math.Pi / 2)
	v := RotateVec(q, xrt.Vector3f{Z: -1})
	if math.Abs(float64(v.X+1)) > 1e-6 || math.Abs(float64(v.Z)) > 1e-6 {
		t.Errorf("yaw90 * -Z = %+v, want (-1, 0, 0)", v)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	got := Normalize(xrt.Quaternionf{})
	if got != xrt.IdentityQuaternion {
		t.Errorf("Normalize(zero) = %+v, want identity", got)
	}
}

func TestYawOnly(t *testing.T) {
	yaw := math.Pi / 3
	pitch := math.Pi / 6

	qYaw := yawQuat(yaw)
	qPitch := xrt.Quaternionf{
		X: float32(math.Sin(pitch / 2)),
		W: float32(math.Cos(pitch / 2)),
	}
	q := MulQuat(qYaw, qPitch)

	got := YawOnly(q)
	if got.X != 0 || got.Z != 0 {
		t.Fatalf("YawOnly left non-yaw components: %+v", got)
	}

	// The horizontal forward direction must match the pure yaw.
	wantFwd := RotateVec(qYaw, xrt.Vector3f{Z: -1})
	gotFwd := RotateVec(got, xrt.Vector3f{Z: -1})
	if math.Abs(float64(wantFwd.X-gotFwd.X)) > 1e-5 ||
		math.Abs(float64(wantFwd.Z-gotFwd.Z)) > 1e-5 {
		t.Errorf("forward after YawOnly = %+v, want %+v", gotFwd, wantFwd)
	}
}

func TestYawOnlyStraightUp(t *testing.T) {
	// Looking straight up has no usable yaw; identity is the fallback.
	q := xrt.Quaternionf{
		X: float32(math.Sin(math.Pi / 4)),
		W: float32(math.Cos(math.Pi / 4)),
	}
	// Rotate -Z to +Y: forward projects to the origin.
	fwd := RotateVec(q, xrt.Vector3f{Z: -1})
	if math.Abs(float64(fwd.X)) > 1e-6 && math.Abs(float64(fwd.Z)) > 1e-6 {
		t.Skip("quaternion does not look straight up")
	}
	if got := YawOnly(q); got != xrt.IdentityQuaternion {
		t.Errorf("YawOnly(straight up) = %+v, want identity", got)
	}
}
