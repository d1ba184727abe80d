package space_test

import (
	"math"
	"testing"

	"github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

func newTestResolver(t *testing.T) (*space.Resolver, *fakext.Session) {
	t.Helper()
	inst, err := fakext.New().CreateInstance("headless")
	if err != nil {
		t.Fatalf("create instance: %v", err)
	}
	sess, err := inst.CreateSession(xrt.HeadlessBinding{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	r := space.NewResolver()
	if err := r.Bind(sess); err != nil {
		t.Fatalf("bind: %v", err)
	}
	return r, sess.(*fakext.Session)
}

func TestSyncDevicesAssignsWellKnownIndices(t *testing.T) {
	r, _ := newTestResolver(t)

	events := r.SyncDevices()
	if len(events) != 3 {
		t.Fatalf("got %d activation events, want 3", len(events))
	}
	for _, ev := range events {
		if ev.Type != vr.EventTrackedDeviceActivated {
			t.Errorf("event type = %d, want activated", ev.Type)
		}
	}

	head, _ := r.Device(0)
	if head.Class != vr.DeviceClassHMD || !head.Connected {
		t.Errorf("index 0 = %+v, want connected HMD", head)
	}
	left, _ := r.Device(1)
	if left.Role != vr.ControllerRoleLeftHand {
		t.Errorf("index 1 role = %d, want left hand", left.Role)
	}
	right, _ := r.Device(2)
	if right.Role != vr.ControllerRoleRightHand {
		t.Errorf("index 2 role = %d, want right hand", right.Role)
	}
}

func TestIndicesStableAcrossReconnect(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()

	id := fs.ConnectTracker("TRACKER-1")
	events := r.SyncDevices()
	if len(events) != 1 || events[0].TrackedDeviceIndex != 3 {
		t.Fatalf("tracker events = %+v, want activation at index 3", events)
	}

	fs.SetConnected(fs.LeftID(), false)
	events = r.SyncDevices()
	if len(events) != 1 || events[0].Type != vr.EventTrackedDeviceDeactivated {
		t.Fatalf("disconnect events = %+v, want one deactivation", events)
	}
	left, _ := r.Device(1)
	if left.Connected {
		t.Error("left hand still connected after disconnect")
	}

	// Reconnect: the reserved slot is reused, never a new index.
	fs.SetConnected(fs.LeftID(), true)
	r.SyncDevices()
	left, _ = r.Device(1)
	if !left.Connected {
		t.Error("left hand not reconnected at index 1")
	}

	tracker, _ := r.Device(3)
	if tracker.RuntimeID != id {
		t.Errorf("tracker runtime id = %d, want %d", tracker.RuntimeID, id)
	}
}

func TestSnapshotPosesPerOrigin(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()
	now := fs.Now()

	// Standing: stage coordinates, head at 1.6m.
	r.UpdateSnapshot(now)
	pose := r.DevicePose(0)
	if !pose.PoseIsValid {
		t.Fatal("head pose not valid")
	}
	if y := pose.DeviceToAbsoluteTracking[1][3]; math.Abs(float64(y-1.6)) > 1e-5 {
		t.Errorf("standing head height = %f, want 1.6", y)
	}

	// Seated: local origin sits at head height, so the head reads ~0.
	r.SetOrigin(vr.TrackingUniverseSeated)
	r.UpdateSnapshot(now)
	pose = r.DevicePose(0)
	if y := pose.DeviceToAbsoluteTracking[1][3]; math.Abs(float64(y)) > 1e-5 {
		t.Errorf("seated head height = %f, want 0", y)
	}
}

func TestPosesInOriginDiffersFromCurrent(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()
	r.UpdateSnapshot(fs.Now())

	standing := make([]vr.TrackedDevicePose, 3)
	r.PosesInOrigin(vr.TrackingUniverseStanding, standing)
	seated := make([]vr.TrackedDevicePose, 3)
	r.PosesInOrigin(vr.TrackingUniverseSeated, seated)

	dy := standing[0].DeviceToAbsoluteTracking[1][3] - seated[0].DeviceToAbsoluteTracking[1][3]
	if math.Abs(float64(dy-1.6)) > 1e-5 {
		t.Errorf("standing-seated height delta = %f, want 1.6", dy)
	}
}

func TestRecenterZeroesHeadPose(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()

	// Walk the head away from the origin with some yaw.
	yaw := float32(math.Sin(math.Pi / 4))
	fs.SetDevicePose(fs.HeadID(), xrt.Posef{
		Orientation: xrt.Quaternionf{Y: yaw, W: float32(math.Cos(math.Pi / 4))},
		Position:    xrt.Vector3f{X: 1.5, Y: 1.7, Z: -2},
	})
	r.SetOrigin(vr.TrackingUniverseSeated)

	now := fs.Now()
	if err := r.Recenter(now); err != nil {
		t.Fatalf("recenter: %v", err)
	}
	if r.RecenterCount() != 1 {
		t.Errorf("recenter count = %d, want 1", r.RecenterCount())
	}

	r.UpdateSnapshot(now)
	m := r.DevicePose(0).DeviceToAbsoluteTracking
	for _, v := range []float32{m[0][3], m[1][3], m[2][3]} {
		if math.Abs(float64(v)) > 1e-5 {
			t.Errorf("head translation after recenter = (%f %f %f), want origin",
				m[0][3], m[1][3], m[2][3])
			break
		}
	}

	// Raw never applies the recenter offset.
	raw := make([]vr.TrackedDevicePose, 1)
	r.PosesInOrigin(vr.TrackingUniverseRaw, raw)
	if x := raw[0].DeviceToAbsoluteTracking[0][3]; math.Abs(float64(x-1.5)) > 1e-5 {
		t.Errorf("raw head x = %f, want 1.5", x)
	}
}

func TestDeviceIndexForRole(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()

	if idx := r.DeviceIndexForRole(vr.ControllerRoleLeftHand); idx != 1 {
		t.Errorf("left index = %d, want 1", idx)
	}
	if idx := r.DeviceIndexForRole(vr.ControllerRoleRightHand); idx != 2 {
		t.Errorf("right index = %d, want 2", idx)
	}

	fs.SetConnected(fs.RightID(), false)
	r.SyncDevices()
	if idx := r.DeviceIndexForRole(vr.ControllerRoleRightHand); idx != vr.TrackedDeviceIndexInvalid {
		t.Errorf("disconnected right index = %d, want invalid", idx)
	}
}

func TestViewsAreStereo(t *testing.T) {
	r, fs := newTestResolver(t)
	r.SyncDevices()

	views, err := r.Views(fs.Now())
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	dx := views[1].Pose.Position.X - views[0].Pose.Position.X
	if dx <= 0 {
		t.Errorf("eye separation = %f, want > 0", dx)
	}
	if views[0].Fov.AngleRight <= 0 {
		t.Errorf("fov right = %f, want > 0", views[0].Fov.AngleRight)
	}
}
