package xrbridge

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	_ "github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/vr"
)

func solidTexture(w, h int) *vr.Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	return &vr.Texture{Kind: vr.TextureKindImage, Image: img}
}

func initEngine(t *testing.T) {
	t.Helper()
	if errc := Init(InitOptions{Runtime: "fakext"}); errc != vr.InitErrorNone {
		t.Fatalf("init: %v", errc)
	}
	t.Cleanup(Shutdown)
}

func TestInitShutdownCycle(t *testing.T) {
	initEngine(t)

	if errc := Init(InitOptions{}); errc != vr.InitErrorInitAlreadyRunning {
		t.Errorf("second init = %v, want AlreadyRunning", errc)
	}
	if !IsHmdPresent() {
		t.Error("IsHmdPresent false while initialized")
	}
	if !IsRuntimeInstalled() {
		t.Error("IsRuntimeInstalled false with a registered runtime")
	}

	Shutdown()
	Shutdown() // idempotent

	if errc := Init(InitOptions{Runtime: "fakext"}); errc != vr.InitErrorNone {
		t.Fatalf("re-init: %v", errc)
	}
}

func TestInitUnknownRuntime(t *testing.T) {
	if errc := Init(InitOptions{Runtime: "no-such-runtime"}); errc != vr.InitErrorInitInstallationNotFound {
		t.Fatalf("init with unknown runtime = %v, want InstallationNotFound", errc)
	}
}

func TestGetGenericInterface(t *testing.T) {
	if _, errc := GetGenericInterface(vr.IVRSystemVersion); errc != vr.InitErrorInitNotInitialized {
		t.Fatalf("interface before init = %v, want NotInitialized", errc)
	}

	initEngine(t)

	sys, errc := GetGenericInterface(vr.IVRSystemVersion)
	if errc != vr.InitErrorNone {
		t.Fatalf("system interface: %v", errc)
	}
	if _, ok := sys.(*System); !ok {
		t.Fatalf("system interface type = %T", sys)
	}

	// Applications built against older versions share the newest shim.
	older, errc := GetGenericInterface("IVRSystem_021")
	if errc != vr.InitErrorNone {
		t.Fatalf("older system interface: %v", errc)
	}
	if older != sys {
		t.Error("older version returned a different instance")
	}

	if _, errc := GetGenericInterface("IVRSystem_003"); errc != vr.InitErrorInitInterfaceNotFound {
		t.Errorf("ancient version = %v, want InterfaceNotFound", errc)
	}
	if _, errc := GetGenericInterface("IVRScreenshots_001"); errc != vr.InitErrorInitInterfaceNotFound {
		t.Errorf("uncarried interface = %v, want InterfaceNotFound", errc)
	}

	if !IsInterfaceVersionValid(vr.IVRCompositorVersion) {
		t.Error("compositor version reported invalid")
	}
	if IsInterfaceVersionValid("IVRSystem") {
		t.Error("untagged name reported valid")
	}

	for _, version := range []string{
		vr.IVRCompositorVersion, vr.IVRInputVersion,
		vr.IVRChaperoneVersion, vr.IVRApplicationsVersion,
	} {
		if _, errc := GetGenericInterface(version); errc != vr.InitErrorNone {
			t.Errorf("interface %s: %v", version, errc)
		}
	}
}

func TestFrameLoopEndToEnd(t *testing.T) {
	initEngine(t)

	sysIface, _ := GetGenericInterface(vr.IVRSystemVersion)
	system := sysIface.(*System)
	compIface, _ := GetGenericInterface(vr.IVRCompositorVersion)
	comp := compIface.(*Compositor)

	w, h := system.GetRecommendedRenderTargetSize()
	if w != 1664 || h != 1856 {
		t.Errorf("render target = %dx%d", w, h)
	}

	poses := make([]vr.TrackedDevicePose, vr.MaxTrackedDeviceCount)
	if errc := comp.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}
	if !poses[vr.TrackedDeviceIndexHmd].PoseIsValid {
		t.Fatal("head pose invalid after wait")
	}
	if y := poses[0].DeviceToAbsoluteTracking[1][3]; math.Abs(float64(y-1.6)) > 1e-5 {
		t.Errorf("head height = %f, want 1.6", y)
	}

	if !system.IsInputAvailable() {
		t.Error("input not available after first frame")
	}
	if system.ShouldApplicationPause() {
		t.Error("pause requested while focused")
	}

	// The initial device activations surface through the event queue.
	sawActivation := false
	for ev, ok := system.PollNextEvent(); ok; ev, ok = system.PollNextEvent() {
		if ev.Type == vr.EventTrackedDeviceActivated {
			sawActivation = true
		}
	}
	if !sawActivation {
		t.Error("no device activation events after first frame")
	}

	tex := solidTexture(32, 32)
	if errc := comp.Submit(vr.EyeLeft, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("submit left: %v", errc)
	}
	if errc := comp.Submit(vr.EyeRight, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("submit right: %v", errc)
	}
	if timing := comp.GetFrameTiming(); timing.FrameIndex != 1 {
		t.Errorf("frame index = %d, want 1", timing.FrameIndex)
	}

	// The legacy controller poll is live once a frame has ticked.
	if _, ok := system.GetControllerState(2); !ok {
		t.Error("no controller state for the right hand")
	}
	system.TriggerHapticPulse(2, 0, time.Millisecond)
}

func TestSystemGeometry(t *testing.T) {
	initEngine(t)
	sysIface, _ := GetGenericInterface(vr.IVRSystemVersion)
	system := sysIface.(*System)

	left, right, top, bottom := system.GetProjectionRaw(vr.EyeLeft)
	approx := func(got, want float32) bool {
		return math.Abs(float64(got-want)) < 1e-3
	}
	if !approx(left, -1) || !approx(right, 1) || !approx(top, -1) || !approx(bottom, 1) {
		t.Errorf("projection raw = (%f %f %f %f), want (-1 1 -1 1)", left, right, top, bottom)
	}

	m := system.GetProjectionMatrix(vr.EyeLeft, 0.1, 100)
	if !approx(m[0][0], 1) || !approx(m[1][1], 1) {
		t.Errorf("projection scale = (%f, %f), want (1, 1)", m[0][0], m[1][1])
	}
	if m[3][2] != -1 {
		t.Errorf("m[3][2] = %f, want -1", m[3][2])
	}
	if m[2][2] >= 0 || m[2][3] >= 0 {
		t.Errorf("depth terms = (%f, %f), want negative", m[2][2], m[2][3])
	}

	// Eye transforms sit symmetrically around the head.
	l := system.GetEyeToHeadTransform(vr.EyeLeft)
	r := system.GetEyeToHeadTransform(vr.EyeRight)
	if l[0][3] >= 0 || r[0][3] <= 0 || l[0][3] != -r[0][3] {
		t.Errorf("eye offsets = (%f, %f), want symmetric", l[0][3], r[0][3])
	}

	dc, ok := system.ComputeDistortion(vr.EyeLeft, 0.25, 0.75)
	if !ok || dc.Red != [2]float32{0.25, 0.75} {
		t.Errorf("distortion = %+v, want identity", dc)
	}
}

func TestSystemDevicesAndProperties(t *testing.T) {
	initEngine(t)
	sysIface, _ := GetGenericInterface(vr.IVRSystemVersion)
	system := sysIface.(*System)
	compIface, _ := GetGenericInterface(vr.IVRCompositorVersion)
	comp := compIface.(*Compositor)

	poses := make([]vr.TrackedDevicePose, 3)
	if errc := comp.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}

	if got := system.GetTrackedDeviceClass(0); got != vr.DeviceClassHMD {
		t.Errorf("class of 0 = %d, want HMD", got)
	}
	if !system.IsTrackedDeviceConnected(1) {
		t.Error("left controller not connected")
	}
	if got := system.GetTrackedDeviceIndexForControllerRole(vr.ControllerRoleRightHand); got != 2 {
		t.Errorf("right index = %d, want 2", got)
	}
	if got := system.GetControllerRoleForTrackedDeviceIndex(2); got != vr.ControllerRoleRightHand {
		t.Errorf("role of 2 = %d, want right hand", got)
	}

	// The fake runtime reports an Index controller profile.
	model, perr := system.GetStringTrackedDeviceProperty(1, vr.PropModelNumberString)
	if perr != vr.PropertySuccess || model != "Knuckles Left" {
		t.Errorf("left model = %q (%v)", model, perr)
	}
	maker, perr := system.GetStringTrackedDeviceProperty(2, vr.PropManufacturerNameString)
	if perr != vr.PropertySuccess || maker != "Valve" {
		t.Errorf("manufacturer = %q (%v)", maker, perr)
	}
	hz, perr := system.GetFloatTrackedDeviceProperty(0, vr.PropDisplayFrequencyFloat)
	if perr != vr.PropertySuccess || hz != 90 {
		t.Errorf("display frequency = %f (%v)", hz, perr)
	}
	axis, perr := system.GetInt32TrackedDeviceProperty(1, vr.PropAxis0TypeInt32)
	if perr != vr.PropertySuccess || axis != int32(vr.ControllerAxisJoystick) {
		t.Errorf("axis0 = %d (%v)", axis, perr)
	}
	if _, perr := system.GetStringTrackedDeviceProperty(99, vr.PropModelNumberString); perr != vr.PropertyErrorInvalidDevice {
		t.Errorf("bad index = %v, want InvalidDevice", perr)
	}
	if _, perr := system.GetFloatTrackedDeviceProperty(1, vr.PropDisplayFrequencyFloat); perr != vr.PropertyErrorWrongDeviceClass {
		t.Errorf("controller display frequency = %v, want WrongDeviceClass", perr)
	}
}
