package compositor

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/input"
	"github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

func newTestBridge(t *testing.T) (*Bridge, *session.Manager, *fakext.Session) {
	t.Helper()
	mgr := session.NewManager(fakext.New())
	if err := mgr.Init(xrt.HeadlessBinding{}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(mgr.Shutdown)
	mgr.PumpEvents() // reach focus

	r := space.NewResolver()
	if err := r.Bind(mgr.Session()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	tr := input.New(mgr, r, config.Default())
	b := NewBridge(mgr, r, tr, config.Default())
	return b, mgr, mgr.Session().(*fakext.Session)
}

func eyeTexture(w, h int) *vr.Texture {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, A: 255})
		}
	}
	return &vr.Texture{Kind: vr.TextureKindImage, Image: img}
}

func submitFrame(t *testing.T, b *Bridge) {
	t.Helper()
	tex := eyeTexture(32, 32)
	if errc := b.Submit(vr.EyeLeft, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("submit left: %v", errc)
	}
	if errc := b.Submit(vr.EyeRight, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("submit right: %v", errc)
	}
}

func TestFrameLoop(t *testing.T) {
	b, _, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, vr.MaxTrackedDeviceCount)

	for i := 0; i < 3; i++ {
		if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
			t.Fatalf("frame %d: wait: %v", i, errc)
		}
		if !poses[0].PoseIsValid {
			t.Fatalf("frame %d: head pose invalid", i)
		}
		submitFrame(t, b)
	}

	if got := b.FrameIndex(); got != 3 {
		t.Errorf("frame index = %d, want 3", got)
	}
	if got := fs.FrameCount(); got != 3 {
		t.Errorf("runtime ended %d frames, want 3", got)
	}

	// Each frame carries one projection layer with both eye views.
	last := fs.EndedFrames[len(fs.EndedFrames)-1]
	proj, ok := last.Layers[0].(xrt.ProjectionLayer)
	if !ok {
		t.Fatalf("layer type = %T, want ProjectionLayer", last.Layers[0])
	}
	if proj.Views[0].Swapchain == nil || proj.Views[1].Swapchain == nil {
		t.Error("projection views missing swapchains")
	}
	if proj.Views[0].Pose.Position.X >= proj.Views[1].Pose.Position.X {
		t.Error("eye views are not stereo-separated")
	}
}

func TestSubmitValidation(t *testing.T) {
	b, _, _ := newTestBridge(t)
	tex := eyeTexture(32, 32)

	// No frame waited for yet.
	if errc := b.Submit(vr.EyeLeft, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorRequestFailed {
		t.Errorf("submit before wait = %v, want RequestFailed", errc)
	}

	poses := make([]vr.TrackedDevicePose, 1)
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}

	if errc := b.Submit(vr.Eye(5), tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorIndexOutOfRange {
		t.Errorf("bad eye = %v, want IndexOutOfRange", errc)
	}
	if errc := b.Submit(vr.EyeLeft, nil, nil, vr.SubmitDefault); errc != vr.CompositorErrorInvalidTexture {
		t.Errorf("nil texture = %v, want InvalidTexture", errc)
	}
	bad := &vr.TextureBounds{UMin: 0.5, UMax: 0.5, VMin: 0, VMax: 1}
	if errc := b.Submit(vr.EyeLeft, tex, bad, vr.SubmitDefault); errc != vr.CompositorErrorInvalidBounds {
		t.Errorf("degenerate bounds = %v, want InvalidBounds", errc)
	}

	if errc := b.Submit(vr.EyeLeft, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("submit left: %v", errc)
	}
	if errc := b.Submit(vr.EyeLeft, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorAlreadySubmitted {
		t.Errorf("double submit = %v, want AlreadySubmitted", errc)
	}
}

func TestCroppedBoundsAccepted(t *testing.T) {
	b, _, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}

	tex := eyeTexture(64, 64)
	half := &vr.TextureBounds{UMin: 0, UMax: 0.5, VMin: 0, VMax: 1}
	if errc := b.Submit(vr.EyeLeft, tex, half, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("cropped submit: %v", errc)
	}
	// Flipped V, as GL applications submit.
	flipped := &vr.TextureBounds{UMin: 0, UMax: 1, VMin: 1, VMax: 0}
	if errc := b.Submit(vr.EyeRight, tex, flipped, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		t.Fatalf("flipped submit: %v", errc)
	}
	if fs.FrameCount() != 1 {
		t.Errorf("frame count = %d, want 1", fs.FrameCount())
	}
}

func TestSkippedFrameResubmitsOnce(t *testing.T) {
	b, _, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)

	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait 1: %v", errc)
	}
	submitFrame(t, b)

	// The application waits but never submits; the next wait closes the
	// frame out with the previous layers.
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait 2: %v", errc)
	}
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait 3: %v", errc)
	}

	if got := b.FrameIndex(); got != 2 {
		t.Errorf("frame index = %d, want 2", got)
	}
	timing := b.GetFrameTiming()
	if timing.NumMisPresented != 1 {
		t.Errorf("mispresented = %d, want 1", timing.NumMisPresented)
	}
	if got := fs.FrameCount(); got != 2 {
		t.Errorf("runtime ended %d frames, want 2", got)
	}
	// The replayed frame reuses the submitted projection layer.
	replay := fs.EndedFrames[1]
	if len(replay.Layers) != 1 {
		t.Fatalf("replayed layers = %d, want 1", len(replay.Layers))
	}

	// After ClearLastSubmittedFrame a skip presents empty.
	b.ClearLastSubmittedFrame()
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait 4: %v", errc)
	}
	if len(fs.EndedFrames[2].Layers) != 0 {
		t.Errorf("cleared replay still has %d layers", len(fs.EndedFrames[2].Layers))
	}
}

func TestLossDuringWait(t *testing.T) {
	b, mgr, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)

	fs.GateNextWait()
	done := make(chan vr.CompositorError, 1)
	go func() { done <- b.WaitGetPoses(poses, nil) }()

	time.Sleep(5 * time.Millisecond)
	fs.Lose()

	select {
	case errc := <-done:
		if errc != vr.CompositorErrorRequestFailed {
			t.Errorf("wait after loss = %v, want RequestFailed", errc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait never returned after loss")
	}
	if got := mgr.State(); got != session.SessionLossPending {
		t.Errorf("state = %s, want SessionLossPending", got)
	}
	if errc := b.Submit(vr.EyeLeft, eyeTexture(8, 8), nil, vr.SubmitDefault); errc != vr.CompositorErrorDoNotHaveFocus {
		t.Errorf("submit after loss = %v, want DoNotHaveFocus", errc)
	}
}

func TestWaitTimeoutMarksLost(t *testing.T) {
	b, mgr, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)

	// A gated wait that nobody releases trips the bounded timeout.
	fs.GateNextWait()
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorRequestFailed {
		t.Errorf("gated wait = %v, want RequestFailed", errc)
	}
	if got := mgr.State(); got != session.SessionLossPending {
		t.Errorf("state = %s, want SessionLossPending", got)
	}
	fs.ReleaseWait() // unblock the abandoned runtime call
}

func TestGetLastPosesReadsSnapshot(t *testing.T) {
	b, _, _ := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 3)

	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}
	again := make([]vr.TrackedDevicePose, 3)
	if errc := b.GetLastPoses(again, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("last poses: %v", errc)
	}
	if again[0] != poses[0] {
		t.Error("GetLastPoses disagrees with WaitGetPoses in the same frame")
	}
}

func TestDeviceEventsSurfaceThroughWait(t *testing.T) {
	b, mgr, fs := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)

	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}
	drainEvents(mgr)

	fs.ConnectTracker("TRACKER-9")
	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}
	found := false
	for _, ev := range mgr.PumpEvents() {
		if ev.Type == vr.EventTrackedDeviceActivated && ev.TrackedDeviceIndex == 3 {
			found = true
		}
	}
	if !found {
		t.Error("tracker activation never reached the legacy event queue")
	}
}

func drainEvents(mgr *session.Manager) {
	for len(mgr.PumpEvents()) > 0 {
	}
}

func TestReset(t *testing.T) {
	b, _, _ := newTestBridge(t)
	poses := make([]vr.TrackedDevicePose, 1)

	if errc := b.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
		t.Fatalf("wait: %v", errc)
	}
	submitFrame(t, b)

	b.Reset()
	if got := b.FrameIndex(); got != 0 {
		t.Errorf("frame index after reset = %d, want 0", got)
	}
	timing := b.GetFrameTiming()
	if timing.NumMisPresented != 0 || timing.NumDroppedFrames != 0 {
		t.Errorf("timing after reset = %+v, want zeroed", timing)
	}
}
