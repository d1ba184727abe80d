// Package compositor owns the frame loop contract: the blocking
// wait-for-poses call, per-eye texture submission, and the translation
// of both into the runtime's wait/begin/end frame protocol.
//
// At most one frame is in flight. A frame that was waited for but never
// fully submitted is finished with the previous frame's layers exactly
// once when the next wait arrives, so a stalled application degrades to
// reprojection instead of wedging the runtime.
package compositor

import (
	"sync"
	"time"

	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/input"
	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// frameState tracks where the single in-flight frame is.
type frameState int

const (
	frameIdle   frameState = iota
	frameWaited            // WaitGetPoses returned, app owns the frame
)

// FrameTiming is the subset of frame statistics the legacy timing query
// reports.
type FrameTiming struct {
	FrameIndex          uint64
	NumFramePresents    uint32
	NumMisPresented     uint32
	NumDroppedFrames    uint32
	PredictedDisplayTime xrt.Time
}

// Bridge is the compositor translation engine for one session.
type Bridge struct {
	mu sync.Mutex

	mgr      *session.Manager
	resolver *space.Resolver
	input    *input.Translator
	cfg      *config.Config

	state   frameState
	waiting bool // a WaitGetPoses is blocked in the runtime

	timing     xrt.FrameTiming
	frameIndex uint64
	dropped    uint32
	misses     uint32

	eyes      [2]*eyeTarget
	submitted [2]bool
	layerViews [2]xrt.ProjectionView

	// lastProjection is resubmitted when the application skips a frame.
	lastProjection *xrt.ProjectionLayer

	overlays []*overlayTarget

	blit *blitter
}

// NewBridge wires the compositor to the session, pose resolver and
// input translator it drives each frame.
func NewBridge(mgr *session.Manager, resolver *space.Resolver, tr *input.Translator, cfg *config.Config) *Bridge {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Bridge{
		mgr:      mgr,
		resolver: resolver,
		input:    tr,
		cfg:      cfg,
		eyes:     [2]*eyeTarget{{}, {}},
	}
}

// frameTimeout bounds every blocking runtime call.
func (b *Bridge) frameTimeout() time.Duration {
	interval := b.mgr.Properties().FrameInterval()
	return time.Duration(float64(interval) * b.cfg.FrameTimeoutMultiplier)
}

func (b *Bridge) ensureBlitterLocked() *blitter {
	if b.blit == nil {
		b.blit = newBlitter(b.mgr.Binding(), b.frameTimeout())
	}
	return b.blit
}

// WaitGetPoses blocks until the runtime is ready for the next frame,
// then fills the device pose arrays from the fresh snapshot. This is
// the engine's only long-blocking call and it is bounded.
func (b *Bridge) WaitGetPoses(renderPoses, gamePoses []vr.TrackedDevicePose) vr.CompositorError {
	b.mu.Lock()
	if b.waiting {
		b.mu.Unlock()
		return vr.CompositorErrorRequestFailed
	}
	if ok, _ := b.mgr.Running(); !ok {
		b.mu.Unlock()
		return vr.CompositorErrorDoNotHaveFocus
	}
	sess := b.mgr.Session()
	if sess == nil {
		b.mu.Unlock()
		return vr.CompositorErrorRequestFailed
	}

	// A frame the application waited for but never finished submitting
	// is closed out now, advancing the sequence exactly once.
	if b.state == frameWaited {
		b.finishSkippedLocked(sess)
	}

	b.waiting = true
	timeout := b.frameTimeout()
	b.mu.Unlock()

	type waitResult struct {
		timing xrt.FrameTiming
		err    error
	}
	ch := make(chan waitResult, 1)
	go func() {
		tm, err := sess.WaitFrame()
		ch <- waitResult{tm, err}
	}()

	var res waitResult
	select {
	case res = <-ch:
	case <-time.After(timeout):
		res.err = xrt.ErrSessionLost
		logging.Logger().Error("frame wait exceeded bound; treating session as lost",
			"timeout", timeout)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.waiting = false

	if res.err != nil {
		b.mgr.MarkLost()
		return vr.CompositorErrorRequestFailed
	}
	if err := sess.BeginFrame(); err != nil {
		if err == xrt.ErrSessionLost {
			b.mgr.MarkLost()
		}
		return vr.CompositorErrorRequestFailed
	}

	b.timing = res.timing
	b.state = frameWaited
	b.submitted = [2]bool{}

	// Single per-frame write point: runtime events, the device table,
	// the pose snapshot and the input tick all advance here.
	b.mgr.Advance()
	for _, ev := range b.resolver.SyncDevices() {
		b.mgr.QueueEvent(ev)
	}
	b.resolver.UpdateSnapshot(b.timing.PredictedDisplayTime)
	b.input.FrameTick(b.timing.PredictedDisplayTime)

	if views, err := b.resolver.Views(b.timing.PredictedDisplayTime); err == nil {
		b.layerViews[0].Pose = views[0].Pose
		b.layerViews[0].Fov = views[0].Fov
		b.layerViews[1].Pose = views[1].Pose
		b.layerViews[1].Fov = views[1].Fov
	}

	b.resolver.Poses(renderPoses)
	b.resolver.Poses(gamePoses)
	return vr.CompositorErrorNone
}

// GetLastPoses re-reads the current snapshot without blocking.
func (b *Bridge) GetLastPoses(renderPoses, gamePoses []vr.TrackedDevicePose) vr.CompositorError {
	b.resolver.Poses(renderPoses)
	b.resolver.Poses(gamePoses)
	return vr.CompositorErrorNone
}

// Submit hands one eye's rendered texture to the runtime. When both
// eyes have arrived the frame is ended and presented.
func (b *Bridge) Submit(eye vr.Eye, tex *vr.Texture, bounds *vr.TextureBounds, flags vr.SubmitFlags) vr.CompositorError {
	_ = flags // depth submission is accepted and ignored

	if eye != vr.EyeLeft && eye != vr.EyeRight {
		return vr.CompositorErrorIndexOutOfRange
	}
	if tex == nil || tex.Kind == vr.TextureKindInvalid {
		return vr.CompositorErrorInvalidTexture
	}
	var bnds vr.TextureBounds
	if bounds != nil {
		bnds = *bounds
		if bnds.UMin == bnds.UMax || bnds.VMin == bnds.VMax {
			if !bnds.IsZero() {
				return vr.CompositorErrorInvalidBounds
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if ok, _ := b.mgr.Running(); !ok {
		return vr.CompositorErrorDoNotHaveFocus
	}
	sess := b.mgr.Session()
	if sess == nil || b.state != frameWaited {
		return vr.CompositorErrorRequestFailed
	}
	if b.submitted[eye] {
		return vr.CompositorErrorAlreadySubmitted
	}

	w, h := textureExtent(tex)
	if w == 0 || h == 0 {
		return vr.CompositorErrorInvalidTexture
	}
	sc, err := b.eyes[eye].ensure(sess, w, h, tex.Format)
	if err != nil {
		logging.Logger().Warn("eye swapchain unavailable", "eye", int(eye), "err", err)
		return vr.CompositorErrorTextureUsesUnsupportedFormat
	}

	idx, err := b.ensureBlitterLocked().submit(sc, tex, bnds)
	if err != nil {
		logging.Logger().Warn("eye submit failed", "eye", int(eye), "err", err)
		return vr.CompositorErrorInvalidTexture
	}

	b.layerViews[eye].Swapchain = sc
	b.layerViews[eye].ImageIndex = idx
	b.submitted[eye] = true

	if b.submitted[vr.EyeLeft] && b.submitted[vr.EyeRight] {
		return b.endFrameLocked(sess)
	}
	return vr.CompositorErrorNone
}

// endFrameLocked presents the completed frame.
func (b *Bridge) endFrameLocked(sess xrt.Session) vr.CompositorError {
	proj := &xrt.ProjectionLayer{
		Space: b.resolver.RuntimeSpace(b.resolver.Origin()),
		Views: b.layerViews,
	}
	layers := []xrt.CompositionLayer{*proj}
	layers = append(layers, b.overlayLayersLocked(sess)...)

	if err := sess.EndFrame(b.timing.PredictedDisplayTime, layers); err != nil {
		if err == xrt.ErrSessionLost {
			b.mgr.MarkLost()
		}
		b.state = frameIdle
		b.dropped++
		return vr.CompositorErrorRequestFailed
	}
	b.lastProjection = proj
	b.state = frameIdle
	b.frameIndex++
	return vr.CompositorErrorNone
}

// finishSkippedLocked ends a frame the application never submitted by
// replaying the previous frame's layers, or nothing for a first frame.
func (b *Bridge) finishSkippedLocked(sess xrt.Session) {
	var layers []xrt.CompositionLayer
	if b.lastProjection != nil {
		layers = append(layers, *b.lastProjection)
	}
	if err := sess.EndFrame(b.timing.PredictedDisplayTime, layers); err != nil {
		if err == xrt.ErrSessionLost {
			b.mgr.MarkLost()
		}
	}
	b.state = frameIdle
	b.frameIndex++
	b.misses++
	logging.Logger().Debug("frame skipped without submission; resubmitted last layers",
		"frame", b.frameIndex)
}

// PostPresentHandoff is accepted for compatibility; presentation already
// happened at the final Submit.
func (b *Bridge) PostPresentHandoff() vr.CompositorError {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ok, _ := b.mgr.Running(); !ok {
		return vr.CompositorErrorDoNotHaveFocus
	}
	return vr.CompositorErrorNone
}

// ClearLastSubmittedFrame drops the layers replayed on skipped frames.
func (b *Bridge) ClearLastSubmittedFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastProjection = nil
}

// GetFrameTiming reports the current frame statistics.
func (b *Bridge) GetFrameTiming() FrameTiming {
	b.mu.Lock()
	defer b.mu.Unlock()
	return FrameTiming{
		FrameIndex:           b.frameIndex,
		NumFramePresents:     uint32(b.frameIndex),
		NumMisPresented:      b.misses,
		NumDroppedFrames:     b.dropped,
		PredictedDisplayTime: b.timing.PredictedDisplayTime,
	}
}

// FrameIndex returns the presentation sequence number.
func (b *Bridge) FrameIndex() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameIndex
}

// CanRenderScene reports whether submissions would currently be
// accepted.
func (b *Bridge) CanRenderScene() bool {
	ok, _ := b.mgr.Running()
	return ok
}

// Reset drops all per-session compositor state after a session loss.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.eyes {
		e.destroy()
	}
	for _, o := range b.overlays {
		o.destroy()
	}
	b.state = frameIdle
	b.waiting = false
	b.lastProjection = nil
	b.blit = nil
	b.frameIndex = 0
	b.dropped = 0
	b.misses = 0
}

func textureExtent(tex *vr.Texture) (uint32, uint32) {
	switch tex.Kind {
	case vr.TextureKindHAL:
		return tex.Width, tex.Height
	case vr.TextureKindImage:
		if tex.Image == nil {
			return 0, 0
		}
		return uint32(tex.Image.Rect.Dx()), uint32(tex.Image.Rect.Dy())
	default:
		return 0, 0
	}
}
