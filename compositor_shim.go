package xrbridge

import (
	"github.com/gogpu/xrbridge/compositor"
	"github.com/gogpu/xrbridge/vr"
)

// Compositor implements the IVRCompositor interface surface on top of
// the compositor bridge.
type Compositor struct {
	e *engine
}

// WaitGetPoses blocks until the runtime is ready for the next frame and
// fills the render and game pose arrays. This is the application's frame
// pacing call.
func (c *Compositor) WaitGetPoses(renderPoses, gamePoses []vr.TrackedDevicePose) vr.CompositorError {
	return c.e.bridge.WaitGetPoses(renderPoses, gamePoses)
}

// GetLastPoses returns the pose arrays of the last WaitGetPoses without
// blocking.
func (c *Compositor) GetLastPoses(renderPoses, gamePoses []vr.TrackedDevicePose) vr.CompositorError {
	return c.e.bridge.GetLastPoses(renderPoses, gamePoses)
}

// Submit hands one eye's texture to the compositor. After both eyes of a
// frame are submitted the frame is presented.
func (c *Compositor) Submit(eye vr.Eye, texture *vr.Texture, bounds *vr.TextureBounds, flags vr.SubmitFlags) vr.CompositorError {
	return c.e.bridge.Submit(eye, texture, bounds, flags)
}

// PostPresentHandoff is accepted for pacing compatibility; presentation
// already happened when the second eye was submitted.
func (c *Compositor) PostPresentHandoff() vr.CompositorError {
	return c.e.bridge.PostPresentHandoff()
}

// ClearLastSubmittedFrame drops the retained layers used to cover
// skipped frames.
func (c *Compositor) ClearLastSubmittedFrame() {
	c.e.bridge.ClearLastSubmittedFrame()
}

// GetFrameTiming reports frame statistics for the most recent frame.
func (c *Compositor) GetFrameTiming() compositor.FrameTiming {
	return c.e.bridge.GetFrameTiming()
}

// GetFrameTimeRemaining returns the time left before the current frame
// must be submitted, in seconds.
func (c *Compositor) GetFrameTimeRemaining() float32 {
	interval := c.e.mgr.Properties().FrameInterval()
	return float32(interval.Seconds())
}

// SetTrackingSpace selects the origin WaitGetPoses reports poses in.
func (c *Compositor) SetTrackingSpace(origin vr.TrackingUniverseOrigin) {
	c.e.resolver.SetOrigin(origin)
}

// GetTrackingSpace returns the current pose origin.
func (c *Compositor) GetTrackingSpace() vr.TrackingUniverseOrigin {
	return c.e.resolver.Origin()
}

// CanRenderScene reports whether the session is in a state where scene
// rendering makes sense.
func (c *Compositor) CanRenderScene() bool {
	return c.e.bridge.CanRenderScene()
}

// GetCurrentSceneFocusProcess is part of the legacy surface; the engine
// hosts a single process and reports it as focused.
func (c *Compositor) GetCurrentSceneFocusProcess() uint32 {
	if c.e.bridge.CanRenderScene() {
		return 1
	}
	return 0
}

// SuspendRendering is accepted and ignored; the runtime underneath owns
// render scheduling.
func (c *Compositor) SuspendRendering(suspend bool) {
	_ = suspend
}

// CompositorBridge exposes the underlying bridge for overlay frame
// sources and tests.
func (c *Compositor) CompositorBridge() *compositor.Bridge {
	return c.e.bridge
}
