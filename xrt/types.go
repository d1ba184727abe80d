// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrt

import (
	"time"

	"github.com/gogpu/wgpu/hal"
)

// Time is a runtime timestamp in nanoseconds on the runtime's clock.
// Zero is never a valid display time.
type Time int64

// Vector3f is a 3-component vector, right-handed, meters.
type Vector3f struct {
	X, Y, Z float32
}

// Quaternionf is an orientation (x, y, z, w component order).
type Quaternionf struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the no-rotation orientation.
var IdentityQuaternion = Quaternionf{W: 1}

// Posef is a rigid transform: orientation then translation.
type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose is the zero transform.
var IdentityPose = Posef{Orientation: IdentityQuaternion}

// Fov is an asymmetric field of view in radians. Left and Down are
// typically negative.
type Fov struct {
	AngleLeft, AngleRight, AngleUp, AngleDown float32
}

// View is one eye's pose and projection input for a frame.
type View struct {
	Pose Posef
	Fov  Fov
}

// SpaceLocationFlags qualifies a located pose.
type SpaceLocationFlags uint32

const (
	SpaceLocationOrientationValid SpaceLocationFlags = 1 << iota
	SpaceLocationPositionValid
	SpaceLocationOrientationTracked
	SpaceLocationPositionTracked
)

// SpaceLocation is the result of locating one space in another.
type SpaceLocation struct {
	Flags           SpaceLocationFlags
	Pose            Posef
	LinearVelocity  Vector3f
	AngularVelocity Vector3f
}

// Valid reports whether both position and orientation are usable.
func (l SpaceLocation) Valid() bool {
	const need = SpaceLocationOrientationValid | SpaceLocationPositionValid
	return l.Flags&need == need
}

// FullyTracked reports whether the pose is actively tracked rather than
// inferred from history.
func (l SpaceLocation) FullyTracked() bool {
	const need = SpaceLocationOrientationTracked | SpaceLocationPositionTracked
	return l.Flags&need == need
}

// ReferenceSpaceType names a semantic tracking origin.
type ReferenceSpaceType int32

const (
	// ReferenceSpaceView is head-locked space.
	ReferenceSpaceView ReferenceSpaceType = iota
	// ReferenceSpaceLocal is the seated-style origin at session start.
	ReferenceSpaceLocal
	// ReferenceSpaceStage is the floor-level standing origin.
	ReferenceSpaceStage
)

// SessionState is the runtime's session lifecycle state.
type SessionState int32

const (
	SessionStateUnknown SessionState = iota
	SessionStateIdle
	SessionStateReady
	SessionStateSynchronized
	SessionStateVisible
	SessionStateFocused
	SessionStateStopping
	SessionStateLossPending
	SessionStateExiting
)

func (s SessionState) String() string {
	switch s {
	case SessionStateIdle:
		return "Idle"
	case SessionStateReady:
		return "Ready"
	case SessionStateSynchronized:
		return "Synchronized"
	case SessionStateVisible:
		return "Visible"
	case SessionStateFocused:
		return "Focused"
	case SessionStateStopping:
		return "Stopping"
	case SessionStateLossPending:
		return "LossPending"
	case SessionStateExiting:
		return "Exiting"
	default:
		return "Unknown"
	}
}

// DeviceID is the runtime's identifier for a tracked device. IDs are
// stable while a device stays connected but may be recycled by the
// runtime after disconnect; the engine's own index table never is.
type DeviceID uint64

// DeviceKind is the runtime's classification of a tracked device.
type DeviceKind int32

const (
	DeviceKindUnknown DeviceKind = iota
	DeviceKindHead
	DeviceKindLeftHand
	DeviceKindRightHand
	DeviceKindTracker
)

// TrackedDeviceInfo describes one entry of the runtime's device list.
type TrackedDeviceInfo struct {
	ID        DeviceID
	Kind      DeviceKind
	Name      string
	Serial    string
	Connected bool
}

// SystemProperties describes the runtime's display system.
type SystemProperties struct {
	SystemName string

	// Recommended per-eye render target size.
	RecommendedRenderWidth  uint32
	RecommendedRenderHeight uint32

	// DisplayFrequency in Hz; 0 when the runtime does not report one.
	DisplayFrequency float32

	// SupportsTrackers reports whether the runtime enumerates auxiliary
	// tracked devices beyond head and hands.
	SupportsTrackers bool
}

// FrameInterval derives the nominal frame period, defaulting to 90Hz when
// the runtime reports no display frequency.
func (p SystemProperties) FrameInterval() time.Duration {
	f := p.DisplayFrequency
	if f <= 0 {
		f = 90
	}
	return time.Duration(float64(time.Second) / float64(f))
}

// FrameTiming is the result of WaitFrame.
type FrameTiming struct {
	PredictedDisplayTime   Time
	PredictedDisplayPeriod time.Duration
	ShouldRender           bool
}

// GraphicsBinding carries the graphics device the session renders with.
// Exactly one concrete binding matches each supported backend.
type GraphicsBinding interface {
	// Backend returns the binding's backend name, matching the runtime
	// registry name of the backend it requires.
	Backend() string
}

// HALBinding shares the application's wgpu device and queue with the
// runtime, enabling GPU-resident image submission.
type HALBinding struct {
	Device hal.Device
	Queue  hal.Queue
}

// Backend implements GraphicsBinding.
func (HALBinding) Backend() string { return "wgpu" }

// HeadlessBinding runs a session without a GPU device. Image submission
// falls back to CPU staging uploads.
type HeadlessBinding struct{}

// Backend implements GraphicsBinding.
func (HeadlessBinding) Backend() string { return "headless" }
