package vr

import (
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TrackedDeviceIndex identifies a tracked device for the lifetime of a
// session. Index 0 is always the head-mounted display. An index handed to
// a connected device is never changed or reused within a session.
type TrackedDeviceIndex uint32

// Well-known device indices.
const (
	TrackedDeviceIndexHmd     TrackedDeviceIndex = 0
	MaxTrackedDeviceCount     TrackedDeviceIndex = 64
	TrackedDeviceIndexInvalid TrackedDeviceIndex = 0xFFFFFFFF
)

// DeviceClass categorizes a tracked device.
type DeviceClass int32

const (
	DeviceClassInvalid DeviceClass = iota
	DeviceClassHMD
	DeviceClassController
	DeviceClassGenericTracker
	DeviceClassTrackingReference
	DeviceClassDisplayRedirect
)

func (c DeviceClass) String() string {
	switch c {
	case DeviceClassInvalid:
		return "Invalid"
	case DeviceClassHMD:
		return "HMD"
	case DeviceClassController:
		return "Controller"
	case DeviceClassGenericTracker:
		return "GenericTracker"
	case DeviceClassTrackingReference:
		return "TrackingReference"
	case DeviceClassDisplayRedirect:
		return "DisplayRedirect"
	default:
		return "Unknown"
	}
}

// ControllerRole distinguishes the hand a controller is held in.
type ControllerRole int32

const (
	ControllerRoleInvalid ControllerRole = iota
	ControllerRoleLeftHand
	ControllerRoleRightHand
	ControllerRoleOptOut
	ControllerRoleTreadmill
	ControllerRoleStylus
)

// TrackingUniverseOrigin selects the semantic origin poses are reported in.
type TrackingUniverseOrigin int32

const (
	TrackingUniverseSeated TrackingUniverseOrigin = iota
	TrackingUniverseStanding
	TrackingUniverseRaw
)

// TrackingResult reports the tracking confidence for a pose sample.
type TrackingResult int32

const (
	TrackingResultUninitialized        TrackingResult = 1
	TrackingResultCalibratingInProgress TrackingResult = 100
	TrackingResultCalibratingOutOfRange TrackingResult = 101
	TrackingResultRunningOK             TrackingResult = 200
	TrackingResultRunningOutOfRange     TrackingResult = 201
	TrackingResultFallbackRotationOnly  TrackingResult = 300
)

// Eye selects one of the two stereo render targets.
type Eye int32

const (
	EyeLeft Eye = iota
	EyeRight
)

// HmdVector3 is a 3-component vector in legacy layout.
type HmdVector3 [3]float32

// HmdQuaternion is an orientation in legacy layout (w, x, y, z order,
// matching the original headers).
type HmdQuaternion struct {
	W, X, Y, Z float64
}

// HmdMatrix34 is a 3x4 row-major affine transform, the legacy pose
// representation. Rows are the rotation basis plus translation in the
// fourth column.
type HmdMatrix34 [3][4]float32

// HmdMatrix44 is a 4x4 row-major matrix used for projections.
type HmdMatrix44 [4][4]float32

// TrackedDevicePose is the per-device pose record returned to the
// application every frame.
type TrackedDevicePose struct {
	DeviceToAbsoluteTracking HmdMatrix34
	Velocity                 HmdVector3 // meters per second
	AngularVelocity          HmdVector3 // radians per second
	TrackingResult           TrackingResult
	PoseIsValid              bool
	DeviceIsConnected        bool
}

// TextureKind tells the compositor how a submitted texture is backed.
type TextureKind int32

const (
	// TextureKindInvalid marks a zero-value Texture.
	TextureKindInvalid TextureKind = iota

	// TextureKindHAL is a GPU texture created on the shared wgpu device.
	// This is the fast path: the image can be handed to the runtime
	// without leaving the GPU.
	TextureKindHAL

	// TextureKindImage is a CPU-resident RGBA image. The compositor
	// uploads it through a staging path; always a degraded path.
	TextureKindImage
)

// Texture is an application-submitted eye image.
//
// Exactly one of HAL or Image is set, according to Kind. The compositor
// owns the contents only for the duration of the Submit call.
type Texture struct {
	Kind TextureKind

	// HAL is set for TextureKindHAL submissions. HAL textures are
	// opaque, so the submitter also describes them.
	HAL    hal.Texture
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat

	// Image is set for TextureKindImage submissions.
	Image *image.RGBA

	// ColorSpace is advisory; the engine treats gamma and linear
	// identically apart from logging.
	ColorSpace ColorSpace
}

// ColorSpace is the color space hint attached to a submitted texture.
type ColorSpace int32

const (
	ColorSpaceAuto ColorSpace = iota
	ColorSpaceGamma
	ColorSpaceLinear
)

// TextureBounds selects the sub-rectangle of a submitted texture, in UV
// coordinates. A zero value means the full texture.
type TextureBounds struct {
	UMin, VMin float32
	UMax, VMax float32
}

// IsZero reports whether the bounds are unset.
func (b TextureBounds) IsZero() bool {
	return b == TextureBounds{}
}

// SubmitFlags modify a Submit call.
type SubmitFlags uint32

const (
	SubmitDefault SubmitFlags = 0
	// SubmitTextureWithDepth is accepted and ignored; the engine does not
	// forward application depth.
	SubmitTextureWithDepth SubmitFlags = 1 << 0
)

// ControllerAxis is one analog axis pair of a controller state.
type ControllerAxis struct {
	X, Y float32
}

// ControllerState is the legacy polled input state of one controller.
type ControllerState struct {
	// PacketNum increments whenever the state may have changed.
	// Applications compare it to skip unchanged states.
	PacketNum uint32

	ButtonPressed uint64
	ButtonTouched uint64

	Axis [5]ControllerAxis
}

// DistortionCoordinates is the legacy per-channel UV output of
// ComputeDistortion. The engine reports identity distortion; the runtime
// applies its own correction.
type DistortionCoordinates struct {
	Red   [2]float32
	Green [2]float32
	Blue  [2]float32
}
