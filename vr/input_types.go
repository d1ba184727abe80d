package vr

// ActionHandle identifies an action from the application's manifest.
// Handles are allocated on first lookup and stay valid for the process
// lifetime, whether or not the named action exists.
type ActionHandle uint64

// ActionSetHandle identifies an action set.
type ActionSetHandle uint64

// InputValueHandle identifies an input source ("/user/hand/left").
type InputValueHandle uint64

// InvalidActionHandle et al. are the zero handles.
const (
	InvalidActionHandle     ActionHandle     = 0
	InvalidActionSetHandle  ActionSetHandle  = 0
	InvalidInputValueHandle InputValueHandle = 0
)

// ActiveActionSet selects one action set for UpdateActionState.
type ActiveActionSet struct {
	ActionSet              ActionSetHandle
	RestrictedToDevice     InputValueHandle
	SecondaryActionSet     ActionSetHandle
	Priority               int32
}

// InputDigitalActionData is a boolean action sample.
type InputDigitalActionData struct {
	Active       bool
	ActiveOrigin InputValueHandle
	State        bool
	Changed      bool
	// UpdateTime is seconds relative to now (negative: in the past).
	UpdateTime float32
}

// InputAnalogActionData is a scalar or 2-axis action sample.
type InputAnalogActionData struct {
	Active       bool
	ActiveOrigin InputValueHandle
	X, Y, Z      float32
	DeltaX, DeltaY, DeltaZ float32
	UpdateTime   float32
}

// InputPoseActionData is a pose action sample.
type InputPoseActionData struct {
	Active       bool
	ActiveOrigin InputValueHandle
	Pose         TrackedDevicePose
}

// InputSkeletalActionData reports skeletal stream availability.
type InputSkeletalActionData struct {
	Active       bool
	ActiveOrigin InputValueHandle
}

// BoneIndex addresses one bone of the skeletal hand model.
type BoneIndex int32

// SkeletalBoneCount is the fixed bone count of the legacy hand skeleton.
const SkeletalBoneCount = 31

// BoneTransform is one bone pose relative to its parent.
type BoneTransform struct {
	Position    [4]float32 // w always 1
	Orientation HmdQuaternion
}

// SkeletalTransformSpace selects the space bone transforms are reported in.
type SkeletalTransformSpace int32

const (
	SkeletalTransformSpaceModel SkeletalTransformSpace = iota
	SkeletalTransformSpaceParent
)

// SkeletalMotionRange selects controller-clamped or unclamped bones.
type SkeletalMotionRange int32

const (
	SkeletalMotionRangeWithController SkeletalMotionRange = iota
	SkeletalMotionRangeWithoutController
)

// SkeletalTrackingLevel reports the fidelity of skeletal input.
type SkeletalTrackingLevel int32

const (
	SkeletalTrackingEstimated SkeletalTrackingLevel = iota
	SkeletalTrackingPartial
	SkeletalTrackingFull
)

// SkeletalSummaryData is the compressed per-finger summary.
type SkeletalSummaryData struct {
	FingerCurl   [5]float32
	FingerSplay  [4]float32
}
