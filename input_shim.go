package xrbridge

import (
	"time"

	"github.com/gogpu/xrbridge/vr"
)

// Input implements the IVRInput interface surface: action manifests,
// handle resolution, per-frame action state and skeletal queries.
type Input struct {
	e *engine
}

// SetActionManifestPath loads and resolves the application's action
// manifest. Resolution happens exactly once per session.
func (i *Input) SetActionManifestPath(path string) vr.InputError {
	return i.e.input.LoadManifest(path)
}

// GetActionSetHandle resolves an action set name ("/actions/main").
func (i *Input) GetActionSetHandle(name string) (vr.ActionSetHandle, vr.InputError) {
	return i.e.input.ActionSetHandle(name)
}

// GetActionHandle resolves an action name ("/actions/main/in/fire").
func (i *Input) GetActionHandle(name string) (vr.ActionHandle, vr.InputError) {
	return i.e.input.ActionHandle(name)
}

// GetInputSourceHandle resolves a device path ("/user/hand/left").
func (i *Input) GetInputSourceHandle(path string) (vr.InputValueHandle, vr.InputError) {
	return i.e.input.InputSourceHandle(path)
}

// UpdateActionState syncs the given action sets against the runtime.
// Applications call this once per frame before reading action data.
func (i *Input) UpdateActionState(sets []vr.ActiveActionSet) vr.InputError {
	return i.e.input.UpdateActionState(sets)
}

// GetDigitalActionData reads a boolean action from the frame snapshot.
func (i *Input) GetDigitalActionData(action vr.ActionHandle, restrict vr.InputValueHandle) (vr.InputDigitalActionData, vr.InputError) {
	return i.e.input.DigitalActionData(action, restrict)
}

// GetAnalogActionData reads a scalar or 2-axis action from the frame
// snapshot.
func (i *Input) GetAnalogActionData(action vr.ActionHandle, restrict vr.InputValueHandle) (vr.InputAnalogActionData, vr.InputError) {
	return i.e.input.AnalogActionData(action, restrict)
}

// GetPoseActionDataForNextFrame resolves a pose action in the requested
// origin at the upcoming display time.
func (i *Input) GetPoseActionDataForNextFrame(action vr.ActionHandle, origin vr.TrackingUniverseOrigin, restrict vr.InputValueHandle) (vr.InputPoseActionData, vr.InputError) {
	return i.e.input.PoseActionData(action, origin, restrict)
}

// GetSkeletalActionData reports skeletal stream availability for a
// skeleton action.
func (i *Input) GetSkeletalActionData(action vr.ActionHandle) (vr.InputSkeletalActionData, vr.InputError) {
	return i.e.input.SkeletalActionData(action)
}

// GetBoneCount returns the fixed hand skeleton bone count.
func (i *Input) GetBoneCount(action vr.ActionHandle) (uint32, vr.InputError) {
	return i.e.input.BoneCount(action)
}

// GetSkeletalTrackingLevel reports the synthesis fidelity of skeletal
// data.
func (i *Input) GetSkeletalTrackingLevel(action vr.ActionHandle) (vr.SkeletalTrackingLevel, vr.InputError) {
	return i.e.input.TrackingLevel(action)
}

// GetSkeletalBoneData fills out with per-bone transforms synthesized
// from the controller's analog state.
func (i *Input) GetSkeletalBoneData(action vr.ActionHandle, space vr.SkeletalTransformSpace, motionRange vr.SkeletalMotionRange, out []vr.BoneTransform) vr.InputError {
	return i.e.input.SkeletalBoneData(action, space, motionRange, out)
}

// GetSkeletalSummaryData returns the per-finger curl and splay summary.
func (i *Input) GetSkeletalSummaryData(action vr.ActionHandle) (vr.SkeletalSummaryData, vr.InputError) {
	return i.e.input.SkeletalSummary(action)
}

// TriggerHapticVibrationAction plays a vibration on a haptic output
// action.
func (i *Input) TriggerHapticVibrationAction(action vr.ActionHandle, startOffset, duration time.Duration, frequency, amplitude float32, restrict vr.InputValueHandle) vr.InputError {
	return i.e.input.TriggerHaptic(action, startOffset, duration, frequency, amplitude, restrict)
}

// GetOriginTrackedDeviceInfo maps an active origin back to the device
// index that produced it.
func (i *Input) GetOriginTrackedDeviceInfo(origin vr.InputValueHandle) (vr.TrackedDeviceIndex, vr.InputError) {
	return i.e.input.OriginDeviceIndex(origin)
}
