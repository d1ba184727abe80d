package input

import (
	"math"

	"github.com/gogpu/xrbridge/vr"
)

// Skeletal data is synthesized. Runtimes consumed by the engine expose
// no hand skeleton, so skeletal actions report an estimated-fidelity
// reference hand whose fingers curl with the analog trigger and squeeze
// values. Applications get plausible, consistent bones rather than an
// error.

// Bone indices of the legacy hand skeleton.
const (
	boneRoot  = 0
	boneWrist = 1
)

// fingerStart indexes the first bone of each finger chain; thumb has 4
// bones, the others 5, then five auxiliary tip bones follow.
var fingerStart = [5]int{2, 6, 11, 16, 21}

var fingerLen = [5]int{4, 5, 5, 5, 5}

// boneParent maps each bone to its parent for model-space accumulation.
var boneParent = [vr.SkeletalBoneCount]int{
	boneRoot:  -1,
	boneWrist: boneRoot,
	2:         boneWrist, 3: 2, 4: 3, 5: 4,
	6: boneWrist, 7: 6, 8: 7, 9: 8, 10: 9,
	11: boneWrist, 12: 11, 13: 12, 14: 13, 15: 14,
	16: boneWrist, 17: 16, 18: 17, 19: 18, 20: 19,
	21: boneWrist, 22: 21, 23: 22, 24: 23, 25: 24,
	26: boneWrist, 27: boneWrist, 28: boneWrist, 29: boneWrist, 30: boneWrist,
}

// restPositions are the parent-relative bone offsets of the open
// reference hand, meters.
var restPositions = [vr.SkeletalBoneCount][3]float32{
	boneRoot:  {0, 0, 0},
	boneWrist: {0, 0, 0},
	// thumb
	2: {-0.017, 0.029, 0.025}, 3: {0.040, 0, 0}, 4: {0.032, 0, 0}, 5: {0.030, 0, 0},
	// index
	6: {0.004, 0.027, 0.015}, 7: {0.071, 0, 0}, 8: {0.043, 0, 0}, 9: {0.028, 0, 0}, 10: {0.023, 0, 0},
	// middle
	11: {0.005, 0.007, 0.016}, 12: {0.071, 0, 0}, 13: {0.043, 0, 0}, 14: {0.033, 0, 0}, 15: {0.026, 0, 0},
	// ring
	16: {0.004, -0.012, 0.016}, 17: {0.065, 0, 0}, 18: {0.040, 0, 0}, 19: {0.028, 0, 0}, 20: {0.022, 0, 0},
	// pinky
	21: {0.002, -0.030, 0.017}, 22: {0.063, 0, 0}, 23: {0.030, 0, 0}, 24: {0.018, 0, 0}, 25: {0.018, 0, 0},
	// aux (fingertip attachment bones)
	26: {-0.006, 0.057, 0.060}, 27: {0.017, 0.096, 0.051},
	28: {0.018, 0.099, 0.025}, 29: {0.016, 0.092, 0.002}, 30: {0.012, 0.081, -0.020},
}

// curlAngle is the per-joint flexion at full curl, radians.
const curlAngle = math.Pi / 3

// BoneCount answers the skeletal bone count query.
func (t *Translator) BoneCount(h vr.ActionHandle) (uint32, vr.InputError) {
	t.mu.RLock()
	a := t.lookup(h)
	t.mu.RUnlock()

	if a == nil {
		return 0, vr.InputErrorInvalidHandle
	}
	if a.kind != kindSkeleton {
		return 0, vr.InputErrorWrongType
	}
	return vr.SkeletalBoneCount, vr.InputErrorNone
}

// TrackingLevel reports the fidelity of the synthesized skeleton.
func (t *Translator) TrackingLevel(h vr.ActionHandle) (vr.SkeletalTrackingLevel, vr.InputError) {
	t.mu.RLock()
	a := t.lookup(h)
	t.mu.RUnlock()

	if a == nil {
		return vr.SkeletalTrackingEstimated, vr.InputErrorInvalidHandle
	}
	if a.kind != kindSkeleton {
		return vr.SkeletalTrackingEstimated, vr.InputErrorWrongType
	}
	return vr.SkeletalTrackingEstimated, vr.InputErrorNone
}

// SkeletalActionData reports whether the skeletal stream is live, which
// follows the hand controller's connection state.
func (t *Translator) SkeletalActionData(h vr.ActionHandle) (vr.InputSkeletalActionData, vr.InputError) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputSkeletalActionData{}, vr.InputErrorInvalidHandle
	}
	if a.kind != kindSkeleton {
		return vr.InputSkeletalActionData{}, vr.InputErrorWrongType
	}
	hand := skeletonHand(a.skeletonPath)
	role := vr.ControllerRoleLeftHand
	if hand == "/user/hand/right" {
		role = vr.ControllerRoleRightHand
	}
	active := t.resolver.DeviceIndexForRole(role) != vr.TrackedDeviceIndexInvalid
	return vr.InputSkeletalActionData{
		Active:       active,
		ActiveOrigin: t.handles.sourceByPath[hand],
	}, vr.InputErrorNone
}

// SkeletalBoneData fills the reference hand with finger curl driven by
// the legacy trigger and squeeze values. Motion range is ignored; the
// synthesized hand has no controller collision to clamp against.
func (t *Translator) SkeletalBoneData(h vr.ActionHandle, space vr.SkeletalTransformSpace, _ vr.SkeletalMotionRange, out []vr.BoneTransform) vr.InputError {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputErrorInvalidHandle
	}
	if a.kind != kindSkeleton {
		return vr.InputErrorWrongType
	}
	if len(out) < vr.SkeletalBoneCount {
		return vr.InputErrorInvalidParam
	}

	trigger, squeeze := t.handAnalogLocked(skeletonHand(a.skeletonPath))
	bones := referenceHand(trigger, squeeze)
	if space == vr.SkeletalTransformSpaceModel {
		accumulateModelSpace(&bones)
	}
	copy(out, bones[:])
	return vr.InputErrorNone
}

// SkeletalSummary compresses the synthesized hand into per-finger curl.
func (t *Translator) SkeletalSummary(h vr.ActionHandle) (vr.SkeletalSummaryData, vr.InputError) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.SkeletalSummaryData{}, vr.InputErrorInvalidHandle
	}
	if a.kind != kindSkeleton {
		return vr.SkeletalSummaryData{}, vr.InputErrorWrongType
	}

	trigger, squeeze := t.handAnalogLocked(skeletonHand(a.skeletonPath))
	var sum vr.SkeletalSummaryData
	sum.FingerCurl[0] = squeeze // thumb
	sum.FingerCurl[1] = trigger // index
	for i := 2; i < 5; i++ {
		sum.FingerCurl[i] = squeeze
	}
	for i := range sum.FingerSplay {
		sum.FingerSplay[i] = 0.2
	}
	return sum, vr.InputErrorNone
}

// handAnalogLocked reads the legacy trigger and squeeze values for a
// hand path directly from the synced legacy actions.
func (t *Translator) handAnalogLocked(hand string) (trigger, squeeze float32) {
	if t.legacy == nil {
		return 0, 0
	}
	hi := 0
	if hand == "/user/hand/right" {
		hi = 1
	}
	st := t.legacy.state(hi)
	return st.Axis[1].X, st.Axis[2].X
}

// referenceHand builds the parent-space reference skeleton with the
// given index-finger and grip curl.
func referenceHand(trigger, squeeze float32) [vr.SkeletalBoneCount]vr.BoneTransform {
	var bones [vr.SkeletalBoneCount]vr.BoneTransform
	for i := range bones {
		p := restPositions[i]
		bones[i] = vr.BoneTransform{
			Position:    [4]float32{p[0], p[1], p[2], 1},
			Orientation: vr.HmdQuaternion{W: 1},
		}
	}
	for f := 0; f < 5; f++ {
		curl := squeeze
		if f == 1 {
			curl = trigger
		}
		if curl <= 0 {
			continue
		}
		rot := quatAboutX(float64(curl) * curlAngle)
		// Flex every joint past the metacarpal.
		for b := fingerStart[f] + 1; b < fingerStart[f]+fingerLen[f]; b++ {
			bones[b].Orientation = rot
		}
	}
	return bones
}

// accumulateModelSpace rewrites parent-space bones into model space by
// composing each chain from the root down.
func accumulateModelSpace(bones *[vr.SkeletalBoneCount]vr.BoneTransform) {
	for i := 1; i < len(bones); i++ {
		p := boneParent[i]
		if p < 0 {
			continue
		}
		parent := bones[p]
		local := bones[i]

		rotated := quatRotate(parent.Orientation, local.Position)
		bones[i].Position = [4]float32{
			parent.Position[0] + rotated[0],
			parent.Position[1] + rotated[1],
			parent.Position[2] + rotated[2],
			1,
		}
		bones[i].Orientation = quatMul(parent.Orientation, local.Orientation)
	}
}

func quatAboutX(angle float64) vr.HmdQuaternion {
	half := angle / 2
	return vr.HmdQuaternion{W: math.Cos(half), X: math.Sin(half)}
}

func quatMul(a, b vr.HmdQuaternion) vr.HmdQuaternion {
	return vr.HmdQuaternion{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

func quatRotate(q vr.HmdQuaternion, v [4]float32) [3]float32 {
	// v' = q * (0,v) * q^-1
	p := vr.HmdQuaternion{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	inv := vr.HmdQuaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	r := quatMul(quatMul(q, p), inv)
	return [3]float32{float32(r.X), float32(r.Y), float32(r.Z)}
}
