package input

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

func newTestTranslator(t *testing.T) (*Translator, *fakext.Session) {
	t.Helper()
	mgr := session.NewManager(fakext.New())
	require.NoError(t, mgr.Init(xrt.HeadlessBinding{}))
	t.Cleanup(mgr.Shutdown)
	mgr.PumpEvents() // fake runtime reaches focus in one pump

	r := space.NewResolver()
	require.NoError(t, r.Bind(mgr.Session()))
	r.SyncDevices()
	fs := mgr.Session().(*fakext.Session)
	r.UpdateSnapshot(fs.Now())

	return New(mgr, r, config.Default()), fs
}

const testManifest = `{
	"default_bindings": [
		{"controller_type": "knuckles", "binding_url": "bindings_knuckles.json"}
	],
	"actions": [
		{"name": "/actions/main/in/fire", "type": "boolean"},
		{"name": "/actions/main/in/move", "type": "vector2"},
		{"name": "/actions/main/in/grip_value", "type": "vector1"},
		{"name": "/actions/main/in/hand_left", "type": "skeleton", "skeleton": "/skeleton/hand/left"},
		{"name": "/actions/main/out/buzz", "type": "vibration"}
	],
	"action_sets": [
		{"name": "/actions/main", "usage": "leftright"}
	]
}`

const testBindings = `{
	"bindings": {
		"/actions/main": {
			"sources": [
				{
					"path": "/user/hand/right/input/trigger",
					"mode": "button",
					"inputs": {"click": {"output": "/actions/main/in/fire"}}
				},
				{
					"path": "/user/hand/left/input/thumbstick",
					"mode": "joystick",
					"inputs": {"position": {"output": "/actions/main/in/move"}}
				},
				{
					"path": "/user/hand/left/input/trigger",
					"mode": "trigger",
					"inputs": {"pull": {"output": "/actions/main/in/grip_value"}}
				}
			],
			"haptics": [
				{"path": "/user/hand/left/output/haptic", "output": "/actions/main/out/buzz"}
			]
		}
	}
}`

func writeManifest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.json")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bindings_knuckles.json"), []byte(testBindings), 0o644))
	return path
}

// loadAndSync loads the test manifest and runs one action sync so the
// sets are attached and the snapshot is live.
func loadAndSync(t *testing.T, tr *Translator) vr.ActionSetHandle {
	t.Helper()
	require.Equal(t, vr.InputErrorNone, tr.LoadManifest(writeManifest(t)))
	set, errc := tr.ActionSetHandle("/actions/main")
	require.Equal(t, vr.InputErrorNone, errc)
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))
	return set
}

func TestActionHandleValidation(t *testing.T) {
	tr, _ := newTestTranslator(t)

	h1, errc := tr.ActionHandle("/actions/main/in/fire")
	assert.Equal(t, vr.InputErrorNone, errc)
	assert.NotEqual(t, vr.InvalidActionHandle, h1)

	h2, _ := tr.ActionHandle("/actions/main/in/fire")
	assert.Equal(t, h1, h2, "same path must yield the same handle")

	_, errc = tr.ActionHandle("fire")
	assert.Equal(t, vr.InputErrorInvalidParam, errc)

	_, errc = tr.ActionSetHandle("main")
	assert.Equal(t, vr.InputErrorInvalidParam, errc)

	s1, errc := tr.ActionSetHandle("/actions/main")
	assert.Equal(t, vr.InputErrorNone, errc)
	assert.NotEqual(t, vr.InvalidActionSetHandle, s1)
}

func TestLoadManifest(t *testing.T) {
	tr, fs := newTestTranslator(t)
	path := writeManifest(t)

	assert.Equal(t, vr.InputErrorNone, tr.LoadManifest(path))
	assert.False(t, tr.UsesLegacyInput())

	// Loading the same path again is a no-op.
	assert.Equal(t, vr.InputErrorNone, tr.LoadManifest(path))

	// A different manifest after resolution is rejected.
	other := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(other, []byte(testManifest), 0o644))
	assert.Equal(t, vr.InputErrorMismatchedActionManifest, tr.LoadManifest(other))

	// The runtime action names are the sanitized manifest paths.
	assert.False(t, fs.Attached(), "attach must wait for the first sync")
}

func TestLoadManifestErrors(t *testing.T) {
	tr, _ := newTestTranslator(t)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Equal(t, vr.InputErrorInvalidParam, tr.LoadManifest(bad))

	missing := filepath.Join(t.TempDir(), "missing.json")
	assert.Equal(t, vr.InputErrorInvalidParam, tr.LoadManifest(missing))
}

func TestUpdateActionState(t *testing.T) {
	tr, fs := newTestTranslator(t)

	assert.Equal(t, vr.InputErrorNoActiveActionSet, tr.UpdateActionState(nil))

	set, _ := tr.ActionSetHandle("/actions/main")
	assert.Equal(t, vr.InputErrorNoActiveActionSet,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}),
		"sync before any manifest must fail")

	require.Equal(t, vr.InputErrorNone, tr.LoadManifest(writeManifest(t)))

	unknown, _ := tr.ActionSetHandle("/actions/undeclared")
	assert.Equal(t, vr.InputErrorInvalidHandle,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: unknown}}))

	before := tr.PacketNum()
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))
	assert.True(t, fs.Attached(), "first sync attaches the action sets")
	assert.Equal(t, before+1, tr.PacketNum())
}

func TestDigitalActionData(t *testing.T) {
	tr, fs := newTestTranslator(t)
	set := loadAndSync(t, tr)
	fire, _ := tr.ActionHandle("/actions/main/in/fire")

	require.NoError(t, fs.SetBool("main_in_fire", "/user/hand/right", true))
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))

	data, errc := tr.DigitalActionData(fire, vr.InvalidInputValueHandle)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.True(t, data.Active)
	assert.True(t, data.State)
	assert.True(t, data.Changed)

	// The origin resolves back to the right controller's device index.
	idx, errc := tr.OriginDeviceIndex(data.ActiveOrigin)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.Equal(t, vr.TrackedDeviceIndex(2), idx)

	// Unchanged on the next sync.
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))
	data, _ = tr.DigitalActionData(fire, vr.InvalidInputValueHandle)
	assert.True(t, data.State)
	assert.False(t, data.Changed)

	// Restricted to the left hand there is no data.
	left, _ := tr.InputSourceHandle("/user/hand/left")
	data, errc = tr.DigitalActionData(fire, left)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.False(t, data.Active)

	_, errc = tr.DigitalActionData(vr.ActionHandle(999999), vr.InvalidInputValueHandle)
	assert.Equal(t, vr.InputErrorInvalidHandle, errc)
}

func TestAnalogActionData(t *testing.T) {
	tr, fs := newTestTranslator(t)
	set := loadAndSync(t, tr)

	move, _ := tr.ActionHandle("/actions/main/in/move")
	grip, _ := tr.ActionHandle("/actions/main/in/grip_value")
	fire, _ := tr.ActionHandle("/actions/main/in/fire")

	require.NoError(t, fs.SetVector2("main_in_move", "/user/hand/left", 0.5, -0.25))
	require.NoError(t, fs.SetFloat("main_in_grip_value", "/user/hand/left", 0.9))
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))

	data, errc := tr.AnalogActionData(move, vr.InvalidInputValueHandle)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.True(t, data.Active)
	assert.InDelta(t, 0.5, data.X, 1e-6)
	assert.InDelta(t, -0.25, data.Y, 1e-6)

	data, errc = tr.AnalogActionData(grip, vr.InvalidInputValueHandle)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.InDelta(t, 0.9, data.X, 1e-6)

	// Type mismatches are rejected, not coerced.
	_, errc = tr.AnalogActionData(fire, vr.InvalidInputValueHandle)
	assert.Equal(t, vr.InputErrorWrongType, errc)
	_, errc = tr.DigitalActionData(move, vr.InvalidInputValueHandle)
	assert.Equal(t, vr.InputErrorWrongType, errc)
}

func TestSuggestedBindings(t *testing.T) {
	tr, fs := newTestTranslator(t)
	loadAndSync(t, tr)

	suggested := fs.SuggestedFor("/interaction_profiles/valve/index_controller")
	require.NotEmpty(t, suggested)

	byPath := make(map[string]string, len(suggested))
	for _, b := range suggested {
		byPath[b.Path] = b.Action.Name()
	}
	assert.Equal(t, "main_in_fire", byPath["/user/hand/right/input/trigger/click"])
	assert.Equal(t, "main_in_move", byPath["/user/hand/left/input/thumbstick"])
	assert.Equal(t, "main_in_grip_value", byPath["/user/hand/left/input/trigger/value"])
	assert.Equal(t, "main_out_buzz", byPath["/user/hand/left/output/haptic"])

	// The built-in legacy set is suggested alongside the manifest's.
	assert.Contains(t, byPath, "/user/hand/left/input/grip/pose")
	assert.Equal(t, "grip_pose", byPath["/user/hand/left/input/grip/pose"])
}

func TestLegacyFrameTick(t *testing.T) {
	tr, fs := newTestTranslator(t)

	assert.True(t, tr.UsesLegacyInput())
	tr.FrameTick(fs.Now()) // attaches the legacy set
	require.True(t, fs.Attached())

	require.NoError(t, fs.SetFloat("trigger", "/user/hand/right", 0.8))
	require.NoError(t, fs.SetBool("trigger_click", "/user/hand/right", true))
	require.NoError(t, fs.SetVector2("main_axis", "/user/hand/right", 0.1, 0.4))
	tr.FrameTick(fs.Now())

	st, ok := tr.ControllerState(2)
	require.True(t, ok)
	assert.NotZero(t, st.ButtonPressed&vr.ButtonMaskFromID(vr.ButtonSteamVRTrigger))
	assert.InDelta(t, 0.8, st.Axis[1].X, 1e-6)
	assert.InDelta(t, 0.1, st.Axis[0].X, 1e-6)
	assert.InDelta(t, 0.4, st.Axis[0].Y, 1e-6)

	// The per-hand packet number advances only on change.
	packet := st.PacketNum
	tr.FrameTick(fs.Now())
	st, _ = tr.ControllerState(2)
	assert.Equal(t, packet, st.PacketNum)

	require.NoError(t, fs.SetFloat("trigger", "/user/hand/right", 0.2))
	tr.FrameTick(fs.Now())
	st, _ = tr.ControllerState(2)
	assert.Equal(t, packet+1, st.PacketNum)

	// The untouched left hand reports empty state.
	st, ok = tr.ControllerState(1)
	require.True(t, ok)
	assert.Zero(t, st.ButtonPressed)

	// The HMD has no controller state.
	_, ok = tr.ControllerState(0)
	assert.False(t, ok)
}

func TestHapticPulse(t *testing.T) {
	tr, fs := newTestTranslator(t)
	tr.FrameTick(fs.Now())

	require.True(t, tr.HapticPulse(2, 5*time.Millisecond))
	require.Len(t, fs.Haptics, 1)
	h := fs.Haptics[0]
	assert.Equal(t, "haptic", h.Action)
	assert.Equal(t, "/user/hand/right", h.Subaction)
	assert.Equal(t, 5*time.Millisecond, h.Duration)
	assert.Equal(t, float32(160), h.Frequency)
	assert.Equal(t, float32(1), h.Amplitude)

	assert.False(t, tr.HapticPulse(0, time.Millisecond), "HMD has no haptics")
}

func TestTriggerHapticAction(t *testing.T) {
	tr, fs := newTestTranslator(t)
	loadAndSync(t, tr)

	buzz, _ := tr.ActionHandle("/actions/main/out/buzz")
	left, _ := tr.InputSourceHandle("/user/hand/left")
	require.Equal(t, vr.InputErrorNone,
		tr.TriggerHaptic(buzz, 0, 10*time.Millisecond, 200, 0.5, left))

	require.Len(t, fs.Haptics, 1)
	assert.Equal(t, "main_out_buzz", fs.Haptics[0].Action)
	assert.Equal(t, float32(200), fs.Haptics[0].Frequency)

	fire, _ := tr.ActionHandle("/actions/main/in/fire")
	assert.Equal(t, vr.InputErrorWrongType,
		tr.TriggerHaptic(fire, 0, time.Millisecond, 100, 1, vr.InvalidInputValueHandle))
}

func TestPoseActionData(t *testing.T) {
	tr, fs := newTestTranslator(t)
	_ = fs
	loadAndSync(t, tr)

	// grip_value is a float action; pose queries must reject it.
	grip, _ := tr.ActionHandle("/actions/main/in/grip_value")
	_, errc := tr.PoseActionData(grip, vr.TrackingUniverseStanding, vr.InvalidInputValueHandle)
	assert.Equal(t, vr.InputErrorWrongType, errc)
}

func TestSkeletal(t *testing.T) {
	tr, fs := newTestTranslator(t)
	set := loadAndSync(t, tr)
	hand, _ := tr.ActionHandle("/actions/main/in/hand_left")

	count, errc := tr.BoneCount(hand)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.Equal(t, uint32(vr.SkeletalBoneCount), count)

	level, errc := tr.TrackingLevel(hand)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.Equal(t, vr.SkeletalTrackingEstimated, level)

	data, errc := tr.SkeletalActionData(hand)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.True(t, data.Active, "left controller is connected")

	// Curl the synthesized index finger with the legacy trigger.
	require.NoError(t, fs.SetFloat("trigger", "/user/hand/left", 0.7))
	require.Equal(t, vr.InputErrorNone,
		tr.UpdateActionState([]vr.ActiveActionSet{{ActionSet: set}}))

	sum, errc := tr.SkeletalSummary(hand)
	require.Equal(t, vr.InputErrorNone, errc)
	assert.InDelta(t, 0.7, sum.FingerCurl[1], 1e-6)
	assert.Zero(t, sum.FingerCurl[2])

	bones := make([]vr.BoneTransform, vr.SkeletalBoneCount)
	require.Equal(t, vr.InputErrorNone,
		tr.SkeletalBoneData(hand, vr.SkeletalTransformSpaceParent,
			vr.SkeletalMotionRangeWithoutController, bones))
	assert.NotEqual(t, vr.HmdQuaternion{W: 1}, bones[7].Orientation,
		"index finger joints must flex with the trigger")
	assert.Equal(t, vr.HmdQuaternion{W: 1}, bones[12].Orientation,
		"middle finger stays open without squeeze")

	short := make([]vr.BoneTransform, 4)
	assert.Equal(t, vr.InputErrorInvalidParam,
		tr.SkeletalBoneData(hand, vr.SkeletalTransformSpaceParent,
			vr.SkeletalMotionRangeWithoutController, short))

	// Non-skeleton handles are rejected across the skeletal surface.
	fire, _ := tr.ActionHandle("/actions/main/in/fire")
	_, errc = tr.BoneCount(fire)
	assert.Equal(t, vr.InputErrorWrongType, errc)
}
