package input

import (
	"fmt"
	"sort"

	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/input/profiles"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// legacyActions is the built-in action set backing the legacy
// button/axis controller queries. It exists in every session, with or
// without a manifest, so GetControllerState always has data.
type legacyActions struct {
	set xrt.ActionSet

	trigger      xrt.Action // float
	triggerClick xrt.Action
	squeeze      xrt.Action // float
	squeezeClick xrt.Action
	appMenu      xrt.Action
	system       xrt.Action
	mainAxis     xrt.Action // vector2
	mainClick    xrt.Action
	mainTouch    xrt.Action
	gripPose     xrt.Action
	aimPose      xrt.Action
	haptic       xrt.Action

	gripSpaces [2]xrt.Space
	aimSpaces  [2]xrt.Space

	// states is rebuilt on every sync, one entry per hand.
	states [2]vr.ControllerState
	packet [2]uint32
}

const legacySetName = "xrbridge_legacy"

func setupLegacyActions(sess xrt.Session, cfg *config.Config) (*legacyActions, error) {
	set, err := sess.CreateActionSet(legacySetName, "Legacy Input", 0)
	if err != nil {
		return nil, fmt.Errorf("input: create legacy set: %w", err)
	}

	l := &legacyActions{set: set}
	subs := handPaths

	mk := func(dst *xrt.Action, name string, kind xrt.ActionKind) {
		if err != nil {
			return
		}
		var a xrt.Action
		a, err = set.CreateAction(name, name, kind, subs)
		*dst = a
	}
	mk(&l.trigger, "trigger", xrt.ActionKindFloat)
	mk(&l.triggerClick, "trigger_click", xrt.ActionKindBoolean)
	mk(&l.squeeze, "squeeze", xrt.ActionKindFloat)
	mk(&l.squeezeClick, "squeeze_click", xrt.ActionKindBoolean)
	mk(&l.appMenu, "app_menu", xrt.ActionKindBoolean)
	mk(&l.system, "system", xrt.ActionKindBoolean)
	mk(&l.mainAxis, "main_axis", xrt.ActionKindVector2)
	mk(&l.mainClick, "main_click", xrt.ActionKindBoolean)
	mk(&l.mainTouch, "main_touch", xrt.ActionKindBoolean)
	mk(&l.gripPose, "grip_pose", xrt.ActionKindPose)
	mk(&l.aimPose, "aim_pose", xrt.ActionKindPose)
	mk(&l.haptic, "haptic", xrt.ActionKindVibration)
	if err != nil {
		return nil, fmt.Errorf("input: create legacy actions: %w", err)
	}
	return l, nil
}

// suggestedBindings builds the legacy binding list for one profile from
// its built-in table. For the generic fallback profile the configured
// fidelity filter decides which components survive.
func (l *legacyActions) suggestedBindings(profile profiles.Profile, cfg *config.Config) []xrt.SuggestedBinding {
	lb := profile.LegacyBindings()
	degraded := profile.Path() == profiles.Fallback().Path()
	has := func(component string) bool {
		return !degraded || cfg.FallbackHas(component)
	}

	type pair struct {
		action xrt.Action
		suffix string
	}
	pairs := make([]pair, 0, 12)
	add := func(a xrt.Action, suffix string, component string) {
		if a == nil || suffix == "" || !has(component) {
			return
		}
		pairs = append(pairs, pair{a, suffix})
	}
	add(l.trigger, lb.Trigger, "trigger")
	add(l.triggerClick, lb.TriggerClick, "trigger")
	add(l.squeeze, lb.Squeeze, "trigger")
	add(l.squeezeClick, lb.SqueezeClick, "trigger")
	add(l.appMenu, lb.AppMenu, "menu")
	add(l.system, lb.System, "menu")
	add(l.mainAxis, lb.MainAxis, "trigger")
	add(l.mainClick, lb.MainAxisClick, "trigger")
	add(l.mainTouch, lb.MainAxisTouch, "trigger")
	add(l.gripPose, lb.GripPose, "pose")
	add(l.aimPose, lb.AimPose, "pose")
	add(l.haptic, lb.Haptic, "haptic")

	out := make([]xrt.SuggestedBinding, 0, len(pairs)*2)
	for _, hand := range handPaths {
		for _, p := range pairs {
			out = append(out, xrt.SuggestedBinding{Action: p.action, Path: hand + "/" + p.suffix})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// refresh rebuilds both hands' controller state from the synced actions.
// The per-hand packet number advances only when the state changed, so
// applications polling it can skip unchanged frames.
func (l *legacyActions) refresh(t xrt.Time) {
	_ = t
	for hi, hand := range handPaths {
		var st vr.ControllerState

		press := func(a xrt.Action, ids ...vr.ButtonID) {
			bs, err := a.BooleanState(hand)
			if err != nil || !bs.Active || !bs.Current {
				return
			}
			st.ButtonPressed |= vr.ButtonMask(ids...)
			st.ButtonTouched |= vr.ButtonMask(ids...)
		}
		press(l.triggerClick, vr.ButtonSteamVRTrigger)
		press(l.squeezeClick, vr.ButtonGrip, vr.ButtonAxis2)
		press(l.appMenu, vr.ButtonApplicationMenu)
		press(l.system, vr.ButtonSystem)
		press(l.mainClick, vr.ButtonSteamVRTouchpad)

		if bs, err := l.mainTouch.BooleanState(hand); err == nil && bs.Active && bs.Current {
			st.ButtonTouched |= vr.ButtonMaskFromID(vr.ButtonSteamVRTouchpad)
		}

		if v2, err := l.mainAxis.Vector2State(hand); err == nil && v2.Active {
			st.Axis[0] = vr.ControllerAxis{X: v2.X, Y: v2.Y}
		}
		if fv, err := l.trigger.FloatState(hand); err == nil && fv.Active {
			st.Axis[1] = vr.ControllerAxis{X: fv.Current}
			if fv.Current > 0 {
				st.ButtonTouched |= vr.ButtonMaskFromID(vr.ButtonSteamVRTrigger)
			}
			if fv.Current >= 1 {
				st.ButtonPressed |= vr.ButtonMaskFromID(vr.ButtonSteamVRTrigger)
			}
		}
		if fv, err := l.squeeze.FloatState(hand); err == nil && fv.Active {
			st.Axis[2] = vr.ControllerAxis{X: fv.Current}
		}

		prev := l.states[hi]
		prev.PacketNum = 0
		cur := st
		if prev != cur {
			l.packet[hi]++
		}
		st.PacketNum = l.packet[hi]
		l.states[hi] = st
	}
}

// state returns the last-synced controller state for a hand.
func (l *legacyActions) state(hand int) vr.ControllerState {
	if hand < 0 || hand >= len(l.states) {
		return vr.ControllerState{}
	}
	return l.states[hand]
}

// poseSpace lazily creates the grip or aim space for a hand.
func (l *legacyActions) poseSpace(hand int, aim bool) (xrt.Space, error) {
	spaces := &l.gripSpaces
	a := l.gripPose
	if aim {
		spaces = &l.aimSpaces
		a = l.aimPose
	}
	if spaces[hand] != nil {
		return spaces[hand], nil
	}
	sp, err := a.CreateSpace(handPaths[hand], xrt.IdentityPose)
	if err != nil {
		return nil, err
	}
	spaces[hand] = sp
	return sp, nil
}
