package profiles

import "github.com/gogpu/xrbridge/vr"

func init() { Register(touch{}) }

// touch is the Oculus/Meta Touch controller family.
type touch struct{}

func (touch) Path() string { return "/interaction_profiles/oculus/touch_controller" }

func (touch) Properties() *Properties {
	return &touchProps
}

var touchProps = Properties{
	Model:           [2]string{"Oculus Quest2 (Left Controller)", "Oculus Quest2 (Right Controller)"},
	RenderModelName: [2]string{"oculus_quest2_controller_left", "oculus_quest2_controller_right"},
	Serial:          [2]string{"WMHD-00000001", "WMHD-00000002"},
	RegisteredType:  [2]string{"oculus/WMHD-00000001", "oculus/WMHD-00000002"},
	ControllerType:  "oculus_touch",
	TrackingSystemName: "oculus",
	ManufacturerName:   "Oculus",
	MainAxis:           vr.ControllerAxisJoystick,
	SupportedButtons: vr.ButtonMask(
		vr.ButtonSystem,
		vr.ButtonApplicationMenu,
		vr.ButtonGrip,
		vr.ButtonA,
		vr.ButtonAxis0,
		vr.ButtonAxis1,
		vr.ButtonAxis2,
	),
}

func (touch) TranslateMap() []PathTranslation {
	return []PathTranslation{
		{From: "pull", To: "value"},
		{From: "input/grip", To: "input/squeeze"},
		{From: "squeeze/click", To: "squeeze/value", Stop: true},
		{From: "trackpad", To: "thumbstick"},
		{From: "application_menu", To: "menu", Stop: true},
	}
}

func (touch) LegalPaths() []string {
	return []string{
		// x/y on the left hand, a/b on the right; both listed since the
		// suggestion step filters per hand path anyway.
		"input/x/click", "input/x/touch",
		"input/y/click", "input/y/touch",
		"input/a/click", "input/a/touch",
		"input/b/click", "input/b/touch",
		"input/menu/click",
		"input/trigger/click", "input/trigger/touch", "input/trigger/value",
		"input/squeeze/value",
		"input/thumbstick", "input/thumbstick/x", "input/thumbstick/y",
		"input/thumbstick/click", "input/thumbstick/touch",
		"input/grip/pose", "input/aim/pose",
		"output/haptic",
	}
}

func (touch) LegacyBindings() LegacyBindings {
	return LegacyBindings{
		GripPose:      "input/grip/pose",
		AimPose:       "input/aim/pose",
		Trigger:       "input/trigger/value",
		TriggerClick:  "input/trigger/click",
		Squeeze:       "input/squeeze/value",
		SqueezeClick:  "input/squeeze/value",
		AppMenu:       "input/menu/click",
		System:        "input/menu/click",
		MainAxis:      "input/thumbstick",
		MainAxisClick: "input/thumbstick/click",
		MainAxisTouch: "input/thumbstick/touch",
		Haptic:        "output/haptic",
	}
}
