package profiles

import "github.com/gogpu/xrbridge/vr"

func init() { Register(knuckles{}) }

// knuckles is the Valve Index controller.
type knuckles struct{}

func (knuckles) Path() string { return "/interaction_profiles/valve/index_controller" }

func (knuckles) Properties() *Properties {
	return &knucklesProps
}

var knucklesProps = Properties{
	Model:           [2]string{"Knuckles Left", "Knuckles Right"},
	RenderModelName: [2]string{"{indexcontroller}valve_controller_knu_1_0_left", "{indexcontroller}valve_controller_knu_1_0_right"},
	Serial:          [2]string{"LHR-FFFFFFF1", "LHR-FFFFFFF2"},
	RegisteredType:  [2]string{"valve/index_controllerLHR-FFFFFFF1", "valve/index_controllerLHR-FFFFFFF2"},
	ControllerType:  "knuckles",
	TrackingSystemName: "lighthouse",
	ManufacturerName:   "Valve",
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

func (knuckles) TranslateMap() []PathTranslation {
	return []PathTranslation{
		{From: "pull", To: "value"},
		{From: "input/grip", To: "input/squeeze"},
		{From: "squeeze/click", To: "squeeze/value", Stop: true},
		{From: "squeeze/touch", To: "squeeze/value", Stop: true},
		{From: "squeeze/grab", To: "squeeze/force", Stop: true},
		{From: "trackpad/click", To: "trackpad/force", Stop: true},
		{From: "application_menu", To: "b", Stop: true},
	}
}

func (knuckles) LegalPaths() []string {
	return []string{
		"input/a/click", "input/a/touch",
		"input/b/click", "input/b/touch",
		"input/trigger/click", "input/trigger/touch", "input/trigger/value",
		"input/thumbstick/click", "input/thumbstick/touch",
		"input/thumbstick", "input/thumbstick/x", "input/thumbstick/y",
		"input/trackpad", "input/trackpad/x", "input/trackpad/y",
		"input/trackpad/touch", "input/trackpad/force",
		"input/squeeze/value", "input/squeeze/force",
		"input/system/click", "input/system/touch",
		"input/grip/pose", "input/aim/pose",
		"output/haptic",
	}
}

func (knuckles) LegacyBindings() LegacyBindings {
	return LegacyBindings{
		GripPose:      "input/grip/pose",
		AimPose:       "input/aim/pose",
		Trigger:       "input/trigger/value",
		TriggerClick:  "input/trigger/click",
		Squeeze:       "input/squeeze/value",
		SqueezeClick:  "input/squeeze/force",
		AppMenu:       "input/b/click",
		System:        "input/system/click",
		MainAxis:      "input/thumbstick",
		MainAxisClick: "input/thumbstick/click",
		MainAxisTouch: "input/thumbstick/touch",
		Haptic:        "output/haptic",
	}
}
