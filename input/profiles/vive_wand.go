package profiles

import "github.com/gogpu/xrbridge/vr"

func init() { Register(viveWand{}) }

// viveWand is the HTC Vive wand controller.
type viveWand struct{}

func (viveWand) Path() string { return "/interaction_profiles/htc/vive_controller" }

func (viveWand) Properties() *Properties {
	return &viveWandProps
}

var viveWandProps = Properties{
	Model:           [2]string{"Vive. Controller MV", "Vive. Controller MV"},
	RenderModelName: [2]string{"vr_controller_vive_1_5", "vr_controller_vive_1_5"},
	Serial:          [2]string{"LHR-00000001", "LHR-00000002"},
	RegisteredType:  [2]string{"htc/vive_controllerLHR-00000001", "htc/vive_controllerLHR-00000002"},
	ControllerType:  "vive_controller",
	TrackingSystemName: "lighthouse",
	ManufacturerName:   "HTC",
	MainAxis:           vr.ControllerAxisTrackPad,
	SupportedButtons: vr.ButtonMask(
		vr.ButtonSystem,
		vr.ButtonApplicationMenu,
		vr.ButtonGrip,
		vr.ButtonAxis0,
		vr.ButtonAxis1,
	),
}

func (viveWand) TranslateMap() []PathTranslation {
	return []PathTranslation{
		{From: "pull", To: "value"},
		{From: "input/grip", To: "input/squeeze", Stop: true},
		{From: "application_menu", To: "menu", Stop: true},
	}
}

func (viveWand) LegalPaths() []string {
	return []string{
		"input/squeeze/click",
		"input/menu/click",
		"input/system/click",
		"input/trigger/click", "input/trigger/value",
		"input/trackpad", "input/trackpad/x", "input/trackpad/y",
		"input/trackpad/click", "input/trackpad/touch",
		"input/grip/pose", "input/aim/pose",
		"output/haptic",
	}
}

func (viveWand) LegacyBindings() LegacyBindings {
	return LegacyBindings{
		GripPose:      "input/grip/pose",
		AimPose:       "input/aim/pose",
		Trigger:       "input/trigger/value",
		TriggerClick:  "input/trigger/click",
		SqueezeClick:  "input/squeeze/click",
		AppMenu:       "input/menu/click",
		System:        "input/system/click",
		MainAxis:      "input/trackpad",
		MainAxisClick: "input/trackpad/click",
		MainAxisTouch: "input/trackpad/touch",
		Haptic:        "output/haptic",
	}
}
