package profiles

import "github.com/gogpu/xrbridge/vr"

const simpleProfilePath = "/interaction_profiles/khr/simple_controller"

func init() { Register(simple{}) }

// simple is the generic reduced-fidelity profile. It backs controllers
// the engine has no dedicated table for: only a select "trigger", a menu
// button, poses and haptics survive the degradation. Which of these the
// fallback keeps is configurable per deployment.
type simple struct{}

func (simple) Path() string { return simpleProfilePath }

func (simple) Properties() *Properties {
	return &simpleProps
}

var simpleProps = Properties{
	Model:           [2]string{"Generic Controller", "Generic Controller"},
	RenderModelName: [2]string{"generic_controller", "generic_controller"},
	Serial:          [2]string{"GEN-00000001", "GEN-00000002"},
	RegisteredType:  [2]string{"generic/GEN-00000001", "generic/GEN-00000002"},
	ControllerType:  "generic",
	TrackingSystemName: "generic",
	ManufacturerName:   "Unknown",
	MainAxis:           vr.ControllerAxisNone,
	SupportedButtons: vr.ButtonMask(
		vr.ButtonApplicationMenu,
		vr.ButtonAxis1,
	),
}

func (simple) TranslateMap() []PathTranslation {
	return []PathTranslation{
		{From: "input/trigger", To: "input/select", Stop: true},
		{From: "application_menu", To: "menu", Stop: true},
	}
}

func (simple) LegalPaths() []string {
	return []string{
		"input/select/click",
		"input/menu/click",
		"input/grip/pose", "input/aim/pose",
		"output/haptic",
	}
}

func (simple) LegacyBindings() LegacyBindings {
	return LegacyBindings{
		GripPose:     "input/grip/pose",
		AimPose:      "input/aim/pose",
		Trigger:      "input/select/click",
		TriggerClick: "input/select/click",
		AppMenu:      "input/menu/click",
		System:       "input/menu/click",
		Haptic:       "output/haptic",
	}
}
