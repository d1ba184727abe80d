package profiles

import "testing"

func TestRegistryCoversKnownControllers(t *testing.T) {
	for _, ct := range []string{"knuckles", "oculus_touch", "vive_controller", "generic"} {
		if p := ByControllerType(ct); p == nil {
			t.Errorf("no profile for controller type %q", ct)
		}
	}
	if Lookup("/interaction_profiles/nobody/nothing") != nil {
		t.Error("lookup of unknown path returned a profile")
	}
	if Fallback() == nil {
		t.Fatal("no fallback profile")
	}
}

func TestAllIsDeterministic(t *testing.T) {
	a := All()
	b := All()
	if len(a) == 0 {
		t.Fatal("no profiles registered")
	}
	for i := range a {
		if a[i].Path() != b[i].Path() {
			t.Fatalf("ordering differs at %d: %s vs %s", i, a[i].Path(), b[i].Path())
		}
	}
}

func TestKnucklesTranslate(t *testing.T) {
	p := Lookup("/interaction_profiles/valve/index_controller")
	if p == nil {
		t.Fatal("no knuckles profile")
	}
	tests := []struct{ in, want string }{
		{"input/trigger/pull", "input/trigger/value"},
		{"input/grip/pull", "input/squeeze/value"},
		{"input/grip/click", "input/squeeze/value"},
		{"input/trackpad/click", "input/trackpad/force"},
		{"input/application_menu/click", "input/b/click"},
		{"input/trigger/click", "input/trigger/click"},
	}
	for _, tt := range tests {
		if got := Translate(p, tt.in); got != tt.want {
			t.Errorf("Translate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if !IsLegal(p, "input/thumbstick") {
		t.Error("thumbstick not legal for knuckles")
	}
	if IsLegal(p, "input/trackpad/click") {
		t.Error("trackpad click is not a knuckles component")
	}
}

func TestEveryProfileBindsLegacyEssentials(t *testing.T) {
	for _, p := range All() {
		lb := p.LegacyBindings()
		if lb.GripPose == "" || lb.AimPose == "" || lb.Trigger == "" || lb.Haptic == "" {
			t.Errorf("%s: incomplete legacy bindings %+v", p.Path(), lb)
		}
		// Every legacy binding target must be a legal component path.
		for _, suffix := range []string{lb.GripPose, lb.AimPose, lb.Trigger, lb.Haptic} {
			if !IsLegal(p, suffix) {
				t.Errorf("%s: legacy binding %q not in legal paths", p.Path(), suffix)
			}
		}
	}
}

func TestHandPath(t *testing.T) {
	if HandPath(HandLeft) != "/user/hand/left" || HandPath(HandRight) != "/user/hand/right" {
		t.Error("hand paths wrong")
	}
}
