package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The action manifest is the legacy JSON document mapping application
// action names to kinds, plus per-controller-type binding documents
// referenced from it. Both are parsed exactly once per session.

type manifestDoc struct {
	DefaultBindings []manifestBindingRef `json:"default_bindings"`
	Actions         []manifestAction     `json:"actions"`
	ActionSets      []manifestActionSet  `json:"action_sets"`
}

type manifestBindingRef struct {
	ControllerType string `json:"controller_type"`
	BindingURL     string `json:"binding_url"`
}

type manifestAction struct {
	Name        string `json:"name"` // "/actions/main/in/fire"
	Type        string `json:"type"` // boolean, vector1, vector2, pose, skeleton, vibration
	Skeleton    string `json:"skeleton,omitempty"`
	Requirement string `json:"requirement,omitempty"`
}

type manifestActionSet struct {
	Name  string `json:"name"` // "/actions/main"
	Usage string `json:"usage"`
}

// bindingDoc is one per-controller-type binding document. The engine
// only consumes sources, poses, haptics and skeleton blocks; chords and
// mode settings are legacy UI concerns.
type bindingDoc struct {
	Bindings map[string]bindingSetBlock `json:"bindings"` // keyed by action set name
}

type bindingSetBlock struct {
	Sources  []bindingSource `json:"sources"`
	Poses    []bindingOutput `json:"poses"`
	Haptics  []bindingOutput `json:"haptics"`
	Skeleton []bindingOutput `json:"skeleton"`
}

type bindingSource struct {
	Path   string                   `json:"path"` // "/user/hand/left/input/trigger"
	Mode   string                   `json:"mode"`
	Inputs map[string]bindingOutput `json:"inputs"` // input component → action
}

type bindingOutput struct {
	Output string `json:"output"` // "/actions/main/in/fire"
	Path   string `json:"path,omitempty"`
}

func parseManifest(path string) (*manifestDoc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input: read manifest: %w", err)
	}
	var doc manifestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("input: parse manifest: %w", err)
	}
	if len(doc.Actions) == 0 {
		return nil, fmt.Errorf("input: manifest declares no actions")
	}
	return &doc, nil
}

// bindingFileFor resolves and parses the binding document for a
// controller type. Paths are relative to the manifest's directory.
func (doc *manifestDoc) bindingFileFor(manifestPath, controllerType string) (*bindingDoc, error) {
	for _, ref := range doc.DefaultBindings {
		if ref.ControllerType != controllerType {
			continue
		}
		p := ref.BindingURL
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(manifestPath), p)
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("input: read bindings for %s: %w", controllerType, err)
		}
		var bd bindingDoc
		if err := json.Unmarshal(raw, &bd); err != nil {
			return nil, fmt.Errorf("input: parse bindings for %s: %w", controllerType, err)
		}
		return &bd, nil
	}
	return nil, nil
}

// kindFromType maps a manifest action type string to the action kind.
func kindFromType(t string) (actionKind, bool) {
	switch strings.ToLower(t) {
	case "boolean":
		return kindBoolean, true
	case "vector1", "single":
		return kindFloat, true
	case "vector2":
		return kindVector2, true
	case "vector3":
		return kindVector3, true
	case "pose":
		return kindPose, true
	case "skeleton":
		return kindSkeleton, true
	case "vibration":
		return kindHaptic, true
	default:
		return kindBoolean, false
	}
}

// splitHandPath splits a full binding path into its top-level hand path
// and the hand-relative component suffix.
// "/user/hand/left/input/trigger" → "/user/hand/left", "input/trigger".
func splitHandPath(path string) (hand, suffix string, ok bool) {
	for _, h := range []string{"/user/hand/left", "/user/hand/right"} {
		if strings.HasPrefix(path, h+"/") {
			return h, strings.TrimPrefix(path, h+"/"), true
		}
	}
	return "", "", false
}
