// Package profiles holds the built-in interaction profile tables: one
// per known controller type, plus the generic fallback used for
// controllers the engine has no table for.
//
// A profile knows three things: how legacy input paths translate to the
// runtime's component paths for that controller, which component paths
// are legal to suggest, and the device properties the legacy property
// queries report for it.
package profiles

import (
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/xrbridge/vr"
)

// Hand selects a controller side where properties differ per hand.
type Hand int

const (
	HandLeft Hand = iota
	HandRight
)

// PathTranslation rewrites one legacy path fragment to the runtime's
// naming. Stop marks terminal rewrites that must not be chained.
type PathTranslation struct {
	From string
	To   string
	Stop bool
}

// Properties is the static device-property table for a profile,
// answering the legacy tracked-property queries.
type Properties struct {
	Model              [2]string // per hand
	RenderModelName    [2]string
	Serial             [2]string
	RegisteredType     [2]string
	ControllerType     string
	TrackingSystemName string
	ManufacturerName   string

	// MainAxis tells the legacy axis table what axis 0 carries.
	MainAxis vr.ControllerAxisType

	// SupportedButtons is the legacy button mask this controller can
	// produce.
	SupportedButtons uint64
}

// LegacyBindings names the runtime component paths the built-in legacy
// action set binds to, as path suffixes under each hand.
type LegacyBindings struct {
	GripPose      string
	AimPose       string
	Trigger       string
	TriggerClick  string
	Squeeze       string
	SqueezeClick  string
	AppMenu       string
	System        string
	MainAxis      string
	MainAxisClick string
	MainAxisTouch string
	Haptic        string
}

// Profile is one interaction profile table.
type Profile interface {
	// Path is the runtime interaction profile path.
	Path() string

	// Properties returns the static legacy property table.
	Properties() *Properties

	// TranslateMap returns the legacy→runtime path rewrites, applied in
	// order.
	TranslateMap() []PathTranslation

	// LegalPaths returns every component path (relative to a hand) that
	// may be suggested for this profile.
	LegalPaths() []string

	// LegacyBindings returns the built-in bindings for manifest-less
	// applications.
	LegacyBindings() LegacyBindings
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Profile)
)

// Register adds a profile table, keyed by its interaction profile path.
// Called from init() functions in this package; tests may register
// synthetic profiles.
func Register(p Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Path()] = p
}

// Lookup returns the profile registered for a runtime profile path, or
// nil.
func Lookup(path string) Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[path]
}

// ByControllerType finds a profile by its legacy controller type string.
func ByControllerType(ct string) Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, p := range registry {
		if p.Properties().ControllerType == ct {
			return p
		}
	}
	return nil
}

// All returns every registered profile in deterministic (path) order.
func All() []Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Profile, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

// Fallback returns the generic reduced-fidelity profile used when the
// runtime reports a controller the engine has no table for. This is a
// deliberate, documented degradation, not an error.
func Fallback() Profile {
	return Lookup(simpleProfilePath)
}

// HandPath returns the top-level user path for a hand.
func HandPath(h Hand) string {
	if h == HandLeft {
		return "/user/hand/left"
	}
	return "/user/hand/right"
}

// Translate rewrites a legacy input path (relative to a hand) through a
// profile's translate map.
func Translate(p Profile, path string) string {
	for _, tr := range p.TranslateMap() {
		if strings.Contains(path, tr.From) {
			path = strings.Replace(path, tr.From, tr.To, 1)
			if tr.Stop {
				break
			}
		}
	}
	return path
}

// IsLegal reports whether a hand-relative component path may be
// suggested for the profile.
func IsLegal(p Profile, path string) bool {
	for _, legal := range p.LegalPaths() {
		if legal == path {
			return true
		}
	}
	return false
}
