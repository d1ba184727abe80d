package xrbridge

import (
	"strings"

	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/vr"
)

// GetGenericInterface returns the shim implementing a version-tagged
// interface name ("IVRSystem_022"). Applications probe for the versions
// they were built against; versions the engine does not carry answer
// InitErrorInitInterfaceNotFound so the application can fall back to an
// older one, exactly as the original runtime behaves.
//
// Repeated calls for any supported version of the same interface return
// the same instance.
func GetGenericInterface(version string) (any, vr.InitError) {
	e, errc := current()
	if errc != vr.InitErrorNone {
		return nil, errc
	}

	family, ok := interfaceFamily(version)
	if !ok {
		logging.Logger().Debug("interface not found", "version", version)
		return nil, vr.InitErrorInitInterfaceNotFound
	}

	engineMu.Lock()
	defer engineMu.Unlock()
	if shim, ok := e.shims[family]; ok {
		return shim, vr.InitErrorNone
	}

	var shim any
	switch family {
	case "IVRSystem":
		shim = &System{e: e}
	case "IVRCompositor":
		shim = &Compositor{e: e}
	case "IVRInput":
		shim = &Input{e: e}
	case "IVRChaperone":
		shim = &Chaperone{e: e}
	case "IVRApplications":
		shim = &Applications{e: e}
	default:
		return nil, vr.InitErrorInitInterfaceNotFound
	}
	e.shims[family] = shim
	return shim, vr.InitErrorNone
}

// IsInterfaceVersionValid reports whether the engine answers a given
// version string.
func IsInterfaceVersionValid(version string) bool {
	_, ok := interfaceFamily(version)
	return ok
}

// interfaceFamily maps a version-tagged name to its interface family.
// Older supported versions share the newest implementation; the legacy
// ABI only ever extended method tables at the end.
func interfaceFamily(version string) (string, bool) {
	idx := strings.LastIndexByte(version, '_')
	if idx < 0 {
		return "", false
	}
	family := version[:idx]
	for _, v := range vr.SupportedVersions[family] {
		if v == version {
			return family, true
		}
	}
	return "", false
}
