// Package xrbridge runs applications written against the legacy VR ABI
// on a modern immersive runtime.
//
// # Overview
//
// xrbridge is a translation engine: the application keeps calling the
// legacy interface surface (IVRSystem, IVRCompositor, IVRInput and
// friends) and the engine maps every call onto the runtime's session,
// space, action and frame protocols. The application binary never sees
// the runtime underneath.
//
// # Quick Start
//
//	import "github.com/gogpu/xrbridge"
//
//	if err := xrbridge.Init(xrbridge.InitOptions{}); err != vr.InitErrorNone {
//	    log.Fatal(err)
//	}
//	defer xrbridge.Shutdown()
//
//	sys, _ := xrbridge.GetGenericInterface(vr.IVRSystemVersion)
//	system := sys.(*xrbridge.System)
//	w, h := system.GetRecommendedRenderTargetSize()
//
// # Architecture
//
// The engine is organized into:
//   - Public shims: System, Compositor, Input, Chaperone, Applications
//   - session: runtime instance/session lifecycle state machine
//   - space: tracked-device table and pose conversion
//   - input: action manifests, legacy polled input, skeletal synthesis
//   - compositor: frame loop and texture submission
//   - xrt: the runtime abstraction and registry
//
// # Coordinate System
//
// Both sides share a right-handed, y-up, meters convention; pose
// translation is purely representational (quaternion+position on the
// runtime side, 3x4 row-major matrix on the legacy side).
//
// # Concurrency
//
// Every shim call is safe for concurrent use. The compositor's
// WaitGetPoses is the engine's only long-blocking call and is bounded
// by the configured frame timeout.
package xrbridge

// Version information
const (
	// Version is the current version of the engine
	Version = "0.3.0"

	// RuntimeVersionString is reported to applications that ask for the
	// legacy runtime version.
	RuntimeVersionString = "xrbridge 0.3.0"
)
