package xrbridge

import (
	"math"
	"time"

	"github.com/gogpu/xrbridge/input/profiles"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// System implements the IVRSystem interface surface: display geometry,
// device pose queries, property tables, the event queue and the legacy
// polled controller input.
type System struct {
	e *engine
}

// defaultFov is reported before the first frame has located the views.
var defaultFov = xrt.Fov{
	AngleLeft: -0.7854, AngleRight: 0.7854,
	AngleUp: 0.7854, AngleDown: -0.7854,
}

// GetRecommendedRenderTargetSize returns the per-eye render target size
// the runtime asks for.
func (s *System) GetRecommendedRenderTargetSize() (width, height uint32) {
	props := s.e.mgr.Properties()
	return props.RecommendedRenderWidth, props.RecommendedRenderHeight
}

// eyeFov returns the most recent runtime field of view for one eye.
func (s *System) eyeFov(eye vr.Eye) xrt.Fov {
	views, err := s.e.resolver.Views(s.e.resolver.SnapshotTime())
	if err != nil {
		return defaultFov
	}
	return views[eye].Fov
}

// GetProjectionRaw returns the raw projection frustum tangents. Legacy
// convention: y grows downward, so top is negative.
func (s *System) GetProjectionRaw(eye vr.Eye) (left, right, top, bottom float32) {
	fov := s.eyeFov(eye)
	left = tan32(fov.AngleLeft)
	right = tan32(fov.AngleRight)
	top = -tan32(fov.AngleUp)
	bottom = -tan32(fov.AngleDown)
	return
}

// GetProjectionMatrix composes the projection for one eye from the raw
// frustum, matching the original runtime's matrix layout.
func (s *System) GetProjectionMatrix(eye vr.Eye, near, far float32) vr.HmdMatrix44 {
	left, right, top, bottom := s.GetProjectionRaw(eye)

	idx := 1 / (right - left)
	idy := 1 / (bottom - top)
	idz := 1 / (far - near)
	sx := right + left
	sy := bottom + top

	var m vr.HmdMatrix44
	m[0][0] = 2 * idx
	m[0][2] = sx * idx
	m[1][1] = 2 * idy
	m[1][2] = sy * idy
	m[2][2] = -far * idz
	m[2][3] = -far * near * idz
	m[3][2] = -1
	return m
}

// ipd derives the interpupillary distance from the located views, with
// the conventional 64mm default before tracking starts.
func (s *System) ipd() float32 {
	views, err := s.e.resolver.Views(s.e.resolver.SnapshotTime())
	if err != nil {
		return 0.064
	}
	dx := views[1].Pose.Position.X - views[0].Pose.Position.X
	dy := views[1].Pose.Position.Y - views[0].Pose.Position.Y
	dz := views[1].Pose.Position.Z - views[0].Pose.Position.Z
	d := float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
	if d <= 0 {
		return 0.064
	}
	return d
}

// GetEyeToHeadTransform returns the per-eye offset from the head pose.
func (s *System) GetEyeToHeadTransform(eye vr.Eye) vr.HmdMatrix34 {
	half := s.ipd() / 2
	if eye == vr.EyeLeft {
		half = -half
	}
	return space.Matrix34FromPose(xrt.Posef{
		Orientation: xrt.IdentityQuaternion,
		Position:    xrt.Vector3f{X: half},
	})
}

// ComputeDistortion reports identity distortion: the runtime underneath
// applies its own lens correction after submission.
func (s *System) ComputeDistortion(eye vr.Eye, u, v float32) (vr.DistortionCoordinates, bool) {
	return vr.DistortionCoordinates{
		Red:   [2]float32{u, v},
		Green: [2]float32{u, v},
		Blue:  [2]float32{u, v},
	}, true
}

// GetDeviceToAbsoluteTrackingPose fills poses for every tracked device
// in the requested origin. Poses come from the frame snapshot when the
// origin matches the session's current one; other origins re-locate
// against the runtime at the snapshot time.
//
// predictedSecondsToPhotons is accepted and ignored: prediction is the
// runtime's job and is already folded into the snapshot display time.
func (s *System) GetDeviceToAbsoluteTrackingPose(origin vr.TrackingUniverseOrigin, predictedSecondsToPhotons float32, poses []vr.TrackedDevicePose) {
	_ = predictedSecondsToPhotons
	if origin == s.e.resolver.Origin() {
		s.e.resolver.Poses(poses)
		return
	}
	s.e.resolver.PosesInOrigin(origin, poses)
}

// GetTrackedDeviceClass returns the class of a device index, Invalid for
// indices never assigned.
func (s *System) GetTrackedDeviceClass(index vr.TrackedDeviceIndex) vr.DeviceClass {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return vr.DeviceClassInvalid
	}
	return d.Class
}

// IsTrackedDeviceConnected reports whether the device at index is
// currently connected.
func (s *System) IsTrackedDeviceConnected(index vr.TrackedDeviceIndex) bool {
	d, ok := s.e.resolver.Device(index)
	return ok && d.Connected
}

// GetTrackedDeviceIndexForControllerRole resolves a hand role to its
// stable device index.
func (s *System) GetTrackedDeviceIndexForControllerRole(role vr.ControllerRole) vr.TrackedDeviceIndex {
	return s.e.resolver.DeviceIndexForRole(role)
}

// GetControllerRoleForTrackedDeviceIndex returns the hand a controller
// index is assigned to.
func (s *System) GetControllerRoleForTrackedDeviceIndex(index vr.TrackedDeviceIndex) vr.ControllerRole {
	d, ok := s.e.resolver.Device(index)
	if !ok || d.Class != vr.DeviceClassController {
		return vr.ControllerRoleInvalid
	}
	return d.Role
}

// PollNextEvent pops one event from the legacy queue. ok is false when
// the queue is empty.
func (s *System) PollNextEvent() (vr.Event, bool) {
	events := s.e.mgr.PumpEvents()
	if len(events) == 0 {
		return vr.Event{}, false
	}
	// Requeue everything but the first; the manager keeps order.
	for _, ev := range events[1:] {
		s.e.mgr.QueueEvent(ev)
	}
	return events[0], true
}

// GetControllerState answers the legacy button/axis poll.
func (s *System) GetControllerState(index vr.TrackedDeviceIndex) (vr.ControllerState, bool) {
	return s.e.input.ControllerState(index)
}

// GetControllerStateWithPose additionally resolves the controller's grip
// pose in the requested origin.
func (s *System) GetControllerStateWithPose(origin vr.TrackingUniverseOrigin, index vr.TrackedDeviceIndex) (vr.ControllerState, vr.TrackedDevicePose, bool) {
	state, ok := s.e.input.ControllerState(index)
	if !ok {
		return vr.ControllerState{}, vr.TrackedDevicePose{}, false
	}
	pose, ok := s.e.input.HandPose(index, origin, false)
	if !ok {
		pose = s.e.resolver.DevicePose(index)
	}
	return state, pose, true
}

// TriggerHapticPulse plays a short vibration on a controller. The axis
// argument is part of the legacy signature and has no meaning under the
// action model.
func (s *System) TriggerHapticPulse(index vr.TrackedDeviceIndex, axis uint32, duration time.Duration) {
	_ = axis
	s.e.input.HapticPulse(index, duration)
}

// ResetSeatedZeroPose recenters the seated origin on the current head
// position and yaw.
func (s *System) ResetSeatedZeroPose() {
	if err := s.e.resolver.Recenter(s.e.resolver.SnapshotTime()); err != nil {
		Logger().Warn("recenter failed", "err", err)
		return
	}
	s.e.mgr.QueueEvent(vr.Event{Type: vr.EventSeatedZeroPoseReset})
}

// IsInputAvailable reports whether the application currently has input
// focus.
func (s *System) IsInputAvailable() bool {
	return s.e.mgr.State() == session.SessionFocused
}

// ShouldApplicationPause reports whether the application lost focus and
// should pause simulation.
func (s *System) ShouldApplicationPause() bool {
	return !s.IsInputAvailable()
}

// AcknowledgeQuitExiting confirms a quit event; the engine then asks the
// runtime to wind the session down.
func (s *System) AcknowledgeQuitExiting() {
	if sess := s.e.mgr.Session(); sess != nil {
		if err := sess.RequestExit(); err != nil {
			Logger().Debug("request exit failed", "err", err)
		}
	}
}

// GetRuntimeVersion returns the engine's runtime version string.
func (s *System) GetRuntimeVersion() string {
	return RuntimeVersionString
}

// profileFor returns the interaction profile answering property queries
// for a device, falling back to the generic table.
func (s *System) profileFor(d space.Device) profiles.Profile {
	sess := s.e.mgr.Session()
	if sess != nil {
		hand := profiles.HandLeft
		if d.Role == vr.ControllerRoleRightHand {
			hand = profiles.HandRight
		}
		if p := profiles.Lookup(sess.CurrentInteractionProfile(profiles.HandPath(hand))); p != nil {
			return p
		}
	}
	return profiles.Fallback()
}

// handSlot maps a controller role to the per-hand property columns.
func handSlot(role vr.ControllerRole) int {
	if role == vr.ControllerRoleRightHand {
		return 1
	}
	return 0
}

// GetStringTrackedDeviceProperty answers string property queries from
// runtime properties and the interaction profile tables.
func (s *System) GetStringTrackedDeviceProperty(index vr.TrackedDeviceIndex, prop vr.DeviceProperty) (string, vr.PropertyError) {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return "", vr.PropertyErrorInvalidDevice
	}
	sys := s.e.mgr.Properties()

	if d.Class == vr.DeviceClassHMD {
		switch prop {
		case vr.PropTrackingSystemNameString:
			return "xrbridge", vr.PropertySuccess
		case vr.PropModelNumberString:
			return sys.SystemName, vr.PropertySuccess
		case vr.PropSerialNumberString:
			return "XRB-HMD-0", vr.PropertySuccess
		case vr.PropManufacturerNameString:
			return sys.SystemName, vr.PropertySuccess
		case vr.PropRenderModelNameString:
			return "generic_hmd", vr.PropertySuccess
		}
		return "", vr.PropertyErrorUnknownProperty
	}

	if d.Class != vr.DeviceClassController {
		switch prop {
		case vr.PropSerialNumberString:
			if d.Serial != "" {
				return d.Serial, vr.PropertySuccess
			}
		case vr.PropModelNumberString:
			if d.Name != "" {
				return d.Name, vr.PropertySuccess
			}
		}
		return "", vr.PropertyErrorUnknownProperty
	}

	p := s.profileFor(d).Properties()
	slot := handSlot(d.Role)
	switch prop {
	case vr.PropTrackingSystemNameString:
		return p.TrackingSystemName, vr.PropertySuccess
	case vr.PropModelNumberString:
		return p.Model[slot], vr.PropertySuccess
	case vr.PropSerialNumberString:
		if d.Serial != "" {
			return d.Serial, vr.PropertySuccess
		}
		return p.Serial[slot], vr.PropertySuccess
	case vr.PropRenderModelNameString:
		return p.RenderModelName[slot], vr.PropertySuccess
	case vr.PropManufacturerNameString:
		return p.ManufacturerName, vr.PropertySuccess
	case vr.PropRegisteredDeviceTypeString:
		return p.RegisteredType[slot], vr.PropertySuccess
	case vr.PropControllerTypeString:
		return p.ControllerType, vr.PropertySuccess
	case vr.PropInputProfilePathString:
		return s.profileFor(d).Path(), vr.PropertySuccess
	default:
		return "", vr.PropertyErrorUnknownProperty
	}
}

// GetFloatTrackedDeviceProperty answers float property queries.
func (s *System) GetFloatTrackedDeviceProperty(index vr.TrackedDeviceIndex, prop vr.DeviceProperty) (float32, vr.PropertyError) {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return 0, vr.PropertyErrorInvalidDevice
	}
	switch prop {
	case vr.PropDisplayFrequencyFloat:
		if d.Class != vr.DeviceClassHMD {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		f := s.e.mgr.Properties().DisplayFrequency
		if f <= 0 {
			f = 90
		}
		return f, vr.PropertySuccess
	case vr.PropUserIpdMetersFloat:
		if d.Class != vr.DeviceClassHMD {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return s.ipd(), vr.PropertySuccess
	case vr.PropSecondsFromVsyncToPhotonsFloat:
		return 0.011, vr.PropertySuccess
	case vr.PropDeviceBatteryPercentageFloat:
		return 0, vr.PropertyErrorValueNotProvidedByDevice
	default:
		return 0, vr.PropertyErrorUnknownProperty
	}
}

// GetInt32TrackedDeviceProperty answers int32 property queries.
func (s *System) GetInt32TrackedDeviceProperty(index vr.TrackedDeviceIndex, prop vr.DeviceProperty) (int32, vr.PropertyError) {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return 0, vr.PropertyErrorInvalidDevice
	}
	switch prop {
	case vr.PropDeviceClassInt32:
		return int32(d.Class), vr.PropertySuccess
	case vr.PropControllerRoleHintInt32:
		return int32(d.Role), vr.PropertySuccess
	case vr.PropExpectedControllerCountInt32:
		if d.Class != vr.DeviceClassHMD {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return 2, vr.PropertySuccess
	case vr.PropAxis0TypeInt32:
		if d.Class != vr.DeviceClassController {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return int32(s.profileFor(d).Properties().MainAxis), vr.PropertySuccess
	case vr.PropAxis1TypeInt32:
		if d.Class != vr.DeviceClassController {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return int32(vr.ControllerAxisTrigger), vr.PropertySuccess
	case vr.PropAxis2TypeInt32:
		if d.Class != vr.DeviceClassController {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return int32(vr.ControllerAxisNone), vr.PropertySuccess
	default:
		return 0, vr.PropertyErrorUnknownProperty
	}
}

// GetUint64TrackedDeviceProperty answers uint64 property queries.
func (s *System) GetUint64TrackedDeviceProperty(index vr.TrackedDeviceIndex, prop vr.DeviceProperty) (uint64, vr.PropertyError) {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return 0, vr.PropertyErrorInvalidDevice
	}
	switch prop {
	case vr.PropSupportedButtonsUint64:
		if d.Class != vr.DeviceClassController {
			return 0, vr.PropertyErrorWrongDeviceClass
		}
		return s.profileFor(d).Properties().SupportedButtons, vr.PropertySuccess
	default:
		return 0, vr.PropertyErrorUnknownProperty
	}
}

// GetBoolTrackedDeviceProperty answers bool property queries.
func (s *System) GetBoolTrackedDeviceProperty(index vr.TrackedDeviceIndex, prop vr.DeviceProperty) (bool, vr.PropertyError) {
	d, ok := s.e.resolver.Device(index)
	if !ok {
		return false, vr.PropertyErrorInvalidDevice
	}
	switch prop {
	case vr.PropDeviceIsWirelessBool:
		return d.Class == vr.DeviceClassController, vr.PropertySuccess
	case vr.PropDeviceIsChargingBool:
		return false, vr.PropertyErrorValueNotProvidedByDevice
	case vr.PropDeviceProvidesBatteryStatusBool:
		return false, vr.PropertySuccess
	case vr.PropNeverTracked:
		return false, vr.PropertySuccess
	default:
		return false, vr.PropertyErrorUnknownProperty
	}
}

func tan32(a float32) float32 {
	return float32(math.Tan(float64(a)))
}
