package space

import (
	"fmt"
	"sync"

	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// Resolver owns coordinate-space bookkeeping for one session: the
// reference spaces backing each legacy tracking origin, the recenter
// offset, the tracked device table and the per-frame pose snapshot.
//
// Concurrency follows the engine's reader-writer discipline: a single
// writer calls SyncDevices and UpdateSnapshot once per frame tick, any
// number of readers may query poses concurrently afterwards.
type Resolver struct {
	mu sync.RWMutex

	session xrt.Session
	spaces  map[xrt.ReferenceSpaceType]xrt.Space
	view    xrt.Space

	origin vr.TrackingUniverseOrigin

	// offset is the recenter transform applied to every reported pose
	// in seated and standing universes. Raw never applies it.
	offset    xrt.Posef
	recenters uint64

	table    *deviceTable
	snapshot []vr.TrackedDevicePose
	snapTime xrt.Time
}

// NewResolver creates an unbound resolver. Bind must be called once a
// session exists.
func NewResolver() *Resolver {
	return &Resolver{
		origin: vr.TrackingUniverseStanding,
		offset: xrt.IdentityPose,
		table:  newDeviceTable(),
	}
}

// Bind attaches the resolver to a session and creates one reference
// space per legacy origin plus the head-locked view space.
func (r *Resolver) Bind(session xrt.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	spaces := make(map[xrt.ReferenceSpaceType]xrt.Space, 3)
	for _, ty := range []xrt.ReferenceSpaceType{xrt.ReferenceSpaceLocal, xrt.ReferenceSpaceStage} {
		s, err := session.CreateReferenceSpace(ty, xrt.IdentityPose)
		if err != nil {
			return fmt.Errorf("space: create reference space %d: %w", ty, err)
		}
		spaces[ty] = s
	}
	view, err := session.CreateReferenceSpace(xrt.ReferenceSpaceView, xrt.IdentityPose)
	if err != nil {
		return fmt.Errorf("space: create view space: %w", err)
	}

	r.session = session
	r.spaces = spaces
	r.view = view
	r.offset = xrt.IdentityPose
	r.table = newDeviceTable()
	r.snapshot = nil
	return nil
}

// Unbind drops the session association after teardown.
func (r *Resolver) Unbind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	r.spaces = nil
	r.view = nil
	r.snapshot = nil
}

// SetOrigin selects the legacy tracking universe poses are reported in.
func (r *Resolver) SetOrigin(origin vr.TrackingUniverseOrigin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origin = origin
}

// Origin returns the current legacy tracking universe.
func (r *Resolver) Origin() vr.TrackingUniverseOrigin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.origin
}

// baseSpace maps a legacy origin to its runtime reference space.
// Callers must hold at least the read lock.
func (r *Resolver) baseSpace(origin vr.TrackingUniverseOrigin) xrt.Space {
	switch origin {
	case vr.TrackingUniverseSeated, vr.TrackingUniverseRaw:
		return r.spaces[xrt.ReferenceSpaceLocal]
	default:
		return r.spaces[xrt.ReferenceSpaceStage]
	}
}

// SyncDevices diffs the runtime's tracked device list against the table
// and returns the legacy activation events the diff produced. Indices
// are stable for the whole session (see deviceTable).
func (r *Resolver) SyncDevices() []vr.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil
	}
	infos, gen := r.session.TrackedDevices()
	changes := r.table.sync(infos, gen)

	events := make([]vr.Event, 0, len(changes))
	for _, c := range changes {
		ty := vr.EventTrackedDeviceDeactivated
		if c.connected {
			ty = vr.EventTrackedDeviceActivated
		}
		events = append(events, vr.Event{Type: ty, TrackedDeviceIndex: c.index})
	}
	return events
}

// UpdateSnapshot recomputes every connected device's pose at display
// time t in the current origin. This is the single per-frame write; all
// pose queries read the snapshot without touching the runtime.
func (r *Resolver) UpdateSnapshot(t xrt.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return
	}

	base := r.baseSpace(r.origin)
	applyOffset := r.origin != vr.TrackingUniverseRaw

	if cap(r.snapshot) < len(r.table.devices) {
		r.snapshot = make([]vr.TrackedDevicePose, len(r.table.devices))
	}
	r.snapshot = r.snapshot[:len(r.table.devices)]

	for i := range r.table.devices {
		d := &r.table.devices[i]
		out := &r.snapshot[i]
		*out = vr.TrackedDevicePose{TrackingResult: vr.TrackingResultUninitialized}
		if !d.Connected {
			continue
		}
		out.DeviceIsConnected = true

		space := r.deviceSpaceLocked(d)
		if space == nil {
			continue
		}
		loc, err := r.session.LocateSpace(space, base, t)
		if err != nil {
			continue
		}
		*out = r.convertLocked(loc, applyOffset)
		out.DeviceIsConnected = true
	}
	r.snapTime = t
}

// deviceSpaceLocked lazily creates the runtime space tracking a device.
func (r *Resolver) deviceSpaceLocked(d *Device) xrt.Space {
	if d.space != nil {
		return d.space
	}
	if d.Kind == xrt.DeviceKindHead {
		d.space = r.view
		return d.space
	}
	s, err := r.session.CreateDeviceSpace(d.RuntimeID)
	if err != nil {
		return nil
	}
	d.space = s
	return s
}

// convertLocked turns a runtime location into the legacy pose record.
func (r *Resolver) convertLocked(loc xrt.SpaceLocation, applyOffset bool) vr.TrackedDevicePose {
	if !loc.Valid() {
		return vr.TrackedDevicePose{
			TrackingResult:    vr.TrackingResultUninitialized,
			DeviceIsConnected: true,
		}
	}

	pose := loc.Pose
	vel := loc.LinearVelocity
	angVel := loc.AngularVelocity
	if applyOffset {
		pose = MulPose(r.offset, pose)
		vel = RotateVec(r.offset.Orientation, vel)
		angVel = RotateVec(r.offset.Orientation, angVel)
	}

	result := vr.TrackingResultRunningOK
	if !loc.FullyTracked() {
		result = vr.TrackingResultRunningOutOfRange
	}

	return vr.TrackedDevicePose{
		DeviceToAbsoluteTracking: Matrix34FromPose(pose),
		Velocity:                 vr.HmdVector3{vel.X, vel.Y, vel.Z},
		AngularVelocity:          vr.HmdVector3{angVel.X, angVel.Y, angVel.Z},
		TrackingResult:           result,
		PoseIsValid:              true,
		DeviceIsConnected:        true,
	}
}

// Poses copies the current snapshot into out, padding the remainder with
// disconnected entries. Safe for concurrent use with queries; blocks
// only against the per-frame writer.
func (r *Resolver) Poses(out []vr.TrackedDevicePose) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range out {
		if i < len(r.snapshot) {
			out[i] = r.snapshot[i]
		} else {
			out[i] = vr.TrackedDevicePose{TrackingResult: vr.TrackingResultUninitialized}
		}
	}
}

// PosesInOrigin re-locates every device at the snapshot time in an
// explicitly requested origin. The per-frame snapshot covers only the
// session's current origin; applications may ask for another one on any
// pose query, so this path goes back to the runtime.
func (r *Resolver) PosesInOrigin(origin vr.TrackingUniverseOrigin, out []vr.TrackedDevicePose) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range out {
		out[i] = vr.TrackedDevicePose{TrackingResult: vr.TrackingResultUninitialized}
	}
	if r.session == nil {
		return
	}

	base := r.baseSpace(origin)
	applyOffset := origin != vr.TrackingUniverseRaw

	for i := range r.table.devices {
		if i >= len(out) {
			break
		}
		d := &r.table.devices[i]
		if !d.Connected {
			continue
		}
		out[i].DeviceIsConnected = true

		space := r.deviceSpaceLocked(d)
		if space == nil {
			continue
		}
		loc, err := r.session.LocateSpace(space, base, r.snapTime)
		if err != nil {
			continue
		}
		out[i] = r.convertLocked(loc, applyOffset)
	}
}

// DevicePose returns the snapshot pose of one device.
func (r *Resolver) DevicePose(index vr.TrackedDeviceIndex) vr.TrackedDevicePose {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(index) >= len(r.snapshot) {
		return vr.TrackedDevicePose{TrackingResult: vr.TrackingResultUninitialized}
	}
	return r.snapshot[index]
}

// SnapshotTime returns the display time of the last snapshot.
func (r *Resolver) SnapshotTime() xrt.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapTime
}

// Device returns a copy of the table row at index, and whether the index
// was ever assigned.
func (r *Resolver) Device(index vr.TrackedDeviceIndex) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d := r.table.get(index)
	if d == nil {
		return Device{}, false
	}
	return *d, true
}

// Devices returns a copy of the whole device table.
func (r *Resolver) Devices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, len(r.table.devices))
	copy(out, r.table.devices)
	return out
}

// DeviceIndexForRole resolves a controller role to its stable index.
func (r *Resolver) DeviceIndexForRole(role vr.ControllerRole) vr.TrackedDeviceIndex {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.table.devices {
		d := &r.table.devices[i]
		if d.Role == role && d.Connected {
			return d.Index
		}
	}
	return vr.TrackedDeviceIndexInvalid
}

// RuntimeSpace exposes the reference space backing a legacy origin, for
// callers that build composition layers directly.
func (r *Resolver) RuntimeSpace(origin vr.TrackingUniverseOrigin) xrt.Space {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseSpace(origin)
}

// LocateInOrigin expresses an arbitrary runtime space in a legacy
// tracking universe as a legacy pose record, with the recenter offset
// applied for seated and standing.
func (r *Resolver) LocateInOrigin(sp xrt.Space, origin vr.TrackingUniverseOrigin, t xrt.Time) (vr.TrackedDevicePose, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.session == nil || sp == nil {
		return vr.TrackedDevicePose{}, false
	}
	loc, err := r.session.LocateSpace(sp, r.baseSpace(origin), t)
	if err != nil || !loc.Valid() {
		return vr.TrackedDevicePose{}, false
	}
	return r.convertLocked(loc, origin != vr.TrackingUniverseRaw), true
}

// Recenter recomputes the session offset so the head's current position
// and yaw become the new seated origin. The offset persists until the
// next recenter; pitch and roll never participate.
func (r *Resolver) Recenter(t xrt.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return fmt.Errorf("space: recenter: no session")
	}
	loc, err := r.session.LocateSpace(r.view, r.spaces[xrt.ReferenceSpaceLocal], t)
	if err != nil {
		return fmt.Errorf("space: recenter: %w", err)
	}
	if !loc.Valid() {
		return fmt.Errorf("space: recenter: head pose not valid")
	}

	head := xrt.Posef{
		Orientation: YawOnly(loc.Pose.Orientation),
		Position:    loc.Pose.Position,
	}
	r.offset = InvertPose(head)
	r.recenters++
	return nil
}

// RecenterCount reports how many recenters happened this session.
func (r *Resolver) RecenterCount() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recenters
}

// Offset returns the active recenter offset.
func (r *Resolver) Offset() xrt.Posef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offset
}

// Views locates the stereo views at time t in the current origin, with
// the recenter offset applied.
func (r *Resolver) Views(t xrt.Time) ([2]xrt.View, error) {
	r.mu.RLock()
	session := r.session
	base := r.baseSpace(r.origin)
	offset := r.offset
	applyOffset := r.origin != vr.TrackingUniverseRaw
	r.mu.RUnlock()

	if session == nil {
		return [2]xrt.View{}, fmt.Errorf("space: views: no session")
	}
	views, err := session.LocateViews(base, t)
	if err != nil {
		return [2]xrt.View{}, fmt.Errorf("space: views: %w", err)
	}
	if applyOffset {
		for i := range views {
			views[i].Pose = MulPose(offset, views[i].Pose)
		}
	}
	return views, nil
}
