package space

import (
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// Device is one row of the session's tracked device table.
type Device struct {
	Index     vr.TrackedDeviceIndex
	Class     vr.DeviceClass
	Role      vr.ControllerRole
	RuntimeID xrt.DeviceID
	Kind      xrt.DeviceKind
	Name      string
	Serial    string
	Connected bool

	// space is the runtime space tracking this device; nil until the
	// resolver creates it.
	space xrt.Space
}

// deviceTable assigns stable legacy indices to runtime devices.
//
// The head is always index 0 and the hands are pinned to 1 and 2 whether
// or not they are connected yet, matching what legacy applications
// assume. Auxiliary trackers take the next free index at the time they
// first appear. An index, once assigned, is reserved for that device for
// the rest of the session even across disconnects.
type deviceTable struct {
	devices []Device
	// byRuntimeID maps a runtime device id to its table slot.
	byRuntimeID map[xrt.DeviceID]int
	// generation of the runtime list last applied.
	generation uint64
}

func newDeviceTable() *deviceTable {
	t := &deviceTable{
		devices: []Device{
			{Index: 0, Class: vr.DeviceClassHMD, Kind: xrt.DeviceKindHead},
			{Index: 1, Class: vr.DeviceClassController, Role: vr.ControllerRoleLeftHand, Kind: xrt.DeviceKindLeftHand},
			{Index: 2, Class: vr.DeviceClassController, Role: vr.ControllerRoleRightHand, Kind: xrt.DeviceKindRightHand},
		},
		byRuntimeID: make(map[xrt.DeviceID]int),
	}
	return t
}

// change records one connection-state edge produced by sync.
type change struct {
	index     vr.TrackedDeviceIndex
	connected bool
}

// sync diffs the runtime device list against the table. Connection edges
// are returned so the caller can surface legacy activation events.
// Indices are never reassigned: a reconnecting device keeps its slot, a
// departed device keeps its slot reserved.
func (t *deviceTable) sync(infos []xrt.TrackedDeviceInfo, generation uint64) []change {
	if generation != 0 && generation == t.generation {
		return nil
	}
	t.generation = generation

	seen := make(map[int]bool, len(infos))
	var changes []change

	for _, info := range infos {
		slot, ok := t.slotFor(info)
		if slot < 0 {
			continue // table full; device stays invisible
		}
		d := &t.devices[slot]
		if !ok {
			d.RuntimeID = info.ID
			d.Name = info.Name
			d.Serial = info.Serial
			t.byRuntimeID[info.ID] = slot
		}
		seen[slot] = true
		if d.Connected != info.Connected {
			d.Connected = info.Connected
			changes = append(changes, change{index: d.Index, connected: info.Connected})
		}
	}

	// Anything not in the runtime list anymore is disconnected, but its
	// index stays reserved.
	for i := range t.devices {
		d := &t.devices[i]
		if d.Connected && !seen[i] && d.RuntimeID != 0 {
			d.Connected = false
			d.space = nil
			changes = append(changes, change{index: d.Index, connected: false})
		}
	}

	return changes
}

// slotFor finds or allocates the table slot for a runtime device.
// ok reports whether the device was already known.
func (t *deviceTable) slotFor(info xrt.TrackedDeviceInfo) (int, bool) {
	if slot, ok := t.byRuntimeID[info.ID]; ok {
		return slot, true
	}

	switch info.Kind {
	case xrt.DeviceKindHead:
		return 0, false
	case xrt.DeviceKindLeftHand:
		return 1, false
	case xrt.DeviceKindRightHand:
		return 2, false
	}

	if len(t.devices) >= int(vr.MaxTrackedDeviceCount) {
		return -1, false
	}
	t.devices = append(t.devices, Device{
		Index:     vr.TrackedDeviceIndex(len(t.devices)),
		Class:     vr.DeviceClassGenericTracker,
		Kind:      info.Kind,
		RuntimeID: info.ID,
	})
	return len(t.devices) - 1, false
}

// get returns the device at index, or nil when the index was never
// assigned.
func (t *deviceTable) get(index vr.TrackedDeviceIndex) *Device {
	if int(index) >= len(t.devices) {
		return nil
	}
	return &t.devices[index]
}
