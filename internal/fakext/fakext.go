// Package fakext is an in-memory runtime used by tests and the demo
// binary. It registers itself under the name "fakext" and drives
// sessions through the full lifecycle without any hardware: three
// devices are connected from the start, frame waits return immediately
// with monotonic timestamps, and tests can inject input state, device
// changes and session loss.
package fakext

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/xrbridge/xrt"
)

// Name is the registry name of the fake runtime.
const Name = "fakext"

func init() {
	xrt.Register(Name, func() xrt.Runtime { return New() })
}

// Runtime implements xrt.Runtime.
type Runtime struct {
	mu       sync.Mutex
	instance *Instance
}

// New creates an unconnected fake runtime.
func New() *Runtime { return &Runtime{} }

// Name implements xrt.Runtime.
func (r *Runtime) Name() string { return Name }

// CreateInstance implements xrt.Runtime. Any backend name is accepted.
func (r *Runtime) CreateInstance(backend string) (xrt.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst := &Instance{backend: backend}
	r.instance = inst
	return inst, nil
}

// Instance implements xrt.Instance.
type Instance struct {
	mu        sync.Mutex
	backend   string
	destroyed bool
	session   *Session
}

// RuntimeName implements xrt.Instance.
func (i *Instance) RuntimeName() string { return "Fake Composite Runtime 1.0" }

// SystemProperties implements xrt.Instance.
func (i *Instance) SystemProperties() (xrt.SystemProperties, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return xrt.SystemProperties{}, fmt.Errorf("fakext: instance destroyed")
	}
	return xrt.SystemProperties{
		SystemName:              "Fake HMD",
		RecommendedRenderWidth:  1664,
		RecommendedRenderHeight: 1856,
		DisplayFrequency:        90,
		SupportsTrackers:        true,
	}, nil
}

// CreateSession implements xrt.Instance.
func (i *Instance) CreateSession(binding xrt.GraphicsBinding) (xrt.Session, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return nil, fmt.Errorf("fakext: instance destroyed")
	}
	if i.session != nil && !i.session.destroyed {
		return nil, fmt.Errorf("fakext: session already exists")
	}
	s := newSession(binding)
	i.session = s
	return s, nil
}

// Destroy implements xrt.Instance.
func (i *Instance) Destroy() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.destroyed = true
	return nil
}

// Session implements xrt.Session with fully scriptable state.
type Session struct {
	mu sync.Mutex

	binding   xrt.GraphicsBinding
	destroyed bool
	lost      bool
	began     bool

	events []xrt.Event

	devices    []xrt.TrackedDeviceInfo
	generation uint64
	poses      map[xrt.DeviceID]xrt.Posef // stage coordinates

	sets     []*ActionSet
	attached bool
	suggested map[string][]xrt.SuggestedBinding
	profile   string

	swapchains []*Swapchain

	now        xrt.Time
	period     time.Duration
	frameOpen  bool
	waitGate   chan struct{} // non-nil blocks the next WaitFrame

	// EndedFrames records every EndFrame submission for assertions.
	EndedFrames []EndedFrame
	// Haptics records every haptic trigger.
	Haptics []HapticEvent
}

// EndedFrame is one recorded EndFrame call.
type EndedFrame struct {
	Time   xrt.Time
	Layers []xrt.CompositionLayer
}

// HapticEvent is one recorded vibration.
type HapticEvent struct {
	Action    string
	Subaction string
	Duration  time.Duration
	Frequency float32
	Amplitude float32
}

const (
	headID  xrt.DeviceID = 1
	leftID  xrt.DeviceID = 2
	rightID xrt.DeviceID = 3
)

func newSession(binding xrt.GraphicsBinding) *Session {
	s := &Session{
		binding: binding,
		period:  time.Second / 90,
		now:     xrt.Time(time.Millisecond),
		profile: "/interaction_profiles/valve/index_controller",
		devices: []xrt.TrackedDeviceInfo{
			{ID: headID, Kind: xrt.DeviceKindHead, Name: "Fake HMD", Serial: "FAKE-HMD-0", Connected: true},
			{ID: leftID, Kind: xrt.DeviceKindLeftHand, Name: "Fake Controller", Serial: "FAKE-L-0", Connected: true},
			{ID: rightID, Kind: xrt.DeviceKindRightHand, Name: "Fake Controller", Serial: "FAKE-R-0", Connected: true},
		},
		generation: 1,
		poses: map[xrt.DeviceID]xrt.Posef{
			headID:  {Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{Y: 1.6}},
			leftID:  {Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{X: -0.2, Y: 1.2, Z: -0.3}},
			rightID: {Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{X: 0.2, Y: 1.2, Z: -0.3}},
		},
		suggested: make(map[string][]xrt.SuggestedBinding),
	}
	s.events = append(s.events,
		xrt.EventSessionStateChanged{State: xrt.SessionStateIdle, Time: s.now},
		xrt.EventSessionStateChanged{State: xrt.SessionStateReady, Time: s.now},
	)
	return s
}

// --- test hooks --------------------------------------------------------

// PushEvent queues a raw runtime event.
func (s *Session) PushEvent(ev xrt.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// SetDevicePose repositions a device in stage coordinates.
func (s *Session) SetDevicePose(id xrt.DeviceID, pose xrt.Posef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poses[id] = pose
}

// HeadID, LeftID and RightID expose the built-in device identifiers.
func (s *Session) HeadID() xrt.DeviceID  { return headID }
func (s *Session) LeftID() xrt.DeviceID  { return leftID }
func (s *Session) RightID() xrt.DeviceID { return rightID }

// ConnectTracker adds an auxiliary tracked device and bumps the device
// generation.
func (s *Session) ConnectTracker(serial string) xrt.DeviceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := xrt.DeviceID(10 + len(s.devices))
	s.devices = append(s.devices, xrt.TrackedDeviceInfo{
		ID: id, Kind: xrt.DeviceKindTracker, Name: "Fake Tracker", Serial: serial, Connected: true,
	})
	s.poses[id] = xrt.Posef{Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{Y: 1.0}}
	s.generation++
	s.events = append(s.events, xrt.EventDevicesChanged{})
	return id
}

// SetConnected flips a device's connection state.
func (s *Session) SetConnected(id xrt.DeviceID, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.devices {
		if s.devices[i].ID == id {
			s.devices[i].Connected = connected
		}
	}
	s.generation++
	s.events = append(s.events, xrt.EventDevicesChanged{})
}

// Lose marks the session lost; every subsequent blocking call fails.
func (s *Session) Lose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lost = true
	s.events = append(s.events, xrt.EventSessionStateChanged{State: xrt.SessionStateLossPending, Time: s.now})
	if s.waitGate != nil {
		close(s.waitGate)
		s.waitGate = nil
	}
}

// GateNextWait makes the next WaitFrame block until Lose or ReleaseWait
// is called. Used to test loss during a frame wait.
func (s *Session) GateNextWait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitGate = make(chan struct{})
}

// ReleaseWait unblocks a gated WaitFrame without losing the session.
func (s *Session) ReleaseWait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waitGate != nil {
		close(s.waitGate)
		s.waitGate = nil
	}
}

// SetInteractionProfile changes the reported profile and emits the
// change event.
func (s *Session) SetInteractionProfile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = path
	s.events = append(s.events, xrt.EventInteractionProfileChanged{})
}

// SuggestedFor returns the bindings recorded for a profile path.
func (s *Session) SuggestedFor(profile string) []xrt.SuggestedBinding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggested[profile]
}

// Attached reports whether AttachActionSets was called.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// --- xrt.Session -------------------------------------------------------

// PollEvent implements xrt.Session.
func (s *Session) PollEvent() (xrt.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

// Begin implements xrt.Session. The fake runtime grants focus right
// away.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.ErrSessionLost
	}
	if s.began {
		return fmt.Errorf("fakext: session already began")
	}
	s.began = true
	s.events = append(s.events,
		xrt.EventSessionStateChanged{State: xrt.SessionStateSynchronized, Time: s.now},
		xrt.EventSessionStateChanged{State: xrt.SessionStateVisible, Time: s.now},
		xrt.EventSessionStateChanged{State: xrt.SessionStateFocused, Time: s.now},
	)
	return nil
}

// RequestExit implements xrt.Session.
func (s *Session) RequestExit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, xrt.EventSessionStateChanged{State: xrt.SessionStateStopping, Time: s.now})
	return nil
}

// End implements xrt.Session.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.began = false
	s.events = append(s.events, xrt.EventSessionStateChanged{State: xrt.SessionStateExiting, Time: s.now})
	return nil
}

// Destroy implements xrt.Session.
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
	return nil
}

// TrackedDevices implements xrt.Session.
func (s *Session) TrackedDevices() ([]xrt.TrackedDeviceInfo, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]xrt.TrackedDeviceInfo, len(s.devices))
	copy(out, s.devices)
	return out, s.generation
}

// CurrentInteractionProfile implements xrt.Session.
func (s *Session) CurrentInteractionProfile(topLevelPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SuggestBindings implements xrt.Session.
func (s *Session) SuggestBindings(profilePath string, bindings []xrt.SuggestedBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached {
		return fmt.Errorf("fakext: action sets already attached")
	}
	s.suggested[profilePath] = append([]xrt.SuggestedBinding(nil), bindings...)
	return nil
}

// AttachActionSets implements xrt.Session.
func (s *Session) AttachActionSets(sets ...xrt.ActionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached {
		return fmt.Errorf("fakext: action sets already attached")
	}
	s.attached = true
	return nil
}

// WaitFrame implements xrt.Session. Returns immediately unless gated.
func (s *Session) WaitFrame() (xrt.FrameTiming, error) {
	s.mu.Lock()
	gate := s.waitGate
	s.waitGate = nil
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.FrameTiming{}, xrt.ErrSessionLost
	}
	if s.destroyed {
		return xrt.FrameTiming{}, fmt.Errorf("fakext: session destroyed")
	}
	s.now += xrt.Time(s.period)
	return xrt.FrameTiming{
		PredictedDisplayTime:   s.now,
		PredictedDisplayPeriod: s.period,
		ShouldRender:           true,
	}, nil
}

// BeginFrame implements xrt.Session.
func (s *Session) BeginFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.ErrSessionLost
	}
	s.frameOpen = true
	return nil
}

// EndFrame implements xrt.Session.
func (s *Session) EndFrame(t xrt.Time, layers []xrt.CompositionLayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.ErrSessionLost
	}
	if !s.frameOpen {
		return xrt.ErrFrameDiscarded
	}
	s.frameOpen = false
	s.EndedFrames = append(s.EndedFrames, EndedFrame{
		Time:   t,
		Layers: append([]xrt.CompositionLayer(nil), layers...),
	})
	return nil
}

// FrameCount returns how many frames were ended.
func (s *Session) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.EndedFrames)
}

// Now returns the session clock.
func (s *Session) Now() xrt.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
