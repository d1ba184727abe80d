// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrt

import (
	"errors"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Common runtime errors. Runtimes return these sentinels (possibly
// wrapped) so the engine can map them to legacy result codes through a
// fixed table.
var (
	// ErrSessionLost means the session is unrecoverable and must be
	// recreated from a fresh instance.
	ErrSessionLost = errors.New("xrt: session lost")

	// ErrSessionNotReady means the operation requires a session state
	// the runtime has not reached yet.
	ErrSessionNotReady = errors.New("xrt: session not ready")

	// ErrFrameDiscarded means the runtime dropped the frame pairing;
	// the caller should not submit layers for it.
	ErrFrameDiscarded = errors.New("xrt: frame discarded")

	// ErrSwapchainImageBusy means Acquire was called while all ring
	// images are still held by the compositor.
	ErrSwapchainImageBusy = errors.New("xrt: swapchain image busy")

	// ErrUnsupported means the runtime does not implement an optional
	// capability (tracker enumeration, texture import).
	ErrUnsupported = errors.New("xrt: unsupported")
)

// Runtime creates instances. Implementations register themselves with
// Register from an init function.
type Runtime interface {
	// Name returns the registry identifier (e.g. "fakext").
	Name() string

	// CreateInstance connects to the runtime and negotiates the
	// extensions required by the given graphics backend name.
	CreateInstance(backend string) (Instance, error)
}

// Instance is a connected runtime instance.
type Instance interface {
	// RuntimeName is the human-readable runtime identification.
	RuntimeName() string

	// SystemProperties queries the attached display system. Fails until
	// a headset is present.
	SystemProperties() (SystemProperties, error)

	// CreateSession starts a session using the supplied graphics
	// binding. At most one session per instance.
	CreateSession(binding GraphicsBinding) (Session, error)

	// Destroy tears the instance down. The instance must not be used
	// afterwards.
	Destroy() error
}

// Event is a runtime event drained via Session.PollEvent.
type Event interface{ isEvent() }

// EventSessionStateChanged reports a lifecycle transition.
type EventSessionStateChanged struct {
	State SessionState
	Time  Time
}

// EventDevicesChanged reports that the tracked device list changed and
// should be re-enumerated.
type EventDevicesChanged struct{}

// EventInteractionProfileChanged reports that suggested bindings were
// re-resolved against a different controller profile.
type EventInteractionProfileChanged struct{}

// EventReferenceSpaceChangePending reports an upcoming origin change for
// a reference space (e.g. runtime-side recenter).
type EventReferenceSpaceChangePending struct {
	Space ReferenceSpaceType
}

// EventInstanceLossPending reports that the whole instance is about to
// become unusable.
type EventInstanceLossPending struct {
	Time Time
}

func (EventSessionStateChanged) isEvent()        {}
func (EventDevicesChanged) isEvent()             {}
func (EventInteractionProfileChanged) isEvent()  {}
func (EventReferenceSpaceChangePending) isEvent() {}
func (EventInstanceLossPending) isEvent()        {}

// Space is an opaque locatable space handle owned by a session.
type Space interface {
	// Destroy releases the space.
	Destroy() error
}

// Session is a running runtime session.
//
// Frame-loop calls (WaitFrame, BeginFrame, EndFrame) must come from one
// thread; everything else is safe for concurrent use.
type Session interface {
	// PollEvent drains one pending event; ok is false when the queue is
	// empty. Never blocks.
	PollEvent() (ev Event, ok bool)

	// Begin transitions the session into the running state. Only legal
	// once the runtime reported SessionStateReady.
	Begin() error

	// RequestExit asks the runtime to wind the session down.
	RequestExit() error

	// End completes a stop requested by the runtime.
	End() error

	// Destroy releases the session and every resource created from it.
	Destroy() error

	// CreateReferenceSpace creates a space for a semantic origin with a
	// fixed pose offset from that origin.
	CreateReferenceSpace(ty ReferenceSpaceType, offset Posef) (Space, error)

	// TrackedDevices enumerates the runtime's current device list along
	// with a generation counter that increments on topology changes.
	TrackedDevices() ([]TrackedDeviceInfo, uint64)

	// CreateDeviceSpace creates a space tracking one enumerated device.
	// Runtimes without tracker support return ErrUnsupported for
	// non-hand, non-head devices.
	CreateDeviceSpace(id DeviceID) (Space, error)

	// LocateSpace expresses space in base at time t.
	LocateSpace(space, base Space, t Time) (SpaceLocation, error)

	// LocateViews returns the stereo eye views in base at time t.
	LocateViews(base Space, t Time) ([2]View, error)

	// CreateActionSet registers a named action set with a sync priority.
	CreateActionSet(name, localized string, priority uint32) (ActionSet, error)

	// SuggestBindings proposes bindings for one interaction profile
	// path. Legal only before AttachActionSets.
	SuggestBindings(profilePath string, bindings []SuggestedBinding) error

	// AttachActionSets finalizes action setup. Once attached, sets and
	// actions are immutable for the session's lifetime.
	AttachActionSets(sets ...ActionSet) error

	// Sync updates the state of all actions in the given sets. The
	// engine calls this exactly once per frame tick.
	Sync(sets ...ActionSet) error

	// CurrentInteractionProfile reports the active profile path bound
	// for a top-level user path ("/user/hand/left"), or "" if none.
	CurrentInteractionProfile(topLevelPath string) string

	// CreateSwapchain allocates an image ring for compositor submission.
	CreateSwapchain(info SwapchainInfo) (Swapchain, error)

	// WaitFrame blocks until the runtime is ready for a new frame and
	// returns its predicted timing. Returns ErrSessionLost immediately
	// if the session is lost while waiting.
	WaitFrame() (FrameTiming, error)

	// BeginFrame marks the start of rendering for the waited frame.
	BeginFrame() error

	// EndFrame submits the frame's composition layers for display at t.
	EndFrame(t Time, layers []CompositionLayer) error
}

// ActionKind is the data kind of an action.
type ActionKind int32

const (
	ActionKindBoolean ActionKind = iota
	ActionKindFloat
	ActionKindVector2
	ActionKindPose
	ActionKindVibration
)

func (k ActionKind) String() string {
	switch k {
	case ActionKindBoolean:
		return "boolean"
	case ActionKindFloat:
		return "float"
	case ActionKindVector2:
		return "vector2"
	case ActionKindPose:
		return "pose"
	case ActionKindVibration:
		return "vibration"
	default:
		return "invalid"
	}
}

// ActionSet groups actions that are synced together.
type ActionSet interface {
	Name() string

	// CreateAction adds an action. Subaction paths ("/user/hand/left")
	// allow per-hand state queries on one action.
	CreateAction(name, localized string, kind ActionKind, subactions []string) (Action, error)

	Destroy() error
}

// BooleanState is a digital action sample.
type BooleanState struct {
	Current    bool
	Changed    bool
	Active     bool
	LastChange Time
}

// FloatState is a scalar action sample.
type FloatState struct {
	Current    float32
	Changed    bool
	Active     bool
	LastChange Time
}

// Vector2State is a 2-axis action sample.
type Vector2State struct {
	X, Y       float32
	Changed    bool
	Active     bool
	LastChange Time
}

// Action is a created action handle. State accessors are only meaningful
// between Sync calls; the engine snapshots them once per frame.
type Action interface {
	Name() string
	Kind() ActionKind

	BooleanState(subaction string) (BooleanState, error)
	FloatState(subaction string) (FloatState, error)
	Vector2State(subaction string) (Vector2State, error)

	// CreateSpace creates a locatable space for a pose action.
	CreateSpace(subaction string, offset Posef) (Space, error)

	// ApplyHaptic plays a vibration on an output action.
	ApplyHaptic(subaction string, duration time.Duration, frequency, amplitude float32) error
}

// SuggestedBinding pairs an action with a physical input path under one
// interaction profile.
type SuggestedBinding struct {
	Action Action
	Path   string
}

// SwapchainInfo describes an image ring to allocate.
type SwapchainInfo struct {
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	SampleCount uint32
}

// Swapchain is a ring of runtime-owned images. The compositor bridge
// exclusively owns an image between Acquire and Release.
type Swapchain interface {
	Info() SwapchainInfo
	ImageCount() int

	// Acquire reserves the next image index for writing.
	Acquire() (int, error)

	// Wait blocks until the acquired image is safe to write, bounded by
	// timeout.
	Wait(timeout time.Duration) error

	// Release hands the acquired image back for presentation.
	Release() error

	// Texture returns the wgpu texture backing an image, or nil when
	// the session runs on a headless binding.
	Texture(index int) hal.Texture

	// Upload replaces an image's contents from a CPU image. Staging
	// path for headless bindings and format fallbacks.
	Upload(index int, img *image.RGBA) error

	Destroy() error
}

// TextureImporter is an optional Swapchain capability: wrapping an
// application texture as a swapchain image without a copy. Runtimes that
// share the application's device may implement it.
type TextureImporter interface {
	// Import wraps tex and returns the image index it now backs.
	Import(tex hal.Texture) (int, error)
}

// CompositionLayer is one layer of an EndFrame submission.
type CompositionLayer interface{ isLayer() }

// ProjectionLayer is the stereo eye layer.
type ProjectionLayer struct {
	Space Space
	Views [2]ProjectionView
}

// ProjectionView is one eye of a projection layer.
type ProjectionView struct {
	Swapchain  Swapchain
	ImageIndex int
	Pose       Posef
	Fov        Fov
}

// QuadLayer is a world- or head-locked quad, used for the overlay frame
// contract.
type QuadLayer struct {
	Space      Space
	Swapchain  Swapchain
	ImageIndex int
	Pose       Posef
	Width      float32
	Height     float32
}

func (ProjectionLayer) isLayer() {}
func (QuadLayer) isLayer()       {}
