// Package session owns the runtime instance and session handles and the
// state machine bridging the legacy always-on model to the runtime's
// explicit lifecycle.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// State is the engine's session lifecycle state.
type State int32

const (
	Uninitialized State = iota
	InstanceCreated
	SessionIdle
	SessionReady
	SessionFocused
	SessionStopping
	SessionLossPending
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case InstanceCreated:
		return "InstanceCreated"
	case SessionIdle:
		return "SessionIdle"
	case SessionReady:
		return "SessionReady"
	case SessionFocused:
		return "SessionFocused"
	case SessionStopping:
		return "SessionStopping"
	case SessionLossPending:
		return "SessionLossPending"
	case Destroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ErrNotRunning is returned by operations that need a live session.
var ErrNotRunning = errors.New("session: not running")

// Manager drives the runtime session lifecycle. Legacy calls never block
// on a state transition: callers check State and fail fast with the
// nearest legacy "not ready" result instead.
type Manager struct {
	mu sync.RWMutex

	runtime  xrt.Runtime
	binding  xrt.GraphicsBinding
	instance xrt.Instance
	session  xrt.Session
	props    xrt.SystemProperties

	state State

	// pending holds legacy events produced by runtime event processing
	// until the application drains them via PumpEvents/PollNextEvent.
	pending []vr.Event

	// onStateChange/onDevicesChanged/onProfileChanged are notified with
	// the manager unlocked. Set before Init; not synchronized after.
	onStateChange    func(State)
	onDevicesChanged func()
	onProfileChanged func()

	drainStop chan struct{}
	drainDone chan struct{}
}

// NewManager creates a manager bound to a runtime implementation.
func NewManager(runtime xrt.Runtime) *Manager {
	return &Manager{runtime: runtime}
}

// OnStateChange registers the engine-state listener. Must be called
// before Init.
func (m *Manager) OnStateChange(fn func(State)) { m.onStateChange = fn }

// OnDevicesChanged registers the topology-change listener. Must be
// called before Init.
func (m *Manager) OnDevicesChanged(fn func()) { m.onDevicesChanged = fn }

// OnProfileChanged registers the interaction-profile listener. Must be
// called before Init.
func (m *Manager) OnProfileChanged(fn func()) { m.onProfileChanged = fn }

// Init creates the runtime instance with the extension set matching the
// binding's backend, then the session. On success the manager is in
// SessionIdle waiting for the runtime's ready event.
func (m *Manager) Init(binding xrt.GraphicsBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case Uninitialized, Destroyed:
	case SessionLossPending:
		// Re-initialization after loss restarts from InstanceCreated.
		m.teardownLocked()
	default:
		return fmt.Errorf("session: init in state %s", m.state)
	}

	instance, err := m.runtime.CreateInstance(binding.Backend())
	if err != nil {
		return fmt.Errorf("session: create instance: %w", err)
	}
	m.instance = instance
	m.binding = binding
	m.setStateLocked(InstanceCreated)

	props, err := instance.SystemProperties()
	if err != nil {
		m.teardownLocked()
		return fmt.Errorf("session: query system: %w", err)
	}
	m.props = props

	sess, err := instance.CreateSession(binding)
	if err != nil {
		m.teardownLocked()
		return fmt.Errorf("session: create session: %w", err)
	}
	m.session = sess
	m.setStateLocked(SessionIdle)

	logging.Logger().Info("session initialized",
		"runtime", instance.RuntimeName(),
		"backend", binding.Backend(),
		"system", props.SystemName)
	return nil
}

// StartEventDrain launches the background goroutine that drains runtime
// events so state transitions are observed even when the application is
// slow to pump. It is the only thread the engine owns.
func (m *Manager) StartEventDrain() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drainStop != nil || m.session == nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	m.drainStop = stop
	m.drainDone = done
	interval := m.props.FrameInterval()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.processRuntimeEvents()
			}
		}
	}()
}

// StopEventDrain stops the background drain goroutine, if running.
func (m *Manager) StopEventDrain() {
	m.mu.Lock()
	stop, done := m.drainStop, m.drainDone
	m.drainStop, m.drainDone = nil, nil
	m.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// PumpEvents processes pending runtime events and returns the legacy
// events they produced. Legacy applications call this once per frame.
func (m *Manager) PumpEvents() []vr.Event {
	m.processRuntimeEvents()

	m.mu.Lock()
	events := m.pending
	m.pending = nil
	m.mu.Unlock()
	return events
}

// Advance drains runtime events and moves the state machine without
// consuming the legacy event queue. The compositor calls this once per
// frame; the queued events stay for the application's own event pump.
func (m *Manager) Advance() {
	m.processRuntimeEvents()
}

// processRuntimeEvents drains the runtime event queue and advances the
// state machine. Callable from both the application thread and the
// background drain.
func (m *Manager) processRuntimeEvents() {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()
	if session == nil {
		return
	}

	var notifyState []State
	var devicesChanged, profileChanged bool

	for {
		ev, ok := session.PollEvent()
		if !ok {
			break
		}
		m.mu.Lock()
		switch ev := ev.(type) {
		case xrt.EventSessionStateChanged:
			if s, changed := m.applyRuntimeStateLocked(ev.State); changed {
				notifyState = append(notifyState, s)
			}
		case xrt.EventDevicesChanged:
			devicesChanged = true
		case xrt.EventInteractionProfileChanged:
			profileChanged = true
		case xrt.EventReferenceSpaceChangePending:
			if ev.Space == xrt.ReferenceSpaceLocal {
				m.pending = append(m.pending, vr.Event{Type: vr.EventSeatedZeroPoseReset})
			} else {
				m.pending = append(m.pending, vr.Event{Type: vr.EventStandingZeroPoseReset})
			}
		case xrt.EventInstanceLossPending:
			if s, changed := m.markLostLocked(); changed {
				notifyState = append(notifyState, s)
			}
		}
		m.mu.Unlock()
	}

	for _, s := range notifyState {
		if m.onStateChange != nil {
			m.onStateChange(s)
		}
	}
	if devicesChanged && m.onDevicesChanged != nil {
		m.onDevicesChanged()
	}
	if profileChanged && m.onProfileChanged != nil {
		m.onProfileChanged()
	}
}

// applyRuntimeStateLocked maps a runtime session state onto the engine
// state machine. Returns the new engine state and whether it changed.
func (m *Manager) applyRuntimeStateLocked(rs xrt.SessionState) (State, bool) {
	prev := m.state
	switch rs {
	case xrt.SessionStateReady:
		if m.state == SessionIdle {
			if err := m.session.Begin(); err != nil {
				logging.Logger().Warn("session begin failed", "err", err)
				return prev, false
			}
			m.setStateLocked(SessionReady)
		}
	case xrt.SessionStateSynchronized, xrt.SessionStateVisible:
		if m.state == SessionFocused {
			m.setStateLocked(SessionReady)
			m.pending = append(m.pending, vr.Event{Type: vr.EventSceneFocusLost})
		}
	case xrt.SessionStateFocused:
		if m.state == SessionReady || m.state == SessionIdle {
			m.setStateLocked(SessionFocused)
			m.pending = append(m.pending, vr.Event{Type: vr.EventSceneFocusGained})
		}
	case xrt.SessionStateStopping:
		if err := m.session.End(); err != nil {
			logging.Logger().Warn("session end failed", "err", err)
		}
		m.setStateLocked(SessionStopping)
		m.pending = append(m.pending, vr.Event{Type: vr.EventQuit})
	case xrt.SessionStateLossPending:
		return m.markLostLocked()
	case xrt.SessionStateExiting:
		m.setStateLocked(SessionStopping)
		m.pending = append(m.pending, vr.Event{Type: vr.EventQuit})
	}
	return m.state, m.state != prev
}

func (m *Manager) markLostLocked() (State, bool) {
	if m.state == SessionLossPending {
		return m.state, false
	}
	m.setStateLocked(SessionLossPending)
	m.pending = append(m.pending, vr.Event{Type: vr.EventQuit})
	logging.Logger().Warn("session lost; awaiting re-initialization")
	return m.state, true
}

// MarkLost flips the session into SessionLossPending. Called by the
// compositor when a frame call reports loss.
func (m *Manager) MarkLost() {
	m.mu.Lock()
	_, changed := m.markLostLocked()
	state := m.state
	m.mu.Unlock()
	if changed && m.onStateChange != nil {
		m.onStateChange(state)
	}
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	logging.Logger().Debug("session state", "from", m.state.String(), "to", s.String())
	m.state = s
}

// State returns the current engine session state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Running reports whether legacy calls may proceed, and if not, which
// init error to surface.
func (m *Manager) Running() (bool, vr.InitError) {
	switch m.State() {
	case SessionIdle, SessionReady, SessionFocused, SessionStopping:
		return true, vr.InitErrorNone
	case SessionLossPending:
		return false, vr.InitErrorInitNotInitialized
	default:
		return false, vr.InitErrorInitNotInitialized
	}
}

// Session returns the live runtime session, or nil.
func (m *Manager) Session() xrt.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Properties returns the runtime system properties captured at Init.
func (m *Manager) Properties() xrt.SystemProperties {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.props
}

// Binding returns the graphics binding the session was created with.
func (m *Manager) Binding() xrt.GraphicsBinding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.binding
}

// QueueEvent appends a legacy event for the application to poll.
func (m *Manager) QueueEvent(ev vr.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, ev)
}

// Shutdown destroys the session and instance. The manager ends in
// Destroyed and may be re-initialized with Init.
func (m *Manager) Shutdown() {
	m.StopEventDrain()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
	m.setStateLocked(Destroyed)
}

func (m *Manager) teardownLocked() {
	if m.session != nil {
		if err := m.session.Destroy(); err != nil {
			logging.Logger().Warn("session destroy failed", "err", err)
		}
		m.session = nil
	}
	if m.instance != nil {
		if err := m.instance.Destroy(); err != nil {
			logging.Logger().Warn("instance destroy failed", "err", err)
		}
		m.instance = nil
	}
	m.pending = nil
	m.state = Uninitialized
}
