package session

import (
	"testing"
	"time"

	"github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

func newTestManager(t *testing.T) (*Manager, *fakext.Session) {
	t.Helper()
	m := NewManager(fakext.New())
	if err := m.Init(xrt.HeadlessBinding{}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(m.Shutdown)
	return m, m.Session().(*fakext.Session)
}

func hasEvent(events []vr.Event, ty vr.EventType) bool {
	for _, ev := range events {
		if ev.Type == ty {
			return true
		}
	}
	return false
}

func TestInitStartsIdle(t *testing.T) {
	m, _ := newTestManager(t)

	if got := m.State(); got != SessionIdle {
		t.Errorf("state after init = %s, want SessionIdle", got)
	}
	if name := m.Properties().SystemName; name != "Fake HMD" {
		t.Errorf("system name = %q", name)
	}
	if ok, _ := m.Running(); !ok {
		t.Error("not running after init")
	}
}

func TestPumpReachesFocus(t *testing.T) {
	m, _ := newTestManager(t)

	// The fake runtime grants focus as soon as the session begins, so a
	// single pump walks Idle -> Ready -> Focused.
	events := m.PumpEvents()
	if got := m.State(); got != SessionFocused {
		t.Fatalf("state after pump = %s, want SessionFocused", got)
	}
	if !hasEvent(events, vr.EventSceneFocusGained) {
		t.Errorf("events = %+v, want SceneFocusGained", events)
	}
}

func TestFocusLostAndRegained(t *testing.T) {
	m, fs := newTestManager(t)
	m.PumpEvents()

	fs.PushEvent(xrt.EventSessionStateChanged{State: xrt.SessionStateVisible})
	events := m.PumpEvents()
	if got := m.State(); got != SessionReady {
		t.Fatalf("state after demote = %s, want SessionReady", got)
	}
	if !hasEvent(events, vr.EventSceneFocusLost) {
		t.Errorf("events = %+v, want SceneFocusLost", events)
	}

	fs.PushEvent(xrt.EventSessionStateChanged{State: xrt.SessionStateFocused})
	events = m.PumpEvents()
	if got := m.State(); got != SessionFocused {
		t.Fatalf("state after promote = %s, want SessionFocused", got)
	}
	if !hasEvent(events, vr.EventSceneFocusGained) {
		t.Errorf("events = %+v, want SceneFocusGained", events)
	}
}

func TestStateChangeListener(t *testing.T) {
	m := NewManager(fakext.New())
	var states []State
	m.OnStateChange(func(s State) { states = append(states, s) })
	if err := m.Init(xrt.HeadlessBinding{}); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Shutdown()

	m.PumpEvents()
	if len(states) == 0 || states[len(states)-1] != SessionFocused {
		t.Errorf("notified states = %v, want final SessionFocused", states)
	}
}

func TestSessionLossAndReinit(t *testing.T) {
	m, fs := newTestManager(t)
	m.PumpEvents()

	fs.Lose()
	events := m.PumpEvents()
	if got := m.State(); got != SessionLossPending {
		t.Fatalf("state after loss = %s, want SessionLossPending", got)
	}
	if !hasEvent(events, vr.EventQuit) {
		t.Errorf("events = %+v, want Quit", events)
	}
	if ok, errc := m.Running(); ok || errc != vr.InitErrorInitNotInitialized {
		t.Errorf("Running = (%v, %v), want (false, NotInitialized)", ok, errc)
	}

	// Loss is recoverable: a fresh Init builds a new session.
	if err := m.Init(xrt.HeadlessBinding{}); err != nil {
		t.Fatalf("re-init after loss: %v", err)
	}
	if got := m.State(); got != SessionIdle {
		t.Errorf("state after re-init = %s, want SessionIdle", got)
	}
	m.PumpEvents()
	if got := m.State(); got != SessionFocused {
		t.Errorf("state after re-init pump = %s, want SessionFocused", got)
	}
}

func TestRequestExitQueuesQuit(t *testing.T) {
	m, fs := newTestManager(t)
	m.PumpEvents()

	if err := fs.RequestExit(); err != nil {
		t.Fatalf("request exit: %v", err)
	}
	events := m.PumpEvents()
	if got := m.State(); got != SessionStopping {
		t.Errorf("state after exit = %s, want SessionStopping", got)
	}
	if !hasEvent(events, vr.EventQuit) {
		t.Errorf("events = %+v, want Quit", events)
	}
}

func TestAdvanceKeepsPendingEvents(t *testing.T) {
	m, _ := newTestManager(t)
	m.PumpEvents()

	m.QueueEvent(vr.Event{Type: vr.EventTrackedDeviceActivated, TrackedDeviceIndex: 3})
	m.Advance()

	events := m.PumpEvents()
	if !hasEvent(events, vr.EventTrackedDeviceActivated) {
		t.Errorf("Advance consumed the queued event; pump returned %+v", events)
	}
}

func TestMarkLost(t *testing.T) {
	m, _ := newTestManager(t)
	m.PumpEvents()

	m.MarkLost()
	if got := m.State(); got != SessionLossPending {
		t.Errorf("state after MarkLost = %s, want SessionLossPending", got)
	}
	if !hasEvent(m.PumpEvents(), vr.EventQuit) {
		t.Error("MarkLost queued no Quit event")
	}
}

func TestShutdownDestroys(t *testing.T) {
	m, _ := newTestManager(t)
	m.PumpEvents()

	m.Shutdown()
	if got := m.State(); got != Destroyed {
		t.Errorf("state after shutdown = %s, want Destroyed", got)
	}
	if ok, _ := m.Running(); ok {
		t.Error("still running after shutdown")
	}
	if m.Session() != nil {
		t.Error("session survived shutdown")
	}
}

func TestEventDrainReachesFocus(t *testing.T) {
	m, _ := newTestManager(t)

	m.StartEventDrain()
	defer m.StopEventDrain()

	deadline := time.Now().Add(2 * time.Second)
	for m.State() != SessionFocused {
		if time.Now().After(deadline) {
			t.Fatalf("drain never reached focus, state = %s", m.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
