package fakext

import (
	"fmt"
	"time"

	"github.com/gogpu/xrbridge/xrt"
)

// ActionSet implements xrt.ActionSet.
type ActionSet struct {
	sess    *Session
	name    string
	actions []*Action
}

// Action implements xrt.Action. Tests stage input through the session's
// Set* hooks; Sync publishes staged values and maintains change flags.
type Action struct {
	sess *Session
	set  *ActionSet
	name string
	kind xrt.ActionKind

	staged  map[string]actionValue // pending, written by tests
	current map[string]actionValue // published by Sync
}

type actionValue struct {
	b          bool
	x, y       float32
	active     bool
	changed    bool
	lastChange xrt.Time
}

// CreateActionSet implements xrt.Session.
func (s *Session) CreateActionSet(name, localized string, priority uint32) (xrt.ActionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached {
		return nil, fmt.Errorf("fakext: action sets already attached")
	}
	set := &ActionSet{sess: s, name: name}
	s.sets = append(s.sets, set)
	return set, nil
}

// Name implements xrt.ActionSet.
func (as *ActionSet) Name() string { return as.name }

// CreateAction implements xrt.ActionSet.
func (as *ActionSet) CreateAction(name, localized string, kind xrt.ActionKind, subactions []string) (xrt.Action, error) {
	as.sess.mu.Lock()
	defer as.sess.mu.Unlock()
	if as.sess.attached {
		return nil, fmt.Errorf("fakext: action sets already attached")
	}
	a := &Action{
		sess:    as.sess,
		set:     as,
		name:    name,
		kind:    kind,
		staged:  make(map[string]actionValue),
		current: make(map[string]actionValue),
	}
	as.actions = append(as.actions, a)
	return a, nil
}

// Destroy implements xrt.ActionSet.
func (as *ActionSet) Destroy() error { return nil }

// --- test hooks --------------------------------------------------------

func (s *Session) findAction(name string) *Action {
	for _, set := range s.sets {
		for _, a := range set.actions {
			if a.name == name {
				return a
			}
		}
	}
	return nil
}

// SetBool stages a boolean input for the next Sync.
func (s *Session) SetBool(actionName, subaction string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAction(actionName)
	if a == nil {
		return fmt.Errorf("fakext: no action %q", actionName)
	}
	a.staged[subaction] = actionValue{b: v, active: true}
	return nil
}

// SetFloat stages a scalar input for the next Sync.
func (s *Session) SetFloat(actionName, subaction string, v float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAction(actionName)
	if a == nil {
		return fmt.Errorf("fakext: no action %q", actionName)
	}
	a.staged[subaction] = actionValue{x: v, active: true}
	return nil
}

// SetVector2 stages a 2-axis input for the next Sync.
func (s *Session) SetVector2(actionName, subaction string, x, y float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAction(actionName)
	if a == nil {
		return fmt.Errorf("fakext: no action %q", actionName)
	}
	a.staged[subaction] = actionValue{x: x, y: y, active: true}
	return nil
}

// --- sync and state ----------------------------------------------------

// Sync implements xrt.Session.
func (s *Session) Sync(sets ...xrt.ActionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.ErrSessionLost
	}
	if !s.attached {
		return xrt.ErrSessionNotReady
	}
	for _, raw := range sets {
		set, ok := raw.(*ActionSet)
		if !ok {
			return fmt.Errorf("fakext: foreign action set")
		}
		for _, a := range set.actions {
			for sub, staged := range a.staged {
				prev := a.current[sub]
				staged.changed = staged.b != prev.b || staged.x != prev.x || staged.y != prev.y
				staged.lastChange = prev.lastChange
				if staged.changed || !prev.active {
					staged.lastChange = s.now
				}
				a.current[sub] = staged
			}
		}
	}
	return nil
}

func (a *Action) state(sub string) actionValue {
	a.sess.mu.Lock()
	defer a.sess.mu.Unlock()
	if sub != "" {
		return a.current[sub]
	}
	// Unrestricted queries merge hands, keeping the latest change.
	var out actionValue
	for _, v := range a.current {
		if !v.active {
			continue
		}
		if !out.active || v.lastChange >= out.lastChange {
			b := out.b || v.b
			out = v
			out.b = b
		}
	}
	return out
}

// Name implements xrt.Action.
func (a *Action) Name() string { return a.name }

// Kind implements xrt.Action.
func (a *Action) Kind() xrt.ActionKind { return a.kind }

// BooleanState implements xrt.Action.
func (a *Action) BooleanState(sub string) (xrt.BooleanState, error) {
	if a.kind != xrt.ActionKindBoolean {
		return xrt.BooleanState{}, fmt.Errorf("fakext: %s is not boolean", a.name)
	}
	v := a.state(sub)
	return xrt.BooleanState{Current: v.b, Changed: v.changed, Active: v.active, LastChange: v.lastChange}, nil
}

// FloatState implements xrt.Action.
func (a *Action) FloatState(sub string) (xrt.FloatState, error) {
	if a.kind != xrt.ActionKindFloat {
		return xrt.FloatState{}, fmt.Errorf("fakext: %s is not float", a.name)
	}
	v := a.state(sub)
	return xrt.FloatState{Current: v.x, Changed: v.changed, Active: v.active, LastChange: v.lastChange}, nil
}

// Vector2State implements xrt.Action.
func (a *Action) Vector2State(sub string) (xrt.Vector2State, error) {
	if a.kind != xrt.ActionKindVector2 {
		return xrt.Vector2State{}, fmt.Errorf("fakext: %s is not vector2", a.name)
	}
	v := a.state(sub)
	return xrt.Vector2State{X: v.x, Y: v.y, Changed: v.changed, Active: v.active, LastChange: v.lastChange}, nil
}

// CreateSpace implements xrt.Action. The space tracks the hand device
// matching the subaction path.
func (a *Action) CreateSpace(sub string, offset xrt.Posef) (xrt.Space, error) {
	if a.kind != xrt.ActionKindPose {
		return nil, fmt.Errorf("fakext: %s is not a pose action", a.name)
	}
	dev := rightID
	if sub == "/user/hand/left" {
		dev = leftID
	}
	return &Space{sess: a.sess, kind: spaceAction, device: dev, offset: offset}, nil
}

// ApplyHaptic implements xrt.Action.
func (a *Action) ApplyHaptic(sub string, duration time.Duration, frequency, amplitude float32) error {
	a.sess.mu.Lock()
	defer a.sess.mu.Unlock()
	if a.kind != xrt.ActionKindVibration {
		return fmt.Errorf("fakext: %s is not a haptic action", a.name)
	}
	a.sess.Haptics = append(a.sess.Haptics, HapticEvent{
		Action:    a.name,
		Subaction: sub,
		Duration:  duration,
		Frequency: frequency,
		Amplitude: amplitude,
	})
	return nil
}
