package input

import (
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// snapshot caches per-frame action state. It is rewritten by the single
// per-frame writer (UpdateActionState) and read by every query until the
// next sync, so all queries within one frame see identical data.
type snapshot struct {
	time xrt.Time

	bools  map[stateKey]boolSample
	floats map[stateKey]floatSample
	vec2s  map[stateKey]vec2Sample
}

// stateKey addresses one action's state for one subaction path. The
// empty path holds the aggregated both-hands sample.
type stateKey struct {
	handle vr.ActionHandle
	sub    string
}

type boolSample struct {
	state  xrt.BooleanState
	origin string
}

type floatSample struct {
	state  xrt.FloatState
	origin string
}

type vec2Sample struct {
	state  xrt.Vector2State
	origin string
}

var handPaths = []string{"/user/hand/left", "/user/hand/right"}

func (s *snapshot) reset() {
	s.time = 0
	s.bools = nil
	s.floats = nil
	s.vec2s = nil
}

func (s *snapshot) setTime(t xrt.Time) {
	if t != 0 {
		s.time = t
	}
}

// refresh re-reads every action in the active sets. Per-hand samples are
// stored as-is; the aggregated sample keeps whichever hand changed last,
// matching the legacy unrestricted-query behavior.
func (s *snapshot) refresh(active []*actionSet, t xrt.Time) {
	s.setTime(t)
	s.bools = make(map[stateKey]boolSample)
	s.floats = make(map[stateKey]floatSample)
	s.vec2s = make(map[stateKey]vec2Sample)

	for _, set := range active {
		for _, a := range set.actions {
			if a.rt == nil {
				continue
			}
			switch a.kind {
			case kindBoolean:
				s.refreshBool(a)
			case kindFloat, kindVector3:
				s.refreshFloat(a)
			case kindVector2:
				s.refreshVec2(a)
			}
		}
	}
}

func (s *snapshot) refreshBool(a *action) {
	var agg boolSample
	for _, hand := range handPaths {
		st, err := a.rt.BooleanState(hand)
		if err != nil {
			continue
		}
		s.bools[stateKey{a.handle, hand}] = boolSample{state: st, origin: hand}
		if st.Active && (!agg.state.Active || st.LastChange >= agg.state.LastChange) {
			merged := st
			merged.Current = st.Current || agg.state.Current
			merged.Changed = st.Changed || agg.state.Changed
			agg = boolSample{state: merged, origin: hand}
		}
	}
	s.bools[stateKey{a.handle, ""}] = agg
}

func (s *snapshot) refreshFloat(a *action) {
	var agg floatSample
	for _, hand := range handPaths {
		st, err := a.rt.FloatState(hand)
		if err != nil {
			continue
		}
		s.floats[stateKey{a.handle, hand}] = floatSample{state: st, origin: hand}
		if st.Active && (!agg.state.Active || st.LastChange >= agg.state.LastChange) {
			agg = floatSample{state: st, origin: hand}
		}
	}
	s.floats[stateKey{a.handle, ""}] = agg
}

func (s *snapshot) refreshVec2(a *action) {
	var agg vec2Sample
	for _, hand := range handPaths {
		st, err := a.rt.Vector2State(hand)
		if err != nil {
			continue
		}
		s.vec2s[stateKey{a.handle, hand}] = vec2Sample{state: st, origin: hand}
		if st.Active && (!agg.state.Active || st.LastChange >= agg.state.LastChange) {
			agg = vec2Sample{state: st, origin: hand}
		}
	}
	s.vec2s[stateKey{a.handle, ""}] = agg
}

func (s *snapshot) boolState(h vr.ActionHandle, sub string) (xrt.BooleanState, string) {
	sm := s.bools[stateKey{h, sub}]
	return sm.state, sm.origin
}

func (s *snapshot) floatState(h vr.ActionHandle, sub string) (xrt.FloatState, string) {
	sm := s.floats[stateKey{h, sub}]
	return sm.state, sm.origin
}

func (s *snapshot) vec2State(h vr.ActionHandle, sub string) (xrt.Vector2State, string) {
	sm := s.vec2s[stateKey{h, sub}]
	return sm.state, sm.origin
}

// age converts a last-change timestamp into the legacy seconds-ago
// value, negative for past changes.
func (s *snapshot) age(lastChange xrt.Time) float32 {
	if lastChange == 0 || s.time == 0 {
		return 0
	}
	return float32(float64(lastChange-s.time) / 1e9)
}
