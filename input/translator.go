// Package input maps legacy input queries and action manifests onto the
// runtime's action-binding model.
//
// Resolution happens exactly once per session: the manifest is parsed,
// runtime actions are created, and suggested bindings are computed per
// interaction profile from the built-in tables. All per-frame queries
// are answered from a cached snapshot updated by a single writer, never
// from live runtime calls, so input is consistent within one frame.
package input

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/input/profiles"
	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// Translator is the input/action translation engine for one session.
type Translator struct {
	mu sync.RWMutex

	mgr      *session.Manager
	resolver *space.Resolver
	cfg      *config.Config

	handles *handleTable

	manifestPath string
	sets         []*actionSet

	// suggested holds the per-profile binding suggestions computed at
	// manifest resolution; they are handed to the runtime together with
	// the legacy bindings in one attach step.
	suggested map[string][]xrt.SuggestedBinding
	attached  bool

	legacy *legacyActions

	snap      snapshot
	packetNum atomic.Uint32
}

// New creates a translator. The configuration decides fallback-profile
// fidelity.
func New(mgr *session.Manager, resolver *space.Resolver, cfg *config.Config) *Translator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Translator{
		mgr:      mgr,
		resolver: resolver,
		cfg:      cfg,
		handles:  seededHandleTable(),
	}
}

// seededHandleTable pre-allocates the well-known source paths so active
// origins reported by data queries are valid handles from the start.
func seededHandleTable() *handleTable {
	ht := newHandleTable()
	for _, p := range []string{"/user/head", "/user/hand/left", "/user/hand/right"} {
		ht.sourceHandle(p)
	}
	return ht
}

// Reset drops all per-session resolution state. Called when the session
// is rebuilt after loss; the manifest path is kept so resolution can be
// repeated on the fresh session.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sets = nil
	t.attached = false
	t.legacy = nil
	t.handles = seededHandleTable()
	t.snap.reset()
}

// --- handle resolution -------------------------------------------------

// ActionHandle resolves a manifest action name to a handle, allocating
// one if needed.
func (t *Translator) ActionHandle(path string) (vr.ActionHandle, vr.InputError) {
	if !strings.HasPrefix(strings.ToLower(path), "/actions/") {
		return vr.InvalidActionHandle, vr.InputErrorInvalidParam
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handles.actionHandle(path), vr.InputErrorNone
}

// ActionSetHandle resolves an action set name to a handle.
func (t *Translator) ActionSetHandle(path string) (vr.ActionSetHandle, vr.InputError) {
	if !strings.HasPrefix(strings.ToLower(path), "/actions/") {
		return vr.InvalidActionSetHandle, vr.InputErrorInvalidParam
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handles.setHandle(path), vr.InputErrorNone
}

// InputSourceHandle resolves a device path ("/user/hand/left").
func (t *Translator) InputSourceHandle(path string) (vr.InputValueHandle, vr.InputError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handles.sourceHandle(path), vr.InputErrorNone
}

// --- manifest loading --------------------------------------------------

// LoadManifest parses the action manifest and resolves every action
// against the runtime. Actions are resolved exactly once per session;
// loading a different manifest afterwards is an error.
func (t *Translator) LoadManifest(path string) vr.InputError {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.manifestPath != "" {
		if t.manifestPath == path {
			return vr.InputErrorNone
		}
		return vr.InputErrorMismatchedActionManifest
	}
	if t.attached {
		// The action model is immutable once attached; manifest-less
		// applications that start loading one later need a new session.
		return vr.InputErrorMismatchedActionManifest
	}
	sess := t.mgr.Session()
	if sess == nil {
		return vr.InputErrorIPCError
	}

	doc, err := parseManifest(path)
	if err != nil {
		logging.Logger().Warn("manifest load failed", "path", path, "err", err)
		return vr.InputErrorInvalidParam
	}

	if err := t.resolveLocked(sess, doc, path); err != nil {
		logging.Logger().Warn("manifest resolution failed", "err", err)
		return vr.InputErrorIPCError
	}
	t.manifestPath = path
	logging.Logger().Info("action manifest loaded",
		"path", path, "sets", len(t.sets))
	return vr.InputErrorNone
}

// resolveLocked creates runtime action sets and actions for the
// manifest and suggests bindings for every registered profile.
func (t *Translator) resolveLocked(sess xrt.Session, doc *manifestDoc, manifestPath string) error {
	setsByPath := make(map[string]*actionSet, len(doc.ActionSets))
	for _, ms := range doc.ActionSets {
		key := strings.ToLower(ms.Name)
		rtSet, err := sess.CreateActionSet(sanitizeName(key), key, 0)
		if err != nil {
			return fmt.Errorf("create action set %s: %w", key, err)
		}
		set := &actionSet{handle: t.handles.setHandle(key), path: key, rt: rtSet}
		t.handles.setByID[set.handle] = set
		setsByPath[key] = set
		t.sets = append(t.sets, set)
	}

	subactions := []string{"/user/hand/left", "/user/hand/right"}
	for i, ma := range doc.Actions {
		key := strings.ToLower(ma.Name)
		kind, ok := kindFromType(ma.Type)
		if !ok {
			logging.Logger().Warn("unknown action type", "action", ma.Name, "type", ma.Type)
		}
		setPath := setPathOf(key)
		set := setsByPath[setPath]
		if set == nil {
			// Actions outside a declared set get an implicit one.
			rtSet, err := sess.CreateActionSet(sanitizeName(setPath), setPath, 0)
			if err != nil {
				return fmt.Errorf("create implicit set %s: %w", setPath, err)
			}
			set = &actionSet{handle: t.handles.setHandle(setPath), path: setPath, rt: rtSet}
			t.handles.setByID[set.handle] = set
			setsByPath[setPath] = set
			t.sets = append(t.sets, set)
		}

		rtAction, err := set.rt.CreateAction(sanitizeName(key), key, kind.runtimeKind(), subactions)
		if err != nil {
			return fmt.Errorf("create action %s: %w", key, err)
		}
		a := &action{
			handle:       t.handles.actionHandle(key),
			path:         key,
			setPath:      setPath,
			kind:         kind,
			declIndex:    i,
			skeletonPath: strings.ToLower(ma.Skeleton),
			rt:           rtAction,
			spaces:       make(map[string]xrt.Space),
		}
		t.handles.actionByID[a.handle] = a
		set.actions = append(set.actions, a)
	}

	t.suggested = make(map[string][]xrt.SuggestedBinding)
	for _, profile := range profiles.All() {
		bindings, err := t.suggestedBindingsLocked(doc, manifestPath, profile)
		if err != nil {
			return err
		}
		if len(bindings) > 0 {
			t.suggested[profile.Path()] = bindings
		}
	}
	return nil
}

// attachLocked finalizes action setup: the built-in legacy set is
// created, every profile gets its merged binding suggestions, and all
// sets are attached. After this the runtime's action model is frozen.
func (t *Translator) attachLocked(sess xrt.Session) error {
	if t.attached {
		return nil
	}
	if t.legacy == nil {
		lg, err := setupLegacyActions(sess, t.cfg)
		if err != nil {
			return fmt.Errorf("legacy action setup: %w", err)
		}
		t.legacy = lg
	}

	for _, profile := range profiles.All() {
		bindings := t.legacy.suggestedBindings(profile, t.cfg)
		bindings = append(bindings, t.suggested[profile.Path()]...)
		if len(bindings) == 0 {
			continue
		}
		if err := sess.SuggestBindings(profile.Path(), bindings); err != nil {
			return fmt.Errorf("suggest bindings for %s: %w", profile.Path(), err)
		}
	}

	all := []xrt.ActionSet{t.legacy.set}
	for _, s := range t.sets {
		all = append(all, s.rt)
	}
	if err := sess.AttachActionSets(all...); err != nil {
		return fmt.Errorf("attach action sets: %w", err)
	}
	t.attached = true
	return nil
}

// suggestedBindingsLocked computes the deterministic suggested-binding
// list for one profile. When two actions contest one physical input the
// action declared later in the manifest wins.
func (t *Translator) suggestedBindingsLocked(doc *manifestDoc, manifestPath string, profile profiles.Profile) ([]xrt.SuggestedBinding, error) {
	ct := profile.Properties().ControllerType
	bd, err := doc.bindingFileFor(manifestPath, ct)
	if err != nil {
		return nil, err
	}
	if bd == nil && len(doc.DefaultBindings) > 0 {
		// No bindings shipped for this controller type: reuse the first
		// declared document, translated through this profile's table.
		// Reduced fidelity is expected and deliberate.
		bd, err = doc.bindingFileFor(manifestPath, doc.DefaultBindings[0].ControllerType)
		if err != nil {
			return nil, err
		}
		if bd != nil {
			logging.Logger().Warn("no bindings for controller type; degrading",
				"controller_type", ct,
				"using", doc.DefaultBindings[0].ControllerType)
		}
	}
	if bd == nil {
		return nil, nil
	}

	// physical path → winning action, decided by declaration order.
	chosen := make(map[string]*action)
	claim := func(path string, a *action) {
		if prev, ok := chosen[path]; ok && prev.declIndex > a.declIndex {
			return
		}
		chosen[path] = a
	}

	for _, block := range bd.Bindings {
		for _, src := range block.Sources {
			hand, suffix, ok := splitHandPath(src.Path)
			if !ok {
				continue
			}
			for inputName, out := range src.Inputs {
				a := t.handles.actionByID[t.handles.actionHandle(out.Output)]
				if a == nil {
					continue
				}
				comp := suffix
				if inputName != "" && inputName != "position" {
					comp = suffix + "/" + inputName
				}
				comp = profiles.Translate(profile, comp)
				if !profiles.IsLegal(profile, comp) {
					continue
				}
				claim(hand+"/"+comp, a)
			}
		}
		for _, p := range block.Poses {
			hand, suffix, ok := splitHandPath(p.Path)
			if !ok {
				continue
			}
			a := t.handles.actionByID[t.handles.actionHandle(p.Output)]
			if a == nil {
				continue
			}
			claim(hand+"/"+posePathFor(suffix), a)
		}
		for _, h := range block.Haptics {
			hand, _, ok := splitHandPath(h.Path)
			if !ok {
				continue
			}
			a := t.handles.actionByID[t.handles.actionHandle(h.Output)]
			if a == nil {
				continue
			}
			claim(hand+"/output/haptic", a)
		}
	}

	paths := make([]string, 0, len(chosen))
	for p := range chosen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]xrt.SuggestedBinding, 0, len(paths))
	for _, p := range paths {
		out = append(out, xrt.SuggestedBinding{Action: chosen[p].rt, Path: p})
	}
	return out, nil
}

// posePathFor maps a legacy pose suffix to the runtime pose component.
func posePathFor(suffix string) string {
	switch suffix {
	case "pose/tip":
		return "input/aim/pose"
	default: // pose/raw, pose/base, pose/gdc2015
		return "input/grip/pose"
	}
}

// setPathOf extracts "/actions/main" from "/actions/main/in/fire".
func setPathOf(actionPath string) string {
	parts := strings.Split(strings.TrimPrefix(actionPath, "/"), "/")
	if len(parts) >= 2 {
		return "/" + parts[0] + "/" + parts[1]
	}
	return actionPath
}

// --- per-frame update --------------------------------------------------

// UpdateActionState is the legacy per-frame sync call. It is the single
// writer of the action snapshot.
func (t *Translator) UpdateActionState(sets []vr.ActiveActionSet) vr.InputError {
	if len(sets) == 0 {
		return vr.InputErrorNoActiveActionSet
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	sess := t.mgr.Session()
	if sess == nil {
		return vr.InputErrorIPCError
	}
	if t.manifestPath == "" {
		return vr.InputErrorNoActiveActionSet
	}

	active := make([]*actionSet, 0, len(sets))
	rtSets := make([]xrt.ActionSet, 0, len(sets))
	for _, as := range sets {
		set := t.handles.setByID[as.ActionSet]
		if set == nil {
			return vr.InputErrorInvalidHandle
		}
		active = append(active, set)
		rtSets = append(rtSets, set.rt)
	}

	if err := t.attachLocked(sess); err != nil {
		logging.Logger().Warn("action attach failed", "err", err)
		return vr.InputErrorIPCError
	}

	rtSets = append(rtSets, t.legacy.set)
	if err := sess.Sync(rtSets...); err != nil {
		if err == xrt.ErrSessionLost {
			t.mgr.MarkLost()
		}
		return vr.InputErrorIPCError
	}

	t.snap.refresh(active, t.snap.time)
	t.legacy.refresh(t.snap.time)
	t.packetNum.Add(1)
	return vr.InputErrorNone
}

// FrameTick is called by the compositor bridge once per frame with the
// predicted display time. It keeps the snapshot's timebase current and
// drives the manifest-less legacy action sync.
func (t *Translator) FrameTick(displayTime xrt.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.setTime(displayTime)

	if t.manifestPath != "" {
		// Manifest applications drive their own sync cadence through
		// UpdateActionState.
		return
	}
	sess := t.mgr.Session()
	if sess == nil {
		return
	}
	if err := t.attachLocked(sess); err != nil {
		logging.Logger().Warn("legacy action setup failed", "err", err)
		return
	}
	if err := sess.Sync(t.legacy.set); err != nil {
		if err == xrt.ErrSessionLost {
			t.mgr.MarkLost()
		}
		return
	}
	t.legacy.refresh(displayTime)
	t.packetNum.Add(1)
}

// --- queries -----------------------------------------------------------

// lookup resolves an action handle under the read lock.
func (t *Translator) lookup(h vr.ActionHandle) *action {
	return t.handles.actionByID[h]
}

// restrictPath converts a restrict-to-device handle into a subaction
// path ("" when unrestricted).
func (t *Translator) restrictPath(h vr.InputValueHandle) string {
	if h == vr.InvalidInputValueHandle {
		return ""
	}
	return t.handles.sourcePath(h)
}

// DigitalActionData answers a boolean action query from the snapshot.
func (t *Translator) DigitalActionData(h vr.ActionHandle, restrict vr.InputValueHandle) (vr.InputDigitalActionData, vr.InputError) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputDigitalActionData{}, vr.InputErrorInvalidHandle
	}
	if a.kind != kindBoolean {
		return vr.InputDigitalActionData{}, vr.InputErrorWrongType
	}

	st, origin := t.snap.boolState(h, t.restrictPath(restrict))
	return vr.InputDigitalActionData{
		Active:       st.Active,
		ActiveOrigin: t.handles.sourceByPath[origin],
		State:        st.Current,
		Changed:      st.Changed,
		UpdateTime:   t.snap.age(st.LastChange),
	}, vr.InputErrorNone
}

// AnalogActionData answers a scalar or 2-axis query from the snapshot.
func (t *Translator) AnalogActionData(h vr.ActionHandle, restrict vr.InputValueHandle) (vr.InputAnalogActionData, vr.InputError) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputAnalogActionData{}, vr.InputErrorInvalidHandle
	}

	sub := t.restrictPath(restrict)
	switch a.kind {
	case kindFloat, kindVector3:
		st, origin := t.snap.floatState(h, sub)
		return vr.InputAnalogActionData{
			Active:       st.Active,
			ActiveOrigin: t.handles.sourceByPath[origin],
			X:            st.Current,
			UpdateTime:   t.snap.age(st.LastChange),
		}, vr.InputErrorNone
	case kindVector2:
		st, origin := t.snap.vec2State(h, sub)
		return vr.InputAnalogActionData{
			Active:       st.Active,
			ActiveOrigin: t.handles.sourceByPath[origin],
			X:            st.X,
			Y:            st.Y,
			UpdateTime:   t.snap.age(st.LastChange),
		}, vr.InputErrorNone
	default:
		return vr.InputAnalogActionData{}, vr.InputErrorWrongType
	}
}

// PoseActionData answers a pose action query. The pose comes from the
// frame snapshot's display time, expressed in the requested legacy
// origin with the recenter offset applied.
func (t *Translator) PoseActionData(h vr.ActionHandle, origin vr.TrackingUniverseOrigin, restrict vr.InputValueHandle) (vr.InputPoseActionData, vr.InputError) {
	t.mu.Lock() // pose spaces are created lazily
	defer t.mu.Unlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputPoseActionData{}, vr.InputErrorInvalidHandle
	}
	if a.kind != kindPose && a.kind != kindSkeleton {
		return vr.InputPoseActionData{}, vr.InputErrorWrongType
	}

	sub := t.restrictPath(restrict)
	if sub == "" && a.kind == kindSkeleton {
		sub = skeletonHand(a.skeletonPath)
	}

	sp, err := t.poseSpaceLocked(a, sub)
	if err != nil {
		return vr.InputPoseActionData{Active: false}, vr.InputErrorNone
	}
	pose, ok := t.resolver.LocateInOrigin(sp, origin, t.snap.time)
	if !ok {
		return vr.InputPoseActionData{Active: false}, vr.InputErrorNone
	}
	return vr.InputPoseActionData{
		Active:       true,
		ActiveOrigin: t.handles.sourceByPath[sub],
		Pose:         pose,
	}, vr.InputErrorNone
}

func (t *Translator) poseSpaceLocked(a *action, sub string) (xrt.Space, error) {
	if sp, ok := a.spaces[sub]; ok {
		return sp, nil
	}
	if a.rt == nil {
		return nil, fmt.Errorf("input: action %s has no runtime action", a.path)
	}
	sp, err := a.rt.CreateSpace(sub, xrt.IdentityPose)
	if err != nil {
		return nil, err
	}
	a.spaces[sub] = sp
	return sp, nil
}

// skeletonHand derives the hand path from a manifest skeleton path
// ("/skeleton/hand/left").
func skeletonHand(skeletonPath string) string {
	if strings.HasSuffix(skeletonPath, "/right") {
		return "/user/hand/right"
	}
	return "/user/hand/left"
}

// TriggerHaptic plays a vibration on a haptic output action.
func (t *Translator) TriggerHaptic(h vr.ActionHandle, startOffset, duration time.Duration, frequency, amplitude float32, restrict vr.InputValueHandle) vr.InputError {
	_ = startOffset // legacy offset is accepted and ignored

	t.mu.RLock()
	defer t.mu.RUnlock()

	a := t.lookup(h)
	if a == nil {
		return vr.InputErrorInvalidHandle
	}
	if a.kind != kindHaptic {
		return vr.InputErrorWrongType
	}
	if a.rt == nil {
		return vr.InputErrorNone
	}
	if err := a.rt.ApplyHaptic(t.restrictPath(restrict), duration, frequency, amplitude); err != nil {
		logging.Logger().Debug("haptic failed", "action", a.path, "err", err)
	}
	return vr.InputErrorNone
}

// HapticPulse plays a vibration on a controller addressed by device
// index, backing the legacy per-device haptic call. The legacy axis
// argument is meaningless under the action model and is ignored by the
// caller before it gets here.
func (t *Translator) HapticPulse(index vr.TrackedDeviceIndex, duration time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.legacy == nil {
		return false
	}
	hand, ok := t.handForIndexLocked(index)
	if !ok {
		return false
	}
	// Legacy pulses carry no frequency or amplitude; use the documented
	// defaults applications expect from the original runtime.
	err := t.legacy.haptic.ApplyHaptic(handPaths[hand], duration, 160, 1)
	if err != nil {
		logging.Logger().Debug("legacy haptic failed", "index", index, "err", err)
		return false
	}
	return true
}

// OriginDeviceIndex maps an active origin handle to the stable device
// index that produced it.
func (t *Translator) OriginDeviceIndex(origin vr.InputValueHandle) (vr.TrackedDeviceIndex, vr.InputError) {
	t.mu.RLock()
	path := t.handles.sourcePath(origin)
	t.mu.RUnlock()

	switch path {
	case "/user/hand/left":
		return t.resolver.DeviceIndexForRole(vr.ControllerRoleLeftHand), vr.InputErrorNone
	case "/user/hand/right":
		return t.resolver.DeviceIndexForRole(vr.ControllerRoleRightHand), vr.InputErrorNone
	case "/user/head":
		return vr.TrackedDeviceIndexHmd, vr.InputErrorNone
	default:
		return vr.TrackedDeviceIndexInvalid, vr.InputErrorInvalidHandle
	}
}

// ControllerState answers the legacy button/axis poll for a device
// index from the built-in legacy action set. Present with or without a
// manifest.
func (t *Translator) ControllerState(index vr.TrackedDeviceIndex) (vr.ControllerState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.legacy == nil {
		return vr.ControllerState{}, false
	}
	hand, ok := t.handForIndexLocked(index)
	if !ok {
		return vr.ControllerState{}, false
	}
	return t.legacy.state(hand), true
}

// HandPose resolves a hand's grip or aim pose from the legacy pose
// actions at the snapshot's display time.
func (t *Translator) HandPose(index vr.TrackedDeviceIndex, origin vr.TrackingUniverseOrigin, aim bool) (vr.TrackedDevicePose, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.legacy == nil {
		return vr.TrackedDevicePose{}, false
	}
	hand, ok := t.handForIndexLocked(index)
	if !ok {
		return vr.TrackedDevicePose{}, false
	}
	sp, err := t.legacy.poseSpace(hand, aim)
	if err != nil {
		return vr.TrackedDevicePose{}, false
	}
	return t.resolver.LocateInOrigin(sp, origin, t.snap.time)
}

func (t *Translator) handForIndexLocked(index vr.TrackedDeviceIndex) (int, bool) {
	d, ok := t.resolver.Device(index)
	if !ok || !d.Connected {
		return 0, false
	}
	switch d.Role {
	case vr.ControllerRoleLeftHand:
		return 0, true
	case vr.ControllerRoleRightHand:
		return 1, true
	default:
		return 0, false
	}
}

// PacketNum returns the legacy input packet counter.
func (t *Translator) PacketNum() uint32 {
	return t.packetNum.Load()
}

// UsesLegacyInput reports whether the application never loaded a
// manifest and runs on the built-in legacy actions.
func (t *Translator) UsesLegacyInput() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.manifestPath == ""
}
