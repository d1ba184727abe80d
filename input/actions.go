package input

import (
	"strings"

	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// actionKind extends the runtime kinds with the legacy-only variants.
type actionKind int32

const (
	kindBoolean actionKind = iota
	kindFloat
	kindVector2
	kindVector3
	kindPose
	kindSkeleton
	kindHaptic
)

func (k actionKind) runtimeKind() xrt.ActionKind {
	switch k {
	case kindBoolean:
		return xrt.ActionKindBoolean
	case kindFloat, kindVector3:
		return xrt.ActionKindFloat
	case kindVector2:
		return xrt.ActionKindVector2
	case kindPose, kindSkeleton:
		return xrt.ActionKindPose
	case kindHaptic:
		return xrt.ActionKindVibration
	default:
		return xrt.ActionKindBoolean
	}
}

// action is one resolved manifest action. Immutable after resolution.
type action struct {
	handle  vr.ActionHandle
	path    string // lowercased manifest name
	setPath string
	kind    actionKind

	// declIndex is the position in the manifest; it decides binding
	// collisions (later declaration wins).
	declIndex int

	// skeletonPath is set for skeletal actions ("/skeleton/hand/left").
	skeletonPath string

	rt xrt.Action

	// spaces caches pose-action spaces per subaction path.
	spaces map[string]xrt.Space
}

// actionSet is one resolved manifest action set.
type actionSet struct {
	handle  vr.ActionSetHandle
	path    string
	rt      xrt.ActionSet
	actions []*action
}

// handleTable allocates and resolves the three legacy handle kinds.
// Handles are allocated on first lookup even for names that do not
// exist, matching legacy behavior; data queries on such handles simply
// report inactive.
type handleTable struct {
	next uint64

	actionByPath map[string]vr.ActionHandle
	actionByID   map[vr.ActionHandle]*action

	setByPath map[string]vr.ActionSetHandle
	setByID   map[vr.ActionSetHandle]*actionSet

	sourceByPath map[string]vr.InputValueHandle
	sourceByID   map[vr.InputValueHandle]string
}

func newHandleTable() *handleTable {
	return &handleTable{
		next:         1,
		actionByPath: make(map[string]vr.ActionHandle),
		actionByID:   make(map[vr.ActionHandle]*action),
		setByPath:    make(map[string]vr.ActionSetHandle),
		setByID:      make(map[vr.ActionSetHandle]*actionSet),
		sourceByPath: make(map[string]vr.InputValueHandle),
		sourceByID:   make(map[vr.InputValueHandle]string),
	}
}

func (t *handleTable) actionHandle(path string) vr.ActionHandle {
	key := strings.ToLower(path)
	if h, ok := t.actionByPath[key]; ok {
		return h
	}
	h := vr.ActionHandle(t.next)
	t.next++
	t.actionByPath[key] = h
	return h
}

func (t *handleTable) setHandle(path string) vr.ActionSetHandle {
	key := strings.ToLower(path)
	if h, ok := t.setByPath[key]; ok {
		return h
	}
	h := vr.ActionSetHandle(t.next)
	t.next++
	t.setByPath[key] = h
	return h
}

func (t *handleTable) sourceHandle(path string) vr.InputValueHandle {
	key := strings.ToLower(path)
	if h, ok := t.sourceByPath[key]; ok {
		return h
	}
	h := vr.InputValueHandle(t.next)
	t.next++
	t.sourceByPath[key] = h
	t.sourceByID[h] = key
	return h
}

func (t *handleTable) sourcePath(h vr.InputValueHandle) string {
	return t.sourceByID[h]
}

// sanitizeName turns a manifest action path into a runtime-legal action
// name: "/actions/main/in/fire" → "main_in_fire".
func sanitizeName(path string) string {
	s := strings.TrimPrefix(strings.ToLower(path), "/actions/")
	s = strings.ReplaceAll(s, "/", "_")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
