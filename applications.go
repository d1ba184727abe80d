package xrbridge

import (
	"os"
	"sync"
)

// ApplicationError is the result class of the applications interface.
type ApplicationError int32

const (
	ApplicationErrorNone            ApplicationError = 0
	ApplicationErrorInvalidParameter ApplicationError = 110
	ApplicationErrorUnknownApplication ApplicationError = 103
)

// Applications implements the minimal IVRApplications surface. The
// engine hosts exactly one application: the process it runs in. Manifest
// registration is accepted and remembered so applications that insist on
// registering themselves keep working.
type Applications struct {
	e *engine

	mu        sync.Mutex
	manifests map[string]bool
	appKey    string
}

// AddApplicationManifest remembers a manifest path. The engine never
// launches applications, so the manifest is only bookkeeping.
func (a *Applications) AddApplicationManifest(path string, temporary bool) ApplicationError {
	if path == "" {
		return ApplicationErrorInvalidParameter
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.manifests == nil {
		a.manifests = make(map[string]bool)
	}
	a.manifests[path] = temporary
	return ApplicationErrorNone
}

// RemoveApplicationManifest forgets a registered manifest.
func (a *Applications) RemoveApplicationManifest(path string) ApplicationError {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.manifests[path]; !ok {
		return ApplicationErrorUnknownApplication
	}
	delete(a.manifests, path)
	return ApplicationErrorNone
}

// IdentifyApplication binds a process id to an application key. The
// engine only hosts its own process; other pids are rejected.
func (a *Applications) IdentifyApplication(pid uint32, appKey string) ApplicationError {
	if appKey == "" {
		return ApplicationErrorInvalidParameter
	}
	if pid != 0 && int(pid) != os.Getpid() {
		return ApplicationErrorUnknownApplication
	}
	a.mu.Lock()
	a.appKey = appKey
	a.mu.Unlock()
	return ApplicationErrorNone
}

// GetApplicationKeyByProcessId returns the key identified for a pid.
func (a *Applications) GetApplicationKeyByProcessId(pid uint32) (string, ApplicationError) {
	if pid != 0 && int(pid) != os.Getpid() {
		return "", ApplicationErrorUnknownApplication
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.appKey == "" {
		return "", ApplicationErrorUnknownApplication
	}
	return a.appKey, ApplicationErrorNone
}

// GetApplicationCount reports how many applications are known: the one
// identified by this process, or zero.
func (a *Applications) GetApplicationCount() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.appKey == "" {
		return 0
	}
	return 1
}

// GetCurrentSceneProcessId returns this process when a scene is active.
func (a *Applications) GetCurrentSceneProcessId() uint32 {
	if a.e.bridge.CanRenderScene() {
		return uint32(os.Getpid())
	}
	return 0
}
