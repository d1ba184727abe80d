package xrbridge

import (
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xrbridge/compositor"
	"github.com/gogpu/xrbridge/config"
	"github.com/gogpu/xrbridge/input"
	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/session"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// InitOptions configures Init. The zero value selects the best
// registered runtime and a headless graphics binding.
type InitOptions struct {
	// Runtime pins a registered runtime by name. Overrides the config
	// file; empty selects by registry priority.
	Runtime string

	// ConfigPath points at an override file. Empty falls back to the
	// XRBRIDGE_CONFIG environment variable, then defaults.
	ConfigPath string

	// Graphics shares the application's GPU device with the runtime.
	// The provider should also implement HalDevice() any and
	// HalQueue() any returning wgpu/hal types; otherwise the engine
	// falls back to CPU staging submission.
	Graphics gpucontext.DeviceProvider

	// Binding overrides graphics binding detection entirely.
	Binding xrt.GraphicsBinding
}

// engine is the process-wide translation engine state. One engine per
// process, matching the legacy singleton interface model.
type engine struct {
	cfg      *config.Config
	mgr      *session.Manager
	resolver *space.Resolver
	input    *input.Translator
	bridge   *compositor.Bridge

	// shims caches interface objects so repeated GetGenericInterface
	// calls return the same instance.
	shims map[string]any
}

var (
	engineMu sync.Mutex
	active   *engine
)

// Init starts the translation engine: it loads configuration, selects a
// runtime, creates the runtime session, and wires the pose, input and
// compositor subsystems. Returns InitErrorNone on success.
//
// A second Init without an intervening Shutdown fails with
// InitErrorInitAlreadyRunning.
func Init(opts InitOptions) vr.InitError {
	engineMu.Lock()
	defer engineMu.Unlock()
	if active != nil {
		return vr.InitErrorInitAlreadyRunning
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		logging.Logger().Warn("config load failed; using defaults", "err", err)
		cfg = config.Default()
	}

	name := opts.Runtime
	if name == "" {
		name = cfg.Runtime
	}
	var rt xrt.Runtime
	if name != "" {
		rt = xrt.Get(name)
	} else {
		rt = xrt.Default()
	}
	if rt == nil {
		logging.Logger().Error("no runtime available", "requested", name,
			"registered", xrt.Available())
		return vr.InitErrorInitInstallationNotFound
	}

	binding := opts.Binding
	if binding == nil {
		binding = detectBinding(opts.Graphics, cfg.Backend)
	}

	mgr := session.NewManager(rt)
	resolver := space.NewResolver()
	translator := input.New(mgr, resolver, cfg)

	mgr.OnDevicesChanged(func() {
		for _, ev := range resolver.SyncDevices() {
			mgr.QueueEvent(ev)
		}
	})

	if err := mgr.Init(binding); err != nil {
		logging.Logger().Error("runtime init failed", "runtime", rt.Name(), "err", err)
		return vr.InitErrorInitHmdNotFound
	}
	if err := resolver.Bind(mgr.Session()); err != nil {
		logging.Logger().Error("space setup failed", "err", err)
		mgr.Shutdown()
		return vr.InitErrorUnknown
	}

	bridge := compositor.NewBridge(mgr, resolver, translator, cfg)

	if !cfg.DisableEventDrain {
		mgr.StartEventDrain()
	}

	active = &engine{
		cfg:      cfg,
		mgr:      mgr,
		resolver: resolver,
		input:    translator,
		bridge:   bridge,
		shims:    make(map[string]any),
	}
	logging.Logger().Info("engine initialized",
		"runtime", rt.Name(), "backend", binding.Backend())
	return vr.InitErrorNone
}

// Shutdown stops the engine and releases the runtime session. Safe to
// call when the engine was never initialized.
func Shutdown() {
	engineMu.Lock()
	e := active
	active = nil
	engineMu.Unlock()
	if e == nil {
		return
	}

	e.bridge.Reset()
	e.input.Reset()
	e.resolver.Unbind()
	e.mgr.Shutdown()
	logging.Logger().Info("engine shut down")
}

// IsHmdPresent reports whether a headset could be reached without fully
// initializing the engine.
func IsHmdPresent() bool {
	engineMu.Lock()
	defer engineMu.Unlock()
	if active != nil {
		return true
	}
	return xrt.Default() != nil
}

// IsRuntimeInstalled reports whether any runtime is registered.
func IsRuntimeInstalled() bool {
	return xrt.Default() != nil
}

// RuntimeVersion returns the engine's legacy runtime version string.
func RuntimeVersion() string {
	return RuntimeVersionString
}

// current returns the active engine, or nil with the matching init error.
func current() (*engine, vr.InitError) {
	engineMu.Lock()
	defer engineMu.Unlock()
	if active == nil {
		return nil, vr.InitErrorInitNotInitialized
	}
	return active, vr.InitErrorNone
}

// halProvider is the optional device-sharing capability of a graphics
// provider, returning wgpu/hal types behind any.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// detectBinding derives the graphics binding from the application's
// device provider and the configured backend override.
func detectBinding(provider gpucontext.DeviceProvider, backend string) xrt.GraphicsBinding {
	if backend == "headless" || provider == nil {
		return xrt.HeadlessBinding{}
	}
	hp, ok := provider.(halProvider)
	if !ok {
		logging.Logger().Warn("device provider has no HAL access; using headless binding")
		return xrt.HeadlessBinding{}
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		logging.Logger().Warn("provider HalDevice is not hal.Device; using headless binding")
		return xrt.HeadlessBinding{}
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		logging.Logger().Warn("provider HalQueue is not hal.Queue; using headless binding")
		return xrt.HeadlessBinding{}
	}
	return xrt.HALBinding{Device: device, Queue: queue}
}
