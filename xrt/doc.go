// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xrt defines the runtime interface the translation engine drives.
//
// A Runtime is the backend that actually talks to hardware: it owns the
// instance/session lifecycle, reference spaces, the action-binding model,
// swapchains and the frame loop. The engine consumes nothing beyond this
// interface, so runtimes are interchangeable; the in-memory double used by
// the test suite registers here exactly like a hardware runtime would.
//
// Runtimes are registered by name via Register, typically from an init()
// function, and selected by configuration or priority via Get and Default.
package xrt
