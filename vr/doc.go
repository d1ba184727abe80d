// Package vr defines the legacy runtime vocabulary: the types, constants
// and result codes that pre-built applications expect from the original
// client library.
//
// Everything in this package mirrors the legacy specification exactly.
// Method sets, value encodings and version strings must not drift, since
// applications probe interface versions by name and branch on specific
// numeric results. New functionality never goes here; it belongs in the
// engine packages that sit behind the shim.
package vr
