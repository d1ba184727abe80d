package vr

// Interface version strings accepted by the shim. Applications request an
// interface with an exact version-tagged name and must receive the same
// negative answer the original runtime gives for versions the engine does
// not carry.
const (
	IVRSystemVersion       = "IVRSystem_022"
	IVRCompositorVersion   = "IVRCompositor_028"
	IVRInputVersion        = "IVRInput_010"
	IVRChaperoneVersion    = "IVRChaperone_004"
	IVRApplicationsVersion = "IVRApplications_007"
)

// SupportedVersions lists every version string the shim answers, newest
// first per interface. Older versions share the newest implementation;
// the legacy ABI only ever extended method tables at the end.
var SupportedVersions = map[string][]string{
	"IVRSystem": {
		"IVRSystem_022", "IVRSystem_021", "IVRSystem_020", "IVRSystem_019",
	},
	"IVRCompositor": {
		"IVRCompositor_028", "IVRCompositor_027", "IVRCompositor_026",
	},
	"IVRInput": {
		"IVRInput_010", "IVRInput_007",
	},
	"IVRChaperone": {
		"IVRChaperone_004", "IVRChaperone_003",
	},
	"IVRApplications": {
		"IVRApplications_007",
	},
}
