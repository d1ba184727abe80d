package vr

import "fmt"

// InitError is the legacy initialization/acquisition result class.
type InitError int32

const (
	InitErrorNone InitError = 0

	InitErrorUnknown               InitError = 1
	InitErrorInitInstallationNotFound InitError = 100
	InitErrorInitNotInitialized    InitError = 109
	InitErrorInitInterfaceNotFound InitError = 105
	InitErrorInitAlreadyRunning    InitError = 111
	InitErrorInitHmdNotFound       InitError = 108
)

func (e InitError) Error() string {
	switch e {
	case InitErrorNone:
		return "VRInitError_None"
	case InitErrorInitInterfaceNotFound:
		return "VRInitError_Init_InterfaceNotFound"
	case InitErrorInitNotInitialized:
		return "VRInitError_Init_NotInitialized"
	case InitErrorInitHmdNotFound:
		return "VRInitError_Init_HmdNotFound"
	case InitErrorInitAlreadyRunning:
		return "VRInitError_Init_AlreadyRunning"
	case InitErrorInitInstallationNotFound:
		return "VRInitError_Init_InstallationNotFound"
	default:
		return fmt.Sprintf("VRInitError(%d)", int32(e))
	}
}

// PropertyError is the result class of device property queries.
type PropertyError int32

const (
	PropertySuccess PropertyError = iota
	PropertyErrorWrongDataType
	PropertyErrorWrongDeviceClass
	PropertyErrorBufferTooSmall
	PropertyErrorUnknownProperty
	PropertyErrorInvalidDevice
	PropertyErrorCouldNotContactServer
	PropertyErrorValueNotProvidedByDevice
	PropertyErrorStringExceedsMaximumLength
	PropertyErrorNotYetAvailable
)

// InputError is the result class of the input interface.
type InputError int32

const (
	InputErrorNone InputError = iota
	InputErrorNameNotFound
	InputErrorWrongType
	InputErrorInvalidHandle
	InputErrorInvalidParam
	InputErrorNoSteam
	InputErrorMaxCapacityReached
	InputErrorIPCError
	InputErrorNoActiveActionSet
	InputErrorInvalidDevice
	InputErrorInvalidSkeleton
	InputErrorInvalidBoneCount
	InputErrorInvalidCompressedData
	InputErrorNoData
	InputErrorBufferTooSmall
	InputErrorMismatchedActionManifest
	InputErrorMissingSkeletonData
	InputErrorInvalidBoneIndex
	InputErrorInvalidPriority
	InputErrorPermissionDenied
	InputErrorInvalidRenderModel
)

// CompositorError is the result class of the compositor interface.
type CompositorError int32

const (
	CompositorErrorNone               CompositorError = 0
	CompositorErrorRequestFailed      CompositorError = 1
	CompositorErrorIncompatibleVersion CompositorError = 100
	CompositorErrorDoNotHaveFocus     CompositorError = 101
	CompositorErrorInvalidTexture     CompositorError = 102
	CompositorErrorIsNotSceneApplication CompositorError = 103
	CompositorErrorTextureIsOnWrongDevice CompositorError = 104
	CompositorErrorTextureUsesUnsupportedFormat CompositorError = 105
	CompositorErrorSharedTexturesNotSupported   CompositorError = 106
	CompositorErrorIndexOutOfRange    CompositorError = 107
	CompositorErrorAlreadySubmitted   CompositorError = 108
	CompositorErrorInvalidBounds      CompositorError = 109
	CompositorErrorAlreadySet         CompositorError = 110
)

func (e CompositorError) String() string {
	switch e {
	case CompositorErrorNone:
		return "None"
	case CompositorErrorRequestFailed:
		return "RequestFailed"
	case CompositorErrorDoNotHaveFocus:
		return "DoNotHaveFocus"
	case CompositorErrorInvalidTexture:
		return "InvalidTexture"
	case CompositorErrorTextureIsOnWrongDevice:
		return "TextureIsOnWrongDevice"
	case CompositorErrorTextureUsesUnsupportedFormat:
		return "TextureUsesUnsupportedFormat"
	case CompositorErrorAlreadySubmitted:
		return "AlreadySubmitted"
	case CompositorErrorInvalidBounds:
		return "InvalidBounds"
	default:
		return fmt.Sprintf("CompositorError(%d)", int32(e))
	}
}
