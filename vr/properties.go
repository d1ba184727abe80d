package vr

// DeviceProperty identifies a tracked device property. Only the subset the
// engine can answer from interaction profile data and runtime properties
// is listed; unknown properties report PropertyErrorUnknownProperty.
type DeviceProperty int32

const (
	PropTrackingSystemNameString DeviceProperty = 1000
	PropModelNumberString        DeviceProperty = 1001
	PropSerialNumberString       DeviceProperty = 1002
	PropRenderModelNameString    DeviceProperty = 1003
	PropManufacturerNameString   DeviceProperty = 1005
	PropTrackingFirmwareVersionString DeviceProperty = 1006
	PropHardwareRevisionString   DeviceProperty = 1007
	PropDeviceIsWirelessBool     DeviceProperty = 1010
	PropDeviceIsChargingBool     DeviceProperty = 1011
	PropDeviceBatteryPercentageFloat DeviceProperty = 1012
	PropDeviceProvidesBatteryStatusBool DeviceProperty = 1026
	PropDeviceClassInt32         DeviceProperty = 1029
	PropRegisteredDeviceTypeString DeviceProperty = 1036
	PropNeverTracked             DeviceProperty = 1038

	PropDisplayFrequencyFloat      DeviceProperty = 2008
	PropUserIpdMetersFloat         DeviceProperty = 2003
	PropSecondsFromVsyncToPhotonsFloat DeviceProperty = 2001
	PropDisplayMCImageWidthInt32   DeviceProperty = 2038
	PropExpectedControllerCountInt32 DeviceProperty = 2074

	PropAttachedDeviceIdString   DeviceProperty = 3000
	PropSupportedButtonsUint64   DeviceProperty = 3006
	PropAxis0TypeInt32           DeviceProperty = 3007
	PropAxis1TypeInt32           DeviceProperty = 3008
	PropAxis2TypeInt32           DeviceProperty = 3009
	PropControllerRoleHintInt32  DeviceProperty = 3015
	PropControllerTypeString     DeviceProperty = 7000
	PropInputProfilePathString   DeviceProperty = 6000
)

// EventType identifies a legacy event delivered through PollNextEvent.
type EventType int32

const (
	EventNone EventType = 0

	EventTrackedDeviceActivated   EventType = 100
	EventTrackedDeviceDeactivated EventType = 101
	EventTrackedDeviceUpdated     EventType = 102
	EventTrackedDeviceRoleChanged EventType = 308

	EventInputFocusCaptured EventType = 400
	EventInputFocusReleased EventType = 401
	EventSceneFocusLost     EventType = 402
	EventSceneFocusGained   EventType = 403

	EventSeatedZeroPoseReset   EventType = 410
	EventStandingZeroPoseReset EventType = 411

	EventQuit                  EventType = 1400
	EventProcessQuit           EventType = 1403
	EventQuitAcknowledged      EventType = 1405
)

// Event is one entry of the legacy event queue.
type Event struct {
	Type             EventType
	TrackedDeviceIndex TrackedDeviceIndex
	// AgeSeconds is how long ago the event occurred.
	AgeSeconds float32
}
