package vr

// ButtonID identifies a digital control in the legacy button mask.
type ButtonID uint32

const (
	ButtonSystem          ButtonID = 0
	ButtonApplicationMenu ButtonID = 1
	ButtonGrip            ButtonID = 2
	ButtonDPadLeft        ButtonID = 3
	ButtonDPadUp          ButtonID = 4
	ButtonDPadRight       ButtonID = 5
	ButtonDPadDown        ButtonID = 6
	ButtonA               ButtonID = 7
	ButtonProximitySensor ButtonID = 31
	ButtonAxis0           ButtonID = 32
	ButtonAxis1           ButtonID = 33
	ButtonAxis2           ButtonID = 34
	ButtonAxis3           ButtonID = 35
	ButtonAxis4           ButtonID = 36

	// Aliases from the original headers.
	ButtonSteamVRTouchpad = ButtonAxis0
	ButtonSteamVRTrigger  = ButtonAxis1
)

// ButtonMaskFromID converts a button id to its bit in the pressed/touched
// masks of ControllerState.
func ButtonMaskFromID(id ButtonID) uint64 {
	return 1 << uint64(id)
}

// ButtonMask builds a mask from several button ids.
func ButtonMask(ids ...ButtonID) uint64 {
	var m uint64
	for _, id := range ids {
		m |= ButtonMaskFromID(id)
	}
	return m
}

// ControllerAxisType describes what an analog axis slot carries.
type ControllerAxisType int32

const (
	ControllerAxisNone ControllerAxisType = iota
	ControllerAxisTrackPad
	ControllerAxisJoystick
	ControllerAxisTrigger
)
