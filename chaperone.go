package xrbridge

import (
	"github.com/gogpu/xrbridge/vr"
)

// ChaperoneCalibrationState reports play-area calibration quality.
type ChaperoneCalibrationState int32

const (
	ChaperoneCalibrationStateOK ChaperoneCalibrationState = 1
	ChaperoneCalibrationStateWarning
	ChaperoneCalibrationStateError ChaperoneCalibrationState = 200
)

// Default play area reported when the runtime does not expose bounds:
// a conservative 2x2 meter standing space.
const (
	defaultPlayAreaX float32 = 2.0
	defaultPlayAreaZ float32 = 2.0
)

// Chaperone implements the IVRChaperone interface surface. The runtime
// underneath owns the real boundary; the engine reports a calibrated
// fixed-size play area so legacy applications can place their UI.
type Chaperone struct {
	e *engine
}

// GetCalibrationState reports whether the play area is usable.
func (c *Chaperone) GetCalibrationState() ChaperoneCalibrationState {
	if ok, _ := c.e.mgr.Running(); !ok {
		return ChaperoneCalibrationStateError
	}
	return ChaperoneCalibrationStateOK
}

// GetPlayAreaSize returns the play area extents in meters.
func (c *Chaperone) GetPlayAreaSize() (x, z float32, ok bool) {
	if running, _ := c.e.mgr.Running(); !running {
		return 0, 0, false
	}
	return defaultPlayAreaX, defaultPlayAreaZ, true
}

// GetPlayAreaRect returns the play area corners, counter-clockwise on
// the floor around the standing origin.
func (c *Chaperone) GetPlayAreaRect() (corners [4]vr.HmdVector3, ok bool) {
	x, z, ok := c.GetPlayAreaSize()
	if !ok {
		return corners, false
	}
	hx, hz := x/2, z/2
	corners[0] = vr.HmdVector3{hx, 0, -hz}
	corners[1] = vr.HmdVector3{-hx, 0, -hz}
	corners[2] = vr.HmdVector3{-hx, 0, hz}
	corners[3] = vr.HmdVector3{hx, 0, hz}
	return corners, true
}

// AreBoundsVisible reports whether the runtime is drawing its boundary.
// The engine cannot observe that; it answers false so applications never
// dim their scene.
func (c *Chaperone) AreBoundsVisible() bool {
	return false
}

// ForceBoundsVisible is accepted and ignored; boundary rendering belongs
// to the runtime.
func (c *Chaperone) ForceBoundsVisible(force bool) {
	_ = force
}

// ReloadInfo is accepted and ignored; there is no chaperone file to
// reload.
func (c *Chaperone) ReloadInfo() {}
