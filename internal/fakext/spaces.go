package fakext

import (
	"fmt"

	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/xrt"
)

// spaceKind discriminates the fake space variants.
type spaceKind int

const (
	spaceReference spaceKind = iota
	spaceDevice
	spaceAction
)

// Space implements xrt.Space. Every space resolves to a pose in stage
// coordinates; locating one space in another composes those.
type Space struct {
	sess   *Session
	kind   spaceKind
	ref    xrt.ReferenceSpaceType
	device xrt.DeviceID
	offset xrt.Posef
}

// Destroy implements xrt.Space.
func (sp *Space) Destroy() error { return nil }

// localOrigin is where the local (seated) origin sits in stage
// coordinates: head height at session start.
var localOrigin = xrt.Posef{Orientation: xrt.IdentityQuaternion, Position: xrt.Vector3f{Y: 1.6}}

// CreateReferenceSpace implements xrt.Session.
func (s *Session) CreateReferenceSpace(ty xrt.ReferenceSpaceType, offset xrt.Posef) (xrt.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, fmt.Errorf("fakext: session destroyed")
	}
	return &Space{sess: s, kind: spaceReference, ref: ty, offset: offset}, nil
}

// CreateDeviceSpace implements xrt.Session.
func (s *Session) CreateDeviceSpace(id xrt.DeviceID) (xrt.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.poses[id]; !ok {
		return nil, xrt.ErrUnsupported
	}
	return &Space{sess: s, kind: spaceDevice, device: id, offset: xrt.IdentityPose}, nil
}

// stagePoseLocked resolves a space to stage coordinates.
func (s *Session) stagePoseLocked(sp *Space) (xrt.Posef, bool) {
	var base xrt.Posef
	switch sp.kind {
	case spaceReference:
		switch sp.ref {
		case xrt.ReferenceSpaceStage:
			base = xrt.IdentityPose
		case xrt.ReferenceSpaceLocal:
			base = localOrigin
		case xrt.ReferenceSpaceView:
			base = s.poses[headID]
		default:
			return xrt.Posef{}, false
		}
	case spaceDevice, spaceAction:
		p, ok := s.poses[sp.device]
		if !ok {
			return xrt.Posef{}, false
		}
		if !s.deviceConnectedLocked(sp.device) {
			return xrt.Posef{}, false
		}
		base = p
	default:
		return xrt.Posef{}, false
	}
	return space.MulPose(base, sp.offset), true
}

func (s *Session) deviceConnectedLocked(id xrt.DeviceID) bool {
	for i := range s.devices {
		if s.devices[i].ID == id {
			return s.devices[i].Connected
		}
	}
	return false
}

// LocateSpace implements xrt.Session.
func (s *Session) LocateSpace(target, base xrt.Space, t xrt.Time) (xrt.SpaceLocation, error) {
	ts, ok1 := target.(*Space)
	bs, ok2 := base.(*Space)
	if !ok1 || !ok2 {
		return xrt.SpaceLocation{}, fmt.Errorf("fakext: foreign space")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return xrt.SpaceLocation{}, xrt.ErrSessionLost
	}
	tp, ok := s.stagePoseLocked(ts)
	if !ok {
		return xrt.SpaceLocation{}, nil // zero flags: not locatable
	}
	bp, ok := s.stagePoseLocked(bs)
	if !ok {
		return xrt.SpaceLocation{}, nil
	}

	const tracked = xrt.SpaceLocationOrientationValid | xrt.SpaceLocationPositionValid |
		xrt.SpaceLocationOrientationTracked | xrt.SpaceLocationPositionTracked
	return xrt.SpaceLocation{
		Flags: tracked,
		Pose:  space.MulPose(space.InvertPose(bp), tp),
	}, nil
}

// LocateViews implements xrt.Session. Stereo views sit at a fixed IPD
// around the head pose with a symmetric 90 degree field of view.
func (s *Session) LocateViews(base xrt.Space, t xrt.Time) ([2]xrt.View, error) {
	bs, ok := base.(*Space)
	if !ok {
		return [2]xrt.View{}, fmt.Errorf("fakext: foreign space")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lost {
		return [2]xrt.View{}, xrt.ErrSessionLost
	}
	bp, ok := s.stagePoseLocked(bs)
	if !ok {
		return [2]xrt.View{}, fmt.Errorf("fakext: base space not locatable")
	}
	head := space.MulPose(space.InvertPose(bp), s.poses[headID])

	const halfIPD = 0.032
	fov := xrt.Fov{AngleLeft: -0.7854, AngleRight: 0.7854, AngleUp: 0.7854, AngleDown: -0.7854}
	left := head
	left.Position = space.AddVec(left.Position, space.RotateVec(head.Orientation, xrt.Vector3f{X: -halfIPD}))
	right := head
	right.Position = space.AddVec(right.Position, space.RotateVec(head.Orientation, xrt.Vector3f{X: halfIPD}))

	return [2]xrt.View{
		{Pose: left, Fov: fov},
		{Pose: right, Fov: fov},
	}, nil
}
