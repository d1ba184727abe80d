package compositor

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/xrt"
)

// eyeTarget owns the runtime swapchain one eye is submitted through.
// The ring is created lazily from the first submission and recreated
// whenever the application changes texture extent or format; legacy
// applications are allowed to do that mid-session (render scale
// changes).
type eyeTarget struct {
	sc   xrt.Swapchain
	info xrt.SwapchainInfo
}

// ensure returns a swapchain matching the wanted geometry, recreating
// the ring if the current one differs.
func (e *eyeTarget) ensure(sess xrt.Session, width, height uint32, format gputypes.TextureFormat) (xrt.Swapchain, error) {
	if format == 0 {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	want := xrt.SwapchainInfo{
		Format:      format,
		Width:       width,
		Height:      height,
		SampleCount: 1,
	}
	if e.sc != nil && e.info == want {
		return e.sc, nil
	}
	if e.sc != nil {
		logging.Logger().Info("recreating eye swapchain",
			"old_w", e.info.Width, "old_h", e.info.Height,
			"new_w", width, "new_h", height, "format", format)
		if err := e.sc.Destroy(); err != nil {
			logging.Logger().Warn("swapchain destroy failed", "err", err)
		}
		e.sc = nil
	}
	sc, err := sess.CreateSwapchain(want)
	if err != nil {
		return nil, fmt.Errorf("compositor: create swapchain %dx%d: %w", width, height, err)
	}
	e.sc = sc
	e.info = want
	return sc, nil
}

func (e *eyeTarget) destroy() {
	if e.sc == nil {
		return
	}
	if err := e.sc.Destroy(); err != nil {
		logging.Logger().Warn("swapchain destroy failed", "err", err)
	}
	e.sc = nil
	e.info = xrt.SwapchainInfo{}
}
