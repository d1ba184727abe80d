package fakext

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xrbridge/xrt"
)

// Swapchain implements xrt.Swapchain over CPU images. There is no GPU
// behind it, so Texture always reports nil and submissions go through
// the Upload staging path.
type Swapchain struct {
	sess *Session
	info xrt.SwapchainInfo

	acquired  int // -1 when no image is held
	next      int
	destroyed bool

	// Images holds the last uploaded contents per ring slot.
	Images [3]*image.RGBA
	// Uploads counts Upload calls for assertions.
	Uploads int
}

// CreateSwapchain implements xrt.Session.
func (s *Session) CreateSwapchain(info xrt.SwapchainInfo) (xrt.Swapchain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil, fmt.Errorf("fakext: session destroyed")
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("fakext: zero swapchain extent")
	}
	sc := &Swapchain{sess: s, info: info, acquired: -1}
	s.swapchains = append(s.swapchains, sc)
	return sc, nil
}

// Swapchains returns every ring created on this session.
func (s *Session) Swapchains() []*Swapchain {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Swapchain, len(s.swapchains))
	copy(out, s.swapchains)
	return out
}

// Info implements xrt.Swapchain.
func (sc *Swapchain) Info() xrt.SwapchainInfo { return sc.info }

// ImageCount implements xrt.Swapchain.
func (sc *Swapchain) ImageCount() int { return len(sc.Images) }

// Acquire implements xrt.Swapchain.
func (sc *Swapchain) Acquire() (int, error) {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	if sc.destroyed {
		return 0, fmt.Errorf("fakext: swapchain destroyed")
	}
	if sc.acquired >= 0 {
		return 0, xrt.ErrSwapchainImageBusy
	}
	sc.acquired = sc.next
	sc.next = (sc.next + 1) % len(sc.Images)
	return sc.acquired, nil
}

// Wait implements xrt.Swapchain. Images are always immediately ready.
func (sc *Swapchain) Wait(timeout time.Duration) error {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	if sc.acquired < 0 {
		return fmt.Errorf("fakext: wait without acquire")
	}
	return nil
}

// Release implements xrt.Swapchain.
func (sc *Swapchain) Release() error {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	if sc.acquired < 0 {
		return fmt.Errorf("fakext: release without acquire")
	}
	sc.acquired = -1
	return nil
}

// Texture implements xrt.Swapchain; the fake runtime is CPU only.
func (sc *Swapchain) Texture(index int) hal.Texture { return nil }

// Upload implements xrt.Swapchain.
func (sc *Swapchain) Upload(index int, img *image.RGBA) error {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	if index < 0 || index >= len(sc.Images) {
		return fmt.Errorf("fakext: image index %d out of range", index)
	}
	sc.Images[index] = img
	sc.Uploads++
	return nil
}

// Destroy implements xrt.Swapchain.
func (sc *Swapchain) Destroy() error {
	sc.sess.mu.Lock()
	defer sc.sess.mu.Unlock()
	sc.destroyed = true
	return nil
}
