package compositor

import (
	"image"

	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/space"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

// FrameSource supplies a world-anchored quad composited over the scene
// each frame. Dashboards and status panels implement it; the bridge
// polls it after both eyes are submitted.
type FrameSource interface {
	// Frame returns the quad's current contents, or nil to skip this
	// frame.
	Frame() *image.RGBA

	// Placement returns the quad's pose in the given-out origin and its
	// world extent in meters.
	Placement() (origin vr.TrackingUniverseOrigin, pose vr.HmdMatrix34, width, height float32)
}

// overlayTarget pairs a source with its swapchain ring.
type overlayTarget struct {
	src FrameSource
	eyeTarget
}

func (o *overlayTarget) destroy() {
	o.eyeTarget.destroy()
}

// AttachOverlay registers a frame source. Safe to call at any time; the
// quad appears from the next presented frame.
func (b *Bridge) AttachOverlay(src FrameSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlays = append(b.overlays, &overlayTarget{src: src})
}

// DetachOverlay removes a previously attached source.
func (b *Bridge) DetachOverlay(src FrameSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.overlays {
		if o.src == src {
			o.destroy()
			b.overlays = append(b.overlays[:i], b.overlays[i+1:]...)
			return
		}
	}
}

// overlayLayersLocked builds the quad layers for the current frame.
// Overlay failures never fail the frame; a broken overlay is dropped
// from this present only.
func (b *Bridge) overlayLayersLocked(sess xrt.Session) []xrt.CompositionLayer {
	if len(b.overlays) == 0 {
		return nil
	}
	layers := make([]xrt.CompositionLayer, 0, len(b.overlays))
	for _, o := range b.overlays {
		img := o.src.Frame()
		if img == nil {
			continue
		}
		w := uint32(img.Rect.Dx())
		h := uint32(img.Rect.Dy())
		if w == 0 || h == 0 {
			continue
		}
		sc, err := o.ensure(sess, w, h, 0)
		if err != nil {
			logging.Logger().Warn("overlay swapchain unavailable", "err", err)
			continue
		}
		idx, err := sc.Acquire()
		if err != nil {
			continue
		}
		if err := sc.Wait(b.frameTimeout()); err != nil {
			continue
		}
		if err := sc.Upload(idx, img); err != nil {
			logging.Logger().Warn("overlay upload failed", "err", err)
			sc.Release()
			continue
		}
		if err := sc.Release(); err != nil {
			continue
		}

		origin, mat, qw, qh := o.src.Placement()
		layers = append(layers, xrt.QuadLayer{
			Space:      b.resolver.RuntimeSpace(origin),
			Swapchain:  sc,
			ImageIndex: idx,
			Pose:       space.PoseFromMatrix34(mat),
			Width:      qw,
			Height:     qh,
		})
	}
	return layers
}
