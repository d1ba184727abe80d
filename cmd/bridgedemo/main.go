// Command bridgedemo runs a small legacy-style frame loop against the
// translation engine, using the built-in fake runtime when no real one
// is registered. It exercises the same calls a legacy application makes:
// interface acquisition, WaitGetPoses, per-eye Submit and event polling.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/xrbridge"
	_ "github.com/gogpu/xrbridge/internal/fakext"
	"github.com/gogpu/xrbridge/vr"
)

func main() {
	var (
		frames  = flag.Int("frames", 300, "number of frames to run")
		runtime = flag.String("runtime", "", "runtime name (empty: auto)")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	xrbridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if errc := xrbridge.Init(xrbridge.InitOptions{Runtime: *runtime}); errc != vr.InitErrorNone {
		log.Fatalf("init failed: %v", errc)
	}
	defer xrbridge.Shutdown()

	sysIface, errc := xrbridge.GetGenericInterface(vr.IVRSystemVersion)
	if errc != vr.InitErrorNone {
		log.Fatalf("no system interface: %v", errc)
	}
	system := sysIface.(*xrbridge.System)

	compIface, errc := xrbridge.GetGenericInterface(vr.IVRCompositorVersion)
	if errc != vr.InitErrorNone {
		log.Fatalf("no compositor interface: %v", errc)
	}
	comp := compIface.(*xrbridge.Compositor)

	w, h := system.GetRecommendedRenderTargetSize()
	log.Printf("render target %dx%d per eye", w, h)

	// Small CPU eye buffers stand in for a real renderer.
	left := solidImage(64, 64, color.RGBA{R: 255, A: 255})
	right := solidImage(64, 64, color.RGBA{B: 255, A: 255})

	poses := make([]vr.TrackedDevicePose, vr.MaxTrackedDeviceCount)
	for i := 0; i < *frames; i++ {
		if errc := comp.WaitGetPoses(poses, nil); errc != vr.CompositorErrorNone {
			log.Printf("frame %d: wait: %v", i, errc)
			break
		}

		for ev, ok := system.PollNextEvent(); ok; ev, ok = system.PollNextEvent() {
			log.Printf("event: type=%d device=%d", ev.Type, ev.TrackedDeviceIndex)
			if ev.Type == vr.EventQuit {
				return
			}
		}

		submit(comp, vr.EyeLeft, left)
		submit(comp, vr.EyeRight, right)
	}

	timing := comp.GetFrameTiming()
	log.Printf("done: %d frames presented, %d reprojected",
		timing.FrameIndex, timing.NumMisPresented)
}

func submit(comp *xrbridge.Compositor, eye vr.Eye, img *image.RGBA) {
	tex := &vr.Texture{Kind: vr.TextureKindImage, Image: img}
	if errc := comp.Submit(eye, tex, nil, vr.SubmitDefault); errc != vr.CompositorErrorNone {
		log.Printf("submit eye %d: %v", eye, errc)
	}
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
