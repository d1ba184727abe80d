package compositor

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/xrbridge/internal/logging"
	"github.com/gogpu/xrbridge/vr"
	"github.com/gogpu/xrbridge/xrt"
)

var (
	errUnsupportedFormat = errors.New("compositor: unsupported texture format")
	errNoTexture         = errors.New("compositor: texture has no backing")
)

// blitter moves one submitted eye image into a runtime swapchain image.
//
// Three paths, fastest first: zero-copy import when the runtime shares
// the application's device, a GPU readback plus runtime upload when the
// submission is a wgpu texture, and a plain CPU upload for image
// submissions. Cropped or flipped bounds force the CPU conversion step.
type blitter struct {
	device  hal.Device
	queue   hal.Queue
	timeout time.Duration
}

func newBlitter(binding xrt.GraphicsBinding, timeout time.Duration) *blitter {
	b := &blitter{timeout: timeout}
	if hb, ok := binding.(xrt.HALBinding); ok {
		b.device = hb.Device
		b.queue = hb.Queue
	}
	return b
}

// fullBounds reports whether bounds select the whole texture unflipped.
func fullBounds(bounds vr.TextureBounds) bool {
	if bounds.IsZero() {
		return true
	}
	return bounds.UMin == 0 && bounds.VMin == 0 && bounds.UMax == 1 && bounds.VMax == 1
}

// submit writes a texture into the swapchain and returns the image
// index to reference from the frame's composition layer.
func (b *blitter) submit(sc xrt.Swapchain, tex *vr.Texture, bounds vr.TextureBounds) (int, error) {
	if tex.Kind == vr.TextureKindHAL && fullBounds(bounds) && tex.Format == sc.Info().Format {
		if imp, ok := sc.(xrt.TextureImporter); ok {
			idx, err := imp.Import(tex.HAL)
			if err == nil {
				return idx, nil
			}
			if !errors.Is(err, xrt.ErrUnsupported) {
				return 0, fmt.Errorf("compositor: import texture: %w", err)
			}
			// Importer declined this texture; fall through to the copy.
		}
	}

	src, err := b.sourceImage(tex)
	if err != nil {
		return 0, err
	}
	img := convertBounds(src, bounds, int(sc.Info().Width), int(sc.Info().Height))

	idx, err := sc.Acquire()
	if err != nil {
		return 0, fmt.Errorf("compositor: acquire swapchain image: %w", err)
	}
	if err := sc.Wait(b.timeout); err != nil {
		return 0, fmt.Errorf("compositor: wait swapchain image: %w", err)
	}
	if err := b.writeImage(sc, idx, img); err != nil {
		return 0, err
	}
	if err := sc.Release(); err != nil {
		return 0, fmt.Errorf("compositor: release swapchain image: %w", err)
	}
	return idx, nil
}

// writeImage prefers a direct queue write into the swapchain's wgpu
// texture and falls back to the runtime's staging upload.
func (b *blitter) writeImage(sc xrt.Swapchain, idx int, img *image.RGBA) error {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if dst := sc.Texture(idx); dst != nil && b.queue != nil && sc.Info().Format == gputypes.TextureFormatRGBA8Unorm {
		b.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture: dst,
				Origin:  hal.Origin3D{},
				Aspect:  gputypes.TextureAspectAll,
			},
			img.Pix,
			&hal.ImageDataLayout{
				BytesPerRow:  uint32(img.Stride),
				RowsPerImage: uint32(h),
			},
			&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		)
		return nil
	}
	if err := sc.Upload(idx, img); err != nil {
		return fmt.Errorf("compositor: upload swapchain image: %w", err)
	}
	return nil
}

// sourceImage produces the CPU copy of a submitted texture.
func (b *blitter) sourceImage(tex *vr.Texture) (*image.RGBA, error) {
	switch tex.Kind {
	case vr.TextureKindImage:
		if tex.Image == nil {
			return nil, errNoTexture
		}
		return tex.Image, nil
	case vr.TextureKindHAL:
		if tex.HAL == nil {
			return nil, errNoTexture
		}
		return b.readback(tex)
	default:
		return nil, errNoTexture
	}
}

// readback copies a wgpu texture into system memory through a staging
// buffer. BytesPerRow is padded to the copy pitch alignment the copy
// engines require, then stripped.
func (b *blitter) readback(tex *vr.Texture) (*image.RGBA, error) {
	if b.device == nil || b.queue == nil {
		return nil, errors.New("compositor: no graphics device for texture readback")
	}
	bgra, rgba := readbackFormat(tex.Format)
	if !bgra && !rgba {
		return nil, fmt.Errorf("%w: %v", errUnsupportedFormat, tex.Format)
	}
	w, h := tex.Width, tex.Height
	if w == 0 || h == 0 {
		return nil, errNoTexture
	}

	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "bridge_blit_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create staging buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "bridge_blit",
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("bridge_blit"); err != nil {
		return nil, fmt.Errorf("compositor: begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex.HAL,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(tex.HAL, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex.HAL},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex.HAL,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("compositor: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("compositor: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("compositor: submit blit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, b.timeout)
	if err != nil {
		return nil, fmt.Errorf("compositor: wait for blit: %w", err)
	}
	if !ok {
		return nil, errors.New("compositor: blit fence timeout")
	}

	raw := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("compositor: read staging buffer: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := uint32(0); row < h; row++ {
		src := raw[row*alignedBytesPerRow : row*alignedBytesPerRow+bytesPerRow]
		dst := img.Pix[int(row)*img.Stride : int(row)*img.Stride+int(bytesPerRow)]
		copy(dst, src)
	}
	if bgra {
		swapBGRA(img.Pix)
	}
	return img, nil
}

// readbackFormat classifies the 8-bit formats the copy path handles.
func readbackFormat(f gputypes.TextureFormat) (bgra, rgba bool) {
	switch f {
	case gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true, false
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb, 0:
		return false, true
	default:
		return false, false
	}
}

func swapBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// convertBounds applies the submitted UV sub-rectangle, including the
// flipped-V convention GL applications use, and scales the result to
// the swapchain extent. A full-bounds same-size submission is returned
// untouched.
func convertBounds(src *image.RGBA, bounds vr.TextureBounds, dstW, dstH int) *image.RGBA {
	sw := src.Rect.Dx()
	sh := src.Rect.Dy()
	if fullBounds(bounds) && sw == dstW && sh == dstH {
		return src
	}

	u0, u1 := bounds.UMin, bounds.UMax
	v0, v1 := bounds.VMin, bounds.VMax
	if bounds.IsZero() {
		u0, v0, u1, v1 = 0, 0, 1, 1
	}
	flipH := u0 > u1
	if flipH {
		u0, u1 = u1, u0
	}
	flipV := v0 > v1
	if flipV {
		v0, v1 = v1, v0
	}

	crop := image.Rect(
		src.Rect.Min.X+int(u0*float32(sw)),
		src.Rect.Min.Y+int(v0*float32(sh)),
		src.Rect.Min.X+int(u1*float32(sw)),
		src.Rect.Min.Y+int(v1*float32(sh)),
	)
	if crop.Empty() {
		logging.Logger().Warn("submitted bounds select empty region")
		return image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	}

	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(out, out.Rect, src, crop, xdraw.Src, nil)
	if flipV {
		flipVertical(out)
	}
	if flipH {
		flipHorizontal(out)
	}
	return out
}

func flipVertical(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bot := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}

func flipHorizontal(img *image.RGBA) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w/2; x++ {
			l := row[x*4 : x*4+4]
			r := row[(w-1-x)*4 : (w-1-x)*4+4]
			for i := 0; i < 4; i++ {
				l[i], r[i] = r[i], l[i]
			}
		}
	}
}
