package gravit

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
)

// RenderOptions configures RenderImage.
type RenderOptions struct {
	// Node limits rendering to one element. Nil renders every layer.
	Node *Node
	// Scale is the output resolution in pixels per scene unit. Zero means 1.
	Scale float64
	// Background, when its alpha is non-zero, fills the image first.
	Background Color
	// Mode is the paint mode; the zero value renders in PaintFull. Use
	// PaintOutput for final output.
	Mode PaintMode
}

// RenderImage renders a scene, or one element of it, headlessly into a new
// premultiplied image covering the paint bounds. The image origin is the
// top-left corner of those bounds.
func RenderImage(s *Scene, opts RenderOptions) *image.RGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	area := s.PaintBBox()
	if opts.Node != nil {
		area = opts.Node.PaintBBox()
	}
	view := Scale(scale, scale).Multiply(Translate(-area.X, -area.Y))
	bounds := view.MapRect(area).Pixels()
	if bounds.Empty() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	bounds = bounds.Sub(bounds.Min)

	c := NewCanvas(bounds)
	c.Transform = view
	if opts.Background.A > 0 {
		c.FillColor(opts.Background, SourceOver)
	}
	pc := NewPaintContext(c, opts.Mode)
	if opts.Node != nil {
		pc.Paint(opts.Node)
	} else {
		pc.PaintScene(s)
	}
	return c.Image()
}

// Thumbnail scales img to fit inside a maxSize x maxSize square, keeping
// the aspect ratio. Images already small enough are returned unchanged.
func Thumbnail(img *image.RGBA, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}
	if w >= h {
		w, h = maxSize, max(1, h*maxSize/w)
	} else {
		w, h = max(1, w*maxSize/h), maxSize
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(out, out.Rect, img, b, xdraw.Src, nil)
	return out
}

// toNRGBA converts premultiplied RGBA to straight-alpha NRGBA for encoding.
func toNRGBA(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := src.PixOffset(b.Min.X, b.Min.Y+y)
		di := img.PixOffset(0, y)
		for x := 0; x < b.Dx()*4; x += 4 {
			r, g, bl, a := src.Pix[si+x], src.Pix[si+x+1], src.Pix[si+x+2], src.Pix[si+x+3]
			if a > 0 && a < 255 {
				r = uint8(min(int(r)*255/int(a), 255))
				g = uint8(min(int(g)*255/int(a), 255))
				bl = uint8(min(int(bl)*255/int(a), 255))
			}
			img.Pix[di+x] = r
			img.Pix[di+x+1] = g
			img.Pix[di+x+2] = bl
			img.Pix[di+x+3] = a
		}
	}
	return img
}

// WritePNG encodes a rendered image to a PNG file at the given path.
func WritePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, toNRGBA(img)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ExportPNG renders the whole scene at scale in output mode and writes it
// to path.
func ExportPNG(s *Scene, path string, scale float64) error {
	return WritePNG(path, RenderImage(s, RenderOptions{Scale: scale, Mode: PaintOutput}))
}

// ExportSnapshot writes the scene to dir under a timestamped file name
// derived from label and returns the path.
func ExportSnapshot(s *Scene, dir, label string, scale float64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	return path, ExportPNG(s, path, scale)
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
