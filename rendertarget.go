package gravit

import (
	"image"
	"math"
)

// --- Canvas pool ---

// canvasPool manages reusable offscreen pixel buffers keyed by power-of-two
// dimensions. After warmup, Acquire/Release are allocation-free apart from
// the Canvas header.
type canvasPool struct {
	buckets map[uint64][]*image.RGBA

	acquired int // canvases handed out since the last resetStats
	live     int // canvases currently handed out
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared canvas covering the view-space rectangle bounds.
// The backing buffer is rounded up to the next power of two in each
// dimension.
func (p *canvasPool) Acquire(bounds image.Rectangle) *Canvas {
	w, h := max(bounds.Dx(), 0), max(bounds.Dy(), 0)
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	var backing *image.RGBA
	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			backing = stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
		}
	}
	if backing == nil {
		backing = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	p.acquired++
	p.live++

	// The canvas image shares the backing rows but starts at (0, 0).
	img := &image.RGBA{Pix: backing.Pix, Stride: backing.Stride, Rect: image.Rect(0, 0, w, h)}
	clearRGBA(img)
	return &Canvas{img: img, backing: backing, Origin: bounds.Min, Transform: IdentityTransform}
}

// Release returns a canvas's buffer to the pool. Unpooled canvases and nil
// are ignored. The canvas must not be used afterwards.
func (p *canvasPool) Release(c *Canvas) {
	if c == nil || c.backing == nil {
		return
	}
	b := c.backing.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*image.RGBA)
	}
	p.buckets[key] = append(p.buckets[key], c.backing)
	c.backing = nil
	c.img = &image.RGBA{}
	p.live--
}

func (p *canvasPool) resetStats() {
	p.acquired = 0
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
