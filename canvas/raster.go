package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/vector"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Raster is the server-side bitmap behind a Surface. Coordinates in ops are
// logical and get multiplied by the current scale.
type Raster struct {
	mu    sync.RWMutex
	img   *image.RGBA
	scale float64
	z     *vector.Rasterizer
}

func NewRaster() *Raster {
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, 0, 0)),
		scale: 1,
		z:     vector.NewRasterizer(0, 0),
	}
}

func (r *Raster) Apply(ops ...Op) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpTransform:
			r.resize(op.Width, op.Height, op.Scale)
		case OpFillRect:
			r.fillRect(op)
		case OpSegment:
			r.stroke(op)
		}
	}
}

// At returns the backing-store pixel at (x, y).
func (r *Raster) At(x, y int) color.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.img.RGBAAt(x, y)
}

func (r *Raster) Bounds() image.Rectangle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.img.Bounds()
}

// EncodePNG writes a snapshot of the bitmap.
func (r *Raster) EncodePNG(w io.Writer) error {
	r.mu.RLock()
	snapshot := image.NewRGBA(r.img.Bounds())
	copy(snapshot.Pix, r.img.Pix)
	r.mu.RUnlock()
	return png.Encode(w, snapshot)
}

func (r *Raster) resize(width, height, scale float64) {
	scale = clampFinite(scale, 1, MaxPixelRatio, 1)
	w := int(math.Ceil(clampFinite(width*scale, 0, MaxBackingSide, 0)))
	h := int(math.Ceil(clampFinite(height*scale, 0, MaxBackingSide, 0)))
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.scale = scale
}

func (r *Raster) fillRect(op Op) {
	c, err := ParseHex(op.Color)
	if err != nil {
		return
	}
	rect := image.Rect(
		int(math.Floor(op.X0*r.scale)),
		int(math.Floor(op.Y0*r.scale)),
		int(math.Ceil((op.X0+op.Width)*r.scale)),
		int(math.Ceil((op.Y0+op.Height)*r.scale)),
	).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// stroke paints a segment with round caps as two discs joined by a quad.
func (r *Raster) stroke(op Op) {
	bounds := r.img.Bounds()
	if bounds.Empty() {
		return
	}
	c, err := ParseHex(op.Color)
	if err != nil {
		return
	}
	src := image.NewUniform(c)
	radius := float32(op.LineWidth * r.scale / 2)
	if radius <= 0 {
		return
	}
	ax, ay := float32(op.X0*r.scale), float32(op.Y0*r.scale)
	bx, by := float32(op.X1*r.scale), float32(op.Y1*r.scale)

	r.disc(ax, ay, radius, src)
	if ax == bx && ay == by {
		return
	}
	r.disc(bx, by, radius, src)

	dx, dy := bx-ax, by-ay
	length := float32(math.Hypot(float64(dx), float64(dy)))
	nx, ny := -dy/length*radius, dx/length*radius

	r.begin()
	r.z.MoveTo(ax+nx, ay+ny)
	r.z.LineTo(bx+nx, by+ny)
	r.z.LineTo(bx-nx, by-ny)
	r.z.LineTo(ax-nx, ay-ny)
	r.z.ClosePath()
	r.z.Draw(r.img, bounds, src, image.Point{})
}

func (r *Raster) disc(cx, cy, rad float32, src image.Image) {
	k := rad * kappa
	r.begin()
	r.z.MoveTo(cx+rad, cy)
	r.z.CubeTo(cx+rad, cy+k, cx+k, cy+rad, cx, cy+rad)
	r.z.CubeTo(cx-k, cy+rad, cx-rad, cy+k, cx-rad, cy)
	r.z.CubeTo(cx-rad, cy-k, cx-k, cy-rad, cx, cy-rad)
	r.z.CubeTo(cx+k, cy-rad, cx+rad, cy-k, cx+rad, cy)
	r.z.ClosePath()
	r.z.Draw(r.img, r.img.Bounds(), src, image.Point{})
}

func (r *Raster) begin() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}
