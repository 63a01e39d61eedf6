package canvas

import "math"

// Surface size limits.
const (
	MaxCanvasSide  = 4096
	MaxPixelRatio  = 4
	MaxBackingSide = 4096
)

// Mode is the pointer gesture state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
)

func (m Mode) String() string {
	if m == ModeDrawing {
		return "drawing"
	}
	return "idle"
}

// Options configures a Surface. Zero values fall back to the defaults.
type Options struct {
	Palette     []string
	Background  string
	StrokeWidth float64
}

// Surface turns pointer gestures into connected line segments. It is not safe
// for concurrent use; the owning game serialises access.
type Surface struct {
	palette    []string
	selected   int
	background string
	color      string
	lineWidth  float64
	erasing    bool

	mode Mode
	last Point

	width  float64
	height float64
	scale  float64

	renderer Renderer
}

// NewSurface returns an idle surface with the first swatch selected. The
// renderer may be nil.
func NewSurface(opts Options, renderer Renderer) *Surface {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	background := opts.Background
	if background == "" {
		background = DefaultBackground
	}
	lineWidth := opts.StrokeWidth
	if lineWidth == 0 {
		lineWidth = DefaultStrokeWidth
	}
	s := &Surface{
		palette:    append([]string(nil), palette...),
		background: background,
		color:      palette[0],
		scale:      1,
		renderer:   renderer,
	}
	s.lineWidth = clampWidth(lineWidth)
	return s
}

// PointerDown starts a stroke and emits a zero-length segment so a single
// click leaves a dot.
func (s *Surface) PointerDown(p Point) []Op {
	s.mode = ModeDrawing
	s.last = p
	return s.emit(s.segment(p, p))
}

// PointerMove extends the stroke. Moves while idle are ignored.
func (s *Surface) PointerMove(p Point) []Op {
	if s.mode != ModeDrawing {
		return nil
	}
	op := s.segment(s.last, p)
	s.last = p
	return s.emit(op)
}

func (s *Surface) PointerUp() {
	s.endStroke()
}

// PointerLeave ends the stroke when the pointer exits without a release.
func (s *Surface) PointerLeave() {
	s.endStroke()
}

// Clear repaints everything with the background. The gesture state is kept.
func (s *Surface) Clear() []Op {
	return s.emit(Op{
		Kind:   OpFillRect,
		Width:  s.width,
		Height: s.height,
		Color:  s.background,
	})
}

// Resize records new on-screen dimensions and pixel ratio, rescales the
// backing store and clears it. Prior drawing is lost. Sides are clamped to
// [0, MaxCanvasSide] and the ratio to [1, MaxPixelRatio], lowered further so
// the backing store stays within MaxBackingSide. Non-finite input counts as
// 0 for sides and 1 for the ratio.
func (s *Surface) Resize(width, height, pixelRatio float64) []Op {
	s.width = clampFinite(width, 0, MaxCanvasSide, 0)
	s.height = clampFinite(height, 0, MaxCanvasSide, 0)
	s.scale = clampFinite(pixelRatio, 1, MaxPixelRatio, 1)
	if side := math.Max(s.width, s.height); side*s.scale > MaxBackingSide {
		s.scale = math.Max(MaxBackingSide/side, 1)
	}

	transform := s.emit(Op{
		Kind:   OpTransform,
		Width:  s.width,
		Height: s.height,
		Scale:  s.scale,
	})
	return append(transform, s.Clear()...)
}

// SelectColor picks a palette swatch and leaves eraser mode. Out-of-range
// indexes are ignored.
func (s *Surface) SelectColor(index int) bool {
	if index < 0 || index >= len(s.palette) {
		return false
	}
	s.selected = index
	s.color = s.palette[index]
	s.erasing = false
	return true
}

func (s *Surface) SetStrokeWidth(width float64) float64 {
	s.lineWidth = clampWidth(width)
	return s.lineWidth
}

func (s *Surface) ToggleEraser() bool {
	s.erasing = !s.erasing
	return s.erasing
}

func (s *Surface) Mode() Mode                  { return s.mode }
func (s *Surface) Color() string               { return s.color }
func (s *Surface) Selected() int               { return s.selected }
func (s *Surface) Background() string          { return s.background }
func (s *Surface) StrokeWidth() float64        { return s.lineWidth }
func (s *Surface) Erasing() bool               { return s.erasing }
func (s *Surface) Palette() []string           { return append([]string(nil), s.palette...) }
func (s *Surface) Size() (w, h, scale float64) { return s.width, s.height, s.scale }

func (s *Surface) endStroke() {
	s.mode = ModeIdle
	s.last = Point{}
}

func (s *Surface) segment(from, to Point) Op {
	c := s.color
	if s.erasing {
		c = s.background
	}
	return Op{
		Kind:      OpSegment,
		X0:        from.X,
		Y0:        from.Y,
		X1:        to.X,
		Y1:        to.Y,
		Color:     c,
		LineWidth: s.lineWidth,
		LineCap:   LineCapRound,
		LineJoin:  LineJoinRound,
	}
}

func (s *Surface) emit(op Op) []Op {
	if s.renderer != nil {
		s.renderer.Apply(op)
	}
	return []Op{op}
}

func clampFinite(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Min(math.Max(v, lo), hi)
}

func clampWidth(w float64) float64 {
	if math.IsNaN(w) || w < MinStrokeWidth {
		return MinStrokeWidth
	}
	if w > MaxStrokeWidth {
		return MaxStrokeWidth
	}
	return w
}
