package canvas

// OpKind names a render instruction understood by both the browser canvas and
// Raster.
type OpKind string

const (
	OpTransform OpKind = "transform"
	OpFillRect  OpKind = "fill_rect"
	OpSegment   OpKind = "segment"
)

const (
	LineCapRound  = "round"
	LineJoinRound = "round"
)

// Op is one render instruction in logical (CSS pixel) coordinates.
//
//	transform: Scale, Width, Height describe the new backing store
//	fill_rect: X0,Y0 origin, Width/Height size, Color fill
//	segment:   X0,Y0 -> X1,Y1 stroked with Color and LineWidth
type Op struct {
	Kind      OpKind  `json:"kind"`
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"line_width,omitempty"`
	LineCap   string  `json:"line_cap,omitempty"`
	LineJoin  string  `json:"line_join,omitempty"`
}

// Renderer consumes render instructions as the surface emits them.
type Renderer interface {
	Apply(ops ...Op)
}

// Point is a surface-local coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToLocal maps viewport coordinates into surface space by subtracting the
// surface origin as measured when the event happened.
func ToLocal(clientX, clientY, originX, originY float64) Point {
	return Point{X: clientX - originX, Y: clientY - originY}
}
