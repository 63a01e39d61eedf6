package models

// PointerAction carries viewport coordinates plus the surface origin measured
// at the time of the event.
type PointerAction struct {
	ClientX float64 `json:"client_x"`
	ClientY float64 `json:"client_y"`
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
}

type ResizeAction struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PixelRatio float64 `json:"pixel_ratio"`
}

type ColorAction struct {
	Index int `json:"index"`
}

type StrokeWidthAction struct {
	Width float64 `json:"width"`
}

type GuessAction struct {
	Guess  string `json:"guess"`
	Player string `json:"player"`
}

// DurationAction holds the raw text of the minutes and seconds inputs.
type DurationAction struct {
	Minutes string `json:"minutes"`
	Seconds string `json:"seconds"`
}

// Duration is the clamped value echoed back to the inputs.
type Duration struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}
