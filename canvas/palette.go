package canvas

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	DefaultBackground  = "#ffffff"
	DefaultStrokeWidth = 8
	MinStrokeWidth     = 1
	MaxStrokeWidth     = 64
)

// DefaultPalette holds the ten preset swatches; the first is selected on
// start.
var DefaultPalette = []string{
	"#111827",
	"#f59e0b",
	"#ef4444",
	"#3b82f6",
	"#22c55e",
	"#a855f7",
	"#0ea5e9",
	"#f97316",
	"#e5e7eb",
	"#ffffff",
}

var ErrBadColor = errors.New("invalid color")

// ParseHex reads #rgb or #rrggbb.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// ValidatePalette checks every swatch parses.
func ValidatePalette(colors []string) error {
	if len(colors) == 0 {
		return errors.New("palette is empty")
	}
	for i, c := range colors {
		if _, err := ParseHex(c); err != nil {
			return fmt.Errorf("palette[%d]: %w", i, err)
		}
	}
	return nil
}
