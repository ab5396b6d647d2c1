// Package colorspec parses fish-style colour specifications (named, 3-hex,
// 6-hex) as a pure, separately-testable function, and separately reports
// the outer terminal's colour capability. Parse does not consult that
// capability: its result is the same on every terminal.
package colorspec

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"figterm/internal/screen"
)

// namedColours mirrors figterm's fixed fish palette, mapping fish names to
// a 4-bit palette index and an RGB approximation. Parse returns only the
// palette index; the RGB fields are not read.
var namedColours = map[string]struct {
	index   uint8
	r, g, b uint8
}{
	"black":     {0, 0x00, 0x00, 0x00},
	"red":       {1, 0x80, 0x00, 0x00},
	"green":     {2, 0x00, 0x80, 0x00},
	"brown":     {3, 0x72, 0x50, 0x00},
	"yellow":    {3, 0x80, 0x80, 0x00},
	"blue":      {4, 0x00, 0x00, 0x80},
	"magenta":   {5, 0x80, 0x00, 0x80},
	"purple":    {5, 0x80, 0x00, 0x80},
	"cyan":      {6, 0x00, 0x80, 0x80},
	"white":     {7, 0xC0, 0xC0, 0xC0},
	"grey":      {7, 0xE5, 0xE5, 0xE5},
	"brblack":   {8, 0x80, 0x80, 0x80},
	"brgrey":    {8, 0x55, 0x55, 0x55},
	"brred":     {9, 0xFF, 0x00, 0x00},
	"brgreen":   {10, 0x00, 0xFF, 0x00},
	"brbrown":   {11, 0xFF, 0xFF, 0x00},
	"bryellow":  {11, 0xFF, 0xFF, 0x00},
	"brblue":    {12, 0x00, 0x00, 0xFF},
	"brmagenta": {13, 0xFF, 0x00, 0xFF},
	"brpurple":  {13, 0xFF, 0x00, 0xFF},
	"brcyan":    {14, 0x00, 0xFF, 0xFF},
	"brwhite":   {15, 0xFF, 0xFF, 0xFF},
}

// Parse resolves a fish-syntax colour spec ("red", "#fa3", "f3a035") into a
// screen.Colour. Named colours resolve to an indexed slot; hex specs
// resolve to RGB. ok is false for a spec that matches neither form.
func Parse(spec string) (c screen.Colour, ok bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return screen.Colour{}, false
	}
	if nc, found := namedColours[strings.ToLower(spec)]; found {
		return screen.IndexedColour(nc.index), true
	}
	if rgb, found := parseHex(spec); found {
		return screen.RGBColour(rgb[0], rgb[1], rgb[2]), true
	}
	return screen.Colour{}, false
}

func parseHex(spec string) (rgb [3]byte, ok bool) {
	digits := strings.TrimPrefix(spec, "#")
	switch len(digits) {
	case 3:
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(digits[i:i+1], 16, 8)
			if err != nil {
				return rgb, false
			}
			rgb[i] = byte(v)*16 + byte(v)
		}
		return rgb, true
	case 6:
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
			if err != nil {
				return rgb, false
			}
			rgb[i] = byte(v)
		}
		return rgb, true
	default:
		return rgb, false
	}
}

// Profile reports the outer terminal's colour capability (ANSI/256/truecolor)
// by consulting the real environment heuristics termenv already implements
// (COLORTERM, TERM, terminfo-adjacent checks) rather than re-deriving them.
func Profile() termenv.Profile {
	return termenv.ColorProfile()
}

// Supports256 reports whether the outer terminal can render indexed
// 256-colour slots beyond the basic 16.
func Supports256(p termenv.Profile) bool {
	return p == termenv.ANSI256 || p == termenv.TrueColor
}

// SupportsTrueColor reports whether the outer terminal can render 24-bit RGB.
func SupportsTrueColor(p termenv.Profile) bool {
	return p == termenv.TrueColor
}
