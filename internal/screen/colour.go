package screen

// Colour is either an indexed palette slot (0-255) or a 24-bit RGB triple.
// The zero value (Valid=false) means "no colour set" / "use terminal
// default".
type Colour struct {
	Indexed bool
	Index   uint8
	R, G, B uint8
	Valid   bool
}

// DefaultColour reports "no explicit colour" (terminal default).
var DefaultColour = Colour{}

// IndexedColour builds a palette-slot colour.
func IndexedColour(idx uint8) Colour {
	return Colour{Indexed: true, Index: idx, Valid: true}
}

// RGBColour builds a 24-bit truecolor colour.
func RGBColour(r, g, b uint8) Colour {
	return Colour{R: r, G: g, B: b, Valid: true}
}

// Equal compares two colours for equality, including the "unset" case.
func (c Colour) Equal(o Colour) bool {
	if c.Valid != o.Valid {
		return false
	}
	if !c.Valid {
		return true
	}
	if c.Indexed != o.Indexed {
		return false
	}
	if c.Indexed {
		return c.Index == o.Index
	}
	return c.R == o.R && c.G == o.G && c.B == o.B
}
