package pgmplay

// Palette is an ordered run of glyphs from sparsest to densest.
type Palette string

// DefaultPalette has six levels.
const DefaultPalette Palette = " .-=O@"

// ParsePalette validates s as a palette.
func ParsePalette(s string) (Palette, error) {
	if len(s) < 2 {
		return "", ErrBadPalette
	}
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] > '~' {
			return "", ErrBadPalette
		}
	}
	return Palette(s), nil
}

// Glyph maps sample v on the scale [0, max] to a glyph. The index is
// floor(v*(len-1)/max) computed on integers, so v == max always lands on the
// densest glyph; samples outside the scale are clamped.
func (p Palette) Glyph(v, max int) byte {
	last := len(p) - 1
	if v <= 0 || max <= 0 {
		return p[0]
	}
	if v >= max {
		return p[last]
	}
	return p[v*last/max]
}
