package pgmplay

import (
	"errors"
	"fmt"
	"math"
)

// Tag is the magic that opens a binary graymap.
const Tag = "P5"

// MaxSampleValue is the largest max value a header may declare; samples are
// single bytes.
const MaxSampleValue = 255

// Header is the geometry and sample range declared at the top of a frame.
type Header struct {
	Width    int
	Height   int
	MaxValue int
}

func (h Header) String() string {
	return fmt.Sprintf("%s %dx%d max=%d", Tag, h.Width, h.Height, h.MaxValue)
}

// errShortHeader marks a window that ends before the header does.
var errShortHeader = &HeaderError{Reason: "header does not fit in the first read"}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

// parseHeader parses the header at the start of window and returns it along
// with the offset of the first pixel byte. It never looks past that offset.
func parseHeader(window []byte) (Header, int, error) {
	var h Header
	if len(window) < len(Tag) {
		return h, 0, errShortHeader
	}
	if string(window[:len(Tag)]) != Tag {
		return h, 0, malformed("tag %q is not %s", window[:len(Tag)], Tag)
	}
	pos := len(Tag)

	fields := [...]struct {
		name string
		dst  *int
	}{
		{"width", &h.Width},
		{"height", &h.Height},
		{"max value", &h.MaxValue},
	}
	for _, f := range fields {
		next, err := skipSeparator(window, pos)
		if err != nil {
			return h, 0, err
		}
		pos = next
		v, next, err := parseInt(window, pos, f.name)
		if err != nil {
			return h, 0, err
		}
		*f.dst = v
		pos = next
	}

	// Exactly one whitespace byte between the max value and the samples.
	if pos >= len(window) {
		return h, 0, errShortHeader
	}
	if !isSpace(window[pos]) {
		return h, 0, malformed("max value followed by %q", window[pos])
	}
	pos++

	if h.Width <= 0 {
		return h, 0, malformed("width %d is not positive", h.Width)
	}
	if h.Height <= 0 {
		return h, 0, malformed("height %d is not positive", h.Height)
	}
	if h.MaxValue <= 0 || h.MaxValue > MaxSampleValue {
		return h, 0, malformed("max value %d is outside 1..%d", h.MaxValue, MaxSampleValue)
	}
	return h, pos, nil
}

// skipSeparator consumes whitespace and '#' comments, requiring at least one
// whitespace byte or comment before the next token.
func skipSeparator(window []byte, pos int) (int, error) {
	start := pos
	for pos < len(window) {
		switch b := window[pos]; {
		case isSpace(b):
			pos++
		case b == '#':
			for pos < len(window) && window[pos] != '\n' && window[pos] != '\r' {
				pos++
			}
		default:
			if pos == start {
				return 0, malformed("missing whitespace before %q", b)
			}
			return pos, nil
		}
	}
	return 0, errShortHeader
}

func parseInt(window []byte, pos int, name string) (int, int, error) {
	start := pos
	v := 0
	for pos < len(window) && isDigit(window[pos]) {
		d := int(window[pos] - '0')
		if v > (math.MaxInt32-d)/10 {
			return 0, 0, malformed("%s is too large", name)
		}
		v = v*10 + d
		pos++
	}
	if pos == start {
		return 0, 0, malformed("%s is not a number: %q", name, window[pos])
	}
	if pos == len(window) {
		return 0, 0, errShortHeader
	}
	return v, pos, nil
}

// headerComplete reports whether window holds enough bytes to decide on the
// header one way or the other.
func headerComplete(window []byte) bool {
	_, _, err := parseHeader(window)
	return !errors.Is(err, errShortHeader)
}
