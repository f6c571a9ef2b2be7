package pgmplay

import (
	"errors"
	"fmt"
)

var (
	// ErrOpen is returned when a frame file cannot be opened.
	ErrOpen = errors.New("cannot open frame")
	// ErrMalformedHeader is returned for any raster header violation.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrTruncatedData is returned when the stream ends before every sample
	// declared by the header was read.
	ErrTruncatedData = errors.New("truncated pixel data")
	// ErrAllocation is returned when a frame's storage cannot be sized.
	ErrAllocation = errors.New("cannot allocate frame")

	ErrBadTemplate   = errors.New("filename template needs exactly one integer verb")
	ErrBadPalette    = errors.New("palette needs at least two printable ASCII glyphs")
	ErrNegativeDelay = errors.New("negative frame delay")
)

// HeaderError describes why a header was rejected. It unwraps to
// ErrMalformedHeader.
type HeaderError struct {
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedHeader.Error(), e.Reason)
}

func (e *HeaderError) Unwrap() error {
	return ErrMalformedHeader
}

func malformed(format string, args ...interface{}) error {
	return &HeaderError{Reason: fmt.Sprintf(format, args...)}
}

// TruncatedError reports how far decoding got before the stream ran out:
// Row full rows plus Col samples of the next one. It unwraps to
// ErrTruncatedData.
type TruncatedError struct {
	Width, Height int
	Row, Col      int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s: %dx%d frame ended at row %d, column %d",
		ErrTruncatedData.Error(), e.Width, e.Height, e.Row, e.Col)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncatedData
}

// LoadError ties a failure to the frame file that caused it.
type LoadError struct {
	Filename string
	Number   int
	Err      error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, ErrOpen) {
		return fmt.Sprintf("failed opening %s: %v", e.Filename, errors.Unwrap(e.Err))
	}
	return fmt.Sprintf("failed reading %s: %v", e.Filename, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// openError keeps the OS error reachable while matching ErrOpen.
type openError struct {
	err error
}

func (e *openError) Error() string {
	return fmt.Sprintf("%s: %v", ErrOpen.Error(), e.err)
}

func (e *openError) Is(target error) bool {
	return target == ErrOpen
}

func (e *openError) Unwrap() error {
	return e.err
}
