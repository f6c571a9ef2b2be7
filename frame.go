package pgmplay

import (
	"io"
)

// Frame is a decoded raster as a row-major grid of glyphs. It is never
// modified after decoding.
type Frame struct {
	width  int
	height int
	glyphs []byte
}

func (f *Frame) Width() int  { return f.width }
func (f *Frame) Height() int { return f.height }

// At returns the glyph at row, col.
func (f *Frame) At(row, col int) byte {
	return f.glyphs[row*f.width+col]
}

// Row returns row i as a string.
func (f *Frame) Row(i int) string {
	return string(f.glyphs[i*f.width : (i+1)*f.width])
}

func (f *Frame) String() string {
	b := make([]byte, 0, len(f.glyphs)+f.height)
	for i := 0; i < f.height; i++ {
		b = append(b, f.glyphs[i*f.width:(i+1)*f.width]...)
		b = append(b, '\n')
	}
	return string(b)
}

// WriteTo writes the frame as lines of glyphs, each ended by a line feed.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i := 0; i < f.height; i++ {
		n, err := w.Write(f.glyphs[i*f.width : (i+1)*f.width])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = w.Write([]byte{'\n'})
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Sequence is an ordered run of frames numbered from First. Offset i holds
// frame number First+i.
type Sequence struct {
	first  int
	frames []*Frame
}

func (s *Sequence) Len() int { return len(s.frames) }

// First is the number of the frame at offset 0.
func (s *Sequence) First() int { return s.first }

// Frame returns the frame at offset i.
func (s *Sequence) Frame(i int) *Frame { return s.frames[i] }

// Bytes is the glyph storage held by the sequence.
func (s *Sequence) Bytes() uint64 {
	var n uint64
	for _, f := range s.frames {
		n += uint64(len(f.glyphs))
	}
	return n
}
