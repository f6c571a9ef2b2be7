package pgmplay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// DefaultMaxPixels bounds the storage a single frame may ask for.
const DefaultMaxPixels = 1 << 24

func init() {
	image.RegisterFormat("pgm", Tag, decodeImage, decodeImageConfig)
}

type DecoderOpt func(d *Decoder)

// WithPalette sets the glyphs samples are quantized to.
func WithPalette(p Palette) DecoderOpt {
	return func(d *Decoder) {
		d.palette = p
	}
}

// WithMaxPixels caps width*height; larger frames fail with ErrAllocation.
func WithMaxPixels(n int) DecoderOpt {
	return func(d *Decoder) {
		d.maxPixels = n
	}
}

// WithBufferSize sets the byte source capacity. The header has to fit in
// size-1 bytes.
func WithBufferSize(size int) DecoderOpt {
	return func(d *Decoder) {
		d.bufferSize = size
	}
}

func WithDecoderLogger(l *zap.Logger) DecoderOpt {
	return func(d *Decoder) {
		d.logger = l
	}
}

// WithGamma adjusts gamma before quantization. 1.0 leaves the frame as is.
func WithGamma(gamma float64) DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.AdjustGamma(img, gamma)
	})
}

// WithBrightness shifts brightness by a percentage in [-100, 100].
func WithBrightness(percentage float64) DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.AdjustBrightness(img, percentage)
	})
}

// WithContrast changes contrast by a percentage in [-100, 100].
func WithContrast(percentage float64) DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.AdjustContrast(img, percentage)
	})
}

func WithSharpen(sigma float64) DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.Sharpen(img, sigma)
	})
}

// WithSigmoid applies a sigmoidal contrast curve around midpoint (0..1).
func WithSigmoid(midpoint, factor float64) DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.AdjustSigmoid(img, midpoint, factor)
	})
}

// If used, intensities are inverted.
func WithInvert() DecoderOpt {
	return withAdjustment(func(img image.Image) *image.NRGBA {
		return imaging.Invert(img)
	})
}

func withAdjustment(fn func(image.Image) *image.NRGBA) DecoderOpt {
	return func(d *Decoder) {
		d.adjustments = append(d.adjustments, fn)
	}
}

// Decoder turns a binary graymap into a Frame of glyphs.
type Decoder struct {
	palette     Palette
	maxPixels   int
	bufferSize  int
	adjustments []func(image.Image) *image.NRGBA // applied in order
	logger      *zap.Logger
}

func NewDecoder(opts ...DecoderOpt) *Decoder {
	d := Decoder{
		palette:    DefaultPalette,
		maxPixels:  DefaultMaxPixels,
		bufferSize: BufferSize,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&d)
	}
	if len(d.palette) < 2 {
		d.palette = DefaultPalette
	}
	if d.bufferSize < 2 {
		d.bufferSize = BufferSize
	}
	return &d
}

// Decode reads one frame from r with the default decoder.
func Decode(r io.Reader) (*Frame, error) {
	return NewDecoder().Decode(r)
}

/*
Decode reads a header and exactly width*height samples from r and quantizes
every sample to a glyph. Bytes after the last sample are left unread.

The first read primes a window of up to BufferSize-1 bytes. The header must
be complete within it; the rest of the window is already pixel data and is
consumed before the reader is asked for more. If r runs dry before the last
sample, the partial frame is dropped and a *TruncatedError is returned.
*/
func (d *Decoder) Decode(r io.Reader) (*Frame, error) {
	src, h, err := d.start(r)
	if err != nil {
		return nil, err
	}
	n, err := d.size(h)
	if err != nil {
		return nil, err
	}

	glyphs := make([]byte, n)
	if len(d.adjustments) == 0 {
		err = readSamples(src, h, func(i int, v byte) {
			glyphs[i] = d.palette.Glyph(int(v), h.MaxValue)
		})
		if err != nil {
			return nil, err
		}
	} else {
		gray, err := readGray(src, h)
		if err != nil {
			return nil, err
		}
		adjusted := d.adjust(gray)
		i := 0
		for y := 0; y < h.Height; y++ {
			for x := 0; x < h.Width; x++ {
				glyphs[i] = d.palette.Glyph(int(luma(adjusted.NRGBAAt(x, y))), math.MaxUint8)
				i++
			}
		}
	}

	trace(d.logger, TraceFrames, "decoded frame", zap.Int("width", h.Width), zap.Int("height", h.Height))
	return &Frame{width: h.Width, height: h.Height, glyphs: glyphs}, nil
}

// DecodeGray reads a frame's samples, scaled to the full 0..255 range,
// without quantizing them.
func (d *Decoder) DecodeGray(r io.Reader) (*image.Gray, error) {
	src, h, err := d.start(r)
	if err != nil {
		return nil, err
	}
	if _, err := d.size(h); err != nil {
		return nil, err
	}
	return readGray(src, h)
}

// DecodeConfig reads only the header.
func (d *Decoder) DecodeConfig(r io.Reader) (Header, error) {
	_, h, err := d.start(r)
	return h, err
}

func (d *Decoder) start(r io.Reader) (*byteSource, Header, error) {
	src := newByteSource(r, d.bufferSize, d.logger)
	window := src.prime(headerComplete)
	h, offset, err := parseHeader(window)
	if err == errShortHeader && src.err != nil && !errors.Is(src.err, io.EOF) {
		err = fmt.Errorf("reading header: %w", src.err)
	}
	if err != nil {
		trace(d.logger, TraceFrames, "bad header", zap.Int("primed", len(window)), zap.Error(err))
		return nil, h, err
	}
	trace(d.logger, TraceFrames, "header", zap.Stringer("header", h), zap.Int("offset", offset))
	src.seek(offset)
	return src, h, nil
}

func (d *Decoder) size(h Header) (int, error) {
	if h.Height > math.MaxInt32/h.Width {
		return 0, fmt.Errorf("%w: %dx%d overflows", ErrAllocation, h.Width, h.Height)
	}
	n := h.Width * h.Height
	if n > d.maxPixels {
		return 0, fmt.Errorf("%w: %dx%d is over %d pixels", ErrAllocation, h.Width, h.Height, d.maxPixels)
	}
	return n, nil
}

func (d *Decoder) adjust(img *image.Gray) *image.NRGBA {
	var out image.Image = img
	for _, fn := range d.adjustments {
		out = fn(out)
	}
	return out.(*image.NRGBA)
}

// readSamples hands the width*height samples to fn in row-major order.
func readSamples(src io.ByteReader, h Header, fn func(i int, v byte)) error {
	i := 0
	for row := 0; row < h.Height; row++ {
		for col := 0; col < h.Width; col++ {
			v, err := src.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return &TruncatedError{Width: h.Width, Height: h.Height, Row: row, Col: col}
				}
				return fmt.Errorf("reading sample %d,%d: %w", row, col, err)
			}
			fn(i, v)
			i++
		}
	}
	return nil
}

func readGray(src io.ByteReader, h Header) (*image.Gray, error) {
	gray := image.NewGray(image.Rect(0, 0, h.Width, h.Height))
	err := readSamples(src, h, func(i int, v byte) {
		s := int(v) * math.MaxUint8 / h.MaxValue
		if s > math.MaxUint8 {
			s = math.MaxUint8
		}
		gray.Pix[i] = uint8(s)
	})
	if err != nil {
		return nil, err
	}
	return gray, nil
}

// Standard-ish weights for how bright a color looks to human eyes
// 0.21 R + 0.72 G + 0.07 B
func luma(c color.NRGBA) uint8 {
	return uint8(0.21*float32(c.R) + 0.72*float32(c.G) + 0.07*float32(c.B) + 0.5)
}

func decodeImage(r io.Reader) (image.Image, error) {
	return NewDecoder().DecodeGray(r)
}

func decodeImageConfig(r io.Reader) (image.Config, error) {
	h, err := NewDecoder().DecodeConfig(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.GrayModel,
		Width:      h.Width,
		Height:     h.Height,
	}, nil
}
