package pgmplay

import (
	"io"

	"go.uber.org/zap"
)

// BufferSize is the capacity of a byte source's buffer, and so also the
// size of the window a header has to fit in.
const BufferSize = 1024

// byteSource hands out a stream one byte at a time through a fixed buffer.
// Invariant: 0 <= pos <= n <= len(buf).
type byteSource struct {
	r      io.Reader
	buf    []byte
	pos, n int
	err    error // sticky; set once the stream is exhausted or failed
	logger *zap.Logger
}

func newByteSource(r io.Reader, size int, logger *zap.Logger) *byteSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &byteSource{
		r:      r,
		buf:    make([]byte, size),
		logger: logger,
	}
}

// ReadByte returns the next byte of the stream. Once the stream is
// exhausted every call returns io.EOF, or the error the reader failed with.
func (s *byteSource) ReadByte() (byte, error) {
	trace(s.logger, TraceSamples, "read byte", zap.Int("pos", s.pos), zap.Int("len", s.n))
	if s.pos >= s.n {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

func (s *byteSource) refill() error {
	if s.err != nil {
		return s.err
	}
	n, err := s.r.Read(s.buf)
	trace(s.logger, TraceReads, "refill", zap.Int("read", n), zap.Error(err))
	if n <= 0 {
		if err == nil {
			err = io.EOF
		}
		s.pos, s.n = 0, 0
		s.err = err
		return err
	}
	// Bytes that came with an error are still served; the error waits for
	// the next refill.
	s.err = err
	s.pos, s.n = 0, n
	return nil
}

// prime fills buf[:len(buf)-1] from the start of the stream, stopping early
// once done reports the window complete or the stream ends. It returns the
// primed window; the reader's error, if any, is kept for later refills.
func (s *byteSource) prime(done func(window []byte) bool) []byte {
	limit := len(s.buf) - 1
	for s.n < limit && s.err == nil {
		n, err := s.r.Read(s.buf[s.n:limit])
		trace(s.logger, TraceReads, "prime", zap.Int("read", n), zap.Int("total", s.n+n), zap.Error(err))
		if n <= 0 && err == nil {
			err = io.EOF
		}
		s.n += n
		s.err = err
		if done(s.buf[:s.n]) {
			break
		}
	}
	s.pos = 0
	return s.buf[:s.n]
}

// seek moves the read cursor within the primed window.
func (s *byteSource) seek(offset int) {
	if offset > s.n {
		offset = s.n
	}
	s.pos = offset
}
