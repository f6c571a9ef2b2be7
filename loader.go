package pgmplay

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type LoaderOpt func(l *Loader)

// WithDecoder sets the decoder used for every frame.
func WithDecoder(d *Decoder) LoaderOpt {
	return func(l *Loader) {
		l.decoder = d
	}
}

// WithOpener replaces os.Open as the way frame files are opened.
func WithOpener(open func(name string) (io.ReadCloser, error)) LoaderOpt {
	return func(l *Loader) {
		l.open = open
	}
}

// WithProgress is called after each frame is decoded.
func WithProgress(fn func(done, total int)) LoaderOpt {
	return func(l *Loader) {
		l.progress = fn
	}
}

func WithLoaderLogger(log *zap.Logger) LoaderOpt {
	return func(l *Loader) {
		l.logger = log
	}
}

// Loader decodes a numbered run of frame files into a Sequence.
type Loader struct {
	decoder  *Decoder
	open     func(name string) (io.ReadCloser, error)
	progress func(done, total int)
	logger   *zap.Logger
}

func NewLoader(opts ...LoaderOpt) *Loader {
	l := Loader{
		open:     openFile,
		progress: func(int, int) {},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&l)
	}
	if l.decoder == nil {
		l.decoder = NewDecoder(WithDecoderLogger(l.logger))
	}
	return &l
}

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// LoadSequence loads frames first..last of template with a new Loader.
func LoadSequence(template string, first, last int, opts ...LoaderOpt) (*Sequence, error) {
	return NewLoader(opts...).Load(template, first, last)
}

/*
Load decodes the files named by template for every number in [first, last]
and returns them in order. template holds one integer verb, such as
"frames/%04d.pgm".

Loading is all or nothing: the first file that cannot be opened or decoded
stops the load and its *LoadError is returned with no sequence. An empty
range (first > last) returns an empty sequence without touching any file.
*/
func (l *Loader) Load(template string, first, last int) (*Sequence, error) {
	if err := checkTemplate(template); err != nil {
		return nil, err
	}
	seq := &Sequence{first: first}
	if first > last {
		return seq, nil
	}

	total := last - first + 1
	seq.frames = make([]*Frame, 0, total)
	for n := first; n <= last; n++ {
		name := fmt.Sprintf(template, n)
		frame, err := l.loadFrame(name)
		if err != nil {
			return nil, &LoadError{Filename: name, Number: n, Err: err}
		}
		seq.frames = append(seq.frames, frame)
		l.progress(len(seq.frames), total)
	}
	trace(l.logger, TraceFrames, "loaded sequence", zap.Int("first", first), zap.Int("last", last))
	return seq, nil
}

func (l *Loader) loadFrame(name string) (frame *Frame, err error) {
	trace(l.logger, TraceFrames, "open", zap.String("file", name))
	f, err := l.open(name)
	if err != nil {
		return nil, &openError{err: err}
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			frame = nil
		}
	}()
	return l.decoder.Decode(f)
}

var integerVerb = regexp.MustCompile(`^%[-+# 0]*[0-9]*(\.[0-9]*)?[dxXob]`)

// checkTemplate makes sure fmt.Sprintf(template, n) uses n exactly once.
func checkTemplate(template string) error {
	verbs := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '%' {
			i++
			continue
		}
		m := integerVerb.FindString(template[i:])
		if m == "" {
			return fmt.Errorf("%w: %q", ErrBadTemplate, template)
		}
		verbs++
		i += len(m) - 1
	}
	if verbs != 1 {
		return fmt.Errorf("%w: %q", ErrBadTemplate, template)
	}
	return nil
}
