package pgmplay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type trackingCloser struct {
	io.Reader
	closed   *int
	closeErr error
}

func (c trackingCloser) Close() error {
	*c.closed++
	return c.closeErr
}

var _ = Describe("Loader", func() {
	var (
		dir      string
		template string
	)

	write := func(n int, data []byte) {
		Expect(os.WriteFile(fmt.Sprintf(template, n), data, 0644)).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "pgmplay")
		Expect(err).NotTo(HaveOccurred())
		template = filepath.Join(dir, "frame_%04d.pgm")
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("loads a single frame range", func() {
		write(5, pgm(2, 2, 6, 0, 6, 3, 1))
		seq, err := LoadSequence(template, 5, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(1))
		Expect(seq.First()).To(Equal(5))
		Expect(seq.Frame(0).String()).To(Equal(" @\n- \n"))
	})

	It("returns an empty sequence for an empty range without opening files", func() {
		opened := 0
		seq, err := LoadSequence(template, 5, 4, WithOpener(func(name string) (io.ReadCloser, error) {
			opened++
			return os.Open(name)
		}))
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(0))
		Expect(opened).To(BeZero())
	})

	It("keeps frames in number order and closes every file", func() {
		for n := 1; n <= 3; n++ {
			write(n, pgm(n, 1, 255, make([]byte, n)...))
		}
		opened, closed := 0, 0
		var progress []string
		seq, err := NewLoader(
			WithOpener(func(name string) (io.ReadCloser, error) {
				f, err := os.Open(name)
				if err != nil {
					return nil, err
				}
				opened++
				return trackingCloser{Reader: f, closed: &closed}, nil
			}),
			WithProgress(func(done, total int) {
				progress = append(progress, fmt.Sprintf("%d/%d", done, total))
			}),
		).Load(template, 1, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.Len()).To(Equal(3))
		for i := 0; i < 3; i++ {
			Expect(seq.Frame(i).Width()).To(Equal(i + 1))
		}
		Expect(seq.Bytes()).To(BeEquivalentTo(6))
		Expect(opened).To(Equal(3))
		Expect(closed).To(Equal(3))
		Expect(progress).To(Equal([]string{"1/3", "2/3", "3/3"}))
	})

	It("fails the whole load on a missing file", func() {
		write(1, pgm(1, 1, 255, 0))
		seq, err := LoadSequence(template, 1, 2)
		Expect(seq).To(BeNil())
		Expect(errors.Is(err, ErrOpen)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())

		var le *LoadError
		Expect(errors.As(err, &le)).To(BeTrue())
		Expect(le.Number).To(Equal(2))
		Expect(le.Filename).To(Equal(fmt.Sprintf(template, 2)))
		Expect(err.Error()).To(ContainSubstring("failed opening " + le.Filename))
	})

	It("fails the whole load on a truncated frame and still closes it", func() {
		write(1, pgm(1, 1, 255, 0))
		write(2, pgm(2, 2, 255, 0, 0))
		write(3, pgm(1, 1, 255, 0))
		opened, closed := 0, 0
		seq, err := LoadSequence(template, 1, 3, WithOpener(func(name string) (io.ReadCloser, error) {
			f, err := os.Open(name)
			if err != nil {
				return nil, err
			}
			opened++
			return trackingCloser{Reader: f, closed: &closed}, nil
		}))
		Expect(seq).To(BeNil())
		Expect(errors.Is(err, ErrTruncatedData)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("failed reading " + fmt.Sprintf(template, 2)))
		Expect(opened).To(Equal(2))
		Expect(closed).To(Equal(2))
	})

	It("fails on a malformed header", func() {
		write(1, []byte("P6\n1 1\n255\n\x00"))
		_, err := LoadSequence(template, 1, 1)
		Expect(errors.Is(err, ErrMalformedHeader)).To(BeTrue())
	})

	It("reports the read error when a frame is not a regular file", func() {
		Expect(os.Mkdir(fmt.Sprintf(template, 1), 0755)).NotTo(HaveOccurred())
		seq, err := LoadSequence(template, 1, 1)
		Expect(seq).To(BeNil())
		Expect(errors.Is(err, ErrMalformedHeader)).To(BeFalse())
		Expect(err.Error()).To(ContainSubstring("failed reading " + fmt.Sprintf(template, 1)))
		Expect(err.Error()).To(ContainSubstring("is a directory"))
	})

	It("reports close failures", func() {
		closeErr := errors.New("close failed")
		closed := 0
		_, err := LoadSequence("frame%d", 1, 1, WithOpener(func(name string) (io.ReadCloser, error) {
			return trackingCloser{Reader: strings.NewReader(string(pgm(1, 1, 255, 9))), closed: &closed, closeErr: closeErr}, nil
		}))
		Expect(errors.Is(err, closeErr)).To(BeTrue())
		Expect(closed).To(Equal(1))
	})

	It("checks the filename template", func() {
		for _, t := range []string{"frames.pgm", "%d/%d.pgm", "%s.pgm", "100%.pgm"} {
			_, err := LoadSequence(t, 1, 1)
			Expect(errors.Is(err, ErrBadTemplate)).To(BeTrue(), t)
		}
		for _, t := range []string{"%d.pgm", "f/%04d.pgm", "100%%_%x.pgm", "%-3d", "f/%.4d.pgm", "%08.3x"} {
			Expect(checkTemplate(t)).NotTo(HaveOccurred(), t)
		}
	})
})
