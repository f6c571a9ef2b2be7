package pgmplay

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// recordingSurface keeps a log of calls and what each Present showed.
type recordingSurface struct {
	events     []string
	grid       map[[2]int]byte
	shown      []string
	initErr    error
	presentErr error
}

func (s *recordingSurface) Init() error {
	s.events = append(s.events, "init")
	return s.initErr
}

func (s *recordingSurface) HideCursor() { s.events = append(s.events, "hide") }

func (s *recordingSurface) Clear() {
	s.events = append(s.events, "clear")
	s.grid = map[[2]int]byte{}
}

func (s *recordingSurface) WriteGlyph(row, col int, g byte) { s.grid[[2]int{row, col}] = g }

func (s *recordingSurface) Present() error {
	s.events = append(s.events, "present")
	rows, cols := 0, 0
	for k := range s.grid {
		if k[0]+1 > rows {
			rows = k[0] + 1
		}
		if k[1]+1 > cols {
			cols = k[1] + 1
		}
	}
	var b bytes.Buffer
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.WriteByte(s.grid[[2]int{r, c}])
		}
		b.WriteByte('\n')
	}
	s.shown = append(s.shown, b.String())
	return s.presentErr
}

func (s *recordingSurface) Teardown() error {
	s.events = append(s.events, "teardown")
	return nil
}

var _ = Describe("Player", func() {
	var (
		surface *recordingSurface
		seq     *Sequence
		player  *Player
	)

	BeforeEach(func() {
		surface = &recordingSurface{}
		seq = &Sequence{first: 10, frames: []*Frame{
			{width: 2, height: 1, glyphs: []byte(" @")},
			{width: 1, height: 2, glyphs: []byte("=O")},
		}}
		player = NewPlayer(surface, WithSleep(func(d time.Duration) {
			surface.events = append(surface.events, fmt.Sprintf("sleep %s", d))
		}))
	})

	It("renders every frame once, in order, pausing after each", func() {
		Expect(player.Play(seq, 5*time.Millisecond)).NotTo(HaveOccurred())
		Expect(surface.events).To(Equal([]string{
			"init", "hide",
			"clear", "present", "sleep 5ms",
			"clear", "present", "sleep 5ms",
			"teardown",
		}))
		Expect(surface.shown).To(Equal([]string{" @\n", "=\nO\n"}))
	})

	It("sets up and tears down around an empty sequence", func() {
		Expect(player.Play(&Sequence{}, 0)).NotTo(HaveOccurred())
		Expect(surface.events).To(Equal([]string{"init", "hide", "teardown"}))
	})

	It("tears the surface down before reporting a failure", func() {
		boom := errors.New("boom")
		surface.presentErr = boom
		err := player.Play(seq, time.Second)
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(surface.events).To(Equal([]string{"init", "hide", "clear", "present", "teardown"}))
	})

	It("tears down after a failed init", func() {
		boom := errors.New("no tty")
		surface.initErr = boom
		err := player.Play(seq, time.Second)
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(surface.events).To(Equal([]string{"init", "teardown"}))
	})

	It("rejects a negative delay without touching the surface", func() {
		err := player.Play(seq, -time.Millisecond)
		Expect(errors.Is(err, ErrNegativeDelay)).To(BeTrue())
		Expect(surface.events).To(BeEmpty())
	})
})
