package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codegangsta/cli"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/kevin-cantwell/pgmplay"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = "0.1.0"
	app.Name = "pgmplay"
	app.Usage = "Plays a numbered run of binary PGM frames as ASCII art in the terminal."
	app.ArgsUsage = "<filename template> <first frame number> <last frame number> <microseconds per frame>"
	app.UsageText = "pgmplay [options] frames/%04d.pgm 1 6572 33333\n" +
		/*      */ "   frames must be PGM binary format"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,C",
			Usage: "read options from a YAML `FILE`; flags given here win",
		},
		cli.IntFlag{
			Name:  "debug,d",
			Usage: "trace `LEVEL` 0..3: 1 files and frames, 2 reads, 3 every byte",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "write logs to `PATH` instead of stderr",
		},
		cli.StringFlag{
			Name:  "palette,p",
			Usage: "glyphs from sparsest to densest",
			Value: string(pgmplay.DefaultPalette),
		},
		cli.Float64Flag{
			Name:  "gamma,g",
			Usage: "`GAMMA` = 1.0 leaves the frame unchanged. Less than 1.0 darkens it, greater than 1.0 lightens it.",
			Value: 1.0,
		},
		cli.Float64Flag{
			Name:  "brightness,b",
			Usage: "`BRIGHTNESS` = 0 leaves the frame unchanged. -100 gives solid black, 100 solid white.",
		},
		cli.Float64Flag{
			Name:  "contrast,c",
			Usage: "`CONTRAST` = 0 leaves the frame unchanged. -100 gives solid grey, 100 maximum contrast.",
		},
		cli.Float64Flag{
			Name:  "sharpen,s",
			Usage: "`SHARPEN` = 0 leaves the frame unchanged. Greater than 0 sharpens it.",
		},
		cli.Float64Flag{
			Name:  "sigmoid-midpoint",
			Usage: "`MIDPOINT` of contrast that must be between 0 and 1.",
			Value: 0.5,
		},
		cli.Float64Flag{
			Name:  "sigmoid-factor",
			Usage: "`FACTOR` = 0 leaves the frame unchanged. Greater than 0 increases contrast, less than 0 decreases it.",
		},
		cli.BoolFlag{
			Name:  "invert,i",
			Usage: "Inverts the frames.",
		},
		cli.BoolFlag{
			Name:  "dump",
			Usage: "print the frames to stdout one after another instead of playing them",
		},
		cli.BoolFlag{
			Name:  "no-progress",
			Usage: "hide the progress bar while loading",
		},
	}
	app.Action = run
	return app
}

type playArgs struct {
	template    string
	first, last int
	delay       time.Duration
}

func parseArgs(args []string) (playArgs, error) {
	var a playArgs
	if len(args) != 4 {
		return a, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}
	a.template = args[0]
	var err error
	if a.first, err = strconv.Atoi(args[1]); err != nil {
		return a, fmt.Errorf("first frame number: %v", err)
	}
	if a.last, err = strconv.Atoi(args[2]); err != nil {
		return a, fmt.Errorf("last frame number: %v", err)
	}
	us, err := strconv.Atoi(args[3])
	if err != nil {
		return a, fmt.Errorf("microseconds per frame: %v", err)
	}
	if us < 0 {
		return a, errors.New("microseconds per frame must not be negative")
	}
	a.delay = time.Duration(us) * time.Microsecond
	return a, nil
}

func run(c *cli.Context) error {
	args, err := parseArgs(c.Args())
	if err != nil {
		cli.ShowAppHelp(c)
		return cli.NewExitError(fmt.Sprintf("%s: %v", c.App.Name, err), 1)
	}
	fail := func(err error) error {
		return cli.NewExitError(fmt.Sprintf("%s: %v", c.App.Name, err), 1)
	}

	cfg, err := readConfig(c.String("config"))
	if err != nil {
		return fail(err)
	}
	cfg.applyFlags(c)

	logger, err := cfg.logger()
	if err != nil {
		return fail(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	decoderOpts, err := cfg.decoderOpts(logger)
	if err != nil {
		return fail(err)
	}
	loaderOpts := []pgmplay.LoaderOpt{
		pgmplay.WithDecoder(pgmplay.NewDecoder(decoderOpts...)),
		pgmplay.WithLoaderLogger(logger),
	}
	finish := func() {}
	if !cfg.NoProgress && args.first <= args.last && term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.NewOptions(args.last-args.first+1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("loading frames"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		loaderOpts = append(loaderOpts, pgmplay.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}))
		finish = func() { _ = bar.Finish() }
	}

	seq, err := pgmplay.LoadSequence(args.template, args.first, args.last, loaderOpts...)
	finish()
	if err != nil {
		logger.Debug("load failed", zap.Error(err))
		return fail(err)
	}
	logger.Info("loaded frames",
		zap.Int("frames", seq.Len()),
		zap.String("glyphs", humanize.Bytes(seq.Bytes())))

	if c.Bool("dump") {
		for i := 0; i < seq.Len(); i++ {
			if _, err := seq.Frame(i).WriteTo(c.App.Writer); err != nil {
				return fail(err)
			}
		}
		return nil
	}

	screen := &pgmplay.Xterm{Writer: c.App.Writer}
	stop := handleInterrupt(screen)
	defer stop()

	player := pgmplay.NewPlayer(screen, pgmplay.WithPlayerLogger(logger))
	if err := player.Play(seq, args.delay); err != nil {
		return fail(err)
	}
	return nil
}

// handleInterrupt restores the screen on SIGINT or SIGTERM and then lets
// the signal kill the process as it normally would.
func handleInterrupt(s pgmplay.Surface) (stop func()) {
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signals, unix.SIGINT, unix.SIGTERM)
	go func() {
		select {
		case sig := <-signals:
			_ = s.Teardown()
			// Stop notifying this channel
			signal.Stop(signals)
			if signum, ok := sig.(syscall.Signal); ok {
				_ = unix.Kill(unix.Getpid(), signum)
			}
		case <-done:
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}
