package main

import (
	"fmt"
	"os"

	"github.com/codegangsta/cli"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/kevin-cantwell/pgmplay"
)

// config is what a --config file may hold. Flags given on the command line
// override it. Optional adjustments are pointers so unset can be told apart
// from zero.
type config struct {
	Palette    string `yaml:"palette"`
	Debug      int    `yaml:"debug"`
	LogFile    string `yaml:"log_file"`
	NoProgress bool   `yaml:"no_progress"`

	Gamma           *float64 `yaml:"gamma"`
	Brightness      *float64 `yaml:"brightness"`
	Contrast        *float64 `yaml:"contrast"`
	Sharpen         *float64 `yaml:"sharpen"`
	SigmoidMidpoint *float64 `yaml:"sigmoid_midpoint"`
	SigmoidFactor   *float64 `yaml:"sigmoid_factor"`
	Invert          bool     `yaml:"invert"`
}

func readConfig(path string) (*config, error) {
	cfg := &config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return cfg, nil
}

func (cfg *config) applyFlags(c *cli.Context) {
	if c.IsSet("palette") {
		cfg.Palette = c.String("palette")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Int("debug")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.Bool("no-progress") {
		cfg.NoProgress = true
	}
	if c.Bool("invert") {
		cfg.Invert = true
	}
	floats := []struct {
		name string
		dst  **float64
	}{
		{"gamma", &cfg.Gamma},
		{"brightness", &cfg.Brightness},
		{"contrast", &cfg.Contrast},
		{"sharpen", &cfg.Sharpen},
		{"sigmoid-midpoint", &cfg.SigmoidMidpoint},
		{"sigmoid-factor", &cfg.SigmoidFactor},
	}
	for _, f := range floats {
		if c.IsSet(f.name) {
			v := c.Float64(f.name)
			*f.dst = &v
		}
	}
}

// decoderOpts turns the config into decoder options. Adjustments run in the
// order gamma, brightness, sharpen, contrast, sigmoid, invert.
func (cfg *config) decoderOpts(logger *zap.Logger) ([]pgmplay.DecoderOpt, error) {
	opts := []pgmplay.DecoderOpt{pgmplay.WithDecoderLogger(logger)}
	if cfg.Palette != "" {
		p, err := pgmplay.ParsePalette(cfg.Palette)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pgmplay.WithPalette(p))
	}
	if cfg.Gamma != nil {
		opts = append(opts, pgmplay.WithGamma(*cfg.Gamma))
	}
	if cfg.Brightness != nil {
		opts = append(opts, pgmplay.WithBrightness(*cfg.Brightness))
	}
	if cfg.Sharpen != nil {
		opts = append(opts, pgmplay.WithSharpen(*cfg.Sharpen))
	}
	if cfg.Contrast != nil {
		opts = append(opts, pgmplay.WithContrast(*cfg.Contrast))
	}
	if cfg.SigmoidMidpoint != nil || cfg.SigmoidFactor != nil {
		midpoint, factor := 0.5, 0.0
		if cfg.SigmoidMidpoint != nil {
			midpoint = *cfg.SigmoidMidpoint
		}
		if cfg.SigmoidFactor != nil {
			factor = *cfg.SigmoidFactor
		}
		opts = append(opts, pgmplay.WithSigmoid(midpoint, factor))
	}
	if cfg.Invert {
		opts = append(opts, pgmplay.WithInvert())
	}
	return opts, nil
}

func (cfg *config) logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(pgmplay.TraceLevel(cfg.Debug))
	zc.DisableStacktrace = true
	if cfg.LogFile != "" {
		zc.OutputPaths = []string{cfg.LogFile}
	}
	return zc.Build()
}
