package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/effectchain"
	"github.com/cwbudde/algo-pedal/dsp/effects"
	"github.com/cwbudde/algo-pedal/dsp/window"
	"github.com/cwbudde/algo-pedal/internal/cli"
	"github.com/cwbudde/algo-pedal/internal/config"
	"github.com/cwbudde/algo-pedal/internal/transfer"
	"github.com/cwbudde/algo-pedal/measure/level"
	"github.com/cwbudde/algo-pedal/measure/thd"
)

// AnalyzeCmd drives every node, and the whole chain, with a sine and reports
// its distortion. Given a WAV file it also reports per-channel levels.
type AnalyzeCmd struct {
	Input  string  `arg:"" optional:"" type:"existingfile" help:"WAV file to measure levels of"`
	Tone   float64 `default:"1000" help:"Test tone frequency in Hz"`
	Level  float64 `default:"-12" help:"Test tone level in dBFS"`
	FFT    int     `default:"8192" help:"Analysis length, a power of two"`
	Settle float64 `default:"0.5" help:"Seconds to run before analysing"`
	Window string  `default:"hann" help:"Analysis window"`
}

func (c *AnalyzeCmd) Run(g *Globals, log *logrus.Logger) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	if c.Input != "" {
		err = printFileLevels(c.Input, log)
		if err != nil {
			return err
		}
	}

	tc, err := c.thdConfig(cfg.SampleRate)
	if err != nil {
		return err
	}

	rows, err := c.measure(cfg, tc)
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderTHD(c.Tone, level.FromDB(c.Level), rows))

	resp, err := filterResponses(cfg)
	if err != nil {
		return err
	}

	if len(resp) > 0 {
		fmt.Print(cli.RenderResponse(responseFreqs, resp))
	}

	return nil
}

func (c *AnalyzeCmd) thdConfig(sampleRate float64) (thd.Config, error) {
	win, err := window.ParseType(c.Window)
	if err != nil {
		return thd.Config{}, err
	}

	if c.FFT <= 0 || c.FFT&(c.FFT-1) != 0 {
		return thd.Config{}, fmt.Errorf("analyze: --fft must be a power of two: %d", c.FFT)
	}

	return thd.Config{
		SampleRate:      sampleRate,
		FFTSize:         c.FFT,
		FundamentalFreq: c.Tone,
		Window:          win,
	}, nil
}

// measure reports every node on its own, then the configured chain.
func (c *AnalyzeCmd) measure(cfg config.Config, tc thd.Config) ([]cli.THDRow, error) {
	params, err := cfg.ChainParams()
	if err != nil {
		return nil, err
	}

	effects.SetFastTanh(cfg.FastMath)

	amplitude := level.FromDB(c.Level)
	settle := int(c.Settle * cfg.SampleRate)
	ectx := effectchain.Context{SampleRate: cfg.SampleRate}
	registry := effectchain.DefaultRegistry()

	rows := make([]cli.THDRow, 0, len(params)+1)

	for _, p := range params {
		rt, err := newNodeRuntime(registry, ectx, p)
		if err != nil {
			return nil, err
		}

		res, err := thd.MeasureEffect(rt, tc, amplitude, settle)
		if err != nil {
			return nil, err
		}

		name := p.ID
		if p.Bypassed {
			name += " (bypassed)"
		}

		rows = append(rows, cli.THDRow{Name: name, Result: res})
	}

	chain, err := cfg.NewChain()
	if err != nil {
		return nil, err
	}

	res, err := thd.MeasureEffect(&chainEffect{chain: chain}, tc, amplitude, settle)
	if err != nil {
		return nil, err
	}

	return append(rows, cli.THDRow{Name: "chain", Result: res}), nil
}

// responseFreqs are the frequencies filter stages are reported at.
var responseFreqs = []float64{50, 100, 1000, 5000, 10000}

// filterResponses reports the EQ stages of every node that has them.
func filterResponses(cfg config.Config) ([]cli.ResponseRow, error) {
	params, err := cfg.ChainParams()
	if err != nil {
		return nil, err
	}

	ectx := effectchain.Context{SampleRate: cfg.SampleRate}
	registry := effectchain.DefaultRegistry()

	var rows []cli.ResponseRow

	for _, p := range params {
		rt, err := newNodeRuntime(registry, ectx, p)
		if err != nil {
			return nil, err
		}

		sr, ok := rt.(effectchain.StageReporter)
		if !ok {
			continue
		}

		for _, st := range sr.Stages() {
			row := cli.ResponseRow{Name: p.ID + " " + st.Name, Off: st.Coefficients.IsUnity()}

			for _, f := range responseFreqs {
				row.Gains = append(row.Gains, st.Coefficients.MagnitudeDB(f, cfg.SampleRate))
			}

			rows = append(rows, row)
		}
	}

	return rows, nil
}

func newNodeRuntime(registry *effectchain.Registry, ectx effectchain.Context, p effectchain.Params) (effectchain.Runtime, error) {
	factory := registry.Lookup(p.Type)
	if factory == nil {
		return nil, fmt.Errorf("analyze: %w: %s", effectchain.ErrUnknownEffect, p.Type)
	}

	rt, err := factory(ectx)
	if err != nil {
		return nil, err
	}

	err = rt.Configure(ectx, p)
	if err != nil {
		return nil, fmt.Errorf("analyze: node %q: %w", p.ID, err)
	}

	return rt, nil
}

// chainEffect runs the left channel of a chain one sample at a time.
type chainEffect struct {
	chain *effectchain.Chain
	l, r  [1]float64
}

func (e *chainEffect) ProcessSample(x float64) float64 {
	e.l[0], e.r[0] = x, x
	e.chain.ProcessBlock(e.l[:], e.r[:], e.l[:], e.r[:])

	return e.l[0]
}

func (e *chainEffect) Reset() { e.chain.Reset() }

func printFileLevels(path string, log *logrus.Logger) error {
	src, err := transfer.OpenWAV(path)
	if err != nil {
		return err
	}
	defer src.Close()

	const chunk = 4096

	var left, right []float64

	l := make([]float64, chunk)
	r := make([]float64, chunk)

	for {
		n, err := src.ReadFrames(l, r)
		left = append(left, l[:n]...)
		right = append(right, r[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"file":   path,
		"frames": len(left),
	}).Debug("read input")

	title := fmt.Sprintf("Levels of %s (%.2f s)", path, float64(len(left))/src.SampleRate())
	fmt.Print(cli.RenderLevels(title, level.Analyze(left), level.Analyze(right)))

	return nil
}
