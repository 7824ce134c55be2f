package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/dsp/effectchain"
	"github.com/cwbudde/algo-pedal/internal/config"
	"github.com/cwbudde/algo-pedal/internal/transfer"
	"github.com/cwbudde/algo-pedal/measure/level"
	"github.com/cwbudde/algo-pedal/trace"
)

var errSetSyntax = errors.New("want NODE.PARAM=VALUE")

func loadConfig(g *Globals) (config.Config, error) {
	if g.Config == "" {
		return config.Default(), nil
	}

	return config.Load(g.Config)
}

// InputFlags select the signal fed to the chain.
type InputFlags struct {
	Input   string  `arg:"" optional:"" type:"existingfile" help:"Input WAV file; omit for a test tone"`
	Tone    float64 `default:"440" help:"Test tone frequency in Hz"`
	Level   float64 `default:"-12" help:"Test tone level in dBFS"`
	Seconds float64 `default:"2" help:"Test tone length in seconds; 0 plays until stopped"`
}

// open returns the source, its length in frames (zero if unknown) and a
// function releasing it. A WAV input replaces the configured sample rate.
func (f InputFlags) open(cfg *config.Config, log *logrus.Logger) (transfer.Source, int, func() error, error) {
	if f.Input == "" {
		frames := int(f.Seconds * cfg.SampleRate)

		src, err := transfer.NewSineSource(f.Tone, level.FromDB(f.Level), cfg.SampleRate, frames)
		if err != nil {
			return nil, 0, nil, err
		}

		return src, max(frames, 0), func() error { return nil }, nil
	}

	src, err := transfer.OpenWAV(f.Input)
	if err != nil {
		return nil, 0, nil, err
	}

	if src.SampleRate() != cfg.SampleRate {
		log.WithFields(logrus.Fields{
			"input":  src.SampleRate(),
			"config": cfg.SampleRate,
		}).Info("using the input sample rate")

		cfg.SampleRate = src.SampleRate()
	}

	log.WithFields(logrus.Fields{
		"file":     f.Input,
		"rate":     src.SampleRate(),
		"channels": src.Channels(),
	}).Debug("opened input")

	return src, src.Frames(), src.Close, nil
}

// newScheduler builds the chain for cfg and a scheduler timed by a Monitor.
func newScheduler(cfg config.Config, log *logrus.Logger) (*block.Scheduler, *trace.Monitor, error) {
	chain, err := cfg.NewChain()
	if err != nil {
		return nil, nil, err
	}

	monitor := trace.NewMonitor(trace.BlockPeriod(cfg.Frames(), cfg.SampleRate), trace.NewLogSink(log))

	sched, err := block.New(block.Config{
		BlockSize: cfg.BlockSize,
		Chain:     chain,
		Sink:      monitor,
		OnUpdateError: func(index int, err error) {
			log.WithError(err).WithField("node", index).Warn("parameter update rejected")
		},
	})
	if err != nil {
		return nil, nil, err
	}

	log.WithFields(logrus.Fields{
		"rate":   cfg.SampleRate,
		"block":  cfg.BlockSize,
		"nodes":  chain.Len(),
		"period": monitor.Stats().Period,
	}).Debug("scheduler ready")

	return sched, monitor, nil
}

// tweaker keeps the full parameter set of every node so a single changed
// value can be sent to the scheduler as a complete update.
type tweaker struct {
	cfg    config.Config
	params []effectchain.Params
}

func newTweaker(cfg config.Config) (*tweaker, error) {
	params, err := cfg.ChainParams()
	if err != nil {
		return nil, err
	}

	return &tweaker{cfg: cfg, params: params}, nil
}

// Apply parses NODE.PARAM=VALUE and returns the node index and its updated
// parameters. PARAM "bypass" takes a boolean; other values are numbers or,
// failing that, strings.
func (t *tweaker) Apply(expr string) (int, effectchain.Params, error) {
	key, value, ok := strings.Cut(strings.TrimSpace(expr), "=")
	if !ok {
		return 0, effectchain.Params{}, fmt.Errorf("%q: %w", expr, errSetSyntax)
	}

	id, name, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok || id == "" || name == "" {
		return 0, effectchain.Params{}, fmt.Errorf("%q: %w", expr, errSetSyntax)
	}

	index, ok := t.cfg.NodeIndex(id)
	if !ok {
		return 0, effectchain.Params{}, fmt.Errorf("%q: no node %q", expr, id)
	}

	p := t.params[index].Clone()
	value = strings.TrimSpace(value)

	if name == "bypass" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return 0, effectchain.Params{}, fmt.Errorf("%q: %w", expr, err)
		}

		p.Bypassed = b
	} else if v, err := strconv.ParseFloat(value, 64); err == nil {
		if p.Num == nil {
			p.Num = map[string]float64{}
		}

		p.Num[name] = v
	} else {
		if p.Str == nil {
			p.Str = map[string]string{}
		}

		p.Str[name] = value
	}

	t.params[index] = p

	return index, p.Clone(), nil
}

// queue sends every expression to sched. Updates are applied before the
// next pass.
func (t *tweaker) queue(sched *block.Scheduler, exprs []string) error {
	for _, expr := range exprs {
		index, p, err := t.Apply(expr)
		if err != nil {
			return err
		}

		if !sched.Update(index, p) {
			return fmt.Errorf("%q: update queue full", expr)
		}
	}

	return nil
}
