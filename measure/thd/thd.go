// Package thd measures total harmonic distortion of a signal, and of an
// effect driven by a pure sine.
//
// Levels are computed in the power domain: every tone is the sum of the
// squared magnitudes within CaptureBins of its bin, so window leakage is
// counted towards the tone it belongs to. THD is the root-sum-square of the
// harmonics relative to the fundamental.
package thd

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pedal/dsp/effects"
	"github.com/cwbudde/algo-pedal/dsp/window"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
	defaultFFTSize      = 8192
)

// Config holds THD calculation parameters.
type Config struct {
	SampleRate float64
	// FFTSize must be a power of two. Zero selects the next power of two of
	// the signal length.
	FFTSize int
	// FundamentalFreq pins the fundamental. Zero searches the range for the
	// strongest bin.
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	// CaptureBins is the half-width around each tone. Zero uses the main
	// lobe width of the window.
	CaptureBins  int
	MaxHarmonics int
	// Window is applied before the transform. The zero value is rectangular,
	// which only suits bin-centred tones.
	Window window.Type
}

// Result holds THD measurement results. Ratios are linear amplitude ratios
// relative to the fundamental.
//
//nolint:revive
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THD_dB           float64
	THDN_dB          float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
	Harmonics        []float64
	SINAD            float64
}

// Calculator performs THD analysis on frequency-domain data.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a new THD calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// AnalyzeSignal windows signal, transforms it and evaluates THD metrics.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// AnalyzeSignal computes THD metrics from a real-valued time-domain signal.
// Signals longer than FFTSize are truncated.
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, nil
	}

	cfg := c.cfg

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize <= 1 {
		return Result{}, nil
	}

	n := min(len(signal), fftSize)

	windowed := make([]float64, n)
	copy(windowed, signal[:n])
	window.Apply(cfg.Window, windowed, window.WithPeriodic())

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("thd: fft plan %d: %w", fftSize, err)
	}

	out := make([]complex128, fftSize)

	err = plan.Forward(out, in)
	if err != nil {
		return Result{}, fmt.Errorf("thd: forward fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for i := range bins {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	cfg.FFTSize = fftSize
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(fftSize)
	}

	return (&Calculator{cfg: cfg}).CalculateFromPower(power), nil
}

// CalculateFromPower computes THD metrics from a squared-magnitude spectrum.
// power is expected to contain non-negative-frequency bins [0..Nyquist].
//
//nolint:cyclop,funlen
func (c *Calculator) CalculateFromPower(power []float64) Result {
	if len(power) <= 1 {
		return Result{}
	}

	cfg := c.cfg
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 2 * (len(power) - 1)
	}

	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FFTSize)
	}

	maxBin := len(power) - 1
	binHz := cfg.SampleRate / float64(cfg.FFTSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	fundamentalBin := c.findFundamentalBin(power, lowerBin, upperBin, binHz)

	captureBins := cfg.CaptureBins
	if captureBins <= 0 {
		captureBins = window.Info(cfg.Window).MainLobeBins
	}

	if captureBins*2 > fundamentalBin {
		captureBins = fundamentalBin / 2
	}

	fundamentalPower := bandPower(power, fundamentalBin, captureBins)
	if fundamentalPower <= 0 {
		return Result{FundamentalFreq: float64(fundamentalBin) * binHz}
	}

	var harmonicPower, oddPower, evenPower float64

	harmonics := make([]float64, 0, 8)

	for k := 2; ; k++ {
		if cfg.MaxHarmonics > 0 && k-1 > cfg.MaxHarmonics {
			break
		}

		bin := k * fundamentalBin
		if bin > upperBin {
			break
		}

		p := bandPower(power, bin, captureBins)

		harmonicPower += p
		if k%2 == 0 {
			evenPower += p
		} else {
			oddPower += p
		}

		harmonics = append(harmonics, math.Sqrt(p/fundamentalPower))
	}

	totalPower := 0.0
	for i := lowerBin; i <= upperBin; i++ {
		totalPower += power[i]
	}

	residualPower := math.Max(totalPower-fundamentalPower, 0)
	noisePower := math.Max(residualPower-harmonicPower, 0)

	thd := math.Sqrt(harmonicPower / fundamentalPower)
	thdn := math.Sqrt(residualPower / fundamentalPower)

	sinad := math.Inf(1)
	if thdn > 0 {
		sinad = -ratioToDB(thdn)
	}

	return Result{
		FundamentalFreq:  float64(fundamentalBin) * binHz,
		FundamentalLevel: math.Sqrt(fundamentalPower),
		THD:              thd,
		THDN:             thdn,
		THD_dB:           ratioToDB(thd),
		THDN_dB:          ratioToDB(thdn),
		OddHD:            math.Sqrt(oddPower / fundamentalPower),
		EvenHD:           math.Sqrt(evenPower / fundamentalPower),
		Noise:            math.Sqrt(noisePower / fundamentalPower),
		Harmonics:        harmonics,
		SINAD:            sinad,
	}
}

// MeasureEffect resets fx, drives it with a sine of the given amplitude at
// cfg.FundamentalFreq for settle samples, then analyzes the next FFTSize
// output samples. The frequency is snapped to the nearest bin centre so the
// tone is coherent with the analysis frame.
func MeasureEffect(fx effects.Effect, cfg Config, amplitude float64, settle int) (Result, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return Result{}, fmt.Errorf("thd: sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.FundamentalFreq <= 0 || cfg.FundamentalFreq >= cfg.SampleRate/2 {
		return Result{}, fmt.Errorf("thd: fundamental must be in (0, fs/2): %f", cfg.FundamentalFreq)
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = defaultFFTSize
	}

	binHz := cfg.SampleRate / float64(cfg.FFTSize)
	cfg.FundamentalFreq = math.Max(1, math.Round(cfg.FundamentalFreq/binHz)) * binHz

	fx.Reset()

	w := 2 * math.Pi * cfg.FundamentalFreq / cfg.SampleRate
	for i := range max(settle, 0) {
		fx.ProcessSample(amplitude * math.Sin(w*float64(i)))
	}

	out := make([]float64, cfg.FFTSize)
	for i := range out {
		out[i] = fx.ProcessSample(amplitude * math.Sin(w*float64(settle+i)))
	}

	return AnalyzeSignal(out, cfg)
}

func (c *Calculator) findFundamentalBin(power []float64, lowerBin, upperBin int, binHz float64) int {
	if c.cfg.FundamentalFreq > 0 {
		bin := int(math.Round(c.cfg.FundamentalFreq / binHz))
		return clampInt(bin, lowerBin, upperBin)
	}

	bestBin := lowerBin
	bestVal := -1.0

	for i := lowerBin; i <= upperBin; i++ {
		if power[i] > bestVal {
			bestVal = power[i]
			bestBin = i
		}
	}

	return bestBin
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}

	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)

	return cfg
}

func bandPower(power []float64, bin, captureBins int) float64 {
	if bin < 0 || bin >= len(power) {
		return 0
	}

	lo := max(bin-captureBins, 0)
	hi := min(bin+captureBins, len(power)-1)

	return vecmath.Sum(power[lo : hi+1])
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
