// Package config loads and validates the pedal configuration: audio format,
// block geometry and the ordered effect chain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cwbudde/algo-pedal/dsp/codec"
	"github.com/cwbudde/algo-pedal/dsp/effectchain"
	"github.com/cwbudde/algo-pedal/dsp/effects"
)

const (
	DefaultSampleRate = 48000.0
	DefaultBlockSize  = 128
	MaxBlockSize      = 1 << 16
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the JSON document read by Load.
type Config struct {
	SampleRate float64 `json:"sampleRate"`
	// BlockSize is the number of 16-bit wire words per half-block.
	BlockSize int     `json:"blockSize"`
	InputGain float64 `json:"inputGain"`
	// FastMath selects the rational tanh approximation in the shapers.
	FastMath bool               `json:"fastMath"`
	Nodes    []effectchain.Node `json:"nodes"`
}

// Default returns the stock pedal: overdrive, then a 500 ms delay, then the
// Schroeder reverb, all with their firmware defaults.
func Default() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		InputGain:  1,
		FastMath:   true,
		Nodes: []effectchain.Node{
			{ID: "drive", Type: effectchain.TypeOverdrive},
			{ID: "echo", Type: effectchain.TypeDelay, Params: map[string]any{
				"timeMs":   500.0,
				"mix":      0.3,
				"feedback": 0.5,
			}},
			{ID: "room", Type: effectchain.TypeReverb, Params: map[string]any{
				"time": 0.7,
				"wet":  0.25,
			}},
		},
	}
}

// Load reads and validates the JSON config at path. Fields missing from the
// file keep their Default values; a nodes array replaces the default chain
// as a whole.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads and validates a JSON config from r.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	// Decoding into the default nodes would merge fields into them.
	defaultNodes := cfg.Nodes
	cfg.Nodes = nil

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	err := dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.Nodes == nil {
		cfg.Nodes = defaultNodes
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Encode writes cfg as indented JSON.
func (c Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(c)
}

// Frames returns the number of stereo frames per half-block.
func (c Config) Frames() int {
	return c.BlockSize / codec.WordsPerFrame
}

// Validate checks the format, geometry and that every node names an effect
// known to the default registry.
func (c Config) Validate() error {
	if !(c.SampleRate > 0) || c.SampleRate > 384000 {
		return fmt.Errorf("config: %w: sample rate %v", ErrInvalid, c.SampleRate)
	}

	if c.BlockSize <= 0 || c.BlockSize%codec.WordsPerFrame != 0 || c.BlockSize > MaxBlockSize {
		return fmt.Errorf("config: %w: block size %d must be a positive multiple of %d up to %d",
			ErrInvalid, c.BlockSize, codec.WordsPerFrame, MaxBlockSize)
	}

	if !(c.InputGain >= 0) || c.InputGain > 16 {
		return fmt.Errorf("config: %w: input gain %v", ErrInvalid, c.InputGain)
	}

	known := effectchain.DefaultRegistry().Types()
	seen := make(map[string]bool, len(c.Nodes))

	for i, n := range c.Nodes {
		if !slices.Contains(known, n.Type) {
			return fmt.Errorf("config: %w: node %d: unknown type %q (want one of %v)", ErrInvalid, i, n.Type, known)
		}

		if n.ID == "" {
			continue
		}

		if seen[n.ID] {
			return fmt.Errorf("config: %w: duplicate node id %q", ErrInvalid, n.ID)
		}

		seen[n.ID] = true
	}

	return nil
}

// ChainParams converts the configured nodes for effectchain.NewChain.
func (c Config) ChainParams() ([]effectchain.Params, error) {
	return effectchain.NodesToParams(c.Nodes)
}

// NewChain applies the fast-math toggle and builds the effect chain.
func (c Config) NewChain() (*effectchain.Chain, error) {
	params, err := c.ChainParams()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	effects.SetFastTanh(c.FastMath)

	chain, err := effectchain.NewChain(
		effectchain.Context{SampleRate: c.SampleRate},
		nil,
		params,
		effectchain.WithInputGain(c.InputGain),
	)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return chain, nil
}

// NodeIndex returns the position of the node with the given id.
func (c Config) NodeIndex(id string) (int, bool) {
	for i, n := range c.Nodes {
		if n.ID == id {
			return i, true
		}
	}

	return -1, false
}
