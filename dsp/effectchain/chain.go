package effectchain

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Channels is the number of audio channels a Chain processes.
const Channels = 2

var (
	// ErrUnknownEffect is returned when a node references an unregistered effect type.
	ErrUnknownEffect = errors.New("unknown effect type")
	// ErrNodeIndex is returned when a node index is out of range.
	ErrNodeIndex = errors.New("node index out of range")
	// ErrTypeMismatch is returned when a reconfiguration names a different effect type.
	ErrTypeMismatch = errors.New("effect type mismatch")
)

type nodeRuntime struct {
	params   Params
	runtimes [Channels]Runtime
	// blocks[ch] is runtimes[ch] when it implements BlockRuntime.
	blocks [Channels]BlockRuntime
}

// Chain is an ordered list of effect nodes applied per sample. Every node
// holds one Runtime per channel so left and right never share state. The
// node list is fixed at construction; only parameters change afterwards.
type Chain struct {
	ctx       Context
	registry  *Registry
	nodes     []nodeRuntime
	inputGain float64
}

// ChainOption configures a Chain at construction time.
type ChainOption func(*Chain) error

// WithInputGain sets the linear gain applied before the first node.
func WithInputGain(gain float64) ChainOption {
	return func(c *Chain) error {
		if gain < 0 || !core.IsFinite(gain) {
			return fmt.Errorf("effectchain: input gain must be finite and >= 0: %f", gain)
		}

		c.inputGain = gain

		return nil
	}
}

// NewChain instantiates and configures the runtimes for nodes in order.
func NewChain(ctx Context, registry *Registry, nodes []Params, opts ...ChainOption) (*Chain, error) {
	if ctx.SampleRate <= 0 || !core.IsFinite(ctx.SampleRate) {
		return nil, fmt.Errorf("effectchain: sample rate must be > 0: %f", ctx.SampleRate)
	}

	if registry == nil {
		registry = DefaultRegistry()
	}

	c := &Chain{
		ctx:       ctx,
		registry:  registry,
		nodes:     make([]nodeRuntime, 0, len(nodes)),
		inputGain: 1,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(c); err != nil {
			return nil, err
		}
	}

	for _, node := range nodes {
		rt := nodeRuntime{params: node.Clone()}

		for ch := range rt.runtimes {
			runtime, err := c.newRuntime(node.Type)
			if err != nil {
				return nil, err
			}

			err = runtime.Configure(c.ctx, node)
			if err != nil {
				return nil, fmt.Errorf("effectchain: configure node %q (%s): %w", node.ID, node.Type, err)
			}

			rt.runtimes[ch] = runtime
			rt.blocks[ch], _ = runtime.(BlockRuntime)
		}

		c.nodes = append(c.nodes, rt)
	}

	return c, nil
}

func (c *Chain) newRuntime(effectType string) (Runtime, error) {
	factory := c.registry.Lookup(effectType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	runtime, err := factory(c.ctx)
	if err != nil {
		return nil, fmt.Errorf("effectchain: create %s: %w", effectType, err)
	}

	return runtime, nil
}

// Context returns the chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// Len returns the number of nodes.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Node returns a copy of the parameters of the node at index.
func (c *Chain) Node(index int) (Params, bool) {
	if index < 0 || index >= len(c.nodes) {
		return Params{}, false
	}

	return c.nodes[index].params.Clone(), true
}

// InputGain returns the linear gain applied before the first node.
func (c *Chain) InputGain() float64 {
	return c.inputGain
}

// SetInputGain changes the input gain. Negative or non-finite values are ignored.
func (c *Chain) SetInputGain(gain float64) {
	if gain < 0 || !core.IsFinite(gain) {
		return
	}

	c.inputGain = gain
}

// Configure updates the node at index. An empty params.Type keeps the node's
// type; a different type is rejected, since a chain never changes shape. On
// error the node keeps its previous parameters.
func (c *Chain) Configure(index int, params Params) error {
	if index < 0 || index >= len(c.nodes) {
		return fmt.Errorf("%w: %d", ErrNodeIndex, index)
	}

	node := &c.nodes[index]
	if params.Type == "" {
		params.Type = node.params.Type
	}

	if params.Type != node.params.Type {
		return fmt.Errorf("%w: node %d is %s, got %s", ErrTypeMismatch, index, node.params.Type, params.Type)
	}

	if params.ID == "" {
		params.ID = node.params.ID
	}

	for _, runtime := range node.runtimes {
		err := runtime.Configure(c.ctx, params)
		if err != nil {
			return fmt.Errorf("effectchain: configure node %q (%s): %w", params.ID, params.Type, err)
		}
	}

	node.params = params.Clone()

	return nil
}

// SetBypassed toggles a node without touching its state.
func (c *Chain) SetBypassed(index int, bypassed bool) error {
	if index < 0 || index >= len(c.nodes) {
		return fmt.Errorf("%w: %d", ErrNodeIndex, index)
	}

	c.nodes[index].params.Bypassed = bypassed

	return nil
}

// Reset clears the state of every runtime.
func (c *Chain) Reset() {
	for i := range c.nodes {
		for _, runtime := range c.nodes[i].runtimes {
			runtime.Reset()
		}
	}
}

// ProcessBlock scales the sources by the input gain, runs every non-bypassed
// node over the block in order and clamps the result to [-1, 1]. dst and src
// may alias. All four slices must have the same length.
func (c *Chain) ProcessBlock(dstL, dstR, srcL, srcR []float64) {
	n := len(dstL)
	if len(dstR) != n || len(srcL) != n || len(srcR) != n {
		panic("effectchain: ProcessBlock channel length mismatch")
	}

	vecmath.ScaleBlock(dstL, srcL, c.inputGain)
	vecmath.ScaleBlock(dstR, srcR, c.inputGain)

	c.processChannel(0, dstL)
	c.processChannel(1, dstR)
}

// processChannel runs node after node over buf. Nodes are mono and the clamp
// comes once at the end, so this equals running the chain per sample.
func (c *Chain) processChannel(ch int, buf []float64) {
	for j := range c.nodes {
		node := &c.nodes[j]
		if node.params.Bypassed {
			continue
		}

		if blk := node.blocks[ch]; blk != nil {
			blk.ProcessBlock(buf)

			continue
		}

		rt := node.runtimes[ch]
		for i, x := range buf {
			buf[i] = rt.ProcessSample(x)
		}
	}

	for i, x := range buf {
		buf[i] = core.ClampSample(x)
	}
}
