package effectchain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pedal/internal/testutil"
)

const testSampleRate = 48000.0

func testCtx() Context {
	return Context{SampleRate: testSampleRate}
}

func TestNewChainValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid sample rate", func(t *testing.T) {
		t.Parallel()

		for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			if _, err := NewChain(Context{SampleRate: sr}, testRegistry(), nil); err == nil {
				t.Fatalf("expected error for sample rate %v", sr)
			}
		}
	})

	t.Run("rejects unknown effect", func(t *testing.T) {
		t.Parallel()

		_, err := NewChain(testCtx(), testRegistry(), []Params{{ID: "x", Type: "nope"}})
		if !errors.Is(err, ErrUnknownEffect) {
			t.Fatalf("expected ErrUnknownEffect, got %v", err)
		}
	})

	t.Run("propagates configure error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		r := NewRegistry()
		r.MustRegister("bad", func(_ Context) (Runtime, error) {
			return &stubRuntime{configureErr: boom}, nil
		})

		_, err := NewChain(testCtx(), r, []Params{{ID: "n", Type: "bad"}})
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped configure error, got %v", err)
		}
	})

	t.Run("rejects negative input gain", func(t *testing.T) {
		t.Parallel()

		if _, err := NewChain(testCtx(), testRegistry(), nil, WithInputGain(-1)); err == nil {
			t.Fatal("expected error for negative input gain")
		}
	})

	t.Run("nil registry uses defaults", func(t *testing.T) {
		t.Parallel()

		c, err := NewChain(testCtx(), nil, []Params{{ID: "d", Type: TypeDelay}})
		if err != nil {
			t.Fatalf("NewChain() error = %v", err)
		}

		if c.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", c.Len())
		}
	})
}

func TestChainConfiguresEveryChannel(t *testing.T) {
	t.Parallel()

	var created []*stubRuntime

	r := NewRegistry()
	r.MustRegister("stub", func(_ Context) (Runtime, error) {
		s := &stubRuntime{}
		created = append(created, s)

		return s, nil
	})

	_, err := NewChain(testCtx(), r, []Params{{ID: "a", Type: "stub"}, {ID: "b", Type: "stub"}})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	if len(created) != 2*Channels {
		t.Fatalf("created %d runtimes, want %d", len(created), 2*Channels)
	}

	for i, s := range created {
		if s.configureCalls != 1 {
			t.Errorf("runtime %d configured %d times, want 1", i, s.configureCalls)
		}

		if s.lastCtx.SampleRate != testSampleRate {
			t.Errorf("runtime %d got sample rate %v", i, s.lastCtx.SampleRate)
		}
	}
}

func TestChainEmptyIsIdentityWithClamp(t *testing.T) {
	t.Parallel()

	c, err := NewChain(testCtx(), testRegistry(), nil)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	srcL := []float64{0, 0.5, -0.5, 1.5, -2}
	srcR := []float64{0.25, -0.25, 1, -1, 3}
	dstL := make([]float64, len(srcL))
	dstR := make([]float64, len(srcR))

	c.ProcessBlock(dstL, dstR, srcL, srcR)

	wantL := []float64{0, 0.5, -0.5, 1, -1}
	wantR := []float64{0.25, -0.25, 1, -1, 1}

	for i := range wantL {
		if dstL[i] != wantL[i] || dstR[i] != wantR[i] {
			t.Fatalf("sample %d: got (%v, %v), want (%v, %v)", i, dstL[i], dstR[i], wantL[i], wantR[i])
		}
	}
}

func TestChainAppliesNodesInOrder(t *testing.T) {
	t.Parallel()

	// (x * 0.5) + 0.1 differs from (x + 0.1) * 0.5.
	c, err := NewChain(testCtx(), testRegistry(), []Params{gainNode("g", 0.5), addNode("a", 0.1)})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := testutil.Const(0.4, 4)
	r := testutil.Const(-0.4, 4)
	c.ProcessBlock(l, r, l, r)

	for i := range l {
		if math.Abs(l[i]-0.3) > 1e-12 || math.Abs(r[i]-(-0.1)) > 1e-12 {
			t.Fatalf("sample %d: got (%v, %v), want (0.3, -0.1)", i, l[i], r[i])
		}
	}
}

func TestChainInputGain(t *testing.T) {
	t.Parallel()

	c, err := NewChain(testCtx(), testRegistry(), nil, WithInputGain(0.5))
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := testutil.Const(0.8, 8)
	r := testutil.Const(-0.6, 8)
	c.ProcessBlock(l, r, l, r)

	if l[0] != 0.4 || r[7] != -0.3 {
		t.Fatalf("got l=%v r=%v", l[0], r[7])
	}

	c.SetInputGain(math.NaN())

	if c.InputGain() != 0.5 {
		t.Fatalf("NaN input gain accepted: %v", c.InputGain())
	}
}

func TestChainChannelsDoNotShareState(t *testing.T) {
	t.Parallel()

	c, err := NewChain(testCtx(), testRegistry(), []Params{{ID: "c", Type: "counter"}})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := make([]float64, 3)
	r := make([]float64, 3)
	c.ProcessBlock(l, r, l, r)

	for i := range l {
		want := float64(i+1) / 1000
		if l[i] != want || r[i] != want {
			t.Fatalf("sample %d: got (%v, %v), want %v on both", i, l[i], r[i], want)
		}
	}

	c.Reset()
	c.ProcessBlock(l[:1], r[:1], l[:1], r[:1])

	if l[0] != 0.001 || r[0] != 0.001 {
		t.Fatalf("Reset did not clear state: (%v, %v)", l[0], r[0])
	}
}

func TestChainBypassSkipsNode(t *testing.T) {
	t.Parallel()

	nodes := []Params{gainNode("g", 0.5)}
	nodes[0].Bypassed = true

	c, err := NewChain(testCtx(), testRegistry(), nodes)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := testutil.Const(0.6, 2)
	r := testutil.Const(0.6, 2)
	c.ProcessBlock(l, r, l, r)

	if l[0] != 0.6 || r[1] != 0.6 {
		t.Fatalf("bypassed node altered signal: %v %v", l[0], r[1])
	}

	if err := c.SetBypassed(0, false); err != nil {
		t.Fatalf("SetBypassed() error = %v", err)
	}

	c.ProcessBlock(l, r, l, r)

	if l[0] != 0.3 {
		t.Fatalf("active node not applied: %v", l[0])
	}

	if err := c.SetBypassed(3, true); !errors.Is(err, ErrNodeIndex) {
		t.Fatalf("expected ErrNodeIndex, got %v", err)
	}
}

func TestChainConfigure(t *testing.T) {
	t.Parallel()

	c, err := NewChain(testCtx(), testRegistry(), []Params{gainNode("g", 1)})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	t.Run("updates both channels", func(t *testing.T) {
		err := c.Configure(0, Params{Num: map[string]float64{"gain": 0.25}})
		if err != nil {
			t.Fatalf("Configure() error = %v", err)
		}

		l := testutil.Const(1, 1)
		r := testutil.Const(-1, 1)
		c.ProcessBlock(l, r, l, r)

		if l[0] != 0.25 || r[0] != -0.25 {
			t.Fatalf("got (%v, %v), want (0.25, -0.25)", l[0], r[0])
		}

		p, ok := c.Node(0)
		if !ok || p.Type != "gain" || p.ID != "g" || p.GetNum("gain", 0) != 0.25 {
			t.Fatalf("Node(0) = %+v, %v", p, ok)
		}
	})

	t.Run("rejects type change", func(t *testing.T) {
		err := c.Configure(0, Params{Type: "add"})
		if !errors.Is(err, ErrTypeMismatch) {
			t.Fatalf("expected ErrTypeMismatch, got %v", err)
		}
	})

	t.Run("rejects bad index", func(t *testing.T) {
		for _, idx := range []int{-1, 1} {
			if err := c.Configure(idx, Params{}); !errors.Is(err, ErrNodeIndex) {
				t.Fatalf("index %d: expected ErrNodeIndex, got %v", idx, err)
			}
		}

		if _, ok := c.Node(5); ok {
			t.Fatal("Node(5) should not exist")
		}
	})
}

func TestChainProcessBlockLengthMismatchPanics(t *testing.T) {
	t.Parallel()

	c, err := NewChain(testCtx(), testRegistry(), nil)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()

	c.ProcessBlock(make([]float64, 4), make([]float64, 3), make([]float64, 4), make([]float64, 4))
}

func TestChainProcessBlockNoAllocs(t *testing.T) {
	c, err := NewChain(testCtx(), DefaultRegistry(), []Params{
		{ID: "od", Type: TypeOverdrive},
		{ID: "dly", Type: TypeDelay},
		{ID: "rev", Type: TypeReverb},
		{ID: "spr", Type: TypeSpring},
	})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := testutil.Const(0.1, 32)
	r := testutil.Const(-0.1, 32)

	allocs := testing.AllocsPerRun(100, func() {
		c.ProcessBlock(l, r, l, r)
	})
	if allocs != 0 {
		t.Fatalf("ProcessBlock allocated %v times per run", allocs)
	}
}

func TestChainPrefersBlockRuntime(t *testing.T) {
	c, err := NewChain(testCtx(), testRegistry(), []Params{
		{ID: "g", Type: "blockgain", Num: map[string]float64{"gain": 0.5}},
		addNode("a", 0.1),
	})
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	l := testutil.Const(0.4, 8)
	r := testutil.Const(-0.4, 8)
	c.ProcessBlock(l, r, l, r)

	for i := range l {
		if math.Abs(l[i]-0.3) > 1e-15 || math.Abs(r[i]+0.1) > 1e-15 {
			t.Fatalf("sample %d: got (%v, %v), want (0.3, -0.1)", i, l[i], r[i])
		}
	}

	for ch := range Channels {
		blk := c.nodes[0].blocks[ch].(*blockGainRuntime)
		if blk.blockCalls != 1 {
			t.Fatalf("channel %d: %d block calls, want 1", ch, blk.blockCalls)
		}
	}

	if err := c.SetBypassed(0, true); err != nil {
		t.Fatalf("SetBypassed() error = %v", err)
	}

	c.ProcessBlock(l, r, l, r)

	if n := c.nodes[0].blocks[0].(*blockGainRuntime).blockCalls; n != 1 {
		t.Fatalf("bypassed node processed: %d block calls", n)
	}
}

func TestChainBlockMatchesPerSample(t *testing.T) {
	nodes := []Params{
		{ID: "od", Type: TypeOverdrive, Num: map[string]float64{"drive": 8}},
		{ID: "dly", Type: TypeDelay, Num: map[string]float64{"timeMs": 1, "mix": 0.5, "feedback": 0.6}},
		{ID: "spr", Type: TypeSpring},
		{ID: "rev", Type: TypeReverb, Num: map[string]float64{"wet": 0.5}},
	}

	c, err := NewChain(testCtx(), DefaultRegistry(), nodes)
	if err != nil {
		t.Fatalf("NewChain() error = %v", err)
	}

	reg := DefaultRegistry()
	ref := make([]Runtime, len(nodes))

	for i, node := range nodes {
		rt, err := reg.Lookup(node.Type)(testCtx())
		if err != nil {
			t.Fatalf("create %s: %v", node.Type, err)
		}

		if err := rt.Configure(testCtx(), node); err != nil {
			t.Fatalf("configure %s: %v", node.Type, err)
		}

		ref[i] = rt
	}

	in := testutil.Sine(220, testSampleRate, 0.8, 2048)

	want := make([]float64, len(in))
	for i, x := range in {
		for _, rt := range ref {
			x = rt.ProcessSample(x)
		}

		want[i] = math.Max(-1, math.Min(1, x))
	}

	l := append([]float64(nil), in...)
	r := append([]float64(nil), in...)

	for lo := 0; lo < len(l); lo += 64 {
		hi := lo + 64
		c.ProcessBlock(l[lo:hi], r[lo:hi], l[lo:hi], r[lo:hi])
	}

	for i := range want {
		if math.Abs(l[i]-want[i]) > 1e-9 || math.Abs(r[i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d: chain (%v, %v), per-sample %v", i, l[i], r[i], want[i])
		}
	}
}
