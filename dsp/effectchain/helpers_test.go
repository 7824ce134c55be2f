package effectchain

// stubRuntime is a minimal Runtime implementation for testing.
type stubRuntime struct {
	configureErr   error
	configureCalls int
	processCalls   int
	resetCalls     int
	lastCtx        Context
	lastParams     Params
}

func (s *stubRuntime) Configure(ctx Context, params Params) error {
	s.configureCalls++
	s.lastCtx = ctx
	s.lastParams = params

	return s.configureErr
}

func (s *stubRuntime) ProcessSample(x float64) float64 {
	s.processCalls++

	return x
}

func (s *stubRuntime) Reset() {
	s.resetCalls++
}

// gainRuntime multiplies every sample by a fixed gain.
type gainRuntime struct {
	gain float64
}

func (g *gainRuntime) Configure(_ Context, params Params) error {
	g.gain = params.GetNum("gain", 1.0)

	return nil
}

func (g *gainRuntime) ProcessSample(x float64) float64 {
	return x * g.gain
}

func (g *gainRuntime) Reset() {}

// addRuntime adds a constant to every sample, which makes node order visible.
type addRuntime struct {
	value float64
}

func (a *addRuntime) Configure(_ Context, params Params) error {
	a.value = params.GetNum("value", 0)

	return nil
}

func (a *addRuntime) ProcessSample(x float64) float64 {
	return x + a.value
}

func (a *addRuntime) Reset() {}

// counterRuntime outputs how many samples it has seen, exposing shared state.
type counterRuntime struct {
	n float64
}

func (c *counterRuntime) Configure(_ Context, _ Params) error { return nil }

func (c *counterRuntime) ProcessSample(_ float64) float64 {
	c.n++

	return c.n / 1000
}

func (c *counterRuntime) Reset() { c.n = 0 }

// blockGainRuntime is a gainRuntime with a block path that counts its calls.
type blockGainRuntime struct {
	gainRuntime

	blockCalls int
}

func (b *blockGainRuntime) ProcessBlock(buf []float64) {
	b.blockCalls++

	for i := range buf {
		buf[i] *= b.gain
	}
}

// testRegistry creates a registry with simple test effects.
func testRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("stub", func(_ Context) (Runtime, error) {
		return &stubRuntime{}, nil
	})
	r.MustRegister("gain", func(_ Context) (Runtime, error) {
		return &gainRuntime{gain: 1.0}, nil
	})
	r.MustRegister("add", func(_ Context) (Runtime, error) {
		return &addRuntime{}, nil
	})
	r.MustRegister("blockgain", func(_ Context) (Runtime, error) {
		return &blockGainRuntime{gainRuntime: gainRuntime{gain: 1.0}}, nil
	})
	r.MustRegister("counter", func(_ Context) (Runtime, error) {
		return &counterRuntime{}, nil
	})

	return r
}

func gainNode(id string, gain float64) Params {
	return Params{ID: id, Type: "gain", Num: map[string]float64{"gain": gain}}
}

func addNode(id string, value float64) Params {
	return Params{ID: id, Type: "add", Num: map[string]float64{"value": value}}
}
