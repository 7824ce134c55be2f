package level_test

import (
	"fmt"

	"github.com/cwbudde/algo-pedal/measure/level"
)

func ExampleAnalyze() {
	s := level.Analyze([]float64{0.5, -0.5, 0.5, -0.5})

	fmt.Printf("peak %.2f rms %.2f crest %.2f\n", s.Peak, s.RMS, s.Crest)
	// Output:
	// peak 0.50 rms 0.50 crest 1.00
}
