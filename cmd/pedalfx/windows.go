package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-pedal/dsp/window"
)

// WindowsCmd lists the analysis windows accepted by analyze --window.
type WindowsCmd struct {
	Size int `default:"4096" help:"Window length used to measure ENBW"`
}

func (c *WindowsCmd) Run() error {
	if c.Size < 2 {
		return fmt.Errorf("windows: size must be >= 2: %d", c.Size)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Window\tENBW (bins)\tMeasured\tCoherent gain\tMain lobe (bins)")

	for _, t := range window.Types() {
		info := window.Info(t)

		measured, err := window.EquivalentNoiseBandwidth(window.Generate(t, c.Size, window.WithPeriodic()))
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%d\n",
			info.Name, info.ENBW, measured, info.CoherentGain, info.MainLobeBins)
	}

	return tw.Flush()
}
