package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-pedal/measure/level"
	"github.com/cwbudde/algo-pedal/measure/thd"
	"github.com/cwbudde/algo-pedal/trace"
)

// THDRow is one line of a distortion report.
type THDRow struct {
	Name   string
	Result thd.Result
}

// RenderTHD formats a distortion report for the given tone.
func RenderTHD(freqHz, amplitude float64, rows []THDRow) string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render(fmt.Sprintf("Distortion at %.1f Hz, %.1f dBFS", freqHz, level.ToDB(amplitude))))
	b.WriteString("\n")

	for _, row := range rows {
		r := row.Result
		fmt.Fprintf(&b, "  %s THD %s  THD+N %s  H2 %s  H3 %s\n",
			KeyStyle.Width(12).Render(row.Name),
			ValueStyle.Render(formatPercent(r.THD)),
			ValueStyle.Render(formatPercent(r.THDN)),
			formatHarmonic(r.Harmonics, 0),
			formatHarmonic(r.Harmonics, 1),
		)
	}

	return b.String()
}

// ResponseRow is the gain of one filter stage at the report frequencies.
type ResponseRow struct {
	Name string
	// Off marks a disabled stage; Gains is ignored.
	Off   bool
	Gains []float64
}

// RenderResponse formats the gain in dB of every stage at freqs.
func RenderResponse(freqs []float64, rows []ResponseRow) string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render("Filter response (dB)"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s", KeyStyle.Width(24).Render(""))

	for _, f := range freqs {
		fmt.Fprintf(&b, " %8s", formatHz(f))
	}

	b.WriteString("\n")

	for _, row := range rows {
		fmt.Fprintf(&b, "  %s", KeyStyle.Width(24).Render(row.Name))

		if row.Off {
			b.WriteString(" " + WarnStyle.Render("off"))
		} else {
			for _, g := range row.Gains {
				b.WriteString(" " + ValueStyle.Render(fmt.Sprintf("%8.1f", g)))
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}

func formatHz(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%gk", f/1000)
	}

	return fmt.Sprintf("%g", f)
}

// RenderLevels formats per-channel level statistics.
func RenderLevels(title string, left, right level.Stats) string {
	var b strings.Builder

	b.WriteString(SectionStyle.Render(title))
	b.WriteString("\n")

	for _, ch := range []struct {
		name string
		s    level.Stats
	}{{"left", left}, {"right", right}} {
		s := ch.s
		line := fmt.Sprintf("peak %s  rms %s  crest %.2f dB  dc %+.5f",
			formatDB(s.PeakDB()), formatDB(s.RMSDB()), s.CrestDB(), s.DC)

		if s.Clipped > 0 {
			line += "  " + WarnStyle.Render(fmt.Sprintf("%d clipped", s.Clipped))
		}

		b.WriteString(KV(ch.name, line))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderMonitor formats the scheduler timing summary.
func RenderMonitor(m trace.MonitorStats) string {
	overruns := OKStyle.Render("0")
	if m.Overruns > 0 {
		overruns = ErrorStyle.Render(fmt.Sprint(m.Overruns))
	}

	return strings.Join([]string{
		KV("passes", fmt.Sprint(m.Passes)),
		KV("worst pass", m.Worst.String()),
		KV("load", fmt.Sprintf("%.1f%%", 100*m.Load())),
		KV("overruns", overruns),
	}, "\n") + "\n"
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%7.3f%%", 100*v)
}

func formatDB(db float64) string {
	if math.IsInf(db, -1) {
		return "  -inf"
	}

	return fmt.Sprintf("%6.1f", db)
}

func formatHarmonic(h []float64, i int) string {
	if i >= len(h) {
		return "    -"
	}

	return fmt.Sprintf("%5.1f dB", level.ToDB(h[i]))
}
