package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/cwbudde/algo-pedal/internal/cli"
	"github.com/cwbudde/algo-pedal/internal/transfer"
	"github.com/cwbudde/algo-pedal/internal/ui"
	"github.com/cwbudde/algo-pedal/trace"
)

const progressInterval = 100 * time.Millisecond

// RenderCmd processes an input offline into a 24-bit WAV file.
type RenderCmd struct {
	InputFlags

	Output string   `short:"o" default:"pedalfx.wav" type:"path" help:"Output WAV file"`
	Tail   float64  `default:"2" help:"Seconds of silence rendered after the input for effect tails"`
	Set    []string `short:"s" placeholder:"NODE.PARAM=VALUE" help:"Override a node parameter"`
	NoTUI  bool     `name:"no-tui" help:"Log progress instead of showing the progress view"`
}

type renderResult struct {
	frames int
	err    error
}

func (c *RenderCmd) Run(g *Globals, log *logrus.Logger) error {
	if c.Input == "" && c.Seconds <= 0 {
		return errors.New("render: a test tone needs --seconds > 0")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	src, total, closeSrc, err := c.open(&cfg, log)
	if err != nil {
		return err
	}
	defer closeSrc()

	sched, monitor, err := newScheduler(cfg, log)
	if err != nil {
		return err
	}

	tw, err := newTweaker(cfg)
	if err != nil {
		return err
	}

	err = tw.queue(sched, c.Set)
	if err != nil {
		return err
	}

	out, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer out.Close()

	tail := int(c.Tail * cfg.SampleRate)
	if total > 0 {
		total += max(tail, 0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Pass logs would scribble over the progress view.
	useTUI := !c.NoTUI && !g.Verbose && term.IsTerminal(int(os.Stdout.Fd()))

	var report func(frames int)

	updates := make(chan tea.Msg, 1)

	if useTUI {
		report = func(frames int) {
			select {
			case updates <- ui.ProgressMsg{Frames: frames, Monitor: monitor.Stats()}:
			default:
			}
		}
	} else {
		report = func(frames int) {
			log.WithFields(logrus.Fields{
				"seconds": fmt.Sprintf("%.1f", float64(frames)/cfg.SampleRate),
				"load":    fmt.Sprintf("%.1f%%", 100*monitor.Stats().Load()),
			}).Info("rendering")
		}
	}

	var last time.Time

	dev := transfer.NewFileDevice(sched, src, out,
		transfer.WithTail(tail),
		transfer.WithProgress(func(frames int) {
			if now := time.Now(); now.Sub(last) >= progressInterval {
				last = now
				report(frames)
			}
		}),
	)

	var res renderResult
	if useTUI {
		res = c.runTUI(ctx, cancel, dev, updates, cfg.SampleRate, total)
	} else {
		frames, err := dev.Run(ctx)
		res = renderResult{frames: frames, err: err}
	}

	// The header is finished even for a cancelled render so the partial
	// file stays playable.
	closeErr := dev.Close()

	if res.err != nil && !errors.Is(res.err, context.Canceled) {
		return res.err
	}

	if closeErr != nil {
		return closeErr
	}

	printRenderSummary(c.Output, res, cfg.SampleRate, monitor.Stats(), sched.Stats().UpdateErrors)

	return nil
}

func (c *RenderCmd) runTUI(ctx context.Context, cancel func(), dev *transfer.FileDevice, updates chan tea.Msg, sampleRate float64, total int) renderResult {
	model := ui.NewModel("pedalfx render", c.Output, sampleRate, total, updates, cancel)
	p := tea.NewProgram(model)

	uiDone := make(chan struct{})
	result := make(chan renderResult, 1)

	go func() {
		frames, err := dev.Run(ctx)
		result <- renderResult{frames: frames, err: err}

		select {
		case updates <- ui.DoneMsg{Frames: frames, Err: err}:
		case <-uiDone:
		}
	}()

	_, err := p.Run()
	close(uiDone)

	if err != nil {
		cancel()
	}

	res := <-result
	if err != nil && res.err == nil {
		res.err = fmt.Errorf("render: ui: %w", err)
	}

	return res
}

func printRenderSummary(path string, res renderResult, sampleRate float64, m trace.MonitorStats, updateErrors uint64) {
	status := cli.OKStyle.Render("complete")
	if res.err != nil {
		status = cli.WarnStyle.Render("cancelled")
	}

	fmt.Println(cli.SectionStyle.Render("Render " + status))
	fmt.Println(cli.KV("output", path))
	fmt.Println(cli.KV("length", fmt.Sprintf("%.2f s", float64(res.frames)/sampleRate)))

	if updateErrors > 0 {
		fmt.Println(cli.KV("rejected sets", cli.WarnStyle.Render(fmt.Sprint(updateErrors))))
	}

	fmt.Print(cli.RenderMonitor(m))
}
