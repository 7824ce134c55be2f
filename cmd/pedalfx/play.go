package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/internal/cli"
	"github.com/cwbudde/algo-pedal/internal/transfer"
	"github.com/cwbudde/algo-pedal/internal/transfer/speaker"
)

// PlayCmd runs the chain in real time on the default audio output.
type PlayCmd struct {
	InputFlags

	Tail   float64       `default:"2" help:"Seconds of silence played after the input for effect tails"`
	Buffer time.Duration `default:"20ms" help:"Audio device buffer"`
	Set    []string      `short:"s" placeholder:"NODE.PARAM=VALUE" help:"Override a node parameter"`
	Live   bool          `help:"Read NODE.PARAM=VALUE lines from stdin while playing"`
}

func (c *PlayCmd) Run(g *Globals, log *logrus.Logger) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	src, _, closeSrc, err := c.open(&cfg, log)
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

	dev, err := speaker.NewDevice(sched, transfer.Pad(src, int(c.Tail*cfg.SampleRate)), c.Buffer)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if c.Live {
		go readTweaks(ctx, os.Stdin, tw, sched, log)
	}

	log.WithFields(logrus.Fields{
		"rate":   cfg.SampleRate,
		"block":  cfg.BlockSize,
		"period": monitor.Stats().Period,
	}).Info("playing, press Ctrl+C to stop")

	err = dev.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := sched.Stats()

	fmt.Println(cli.SectionStyle.Render("Playback"))
	fmt.Print(cli.RenderMonitor(monitor.Stats()))
	fmt.Println(cli.KV("coalesced", fmt.Sprint(stats.Coalesced)))

	if stats.UpdatesDropped > 0 || stats.UpdateErrors > 0 {
		fmt.Println(cli.KV("updates", cli.WarnStyle.Render(
			fmt.Sprintf("%d dropped, %d rejected", stats.UpdatesDropped, stats.UpdateErrors))))
	}

	return nil
}

// readTweaks queues one parameter update per input line until r ends or ctx
// is done. Malformed lines are logged and skipped.
func readTweaks(ctx context.Context, r io.Reader, tw *tweaker, sched *block.Scheduler, log *logrus.Logger) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		err := tw.queue(sched, []string{line})
		if err != nil {
			log.WithError(err).Warn("ignoring parameter update")
			continue
		}

		log.WithField("set", line).Info("parameter queued")
	}
}
