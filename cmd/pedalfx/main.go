// Command pedalfx runs the pedal effect chain offline, on the sound card, or
// against test tones for measurement.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/filter/biquad"
	"github.com/cwbudde/algo-pedal/internal/cli"
)

var (
	version = "0.1.0"
)

const (
	appName        = "pedalfx"
	appDescription = "Block-based guitar effects chain"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config  string `short:"c" type:"existingfile" help:"Path to a JSON pedal config (optional)"`
	Verbose bool   `short:"v" help:"Log every block pass"`
	LogJSON bool   `name:"log-json" help:"Write logs as JSON"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Render   RenderCmd   `cmd:"" help:"Render a WAV file or test tone through the chain"`
	Play     PlayCmd     `cmd:"" help:"Play a WAV file or test tone through the chain"`
	Analyze  AnalyzeCmd  `cmd:"" help:"Measure the distortion of every node and the levels of a WAV file"`
	Windows  WindowsCmd  `cmd:"" help:"List the analysis windows"`
	Defaults DefaultsCmd `cmd:"" name:"config" help:"Print the effective pedal config as JSON"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

func main() {
	var args CLI

	ctx := kong.Parse(&args,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(appName, appDescription)),
	)

	log := newLogger(args.Globals)

	err := ctx.Run(&args.Globals, log)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func newLogger(g Globals) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if g.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if g.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	cli.PrintVersion(os.Stdout, appName, version)
	fmt.Println(cli.KV("biquad kernel", biquad.Kernel()))

	return nil
}
