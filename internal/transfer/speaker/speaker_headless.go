//go:build headless

package speaker

import (
	"context"
	"errors"
	"time"

	"github.com/cwbudde/algo-pedal/dsp/block"
	"github.com/cwbudde/algo-pedal/internal/transfer"
)

// DefaultBuffer is the device buffer requested from the driver.
const DefaultBuffer = 20 * time.Millisecond

// ErrNoAudio is returned by NewDevice in headless builds.
var ErrNoAudio = errors.New("speaker: built without audio output (headless)")

// Device is unavailable in headless builds.
type Device struct{}

// NewDevice always fails in headless builds.
func NewDevice(*block.Scheduler, transfer.Source, time.Duration) (*Device, error) {
	return nil, ErrNoAudio
}

// Run always fails in headless builds.
func (*Device) Run(context.Context) error {
	return ErrNoAudio
}
