package trace

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogSink writes pass boundaries to a logrus logger at debug level. Nothing
// is formatted unless the logger has debug enabled.
type LogSink struct {
	log   *logrus.Logger
	start time.Time
	half  Half
}

// NewLogSink returns a sink logging to logger, or to the standard logger
// when logger is nil.
func NewLogSink(logger *logrus.Logger) *LogSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &LogSink{log: logger}
}

func (s *LogSink) PassStart(pass uint64, half Half) {
	if !s.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	s.start = time.Now()
	s.half = half

	s.log.WithFields(logrus.Fields{
		"pass": pass,
		"half": half.String(),
	}).Debug("pass start")
}

func (s *LogSink) PassEnd(pass uint64) {
	if !s.log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	s.log.WithFields(logrus.Fields{
		"pass":     pass,
		"half":     s.half.String(),
		"duration": time.Since(s.start),
	}).Debug("pass end")
}
