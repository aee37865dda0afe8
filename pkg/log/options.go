package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option changes a setting of a Logger, see New and Logger.SetOptions.
type Option func(logger *logger)

// WithLevel drops entries below level.
func WithLevel(level Level) Option {
	return func(logger *logger) {
		logger.Logger.SetLevel(level.ToLogrusLevel())
	}
}

// WithOutput sends entries to output instead of stderr.
func WithOutput(output io.Writer) Option {
	return func(logger *logger) {
		logger.Logger.SetOutput(output)
	}
}

// WithFormatter renders entries with formatter, usually one returned by ParseFormat.
func WithFormatter(formatter logrus.Formatter) Option {
	return func(logger *logger) {
		logger.Logger.SetFormatter(formatter)
	}
}
