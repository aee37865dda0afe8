package log

import (
	"os"
	"strings"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Supported log format names.
const (
	AutoFormat     = "auto"
	TextFormat     = "text"
	JSONFormat     = "json"
	KeyValueFormat = "key-value"
)

// ParseFormat returns the logrus formatter registered under the given name. The auto format picks
// colored text when stderr is a terminal and key-value lines otherwise.
func ParseFormat(name string) (logrus.Formatter, error) {
	switch strings.ToLower(name) {
	case "", AutoFormat:
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			return ParseFormat(TextFormat)
		}

		return ParseFormat(KeyValueFormat)
	case TextFormat:
		return &logrus.TextFormatter{FullTimestamp: true}, nil
	case KeyValueFormat:
		return &logrus.TextFormatter{DisableColors: true, DisableQuote: true, FullTimestamp: true}, nil
	case JSONFormat:
		return &logrus.JSONFormatter{}, nil
	}

	return nil, errors.Errorf("invalid log format %q, supported formats: %s", name, strings.Join([]string{AutoFormat, TextFormat, JSONFormat, KeyValueFormat}, ", "))
}
