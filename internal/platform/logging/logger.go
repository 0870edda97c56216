package logging

import (
	"fmt"
	"io"
	"strings"

	clog "github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level ("debug", "info", "warn", "error").
func New(w io.Writer, level string) (*clog.Logger, error) {
	lvl := clog.WarnLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := clog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return clog.NewWithOptions(w, clog.Options{
		Prefix:          "libtrack",
		Level:           lvl,
		ReportTimestamp: true,
	}), nil
}

// Discard is a logger that drops everything.
func Discard() *clog.Logger {
	return clog.NewWithOptions(io.Discard, clog.Options{Level: clog.FatalLevel})
}
