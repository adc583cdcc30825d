// Package logger builds the *slog.Logger used by the commands.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w through a charmbracelet handler.
// level is one of debug, info, warn, error; format is text, json or logfmt.
func New(w io.Writer, prefix, level, format string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var formatter log.Formatter
	switch format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          prefix,
		Formatter:       formatter,
		Level:           lvl,
	})

	return slog.New(handler), nil
}
