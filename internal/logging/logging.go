// SPDX-License-Identifier: MPL-2.0

// Package logging builds the CLI logger from the logs configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apigen/apigen/internal/config"

	"github.com/charmbracelet/log"
)

// FileName is the log file written inside Logs.Path.
const FileName = config.AppName + ".log"

// New returns a logger writing to w, and additionally to <Logs.Path>/apigen.log
// when a path is configured. The returned closer releases the log file and
// must be called once logging is done. A silent level discards everything
// and opens no file.
func New(w io.Writer, logs config.Logs) (*log.Logger, io.Closer, error) {
	if logs.Level == config.LogLevelSilent {
		return log.New(io.Discard), nopCloser{}, nil
	}
	level, err := Level(logs.Level)
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = nopCloser{}
	if logs.Path != "" {
		if err := os.MkdirAll(logs.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(logs.Path, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		Level:           level,
		ReportTimestamp: logs.Path != "",
	})
	return logger, closer, nil
}

// Level maps a configured level to the logger's. An empty level is info.
func Level(l config.LogLevel) (log.Level, error) {
	switch l {
	case config.LogLevelDebug:
		return log.DebugLevel, nil
	case config.LogLevelInfo, "":
		return log.InfoLevel, nil
	case config.LogLevelWarn:
		return log.WarnLevel, nil
	case config.LogLevelError:
		return log.ErrorLevel, nil
	case config.LogLevelSilent:
		// Above every level the logger emits.
		return log.FatalLevel + 1, nil
	default:
		return 0, &config.InvalidLogLevelError{Value: l}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
