package logging

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// NewServerLogger builds the server logger: JSON to stdout and, when logFile
// is set, JSON to that file as well. The returned cleanup closes the file.
func NewServerLogger(logFile string, level slog.Level) (*SlogLogger, func() error, error) {
	if logFile == "" {
		return NewLoggerWithWriters(os.Stdout, nil, level), func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, err
	}
	return NewLoggerWithWriters(os.Stdout, file, level), file.Close, nil
}

// NewLoggerWithWriters writes JSON to console and, when file is non-nil,
// fans the same records out to file.
func NewLoggerWithWriters(console, file io.Writer, level slog.Level) *SlogLogger {
	opts := &slog.HandlerOptions{Level: level}
	stdout := slog.NewJSONHandler(console, opts)
	if file == nil {
		return NewSlogLogger(slog.New(stdout))
	}
	return NewSlogLogger(slog.New(slogmulti.Fanout(stdout, slog.NewJSONHandler(file, opts))))
}
