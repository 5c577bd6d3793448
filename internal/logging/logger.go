package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions mirror every record into a size-rotated file. An empty Path
// disables the file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

func New(environment, level string) (zerolog.Logger, error) {
	return NewWithFile(environment, level, FileOptions{})
}

func NewWithFile(environment, level string, file FileOptions) (zerolog.Logger, error) {
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse LOG_LEVEL=%q: %w", level, err)
	}

	var writer io.Writer = os.Stdout
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	if path := strings.TrimSpace(file.Path); path != "" {
		maxSize := file.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: file.MaxBackups,
		})
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "mtroute").
		Logger()

	return logger, nil
}

// Component tags every record of logger with the emitting component.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
