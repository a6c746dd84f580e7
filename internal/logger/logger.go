package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout used on every log line
const TimeFormat = "2006-01-02 15:04:05"

// Logger writes "<timestamp> - <LEVEL> - <message>" lines to one or more
// outputs. It owns the log file, if any, and must be closed at exit.
type Logger struct {
	log  zerolog.Logger
	file *os.File
}

func newConsoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: TimeFormat, NoColor: noColor}
	output.PartsOrder = []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName}
	output.FormatLevel = func(i interface{}) string {
		level, ok := i.(string)
		if !ok {
			level = "???"
		}
		return fmt.Sprintf("- %s -", strings.ToUpper(level))
	}
	output.FormatMessage = func(i interface{}) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%s", i)
	}
	return output
}

func level() zerolog.Level {
	if _, exists := os.LookupEnv("DEBUG"); exists {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// New logs to stdout and to logPath. The file is truncated.
func New(logPath string) (*Logger, error) {
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	writer := zerolog.MultiLevelWriter(
		newConsoleWriter(os.Stdout, false),
		newConsoleWriter(file, true),
	)

	return &Logger{
		log:  zerolog.New(writer).Level(level()).With().Timestamp().Logger(),
		file: file,
	}, nil
}

// NewFileOnly logs only to logPath (for TUI mode)
func NewFileOnly(logPath string) (*Logger, error) {
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	return &Logger{
		log:  zerolog.New(newConsoleWriter(file, true)).Level(level()).With().Timestamp().Logger(),
		file: file,
	}, nil
}

// NewWithWriter logs to w without colors. The caller owns w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		log: zerolog.New(newConsoleWriter(w, true)).Level(level()).With().Timestamp().Logger(),
	}
}

// Nop discards everything
func Nop() *Logger {
	return &Logger{log: zerolog.Nop()}
}

// Close closes the log file if it's open
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log.Debug().Msgf(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}
