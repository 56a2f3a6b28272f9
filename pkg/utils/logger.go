package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LogLevel represents the verbosity level of logging
type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// String returns a string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "ERROR"
	case WarningLevel:
		return "WARNING"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrus() log.Level {
	switch l {
	case ErrorLevel:
		return log.ErrorLevel
	case WarningLevel:
		return log.WarnLevel
	case InfoLevel:
		return log.InfoLevel
	case DebugLevel:
		return log.DebugLevel
	default:
		return log.TraceLevel
	}
}

// ParseLogLevel converts a level name such as "debug" into a LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return ErrorLevel, nil
	case "warning", "warn":
		return WarningLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "trace":
		return TraceLevel, nil
	default:
		return InfoLevel, errors.Errorf("unknown log level %q", s)
	}
}

// Logger is a leveled logger with indentation, backed by logrus
type Logger struct {
	Level      LogLevel
	Prefix     string
	IndentSize int
	indent     int // Current indentation level
	base       *log.Logger
	file       *os.File
}

// NewLogger creates a new logger with the specified verbosity level
func NewLogger(level LogLevel) *Logger {
	base := log.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	base.SetLevel(level.logrus())

	return &Logger{
		Level:      level,
		IndentSize: 2,
		base:       base,
	}
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(level LogLevel, filename string) (*Logger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "creating log file %s", filename)
	}

	l := NewLogger(level)
	l.base.SetOutput(file)
	l.base.SetFormatter(&log.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.file = file
	return l, nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// SetLevel changes the verbosity level
func (l *Logger) SetLevel(level LogLevel) {
	l.Level = level
	l.base.SetLevel(level.logrus())
}

// SetPrefix sets a prefix for all log messages
func (l *Logger) SetPrefix(prefix string) {
	l.Prefix = prefix
}

// Indent increases the indentation level
func (l *Logger) Indent() {
	l.indent++
}

// Outdent decreases the indentation level
func (l *Logger) Outdent() {
	if l.indent > 0 {
		l.indent--
	}
}

// log logs a message at the specified level
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.Level {
		return
	}

	var builder strings.Builder
	if l.Prefix != "" {
		builder.WriteString(fmt.Sprintf("%s: ", l.Prefix))
	}
	if l.indent > 0 {
		builder.WriteString(strings.Repeat(" ", l.indent*l.IndentSize))
	}
	builder.WriteString(fmt.Sprintf(format, args...))

	l.base.Log(level.logrus(), builder.String())
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ErrorLevel, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(WarningLevel, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, format, args...)
}

// Trace logs a trace message (highest verbosity)
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(TraceLevel, format, args...)
}

// Anneal logs the progress of the annealing search
func (l *Logger) Anneal(format string, args ...interface{}) {
	l.log(DebugLevel, "ANNEAL: "+format, args...)
}

// Assign logs device assignment decisions
func (l *Logger) Assign(format string, args ...interface{}) {
	l.log(DebugLevel, "ASSIGN: "+format, args...)
}

// Evaluation logs per-iteration evaluation results
func (l *Logger) Evaluation(format string, args ...interface{}) {
	l.log(TraceLevel, "EVALUATION: "+format, args...)
}
