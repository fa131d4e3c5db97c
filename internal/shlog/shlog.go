// Package shlog is the execution core's ambient logger: a thin, leveled
// wrapper over an io.Writer in the same style as the teacher's
// runtime/execution/context Ctx.Log — fmt.Fprintf with a level prefix, no
// structured logging library, since nothing in the engine's hot paths needs
// more than "tell the user what happened on stderr".
package shlog

import (
	"fmt"
	"io"
)

// Level is a log severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) prefix() string {
	switch l {
	case Debug:
		return "[DEBUG] "
	case Warn:
		return "[WARN] "
	case Error:
		return "[ERROR] "
	default:
		return "[INFO] "
	}
}

// Logger writes leveled lines to an underlying writer, typically the
// shell's real stderr (never a redirection scope's current stderr: log
// lines are the shell's own diagnostics, not a command's output).
type Logger struct {
	Out   io.Writer
	Debug bool // when false, Debug-level messages are dropped
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{Out: w}
}

// Logf writes a formatted message at the given level.
func (l *Logger) Logf(level Level, format string, args ...interface{}) {
	if level == Debug && !l.Debug {
		return
	}
	fmt.Fprintf(l.Out, "%s%s\n", level.prefix(), fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.Logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.Logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.Logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.Logf(Error, format, args...) }
