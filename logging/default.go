package logging

import (
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// DefaultLogger writes "[LEVEL] msg key=value ..." lines to one stream.
// The CLIs print their reports on stdout, so diagnostics go to stderr.
type DefaultLogger struct {
	out       *log.Logger
	level     Level
	fields    Fields
	useColors bool
	exit      func(int)
}

// NewDefaultLogger logs to stderr, colored when stderr is a terminal
func NewDefaultLogger() *DefaultLogger {
	l := NewWriterLogger(os.Stderr)
	l.useColors = isTerminal(os.Stderr)
	return l
}

// NewWriterLogger logs uncolored lines to w at info level
func NewWriterLogger(w io.Writer) *DefaultLogger {
	return &DefaultLogger{
		out:    log.New(w, "", log.LstdFlags),
		level:  InfoLevel,
		fields: make(Fields),
		exit:   os.Exit,
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func (d *DefaultLogger) format(level Level, err error, msg string, fields []Fields) string {
	merged := make(Fields, len(d.fields))
	maps.Copy(merged, d.fields)
	for _, f := range fields {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", k, merged[k])
	}

	line := b.String()
	if !d.useColors {
		return line
	}
	switch level {
	case WarnLevel:
		return colorYellow + line + colorReset
	case ErrorLevel:
		return colorRed + line + colorReset
	case FatalLevel:
		return colorBold + colorRed + line + colorReset
	}
	return line
}

func (d *DefaultLogger) log(level Level, err error, msg string, fields []Fields) {
	if level < d.level {
		return
	}
	d.out.Println(d.format(level, err, msg, fields))
	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.log(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.log(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.log(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.log(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.log(FatalLevel, err, msg, fields)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = make(Fields, len(d.fields)+len(fields))
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// SetColors toggles ANSI colors on warn, error and fatal lines
func (d *DefaultLogger) SetColors(enabled bool) {
	d.useColors = enabled
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(string, ...Fields)        {}
func (n *NoOpLogger) Info(string, ...Fields)         {}
func (n *NoOpLogger) Warn(string, ...Fields)         {}
func (n *NoOpLogger) Error(error, string, ...Fields) {}
func (n *NoOpLogger) Fatal(error, string, ...Fields) {}
func (n *NoOpLogger) WithFields(Fields) Logger       { return n }
func (n *NoOpLogger) SetLevel(Level)                 {}
