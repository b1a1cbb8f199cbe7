package crucible

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logger the engine writes to. It's satisfied by the
// adapters in this package as well as by logrus entries, so a stdlib logger
// and a structured logger can both be plugged in.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
}

type logKey uint8

const loggerKey logKey = 0

// SetLogger stores the logger on the context for use further down the tree
func SetLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// ContextLogger retrieves the logger from the context,
// when there is none it returns NopLogger
func ContextLogger(ctx context.Context) Logger {
	logger, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return NopLogger
	}
	return logger
}

// NopLogger drops every message on the floor, except for Fatalf which
// still terminates the process
var NopLogger Logger = &nopLogger{}

type nopLogger struct{}

func (n *nopLogger) Debugf(string, ...interface{}) {}
func (n *nopLogger) Infof(string, ...interface{})  {}
func (n *nopLogger) Warnf(string, ...interface{})  {}
func (n *nopLogger) Errorf(string, ...interface{}) {}
func (n *nopLogger) Fatalf(string, ...interface{}) {
	os.Exit(1)
}

// GoLog creates a leveled logger backed by the standard library log package
func GoLog(w io.Writer, prefix string, flags int) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &goLogger{lg: log.New(w, prefix, flags)}
}

type goLogger struct {
	lg *log.Logger
}

func (g *goLogger) Debugf(format string, args ...interface{}) {
	g.lg.Printf("[DEBUG] "+format, args...)
}

func (g *goLogger) Infof(format string, args ...interface{}) {
	g.lg.Printf("[INFO]  "+format, args...)
}

func (g *goLogger) Warnf(format string, args ...interface{}) {
	g.lg.Printf("[WARN]  "+format, args...)
}

func (g *goLogger) Errorf(format string, args ...interface{}) {
	g.lg.Printf("[ERROR] "+format, args...)
}

func (g *goLogger) Fatalf(format string, args ...interface{}) {
	g.lg.Fatalf(format, args...)
}

// Structured wraps a logrus logger so it satisfies the Logger interface
// used throughout this library
func Structured(fl logrus.FieldLogger) Logger {
	if fl == nil {
		fl = logrus.StandardLogger()
	}
	return &logrusLogger{fl: fl}
}

type logrusLogger struct {
	fl logrus.FieldLogger
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.fl.Debugf(format, args...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.fl.Infof(format, args...)
}

func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.fl.Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.fl.Errorf(format, args...)
}

func (l *logrusLogger) Fatalf(format string, args ...interface{}) {
	l.fl.Fatalf(format, args...)
}
