package gizmo

import (
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the logging surface used by the gizmo. Plug in your own
// implementation to route messages into the host application's logs.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes through a charmbracelet logger.
type DefaultLogger struct {
	mu    sync.Mutex
	debug bool
	log   *charmlog.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	logger := charmlog.Default().WithPrefix(prefix)
	if debug {
		logger.SetLevel(charmlog.DebugLevel)
	}
	return &DefaultLogger{debug: debug, log: logger}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	if enabled {
		l.log.SetLevel(charmlog.DebugLevel)
	} else {
		l.log.SetLevel(charmlog.InfoLevel)
	}
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

func defaultLogger() Logger {
	return NewDefaultLogger("gizmo", false)
}

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
