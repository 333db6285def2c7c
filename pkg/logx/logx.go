// Package logx provides structured logging with env-controlled debug domains
// and an in-memory buffer backing the diagnostics panel of the web client.
package logx

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger tags every line with the component that produced it (flow, intent,
// responder, pricing, ...).
type Logger struct {
	component string
	logger    *log.Logger
}

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one buffered log line, served to the web UI diagnostics panel.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Component string `json:"component"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

type ringBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int
}

var (
	debugMu      sync.RWMutex
	debugEnabled bool
	debugDomains map[string]bool // nil = all domains

	buffer = &ringBuffer{maxSize: 1000}
)

//nolint:gochecknoinits // env-driven debug config must be ready before first log line
func init() {
	if v := os.Getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		debugEnabled = true
	}
	if domains := os.Getenv("DEBUG_DOMAINS"); domains != "" {
		debugDomains = make(map[string]bool)
		for _, d := range strings.Split(domains, ",") {
			debugDomains[strings.TrimSpace(d)] = true
		}
	}
}

// NewLogger creates a logger for the given component. Output goes to stderr
// so the interactive CLI can own stdout.
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		logger:    log.New(os.Stderr, "", 0),
	}
}

// SetDebug overrides the env-derived debug configuration.
func SetDebug(enabled bool, domains []string) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
	if len(domains) == 0 {
		debugDomains = nil
		return
	}
	debugDomains = make(map[string]bool)
	for _, d := range domains {
		debugDomains[strings.TrimSpace(d)] = true
	}
}

// DebugEnabledFor reports whether debug logging applies to the component.
func DebugEnabledFor(component string) bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	if !debugEnabled {
		return false
	}
	if debugDomains == nil {
		return true
	}
	return debugDomains[component]
}

func (b *ringBuffer) add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, e)
	if len(b.entries) > b.maxSize {
		b.entries = b.entries[len(b.entries)-b.maxSize:]
	}
}

// Recent returns buffered entries, optionally filtered by component and
// minimum timestamp.
func Recent(component string, since time.Time) []Entry {
	buffer.mu.RLock()
	defer buffer.mu.RUnlock()

	out := make([]Entry, 0, len(buffer.entries))
	for i := range buffer.entries {
		e := &buffer.entries[i]
		if component != "" && !strings.EqualFold(e.Component, component) {
			continue
		}
		if !since.IsZero() {
			ts, err := time.Parse(timeLayout, e.Timestamp)
			if err != nil || ts.Before(since) {
				continue
			}
		}
		out = append(out, *e)
	}
	return out
}

const timeLayout = "2006-01-02T15:04:05.000Z"

func (l *Logger) log(level Level, format string, args ...any) {
	ts := time.Now().UTC().Format(timeLayout)
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s: %s", ts, l.component, level, msg)

	buffer.add(Entry{
		Timestamp: ts,
		Component: l.component,
		Level:     string(level),
		Message:   msg,
	})
}

func (l *Logger) Debug(format string, args ...any) {
	if !DebugEnabledFor(l.component) {
		return
	}
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Component returns the component tag this logger was created with.
func (l *Logger) Component() string {
	return l.component
}

// Global convenience logger for code without a component of its own.
var defaultLogger = NewLogger("system")

func Debugf(format string, args ...any) { defaultLogger.Debug(format, args...) }
func Infof(format string, args ...any)  { defaultLogger.Info(format, args...) }
func Warnf(format string, args ...any)  { defaultLogger.Warn(format, args...) }

// Errorf logs and returns the formatted error.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	defaultLogger.Error("%s", err.Error())
	return err
}

// Wrap logs msg + ": " + err and returns the wrapped error. Returns nil when
// err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", msg, err)
	defaultLogger.Error("%s", wrapped.Error())
	return wrapped
}
