package logger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Logger is a subsystem logger. It filters by its own level and forwards
// formatted lines to the shared backend.
type Logger struct {
	tag     string
	level   Level
	mtx     sync.RWMutex
	backend *Backend
}

var (
	registryMtx sync.Mutex
	registry    = make(map[string]*Logger)
	backend     = NewBackend()
)

func init() {
	backend.AddLogWriter(nopWriteCloser{os.Stdout}, LevelInfo)
}

type nopWriteCloser struct {
	*os.File
}

func (nopWriteCloser) Close() error { return nil }

// RegisterSubSystem returns a logger for the given subsystem tag, creating
// it if it does not exist yet. All subsystem loggers share one backend.
func RegisterSubSystem(tag string) *Logger {
	registryMtx.Lock()
	defer registryMtx.Unlock()
	if log, ok := registry[tag]; ok {
		return log
	}
	log := &Logger{tag: tag, level: LevelInfo, backend: backend}
	registry[tag] = log
	return log
}

// SetLogLevels sets the level of every registered subsystem logger.
func SetLogLevels(level Level) {
	registryMtx.Lock()
	defer registryMtx.Unlock()
	for _, log := range registry {
		log.SetLevel(level)
	}
}

// SharedBackend returns the backend all subsystem loggers write to.
func SharedBackend() *Backend {
	return backend
}

// SetLevel changes the filtering level of this logger.
func (l *Logger) SetLevel(level Level) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.level = level
}

// Level returns the current filtering level of this logger.
func (l *Logger) Level() Level {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.level
}

func (l *Logger) print(level Level, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.formatLine(level, fmt.Sprint(args...)))
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.backend.write(level, l.formatLine(level, fmt.Sprintf(format, args...)))
}

func (l *Logger) formatLine(level Level, message string) []byte {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return []byte(fmt.Sprintf("%s [%s] %s: %s\n", timestamp, level, l.tag, message))
}

// Tracef formats message according to format specifier and writes to
// to log with LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.printf(LevelTrace, format, args...)
}

// Debugf formats message according to format specifier and writes to
// log with LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

// Infof formats message according to format specifier and writes to
// log with LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Warnf formats message according to format specifier and writes to
// to log with LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Errorf formats message according to format specifier and writes to
// to log with LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Criticalf formats message according to format specifier and writes to
// log with LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

// Trace formats message using the default formats for its operands and
// writes to log with LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.print(LevelTrace, args...)
}

// Debug formats message using the default formats for its operands and
// writes to log with LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.print(LevelDebug, args...)
}

// Info formats message using the default formats for its operands and
// writes to log with LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.print(LevelInfo, args...)
}

// Warn formats message using the default formats for its operands and
// writes to log with LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.print(LevelWarn, args...)
}

// Error formats message using the default formats for its operands and
// writes to log with LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.print(LevelError, args...)
}

// Critical formats message using the default formats for its operands and
// writes to log with LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.print(LevelCritical, args...)
}
