package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const (
	defaultThresholdKB = 10 * 1000 // 10 MB logs by default.
	defaultMaxRolls    = 8         // keep 8 last logs by default.
)

type logWriter struct {
	io.WriteCloser
	logLevel Level
}

// Backend is a logging backend. Subsystem loggers created from the backend
// write to the backend's writers. Writes are serialized by a mutex so lines
// from different subsystems never interleave.
type Backend struct {
	mtx     sync.Mutex
	writers []logWriter
}

// NewBackend creates a new logger backend with no writers attached.
func NewBackend() *Backend {
	return &Backend{}
}

// AddLogWriter adds a type implementing io.WriteCloser which the log will
// write into on a certain log level.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	b.writers = append(b.writers, logWriter{WriteCloser: writer, logLevel: logLevel})
}

// AddLogFile adds a file which the log will write into on a certain log
// level with the default log rotation settings. It'll create the file if
// it doesn't exist.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogFileWithCustomRotator adds a file which the log will write into on
// a certain log level, with the specified log rotation settings.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	logDir, _ := filepath.Split(logFile)
	// if the logDir is empty then `logFile` is in the cwd and there's no
	// need to create any directory.
	if logDir != "" {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	b.AddLogWriter(r, logLevel)
	return nil
}

// write sends a formatted log line to every writer whose level allows it.
func (b *Backend) write(level Level, line []byte) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, writer := range b.writers {
		if level >= writer.logLevel {
			_, _ = writer.Write(line)
		}
	}
}

// Close finalizes all writers attached to this backend.
func (b *Backend) Close() {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
	b.writers = nil
}
