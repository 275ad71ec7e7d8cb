// Package datastore provides logging infrastructure for database operations
package datastore

import (
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/rcanovic/restaurant-reviews/internal/logging"
	"gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow.
const DefaultSlowQueryThreshold = 1 * time.Second

// defaultLogPath keeps datastore logs under the shared "logs/" directory.
const defaultLogPath = "logs/datastore.log"

// Package-level logger for datastore operations
var (
	datastoreLogger   *slog.Logger
	datastoreLevelVar = new(slog.LevelVar) // Dynamic level control
	loggerCloseFunc   func() error
	loggerOnce        sync.Once
	loggerMu          sync.RWMutex
)

// InitializeLogger initializes the datastore logger with the specified log
// file path. Safe to call multiple times; initialization happens only once.
func InitializeLogger(logFilePath string) error {
	var initErr error

	loggerOnce.Do(func() {
		if logFilePath == "" {
			logFilePath = defaultLogPath
		}

		datastoreLevelVar.Set(slog.LevelInfo)

		var err error
		loggerMu.Lock()
		datastoreLogger, loggerCloseFunc, err = logging.NewFileLogger(logFilePath, "datastore", datastoreLevelVar)
		loggerMu.Unlock()
		if err != nil {
			// Fall back to the process default logger rather than failing
			loggerMu.Lock()
			datastoreLogger = slog.Default().With("service", "datastore")
			loggerCloseFunc = func() error { return nil }
			loggerMu.Unlock()
			initErr = err
		}
	})

	return initErr
}

// GetLogger returns the datastore logger, initializing defaults if needed.
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	if datastoreLogger != nil {
		defer loggerMu.RUnlock()
		return datastoreLogger
	}
	loggerMu.RUnlock()

	_ = InitializeLogger("")

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if datastoreLogger == nil {
		return slog.Default().With("service", "datastore")
	}
	return datastoreLogger
}

// CloseLogger releases the datastore log file.
func CloseLogger() error {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if loggerCloseFunc != nil {
		return loggerCloseFunc()
	}
	return nil
}

// SetLogLevel adjusts the minimum level of the datastore logger at runtime.
func SetLogLevel(level slog.Level) {
	datastoreLevelVar.Set(level)
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return logger.New(log.New(gormLogBridge{}, "", 0), logger.Config{
		SlowThreshold:             DefaultSlowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// gormLogBridge routes GORM's standard-library log output into slog.
type gormLogBridge struct{}

func (gormLogBridge) Write(p []byte) (int, error) {
	GetLogger().Debug(string(p))
	return len(p), nil
}
