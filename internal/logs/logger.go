package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// FileName is the log file created inside the configured log directory
const FileName = "debug.log"

var (
	Logger  *log.Logger
	logFile *os.File
	mu      sync.Mutex
)

// Until Initialize is called everything is discarded; the TUI owns stdout.
func init() {
	Logger = log.New()
	Logger.SetOutput(io.Discard)
	Logger.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableColors: true})
}

// Initialize points the logger at <logDir>/debug.log with the given level.
// An empty logDir means the current directory.
func Initialize(logDir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	if logDir == "" {
		logDir = "."
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	logPath := filepath.Join(logDir, FileName)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file at %s: %w", logPath, err)
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	Logger.SetOutput(f)
	Logger.SetLevel(lvl)
	Logger.WithField("path", logPath).Debug("logger initialized")
	return nil
}

// Close closes the log file and discards further output.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	Logger.SetOutput(io.Discard)
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}
