package common

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger instance.
// If InitLogger() hasn't been called yet, returns a memory-only fallback -
// never a console writer, since this process's stdout is the JSON-RPC wire.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithMemoryWriter(createWriterConfig("", ""))
	}
	return globalLogger
}

// InitLogger stores the provided logger as the global singleton instance.
func InitLogger(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// SetupLogger configures the global logger for an MCP stdio process.
//
// Stdout carries the JSON-RPC transport, so this deliberately never attaches
// a console writer: diagnostics go to an optional log file and to an
// in-memory ring buffer only. This generalizes the teacher's own "minimal
// logging to avoid cluttering MCP stdio" rule into a hard guarantee rather
// than a log-level knob.
func SetupLogger(level, timeFormat, logFile string) arbor.ILogger {
	logger := arbor.NewLogger().WithMemoryWriter(createWriterConfig(timeFormat, ""))

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
			logger = logger.WithFileWriter(createWriterConfig(timeFormat, logFile))
		}
	}

	effectiveLevel := level
	if effectiveLevel == "" {
		effectiveLevel = "info"
	}
	logger = logger.WithLevelFromString(effectiveLevel)

	InitLogger(logger)
	return logger
}

func createWriterConfig(timeFormat, filename string) models.WriterConfiguration {
	format := timeFormat
	if format == "" {
		format = "15:04:05.000"
	}

	writerType := models.LogWriterTypeMemory
	if filename != "" {
		writerType = models.LogWriterTypeFile
	}

	return models.WriterConfiguration{
		Type:             writerType,
		FileName:         filename,
		TimeFormat:       format,
		DisableTimestamp: false,
		MaxSize:          20 * 1024 * 1024,
		MaxBackups:       2,
	}
}
