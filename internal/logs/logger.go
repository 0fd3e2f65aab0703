package logs

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is safe to use before Initialize; it discards everything until then.
	Logger  = zap.NewNop().Sugar()
	logFile *os.File
	mu      sync.Mutex
)

// Initialize points the logger at debug.log inside logDir. The terminal
// belongs to the TUI, so nothing is written to stderr.
func Initialize(logDir string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logDir == "" {
		logDir = "."
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "debug.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		Logger.Warnw("failed to open log file", "path", logPath, "error", err)
		return err
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(f),
		zap.NewAtomicLevelAt(level),
	)

	if logFile != nil {
		_ = Logger.Sync()
		logFile.Close()
	}
	logFile = f
	Logger = zap.New(core, zap.AddCaller()).Named("habitmap").Sugar()

	Logger.Infow("logger initialized", "path", logPath, "debug", debug)
	return nil
}

// Close flushes and closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return nil
	}
	_ = Logger.Sync()
	err := logFile.Close()
	logFile = nil
	Logger = zap.NewNop().Sugar()
	return err
}
