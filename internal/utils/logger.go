package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLogger writes a generation run's log both to stdout and to a per-run
// file under <dir>/<name>/.
type RunLogger struct {
	file   *os.File
	logger *zap.SugaredLogger
	path   string
}

// ParseLevel converts a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func NewRunLogger(dir, name, level string) (*RunLogger, error) {
	// Sanitize run name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(name), " ", "_")

	runDir := filepath.Join(dir, sanitized)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(runDir, fmt.Sprintf("run_%s_%s.log", sanitized, timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	lvl := zap.NewAtomicLevelAt(ParseLevel(level))

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), lvl),
	)

	return &RunLogger{
		file:   file,
		logger: zap.New(core).Sugar().With("run", sanitized),
		path:   logPath,
	}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *RunLogger {
	return &RunLogger{logger: zap.NewNop().Sugar()}
}

// NewConsoleLogger returns a logger that writes to stdout only.
func NewConsoleLogger(level string) *RunLogger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stdout), ParseLevel(level))
	return &RunLogger{logger: zap.New(core).Sugar()}
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.logger.Infof(format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.logger.Errorf(format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.logger.Debugf(format, v...)
}

// Path returns the log file path, or "" when the logger has no file.
func (rl *RunLogger) Path() string {
	return rl.path
}

func (rl *RunLogger) Close() error {
	_ = rl.logger.Sync()
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
