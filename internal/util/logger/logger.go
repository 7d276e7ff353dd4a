package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.SugaredLogger
	mu           sync.RWMutex
)

// Config defines logging configuration.
type Config struct {
	Level    string // "debug", "info", "warn", "error"
	Encoding string // "json" or "console"
}

func DefaultConfig() *Config {
	return &Config{Level: "info", Encoding: "console"}
}

// Init builds the global zap logger from cfg. Calling it again replaces
// the logger, which main does once after config is loaded.
func Init(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = build(cfg)
}

func build(cfg *Config) *zap.SugaredLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "msg"
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func get() *zap.SugaredLogger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if globalLogger == nil {
		globalLogger = build(DefaultConfig())
	}
	return globalLogger
}

// Sync flushes any buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
}

func Debugf(msg string, args ...interface{}) { get().Debugf(msg, args...) }
func Infof(msg string, args ...interface{})  { get().Infof(msg, args...) }
func Warnf(msg string, args ...interface{})  { get().Warnf(msg, args...) }
func Errorf(msg string, args ...interface{}) { get().Errorf(msg, args...) }
func Fatalf(msg string, args ...interface{}) { get().Fatalf(msg, args...) }
