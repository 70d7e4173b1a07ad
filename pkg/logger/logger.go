package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
}

// Every public method reaches zap through exactly one internal frame.
const _callerSkip = 2

type Logger struct {
	logger *zap.SugaredLogger
}

var _ Interface = (*Logger)(nil)

type Option func(*options)

type options struct {
	filePath string
}

// File tees every entry as a JSON line into path, creating its directory.
func File(path string) Option {
	return func(o *options) {
		o.filePath = path
	}
}

func New(level string, opts ...Option) *Logger {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	lvl := parseLevel(level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), lvl),
	}

	if o.filePath != "" {
		if ws, err := openFile(o.filePath); err == nil {
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, lvl))
		} else {
			fmt.Fprintf(os.Stderr, "logger - New - openFile: %v\n", err)
		}
	}

	return NewWithCore(zapcore.NewTee(cores...))
}

// NewWithCore wraps an existing zap core, e.g. an observer in tests.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(_callerSkip)).Sugar()}
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg(zapcore.DebugLevel, message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(zapcore.InfoLevel, message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(zapcore.WarnLevel, message, args...)
}

func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.msg(zapcore.ErrorLevel, message, args...)
}

func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg(zapcore.FatalLevel, message, args...)

	os.Exit(1)
}

func (l *Logger) Sync() error {
	return l.logger.Sync()
}

func (l *Logger) log(lvl zapcore.Level, message string, args ...interface{}) {
	if len(args) == 0 {
		l.logger.Log(lvl, message)
	} else {
		l.logger.Logf(lvl, message, args...)
	}
}

func (l *Logger) msg(lvl zapcore.Level, message interface{}, args ...interface{}) {
	switch msg := message.(type) {
	case error:
		// Error(err, "where") reads as "where: err".
		if len(args) > 0 {
			if where, ok := args[0].(string); ok {
				l.logger.Logw(lvl, where, "error", msg.Error())
				return
			}
		}
		l.logger.Log(lvl, msg.Error())
	case string:
		if len(args) == 0 {
			l.logger.Log(lvl, msg)
		} else {
			l.logger.Logf(lvl, msg, args...)
		}
	default:
		l.logger.Logf(lvl, fmt.Sprintf("%v", message), args...)
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func openFile(path string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile: %w", err)
	}

	return zapcore.Lock(f), nil
}
