package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters, used when FileRotation fields are zero
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 7
)

// Logger wraps zap with the agent's construction defaults
type Logger struct {
	*zap.Logger
}

// FileRotation describes a rotating log file destination
type FileRotation struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a logger writing to stdout.
// format is "json" or "console"; level is a zap level name.
func New(level, format string) (*Logger, error) {
	return NewWithFile(level, format, FileRotation{})
}

// NewWithFile creates a logger writing to stdout and, when file.Path is set,
// to a size-rotated file
func NewWithFile(level, format string, file FileRotation) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or console)", format)
	}

	sink := zapcore.Lock(os.Stdout)
	core := zapcore.NewCore(encoder, sink, lvl)

	if file.Path != "" {
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		fileSink := zapcore.AddSync(&lj.Logger{
			Filename:   file.Path,
			MaxSize:    valOr(file.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: valOr(file.MaxBackups, DefaultMaxBackups),
			MaxAge:     valOr(file.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   file.Compress,
		})
		core = zapcore.NewTee(core, zapcore.NewCore(fileEnc, fileSink, lvl))
	}

	return &Logger{zap.New(core, zap.AddCaller())}, nil
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
