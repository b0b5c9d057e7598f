package lib

import (
	"io"
	"os"
	"path/filepath"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	timeLayout  = "2006-01-02T15:04:05"
	logFileName = "agrilink.log"
)

// LoggerConfig is shared by all component loggers, only the level differs between them
type LoggerConfig struct {
	Level      string
	Color      bool
	IsProd     bool
	JSON       bool
	FolderPath string // enables file logging when set
}

func (c LoggerConfig) WithLevel(level string) LoggerConfig {
	c.Level = level
	return c
}

type Logger struct {
	*zap.SugaredLogger
}

func NewLogger(cfg LoggerConfig) (*Logger, error) {
	log, err := newLogger(cfg, nil)
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: log.Sugar()}, nil
}

// NewLoggerMemory additionally writes plain text entries to wr, used by tests that assert on log output
func NewLoggerMemory(level string, wr io.Writer) (*Logger, error) {
	log, err := newLogger(LoggerConfig{Level: level}, wr)
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: log.Sugar()}, nil
}

// NewTestLogger logs only to stdout
func NewTestLogger() *Logger {
	log, _ := newLogger(LoggerConfig{Level: "debug"}, nil)
	return &Logger{SugaredLogger: log.Sugar()}
}

func (l *Logger) Named(name string) interfaces.ILogger {
	return &Logger{l.SugaredLogger.Named(name)}
}

func (l *Logger) With(args ...interface{}) interfaces.ILogger {
	return &Logger{l.SugaredLogger.With(args...)}
}

func newLogger(cfg LoggerConfig, extraWriter io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(cfg, cfg.Color), zapcore.AddSync(os.Stdout), level),
	}

	if cfg.FolderPath != "" {
		// the file keeps every level regardless of the console level
		file, err := openLogFile(cfg.FolderPath)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(cfg, false), zapcore.AddSync(file), zapcore.DebugLevel))
	}
	if extraWriter != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(extraWriter), level))
	}

	opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if !cfg.IsProd {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

func newEncoder(cfg LoggerConfig, color bool) zapcore.Encoder {
	var encoderCfg zapcore.EncoderConfig
	if cfg.IsProd {
		encoderCfg = zap.NewProductionEncoderConfig()
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	}
	if !cfg.JSON {
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}
	if color && !cfg.JSON {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.JSON {
		return zapcore.NewJSONEncoder(encoderCfg)
	}
	return zapcore.NewConsoleEncoder(encoderCfg)
}

func openLogFile(folder string) (*os.File, error) {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(folder, logFileName), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
}
