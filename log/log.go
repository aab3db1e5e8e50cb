package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hyperlane-xyz/lander/util"
)

// NewRootLoggerWithFile creates a root logger that tees its output to both
// stdout and the given log file, creating the file's directory if needed.
func NewRootLoggerWithFile(logFile string, level string) (*zap.Logger, error) {
	if err := util.MakeDirectory(filepath.Dir(logFile)); err != nil {
		return nil, err
	}

	// Create or open the log file
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}

	mw := io.MultiWriter(os.Stdout, f)

	logger, err := NewRootLogger("console", level, mw)
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// NewRootLogger creates a root logger writing to w in the given format
// ("json", "console", "auto" or "logfmt") at the given level.
func NewRootLogger(format string, level string, w io.Writer) (*zap.Logger, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(ec)
	case "auto", "console":
		enc = zapcore.NewConsoleEncoder(ec)
	case "logfmt":
		enc = zaplogfmt.NewEncoder(ec)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	var lvl zapcore.Level
	switch level {
	case "trace", "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	case "fatal":
		lvl = zap.FatalLevel
	default:
		return nil, fmt.Errorf("unsupported log level: %s", level)
	}

	return zap.New(zapcore.NewCore(
		enc,
		zapcore.AddSync(w),
		lvl,
	)), nil
}
