package logger

import (
	"context"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	ServiceEnv ServiceEnv
}

var (
	mu     sync.RWMutex
	base   = otelzap.New(zap.NewNop())
	sugar  = base.Sugar()
	rotate *lumberjack.Logger
)

// Init replaces the no-op logger with a JSON file logger plus console output.
func Init(conf *LogConfig) {
	level := zapcore.InfoLevel
	if conf.LogLevel != "" {
		if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "time"

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), level),
	}

	var r *lumberjack.Logger
	if conf.Path != "" {
		r = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    orDefault(conf.MaxSizeMB, 100),
			MaxBackups: orDefault(conf.MaxBackups, 5),
			MaxAge:     orDefault(conf.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(r), level))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).With(
		zap.String("platform", conf.ServiceEnv.Platform),
		zap.String("service", conf.ServiceEnv.Service),
		zap.String("env", conf.ServiceEnv.Env),
	)

	l := otelzap.New(z, otelzap.WithMinLevel(level))

	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.Sugar()
	rotate = r
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = base.Sync()
	if rotate != nil {
		_ = rotate.Close()
		rotate = nil
	}
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}

func withCtx(ctx context.Context) otelzap.SugaredLoggerWithCtx {
	mu.RLock()
	defer mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return sugar.Ctx(ctx)
}

func Debugf(ctx context.Context, format string, args ...any) {
	withCtx(ctx).Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...any) {
	withCtx(ctx).Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	withCtx(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	withCtx(ctx).Errorf(format, args...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	withCtx(ctx).Fatalf(format, args...)
}

// L returns the underlying zap logger, e.g. for libraries that take one.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.Logger
}
