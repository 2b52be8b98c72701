package logger

import (
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string
	Env   string
	Dir   string
}

func ConfigFromEnv() Config {
	lvl := os.Getenv("LOG_LEVEL")
	env := os.Getenv("APP_ENV")
	if lvl == "" {
		if env == "production" {
			lvl = "info"
		} else {
			lvl = "debug"
		}
	}
	dir := os.Getenv("LOG_DIR")
	if dir == "" {
		dir = "logs"
	}
	return Config{Level: lvl, Env: env, Dir: dir}
}

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init builds the service logger. Development logs to the console; production
// logs JSON to stdout and to daily-rotated files kept for seven days.
func Init(cfg Config) (*zap.Logger, error) {
	lvl := levelFromString(cfg.Level)

	if cfg.Env != "production" {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	writer, err := rotatelogs.New(
		filepath.Join(cfg.Dir, "auth-service.%Y%m%d.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, "auth-service.log")),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), lvl),
		zapcore.NewCore(encoder, zapcore.AddSync(writer), lvl),
	)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	return zap.New(core, opts...), nil
}
