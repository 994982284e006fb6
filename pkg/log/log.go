package log

import (
	"context"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const ctxLoggerKey = "zapLogger"

type Logger struct {
	*zap.Logger
}

func NewLog(conf *viper.Viper) *Logger {
	return initZap(conf)
}

func initZap(conf *viper.Viper) *Logger {
	// log address "out.log" User-defined
	lp := conf.GetString("log.log_file_name")
	lv := conf.GetString("log.log_level")
	var level zapcore.Level
	// debug<info<warn<error<fatal<panic
	switch lv {
	case "debug":
		level = zap.DebugLevel
	case "info":
		level = zap.InfoLevel
	case "warn":
		level = zap.WarnLevel
	case "error":
		level = zap.ErrorLevel
	default:
		level = zap.InfoLevel
	}
	hook := lumberjack.Logger{
		Filename:   lp,                           // Log file path
		MaxSize:    conf.GetInt("log.max_size"),  // Maximum size unit for each log file: M
		MaxBackups: conf.GetInt("log.max_backups"),
		MaxAge:     conf.GetInt("log.max_age"),   // The maximum time to save the file. Unit: Day
		Compress:   conf.GetBool("log.compress"), // Whether to compress and archive old logs
	}

	var encoder zapcore.Encoder
	if conf.GetString("log.encoding") == "console" {
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "Logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseColorLevelEncoder,
			EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(t.Format("2006-01-02 15:04:05"))
			},
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.FullCallerEncoder,
		})
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.TimeKey = "time"
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var core zapcore.Core
	if conf.GetString("env") != "prod" {
		core = zapcore.NewCore(
			encoder,
			zapcore.NewMultiWriteSyncer(zapcore.AddSync(&hook), zapcore.AddSync(os.Stdout)),
			level,
		)
	} else {
		core = zapcore.NewCore(
			encoder,
			zapcore.AddSync(&hook),
			level,
		)
	}
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{logger}
}

// WithValue adds a zap field to the logging context, the field is carried by
// every subsequent WithContext call on the same request context.
func (l *Logger) WithValue(ctx context.Context, fields ...zapcore.Field) context.Context {
	if c, ok := ctx.(interface{ Set(string, any) }); ok {
		c.Set(ctxLoggerKey, l.WithContext(ctx).With(fields...))
		return ctx
	}
	return context.WithValue(ctx, ctxLoggerKey, l.WithContext(ctx).With(fields...)) //nolint:staticcheck
}

// WithContext returns the logger carried by ctx, or the root logger.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if c, ok := ctx.(interface{ Value(any) any }); ok {
		switch v := c.Value(ctxLoggerKey).(type) {
		case *zap.Logger:
			return &Logger{v}
		case *Logger:
			return v
		}
	}
	return l
}
