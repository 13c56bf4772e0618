package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数（由 config.LogConfig 转换而来）
type LogOption struct {
	Format   string // "console" 或 "json"
	LogDir   string // 为空时只输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩旧日志文件
}

var sugar = zap.NewNop().Sugar()

// Init 初始化全局日志实例；LogDir 非空时同时写滚动文件
func Init(opt LogOption) error {
	level := parseLevel(opt.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(opt.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), level),
	}

	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return err
		}
		rotate := &lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, "sweeper.log"),
			MaxSize:    256, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   opt.Compress,
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotate), level))
	}

	sugar = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
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

func Debugf(format string, args ...any) { sugar.Debugf(format, args...) }
func Infof(format string, args ...any)  { sugar.Infof(format, args...) }
func Warnf(format string, args ...any)  { sugar.Warnf(format, args...) }
func Errorf(format string, args ...any) { sugar.Errorf(format, args...) }

// Sync 刷新缓冲日志（进程退出前调用）
func Sync() {
	_ = sugar.Sync()
}
