// Package netlog provides the package-level structured logger used across
// the simulator core, built the same way the teacher's utils package
// builds its *zap.Logger: a JSON encoder over a lumberjack-rotated file
// sink, level-gated from config.GlobalCfg.Log.Level.
package netlog

import (
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"netsim/config"
)

// Logger is the process-wide logger. Network events log through it at
// Debug/Warn, and the command-line entry point at Info/Error, the way
// controller/*.go logs connection lifecycle events in the teacher repo.
var Logger *zap.Logger

func init() {
	level, ok := levelMap[config.GlobalCfg.Log.Level]
	if !ok {
		level = zapcore.InfoLevel
	}
	enabled := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= level
	})

	path := config.GlobalCfg.Log.Path
	if path == "" {
		path = "netsim.log"
	}
	hook := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1024,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	sink := zapcore.AddSync(hook)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	core := zapcore.NewTee(zapcore.NewCore(encoder, sink, enabled))

	Logger = zap.New(core, zap.AddCaller())
}

var levelMap = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"info":   zapcore.InfoLevel,
	"warn":   zapcore.WarnLevel,
	"error":  zapcore.ErrorLevel,
	"dpanic": zapcore.DPanicLevel,
	"panic":  zapcore.PanicLevel,
	"fatal":  zapcore.FatalLevel,
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}
