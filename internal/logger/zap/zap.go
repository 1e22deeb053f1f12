package zap

import (
	"os"
	"strings"

	"github.com/millern/kafdrop/internal/extension"
	"github.com/millern/kafdrop/internal/logger/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	extension.SetLogger("zap", NewLogger)
}

type zap_logger struct {
	*zap.SugaredLogger
	lv zap.AtomicLevel
}

func (l *zap_logger) SetLevel(level string) bool {
	var lv zapcore.Level
	if err := lv.Set(level); err != nil {
		return false
	}
	l.lv.SetLevel(lv)
	return true
}

var NewLogger extension.LoggerFactory = func(opts common.InternalOptions) (common.Logger, error) {
	var (
		lv      zapcore.Level
		sync    []zapcore.WriteSyncer
		encoder zapcore.Encoder
	)

	if err := lv.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, err
	}

	for _, apt := range opts.Appender {
		switch apt {
		case "console":
			sync = append(sync, zapcore.AddSync(os.Stdout))
		default:
			file, err := os.OpenFile(apt, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				return nil, err
			}
			sync = append(sync, zapcore.AddSync(file))
		}
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		ec := encoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		encoder = zapcore.NewConsoleEncoder(encoderConfig())
	}

	l := &zap_logger{lv: zap.NewAtomicLevelAt(lv)}
	l.SugaredLogger = zap.New(zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sync...), l.lv),
		zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
	return l, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "line",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
