package logger

import (
	"github.com/millern/kafdrop/internal/extension"
	"github.com/millern/kafdrop/internal/logger/common"
	_ "github.com/millern/kafdrop/internal/logger/zap"
)

func init() {
	// zap is the default driver
	default_logger, err := NewLogger()
	if err != nil {
		panic(err)
	}
	SetLogger(default_logger)
}

var logger common.Logger

func NewLogger(opts ...common.Option) (common.Logger, error) {
	options := common.NewOptions(opts...)
	return extension.GetLogger(options.Driver, options.Internal)
}

func SetLogger(log common.Logger) {
	logger = log
}

func GetLogger() common.Logger {
	return logger
}

func SetLevel(level string) bool {
	if sl, ok := logger.(common.SetLevel_Logger); ok {
		return sl.SetLevel(level)
	}
	return false
}

func Debug(args ...interface{}) { logger.Debug(args...) }
func Info(args ...interface{})  { logger.Info(args...) }
func Warn(args ...interface{})  { logger.Warn(args...) }
func Error(args ...interface{}) { logger.Error(args...) }
func Fatal(args ...interface{}) { logger.Fatal(args...) }

func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { logger.Fatalf(format, args...) }
