package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	log         = zap.NewNop()
	serviceName = "default"
)

// Init строит продакшен-логгер. До вызова все функции молчат (no-op),
// это осознанно: тестам логгер не нужен.
func Init(service string) error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	log = l
	serviceName = service
	return nil
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

func Info(format string, args ...interface{}) {
	log.With(zap.String("service", serviceName)).Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	log.With(zap.String("service", serviceName)).Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	log.With(zap.String("service", serviceName)).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	log.With(zap.String("service", serviceName)).Fatal(fmt.Sprintf(format, args...))
}

// Sync сбрасывает буферы перед выходом.
func Sync() {
	_ = log.Sync()
}
