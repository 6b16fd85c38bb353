package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего моста.
// До вызова Init пишет в stderr с настройками logrus по умолчанию,
// чтобы пакеты можно было использовать из тестов без инициализации.
var Log = logrus.New()

// Init настраивает глобальный логгер из переменных окружения.
// Вызывается один раз при старте процесса (cmd/bridge).
func Init() {
	// 1. Уровень логирования. По умолчанию "info", для отладки - "debug".
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}

	// 2. Формат: "json" для сбора логов, всё остальное - текст для разработки.
	Configure(logLevel, os.Getenv("LOG_FORMAT"), os.Stdout)
}

// Configure применяет явные настройки поверх окружения (флаги CLI).
// Нераспознанный уровень понижается до info, пустой out означает stdout.
func Configure(levelName, format string, out io.Writer) {
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if out == nil {
		out = os.Stdout
	}
	Log.SetOutput(out)
}

// Discard глушит вывод. Используется в тестах.
func Discard() {
	Log.SetOutput(io.Discard)
}

// Component возвращает запись с тегом компонента - основной способ логирования в мосте.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
