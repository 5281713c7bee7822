package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер приложения, настраивается один раз в main.
var Log *logrus.Logger

// Init инициализирует структурированный логгер с JSON форматом.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
}

// SetTextFormatter переключает логи на текстовый формат для разработки.
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}
