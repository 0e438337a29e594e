package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger. It is usable before Init.
var Log = logrus.New()

// Init configures level and format. Production logs are JSON, everything else is text.
func Init(level string, production bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if production {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Silence discards output, used by tests.
func Silence() {
	Log.SetOutput(io.Discard)
}
