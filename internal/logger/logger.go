// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger for the given APP_ENV. prod logs JSON at info level;
// dev and test log text at debug level.
func New(env string) *logrus.Logger {
	return newWithOutput(env, os.Stdout)
}

func newWithOutput(env string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if env == "prod" {
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
