package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out. LOG_LEVEL overrides level; unknown
// values fall back to info.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	lg := logrus.New()
	lg.SetOutput(out)
	lg.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	lg.SetLevel(parsed)
	return lg
}
