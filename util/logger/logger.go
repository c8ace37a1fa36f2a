package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// New returns new configured logger writing to stderr
func New(lvl logrus.Level) *logrus.Logger {
	return NewWithWriter(lvl, os.Stderr)
}

// NewWithWriter returns new configured logger writing to <w>
func NewWithWriter(lvl logrus.Level, w io.Writer) *logrus.Logger {
	formatter := prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.Stamp,
		ForceFormatting: true,
	}
	log := logrus.Logger{
		Out:       w,
		Formatter: &formatter,
		Level:     lvl,
		Hooks:     make(logrus.LevelHooks),
	}
	return &log
}

// Discard returns logger which drops every message
func Discard() *logrus.Logger {
	return NewWithWriter(logrus.PanicLevel, io.Discard)
}
