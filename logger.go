package main

import (
	"fmt"
	"io"

	"github.com/bitrise-io/go-utils/v2/log"
)

// Log levels of --loglevel.
const (
	levelError = iota
	levelWarn
	levelInfo
	levelDebug
)

// leveledLogger drops messages above the configured level. After redirect, messages are
// written as plain lines to the given writer instead of the underlying Logger.
type leveledLogger struct {
	log.Logger
	level int
	out   io.Writer
}

func newLeveledLogger(logger log.Logger) *leveledLogger {
	return &leveledLogger{Logger: logger, level: levelInfo}
}

func (l *leveledLogger) setLevel(level int) {
	l.level = level
	l.Logger.EnableDebugLog(level >= levelDebug)
}

func (l *leveledLogger) redirect(out io.Writer) {
	l.out = out
}

func (l *leveledLogger) write(level int, emit func(format string, v ...interface{}), format string, v ...interface{}) {
	if l.level < level {
		return
	}
	if l.out != nil {
		fmt.Fprintf(l.out, format+"\n", v...)
		return
	}
	emit(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.write(levelError, l.Logger.Errorf, format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.write(levelWarn, l.Logger.Warnf, format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.write(levelInfo, l.Logger.Infof, format, v...)
}

func (l *leveledLogger) Printf(format string, v ...interface{}) {
	l.write(levelInfo, l.Logger.Printf, format, v...)
}

func (l *leveledLogger) Donef(format string, v ...interface{}) {
	l.write(levelInfo, l.Logger.Donef, format, v...)
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.write(levelDebug, l.Logger.Debugf, format, v...)
}

func (l *leveledLogger) Println() {
	if l.level < levelInfo {
		return
	}
	if l.out != nil {
		fmt.Fprintln(l.out)
		return
	}
	l.Logger.Println()
}
