package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type LogLevel int

const (
	NOTSET LogLevel = iota
	DEBUG
	INFO
	NOTICE
	WARNING
	ERROR
)

func AllLevels() []LogLevel {
	return []LogLevel{
		NOTSET,
		DEBUG,
		INFO,
		NOTICE,
		WARNING,
		ERROR,
	}
}

func (l LogLevel) String() string {
	return [...]string{"NOTSET", "DEBUG", "INFO", "NOTICE", "WARNING", "ERROR"}[l]
}

func (l LogLevel) EnumIndex() int {
	return int(l)
}

type Logger interface {
	Errorf(level LogLevel, format string, a ...any)
	SetErrorLevel(level LogLevel)
}

func NewLogger(appName string, errStream io.Writer) Logger {
	return NewLoggerWithLevel(appName, errStream, NOTSET)
}

func NewLoggerWithLevel(appName string, errStream io.Writer, level LogLevel) Logger {
	return &logger{
		appName:    appName,
		errStream:  errStream,
		errorLevel: level,
	}
}

type logger struct {
	appName    string
	errStream  io.Writer
	errorLevel LogLevel
}

type printFunc func(w io.Writer, a ...interface{})

var levelOutput = map[LogLevel]printFunc{
	NOTICE:  color.New(color.FgCyan, color.Faint).FprintlnFunc(),
	WARNING: color.New(color.FgYellow, color.Faint).FprintlnFunc(),
	ERROR:   color.New(color.FgRed, color.Faint).FprintlnFunc(),
}

var defaultOutput = color.New(color.FgWhite, color.Faint).FprintlnFunc()

// SetErrorLevel implements Logger.
func (l *logger) SetErrorLevel(level LogLevel) {
	l.errorLevel = level
}

// Errorf implements Logger.
func (l *logger) Errorf(level LogLevel, format string, a ...any) {
	if level < l.errorLevel {
		return
	}
	fn, ok := levelOutput[level]
	if !ok {
		fn = defaultOutput
	}
	fn(
		l.errStream,
		l.appName,
		level.String(),
		strings.TrimSpace(fmt.Sprintf(format, a...)),
	)
}
