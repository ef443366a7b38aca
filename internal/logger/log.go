package logger

import (
	"log"
	"os"
	"sync"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// Logger is a small leveled logger over the standard library. Each
// component constructs its own with New and a prefix naming it.
type Logger struct {
	level    Level
	mu       sync.Mutex
	debugLog *log.Logger
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
}

func parseLevel(level string) Level {
	switch level {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// New creates a logger for a component. Messages below the given level
// are suppressed.
func New(component, level string) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	tag := func(lvl string) string {
		return "[" + lvl + "] (" + component + ") "
	}

	return &Logger{
		level:    parseLevel(level),
		debugLog: log.New(os.Stderr, tag("DEBUG"), flags),
		infoLog:  log.New(os.Stderr, tag("INFO"), flags),
		warnLog:  log.New(os.Stderr, tag("WARN"), flags),
		errorLog: log.New(os.Stderr, tag("ERROR"), flags),
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= DEBUG {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.debugLog.Printf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level <= INFO {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.infoLog.Printf(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= WARN {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.warnLog.Printf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= ERROR {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.errorLog.Printf(format, args...)
	}
}
