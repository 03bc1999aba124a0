// Package applog provides the process-wide file+stderr logger: one
// buffered file handle behind a mutex, opened lazily on first use so a
// library caller that never logs never touches the filesystem.
package applog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"station/internal/cli/embedded"
)

// Logger writes timestamped lines to a log file under the app data
// directory and mirrors them to stderr.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

var (
	singleton *Logger
	once      sync.Once
)

// Get returns the process-wide Logger, opening its log file on first
// call.
func Get() *Logger {
	once.Do(func() {
		singleton = &Logger{}
		singleton.init()
	})
	return singleton
}

func (l *Logger) init() {
	appDir, err := embedded.GetAppDataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "applog: could not resolve app data dir: %v\n", err)
		return
	}

	logDir := filepath.Join(appDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "applog: could not create log directory: %v\n", err)
		return
	}

	name := fmt.Sprintf("station_%s.log", time.Now().Format("20060102_150405"))
	path := filepath.Join(logDir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "applog: could not open log file: %v\n", err)
		return
	}

	l.file = file
	l.writer = bufio.NewWriter(file)
	l.path = path
	fmt.Fprintf(os.Stderr, "station logs: %s\n", path)
}

// Path returns the log file path, or "" if the logger failed to open one.
func (l *Logger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Printf formats and writes one log line, timestamped, to the file (if
// open) and to stderr.
func (l *Logger) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), msg)

	fmt.Fprint(os.Stderr, line)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return
	}
	l.writer.WriteString(line)
	l.writer.Flush()
}

// Close flushes and closes the log file.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		l.writer.Flush()
	}
	if l.file != nil {
		l.file.Close()
	}
}
