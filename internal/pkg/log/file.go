package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// FileLogger - PluggableLoggerInterface implementation that writes every
// entry to a persistent batch log file via logrus. The console logger stays
// clean for progress output while the full mirror transcript lands here.
type FileLogger struct {
	log  *logrus.Logger
	file *os.File
}

// NewFileLogger - opens (truncating) the batch log file at path and returns
// a logger writing to it at debug level.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening batch log %s: %w", path, err)
	}
	l := logrus.New()
	l.SetOutput(f)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return &FileLogger{log: l, file: f}, nil
}

// NewWriterLogger - same as NewFileLogger but against an arbitrary writer.
// Used by tests to capture the transcript in memory.
func NewWriterLogger(w io.Writer) *FileLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	return &FileLogger{log: l}
}

func (c *FileLogger) Error(msg string, val ...interface{}) {
	c.log.Errorf(msg, val...)
}

func (c *FileLogger) Info(msg string, val ...interface{}) {
	c.log.Infof(msg, val...)
}

func (c *FileLogger) Debug(msg string, val ...interface{}) {
	c.log.Debugf(msg, val...)
}

func (c *FileLogger) Trace(msg string, val ...interface{}) {
	c.log.Tracef(msg, val...)
}

func (c *FileLogger) Warn(msg string, val ...interface{}) {
	c.log.Warnf(msg, val...)
}

// Level - override log level
func (c *FileLogger) Level(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.DebugLevel
	}
	c.log.SetLevel(parsed)
}

// Close - flushes and closes the underlying file, if any.
func (c *FileLogger) Close() error {
	if c.file == nil {
		return nil
	}
	return c.file.Close()
}
