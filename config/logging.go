package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogWriter returns the destination for application logs. File output rotates through
// lumberjack; the returned closer releases the file and is a no-op for stdout.
func (c LoggingConfig) LogWriter() (io.Writer, func() error) {
	return c.writer(c.FilePath)
}

// AccessLogWriter returns the destination for the HTTP access log, which shares the application
// log unless a dedicated path is configured
func (c LoggingConfig) AccessLogWriter() (io.Writer, func() error) {
	if c.AccessLogPath == "" {
		return c.LogWriter()
	}
	rotator := c.rotator(c.AccessLogPath)
	return rotator, rotator.Close
}

// NewLogger builds a standard logger writing to LogWriter
func (c LoggingConfig) NewLogger(prefix string) (*log.Logger, func() error) {
	w, closeFn := c.LogWriter()
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC), closeFn
}

func (c LoggingConfig) writer(path string) (io.Writer, func() error) {
	switch c.Output {
	case "file":
		rotator := c.rotator(path)
		return rotator, rotator.Close
	case "both":
		rotator := c.rotator(path)
		return io.MultiWriter(os.Stdout, rotator), rotator.Close
	default:
		return os.Stdout, func() error { return nil }
	}
}

func (c LoggingConfig) rotator(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}
