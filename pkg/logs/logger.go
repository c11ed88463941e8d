// Package logs holds the process-wide logrus logger.
package logs

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the global application logger. It writes to stderr so command
// output on stdout stays machine readable.
var Logger = newLogger(os.Stderr)

// Options configure Init.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
	File   string // log file prefix; empty means stderr only

	// Output replaces stderr when set.
	Output io.Writer
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	return l
}

// Init replaces Logger according to opts.
func Init(opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l := newLogger(out)

	switch opts.Level {
	case "trace":
		l.SetLevel(logrus.TraceLevel)
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "", "info":
		l.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	case "fatal":
		l.SetLevel(logrus.FatalLevel)
	default:
		return fmt.Errorf("unknown log level: %s", opts.Level)
	}

	switch opts.Format {
	case "", "text":
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format: %s", opts.Format)
	}

	if opts.File != "" {
		name := fmt.Sprintf("%s_%s.log", opts.File, time.Now().Format("2006-01-02_15-04-05"))
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", name, err)
		}
		l.SetOutput(io.MultiWriter(file, out))
	}

	Logger = l
	return nil
}
