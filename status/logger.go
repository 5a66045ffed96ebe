package status

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level")
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           lvl,
	}), nil
}

func LogFileName(now time.Time) string {
	return "log - " + now.Format("Jan-02-2006 - 15-04-05") + ".log"
}

// OpenLogFile creates a new log file named after the start time inside dir.
func OpenLogFile(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, errors.Wrapf(err, "Failed to create log dir")
	}
	f, err := os.Create(filepath.Join(dir, LogFileName(now)))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create log file")
	}
	return f, nil
}
