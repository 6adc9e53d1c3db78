package crashlog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const fileName = "billfold_crash.log"

// Writer appends crash reports to a log file, trying each candidate
// directory in order until one accepts the write. If none does, the report
// still lands in the application log, so a failure is never silent.
type Writer struct {
	dirs []string
}

// New creates a Writer with the given candidate directories. The current
// working directory is always appended as a last resort.
func New(dirs []string) *Writer {
	cwd, err := os.Getwd()
	if err == nil {
		dirs = append(append([]string{}, dirs...), cwd)
	}
	return &Writer{dirs: dirs}
}

// Write records the failure with its source and a stack trace.
func (w *Writer) Write(source string, failure any) {
	report := fmt.Sprintf(
		"\n--- Crash Report: %s (Source: %s) ---\nFailure: %v\nStack Trace:\n%s\n%s\n",
		time.Now().Format(time.RFC3339),
		source,
		failure,
		debug.Stack(),
		strings.Repeat("-", 50),
	)

	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Debugf("crashlog: cannot create %s: %v", dir, err)
			continue
		}
		path := filepath.Join(dir, fileName)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Debugf("crashlog: cannot open %s: %v", path, err)
			continue
		}
		_, err = f.WriteString(report)
		f.Close()
		if err == nil {
			log.Errorf("crash from %s logged to %s: %v", source, path, failure)
			return
		}
		log.Debugf("crashlog: cannot write %s: %v", path, err)
	}

	log.Errorf("crashlog: all candidate directories failed, report follows\n%s", report)
}
