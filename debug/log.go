package debug

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger  *logrus.Logger
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

// lineFormatter keeps the "[time] category message" layout of the log file.
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	category, _ := e.Data["category"].(string)
	if category == "" {
		category = "debug"
	}
	fmt.Fprintf(&b, "[%s] %-10s %s\n", e.Time.Format("15:04:05.000"), category, e.Message)
	return b.Bytes(), nil
}

// Enable starts debug logging to ~/.config/go-drummer/debug.log
func Enable() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(homeDir, ".config", "go-drummer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = f
	mu.Unlock()
	EnableTo(f)
	return nil
}

// EnableTo sends the log to w. Used by Enable and by tests.
func EnableTo(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(lineFormatter{})
	l.SetLevel(logrus.DebugLevel)
	logger = l
	enabled = true

	logger.WithField("category", "debug").Info("=== Debug logging started ===")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.WithField("category", category).Debugf(format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
