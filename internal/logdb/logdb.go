// Package logdb provides the captured-text log that debug printing
// writes to during execution. It replaces a process-wide singleton with
// an injected handle, so concurrent pipeline invocations stay
// independent.
package logdb

import (
	"strings"
	"sync"
)

// DefaultFile is the logical name the runner reads when asked to
// include captured debug output in a report.
const DefaultFile = "log_file"

// Log is a set of named text buffers. The zero value is not usable;
// call New.
type Log struct {
	mu    sync.Mutex
	files map[string]*strings.Builder
}

// New returns an empty log.
func New() *Log {
	return &Log{files: make(map[string]*strings.Builder)}
}

// Append adds text to the named buffer, creating it if needed.
func (l *Log) Append(name, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.files[name]
	if !ok {
		b = &strings.Builder{}
		l.files[name] = b
	}
	b.WriteString(text)
}

// FileText returns the accumulated text of the named buffer. Unknown
// names yield the empty string.
func (l *Log) FileText(name string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.files[name]; ok {
		return b.String()
	}
	return ""
}

// Reset discards the named buffer.
func (l *Log) Reset(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, name)
}
