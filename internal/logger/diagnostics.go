package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Diagnostics reports recoverable content problems such as malformed faces
// or items without bump commands. Keys passed to WarnOnce are remembered,
// so a problem hit every frame is logged a single time.
type Diagnostics struct {
	log *zap.Logger

	mu   sync.Mutex
	seen map[string]int
}

// NewDiagnostics creates a sink writing to log. A nil log discards output.
func NewDiagnostics(log *zap.Logger) *Diagnostics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Diagnostics{log: log, seen: make(map[string]int)}
}

// Warn logs every time it is called.
func (d *Diagnostics) Warn(msg string, fields ...zap.Field) {
	d.log.Warn(msg, fields...)
}

// Debug logs every time it is called.
func (d *Diagnostics) Debug(msg string, fields ...zap.Field) {
	d.log.Debug(msg, fields...)
}

// WarnOnce logs the first occurrence of key and counts the rest.
func (d *Diagnostics) WarnOnce(key, msg string, fields ...zap.Field) {
	if d.mark(key) {
		d.log.Warn(msg, append(fields, zap.String("diag_key", key))...)
	}
}

// DebugOnce is WarnOnce at debug level.
func (d *Diagnostics) DebugOnce(key, msg string, fields ...zap.Field) {
	if d.mark(key) {
		d.log.Debug(msg, append(fields, zap.String("diag_key", key))...)
	}
}

func (d *Diagnostics) mark(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[key]++
	return d.seen[key] == 1
}

// Count returns how many times key was reported.
func (d *Diagnostics) Count(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[key]
}

// Reset forgets every key.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.seen)
}
