// Package debug writes diagnostic output to stderr when PITGRAPH_DEBUG is set:
//
//	PITGRAPH_DEBUG=1 pitgraph explore
//
// With the variable unset every function here returns immediately.
package debug

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// EnvVar enables debug output when non-empty.
const EnvVar = "PITGRAPH_DEBUG"

const prefix = "[pitgraph] "

var (
	mu      sync.RWMutex
	enabled bool
	logger  = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
)

func init() {
	enabled = os.Getenv(EnvVar) != ""
}

func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled overrides the environment setting.
func SetEnabled(e bool) {
	mu.Lock()
	enabled = e
	mu.Unlock()
}

// SetOutput redirects debug output, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := logger.Writer()
	logger.SetOutput(w)
	return prev
}

// Log is printf-style.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Printf(format, args...)
}

func LogIf(cond bool, format string, args ...any) {
	if cond {
		Log(format, args...)
	}
}

func LogTiming(name string, d time.Duration) {
	Log("%s took %v", name, d)
}

// LogEnterExit logs entry immediately and exit with elapsed time when the
// returned function runs:
//
//	defer debug.LogEnterExit("graph.Build")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its dynamic type.
func Dump(name string, v any) {
	Log("%s: %T = %+v", name, v, v)
}

func Section(name string) {
	Log("=== %s ===", name)
}
