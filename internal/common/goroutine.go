package common

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ternarybob/arbor"
)

// SafeGo runs fn in a goroutine and recovers from panics, logging them
// with a stack trace instead of crashing the process.
//
// Example:
//
//	common.SafeGo(logger, "broadcastAnalysis", func() {
//	    publisher.Publish(event)
//	})
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	go func() {
		defer RecoverPanic(logger, name)
		fn()
	}()
}

// RecoverPanic logs a recovered panic. It must be called directly via defer.
func RecoverPanic(logger arbor.ILogger, name string) {
	r := recover()
	if r == nil {
		return
	}

	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)

	if logger != nil {
		logger.Error().
			Str("goroutine", name).
			Str("panic", fmt.Sprintf("%v", r)).
			Str("stack", string(buf[:n])).
			Msg("Recovered from panic in goroutine")
		return
	}
	fmt.Fprintf(os.Stderr, "PANIC in goroutine %s: %v\n%s\n", name, r, buf[:n])
}
