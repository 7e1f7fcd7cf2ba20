package tools

import (
	"github.com/fetchd/fetchd/internal/log"
)

// testLogger returns a no-op logger for testing.
func testLogger() log.Logger {
	return log.NewNop()
}
