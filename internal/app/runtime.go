package app

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// testModeEnv makes the binaries exit before dialing Postgres or Redis.
const testModeEnv = "AMAZPEN_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// parseTestMode accepts any strconv.ParseBool spelling. Unknown values mean off.
func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && on
}

// InTestMode reports whether the binaries should skip startup side effects.
func InTestMode() bool {
	testModeOnce.Do(RefreshTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads AMAZPEN_TEST_MODE, for tests that flip it with t.Setenv.
func RefreshTestMode() {
	testMode.Store(parseTestMode(os.Getenv(testModeEnv)))
}
