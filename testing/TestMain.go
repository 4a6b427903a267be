// Package testing switches the binaries into test mode when blank-imported by a test package.
package testing

import (
	"os"
	stdtesting "testing"
)

const testModeEnv = "AMAZPEN_TEST_MODE"

// enableTestMode keeps an explicit AMAZPEN_TEST_MODE from the caller's shell.
func enableTestMode() {
	if _, ok := os.LookupEnv(testModeEnv); ok {
		return
	}
	_ = os.Setenv(testModeEnv, "1")
}

func init() {
	enableTestMode()
}

// TestMain lets importers reuse the test-mode setup as their own TestMain.
func TestMain(m *stdtesting.M) {
	enableTestMode()
	os.Exit(m.Run())
}
