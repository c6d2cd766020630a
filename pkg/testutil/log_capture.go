// Package testutil holds helpers shared by the kubedeps package tests:
// log capture around pkg/log and canned Kubernetes manifests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/lucas-albers-lz4/kubedeps/pkg/log"
	"github.com/stretchr/testify/assert"
)

// mutex serialises tests that swap the global log writer.
var mutex sync.Mutex

// CaptureLogOutput runs testFunc with log output redirected to a buffer at the given level,
// then restores the previous writer and level. A panic in testFunc is returned as an error.
//
//	output, err := testutil.CaptureLogOutput(log.LevelDebug, func() {
//	    log.Info("This will be captured")
//	})
func CaptureLogOutput(logLevel log.Level, testFunc func()) (string, error) {
	mutex.Lock()
	defer mutex.Unlock()

	originalLevel := log.CurrentLevel()
	var logBuf bytes.Buffer
	restoreLog := log.SetOutput(&logBuf)
	defer restoreLog()

	log.SetLevel(logLevel)
	defer log.SetLevel(originalLevel)

	var panicErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = fmt.Errorf("panic during log capture: %v", r)
			}
		}()
		testFunc()
	}()

	return logBuf.String(), panicErr
}

// CaptureJSONLogs is CaptureLogOutput with the JSON handler forced on and every line decoded.
func CaptureJSONLogs(logLevel log.Level, testFunc func()) (logOutput string, parsedLogs []map[string]any, err error) {
	log.SetFormat(log.FormatJSON)
	log.SetTestModeWithTimestamps(true)
	defer log.SetTestModeWithTimestamps(false)

	logOutput, err = CaptureLogOutput(logLevel, testFunc)
	if err != nil {
		return logOutput, nil, err
	}

	for i, line := range strings.Split(strings.TrimSpace(logOutput), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if unmarshalErr := json.Unmarshal([]byte(line), &entry); unmarshalErr != nil {
			return logOutput, parsedLogs, fmt.Errorf("failed to unmarshal log line %d as JSON: %w\nLine content: %s", i+1, unmarshalErr, line)
		}
		parsedLogs = append(parsedLogs, entry)
	}
	return logOutput, parsedLogs, nil
}

// SuppressLogging discards all log output until the returned function is called.
func SuppressLogging() func() {
	mutex.Lock()
	defer mutex.Unlock()
	return log.SetOutput(io.Discard)
}

// UseTestLogger buffers log output for the duration of t and prints it only when t fails.
func UseTestLogger(t *testing.T) {
	t.Helper()
	if testing.Verbose() {
		return
	}

	mutex.Lock()
	var logBuf bytes.Buffer
	restore := log.SetOutput(&logBuf)
	mutex.Unlock()

	t.Cleanup(func() {
		mutex.Lock()
		restore()
		mutex.Unlock()
		if t.Failed() {
			t.Logf("Log output captured during test:\n%s", logBuf.String())
		}
	})
}

// AssertLogContainsJSON fails t unless some entry in logs carries every key/value of expected.
func AssertLogContainsJSON(t *testing.T, logs []map[string]any, expected map[string]any) {
	t.Helper()
	for _, entry := range logs {
		if containsAll(entry, expected) {
			return
		}
	}

	var logBuffer bytes.Buffer
	encoder := json.NewEncoder(&logBuffer)
	encoder.SetIndent("", "  ")
	for _, entry := range logs {
		_ = encoder.Encode(entry) //nolint:errcheck // test helper
	}
	expectedJSON, _ := json.MarshalIndent(expected, "", "  ") //nolint:errcheck // test helper
	assert.Fail(t, "Expected log entry not found",
		"Expected log containing:\n%s\n\nActual captured logs:\n%s", string(expectedJSON), logBuffer.String())
}

// containsAll compares top-level fields only; JSON numbers are float64 so ints are widened.
func containsAll(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok {
			return false
		}
		if f, isFloat := got.(float64); isFloat {
			switch w := want.(type) {
			case int:
				if f != float64(w) {
					return false
				}
				continue
			case int64:
				if f != float64(w) {
					return false
				}
				continue
			}
		}
		if got != want {
			return false
		}
	}
	return true
}
