package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugSilentByDefault(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestVerboseOutput(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("value %d", 42)
	Info("loaded %s", "doc")
	Warn("slow")
	Section("Ingestion")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] value 42")
	assert.Contains(t, out, "[INFO] loaded doc")
	assert.Contains(t, out, "[WARN] slow")
	assert.Contains(t, out, "=== Ingestion ===")
}

func TestErrorAlwaysPrinted(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Error("boom: %v", "cause")
	assert.Contains(t, buf.String(), "[ERROR] boom: cause")
}

func TestIsVerbose(t *testing.T) {
	defer resetLogger()

	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}
