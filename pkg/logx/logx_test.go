package logx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfof_WritesMessage(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)

	Infof("stored %d objects", 3)

	assert.Contains(t, buf.String(), "stored 3 objects")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	Info("hidden")
	Warn("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestWith_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	defer SetLevel(LevelInfo)

	With("subject_id", "12345", "attempt", 2).Debugf("rasterizing")

	out := buf.String()
	assert.Contains(t, out, `"subject_id":"12345"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, "rasterizing")
}

func TestInit_FileAndInvalidLevel(t *testing.T) {
	Init(Config{
		File:       filepath.Join(t.TempDir(), "hojavida.log"),
		Level:      "invalid",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	Info("hello")
	Warnf("percent %s", "ok")
	Error("error")
}
