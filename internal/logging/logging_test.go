package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFallbackWriter(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Level: "warn", Fallback: &buf})
	require.NoError(t, err)
	defer closer.Close()

	For("test").Info("hidden")
	For("test").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=test")
}

func TestSetupVerboseWinsOverLevel(t *testing.T) {
	var buf bytes.Buffer
	_, err := Setup(Options{Level: "error", Verbose: true, Fallback: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetupBadLevelDefaultsToInfo(t *testing.T) {
	_, err := Setup(Options{Level: "chatty", Fallback: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestSetupFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pdfchat.log")
	closer, err := Setup(Options{File: path, Level: "info"})
	require.NoError(t, err)

	For("session").WithField("document_id", "d1").Info("document uploaded")
	require.NoError(t, closer.Close())
	logrus.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "document uploaded", line["message"])
	assert.Equal(t, "session", line["component"])
	assert.Equal(t, "d1", line["document_id"])
	assert.Contains(t, line, "timestamp")
}
