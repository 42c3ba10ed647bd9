package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/chazu/mechtrainer/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(config.Log{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("module", "REDUCER").Warn("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "REDUCER", entry["module"])
	assert.Equal(t, "warning", entry["level"])
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(config.Log{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)

	log.WithField("part", "bolt_1").Info("removed")
	assert.Contains(t, buf.String(), "msg=removed")
	assert.Contains(t, buf.String(), "part=bolt_1")
}

func TestErrors(t *testing.T) {
	_, err := NewWithOutput(config.Log{Level: "loud", Format: "text"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "log level")

	_, err = NewWithOutput(config.Log{Level: "info", Format: "xml"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "log format")
}
