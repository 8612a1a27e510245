package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf, "warn")
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := New(&bytes.Buffer{}, "loud")
	assert.Equal(t, log.InfoLevel, l.GetLevel())

	l = New(&bytes.Buffer{}, "")
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.Equal(t, log.FatalLevel, l.GetLevel())
}
