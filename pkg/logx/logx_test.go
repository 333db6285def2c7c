package logx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebugDomainFiltering(t *testing.T) {
	SetDebug(false, nil)
	assert.False(t, DebugEnabledFor("flow"))

	SetDebug(true, nil)
	assert.True(t, DebugEnabledFor("flow"))
	assert.True(t, DebugEnabledFor("anything"))

	SetDebug(true, []string{"flow", "intent"})
	assert.True(t, DebugEnabledFor("flow"))
	assert.False(t, DebugEnabledFor("pricing"))

	SetDebug(false, nil)
}

func TestRecentFiltersByComponent(t *testing.T) {
	l := NewLogger("logx-test-component")
	l.Info("first entry")
	l.Warn("second entry")
	NewLogger("logx-test-other").Info("unrelated")

	entries := Recent("logx-test-component", time.Time{})
	assert.Len(t, entries, 2)
	assert.Equal(t, "first entry", entries[0].Message)
	assert.Equal(t, string(LevelWarn), entries[1].Level)
}

func TestWrapAndErrorf(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := Errorf("bad value %d", 42)
	assert.EqualError(t, err, "bad value 42")

	wrapped := Wrap(err, "loading config")
	assert.EqualError(t, wrapped, "loading config: bad value 42")
}
