package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_LevelTags(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, "")

	l.Info("created %v", "a")
	l.Warn("slow")
	l.Error("failed: %v", 3)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "INFO created a")
	require.Contains(t, lines[1], "WARN slow")
	require.Contains(t, lines[2], "ERRO failed: 3")
}

func TestLogger_DebugIsOptIn(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(&out, "")

	l.Debug("hidden")
	require.Empty(t, out.String())

	l.SetDebug(true)
	l.Debug("shown %d", 1)
	require.Contains(t, out.String(), "DEBG shown 1")
}
