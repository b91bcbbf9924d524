package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("", false))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN", false))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error ", false))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty", false))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("error", true))
}

func TestNew_ConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn := New(Options{Level: zerolog.InfoLevel, NoColor: true, Console: &buf})
	defer closeFn()

	log.Debug().Msg("hidden detail")
	log.Info().Msg("stage one")
	log.Warn().Str("host", "a.example.com").Msg("trouble")

	out := buf.String()
	assert.NotContains(t, out, "hidden detail")
	assert.Contains(t, out, "stage one")
	assert.Contains(t, out, "trouble")
	assert.Contains(t, out, "host=a.example.com")
	assert.NotContains(t, out, "\x1b[", "NoColor must not emit escape codes")
}

func TestNew_FileGetsJSON(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "hostprobe.log")

	log, closeFn := New(Options{
		Level:        zerolog.DebugLevel,
		ConsoleLevel: zerolog.ErrorLevel,
		NoColor:      true,
		Console:      &console,
		File:         path,
	})

	log.Debug().Str("reason", "NXDOMAIN").Msg("unresolved")
	log.Info().Msg("done")
	require.NoError(t, closeFn())

	assert.Empty(t, console.String(), "console is filtered at error level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "NXDOMAIN", first["reason"])
	assert.Equal(t, "unresolved", first["message"])
}
