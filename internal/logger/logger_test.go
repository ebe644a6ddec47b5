package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		log       func(l *slog.Logger)
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "text logger info level",
			config: Config{Level: "info", Format: "text"},
			log:    func(l *slog.Logger) { l.Info("file analyzed", "file", "app.py") },
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="file analyzed"`)
				assert.Contains(t, output, "file=app.py")
			},
		},
		{
			name:   "json logger debug level",
			config: Config{Level: "debug", Format: "json"},
			log:    func(l *slog.Logger) { l.Debug("file analyzed", "severity", "High") },
			checkFunc: func(t *testing.T, output string) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &entry))
				assert.Equal(t, "DEBUG", entry["level"])
				assert.Equal(t, "file analyzed", entry["msg"])
				assert.Equal(t, "High", entry["severity"])
			},
		},
		{
			name:   "debug suppressed at warn level",
			config: Config{Level: "warn", Format: "text"},
			log:    func(l *slog.Logger) { l.Debug("hidden") },
			checkFunc: func(t *testing.T, output string) {
				assert.Empty(t, output)
			},
		},
		{
			name:   "unknown level falls back to info",
			config: Config{Level: "loud", Format: "JSON"},
			log: func(l *slog.Logger) {
				l.Debug("hidden")
				l.Info("shown")
			},
			checkFunc: func(t *testing.T, output string) {
				assert.NotContains(t, output, "hidden")
				assert.Contains(t, output, `"msg":"shown"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewLogger(tt.config, &buf))
			tt.checkFunc(t, buf.String())
		})
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.log")
	l := NewLogger(Config{Level: "info", Format: "text", Output: path}, nil)
	l.Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
