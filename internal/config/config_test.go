package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LIBRARY_BOOK_FILE",
		"LIBRARY_MEMBER_FILE",
		"LIBRARY_LOG_LEVEL",
		"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT",
		"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "books.txt", cfg.BookFile)
	assert.Equal(t, "members.txt", cfg.MemberFile)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Empty(t, cfg.OTLPTracesEndpoint)
	assert.Empty(t, cfg.OTLPMetricsEndpoint)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LIBRARY_BOOK_FILE", "/tmp/b.txt")
	t.Setenv("LIBRARY_MEMBER_FILE", "/tmp/m.txt")
	t.Setenv("LIBRARY_LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "http://localhost:4318/v1/traces")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "http://localhost:4318/v1/metrics")

	cfg, err := load(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/b.txt", cfg.BookFile)
	assert.Equal(t, "/tmp/m.txt", cfg.MemberFile)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "http://localhost:4318/v1/traces", cfg.OTLPTracesEndpoint)
	assert.Equal(t, "http://localhost:4318/v1/metrics", cfg.OTLPMetricsEndpoint)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are unset.
	require.NoError(t, os.Unsetenv("LIBRARY_BOOK_FILE"))
	path := writeEnvFile(t, "LIBRARY_BOOK_FILE=/data/books.txt\n")
	t.Cleanup(func() { os.Unsetenv("LIBRARY_BOOK_FILE") })

	cfg, err := load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/books.txt", cfg.BookFile)
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "LIBRARY-BOOK-FILE=/data/books.txt\n")

	_, err := load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"error", slog.LevelError},
		{"warn", slog.LevelWarn},
		{"loud", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}
