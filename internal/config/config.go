// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"citylibrary/internal/store"
)

const envFile = ".env"

// Config holds the runtime settings of the library program: where the
// catalog files live, how verbose logging is and where telemetry goes.
// An empty OTLP endpoint keeps that signal in process.
type Config struct {
	BookFile            string
	MemberFile          string
	LogLevel            slog.Level
	OTLPTracesEndpoint  string
	OTLPMetricsEndpoint string
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment take precedence over the .env file.
// A missing .env file is fine; one that cannot be parsed is an error.
func Load() (Config, error) {
	return load(envFile)
}

func load(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	return Config{
		BookFile:            getEnv("LIBRARY_BOOK_FILE", store.DefaultBookFile),
		MemberFile:          getEnv("LIBRARY_MEMBER_FILE", store.DefaultMemberFile),
		LogLevel:            parseLevel(getEnv("LIBRARY_LOG_LEVEL", "warn")),
		OTLPTracesEndpoint:  getEnv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
		OTLPMetricsEndpoint: getEnv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
