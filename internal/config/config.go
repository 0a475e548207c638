package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort           string
	AppEnv             string
	Logger             LoggerConfig
	SeedFile           string
	TagsCSV            string
	JournalDSN         string
	QuarantineCapacity int
	DefaultLocationID  string
	MissionID          string
	AllowedOrigins     []string
	MaxBodyBytes       int64
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// JournalDisabled is the JOURNAL_DSN value that turns the SQLite journal off.
const JournalDisabled = "off"

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	port := getEnv("HTTP_PORT", "8080")

	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	appEnv := getEnv("APP_ENV", "development")
	encoding := "json"
	level := "info"
	if appEnv == "development" {
		encoding = "console"
		level = "debug"
	}

	return Config{
		HTTPPort: port,
		AppEnv:   appEnv,
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", level),
			Encoding: getEnv("LOG_ENCODING", encoding),
		},
		SeedFile:           getEnv("SEED_FILE", ""),
		TagsCSV:            getEnv("TAGS_CSV", ""),
		JournalDSN:         getEnv("JOURNAL_DSN", "file:journal?mode=memory&cache=shared"),
		QuarantineCapacity: getEnvInt("QUARANTINE_CAPACITY", 200),
		DefaultLocationID:  getEnv("DEFAULT_LOCATION_ID", "LOC-R1"),
		MissionID:          getEnv("MISSION_ID", "MISSION-DEV"),
		AllowedOrigins:     getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 64<<10)),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return i
		}
		log.Printf("invalid %s value %q, defaulting to %d", key, value, fallback)
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		log.Printf("invalid %s value %q, defaulting to %v", key, value, fallback)
		return fallback
	}
	return out
}
