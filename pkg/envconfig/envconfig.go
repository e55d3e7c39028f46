package envconfig

import (
	"bufio"
	"os"
	"strings"

	"github.com/HA2077/SmartChef/pkg/logger"
)

// GetEnv returns the value of the environment variable or the fallback.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetLogLevel reads LOG_LEVEL into the logger's level type.
func GetLogLevel() logger.LogLevel {
	switch strings.ToLower(GetEnv("LOG_LEVEL", "info")) {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Existing variables are not overridden. Missing file is
// an error the caller may ignore.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
