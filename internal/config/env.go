package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment holds CLI defaults read from the process environment
type Environment struct {
	ConfigPath string // PLANNER_CONFIG
	Format     string // PLANNER_FORMAT
	OutputDir  string // PLANNER_OUTPUT_DIR
	LogLevel   string // PLANNER_LOG_LEVEL
	LogPretty  bool   // PLANNER_LOG_PRETTY
}

// LoadEnvironment reads the PLANNER_* variables, loading the given .env files
// first when they exist. Variables already set in the process win.
func LoadEnvironment(envFiles ...string) Environment {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return Environment{
		ConfigPath: getEnv("PLANNER_CONFIG", "portfolio.yaml"),
		Format:     getEnv("PLANNER_FORMAT", "console"),
		OutputDir:  getEnv("PLANNER_OUTPUT_DIR", ""),
		LogLevel:   getEnv("PLANNER_LOG_LEVEL", "warn"),
		LogPretty:  getEnvAsBool("PLANNER_LOG_PRETTY", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
