// Package config provides configuration for the autopilot engine.
package config

import (
	"os"
	"strconv"
)

// Config holds the engine configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Tick loop
	TickRateHz int

	// Spatial query cache
	NavCacheSize      int
	NavCacheTolerance float64

	// Recorder
	RecordingIntervalMs int
	RecordingBufferSize int
	MovementThreshold   float64
	RotationThreshold   float64

	// Simulated world
	MapName string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:         getEnv("DATABASE_URL", "file:autopilot.db?cache=shared&mode=rwc"),
		TickRateHz:          getEnvInt("TICK_RATE_HZ", 30),
		NavCacheSize:        getEnvInt("NAV_CACHE_SIZE", 128),
		NavCacheTolerance:   getEnvFloat("NAV_CACHE_TOLERANCE", 100.0),
		RecordingIntervalMs: getEnvInt("RECORDING_INTERVAL_MS", 100),
		RecordingBufferSize: getEnvInt("RECORDING_BUFFER_SIZE", 10000),
		MovementThreshold:   getEnvFloat("MOVEMENT_THRESHOLD", 10.0),
		RotationThreshold:   getEnvFloat("ROTATION_THRESHOLD", 1.0),
		MapName:             getEnv("MAP_NAME", "Default"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}
