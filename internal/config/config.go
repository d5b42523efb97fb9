package config

import (
	"os"
	"strconv"
)

// Config holds all runtime settings, loaded from the environment.
type Config struct {
	Env          string
	Port         string
	DatabaseURL  string
	JWTSecret    string
	RedisAddr    string
	KafkaBrokers string
	KafkaTopic   string
	UploadDir    string
	UploadMaxMB  int
	CORSOrigins  string
}

func Load() *Config {
	return &Config{
		Env:          getEnv("ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "skillswap-notifications"),
		UploadDir:    getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxMB:  getEnvInt("UPLOAD_MAX_MB", 10),
		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UploadMaxBytes is the hard ceiling for chat file attachments.
func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
