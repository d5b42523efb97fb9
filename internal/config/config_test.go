package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "skillswap-notifications", cfg.KafkaTopic)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, 10, cfg.UploadMaxMB)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("UPLOAD_MAX_MB", "25")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 25, cfg.UploadMaxMB)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.IsProduction())
}

func TestUploadMaxBytes(t *testing.T) {
	cfg := &Config{UploadMaxMB: 10}
	assert.Equal(t, int64(10*1024*1024), cfg.UploadMaxBytes())
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("UPLOAD_MAX_MB", "lots")
	cfg := Load()
	assert.Equal(t, 10, cfg.UploadMaxMB)
}
