package config_test

import (
	"testing"
	"time"

	"notes-app/src/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("デフォルト値でのconfig読み込み", func(t *testing.T) {
		cfg := config.LoadConfig()

		assert.Equal(t, "5000", cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "notes", cfg.Database.MongoDB)
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiresIn)
		assert.Equal(t, 10, cfg.Auth.BcryptCost)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "logs", cfg.Log.Directory)
		assert.False(t, cfg.Log.UploadEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Log.UploadMaxAge)
		assert.Equal(t, "notes-app-logs", cfg.S3.Bucket)
		assert.True(t, cfg.RateLimit.Enabled)
		assert.Equal(t, float64(10), cfg.RateLimit.RPS)
		assert.Equal(t, 20, cfg.RateLimit.Burst)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("環境変数でのconfig上書き", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("DB_DRIVER", "mongo")
		t.Setenv("DB_PORT", "15432")
		t.Setenv("JWT_EXPIRES_IN", "2h")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_UPLOAD_ENABLED", "true")
		t.Setenv("RATE_LIMIT_RPS", "2.5")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://notes.example.com ,")
		t.Setenv("S3_USE_SSL", "true")

		cfg := config.LoadConfig()

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "mongo", cfg.Database.Driver)
		assert.Equal(t, 15432, cfg.Database.Port)
		assert.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiresIn)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.UploadEnabled)
		assert.Equal(t, 2.5, cfg.RateLimit.RPS)
		assert.Equal(t, []string{"http://localhost:5173", "https://notes.example.com"}, cfg.CORS.AllowedOrigins)
		assert.True(t, cfg.S3.UseSSL)
	})

	t.Run("不正な環境変数でのフォールバック", func(t *testing.T) {
		t.Setenv("LOG_UPLOAD_ENABLED", "invalid-bool")
		t.Setenv("LOG_UPLOAD_MAX_AGE", "invalid-duration")
		t.Setenv("DB_PORT", "not-a-number")
		t.Setenv("RATE_LIMIT_RPS", "fast")
		t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

		cfg := config.LoadConfig()

		assert.False(t, cfg.Log.UploadEnabled)
		assert.Equal(t, 24*time.Hour, cfg.Log.UploadMaxAge)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, float64(10), cfg.RateLimit.RPS)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	})
}

func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		config.LoadConfig()
	}
}
