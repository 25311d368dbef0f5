package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := FromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "restock", cfg.Database.DBName)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.RestockTTLSeconds)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, 1, cfg.Forecast.NoiseMin)
	assert.Equal(t, 8, cfg.Forecast.NoiseMax)
	assert.Equal(t, int64(0), cfg.Forecast.NoiseSeed)
	assert.Equal(t, 1, cfg.Forecast.FeatureWorkers)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 720, cfg.Auth.TokenTTL)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("FORECAST_NOISE_SEED", 42)
	v.Set("FORECAST_FEATURE_WORKERS", 4)
	v.Set("CACHE_ENABLED", true)
	v.Set("STORAGE_BUCKET", "artifacts")
	v.Set("AUTH_JWT_SECRET", "s3cret")

	cfg := FromViper(v)

	assert.Equal(t, int64(42), cfg.Forecast.NoiseSeed)
	assert.Equal(t, 4, cfg.Forecast.FeatureWorkers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "artifacts", cfg.Storage.Bucket)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}
