// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Forecast ForecastConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogFormat      string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir string
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	RestockTTLSeconds int
}

// StorageConfig describes the S3-compatible bucket holding model artifacts.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type ForecastConfig struct {
	// ModelPath is a local artifact file. Used when ModelObjectKey is empty.
	ModelPath      string
	ModelObjectKey string
	NoiseMin       int
	NoiseMax       int
	// NoiseSeed of 0 seeds the perturbation source from the clock.
	NoiseSeed      int64
	FeatureWorkers int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.GetViper()
		SetDefaults(v)

		// Read from environment variables
		v.AutomaticEnv()

		instance = FromViper(v)
		ensureDir(instance.App.DataDir)
	})

	return instance
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_LOG_FORMAT", "console")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 60)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "restock")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("APP_DATA_DIR", "./data")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_RESTOCK_TTL_SECONDS", 300)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "models")
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("FORECAST_MODEL_PATH", "./data/models/ridge_daily.json")
	v.SetDefault("FORECAST_MODEL_OBJECT_KEY", "")
	v.SetDefault("FORECAST_NOISE_MIN", 1)
	v.SetDefault("FORECAST_NOISE_MAX", 8)
	v.SetDefault("FORECAST_NOISE_SEED", 0)
	v.SetDefault("FORECAST_FEATURE_WORKERS", 1)
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_ISSUER", "restock-forecast")
	v.SetDefault("AUTH_TOKEN_TTL_MINUTES", 720)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogFormat:      v.GetString("SERVER_LOG_FORMAT"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataDir: v.GetString("APP_DATA_DIR"),
		},
		Cache: CacheConfig{
			Enabled:           v.GetBool("CACHE_ENABLED"),
			RedisURL:          v.GetString("REDIS_URL"),
			RedisHost:         v.GetString("REDIS_HOST"),
			RedisPort:         v.GetString("REDIS_PORT"),
			RedisPassword:     v.GetString("REDIS_PASSWORD"),
			RedisDB:           v.GetInt("REDIS_DB"),
			RestockTTLSeconds: v.GetInt("CACHE_RESTOCK_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Forecast: ForecastConfig{
			ModelPath:      v.GetString("FORECAST_MODEL_PATH"),
			ModelObjectKey: v.GetString("FORECAST_MODEL_OBJECT_KEY"),
			NoiseMin:       v.GetInt("FORECAST_NOISE_MIN"),
			NoiseMax:       v.GetInt("FORECAST_NOISE_MAX"),
			NoiseSeed:      v.GetInt64("FORECAST_NOISE_SEED"),
			FeatureWorkers: v.GetInt("FORECAST_FEATURE_WORKERS"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			Issuer:    v.GetString("AUTH_ISSUER"),
			TokenTTL:  v.GetInt("AUTH_TOKEN_TTL_MINUTES"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
