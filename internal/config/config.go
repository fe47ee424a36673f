package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	APIBaseURL     string
	StorageBackend string
	StoragePath    string
	SlotName       string
	RedisAddr      string
	RedisPassword  string
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	AccessToken    string
	ResyncInterval time.Duration
	HTTPTimeout    time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         os.Getenv("APP_ENV"),
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		StoragePath:    getEnv("STORAGE_PATH", "storefront-store.json"),
		SlotName:       getEnv("STORAGE_SLOT", "storefront-store"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         os.Getenv("DB_PORT"),
		AccessToken:    os.Getenv("ACCESS_TOKEN"),
		ResyncInterval: getDuration("RESYNC_INTERVAL", 30*time.Second),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 15*time.Second),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("Environment variables not loaded properly: API_BASE_URL is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
