package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// Config holds runtime settings read from the environment
type Config struct {
	Port   string
	DBPath string

	// Blizzard API
	ClientID          string
	ClientSecret      string
	BlizzardAPIURL    string
	BlizzardOAuthURL  string
	RequestsPerMinute int

	// Pipeline
	Regions     []models.Region
	RecipePath  string
	RunInterval time.Duration

	// Response cache
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "./fyralath.db"),
		ClientID:         os.Getenv("CLIENT_ID"),
		ClientSecret:     os.Getenv("CLIENT_SECRET"),
		BlizzardAPIURL:   os.Getenv("BLIZZARD_API_URL"),
		BlizzardOAuthURL: os.Getenv("BLIZZARD_OAUTH_URL"),
		RecipePath:       os.Getenv("RECIPE_PATH"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.Regions, err = models.ParseRegions(getEnv("REGIONS", "us,eu,tw,kr")); err != nil {
		return nil, fmt.Errorf("REGIONS: %w", err)
	}
	if cfg.RunInterval, err = getDuration("RUN_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RedisTTL, err = getDuration("REDIS_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute, err = getInt("SOURCE_REQUESTS_PER_MINUTE", 300); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = getInt("CACHE_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive", key)
	}
	return d, nil
}
