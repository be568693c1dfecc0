package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries everything the process needs from the environment.
// Missing provider credentials disable the corresponding source with a
// warning; nothing silently substitutes fake data.
type AppConfig struct {
	WeatherAPIKey     string
	OpenWeatherAPIKey string
	EthRPCURL         string
	RedisURL          string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// Cache TTLs in seconds, per category.
	TTLCurrent    int
	TTLForecast   int
	TTLHistorical int

	// Cache warmer: free-text locations refreshed on an interval.
	WarmLocations []string
	WarmInterval  time.Duration

	Port string
}

// Load reads configuration from the environment, with .env support.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		EthRPCURL:         os.Getenv("ETH_RPC_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		Port:              getenvDefault("PORT", "8080"),
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.TTLCurrent = getenvSeconds("CACHE_TTL_CURRENT", 30*60)
	cfg.TTLForecast = getenvSeconds("CACHE_TTL_FORECAST", 2*60*60)
	cfg.TTLHistorical = getenvSeconds("CACHE_TTL_HISTORICAL", 24*60*60)

	warmInterval, err := time.ParseDuration(getenvDefault("WARM_INTERVAL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	cfg.WarmInterval = warmInterval
	cfg.WarmLocations = splitList(os.Getenv("WARM_LOCATIONS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvSeconds(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
		log.Printf("WARN: ignoring invalid %s=%q", key, v)
	}
	return def
}
