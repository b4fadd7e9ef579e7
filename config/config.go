package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	Debug          bool

	MaxConcurrency   int
	SearchTimeoutSec int
	MaxRetries       int
	MaxItemsPerPage  int
	RateLimitMs      int
	RenderTimeoutSec int
	DetailTimeoutSec int

	ChromeBin string

	InfoAutoBaseURL  string
	InfoAutoUser     string
	InfoAutoPassword string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"https://www.fineschiweb.com.ar",
			"https://www.fineschiweb.com.ar/app"),
		Debug: getEnv("DEBUG", "") != "",

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		SearchTimeoutSec: getEnvInt("SEARCH_TIMEOUT_SEC", 180),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		MaxItemsPerPage:  getEnvInt("MAX_ITEMS_PER_PAGE", 15),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 2000),
		RenderTimeoutSec: getEnvInt("RENDER_TIMEOUT_SEC", 120),
		DetailTimeoutSec: getEnvInt("DETAIL_TIMEOUT_SEC", 30),

		ChromeBin: getEnv("CHROME_BIN", ""),

		InfoAutoBaseURL:  getEnv("INFOAUTO_BASE_URL", "https://demo.api.infoauto.com.ar/cars"),
		InfoAutoUser:     getEnv("INFOAUTO_USER", ""),
		InfoAutoPassword: getEnv("INFOAUTO_PASSWORD", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback ...string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
