package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Env string `validate:"required,oneof=dev prod"`
	API struct {
		BaseURL string `validate:"required,url"`
		Token   string
	}
	Retry struct {
		MaxRetries   int           `validate:"gte=0"`
		InitialDelay time.Duration `validate:"gt=0"`
		MaxDelay     time.Duration `validate:"gt=0"`
		Multiplier   float64       `validate:"gt=1"`
	}
	Probe struct {
		Schedule string `validate:"required"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getenv("ENV", "prod")
	c.API.BaseURL = getenv("API_BASE_URL", "http://localhost:8080")
	c.API.Token = os.Getenv("API_TOKEN")
	c.Retry.MaxRetries = getint("RETRY_MAX_RETRIES", 3)
	c.Retry.InitialDelay = getdur("RETRY_INITIAL_DELAY", time.Second)
	c.Retry.MaxDelay = getdur("RETRY_MAX_DELAY", 10*time.Second)
	c.Retry.Multiplier = getfloat("RETRY_MULTIPLIER", 2.0)
	c.Probe.Schedule = getenv("PROBE_SCHEDULE", "@every 1m")
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/incuhub.log")

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
