package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv               string
	HTTPAddr             string
	MetricsAddr          string
	LogLevel             string
	CORSOrigins          []string
	CORSCredentials      bool
	GuideServiceURL      string
	RestaurantServiceURL string
	UpstreamTimeout      time.Duration
	UpstreamRetries      int
	UpstreamRPS          int
	FanoutLimit          int
	RequestTimeout       time.Duration
	ShutdownGrace        time.Duration
}

// Load reads the environment. Outside production a .env file in the working
// directory is loaded first; variables already set win over it.
func Load() Config {
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err == nil {
			log.Debug().Msg("loaded .env")
		}
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer config value")
		}
		return def
	}
	seconds := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Second
	}

	c := Config{
		AppEnv:               env("ENV", "development"),
		HTTPAddr:             ":" + env("PORT", "3001"),
		MetricsAddr:          env("METRICS_ADDR", ""),
		LogLevel:             env("LOG_LEVEL", ""),
		CORSOrigins:          parseList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		CORSCredentials:      boolean("CORS_CREDENTIALS", true),
		GuideServiceURL:      env("GUIDE_SERVICE_URL", "http://localhost:8888"),
		RestaurantServiceURL: env("RESTAURANT_SERVICE_URL", "http://localhost:9999"),
		UpstreamTimeout:      seconds("UPSTREAM_TIMEOUT_SECONDS", 10),
		UpstreamRetries:      atoi("UPSTREAM_MAX_RETRIES", 0),
		UpstreamRPS:          atoi("UPSTREAM_RPS", 0),
		FanoutLimit:          atoi("FANOUT_LIMIT", 0),
		RequestTimeout:       seconds("REQUEST_TIMEOUT_SECONDS", 0),
		ShutdownGrace:        seconds("SHUTDOWN_GRACE_SECONDS", 10),
	}
	return c
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// boolean is true only for the literal "true" once the key is set.
func boolean(k string, def bool) bool {
	v, ok := os.LookupEnv(k)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v) == "true"
}

func parseList(k string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return def
	}
	return values
}
