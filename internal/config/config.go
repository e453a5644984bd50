package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/gema-gradebook/internal/grading"
)

// Config holds runtime configuration values for the gradebook service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseDriver   string
	DatabaseURL      string
	RedisURL         string
	GradeCacheTTL    time.Duration
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	CORSOrigins      string
	ImportRateLimit  int
	GradingScale     grading.Scale
	RecomputeOnStart bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AuthEnabled reports whether API routes require a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Gradebook API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "gradebook.sqlite")
	v.SetDefault("grade_cache.ttl", "1m")
	v.SetDefault("nats.subject", "gradebook.grades.recomputed")
	v.SetDefault("import.rate_limit", 30)
	v.SetDefault("cors.origins", "*")
	v.SetDefault("grading.scale", grading.DefaultScale().String())
	v.SetDefault("recompute_on_start", true)

	ttl, err := time.ParseDuration(v.GetString("grade_cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grade cache ttl: %w", err)
	}

	scale, err := grading.ParseScale(v.GetString("grading.scale"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading scale: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseDriver:   strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		GradeCacheTTL:    ttl,
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		JWTSecret:        v.GetString("jwt.secret"),
		CORSOrigins:      v.GetString("cors.origins"),
		ImportRateLimit:  v.GetInt("import.rate_limit"),
		GradingScale:     scale,
		RecomputeOnStart: v.GetBool("recompute_on_start"),
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.ImportRateLimit <= 0 {
		cfg.ImportRateLimit = 30
	}

	return cfg, nil
}
