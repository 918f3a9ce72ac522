package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingSetting = errors.New("missing required setting")

// legacy env names still honoured next to the APP-style keys.
var envAliases = map[string][]string{
	"auth.jwt_secret":         {"JWT_SECRET"},
	"database.url":            {"DATABASE_URL"},
	"redis.address":           {"REDIS_ADDR", "REDIS_URL"},
	"llm.api_key":             {"GEMINI_API_KEY"},
	"llm.model":               {"GEMINI_MODEL"},
	"storage.endpoint":        {"R2_ENDPOINT"},
	"storage.access_key":      {"R2_ACCESS_KEY"},
	"storage.secret_key":      {"R2_SECRET_KEY"},
	"storage.bucket":          {"R2_BUCKET_NAME"},
	"storage.public_base_url": {"R2_PUBLIC_BASE_URL"},
	"app.env":                 {"APP_ENV"},
}

// Load reads configuration from an optional YAML file and the environment.
// When path is empty, config.yaml is looked up in ./configs and the working
// directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		args := append([]string{key, strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000", "capacitor://localhost", "http://localhost"})
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.llm_rate_limit", 2.0)
	v.SetDefault("http.llm_rate_burst", 5)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.language", "fr")
	v.SetDefault("llm.analysis_ttl", 10*time.Minute)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("receipt.worker_enabled", true)
	v.SetDefault("receipt.poll_interval", 2*time.Second)
	v.SetDefault("receipt.ocr_engine", "llm")
	v.SetDefault("receipt.max_upload", 10<<20)

	v.SetDefault("catalog.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate fails fast on settings the process cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET", ErrMissingSetting)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingSetting)
	}
	switch c.Receipt.OCREngine {
	case "llm", "tesseract":
	default:
		return fmt.Errorf("receipt.ocr_engine must be llm or tesseract, got %q", c.Receipt.OCREngine)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
