package config

import "time"

// Config is the full runtime configuration of the API and the receipt worker.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Requests per second allowed on the LLM-backed endpoints.
	LLMRateLimit float64 `mapstructure:"llm_rate_limit"`
	LLMRateBurst int     `mapstructure:"llm_rate_burst"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Language    string        `mapstructure:"language"`
	AnalysisTTL time.Duration `mapstructure:"analysis_ttl"`
}

type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type ReceiptConfig struct {
	// WorkerEnabled runs the receipt worker inside the API process.
	WorkerEnabled bool          `mapstructure:"worker_enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	// OCREngine is "llm" (image sent to the model) or "tesseract".
	OCREngine string `mapstructure:"ocr_engine"`
	MaxUpload int64  `mapstructure:"max_upload"`
}

type CatalogConfig struct {
	// Path to an external catalog YAML. Empty uses the embedded catalog.
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageEnabled reports whether object storage credentials are configured.
func (c StorageConfig) StorageEnabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}
