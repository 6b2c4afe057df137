package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "WATCHSTREAM"

type Config struct {
	Env      string         `mapstructure:"env" validate:"oneof=dev test prod"`
	Server   ServerConfig   `mapstructure:"server"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Quotes   QuotesConfig   `mapstructure:"quotes"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SSM      SSMConfig      `mapstructure:"ssm"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	DebugRoutes       bool          `mapstructure:"debug_routes"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

type StreamConfig struct {
	Heartbeat     time.Duration `mapstructure:"heartbeat" validate:"gt=0"`
	QueueSize     int           `mapstructure:"queue_size" validate:"min=1"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	InitTimeout   time.Duration `mapstructure:"init_timeout" validate:"gte=0"`
	SendConnected bool          `mapstructure:"send_connected"`
}

type IngestConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval" validate:"gt=0"`
	Concurrency    int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout" validate:"gt=0"`
}

type QuotesConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=finnhub alpaca polygon"`
	Finnhub  FinnhubConfig `mapstructure:"finnhub"`
	Alpaca   AlpacaConfig  `mapstructure:"alpaca"`
	Polygon  PolygonConfig `mapstructure:"polygon"`
}

type FinnhubConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type AlpacaConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Feed      string `mapstructure:"feed" validate:"oneof=iex sip"`
	BaseURL   string `mapstructure:"base_url"`
}

type PolygonConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

type StorageConfig struct {
	Driver            string `mapstructure:"driver" validate:"oneof=postgres memory"`
	CorrelationWindow int    `mapstructure:"correlation_window" validate:"min=2"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.debug_routes", false)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("stream.heartbeat", 15*time.Second)
	v.SetDefault("stream.queue_size", 256)
	v.SetDefault("stream.write_timeout", 10*time.Second)
	v.SetDefault("stream.init_timeout", 5*time.Second)
	v.SetDefault("stream.send_connected", false)

	v.SetDefault("ingest.enabled", true)
	v.SetDefault("ingest.interval", 10*time.Second)
	v.SetDefault("ingest.concurrency", 5)
	v.SetDefault("ingest.fetch_timeout", 5*time.Second)
	v.SetDefault("ingest.persist_timeout", 2*time.Second)

	v.SetDefault("quotes.provider", "finnhub")
	v.SetDefault("quotes.finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("quotes.finnhub.api_key", "")
	v.SetDefault("quotes.finnhub.timeout", 10*time.Second)
	v.SetDefault("quotes.alpaca.api_key", "")
	v.SetDefault("quotes.alpaca.api_secret", "")
	v.SetDefault("quotes.alpaca.feed", "iex")
	v.SetDefault("quotes.alpaca.base_url", "")
	v.SetDefault("quotes.polygon.api_key", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.correlation_window", 30)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "watchstream")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("ssm.db_host", "WATCHSTREAM_DB_HOST")
	v.SetDefault("ssm.db_user", "WATCHSTREAM_DB_USER")
	v.SetDefault("ssm.db_password", "WATCHSTREAM_DB_PASSWORD")
	v.SetDefault("ssm.jwt_secret", "WATCHSTREAM_JWT_SECRET")
}

// Load loads application configuration using Viper.
// It reads config.yaml from dir (or next to the executable when dir is
// empty), applies WATCHSTREAM_* environment overrides and validates the
// result. A missing config file is not an error; defaults and environment
// still apply.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		ex, _ := os.Executable()
		if strings.Contains(ex, "go-build") {
			pwd, _ := os.Getwd()
			v.AddConfigPath(filepath.Join(pwd, "../../config"))
		} else {
			v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
		}
		v.AddConfigPath("./config")
	}

	// Support environment variables with dot notation (e.g., WATCHSTREAM_SERVER_ADDR)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Env == "prod" && cfg.Auth.JWTSecret == "" {
		secret, err := parameterLookup(cfg.SSM.JWTSecret, true)
		if err != nil {
			return nil, fmt.Errorf("load jwt secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("invalid config: auth.jwt_secret is required")
	}
	switch c.Quotes.Provider {
	case "finnhub":
		if c.Quotes.Finnhub.APIKey == "" {
			return errors.New("invalid config: quotes.finnhub.api_key is required")
		}
	case "alpaca":
		if c.Quotes.Alpaca.APIKey == "" || c.Quotes.Alpaca.APISecret == "" {
			return errors.New("invalid config: quotes.alpaca.api_key and api_secret are required")
		}
	case "polygon":
		if c.Quotes.Polygon.APIKey == "" {
			return errors.New("invalid config: quotes.polygon.api_key is required")
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("invalid config: redis.addr is required when redis is enabled")
	}
	return nil
}
