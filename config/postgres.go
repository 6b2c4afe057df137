package config

import (
	"fmt"
	"time"
)

// PostgresConfig defines the configuration for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gt=0"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SSMConfig names the Parameter Store entries read in prod.
type SSMConfig struct {
	DBHost     string `mapstructure:"db_host"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	JWTSecret  string `mapstructure:"jwt_secret"`
}

// DSN builds the connection string. In prod the host and credentials come
// from Parameter Store instead of the config file.
func (cfg *PostgresConfig) DSN(env string, params SSMConfig) (string, error) {
	host, user, password := cfg.Host, cfg.User, cfg.Password

	if env == "prod" {
		var err error
		if host, err = parameterLookup(params.DBHost, true); err != nil {
			return "", fmt.Errorf("db host: %w", err)
		}
		if user, err = parameterLookup(params.DBUser, true); err != nil {
			return "", fmt.Errorf("db user: %w", err)
		}
		if password, err = parameterLookup(params.DBPassword, true); err != nil {
			return "", fmt.Errorf("db password: %w", err)
		}
	}

	return cfg.dsnFor(host, user, password, cfg.DBName), nil
}

// AdminDSN points at the maintenance database, used to create DBName.
func (cfg *PostgresConfig) AdminDSN() string {
	return cfg.dsnFor(cfg.Host, cfg.User, cfg.Password, "postgres")
}

func (cfg *PostgresConfig) dsnFor(host, user, password, dbname string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, dbname, cfg.SSLMode,
	)

	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}

	return dsn
}
