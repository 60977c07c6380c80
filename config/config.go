package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type DatabaseConfig struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	LogQueries      bool
}

type TxConfig struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// BootstrapAdmin is created at startup when no admin with the username exists.
type BootstrapAdmin struct {
	Username string
	Password string
	Name     string
	Email    string
}

type RateConfig struct {
	Limit float64
	Burst int
}

type Config struct {
	HTTPAddr         string
	LogLevel         string
	CORSAllowOrigins []string

	Database DatabaseConfig
	Tx       TxConfig
	JWT      JWTConfig

	DeviceRate             RateConfig
	LoginRate              RateConfig
	BlacklistCleanupPeriod time.Duration
	ShutdownTimeout        time.Duration

	Admin BootstrapAdmin
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
			LogQueries:      v.GetBool("DB_LOG_QUERIES"),
		},
		Tx: TxConfig{
			Timeout:    v.GetDuration("TX_TIMEOUT"),
			MaxRetries: v.GetInt("TX_MAX_RETRIES"),
			Backoff:    v.GetDuration("TX_RETRY_BACKOFF"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Issuer:     v.GetString("JWT_ISSUER"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		DeviceRate: RateConfig{
			Limit: v.GetFloat64("DEVICE_RATE_LIMIT"),
			Burst: v.GetInt("DEVICE_RATE_BURST"),
		},
		LoginRate: RateConfig{
			Limit: v.GetFloat64("LOGIN_RATE_LIMIT"),
			Burst: v.GetInt("LOGIN_RATE_BURST"),
		},
		BlacklistCleanupPeriod: v.GetDuration("BLACKLIST_CLEANUP_INTERVAL"),
		ShutdownTimeout:        v.GetDuration("SHUTDOWN_TIMEOUT"),
		Admin: BootstrapAdmin{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
		},
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, ErrMissingJWTSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_LOG_QUERIES", false)

	v.SetDefault("TX_TIMEOUT", 5*time.Second)
	v.SetDefault("TX_MAX_RETRIES", 3)
	v.SetDefault("TX_RETRY_BACKOFF", 50*time.Millisecond)

	v.SetDefault("JWT_ISSUER", "occupancy")
	v.SetDefault("JWT_EXPIRATION", time.Hour)

	v.SetDefault("DEVICE_RATE_LIMIT", 20)
	v.SetDefault("DEVICE_RATE_BURST", 40)
	v.SetDefault("LOGIN_RATE_LIMIT", 2)
	v.SetDefault("LOGIN_RATE_BURST", 4)
	v.SetDefault("BLACKLIST_CLEANUP_INTERVAL", time.Hour)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("ADMIN_NAME", "Administrator")
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
