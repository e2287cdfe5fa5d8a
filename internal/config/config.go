// Package config loads application settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BirthdateLayout is the format of every date in config and requests.
const BirthdateLayout = "2006-01-02"

// Config holds every application setting.
type Config struct {
	AppPort         string
	ShutdownTimeout time.Duration

	DBDriver       string
	DatabaseDSN    string
	DBLogLevel     string
	DBMaxOpenConns int
	DBConnLifetime time.Duration

	JWTSecret    string
	JWTAlgorithm string
	TokenTTL     time.Duration

	Admin Admin

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration

	OrderRetryAttempts int

	LogLevel string
	LogMode  string
}

// Admin is the administrator created at startup.
type Admin struct {
	Name      string
	Surname   string
	Birthdate time.Time
	Email     string
	Password  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASS", "postgres")
	v.SetDefault("DB_NAME", "wardrobe")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("DB_CONN_LIFETIME", "30m")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 15)

	v.SetDefault("NAME_ADMIN", "Admin")
	v.SetDefault("SURNAME_ADMIN", "Admin")
	v.SetDefault("BIRTHDATE_ADMIN", "1990-01-01")
	v.SetDefault("EMAIL_ADMIN", "")
	v.SetDefault("PASSWORD_ADMIN", "")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "wardrobe.events")
	v.SetDefault("RABBITMQ_QUEUE", "wardrobe.audit")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "10s")

	v.SetDefault("ORDER_RETRY_ATTEMPTS", 3)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MODE", "production")
}

// Flags returns the command line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("wardrobe", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file (.env, .yaml or .json)")
	return fs
}

// Load parses args, reads the optional config file and the environment.
// Environment variables win over the file.
func Load(args []string) (*Config, error) {
	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		DBLogLevel:     v.GetString("DB_LOG_LEVEL"),
		DBMaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		DBConnLifetime: v.GetDuration("DB_CONN_LIFETIME"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTAlgorithm: v.GetString("JWT_ALGORITHM"),
		TokenTTL:     time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,

		Admin: Admin{
			Name:     v.GetString("NAME_ADMIN"),
			Surname:  v.GetString("SURNAME_ADMIN"),
			Email:    v.GetString("EMAIL_ADMIN"),
			Password: v.GetString("PASSWORD_ADMIN"),
		},

		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		LockTTL:       v.GetDuration("LOCK_TTL"),

		OrderRetryAttempts: v.GetInt("ORDER_RETRY_ATTEMPTS"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogMode:  v.GetString("LOG_MODE"),
	}

	if cfg.DatabaseDSN == "" && cfg.DBDriver == "postgres" {
		cfg.DatabaseDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
			v.GetString("DB_HOST"), v.GetString("DB_USER"), v.GetString("DB_PASS"),
			v.GetString("DB_NAME"), v.GetInt("DB_PORT"))
	}

	birthdate, err := time.Parse(BirthdateLayout, v.GetString("BIRTHDATE_ADMIN"))
	if err != nil {
		return nil, fmt.Errorf("invalid BIRTHDATE_ADMIN: %w", err)
	}
	cfg.Admin.Birthdate = birthdate

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DBDriver {
	case "postgres", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.DBDriver == "sqlite" && c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required for sqlite"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.OrderRetryAttempts < 1 {
		errs = append(errs, errors.New("ORDER_RETRY_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}
