package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	App      AppConfig      `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Postgres PostgresConfig `validate:"required"`
	Auth     AuthConfig     `validate:"required"`
	Email    EmailConfig
	Invoice  InvoiceConfig `validate:"required"`
}

type AppConfig struct {
	Env      string `validate:"required"`
	LogLevel string `validate:"required,oneof=debug info warn error"`
	BaseURL  string `validate:"required,url"`
}

type ServerConfig struct {
	Port            string `validate:"required"`
	AllowedOrigins  string `validate:"required"`
	BodyLimitBytes  int    `validate:"gt=0"`
	RateLimitMax    int    `validate:"gt=0"`
	RateLimitWindow time.Duration
}

type PostgresConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"gt=0"`
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AuthConfig struct {
	Secret        string        `validate:"required"`
	TokenTTL      time.Duration `validate:"gt=0"`
	ShareTokenTTL time.Duration `validate:"gt=0"`
}

type EmailConfig struct {
	Enabled     bool
	APIKey      string
	FromAddress string `validate:"omitempty,email"`
	ReplyTo     string `validate:"omitempty,email"`
}

type InvoiceConfig struct {
	PageSize int `validate:"gt=0"`
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Configuration) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode,
	)
}

// NewConfig reads the process environment (and a .env file when present).
func NewConfig() (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Configuration{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
			BaseURL:  strings.TrimRight(v.GetString("BASE_URL"), "/"),
		},
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			AllowedOrigins:  v.GetString("ALLOWED_ORIGINS"),
			BodyLimitBytes:  bodyLimit(v),
			RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
			RateLimitWindow: time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Auth: AuthConfig{
			Secret:        jwtSecret(v),
			TokenTTL:      time.Duration(v.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
			ShareTokenTTL: time.Duration(v.GetInt("SHARE_TOKEN_TTL_HOURS")) * time.Hour,
		},
		Email: EmailConfig{
			Enabled:     v.GetBool("EMAIL_ENABLED"),
			APIKey:      v.GetString("RESEND_API_KEY"),
			FromAddress: v.GetString("EMAIL_FROM"),
			ReplyTo:     v.GetString("EMAIL_REPLY_TO"),
		},
		Invoice: InvoiceConfig{
			PageSize: v.GetInt("PDF_PAGE_SIZE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c Configuration) Validate() error {
	return validator.New().Struct(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT_MB", 4)
	v.SetDefault("RATE_LIMIT_MAX", 60)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("SHARE_TOKEN_TTL_HOURS", 720)
	v.SetDefault("EMAIL_ENABLED", true)
	v.SetDefault("EMAIL_FROM", "hello@invoicely.dev")
	v.SetDefault("PDF_PAGE_SIZE", 10)
}

// bodyLimit prefers BODY_LIMIT_BYTES and falls back to BODY_LIMIT_MB.
func bodyLimit(v *viper.Viper) int {
	if b := v.GetInt("BODY_LIMIT_BYTES"); b > 0 {
		return b
	}
	return v.GetInt("BODY_LIMIT_MB") * 1024 * 1024
}

func jwtSecret(v *viper.Viper) string {
	if sec := strings.TrimSpace(v.GetString("JWT_SECRET_KEY")); sec != "" {
		return sec
	}
	return strings.TrimSpace(v.GetString("JWT_SECRET"))
}
