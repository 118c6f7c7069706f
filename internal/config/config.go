package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Email      EmailConfig
	Printer    PrinterConfig
	Checkout   CheckoutConfig
	Invitation InvitationConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
	Debug   bool
}

type DatabaseConfig struct {
	Driver   string // postgres or memory
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	LogLevel string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	BillTTL  time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	FrontendURL  string
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

// GstConfig is a GST mode and percentage rate as written in the environment
type GstConfig struct {
	Mode string
	Rate string
}

// Policy parses the mode and rate
func (g GstConfig) Policy() (checkout.GstPolicy, error) {
	mode, err := enum.ParseGstMode(g.Mode)
	if err != nil {
		return nil, err
	}
	rate, err := checkout.ParsePercent(g.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid gst rate %q: %w", g.Rate, err)
	}
	return checkout.NewPolicy(mode, rate), nil
}

type CheckoutConfig struct {
	AllowNegativeTotals bool
	BillGST             GstConfig
	CatalogGST          GstConfig
	LedgerGST           GstConfig
	DefaultCreditDays   int
}

type InvitationConfig struct {
	TTL time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Env:     viper.GetString("APP_ENV"),
			Port:    viper.GetString("APP_PORT"),
			BaseURL: viper.GetString("APP_BASE_URL"),
			Debug:   viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			LogLevel: viper.GetString("DB_LOG_LEVEL"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			BillTTL:  time.Duration(viper.GetInt("REDIS_BILL_TTL_MINUTES")) * time.Minute,
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Issuer: viper.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
			FrontendURL:  viper.GetString("FRONTEND_URL"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
			Width:   viper.GetInt("PRINTER_WIDTH"),
		},
		Checkout: CheckoutConfig{
			AllowNegativeTotals: viper.GetBool("ALLOW_NEGATIVE_TOTALS"),
			BillGST:             GstConfig{Mode: viper.GetString("BILL_GST_MODE"), Rate: viper.GetString("BILL_GST_RATE")},
			CatalogGST:          GstConfig{Mode: viper.GetString("CATALOG_GST_MODE"), Rate: viper.GetString("CATALOG_GST_RATE")},
			LedgerGST:           GstConfig{Mode: viper.GetString("LEDGER_GST_MODE"), Rate: viper.GetString("LEDGER_GST_RATE")},
			DefaultCreditDays:   viper.GetInt("DEFAULT_CREDIT_DAYS"),
		},
		Invitation: InvitationConfig{
			TTL: time.Duration(viper.GetInt("INVITATION_TTL_HOURS")) * time.Hour,
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "ledgerpos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "ledgerpos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	if strings.EqualFold(viper.GetString("APP_ENV"), "development") {
		viper.SetDefault("DB_LOG_LEVEL", "info")
	} else {
		viper.SetDefault("DB_LOG_LEVEL", "warn")
	}
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_BILL_TTL_MINUTES", 30)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "LedgerPOS")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 48)
	viper.SetDefault("ALLOW_NEGATIVE_TOTALS", true)
	viper.SetDefault("BILL_GST_MODE", "additive")
	viper.SetDefault("BILL_GST_RATE", "8")
	viper.SetDefault("CATALOG_GST_MODE", "additive")
	viper.SetDefault("CATALOG_GST_RATE", "10")
	viper.SetDefault("LEDGER_GST_MODE", "inclusive")
	viper.SetDefault("LEDGER_GST_RATE", "8")
	viper.SetDefault("DEFAULT_CREDIT_DAYS", checkout.DefaultCreditDays)
	viper.SetDefault("INVITATION_TTL_HOURS", 72)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// IsMemory reports whether repositories live in process memory
func (c *DatabaseConfig) IsMemory() bool {
	return c.Driver == "memory"
}
