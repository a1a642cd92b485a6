package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-report/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Renderer backends
const (
	RendererFPDF   = "fpdf"
	RendererChrome = "chrome"
)

// Storage backends
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	Report   ReportConfig
	Renderer RendererConfig
	Storage  StorageConfig
	AI       AIConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name              string
	Env               string
	Port              string
	BaseURL           string
	AllowRegistration bool
	RegistrationRole  string
	CORSAllowOrigins  []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	DSN             string
	ConnectAttempts int
	RetryDelay      time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
	LogLevel        string // silent, error, warn, info
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// ReportConfig controls who may generate reports and how they read.
type ReportConfig struct {
	PrivilegedRole string
	Timezone       string
	CurrencySymbol string
	Title          string
	LinkExpiry     string // RFC 3339 timestamp or YYYY-MM-DD
}

// RendererConfig selects and tunes the PDF backend.
type RendererConfig struct {
	Backend         string
	FontPath        string
	Compress        bool
	ChromeRemoteURL string
	ChromeTimeout   time.Duration
	ChromeNoSandbox bool
}

// StorageConfig selects where finished documents are published.
type StorageConfig struct {
	Backend   string
	LocalDir  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
	UseSSL    bool
}

// AIConfig enables the operator assistant.
type AIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

// Load reads configuration. Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_DATABASE_DSN), including values from .env
// 2. config.yaml
// 3. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds the configuration from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name:              v.GetString("app.name"),
			Env:               v.GetString("app.env"),
			Port:              v.GetString("app.port"),
			BaseURL:           strings.TrimRight(v.GetString("app.base_url"), "/"),
			AllowRegistration: v.GetBool("app.allow_registration"),
			RegistrationRole:  v.GetString("app.registration_role"),
			CORSAllowOrigins:  v.GetStringSlice("app.cors_allow_origins"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			ConnectAttempts: v.GetInt("database.connect_attempts"),
			RetryDelay:      v.GetDuration("database.retry_delay"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			LogLevel:        v.GetString("database.log_level"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Report: ReportConfig{
			PrivilegedRole: v.GetString("report.privileged_role"),
			Timezone:       v.GetString("report.timezone"),
			CurrencySymbol: v.GetString("report.currency_symbol"),
			Title:          v.GetString("report.title"),
			LinkExpiry:     v.GetString("report.link_expiry"),
		},
		Renderer: RendererConfig{
			Backend:         strings.ToLower(v.GetString("renderer.backend")),
			FontPath:        v.GetString("renderer.font_path"),
			Compress:        v.GetBool("renderer.compress"),
			ChromeRemoteURL: v.GetString("renderer.chrome_remote_url"),
			ChromeTimeout:   v.GetDuration("renderer.chrome_timeout"),
			ChromeNoSandbox: v.GetBool("renderer.chrome_no_sandbox"),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(v.GetString("storage.backend")),
			LocalDir:  v.GetString("storage.local_dir"),
			Bucket:    v.GetString("storage.bucket"),
			Region:    v.GetString("storage.region"),
			Endpoint:  v.GetString("storage.endpoint"),
			AccessKey: v.GetString("storage.access_key"),
			SecretKey: v.GetString("storage.secret_key"),
			PathStyle: v.GetBool("storage.path_style"),
			UseSSL:    v.GetBool("storage.use_ssl"),
		},
		AI: AIConfig{
			Enabled: v.GetBool("ai.enabled"),
			APIKey:  v.GetString("ai.api_key"),
			Model:   v.GetString("ai.model"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pos-report")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("app.allow_registration", false)
	v.SetDefault("app.registration_role", "kasiyer")
	v.SetDefault("app.cors_allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.retry_delay", 2*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("report.privileged_role", "yonetici")
	v.SetDefault("report.timezone", "Local")
	v.SetDefault("report.currency_symbol", "₺")
	v.SetDefault("report.title", "KAHVECİM - GÜNLÜK RAPOR")
	v.SetDefault("report.link_expiry", "2491-03-09")

	v.SetDefault("renderer.backend", RendererFPDF)
	v.SetDefault("renderer.font_path", "")
	v.SetDefault("renderer.compress", true)
	v.SetDefault("renderer.chrome_remote_url", "")
	v.SetDefault("renderer.chrome_timeout", 30*time.Second)
	v.SetDefault("renderer.chrome_no_sandbox", false)

	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.local_dir", "./storage")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.path_style", false)
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.5-flash")
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.App.Env == "production" && len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.ConnectAttempts <= 0 {
		return errors.New("database.connect_attempts must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if strings.TrimSpace(c.Report.PrivilegedRole) == "" {
		return errors.New("report.privileged_role is required")
	}
	if c.App.AllowRegistration {
		role := strings.TrimSpace(c.App.RegistrationRole)
		if role == "" {
			return errors.New("app.registration_role is required when registration is enabled")
		}
		if role == c.Report.PrivilegedRole {
			return errors.New("app.registration_role must not be the privileged report role")
		}
	}
	if _, err := c.Report.Location(); err != nil {
		return err
	}
	if _, err := c.Report.Expiry(); err != nil {
		return err
	}

	switch c.Renderer.Backend {
	case RendererFPDF, RendererChrome:
	default:
		return fmt.Errorf("renderer.backend must be %q or %q, got %q", RendererFPDF, RendererChrome, c.Renderer.Backend)
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir is required for the local backend")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", StorageLocal, StorageS3, c.Storage.Backend)
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		return errors.New("ai.api_key is required when ai.enabled is true")
	}
	return nil
}

// Location resolves the timezone calendar days are interpreted in.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || r.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report.timezone: %w", err)
	}
	return loc, nil
}

// Expiry parses the absolute expiry stamped on every download link.
func (r ReportConfig) Expiry() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, r.LinkExpiry); err == nil {
		return t, nil
	}
	t, err := time.Parse(report.DateLayout, r.LinkExpiry)
	if err != nil {
		return time.Time{}, fmt.Errorf("report.link_expiry %q must be RFC 3339 or YYYY-MM-DD", r.LinkExpiry)
	}
	return t, nil
}

// ServiceConfig converts the report settings for the pipeline.
func (r ReportConfig) ServiceConfig() (report.Config, error) {
	loc, err := r.Location()
	if err != nil {
		return report.Config{}, err
	}
	expiry, err := r.Expiry()
	if err != nil {
		return report.Config{}, err
	}
	return report.Config{PrivilegedRole: r.PrivilegedRole, Location: loc, LinkExpiry: expiry}, nil
}
