package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type (
	// APIServerConfig is the full configuration of the storefront API server.
	APIServerConfig struct {
		Server     ServerConfig     `yaml:"server"`
		Database   DatabaseConfig   `yaml:"database"`
		Logger     LoggerConfig     `yaml:"logger"`
		JWT        JWTConfig        `yaml:"jwt"`
		SuperAdmin SuperAdminConfig `yaml:"super_admin"`
		Storage    StorageConfig    `yaml:"storage"`
		Email      EmailConfig      `yaml:"email"`
		Xero       XeroConfig       `yaml:"xero"`
		Cache      CacheConfig      `yaml:"cache"`
		Events     EventsConfig     `yaml:"events"`
		Metrics    MetricsConfig    `yaml:"metrics"`
		Tracing    TracingConfig    `yaml:"tracing"`
		I18n       I18nConfig       `yaml:"i18n"`
	}

	ServerConfig struct {
		Port        int    `yaml:"port"`
		FrontendURL string `yaml:"frontend_url"` // SPA origin, used for OAuth redirects
		DebugErrors bool   `yaml:"debug_errors"` // include diagnostic payloads in 4xx responses
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // postgres, mysql, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 5432 (postgres), 3306 (mysql)
		User     string `yaml:"user"`     // postgres
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (postgres)
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	// SuperAdminConfig seeds the initial admin account at boot.
	SuperAdminConfig struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	}

	// StorageConfig configures local file storage for uploads.
	StorageConfig struct {
		Dir string `yaml:"dir"`
	}

	// EmailConfig configures the Resend client and the env-level fallbacks
	// used when no email_settings row exists yet.
	EmailConfig struct {
		ResendAPIKey   string `yaml:"resend_api_key"`
		From           string `yaml:"from"`
		AdminEmail     string `yaml:"admin_email"`
		AccountsEmail  string `yaml:"accounts_email"`
		DispatchEmail  string `yaml:"dispatch_email"`
	}

	XeroConfig struct {
		ClientID            string `yaml:"client_id"`
		ClientSecret        string `yaml:"client_secret"`
		RedirectURI         string `yaml:"redirect_uri"`
		Scopes              string `yaml:"scopes"`
		DefaultAccountCode  string `yaml:"default_account_code"`
		ShippingAccountCode string `yaml:"shipping_account_code"`
		TaxCodeProducts     string `yaml:"tax_code_products"`
		TaxCodeShipping     string `yaml:"tax_code_shipping"`
		BrandingThemeID     string `yaml:"branding_theme_id"`
	}

	// CacheConfig configures the catalog cache. Redis is optional; with an
	// empty addr only the in-memory layer is used.
	CacheConfig struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		MemoryTTL     time.Duration `yaml:"memory_ttl"`
		RedisTTL      time.Duration `yaml:"redis_ttl"`
	}

	// EventsConfig configures the AMQP order-event publisher.
	EventsConfig struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	}

	MetricsConfig struct {
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	TracingConfig struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		Endpoint    string  `yaml:"endpoint"` // e.g. localhost:4317 or http://localhost:4318
		Protocol    string  `yaml:"protocol"` // grpc or http
		Insecure    bool    `yaml:"insecure"`
		SamplerRate float64 `yaml:"sampler_rate"` // 0.0~1.0
		Environment string  `yaml:"environment"`
	}

	// I18nConfig represents the internationalization configuration
	I18nConfig struct {
		Path string `yaml:"path"` // Path to i18n translation files
	}
)

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		// For SQLite, DBName is the file path. Ensure its directory exists.
		if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
			panic(fmt.Errorf("failed to create directory for sqlite database: %w", err))
		}
		return c.DBName
	default:
		return ""
	}
}
