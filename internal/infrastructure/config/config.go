package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Shopify  ShopifyConfig
	ERP      ERPConfig
	Currency CurrencyConfig
	Sync     SyncConfig
	Webhook  WebhookConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// ShopifyConfig holds storefront admin API settings
type ShopifyConfig struct {
	Domain      string
	AccessToken string
	LocationID  int64
	APIVersion  string
	Timeout     time.Duration
}

// ERPConfig holds GN ERP connection settings
type ERPConfig struct {
	BaseURL         string
	ClientID        int64
	Username        string
	Password        string
	OrderCreatePath string
	Timeout         time.Duration
	TokenTTL        time.Duration
}

// CurrencyConfig holds USD to ARS rate resolution settings
type CurrencyConfig struct {
	FixedRate   string // decimal string; non-zero overrides the live source
	LiveRateURL string
	Timeout     time.Duration
}

// SyncConfig holds catalog sync settings
type SyncConfig struct {
	WarehousePriority []string
	RequestsPerSecond float64
	Burst             int
}

// WebhookConfig holds storefront webhook verification settings
type WebhookConfig struct {
	Secret string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with BRIDGE_ prefix (e.g., BRIDGE_ERP_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Shopify: ShopifyConfig{
			Domain:      v.GetString("shopify.domain"),
			AccessToken: v.GetString("shopify.access_token"),
			LocationID:  v.GetInt64("shopify.location_id"),
			APIVersion:  v.GetString("shopify.api_version"),
			Timeout:     v.GetDuration("shopify.timeout"),
		},
		ERP: ERPConfig{
			BaseURL:         v.GetString("erp.base_url"),
			ClientID:        v.GetInt64("erp.client_id"),
			Username:        v.GetString("erp.username"),
			Password:        v.GetString("erp.password"),
			OrderCreatePath: v.GetString("erp.order_create_path"),
			Timeout:         v.GetDuration("erp.timeout"),
			TokenTTL:        v.GetDuration("erp.token_ttl"),
		},
		Currency: CurrencyConfig{
			FixedRate:   v.GetString("currency.fixed_rate"),
			LiveRateURL: v.GetString("currency.live_rate_url"),
			Timeout:     v.GetDuration("currency.timeout"),
		},
		Sync: SyncConfig{
			WarehousePriority: v.GetStringSlice("sync.warehouse_priority"),
			RequestsPerSecond: v.GetFloat64("sync.requests_per_second"),
			Burst:             v.GetInt("sync.burst"),
		},
		Webhook: WebhookConfig{
			Secret: v.GetString("webhook.secret"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storesync-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Sync runs answer synchronously and can outlast a short write window.
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, webhook bodies are small
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 15 * time.Second
	}
	if cfg.ERP.Timeout == 0 {
		cfg.ERP.Timeout = 30 * time.Second
	}
	if cfg.Currency.Timeout == 0 {
		cfg.Currency.Timeout = 10 * time.Second
	}
	if len(cfg.Sync.WarehousePriority) == 0 {
		cfg.Sync.WarehousePriority = []string{"stock_caba", "stock_mdp"}
	}
	if cfg.Sync.RequestsPerSecond == 0 {
		cfg.Sync.RequestsPerSecond = 8
	}
	if cfg.Sync.Burst == 0 {
		cfg.Sync.Burst = 1
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.RequestsPerSecond < 0 {
		return fmt.Errorf("sync.requests_per_second cannot be negative")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Shopify.Domain == "" {
			return fmt.Errorf("shopify.domain is required in production")
		}
		if c.Shopify.AccessToken == "" {
			return fmt.Errorf("shopify.access_token is required in production")
		}
		if c.Shopify.LocationID == 0 {
			return fmt.Errorf("shopify.location_id is required in production")
		}
		if c.ERP.BaseURL == "" {
			return fmt.Errorf("erp.base_url is required in production")
		}
		if c.ERP.Password == "" {
			return fmt.Errorf("erp.password is required in production")
		}
		if c.Webhook.Secret == "" {
			return fmt.Errorf("webhook.secret is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}
