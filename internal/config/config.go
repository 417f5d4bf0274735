package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig
	Dataset   DatasetConfig
	Analytics AnalyticsConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatasetConfig struct {
	CSVFile      string
	CacheDir     string
	CacheEnabled bool
}

type AnalyticsConfig struct {
	DashboardDefaultDays int
	InsightsTopProducts  int
	TopProductsDefault   int
	TopProductsMax       int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Load builds the configuration in three layers: compiled defaults, an
// optional YAML file (CONFIG_FILE, falling back to ./config.yaml when
// present), then environment variable overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := configFilePath(); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Dataset: DatasetConfig{
			CSVFile:      "sales_data.csv",
			CacheDir:     ".cache",
			CacheEnabled: true,
		},
		Analytics: AnalyticsConfig{
			DashboardDefaultDays: 30,
			InsightsTopProducts:  2,
			TopProductsDefault:   5,
			TopProductsMax:       100,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8000"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func configFilePath() string {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return path
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// fileConfig mirrors Config for YAML decoding. Pointer fields distinguish
// "absent" from zero values; durations are Go duration strings.
type fileConfig struct {
	Server struct {
		Host            *string `yaml:"host"`
		Port            *int    `yaml:"port"`
		ReadTimeout     *string `yaml:"read_timeout"`
		WriteTimeout    *string `yaml:"write_timeout"`
		IdleTimeout     *string `yaml:"idle_timeout"`
		ShutdownTimeout *string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Dataset struct {
		CSVFile      *string `yaml:"csv_file"`
		CacheDir     *string `yaml:"cache_dir"`
		CacheEnabled *bool   `yaml:"cache_enabled"`
	} `yaml:"dataset"`
	Analytics struct {
		DashboardDefaultDays *int `yaml:"dashboard_default_days"`
		InsightsTopProducts  *int `yaml:"insights_top_products"`
		TopProductsDefault   *int `yaml:"top_products_default"`
		TopProductsMax       *int `yaml:"top_products_max"`
	} `yaml:"analytics"`
	Logger struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logger"`
	Security struct {
		RateLimitEnabled *bool    `yaml:"rate_limit_enabled"`
		RateLimitRPS     *int     `yaml:"rate_limit_rps"`
		RateLimitBurst   *int     `yaml:"rate_limit_burst"`
		AllowedOrigins   []string `yaml:"allowed_origins"`
		TrustedProxies   []string `yaml:"trusted_proxies"`
	} `yaml:"security"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setString(&c.Server.Host, fc.Server.Host)
	setInt(&c.Server.Port, fc.Server.Port)
	if err := setDuration(&c.Server.ReadTimeout, fc.Server.ReadTimeout); err != nil {
		return fmt.Errorf("server.read_timeout: %w", err)
	}
	if err := setDuration(&c.Server.WriteTimeout, fc.Server.WriteTimeout); err != nil {
		return fmt.Errorf("server.write_timeout: %w", err)
	}
	if err := setDuration(&c.Server.IdleTimeout, fc.Server.IdleTimeout); err != nil {
		return fmt.Errorf("server.idle_timeout: %w", err)
	}
	if err := setDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}

	setString(&c.Dataset.CSVFile, fc.Dataset.CSVFile)
	setString(&c.Dataset.CacheDir, fc.Dataset.CacheDir)
	setBool(&c.Dataset.CacheEnabled, fc.Dataset.CacheEnabled)

	setInt(&c.Analytics.DashboardDefaultDays, fc.Analytics.DashboardDefaultDays)
	setInt(&c.Analytics.InsightsTopProducts, fc.Analytics.InsightsTopProducts)
	setInt(&c.Analytics.TopProductsDefault, fc.Analytics.TopProductsDefault)
	setInt(&c.Analytics.TopProductsMax, fc.Analytics.TopProductsMax)

	setString(&c.Logger.Level, fc.Logger.Level)
	setString(&c.Logger.Format, fc.Logger.Format)

	setBool(&c.Security.EnableRateLimit, fc.Security.RateLimitEnabled)
	setInt(&c.Security.RateLimitRPS, fc.Security.RateLimitRPS)
	setInt(&c.Security.RateLimitBurst, fc.Security.RateLimitBurst)
	if fc.Security.AllowedOrigins != nil {
		c.Security.AllowedOrigins = fc.Security.AllowedOrigins
	}
	if fc.Security.TrustedProxies != nil {
		c.Security.TrustedProxies = fc.Security.TrustedProxies
	}

	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnvString("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Dataset.CSVFile = getEnvString("CSV_FILE", c.Dataset.CSVFile)
	c.Dataset.CacheDir = getEnvString("CACHE_DIR", c.Dataset.CacheDir)
	c.Dataset.CacheEnabled = getEnvBool("CACHE_ENABLED", c.Dataset.CacheEnabled)

	c.Analytics.DashboardDefaultDays = getEnvInt("ANALYTICS_DASHBOARD_DEFAULT_DAYS", c.Analytics.DashboardDefaultDays)
	c.Analytics.InsightsTopProducts = getEnvInt("ANALYTICS_INSIGHTS_TOP_PRODUCTS", c.Analytics.InsightsTopProducts)
	c.Analytics.TopProductsDefault = getEnvInt("ANALYTICS_TOP_PRODUCTS_DEFAULT", c.Analytics.TopProductsDefault)
	c.Analytics.TopProductsMax = getEnvInt("ANALYTICS_TOP_PRODUCTS_MAX", c.Analytics.TopProductsMax)

	c.Logger.Level = getEnvString("LOG_LEVEL", c.Logger.Level)
	c.Logger.Format = getEnvString("LOG_FORMAT", c.Logger.Format)

	c.Security.EnableRateLimit = getEnvBool("SECURITY_RATE_LIMIT_ENABLED", c.Security.EnableRateLimit)
	c.Security.RateLimitRPS = getEnvInt("SECURITY_RATE_LIMIT_RPS", c.Security.RateLimitRPS)
	c.Security.RateLimitBurst = getEnvInt("SECURITY_RATE_LIMIT_BURST", c.Security.RateLimitBurst)
	c.Security.AllowedOrigins = getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", c.Security.AllowedOrigins)
	c.Security.TrustedProxies = getEnvStringSlice("SECURITY_TRUSTED_PROXIES", c.Security.TrustedProxies)
}

// DashboardDaysMax bounds the dashboard window parameter. The accepted range
// is fixed contract, not tunable configuration.
const DashboardDaysMax = 180

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	if c.Analytics.DashboardDefaultDays < 1 || c.Analytics.DashboardDefaultDays > DashboardDaysMax {
		return fmt.Errorf("dashboard default days must be between 1 and %d, got %d", DashboardDaysMax, c.Analytics.DashboardDefaultDays)
	}

	if c.Analytics.InsightsTopProducts < 1 {
		return fmt.Errorf("insights top products must be positive")
	}

	if c.Analytics.TopProductsDefault < 1 || c.Analytics.TopProductsMax < c.Analytics.TopProductsDefault {
		return fmt.Errorf("top products default %d must be positive and at most the max %d",
			c.Analytics.TopProductsDefault, c.Analytics.TopProductsMax)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
