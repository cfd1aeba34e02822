package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName  = "rigops-analytics"
	defaultServicePort  = 8097
	defaultVersion      = "0.1.0"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"

	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBName    = "rigops"
	defaultDBUser    = "postgres"
	defaultDBSSLMode = "disable"

	defaultQueryTimeoutS = 10
	defaultTopLimit      = 5

	defaultCacheTTLS = 60

	defaultMaxExportsPerMinute = 6
	defaultExportWindowSeconds = 60
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name           string   `yaml:"name"`
	Version        string   `yaml:"version"`
	Port           int      `env:"RIGOPS_PORT"       yaml:"port"`
	Debug          bool     `env:"APP_DEBUG"         yaml:"debug"`
	JWTSecret      string   `env:"RIGOPS_JWT_SECRET" yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL configuration for the record store.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_RIGOPS_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_RIGOPS_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_RIGOPS_USER"     yaml:"user"`
	Password string `env:"POSTGRES_RIGOPS_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_RIGOPS_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_RIGOPS_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the connection URL used by the migration runner.
func (d *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// CacheConfig holds optional Redis snapshot-cache configuration.
// An empty address disables caching; the service computes every request.
type CacheConfig struct {
	Address  string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `env:"REDIS_DB"       yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether the snapshot cache is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Address != ""
}

// AnalyticsConfig holds tunables for the aggregation core.
type AnalyticsConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout"`
	TopLimit     int           `yaml:"top_limit"`
}

// ExportConfig throttles the spreadsheet/CSV export endpoint.
type ExportConfig struct {
	MaxPerMinute  int `yaml:"max_per_minute"`
	WindowSeconds int `yaml:"window_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setAnalyticsDefaults(&cfg.Analytics)
	setCacheDefaults(&cfg.Cache)
	setExportDefaults(&cfg.Export)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if len(svc.AllowedOrigins) == 0 {
		svc.AllowedOrigins = []string{"*"}
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setAnalyticsDefaults(a *AnalyticsConfig) {
	if a.QueryTimeout == 0 {
		a.QueryTimeout = defaultQueryTimeoutS * time.Second
	}
	if a.TopLimit == 0 {
		a.TopLimit = defaultTopLimit
	}
}

func setCacheDefaults(c *CacheConfig) {
	if c.TTL == 0 {
		c.TTL = defaultCacheTTLS * time.Second
	}
}

func setExportDefaults(e *ExportConfig) {
	if e.MaxPerMinute == 0 {
		e.MaxPerMinute = defaultMaxExportsPerMinute
	}
	if e.WindowSeconds == 0 {
		e.WindowSeconds = defaultExportWindowSeconds
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Service.JWTSecret == "" {
		return &ValidationError{Field: "service.jwt_secret", Message: "is required"}
	}
	if c.Database.Host == "" {
		return &ValidationError{Field: "database.host", Message: "is required"}
	}
	if err := validatePort("database.port", c.Database.Port); err != nil {
		return err
	}
	if c.Analytics.QueryTimeout < 0 {
		return &ValidationError{Field: "analytics.query_timeout", Message: "must not be negative"}
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}
