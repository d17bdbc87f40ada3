package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Registration RegistrationConfig `yaml:"registration"`
	Notify       NotifyConfig       `yaml:"notify"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port             int      `yaml:"port"`
	BodyLimitBytes   int64    `yaml:"body_limit_bytes"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins"`
	CacheTTLSeconds  int      `yaml:"cache_ttl_seconds"`
}

// CacheTTL is the lifetime of cached availability responses.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres | sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	SlowQueryMillis        int    `yaml:"slow_query_ms"`
}

// RegistrationConfig holds the fixed enumerations a submission is checked against.
type RegistrationConfig struct {
	Origins []string `yaml:"origins"`
	Courses []string `yaml:"courses"`
}

// NotifyConfig configures the optional confirmation e-mail.
// An empty Provider disables notifications.
type NotifyConfig struct {
	Provider       string     `yaml:"provider"` // ses | smtp | ""
	FromEmail      string     `yaml:"from_email"`
	FromName       string     `yaml:"from_name"`
	TimeoutSeconds int        `yaml:"timeout_seconds"`
	Workers        int        `yaml:"workers"`
	QueueSize      int        `yaml:"queue_size"`
	SES            SESConfig  `yaml:"ses"`
	SMTP           SMTPConfig `yaml:"smtp"`
}

// Timeout bounds a single notification attempt.
func (n NotifyConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// SESConfig holds the Amazon SES settings.
type SESConfig struct {
	Region string `yaml:"region"`
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | console
}

// DefaultOrigins are the groups allowed to submit registrations.
var DefaultOrigins = []string{"Alagon", "Borja", "Canal", "Guadalajara", "Villacruz", "FSA"}

// DefaultCourses are the school years accepted for a camper.
var DefaultCourses = []string{
	"4º Primaria",
	"5º Primaria",
	"6º Primaria",
	"1º ESO",
	"2º ESO",
	"3º ESO",
}

// envKeys lists the settings that may be overridden from CAMP_* variables.
var envKeys = []string{
	"server.port",
	"database.driver",
	"database.dsn",
	"notify.provider",
	"notify.from_email",
	"notify.from_name",
	"notify.ses.region",
	"notify.smtp.host",
	"notify.smtp.port",
	"notify.smtp.username",
	"notify.smtp.password",
	"log.level",
	"log.format",
}

// Load reads the configuration from the given path. A missing file is not an
// error: defaults and environment overrides are used instead.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays CAMP_* environment variables, e.g. CAMP_DATABASE_DSN.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("CAMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	setInt("server.port", &cfg.Server.Port)
	setString("database.driver", &cfg.Database.Driver)
	setString("database.dsn", &cfg.Database.DSN)
	setString("notify.provider", &cfg.Notify.Provider)
	setString("notify.from_email", &cfg.Notify.FromEmail)
	setString("notify.from_name", &cfg.Notify.FromName)
	setString("notify.ses.region", &cfg.Notify.SES.Region)
	setString("notify.smtp.host", &cfg.Notify.SMTP.Host)
	setInt("notify.smtp.port", &cfg.Notify.SMTP.Port)
	setString("notify.smtp.username", &cfg.Notify.SMTP.Username)
	setString("notify.smtp.password", &cfg.Notify.SMTP.Password)
	setString("log.level", &cfg.Log.Level)
	setString("log.format", &cfg.Log.Format)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BodyLimitBytes <= 0 {
		cfg.Server.BodyLimitBytes = 64 << 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Database.SlowQueryMillis <= 0 {
		cfg.Database.SlowQueryMillis = 500
	}

	if len(cfg.Registration.Origins) == 0 {
		cfg.Registration.Origins = DefaultOrigins
	}
	if len(cfg.Registration.Courses) == 0 {
		cfg.Registration.Courses = DefaultCourses
	}

	if cfg.Notify.TimeoutSeconds <= 0 {
		cfg.Notify.TimeoutSeconds = 10
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 2
	}
	if cfg.Notify.QueueSize <= 0 {
		cfg.Notify.QueueSize = 100
	}
	if cfg.Notify.SES.Region == "" {
		cfg.Notify.SES.Region = "eu-west-1"
	}
	if cfg.Notify.SMTP.Port <= 0 {
		cfg.Notify.SMTP.Port = 587
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate rejects settings the service cannot start with. A missing DSN is
// allowed here; submissions then fail with a configuration error.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}

	switch c.Notify.Provider {
	case "":
	case "ses":
		if c.Notify.FromEmail == "" {
			return fmt.Errorf("notify.from_email is required for provider ses")
		}
	case "smtp":
		if c.Notify.FromEmail == "" || c.Notify.SMTP.Host == "" {
			return fmt.Errorf("notify.from_email and notify.smtp.host are required for provider smtp")
		}
	default:
		return fmt.Errorf("notify.provider must be ses, smtp or empty, got %q", c.Notify.Provider)
	}

	if c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	return nil
}
