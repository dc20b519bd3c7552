// Package config loads newsfill settings from defaults, an optional YAML
// file, a .env file and NEWSFILL_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/FranksOps/newsfill/internal/query"
	"github.com/FranksOps/newsfill/pkg/httpclient"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Source names.
const (
	NYTimes  = "nytimes"
	Guardian = "guardian"
)

// Sources lists every supported source in run order.
var Sources = []string{NYTimes, Guardian}

// DateLayout is the layout for range bounds.
const DateLayout = "2006-01-02"

// EnvPrefix prefixes every environment override, e.g. NEWSFILL_OUTPUT_DIR.
const EnvPrefix = "NEWSFILL"

// Config is the full application configuration.
type Config struct {
	OutputDir   string        `mapstructure:"output_dir"`
	LogLevel    string        `mapstructure:"log_level"`
	Format      string        `mapstructure:"format"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TLSProfile  string        `mapstructure:"tls_profile"`
	MetricsPort int           `mapstructure:"metrics_port"`

	Sinks Sinks `mapstructure:"sinks"`

	Queries query.Set `mapstructure:"queries"`

	NYTimes  Source `mapstructure:"nytimes"`
	Guardian Source `mapstructure:"guardian"`
}

// Sinks selects optional mirrors of the combined dataset.
type Sinks struct {
	NDJSON      bool   `mapstructure:"ndjson"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Source holds the settings of one search API.
type Source struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	// From and To bound the backfill (YYYY-MM-DD). Empty To means today.
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`

	QueryDelay        time.Duration `mapstructure:"query_delay"`
	PageDelay         time.Duration `mapstructure:"page_delay"`
	MaxPages          int           `mapstructure:"max_pages"`
	MinResults        int           `mapstructure:"min_results"`
	RateLimitCooldown time.Duration `mapstructure:"rate_limit_cooldown"`
	TopSections       int           `mapstructure:"top_sections"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "data")
	v.SetDefault("log_level", "info")
	v.SetDefault("format", "text")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("tls_profile", string(httpclient.ProfileGo))
	v.SetDefault("metrics_port", 0)

	v.SetDefault("sinks.ndjson", false)
	v.SetDefault("sinks.sqlite_path", "")
	v.SetDefault("sinks.postgres_dsn", "")

	v.SetDefault("queries.topic", query.TrumpCovid.Topic)
	v.SetDefault("queries.coverage", query.TrumpCovid.Coverage)
	v.SetDefault("queries.paginate", query.TrumpCovid.Paginate)

	v.SetDefault("nytimes.api_key", "")
	v.SetDefault("nytimes.base_url", "")
	v.SetDefault("nytimes.from", "2023-08-01")
	v.SetDefault("nytimes.to", "")
	v.SetDefault("nytimes.query_delay", 2*time.Second)
	v.SetDefault("nytimes.page_delay", 7*time.Second)
	v.SetDefault("nytimes.max_pages", 15)
	v.SetDefault("nytimes.min_results", 10)
	v.SetDefault("nytimes.rate_limit_cooldown", 60*time.Second)
	v.SetDefault("nytimes.top_sections", 7)

	v.SetDefault("guardian.api_key", "")
	v.SetDefault("guardian.base_url", "")
	v.SetDefault("guardian.from", "2020-01-01")
	v.SetDefault("guardian.to", "2023-12-31")
	v.SetDefault("guardian.query_delay", 1*time.Second)
	v.SetDefault("guardian.page_delay", 1*time.Second)
	v.SetDefault("guardian.max_pages", 20)
	v.SetDefault("guardian.min_results", 0)
	v.SetDefault("guardian.rate_limit_cooldown", 10*time.Second)
	v.SetDefault("guardian.top_sections", 10)
}

// Load reads configuration. path names a YAML file; when empty, config.yaml
// is looked up in the working directory and ./config, and its absence is not
// an error. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that do not depend on which command runs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("config: output_dir is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "text", "json", "html":
	default:
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if _, err := httpclient.ParseProfile(c.TLSProfile); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("config: metrics_port %d out of range", c.MetricsPort)
	}
	if err := c.Queries.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, name := range Sources {
		s, _ := c.Source(name)
		if err := s.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (s Source) validate(name string) error {
	if s.MaxPages < 1 {
		return fmt.Errorf("config: %s.max_pages must be at least 1", name)
	}
	if s.MinResults < 0 {
		return fmt.Errorf("config: %s.min_results must not be negative", name)
	}
	if s.QueryDelay < 0 || s.PageDelay < 0 || s.RateLimitCooldown < 0 {
		return fmt.Errorf("config: %s delays must not be negative", name)
	}
	if s.From != "" {
		if _, err := time.Parse(DateLayout, s.From); err != nil {
			return fmt.Errorf("config: %s.from: %w", name, err)
		}
	}
	if s.To != "" {
		if _, err := time.Parse(DateLayout, s.To); err != nil {
			return fmt.Errorf("config: %s.to: %w", name, err)
		}
	}
	return nil
}

// Source returns the settings for name.
func (c *Config) Source(name string) (Source, error) {
	switch name {
	case NYTimes:
		return c.NYTimes, nil
	case Guardian:
		return c.Guardian, nil
	default:
		return Source{}, fmt.Errorf("config: unknown source %q (want one of %s)", name, strings.Join(Sources, ", "))
	}
}

// Range resolves the backfill bounds. Empty To resolves to now.
func (s Source) Range(now time.Time) (from, to time.Time, err error) {
	if s.From == "" {
		return time.Time{}, time.Time{}, errors.New("config: from date is required")
	}
	from, err = time.Parse(DateLayout, s.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: from: %w", err)
	}
	to = now.UTC()
	if s.To != "" {
		to, err = time.Parse(DateLayout, s.To)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("config: to: %w", err)
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("config: range end %s is before start %s", to.Format(DateLayout), s.From)
	}
	return from, to, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
}
