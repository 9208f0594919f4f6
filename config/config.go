package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	SourceEndpoint = "endpoint"
	SourceDiary    = "diary"
)

// Config holds all cine-grid settings
type Config struct {
	Username string `yaml:"username"`
	Year     int    `yaml:"year"`

	// Fetching
	Source          string `yaml:"source"` // endpoint or diary
	Endpoint        string `yaml:"endpoint"`
	LetterboxdURL   string `yaml:"letterboxd_url"`
	UserAgent       string `yaml:"user_agent"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_secs"`
	MaxDiaryPages   int    `yaml:"max_diary_pages"`

	// Rendering
	Format      string `yaml:"format"` // html, json or text
	OutputPath  string `yaml:"output"`
	NewestFirst bool   `yaml:"newest_first"`
	CanvasWidth int    `yaml:"canvas_width"`

	// Scheduling
	RefreshSchedule string `yaml:"refresh_schedule"`
	RunAtStartup    bool   `yaml:"run_at_startup"`
	JobTimeoutSec   int    `yaml:"job_timeout_secs"`

	Email EmailConfig `yaml:"email"`
}

// EmailConfig contains configuration for email notifications
type EmailConfig struct {
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	Username       string `yaml:"username"`
	SenderEmail    string `yaml:"sender"`
	SenderPassword string `yaml:"password"`
	RecipientEmail string `yaml:"recipient"`
}

// Enabled reports whether enough is configured to send mail
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.RecipientEmail != ""
}

// Option overrides a setting after the file and environment are read
type Option func(*Config)

// WithUsername overrides the diary owner
func WithUsername(username string) Option {
	return func(c *Config) { c.Username = username }
}

// WithYear overrides the diary year
func WithYear(year int) Option {
	return func(c *Config) { c.Year = year }
}

// WithFormat overrides the output format
func WithFormat(format string) Option {
	return func(c *Config) { c.Format = format }
}

// WithOutput overrides the output path
func WithOutput(path string) Option {
	return func(c *Config) { c.OutputPath = path }
}

// WithSource overrides the review source
func WithSource(source string) Option {
	return func(c *Config) { c.Source = source }
}

// Load reads the optional YAML file at path, applies environment overrides,
// opts and defaults, then validates the result. An empty path skips the file.
func Load(path string, opts ...Option) (*Config, error) {
	// Rows read newest first unless the file or environment says otherwise
	cfg := &Config{NewestFirst: true}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)
	for _, opt := range opts {
		opt(cfg)
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from an env file without overriding ones
// already set in the process environment.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the config file path from the environment, or an
// empty string when none is set.
func GetConfigPath() string {
	return os.Getenv("CINE_GRID_CONFIG")
}

// FetchTimeout is the per-request timeout for fetching reviews
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// JobTimeout bounds a single scheduled refresh
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSec) * time.Second
}

// Validate checks the settings needed before any fetch happens.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Year < 1900 || c.Year > 9999 {
		return fmt.Errorf("year must be a four digit year, got %d", c.Year)
	}

	switch c.Source {
	case SourceEndpoint:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint is required when source is %q", SourceEndpoint)
		}
	case SourceDiary:
	default:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceEndpoint, SourceDiary)
	}

	switch c.Format {
	case "html", "json", "text":
	default:
		return fmt.Errorf("unknown format %q (want html, json or text)", c.Format)
	}

	if c.JobTimeoutSec < 0 {
		return fmt.Errorf("job_timeout_secs must not be negative, got %d", c.JobTimeoutSec)
	}
	if c.FetchTimeoutSec < 0 {
		return fmt.Errorf("fetch_timeout_secs must not be negative, got %d", c.FetchTimeoutSec)
	}

	if c.RefreshSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid refresh_schedule %q: %w", c.RefreshSchedule, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}
	if cfg.Source == "" {
		cfg.Source = SourceEndpoint
	}
	if cfg.LetterboxdURL == "" {
		cfg.LetterboxdURL = "https://letterboxd.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "cine-grid/1.0"
	}
	if cfg.FetchTimeoutSec == 0 {
		cfg.FetchTimeoutSec = 30
	}
	if cfg.MaxDiaryPages == 0 {
		cfg.MaxDiaryPages = 20
	}
	if cfg.Format == "" {
		cfg.Format = "html"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "ratings." + cfg.Format
		if cfg.Format == "text" {
			cfg.OutputPath = "ratings.txt"
		}
	}
	if cfg.CanvasWidth == 0 {
		cfg.CanvasWidth = 800
	}
	if cfg.RefreshSchedule == "" {
		// 6am every day
		cfg.RefreshSchedule = "0 0 6 * * *"
	}
	if cfg.JobTimeoutSec == 0 {
		cfg.JobTimeoutSec = 600
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = cfg.Email.SenderEmail
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	setString(&cfg.Username, "CINE_GRID_USERNAME")
	setInt(&cfg.Year, "CINE_GRID_YEAR")
	setString(&cfg.Source, "CINE_GRID_SOURCE")
	setString(&cfg.Endpoint, "REVIEWS_ENDPOINT")
	setString(&cfg.LetterboxdURL, "LETTERBOXD_URL")
	setString(&cfg.Format, "CINE_GRID_FORMAT")
	setString(&cfg.OutputPath, "CINE_GRID_OUTPUT")
	setBool(&cfg.NewestFirst, "CINE_GRID_NEWEST_FIRST")
	setString(&cfg.RefreshSchedule, "REFRESH_SCHEDULE")
	setBool(&cfg.RunAtStartup, "RUN_AT_STARTUP")

	setString(&cfg.Email.SMTPHost, "EMAIL_SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "EMAIL_SMTP_PORT")
	setString(&cfg.Email.Username, "EMAIL_USERNAME")
	setString(&cfg.Email.SenderEmail, "EMAIL_SENDER")
	setString(&cfg.Email.SenderPassword, "EMAIL_PASSWORD")
	setString(&cfg.Email.RecipientEmail, "EMAIL_RECIPIENT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s '%s', ignoring", key, v)
		return
	}
	*dst = n
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s '%s', ignoring", key, v)
		return
	}
	*dst = b
}
