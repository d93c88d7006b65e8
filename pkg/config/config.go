// ABOUTME: Configuration management for the digest with YAML file and environment variable support
// ABOUTME: Defaults are overlaid by the settings file, then by environment variables

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the settings file is looked up when no path is given
const DefaultPath = "config/settings.yaml"

// Config holds all application configuration
type Config struct {
	// Communities are fetched in order
	Communities []string `yaml:"communities"`

	// Fetch contains upstream fetch settings
	Fetch FetchConfig `yaml:"fetch"`

	// Newsletter contains curation and output settings
	Newsletter NewsletterConfig `yaml:"newsletter"`

	// Email contains delivery settings
	Email EmailConfig `yaml:"email"`

	// LLM contains the curator model settings
	LLM LLMConfig `yaml:"llm"`

	// Log contains logger settings
	Log LogConfig `yaml:"log"`

	// Path is the settings file that was read, empty when none was
	Path string `yaml:"-"`
}

// FetchConfig holds upstream fetch configuration
type FetchConfig struct {
	// PostsPerCommunity is the per-community post limit
	PostsPerCommunity int `yaml:"posts_per_community"`

	// TimeWindow is the ranking period (hour, day, week, month, year, all)
	TimeWindow string `yaml:"time_window"`

	// DelayBetweenRequests is the pause between communities in seconds
	DelayBetweenRequests float64 `yaml:"delay_between_requests"`

	// MaxRetries is the attempt budget on the primary endpoint
	MaxRetries int `yaml:"max_retries"`

	// Timeout bounds one HTTP attempt in seconds
	Timeout float64 `yaml:"timeout"`
}

// NewsletterConfig holds curation and output configuration
type NewsletterConfig struct {
	StoriesToInclude string `yaml:"stories_to_include"`
	OutputDirectory  string `yaml:"output_directory"`
	OutputFilename   string `yaml:"output_filename"`
}

// EmailConfig holds delivery configuration
type EmailConfig struct {
	Subject          string     `yaml:"subject"`
	SendOnCompletion bool       `yaml:"send_on_completion"`
	SMTP             SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host string   `yaml:"host"`
	Port int      `yaml:"port"`
	User string   `yaml:"user"`
	Pass string   `yaml:"pass"`
	From string   `yaml:"from"`
	To   []string `yaml:"to"`
}

// LLMConfig holds curator model configuration
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// legacyKeys accepts the key names older settings files used
type legacyKeys struct {
	Subreddits []string `yaml:"subreddits"`
	Fetch      struct {
		PostsPerSubreddit int    `yaml:"posts_per_subreddit"`
		TimePeriod        string `yaml:"time_period"`
	} `yaml:"fetch"`
}

var validWindows = map[string]bool{
	"hour": true, "day": true, "week": true, "month": true, "year": true, "all": true,
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Communities: []string{"LocalLLaMA", "AI_Agents", "PromptEngineering", "MachineLearning", "technews"},
		Fetch: FetchConfig{
			PostsPerCommunity:    5,
			TimeWindow:           "week",
			DelayBetweenRequests: 1.0,
			MaxRetries:           3,
			Timeout:              15,
		},
		Newsletter: NewsletterConfig{
			StoriesToInclude: "5-7",
			OutputDirectory:  "output/newsletters",
			OutputFilename:   "weekly_digest.md",
		},
		Email: EmailConfig{
			Subject:          "🚀 The Weekly Sync",
			SendOnCompletion: true,
			SMTP:             SMTPConfig{Port: 587},
		},
		LLM: LLMConfig{
			Model:   "gemini-2.0-flash-exp",
			BaseURL: "https://generativelanguage.googleapis.com",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the settings file at path and
// the environment. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// merge overlays a YAML document onto c; keys absent from data keep their values
func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	var legacy legacyKeys
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return err
	}
	if len(legacy.Subreddits) > 0 {
		c.Communities = legacy.Subreddits
	}
	if legacy.Fetch.PostsPerSubreddit != 0 {
		c.Fetch.PostsPerCommunity = legacy.Fetch.PostsPerSubreddit
	}
	if legacy.Fetch.TimePeriod != "" {
		c.Fetch.TimeWindow = legacy.Fetch.TimePeriod
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Communities = getEnvAsListOrDefault("DIGEST_COMMUNITIES", c.Communities)
	c.Fetch.PostsPerCommunity = getEnvAsIntOrDefault("DIGEST_POSTS_PER_COMMUNITY", c.Fetch.PostsPerCommunity)
	c.Fetch.TimeWindow = getEnvOrDefault("DIGEST_TIME_WINDOW", c.Fetch.TimeWindow)
	c.Fetch.MaxRetries = getEnvAsIntOrDefault("DIGEST_MAX_RETRIES", c.Fetch.MaxRetries)
	c.Newsletter.OutputDirectory = getEnvOrDefault("DIGEST_OUTPUT_DIR", c.Newsletter.OutputDirectory)

	c.LLM.APIKey = getEnvOrDefault("GEMINI_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnvOrDefault("GEMINI_MODEL", c.LLM.Model)

	c.Email.SMTP.Host = getEnvOrDefault("SMTP_HOST", c.Email.SMTP.Host)
	c.Email.SMTP.Port = getEnvAsIntOrDefault("SMTP_PORT", c.Email.SMTP.Port)
	c.Email.SMTP.User = getEnvOrDefault("SMTP_USER", c.Email.SMTP.User)
	c.Email.SMTP.Pass = getEnvOrDefault("SMTP_PASS", c.Email.SMTP.Pass)
	c.Email.SMTP.From = getEnvOrDefault("SMTP_FROM", c.Email.SMTP.From)
	c.Email.SMTP.To = getEnvAsListOrDefault("EMAIL_TO", c.Email.SMTP.To)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma separated environment variable
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

// Delay returns the pause between communities
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Fetch.DelayBetweenRequests * float64(time.Second))
}

// Timeout returns the per-attempt HTTP timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.Timeout * float64(time.Second))
}

// OutputPath returns where the digest document is written
func (c *Config) OutputPath() string {
	return filepath.Join(c.Newsletter.OutputDirectory, c.Newsletter.OutputFilename)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Communities) == 0 {
		return errors.New("at least one community is required")
	}
	for _, community := range c.Communities {
		if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(community), "r/")) == "" {
			return errors.New("community names cannot be empty")
		}
	}

	if c.Fetch.PostsPerCommunity < 1 {
		return errors.New("posts per community must be at least 1")
	}

	if !validWindows[c.Fetch.TimeWindow] {
		return fmt.Errorf("time window must be one of hour, day, week, month, year, all; got %q", c.Fetch.TimeWindow)
	}

	if c.Fetch.MaxRetries < 1 {
		return errors.New("max retries must be at least 1")
	}

	if c.Fetch.DelayBetweenRequests < 0 {
		return errors.New("delay between requests cannot be negative")
	}

	if c.Fetch.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if c.Newsletter.OutputFilename == "" {
		return errors.New("output filename cannot be empty")
	}

	if c.Email.SMTP.Port < 0 || c.Email.SMTP.Port > 65535 {
		return errors.New("smtp port must be between 0 and 65535")
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("log format must be 'text' or 'json'")
	}

	return nil
}
