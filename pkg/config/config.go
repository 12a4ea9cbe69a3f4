package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// dateLayout is the format of the date window bounds in config files and
// environment variables. Both bounds are interpreted as midnight UTC.
const dateLayout = "2006-01-02"

// Config holds all configuration options for the scraper. All values are
// static for a run; there is no dynamic reconfiguration.
type Config struct {
	// Reddit API credentials
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Search targets and filter criteria
	Search SearchConfig `yaml:"search" json:"search"`

	// Rate limiting and retry configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit-specific configuration
type RedditConfig struct {
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	UserAgent    string `yaml:"user_agent" json:"user_agent"`
}

// SearchConfig holds the target subreddits and filter criteria
type SearchConfig struct {
	Subreddits  []string `yaml:"subreddits" json:"subreddits"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
	StartDate   string   `yaml:"start_date" json:"start_date"`
	EndDate     string   `yaml:"end_date" json:"end_date"`
	MinUpvotes  int      `yaml:"min_upvotes" json:"min_upvotes"`
	ResultLimit int      `yaml:"result_limit" json:"result_limit"`
}

// RateLimitConfig holds rate limiting and retry configuration.
// RequestsPerMinute switches pacing from a fixed inter-request delay to a
// per-minute budget; zero keeps the fixed-delay mode.
type RateLimitConfig struct {
	RequestDelay      time.Duration `yaml:"request_delay" json:"request_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	File string `yaml:"file" json:"file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			UserAgent: "redscraper/1.0",
		},
		Search: SearchConfig{
			Subreddits: []string{
				"GlobalOffensive",
				"csgo",
				"CS2",
				"gaming",
				"Steam",
			},
			Keywords: []string{
				"case opening",
				"gambling",
				"loot box",
				"lootbox",
				"addiction",
				"skin gambling",
				"case unboxing",
				"csgo case",
				"cs2 case",
			},
			StartDate:   "2024-11-08",
			EndDate:     "2025-11-08",
			MinUpvotes:  5,
			ResultLimit: 1000,
		},
		RateLimit: RateLimitConfig{
			RequestDelay: 1 * time.Second,
			MaxRetries:   3,
			RetryDelay:   5 * time.Second,
		},
		Output: OutputConfig{
			File: "reddit_cs_gambling_data.csv",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// DateWindow returns the inclusive [start, end] window as UTC epoch seconds.
func (c *Config) DateWindow() (int64, int64, error) {
	start, err := time.ParseInLocation(dateLayout, c.Search.StartDate, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start date %q: %w", c.Search.StartDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, c.Search.EndDate, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end date %q: %w", c.Search.EndDate, err)
	}
	return start.Unix(), end.Unix(), nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Reddit credentials use the conventional REDDIT_* names
	if clientID := os.Getenv("REDDIT_CLIENT_ID"); clientID != "" {
		c.Reddit.ClientID = clientID
	}
	if clientSecret := os.Getenv("REDDIT_CLIENT_SECRET"); clientSecret != "" {
		c.Reddit.ClientSecret = clientSecret
	}
	if userAgent := os.Getenv("REDDIT_USER_AGENT"); userAgent != "" {
		c.Reddit.UserAgent = userAgent
	}

	if subs := os.Getenv("REDSCRAPER_SUBREDDITS"); subs != "" {
		c.Search.Subreddits = splitList(subs)
	}
	if keywords := os.Getenv("REDSCRAPER_KEYWORDS"); keywords != "" {
		c.Search.Keywords = splitList(keywords)
	}
	if start := os.Getenv("REDSCRAPER_START_DATE"); start != "" {
		c.Search.StartDate = start
	}
	if end := os.Getenv("REDSCRAPER_END_DATE"); end != "" {
		c.Search.EndDate = end
	}
	if minUpvotes := os.Getenv("REDSCRAPER_MIN_UPVOTES"); minUpvotes != "" {
		if val, err := strconv.Atoi(minUpvotes); err == nil {
			c.Search.MinUpvotes = val
		}
	}
	if outputFile := os.Getenv("REDSCRAPER_OUTPUT_FILE"); outputFile != "" {
		c.Output.File = outputFile
	}
	if delay := os.Getenv("REDSCRAPER_REQUEST_DELAY"); delay != "" {
		if val, err := time.ParseDuration(delay); err == nil && val > 0 {
			c.RateLimit.RequestDelay = val
		}
	}
	if rpm := os.Getenv("REDSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val >= 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("REDSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".redscraper.yaml",
		".redscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "redscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "redscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".redscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".redscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.Search.Subreddits) == 0 {
		errs = append(errs, errors.New("at least one subreddit is required"))
	}
	if len(c.Search.Keywords) == 0 {
		errs = append(errs, errors.New("at least one keyword is required"))
	}
	if c.Search.MinUpvotes < 0 {
		errs = append(errs, errors.New("minimum upvotes cannot be negative"))
	}
	if c.Search.ResultLimit <= 0 {
		errs = append(errs, errors.New("result limit must be positive"))
	}

	start, end, err := c.DateWindow()
	if err != nil {
		errs = append(errs, err)
	} else if end < start {
		errs = append(errs, errors.New("end date must not precede start date"))
	}

	if c.RateLimit.RequestDelay < 0 {
		errs = append(errs, errors.New("request delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.RateLimit.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}

	if c.Output.File == "" {
		errs = append(errs, errors.New("output file is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if clientID, ok := flags["client-id"].(string); ok && clientID != "" {
		c.Reddit.ClientID = clientID
	}
	if clientSecret, ok := flags["client-secret"].(string); ok && clientSecret != "" {
		c.Reddit.ClientSecret = clientSecret
	}
	if outputFile, ok := flags["output"].(string); ok && outputFile != "" {
		c.Output.File = outputFile
	}
	if subreddits, ok := flags["subreddits"].([]string); ok && len(subreddits) > 0 {
		c.Search.Subreddits = subreddits
	}
	if keywords, ok := flags["keywords"].([]string); ok && len(keywords) > 0 {
		c.Search.Keywords = keywords
	}
	if minUpvotes, ok := flags["min-upvotes"].(int); ok && minUpvotes >= 0 {
		c.Search.MinUpvotes = minUpvotes
	}
	if startDate, ok := flags["start-date"].(string); ok && startDate != "" {
		c.Search.StartDate = startDate
	}
	if endDate, ok := flags["end-date"].(string); ok && endDate != "" {
		c.Search.EndDate = endDate
	}
	if delay, ok := flags["request-delay"].(time.Duration); ok && delay > 0 {
		c.RateLimit.RequestDelay = delay
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if maxRetries, ok := flags["max-retries"].(int); ok && maxRetries >= 0 {
		c.RateLimit.MaxRetries = maxRetries
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
