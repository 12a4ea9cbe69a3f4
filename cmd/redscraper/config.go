package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"redscraper/pkg/config"
	"redscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage redscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as '.redscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Sensitive values like the client secret are masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".redscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# redscraper configuration file
#
# Environment variables override file values:
#   REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_USER_AGENT
#   REDSCRAPER_SUBREDDITS, REDSCRAPER_KEYWORDS, REDSCRAPER_START_DATE,
#   REDSCRAPER_END_DATE, REDSCRAPER_MIN_UPVOTES, REDSCRAPER_OUTPUT_FILE

# Reddit API credentials
# Prefer 'redscraper auth login' over putting secrets in this file.
reddit:
  client_id: ""
  client_secret: ""
  # Reddit requires a descriptive User-Agent
  user_agent: "redscraper/1.0"

# Search targets and filter criteria
search:
  subreddits:
    - GlobalOffensive
    - csgo
    - CS2
    - gaming
    - Steam
  keywords:
    - case opening
    - gambling
    - loot box
    - lootbox
    - addiction
    - skin gambling
    - case unboxing
    - csgo case
    - cs2 case
  # Inclusive date window, interpreted as midnight UTC
  start_date: "2024-11-08"
  end_date: "2025-11-08"
  # Minimum upvote count (inclusive)
  min_upvotes: 5
  # Maximum results requested per keyword query
  result_limit: 1000

# Rate limiting and retry
rate_limit:
  # Delay before every API request
  request_delay: 1s
  # Cap on API requests per minute; 0 uses the fixed delay above
  requests_per_minute: 0
  # Attempts per keyword query before it is skipped
  max_retries: 3
  # Base retry delay; grows with each attempt
  retry_delay: 5s

# Output settings
output:
  file: "reddit_cs_gambling_data.csv"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"
  # Log file path (optional); empty logs to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store API credentials with 'redscraper auth login'")
	fmt.Println("2. Run 'redscraper config validate' to check the configuration")
	fmt.Println("3. Start collecting with 'redscraper scrape'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Mask the secret for display
	displayCfg := *cfg
	if displayCfg.Reddit.ClientSecret != "" {
		if len(displayCfg.Reddit.ClientSecret) > 8 {
			secret := displayCfg.Reddit.ClientSecret
			displayCfg.Reddit.ClientSecret = secret[:4] + "..." + secret[len(secret)-4:]
		} else {
			displayCfg.Reddit.ClientSecret = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".redscraper.yaml",
			".redscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".redscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "redscraper", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string
	var errs []string

	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		warnings = append(warnings, "Reddit API credentials not configured; set them with 'redscraper auth login'")
	}

	if dir := filepath.Dir(cfg.Output.File); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errs = append(errs, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errs) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Subreddits: %d\n", len(cfg.Search.Subreddits))
	fmt.Printf("  Keywords: %d\n", len(cfg.Search.Keywords))
	fmt.Printf("  Date window: %s to %s\n", cfg.Search.StartDate, cfg.Search.EndDate)
	fmt.Printf("  Min upvotes: %d\n", cfg.Search.MinUpvotes)
	fmt.Printf("  Output file: %s\n", cfg.Output.File)
	fmt.Printf("  Request delay: %s\n", cfg.RateLimit.RequestDelay)
	fmt.Printf("  Max retries: %d\n", cfg.RateLimit.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
