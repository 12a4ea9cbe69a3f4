package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"redscraper/pkg/auth"
	"redscraper/pkg/config"
	"redscraper/pkg/logger"
	"redscraper/pkg/ratelimit"
	"redscraper/pkg/reddit"
	"redscraper/pkg/scraper"
	"redscraper/pkg/storage"
	"redscraper/pkg/ui"
)

var (
	// Scrape command flags
	subreddits        []string
	keywords          []string
	startDate         string
	endDate           string
	minUpvotes        int
	outputFile        string
	profileName       string
	maxRetries        int
	requestDelay      time.Duration
	requestsPerMinute int
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Search subreddits and merge matching posts into the CSV dataset",
	Long: `Search the configured subreddits for posts matching any keyword,
posted within the date window and meeting the upvote threshold.

Matching posts are merged into the output CSV by post ID: rows already in
the file are never modified, and reruns with overlapping results add only
the posts not seen before.

Credentials are resolved in order from:
  - Stored credentials (use 'redscraper auth login' to store)
  - Environment variables (REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET)
  - Configuration file`,
	Example: `  # Run with settings from the config file
  redscraper scrape

  # Override the search targets
  redscraper scrape --subreddits gaming,Steam --keywords "loot box,gambling"

  # Narrow the date window and raise the upvote bar
  redscraper scrape --start-date 2025-01-01 --end-date 2025-06-30 --min-upvotes 50

  # Use a specific stored credential profile
  redscraper scrape --profile work`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringSliceVar(&subreddits, "subreddits", nil, "subreddits to search (comma separated)")
	scrapeCmd.Flags().StringSliceVar(&keywords, "keywords", nil, "keywords to match (comma separated)")
	scrapeCmd.Flags().StringVar(&startDate, "start-date", "", "window start date (YYYY-MM-DD, inclusive)")
	scrapeCmd.Flags().StringVar(&endDate, "end-date", "", "window end date (YYYY-MM-DD, inclusive)")
	scrapeCmd.Flags().IntVar(&minUpvotes, "min-upvotes", -1, "minimum upvote count")
	scrapeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV file")
	scrapeCmd.Flags().StringVarP(&profileName, "profile", "p", "", "use a specific stored credential profile")
	scrapeCmd.Flags().IntVar(&maxRetries, "max-retries", -1, "maximum retry attempts per query")
	scrapeCmd.Flags().DurationVar(&requestDelay, "request-delay", 0, "delay between API requests")
	scrapeCmd.Flags().IntVar(&requestsPerMinute, "requests-per-minute", 0, "cap API requests per minute instead of a fixed delay")
}

func runScrape(cmd *cobra.Command) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if len(subreddits) > 0 {
		flags["subreddits"] = subreddits
	}
	if len(keywords) > 0 {
		flags["keywords"] = keywords
	}
	if startDate != "" {
		flags["start-date"] = startDate
	}
	if endDate != "" {
		flags["end-date"] = endDate
	}
	if minUpvotes >= 0 {
		flags["min-upvotes"] = minUpvotes
	}
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if maxRetries >= 0 {
		flags["max-retries"] = maxRetries
	}
	if requestDelay > 0 {
		flags["request-delay"] = requestDelay
	}
	if requestsPerMinute > 0 {
		flags["requests-per-minute"] = requestsPerMinute
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("redscraper starting")

	resolveCredentials(cfg)

	limiter := buildLimiter(&cfg.RateLimit)
	client := reddit.NewClient(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
	}, 30*time.Second, limiter, logger.GetLogger())

	persister, err := storage.NewManager(cfg.Output.File, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to prepare output file", err.Error())
		os.Exit(1)
	}

	s, err := scraper.New(cfg, client, persister, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Output file", persister.Path())

	if err := s.Run(); err != nil {
		logger.WithError(err).Error("collection run failed")
		ui.PrintError("COLLECTION FAILED", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Collection completed")
}

// buildLimiter picks the pacing strategy: a per-minute token budget when
// requests_per_minute is set, otherwise a fixed delay between requests.
func buildLimiter(cfg *config.RateLimitConfig) ratelimit.Limiter {
	if cfg.RequestsPerMinute > 0 {
		return ratelimit.NewTokenBucket(cfg.RequestsPerMinute, time.Minute)
	}
	return ratelimit.NewFixedInterval(cfg.RequestDelay)
}

// resolveCredentials fills in API credentials from the credential manager
// when the config does not already carry them. Exits when none are found.
func resolveCredentials(cfg *config.Config) {
	if profileName == "" && cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != "" {
		return
	}

	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var creds *auth.Credentials
	if profileName != "" {
		creds, err = credManager.Retrieve(profileName)
		if err != nil {
			ui.PrintError("Credential profile not found", profileName)
			ui.PrintInfo("Available profiles", "Use 'redscraper auth list' to see stored profiles")
			os.Exit(1)
		}
	} else {
		creds, err = credManager.RetrieveDefault()
		if err != nil {
			logger.Error("No credentials found")
			ui.PrintError("No Reddit API credentials found", "")
			fmt.Println("\nTo store credentials securely, run:")
			fmt.Println("  redscraper auth login")
			fmt.Println("\nYou can also set environment variables:")
			fmt.Println("  export REDDIT_CLIENT_ID=your_client_id")
			fmt.Println("  export REDDIT_CLIENT_SECRET=your_client_secret")
			os.Exit(1)
		}
	}

	cfg.Reddit.ClientID = creds.ClientID
	cfg.Reddit.ClientSecret = creds.ClientSecret
	if creds.UserAgent != "" {
		cfg.Reddit.UserAgent = creds.UserAgent
	}
	logger.WithField("profile", creds.Name).Info("Using stored credentials")
}
