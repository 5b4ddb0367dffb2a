package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/stefan/toto-notifier/internal/config"
	"github.com/stefan/toto-notifier/internal/extract"
	"github.com/stefan/toto-notifier/internal/fetch"
	"github.com/stefan/toto-notifier/internal/notify"
	"github.com/stefan/toto-notifier/internal/pipeline"
	"github.com/stefan/toto-notifier/internal/retry"
)

var runFlags struct {
	configPath string
	pageURL    string
	selector   string
	useBrowser bool
	dryRun     bool
	debug      bool
}

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Execute one fetch-validate-deliver pass",
	RunE:         runOnce,
	SilenceUsage: true,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.configPath, "config", "", "path to JSON config file")
	runCmd.Flags().StringVar(&runFlags.pageURL, "url", "", "override the monitored page URL")
	runCmd.Flags().StringVar(&runFlags.selector, "selector", "", "override the jackpot CSS selector")
	runCmd.Flags().BoolVar(&runFlags.useBrowser, "use-browser", false, "render the page in a headless browser")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "log the message instead of delivering it")
	runCmd.Flags().BoolVar(&runFlags.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if runFlags.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))

	cfg := config.FromEnv()
	if runFlags.configPath != "" {
		fileCfg, err := config.Load(runFlags.configPath)
		if err != nil {
			return err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(config.Default())

	if runFlags.pageURL != "" {
		cfg.PageURL = runFlags.pageURL
	}
	if runFlags.selector != "" {
		cfg.Selector = runFlags.selector
	}
	if runFlags.useBrowser {
		cfg.UseBrowser = true
	}

	// Missing credentials are fatal before any pipeline stage runs.
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := fetch.Options{
		Timeout:   cfg.RequestTimeout(),
		UserAgent: fetch.DefaultUserAgent,
	}
	var fetcher pipeline.PageFetcher = fetch.NewClient(opts)
	if cfg.UseBrowser {
		fetcher = fetch.NewBrowser(opts)
	}

	sender := notify.NewTelegram(notify.TelegramOptions{
		Token:   cfg.BotToken,
		ChatID:  cfg.ChatID,
		Timeout: cfg.RequestTimeout(),
	})

	p := pipeline.New(pipeline.Options{
		PageURL:  cfg.PageURL,
		Selector: cfg.Selector,
		Retry: retry.Config{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay(),
		},
		DryRun: runFlags.dryRun,
	}, fetcher, extract.Locator{}, sender, logger)

	// The structured failure report reaches the scheduler through the
	// process exit status; main prints the error itself.
	return p.Run(cmd.Context())
}
