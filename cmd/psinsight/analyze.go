package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/webperf-tools/psinsight/internal/config"
	"github.com/webperf-tools/psinsight/internal/database"
	"github.com/webperf-tools/psinsight/internal/log"
	"github.com/webperf-tools/psinsight/internal/model"
	"github.com/webperf-tools/psinsight/internal/pagespeed"
	"github.com/webperf-tools/psinsight/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url...]",
		Short: "Analyze page performance for one or more URLs",
		Long: `Analyze fetches performance data for each URL from the Google PageSpeed
Insights API.

Each URL is analyzed twice, once per strategy: desktop first, then mobile.
A report is rendered only when both analyses succeed; a failed call produces
an error line while the other strategy and the remaining URLs are still
processed.

Examples:
  # Analyze a single page
  psinsight analyze https://example.com

  # Analyze several pages
  psinsight analyze https://example.com https://example.org

  # Output a JSON report
  psinsight analyze --json https://example.com

  # Write a Markdown report to a file
  psinsight analyze --markdown --output report.md https://example.com

  # Use a custom configuration file
  psinsight analyze -c myconfig.yaml

Configuration file (.psinsight) example:
  api_key: AIza...
  timeout: 90s
  urls:
    - https://example.com
    - https://example.org`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// API flags
	cmd.Flags().StringP("api-key", "k", "",
		"PageSpeed Insights API key (overrides config file and PAGESPEED_API_KEY)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each analysis request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .psinsight in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false,
		"Disable colored terminal output")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not save results to the history database")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. Flag values take precedence over file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.APIKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoColor, err = cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.URLs = args

	// Load settings from the config file.
	// If the user explicitly specified a path, a missing file is an error.
	// Otherwise a missing file silently falls back to flags and environment.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		if err := applyConfigFile(cfg, configPath, cmd); err != nil {
			return nil, err
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Apply credential precedence: explicit over environment.
	cfg.APIKey = config.ResolveAPIKey(cfg.APIKey)

	return cfg, nil
}

// applyConfigFile merges file values into cfg for every setting the user
// did not override on the command line.
func applyConfigFile(cfg *config.Config, path string, cmd *cobra.Command) error {
	cf, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = cf.APIKey
	}

	if len(cfg.URLs) == 0 {
		cfg.URLs = cf.URLs
	}

	if !cmd.Flags().Changed("timeout") {
		timeout, err := cf.ParseTimeout()
		if err != nil {
			return fmt.Errorf("invalid timeout in config file %s: %w", path, err)
		}
		if timeout > 0 {
			cfg.Timeout = timeout
		}
	}

	return nil
}

// runAnalyze performs the analyses and renders reports.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"urls", cfg.URLs,
		"timeout", cfg.Timeout,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	client := pagespeed.NewClient(
		pagespeed.WithAPIKey(cfg.APIKey),
		pagespeed.WithEndpoint(cfg.Endpoint),
		pagespeed.WithTimeout(cfg.Timeout),
		pagespeed.WithLogger(logger),
	)

	strategies := model.Strategies()
	total := len(cfg.URLs) * len(strategies)
	count := 0

	for _, pageURL := range cfg.URLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		urlReport := &model.URLReport{URL: pageURL}
		failed := false

		startTime := time.Now()
		for _, strategy := range strategies {
			count++
			fmt.Printf("[%d/%d] Analyzing %s (%s)...\n", count, total, pageURL, strategy)

			result, err := client.Analyze(ctx, pageURL, strategy)
			if err != nil {
				logger.Error("analysis failed", "url", pageURL, "strategy", strategy.String(), "error", err)
				fmt.Fprintln(os.Stderr, analysisErrorLine(err))
				// A failure aborts only this call; the other strategy
				// still runs. The report needs both results.
				failed = true
				continue
			}

			switch strategy {
			case model.StrategyDesktop:
				urlReport.Desktop = result
			case model.StrategyMobile:
				urlReport.Mobile = result
			}
		}

		if failed {
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, urlReport); err != nil {
			logger.Error("report failed", "url", pageURL, "error", err)
		}

		if err := saveReport(ctx, db, urlReport, logger); err != nil {
			logger.Error("failed to save report", "url", pageURL, "error", err)
		}
	}

	return nil
}

// analysisErrorLine formats the single inline line printed for one failed
// call. The error message already names the URL and strategy, so nothing is
// prepended beyond the "Error:" marker.
func analysisErrorLine(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// outputReport outputs the URL report in the requested format.
func outputReport(cfg *config.Config, urlReport *model.URLReport) error {
	// Determine output destination
	var output *os.File
	toFile := cfg.ReportFile != ""
	if toFile {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTerminalWriter(output,
			report.WithNoColor(cfg.NoColor || toFile),
		)
	}

	_, err := writer.Write(urlReport)
	return err
}

// saveReport saves the URL report to the database if enabled.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, urlReport *model.URLReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveReport(ctx, urlReport); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logger.Info("report saved to database", "url", urlReport.URL)
	return nil
}
