package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"httpls/config"
	"httpls/fetch"
	"httpls/filter"
	"httpls/logging"
	"httpls/mirror"
	"httpls/output"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "Path to config file (optional)")
	jsonFlag := flag.Bool("json", false, "Print the listing as JSON")
	longFlag := flag.Bool("long", false, "Print the listing with size and modification time columns")
	filterStr := flag.String("filter", "", "File rules to select (comma-separated extensions or globs, e.g. .pdf,**/*.iso)")
	mirrorFlag := flag.Bool("mirror", false, "Download the listed files instead of printing the listing")
	outputPath := flag.String("output", "", "Override output directory for mirror mode")
	recursiveFlag := flag.Bool("recursive", false, "Descend into subdirectories when mirroring")
	maxDepthFlag := flag.Int("max-depth", 0, "Maximum depth for recursive mirroring")
	timeoutFlag := flag.Int("timeout", 0, "Override HTTP timeout in seconds")
	userAgent := flag.String("user-agent", "", "Override the User-Agent header")
	logLevel := flag.String("log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <url>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	rootURL := flag.Arg(0)

	// Initialize logging system
	logger := logging.NewLogger()
	defer logger.Close()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Override config with command line arguments if provided
	if *outputPath != "" {
		cfg.OutputDir = *outputPath
	}
	if *maxDepthFlag > 0 {
		cfg.MaxDepth = *maxDepthFlag
	}
	if *recursiveFlag && cfg.MaxDepth <= 1 {
		cfg.MaxDepth = 5
	}
	if *timeoutFlag > 0 {
		cfg.HTTPTimeoutSeconds = *timeoutFlag
	}
	if *userAgent != "" {
		cfg.UserAgent = *userAgent
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *filterStr != "" {
		cfg.Filters = filter.ParseRules(*filterStr)
	}

	// Apply log level from config
	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		if err := logger.SetOutputFile(cfg.LogFile); err != nil {
			logger.Error("Failed to open log file: %v", err)
			os.Exit(1)
		}
	}

	client := fetch.NewClient(cfg.HTTPTimeoutSeconds, cfg.UserAgent, logger)
	ctx := context.Background()

	if *mirrorFlag {
		runMirror(ctx, cfg, client, logger, rootURL)
		return
	}

	runList(ctx, client, logger, rootURL, *jsonFlag, *longFlag, cfg.Filters)
}

// runList fetches one listing page and prints it to stdout
func runList(ctx context.Context, client *fetch.Client, logger *logging.Logger, rootURL string, asJSON, long bool, rules []string) {
	_, dir, entries, err := client.FetchListing(ctx, rootURL)
	if err != nil {
		logger.Error("Failed to fetch listing from %s: %v", rootURL, err)
		os.Exit(1)
	}
	if entries == nil {
		logger.Error("No directory listing recognized at %s", rootURL)
		os.Exit(1)
	}

	if len(rules) > 0 {
		fileFilter := filter.NewFilter(rules, logger)
		kept := entries[:0]
		for _, e := range entries {
			if e.IsDir() || fileFilter.Match(e.Name) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	if asJSON {
		out, err := output.FormatJSON(dir, entries)
		if err != nil {
			logger.Error("Failed to encode listing: %v", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}
	fmt.Print(output.FormatListing(dir, entries, long))
}

// runMirror downloads the tree below rootURL into the output directory
func runMirror(ctx context.Context, cfg *config.Config, client *fetch.Client, logger *logging.Logger, rootURL string) {
	startTime := time.Now()

	logger.Info("httpls mirror starting for %s", rootURL)
	logger.Info("Output directory: %s", cfg.OutputDir)
	logger.Info("Max depth: %d", cfg.MaxDepth)

	writer, err := output.NewWriter(cfg.OutputDir, logger)
	if err != nil {
		logger.Error("Failed to initialize output writer: %v", err)
		os.Exit(1)
	}
	defer writer.Close()

	fileFilter := filter.NewFilter(cfg.Filters, logger)
	if !fileFilter.Empty() {
		logger.Info("Using filters: %v", fileFilter.Rules())
	}

	m := mirror.New(client, fileFilter, writer, logger, cfg)
	if err := m.Run(ctx, rootURL); err != nil {
		logger.Error("Mirror run failed: %v", err)
		os.Exit(1)
	}

	dirsVisited, filesFound, filesDownloaded, filesSkipped, filesFiltered, bytesDownloaded, writeErrors := m.GetStats()

	endTime := time.Now()
	summary := output.FormatSummary(
		rootURL,
		dirsVisited,
		filesFound,
		filesDownloaded,
		filesSkipped,
		filesFiltered,
		bytesDownloaded,
		writeErrors,
		startTime,
		endTime,
	)
	fmt.Print(summary)

	if writeErrors > 0 {
		logger.Error("WARNING: %d write errors occurred; some manifest entries may be missing", writeErrors)
		os.Exit(1)
	}
}
