package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"chat-analyzer/db"
	"chat-analyzer/utils"
)

var (
	version = "0.1.0"
)

const usage = `Usage: chat-analyzer [flags] <mode> [args]

Modes:
  sample            classify a random sample of the chat export
  request           classify every text message, resuming from the output file
  analyze           print the report and write the CSV tables
  merge FILE...     combine checkpoint files into the output file
  search TERM       search the archive for messages containing TERM
  list [USER]       show the latest archived messages, optionally of one user
  history           list recent runs

Flags:
`

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	opts := options{}
	flag.StringVar(&opts.input, "input", "", "Input file (overrides the configured path for the mode)")
	flag.StringVar(&opts.output, "output", "", "Output file (overrides the configured path for the mode)")
	flag.IntVar(&opts.batchSize, "batch-size", 0, "Messages per batch in request mode")
	flag.IntVar(&opts.sampleSize, "sample-size", 0, "Messages drawn in sample mode")
	flag.Int64Var(&opts.seed, "seed", 42, "Random seed for sample mode")
	flag.StringVar(&opts.term, "term", "", "Term counted by analyze mode")
	flag.StringVar(&opts.tokenizer, "tokenizer", "", "Word tokenizer: gse or simple")
	flag.StringVar(&opts.reportDir, "report-dir", "", "Directory for the analyze CSV tables")
	flag.StringVar(&opts.export, "export", "", "Also export the summary as json or markdown")
	flag.IntVar(&opts.limit, "limit", 20, "Rows shown by search, list and history")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("Chat Analyzer v%s\n", version)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	mode := flag.Arg(0)
	args := flag.Args()[1:]

	// Load or create default configuration
	var config *utils.Config
	var err error
	actualConfigPath := *configPath
	if actualConfigPath == "" {
		// Ensure default config exists
		actualConfigPath, err = utils.EnsureDefaultConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create default config: %v\n", err)
			os.Exit(1)
		}
	}
	config, err = utils.LoadConfig(actualConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if config.Log.Path == "" {
		config.Log.Path = utils.GetLogPath()
	}

	// Initialize logger
	logger, err := utils.NewLogger(config.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting Chat Analyzer v%s (mode %s)", version, mode)
	logger.Info("Using config file: %s", actualConfigPath)

	// Initialize database
	database, err := db.New(config.Data.DBPath)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("Database initialized: %s", config.Data.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &app{
		config:   config,
		database: database,
		logger:   logger,
		opts:     opts,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}

	err = utils.RunSafely(logger, mode, func() error {
		return app.run(ctx, mode, args)
	})
	if err != nil {
		logger.Error("%s failed: %v", mode, err)
		logger.Close()
		database.Close()
		os.Exit(1)
	}
	logger.Info("%s finished", mode)
}
